package recon

import (
	"context"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"
)

// startDNSServer serves a tiny zone on loopback UDP and returns its address.
func startDNSServer(t *testing.T) string {
	t.Helper()

	zone := map[string]map[uint16]string{
		"api.example.com.":   {dns.TypeA: "api.example.com. 60 IN A 127.0.0.1"},
		"v6.example.com.":    {dns.TypeAAAA: "v6.example.com. 60 IN AAAA ::1"},
		"empty.example.com.": {},
	}

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	started := make(chan struct{})
	srv := &dns.Server{
		PacketConn:        pc,
		NotifyStartedFunc: func() { close(started) },
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
			resp := new(dns.Msg)
			resp.SetReply(req)
			q := req.Question[0]

			records, ok := zone[q.Name]
			switch {
			case q.Name == "broken.example.com.":
				resp.Rcode = dns.RcodeServerFailure
			case !ok:
				resp.Rcode = dns.RcodeNameError
			default:
				if s, ok := records[q.Qtype]; ok {
					rr, err := dns.NewRR(s)
					if err == nil {
						resp.Answer = append(resp.Answer, rr)
					}
				}
			}
			_ = w.WriteMsg(resp)
		}),
	}

	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("dns server did not start")
	}
	return pc.LocalAddr().String()
}

func TestNativeResolver_Nameservers(t *testing.T) {
	addr := startDNSServer(t)
	r := NewNativeResolver([]string{addr}, zerolog.Nop())

	hosts := []string{"api.example.com", "v6.example.com", "missing.example.com", "broken.example.com", "empty.example.com"}
	got, err := r.Resolve(context.Background(), hosts, 3, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"api.example.com", "v6.example.com"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("resolved = %v, want %v", got, want)
	}
	if r.Name() != "native-dns" {
		t.Errorf("name = %q", r.Name())
	}
}

func TestNativeResolver_SystemResolver(t *testing.T) {
	r := NewNativeResolver(nil, zerolog.Nop())

	got, err := r.Resolve(context.Background(), []string{"localhost", "unreachable.invalid"}, 2, 5*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"localhost"}) {
		t.Errorf("resolved = %v, want [localhost]", got)
	}
	if r.Name() != "native-system" {
		t.Errorf("name = %q", r.Name())
	}
}

func TestNativeResolver_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewNativeResolver(nil, zerolog.Nop())
	got, err := r.Resolve(ctx, []string{"localhost"}, 1, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("resolved = %v, want none after cancellation", got)
	}
}

func TestNameserverAddr(t *testing.T) {
	tests := map[string]string{
		"8.8.8.8":         "8.8.8.8:53",
		"1.1.1.1:5353":    "1.1.1.1:5353",
		"2001:4860::8888": "[2001:4860::8888]:53",
		"[::1]:53":        "[::1]:53",
		"dns.example.com": "dns.example.com:53",
	}
	for in, want := range tests {
		if got := nameserverAddr(in); got != want {
			t.Errorf("nameserverAddr(%q) = %q, want %q", in, got, want)
		}
	}
}
