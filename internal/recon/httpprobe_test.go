package recon

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func serverPort(t *testing.T, srv *httptest.Server) int {
	t.Helper()
	return srv.Listener.Addr().(*net.TCPAddr).Port
}

// closedPort returns a loopback port with nothing listening on it.
func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

func TestNativeProber_FallsBackToHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("user agent = %q", r.Header.Get("User-Agent"))
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := &NativeProber{
		UserAgent: "test-agent",
		HTTPSPort: closedPort(t),
		HTTPPort:  serverPort(t, srv),
		Log:       zerolog.Nop(),
	}

	out, err := p.Probe(context.Background(), []string{"127.0.0.1"}, 2, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantURL := "http://127.0.0.1:" + strconv.Itoa(p.HTTPPort)
	if len(out.Results) != 1 || out.Results[0].URL != wantURL || !out.Results[0].OK {
		t.Fatalf("results = %+v, want one OK result for %s", out.Results, wantURL)
	}
	if got, want := string(out.Raw), wantURL+" 403\n"; got != want {
		t.Errorf("raw = %q, want %q", got, want)
	}
}

func TestNativeProber_PrefersHTTPS(t *testing.T) {
	tlsSrv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer tlsSrv.Close()

	var plainHits atomic.Int32
	plainSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		plainHits.Add(1)
	}))
	defer plainSrv.Close()

	p := &NativeProber{
		HTTPSPort: serverPort(t, tlsSrv),
		HTTPPort:  serverPort(t, plainSrv),
		Log:       zerolog.Nop(),
	}

	out, err := p.Probe(context.Background(), []string{"127.0.0.1"}, 1, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantURL := "https://127.0.0.1:" + strconv.Itoa(p.HTTPSPort)
	if len(out.Results) != 1 || out.Results[0].URL != wantURL {
		t.Fatalf("results = %+v, want %s", out.Results, wantURL)
	}
	if n := plainHits.Load(); n != 0 {
		t.Errorf("HTTP was probed %d times after HTTPS succeeded", n)
	}
}

func TestNativeProber_DoesNotFollowRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "http://unreachable.invalid/", http.StatusFound)
	}))
	defer srv.Close()

	p := &NativeProber{HTTPSPort: closedPort(t), HTTPPort: serverPort(t, srv), Log: zerolog.Nop()}
	out, err := p.Probe(context.Background(), []string{"127.0.0.1"}, 1, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Results) != 1 {
		t.Fatalf("results = %+v, want redirecting host to count as live", out.Results)
	}
}

func TestNativeProber_HandlesNonHTTP(t *testing.T) {
	// A listener that speaks something other than HTTP.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			conn.Write([]byte("SSH-2.0-OpenSSH_9.6\r\n"))
			conn.Close()
		}
	}()

	port := l.Addr().(*net.TCPAddr).Port
	p := &NativeProber{HTTPSPort: port, HTTPPort: port, Log: zerolog.Nop()}

	out, err := p.Probe(context.Background(), []string{"127.0.0.1"}, 2, 500*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Results) != 0 {
		t.Errorf("got %d results for non-HTTP port, want 0", len(out.Results))
	}
	if len(out.Raw) != 0 {
		t.Errorf("raw = %q, want empty", out.Raw)
	}
}

func TestNativeProber_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := &NativeProber{HTTPSPort: closedPort(t), HTTPPort: serverPort(t, srv), Log: zerolog.Nop()}

	start := time.Now()
	out, err := p.Probe(context.Background(), []string{"127.0.0.1"}, 1, 300*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out.Results) != 0 {
		t.Errorf("results = %+v, want none for a hanging server", out.Results)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("probe took %s, timeout not enforced", elapsed)
	}
}

func TestNativeProber_ConcurrencyDoesNotChangeResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	hosts := []string{"127.0.0.1", "localhost", "unreachable.invalid"}
	run := func(concurrency int) []byte {
		p := &NativeProber{HTTPSPort: closedPort(t), HTTPPort: serverPort(t, srv), Log: zerolog.Nop()}
		out, err := p.Probe(context.Background(), hosts, concurrency, 2*time.Second)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return out.Raw
	}

	if one, many := run(1), run(50); string(one) != string(many) {
		t.Errorf("concurrency 1 raw = %q, concurrency 50 raw = %q", one, many)
	}
}

func TestNativeProber_TargetURL(t *testing.T) {
	p := &NativeProber{}
	tests := []struct {
		scheme, host, want string
	}{
		{"https", "api.example.com", "https://api.example.com"},
		{"http", "api.example.com", "http://api.example.com"},
		{"https", "::1", "https://[::1]"},
	}
	for _, tt := range tests {
		if got := p.targetURL(tt.scheme, tt.host); got != tt.want {
			t.Errorf("targetURL(%q, %q) = %q, want %q", tt.scheme, tt.host, got, tt.want)
		}
	}

	p = &NativeProber{HTTPSPort: 8443, HTTPPort: 80}
	if got := p.targetURL("https", "::1"); got != "https://[::1]:8443" {
		t.Errorf("targetURL = %q", got)
	}
	if got := p.targetURL("http", "a.example.com"); got != "http://a.example.com" {
		t.Errorf("targetURL = %q", got)
	}
}
