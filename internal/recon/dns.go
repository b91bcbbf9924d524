package recon

import (
	"context"
	"net"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/miekg/dns"
	"github.com/rs/zerolog"
	"github.com/vulnverified/hostprobe/internal/engine"
)

// NativeResolver implements engine.Resolver with a bounded worker pool.
// Without Nameservers it asks the system resolver; otherwise it queries
// the listed servers directly, rotating between them per host.
type NativeResolver struct {
	Nameservers []string
	Log         zerolog.Logger

	next atomic.Uint64
}

// NewNativeResolver creates a native resolver. nameservers may be empty.
func NewNativeResolver(nameservers []string, log zerolog.Logger) *NativeResolver {
	addrs := make([]string, 0, len(nameservers))
	for _, ns := range nameservers {
		addrs = append(addrs, nameserverAddr(ns))
	}
	return &NativeResolver{Nameservers: addrs, Log: log}
}

// Name implements engine.Resolver.
func (r *NativeResolver) Name() string {
	if len(r.Nameservers) > 0 {
		return "native-dns"
	}
	return "native-system"
}

// Resolve implements engine.Resolver. A host resolves when an A or AAAA
// lookup succeeds within timeout; failures only exclude the host.
func (r *NativeResolver) Resolve(ctx context.Context, hosts []string, concurrency int, timeout time.Duration) ([]string, error) {
	work := make(chan string, len(hosts))
	for _, h := range hosts {
		work <- h
	}
	close(work)

	var (
		mu       sync.Mutex
		resolved []string
	)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for host := range work {
				select {
				case <-ctx.Done():
					return
				default:
				}

				if err := r.lookup(ctx, host, timeout); err != nil {
					r.Log.Debug().Err(err).Str("host", host).Msg("unresolved")
					continue
				}

				mu.Lock()
				resolved = append(resolved, host)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	sort.Strings(resolved)
	return resolved, nil
}

func (r *NativeResolver) lookup(ctx context.Context, host string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if len(r.Nameservers) == 0 {
		return systemLookup(ctx, host)
	}
	ns := r.Nameservers[r.next.Add(1)%uint64(len(r.Nameservers))]
	return exchangeLookup(ctx, host, ns, timeout)
}

func systemLookup(ctx context.Context, host string) error {
	ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
	if err != nil {
		return resolutionFailure(host, err)
	}
	if len(ips) == 0 {
		return &engine.ResolutionFailure{Host: host, Reason: engine.ReasonNoRecord}
	}
	return nil
}

// exchangeLookup asks ns for A then AAAA records. NXDOMAIN ends the lookup
// early since the AAAA answer would be the same.
func exchangeLookup(ctx context.Context, host, ns string, timeout time.Duration) error {
	var failure *engine.ResolutionFailure

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		msg := new(dns.Msg)
		msg.SetQuestion(dns.Fqdn(host), qtype)

		resp, err := exchange(ctx, msg, ns, timeout)
		if err != nil {
			failure = resolutionFailure(host, err)
			continue
		}
		if resp.Rcode != dns.RcodeSuccess {
			failure = &engine.ResolutionFailure{Host: host, Reason: classifyRcode(resp.Rcode)}
			if resp.Rcode == dns.RcodeNameError {
				return failure
			}
			continue
		}
		for _, rr := range resp.Answer {
			switch rr.(type) {
			case *dns.A, *dns.AAAA:
				return nil
			}
		}
	}

	if failure == nil {
		failure = &engine.ResolutionFailure{Host: host, Reason: engine.ReasonNoRecord}
	}
	return failure
}

// exchange sends msg over UDP and retries over TCP when the answer is truncated.
func exchange(ctx context.Context, msg *dns.Msg, ns string, timeout time.Duration) (*dns.Msg, error) {
	client := &dns.Client{Timeout: timeout}
	resp, _, err := client.ExchangeContext(ctx, msg, ns)
	if err != nil {
		return nil, err
	}
	if resp.Truncated {
		client.Net = "tcp"
		resp, _, err = client.ExchangeContext(ctx, msg, ns)
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// nameserverAddr appends the default DNS port when ns has none.
func nameserverAddr(ns string) string {
	if _, _, err := net.SplitHostPort(ns); err == nil {
		return ns
	}
	return net.JoinHostPort(ns, "53")
}
