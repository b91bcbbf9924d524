package recon

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vulnverified/hostprobe/internal/engine"
	"golang.org/x/time/rate"
)

const (
	defaultHTTPSPort = 443
	defaultHTTPPort  = 80

	// httpProbeMaxDrain is how much body is read before closing, so the
	// status line and headers are fully consumed.
	httpProbeMaxDrain = 4 * 1024
)

// NativeProber implements engine.Prober with a bounded worker pool. Each
// host is tried over HTTPS first and over HTTP only if HTTPS fails.
type NativeProber struct {
	UserAgent string
	// HTTPSPort and HTTPPort default to 443 and 80.
	HTTPSPort int
	HTTPPort  int
	// RateLimit caps probe attempts per second across all workers. 0 disables it.
	RateLimit int
	Log       zerolog.Logger
}

// NewNativeProber creates a native prober on the default ports.
func NewNativeProber(userAgent string, rateLimit int, log zerolog.Logger) *NativeProber {
	return &NativeProber{UserAgent: userAgent, RateLimit: rateLimit, Log: log}
}

// Name implements engine.Prober.
func (p *NativeProber) Name() string { return "native" }

type probeHit struct {
	host   string
	url    string
	status int
}

// Probe implements engine.Prober. A host is live when either attempt gets
// back a well-formed HTTP response; the status code itself does not matter.
func (p *NativeProber) Probe(ctx context.Context, hosts []string, concurrency int, timeout time.Duration) (*engine.ProbeOutput, error) {
	work := make(chan string, len(hosts))
	for _, h := range hosts {
		work <- h
	}
	close(work)

	client := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig:   &tls.Config{InsecureSkipVerify: true},
			DisableKeepAlives: true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	defer client.CloseIdleConnections()

	var limiter *rate.Limiter
	if p.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(p.RateLimit), 1)
	}

	var (
		mu   sync.Mutex
		hits []probeHit
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

				hit := p.probeHost(ctx, client, limiter, host, timeout)
				if hit == nil {
					continue
				}

				mu.Lock()
				hits = append(hits, *hit)
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].host < hits[j].host
	})

	out := &engine.ProbeOutput{}
	var raw strings.Builder
	for _, h := range hits {
		out.Results = append(out.Results, engine.ProbeResult{URL: h.url, OK: true, StatusCode: h.status})
		fmt.Fprintf(&raw, "%s %d\n", h.url, h.status)
	}
	out.Raw = []byte(raw.String())
	return out, nil
}

func (p *NativeProber) probeHost(ctx context.Context, client *http.Client, limiter *rate.Limiter, host string, timeout time.Duration) *probeHit {
	for _, scheme := range []string{"https", "http"} {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
		}

		url := p.targetURL(scheme, host)
		status, err := p.probeURL(ctx, client, url, timeout)
		if err != nil {
			p.Log.Debug().
				Err(&engine.ProbeFailure{Host: host, Reason: classifyProbeError(err), Err: err}).
				Str("url", url).
				Msg("probe failed")
			continue
		}
		return &probeHit{host: host, url: url, status: status}
	}
	return nil
}

func (p *NativeProber) probeURL(ctx context.Context, client *http.Client, url string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, httpProbeMaxDrain))
	return resp.StatusCode, nil
}

// targetURL builds scheme://host, adding the port only when it is not the
// scheme's default.
func (p *NativeProber) targetURL(scheme, host string) string {
	port, def := p.HTTPSPort, defaultHTTPSPort
	if scheme == "http" {
		port, def = p.HTTPPort, defaultHTTPPort
	}

	if port == 0 || port == def {
		if strings.Contains(host, ":") {
			host = "[" + host + "]"
		}
		return scheme + "://" + host
	}
	return scheme + "://" + net.JoinHostPort(host, strconv.Itoa(port))
}
