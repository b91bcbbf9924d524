// Package recon implements the hostprobe resolution and probing strategies:
// delegated ones that drive dnsx/httpx and native fallbacks.
package recon

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vulnverified/hostprobe/internal/engine"
)

// Options drives strategy selection at start-up.
type Options struct {
	// ForceNative skips the external tools even when installed.
	ForceNative bool
	Nameservers []string
	HTTPXJSON   bool
	UserAgent   string
	RateLimit   int
	Log         zerolog.Logger

	// lookup replaces LookupTool in tests.
	lookup func(name string) (*Tool, error)
}

func (o Options) lookupTool(name string) (*Tool, error) {
	if o.lookup != nil {
		return o.lookup(name)
	}
	return LookupTool(name)
}

// SelectResolver picks dnsx when available and the native resolver
// otherwise. The returned notice describes the choice for the user.
func SelectResolver(opts Options) (engine.Resolver, string) {
	native := NewNativeResolver(opts.Nameservers, opts.Log)
	if opts.ForceNative {
		return native, fmt.Sprintf("native resolution forced, using %s resolver", native.Name())
	}

	tool, err := opts.lookupTool(DNSXBinary)
	if err != nil {
		return native, fmt.Sprintf("%s not found, falling back to %s resolver", DNSXBinary, native.Name())
	}
	return &DelegatedResolver{Tool: tool, Nameservers: opts.Nameservers, Log: opts.Log},
		fmt.Sprintf("using %s at %s", DNSXBinary, tool.Path)
}

// SelectProber picks httpx when available and the native prober otherwise.
func SelectProber(opts Options) (engine.Prober, string) {
	native := NewNativeProber(opts.UserAgent, opts.RateLimit, opts.Log)
	if opts.ForceNative {
		return native, "native probing forced"
	}

	tool, err := opts.lookupTool(HTTPXBinary)
	if err != nil {
		return native, fmt.Sprintf("%s not found, falling back to native prober", HTTPXBinary)
	}
	return &DelegatedProber{Tool: tool, JSON: opts.HTTPXJSON, Log: opts.Log},
		fmt.Sprintf("using %s at %s", HTTPXBinary, tool.Path)
}

// Stages builds both pipeline stages in one go.
func Stages(opts Options) (engine.Stages, []string) {
	resolver, rn := SelectResolver(opts)
	prober, pn := SelectProber(opts)
	return engine.Stages{Resolver: resolver, Prober: prober}, []string{rn, pn}
}
