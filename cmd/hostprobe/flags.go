package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/vulnverified/hostprobe/internal/config"
)

// options holds values bound to command-line flags. Config-backed values
// only override the layered config when the flag was set explicitly.
type options struct {
	cfg config.Config

	configPath string
	verbose    bool
	silent     bool
	jsonOutput bool
	noColor    bool
}

func registerFlags(fs *pflag.FlagSet, o *options) {
	d := config.Defaults()

	fs.StringVarP(&o.cfg.Input, "input", "i", d.Input, "File with candidate hostnames, one per line")
	fs.StringVarP(&o.cfg.Output, "output", "o", d.Output, "Where to write live hosts")
	fs.StringVar(&o.cfg.RawOutput, "raw-output", d.RawOutput, "Where to write the raw probe output")
	fs.StringVar(&o.cfg.DeadOutput, "dead-output", d.DeadOutput, "Where to write hosts that are not live (empty to skip)")
	fs.IntVarP(&o.cfg.Sample, "sample", "S", d.Sample, "Only process the first N hosts (0 = all)")
	fs.StringVarP(&o.cfg.Pattern, "pattern", "p", d.Pattern, "Case-insensitive regex to select hosts")
	fs.IntVarP(&o.cfg.Threads, "threads", "t", d.Threads, "Concurrent HTTP probes")
	fs.IntVar(&o.cfg.DNSThreads, "dns-threads", d.DNSThreads, "Concurrent DNS lookups")
	fs.IntVar(&o.cfg.Timeout, "timeout", d.Timeout, "Per-operation timeout in seconds")
	fs.BoolVar(&o.cfg.Native, "native", false, "Never use dnsx/httpx, even when installed")
	fs.StringSliceVar(&o.cfg.Resolvers, "resolvers", nil, "DNS servers to query (host or host:port)")
	fs.IntVar(&o.cfg.RateLimit, "rate-limit", 0, "Max native probe requests per second (0 = unlimited)")
	fs.BoolVar(&o.cfg.HTTPXJSON, "httpx-json", false, "Run httpx in JSON mode")
	fs.StringVar(&o.cfg.Log.File, "log-file", "", "Also write JSON logs to this file")

	fs.StringVar(&o.configPath, "config", "", "YAML config file")
	fs.BoolVarP(&o.verbose, "verbose", "v", false, "Debug logging, including per-host failures")
	fs.BoolVar(&o.silent, "silent", false, "Results only, no progress")
	fs.BoolVar(&o.jsonOutput, "json", false, "Output structured JSON to stdout")
	fs.BoolVar(&o.noColor, "no-color", false, "Disable terminal colors")

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "dnsx-threads" {
			name = "dns-threads"
		}
		return pflag.NormalizedName(name)
	})
}

// loadConfig layers defaults, environment, the config file and explicitly
// set flags, in that order, and validates the result.
func loadConfig(fs *pflag.FlagSet, o *options, lookupEnv func(string) (string, bool)) (config.Config, error) {
	cfg := config.Defaults()
	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return cfg, err
	}
	if o.configPath != "" {
		if err := cfg.LoadFile(o.configPath); err != nil {
			return cfg, err
		}
	}

	f := &o.cfg
	setters := map[string]func(){
		"input":       func() { cfg.Input = f.Input },
		"output":      func() { cfg.Output = f.Output },
		"raw-output":  func() { cfg.RawOutput = f.RawOutput },
		"dead-output": func() { cfg.DeadOutput = f.DeadOutput },
		"sample":      func() { cfg.Sample = f.Sample },
		"pattern":     func() { cfg.Pattern = f.Pattern },
		"threads":     func() { cfg.Threads = f.Threads },
		"dns-threads": func() { cfg.DNSThreads = f.DNSThreads },
		"timeout":     func() { cfg.Timeout = f.Timeout },
		"native":      func() { cfg.Native = f.Native },
		"resolvers":   func() { cfg.Resolvers = trimAll(f.Resolvers) },
		"rate-limit":  func() { cfg.RateLimit = f.RateLimit },
		"httpx-json":  func() { cfg.HTTPXJSON = f.HTTPXJSON },
		"log-file":    func() { cfg.Log.File = f.Log.File },
	}
	fs.Visit(func(fl *pflag.Flag) {
		if set, ok := setters[fl.Name]; ok {
			set()
		}
	})

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func trimAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func userAgent(cfg config.Config) string {
	if cfg.UserAgent != "" {
		return cfg.UserAgent
	}
	return fmt.Sprintf("hostprobe/%s (+https://github.com/vulnverified/hostprobe)", version)
}
