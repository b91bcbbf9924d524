package recon

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DelegatedResolver implements engine.Resolver by streaming hosts to dnsx.
type DelegatedResolver struct {
	Tool        *Tool
	Nameservers []string
	Log         zerolog.Logger
}

// Name implements engine.Resolver.
func (r *DelegatedResolver) Name() string { return DNSXBinary }

// Resolve implements engine.Resolver. dnsx manages its own per-query
// timeouts, so timeout is unused here.
func (r *DelegatedResolver) Resolve(ctx context.Context, hosts []string, concurrency int, _ time.Duration) ([]string, error) {
	args := dnsxArgs(concurrency, r.Nameservers)
	r.Log.Debug().Str("cmd", r.Tool.CommandLine(args...)).Int("hosts", len(hosts)).Msg("running resolver")

	out, err := r.Tool.Run(ctx, hosts, args...)
	resolved, parseErr := ParseDNSXOutput(out)
	return resolved, errors.Join(err, parseErr)
}

// dnsxMaxLine bounds a single line of dnsx output.
const dnsxMaxLine = 1024 * 1024

func dnsxArgs(threads int, nameservers []string) []string {
	args := []string{"-silent", "-a", "-aaaa", "-resp", "-threads", strconv.Itoa(threads)}
	if len(nameservers) > 0 {
		args = append(args, "-r", strings.Join(nameservers, ","))
	}
	return args
}

// ParseDNSXOutput extracts the hostname from each "host [ip]" line of dnsx
// output. Results are lowercase, deduplicated and sorted. On a scanner error
// the hosts read so far are returned with it.
func ParseDNSXOutput(out []byte) ([]string, error) {
	seen := make(map[string]bool)
	var hosts []string

	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 64*1024), dnsxMaxLine)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		host := strings.TrimSuffix(strings.ToLower(fields[0]), ".")
		if host == "" || seen[host] {
			continue
		}
		seen[host] = true
		hosts = append(hosts, host)
	}

	sort.Strings(hosts)
	if err := scanner.Err(); err != nil {
		return hosts, fmt.Errorf("reading %s output: %w", DNSXBinary, err)
	}
	return hosts, nil
}
