package engine

import (
	"sort"

	"github.com/vulnverified/hostprobe/internal/input"
)

// NormalizeTarget reduces a probe target such as "https://Host:8443/path/"
// to its bare lowercase hostname, the same form input hosts are kept in.
func NormalizeTarget(target string) string {
	return input.Hostname(target)
}

// Aggregate turns successful probe results into the sorted, deduplicated
// live host list.
func Aggregate(results []ProbeResult) []string {
	seen := make(map[string]bool, len(results))
	var hosts []string
	for _, r := range results {
		if !r.OK {
			continue
		}
		h := NormalizeTarget(r.URL)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// DeadHosts returns the input hosts absent from live, sorted.
func DeadHosts(input, live []string) []string {
	alive := make(map[string]bool, len(live))
	for _, h := range live {
		alive[h] = true
	}

	var dead []string
	for _, h := range input {
		if !alive[h] {
			dead = append(dead, h)
		}
	}
	sort.Strings(dead)
	return dead
}

// restrictTo drops hosts that were not part of allowed and deduplicates the rest.
func restrictTo(hosts, allowed []string) []string {
	in := make(map[string]bool, len(allowed))
	for _, h := range allowed {
		in[h] = true
	}

	seen := make(map[string]bool, len(hosts))
	var out []string
	for _, h := range hosts {
		if !in[h] || seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}
