// Package input loads and normalizes candidate hostname lists.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"regexp"
	"sort"
	"strings"
)

// ErrEmpty is returned when a source holds no usable hostnames.
var ErrEmpty = errors.New("no hostnames")

// InputError reports a missing, unreadable or empty hostname source.
// It is the only error that aborts a run before resolution.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("input: %v", e.Err)
	}
	return fmt.Sprintf("input %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// ReadFile reads raw lines from path.
func ReadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	defer f.Close()

	lines, err := Read(f)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	return lines, nil
}

// Read returns every line from r without interpretation.
func Read(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Hostname reduces a line such as "https://Host.example.com.:8443/path" to
// its bare lowercase hostname: no scheme, port, path or trailing dot.
func Hostname(line string) string {
	s := strings.ToLower(strings.TrimSpace(line))
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}

	switch {
	case strings.HasPrefix(s, "["):
		if host, _, err := net.SplitHostPort(s); err == nil {
			s = host
		} else {
			s = strings.Trim(s, "[]")
		}
	case strings.Count(s, ":") == 1:
		if host, _, err := net.SplitHostPort(s); err == nil {
			s = host
		}
	}
	return strings.TrimSuffix(s, ".")
}

// Normalize reduces lines to hostnames, dropping blanks and duplicates.
// The result is sorted ascending.
func Normalize(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	var hosts []string
	for _, l := range lines {
		h := Hostname(l)
		if h == "" || seen[h] {
			continue
		}
		seen[h] = true
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// CompilePattern compiles a case-insensitive filter pattern.
// An empty pattern yields a nil regexp.
func CompilePattern(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}
	return re, nil
}

// Filter keeps hosts matching pattern. When nothing matches, the unfiltered
// hosts are returned with matched=false so the pipeline never collapses.
func Filter(hosts []string, pattern string) (filtered []string, matched bool, err error) {
	re, err := CompilePattern(pattern)
	if err != nil {
		return nil, false, err
	}
	if re == nil {
		return hosts, true, nil
	}

	for _, h := range hosts {
		if re.MatchString(h) {
			filtered = append(filtered, h)
		}
	}
	if len(filtered) == 0 {
		return hosts, false, nil
	}
	return filtered, true, nil
}

// Sample returns at most n hosts from the head of the list. n <= 0 disables it.
func Sample(hosts []string, n int) []string {
	if n <= 0 || n >= len(hosts) {
		return hosts
	}
	return hosts[:n]
}
