package recon

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vulnverified/hostprobe/internal/engine"
)

// DelegatedProber implements engine.Prober by streaming hosts to httpx.
// The transcript is httpx's stdout, unmodified.
type DelegatedProber struct {
	Tool *Tool
	// JSON switches httpx to JSON lines output.
	JSON bool
	Log  zerolog.Logger
}

// Name implements engine.Prober.
func (p *DelegatedProber) Name() string {
	if p.JSON {
		return HTTPXBinary + "-json"
	}
	return HTTPXBinary
}

// Probe implements engine.Prober.
func (p *DelegatedProber) Probe(ctx context.Context, hosts []string, concurrency int, timeout time.Duration) (*engine.ProbeOutput, error) {
	args := httpxArgs(concurrency, timeout, p.JSON)
	p.Log.Debug().Str("cmd", p.Tool.CommandLine(args...)).Int("hosts", len(hosts)).Msg("running prober")

	raw, err := p.Tool.Run(ctx, hosts, args...)

	parse := ParseHTTPXLine
	if p.JSON {
		parse = ParseHTTPXJSONLine
	}
	results, parseErr := parseProbeOutput(raw, parse)
	return &engine.ProbeOutput{
		Results: results,
		Raw:     raw,
	}, errors.Join(err, parseErr)
}

// httpxMaxLine bounds a single line of httpx output; JSON lines can be large.
const httpxMaxLine = 16 * 1024 * 1024

func httpxArgs(threads int, timeout time.Duration, jsonOut bool) []string {
	secs := int(math.Ceil(timeout.Seconds()))
	if secs < 1 {
		secs = 1
	}

	args := []string{"-silent"}
	if jsonOut {
		args = append(args, "-json")
	} else {
		args = append(args, "-no-color")
	}
	return append(args,
		"-status-code",
		"-title",
		"-tech-detect",
		"-timeout", strconv.Itoa(secs),
		"-threads", strconv.Itoa(threads),
	)
}

func parseProbeOutput(raw []byte, parse func(string) (engine.ProbeResult, bool)) ([]engine.ProbeResult, error) {
	var results []engine.ProbeResult

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 64*1024), httpxMaxLine)
	for scanner.Scan() {
		if r, ok := parse(scanner.Text()); ok {
			results = append(results, r)
		}
	}
	if err := scanner.Err(); err != nil {
		return results, fmt.Errorf("reading %s output: %w", HTTPXBinary, err)
	}
	return results, nil
}

// ParseHTTPXLine parses one line of httpx text output, e.g.
//
//	https://api.example.com [200] [API Portal] [Nginx,PHP]
//
// The first whitespace-delimited token is taken as the target URL. Bracket
// groups after it are read as status code, title and technologies, on a
// best-effort basis: httpx omits empty groups, so a lone group after the
// status is taken as the title.
func ParseHTTPXLine(line string) (engine.ProbeResult, bool) {
	line = strings.TrimSpace(line)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return engine.ProbeResult{}, false
	}

	r := engine.ProbeResult{URL: fields[0], OK: true}
	groups := bracketGroups(line[len(fields[0]):])

	if len(groups) > 0 {
		if code, ok := parseStatus(groups[0]); ok {
			r.StatusCode = code
			groups = groups[1:]
		}
	}
	if len(groups) > 0 {
		r.Title = groups[0]
	}
	if len(groups) > 1 {
		for _, t := range strings.Split(groups[1], ",") {
			if t = strings.TrimSpace(t); t != "" {
				r.Technologies = append(r.Technologies, t)
			}
		}
	}
	return r, true
}

type httpxJSONLine struct {
	URL        string   `json:"url"`
	Host       string   `json:"host"`
	Input      string   `json:"input"`
	StatusCode int      `json:"status_code"`
	Title      string   `json:"title"`
	Tech       []string `json:"tech"`
	Failed     bool     `json:"failed"`
}

// ParseHTTPXJSONLine parses one line of httpx -json output. The target is
// the "url" field, falling back to "host".
func ParseHTTPXJSONLine(line string) (engine.ProbeResult, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return engine.ProbeResult{}, false
	}

	var obj httpxJSONLine
	if err := json.Unmarshal([]byte(line), &obj); err != nil {
		return engine.ProbeResult{}, false
	}

	target := obj.URL
	if target == "" {
		target = obj.Host
	}
	if target == "" {
		return engine.ProbeResult{}, false
	}

	return engine.ProbeResult{
		URL:          target,
		OK:           !obj.Failed,
		StatusCode:   obj.StatusCode,
		Title:        obj.Title,
		Technologies: obj.Tech,
	}, true
}

// bracketGroups returns the contents of top-level [...] groups in s.
func bracketGroups(s string) []string {
	var (
		groups []string
		depth  int
		start  int
	)
	for i, c := range s {
		switch c {
		case '[':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case ']':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				groups = append(groups, strings.TrimSpace(s[start:i]))
			}
		}
	}
	return groups
}

// parseStatus reads "200" or a redirect chain such as "301,200".
func parseStatus(s string) (int, bool) {
	first, _, _ := strings.Cut(s, ",")
	code, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil || code < 100 || code > 999 {
		return 0, false
	}
	return code, true
}
