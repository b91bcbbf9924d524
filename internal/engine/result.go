// Package engine orchestrates the hostprobe resolve-and-probe pipeline.
package engine

import (
	"context"
	"time"
)

// RunResult is the top-level output of a hostprobe run.
type RunResult struct {
	StartedAt     time.Time     `json:"started_at"`
	CompletedAt   time.Time     `json:"completed_at"`
	DurationSecs  float64       `json:"duration_secs"`
	Resolver      string        `json:"resolver"`
	Prober        string        `json:"prober"`
	InputHosts    []string      `json:"input_hosts"`
	ResolvedHosts []string      `json:"resolved_hosts"`
	LiveHosts     []string      `json:"live_hosts"`
	DeadHosts     []string      `json:"dead_hosts"`
	Probes        []ProbeResult `json:"probes,omitempty"`
	Warnings      []string      `json:"warnings,omitempty"`
	Summary       Summary       `json:"summary"`

	// RawTranscript is the prober's output, byte for byte.
	RawTranscript []byte `json:"-"`
}

// ProbeResult is the outcome of an HTTP/S probe against one host.
// Title and Technologies are only known when httpx ran.
type ProbeResult struct {
	URL          string   `json:"url"`
	OK           bool     `json:"ok"`
	StatusCode   int      `json:"status_code,omitempty"`
	Title        string   `json:"title,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

// ProbeOutput is what a Prober hands back: parsed results plus the raw transcript.
type ProbeOutput struct {
	Results []ProbeResult
	Raw     []byte
}

// Summary provides aggregate counts for the run.
type Summary struct {
	InputHosts    int `json:"input_hosts"`
	ResolvedHosts int `json:"resolved_hosts"`
	LiveHosts     int `json:"live_hosts"`
	DeadHosts     int `json:"dead_hosts"`
}

// Resolver returns the subset of hosts that have an A or AAAA record.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, hosts []string, concurrency int, timeout time.Duration) ([]string, error)
}

// Prober determines which hosts answer over HTTPS or HTTP.
type Prober interface {
	Name() string
	Probe(ctx context.Context, hosts []string, concurrency int, timeout time.Duration) (*ProbeOutput, error)
}
