// Package config holds hostprobe run settings and their layering:
// defaults, then environment, then an optional YAML file. Command-line
// flags are applied last by the caller.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultInput      = "subdomains.txt"
	DefaultOutput     = "live-hosts.txt"
	DefaultRawOutput  = "httpx-alive.txt"
	DefaultDeadOutput = "dead-hosts.txt"
	DefaultThreads    = 30
	DefaultDNSThreads = 50
	DefaultTimeout    = 5
	DefaultLogLevel   = "info"
)

// Environment variables read by ApplyEnv.
const (
	EnvConcurrency = "CONCURRENCY"
	EnvDNSThreads  = "DNSX_THREADS"
	EnvTimeout     = "TIMEOUT"
)

// Config is the full set of run settings.
type Config struct {
	Input      string `yaml:"input" validate:"required"`
	Output     string `yaml:"output" validate:"required"`
	RawOutput  string `yaml:"raw_output" validate:"required"`
	DeadOutput string `yaml:"dead_output"`

	// Sample keeps only the first N hosts after filtering. 0 disables it.
	Sample  int    `yaml:"sample" validate:"min=0"`
	Pattern string `yaml:"pattern" validate:"omitempty,regexp"`

	Threads    int `yaml:"threads" validate:"min=1"`
	DNSThreads int `yaml:"dns_threads" validate:"min=1"`
	// Timeout is per operation, in seconds.
	Timeout int `yaml:"timeout" validate:"min=1"`

	Native    bool     `yaml:"native"`
	Resolvers []string `yaml:"resolvers" validate:"dive,nameserver"`
	RateLimit int      `yaml:"rate_limit" validate:"min=0"`
	HTTPXJSON bool     `yaml:"httpx_json"`
	UserAgent string   `yaml:"user_agent"`

	Log LogConfig `yaml:"log"`
}

// LogConfig controls the optional log file.
type LogConfig struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"min=0"`
	MaxBackups int    `yaml:"max_backups" validate:"min=0"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Input:      DefaultInput,
		Output:     DefaultOutput,
		RawOutput:  DefaultRawOutput,
		DeadOutput: DefaultDeadOutput,
		Threads:    DefaultThreads,
		DNSThreads: DefaultDNSThreads,
		Timeout:    DefaultTimeout,
		Log:        LogConfig{Level: DefaultLogLevel},
	}
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// ApplyEnv overrides concurrency and timeout settings from the environment.
// lookup is usually os.LookupEnv. Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, v := range []struct {
		name string
		dst  *int
	}{
		{EnvConcurrency, &c.Threads},
		{EnvDNSThreads, &c.DNSThreads},
		{EnvTimeout, &c.Timeout},
	} {
		raw, ok := lookup(v.name)
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s=%q: must be an integer", v.name, raw)
		}
		*v.dst = n
	}
	return nil
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the file
// keep their current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}
