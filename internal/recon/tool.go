package recon

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/vulnverified/hostprobe/internal/engine"
)

// External tool binaries looked up on PATH.
const (
	DNSXBinary  = "dnsx"
	HTTPXBinary = "httpx"
)

// toolWaitDelay bounds how long a killed tool may hold its output pipes open.
const toolWaitDelay = 2 * time.Second

// Tool is an external binary fed line-delimited input on stdin.
type Tool struct {
	Name string
	Path string
}

// LookupTool finds name on PATH. A missing binary yields an error wrapping
// engine.ErrToolUnavailable.
func LookupTool(name string) (*Tool, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", name, engine.ErrToolUnavailable, err)
	}
	return &Tool{Name: name, Path: path}, nil
}

// Run writes lines to the tool's stdin and returns its complete stdout.
// Stdout gathered before a failure is still returned alongside the error.
func (t *Tool) Run(ctx context.Context, lines []string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, t.Path, args...)
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
	cmd.WaitDelay = toolWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return stdout.Bytes(), fmt.Errorf("%s: %w: %s", t.Name, err, msg)
		}
		return stdout.Bytes(), fmt.Errorf("%s: %w", t.Name, err)
	}
	return stdout.Bytes(), nil
}

// CommandLine renders the invocation for logging.
func (t *Tool) CommandLine(args ...string) string {
	return strings.Join(append([]string{t.Name}, args...), " ")
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
