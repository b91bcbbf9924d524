package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/vulnverified/hostprobe/internal/input"
)

// Config holds the runtime configuration for a hostprobe run.
type Config struct {
	InputPath      string
	Pattern        string
	Sample         int
	Concurrency    int
	DNSConcurrency int
	Timeout        time.Duration
}

// Stages holds the strategies chosen at start-up.
type Stages struct {
	Resolver Resolver
	Prober   Prober
}

// ProgressReporter is called by the engine to report stage progress.
type ProgressReporter interface {
	Stage(num, total int, msg string)
	Detail(msg string)
	Warn(msg string)
}

const totalStages = 4

// Run executes the full pipeline over the raw candidate lines. Each stage
// completes before the next begins; only input problems and cancellation
// are returned as errors.
func Run(ctx context.Context, cfg Config, lines []string, stages Stages, progress ProgressReporter) (*RunResult, error) {
	result := &RunResult{
		StartedAt: time.Now(),
		Resolver:  stages.Resolver.Name(),
		Prober:    stages.Prober.Name(),
	}
	warn := func(msg string) {
		progress.Warn(msg)
		result.Warnings = append(result.Warnings, msg)
	}

	// Stage 1: Input normalization.
	progress.Stage(1, totalStages, "Normalizing input...")
	hosts := input.Normalize(lines)
	if len(hosts) == 0 {
		return nil, &input.InputError{Path: cfg.InputPath, Err: input.ErrEmpty}
	}
	progress.Detail(fmt.Sprintf("%d unique hostnames", len(hosts)))

	if cfg.Pattern != "" {
		filtered, matched, err := input.Filter(hosts, cfg.Pattern)
		if err != nil {
			return nil, err
		}
		if !matched {
			warn(fmt.Sprintf("pattern %q matched nothing, using all %d hosts", cfg.Pattern, len(hosts)))
		} else {
			progress.Detail(fmt.Sprintf("pattern %q kept %d hosts", cfg.Pattern, len(filtered)))
		}
		hosts = filtered
	}
	if cfg.Sample > 0 && len(hosts) > cfg.Sample {
		hosts = input.Sample(hosts, cfg.Sample)
		progress.Detail(fmt.Sprintf("sampled first %d hosts", len(hosts)))
	}
	result.InputHosts = hosts

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stage 2: DNS resolution.
	progress.Stage(2, totalStages, fmt.Sprintf("Resolving %d hosts via %s...", len(hosts), result.Resolver))
	resolved, err := stages.Resolver.Resolve(ctx, hosts, atLeastOne(cfg.DNSConcurrency), cfg.Timeout)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		warn(fmt.Sprintf("DNS resolution error: %s", err))
	}
	resolved = restrictTo(resolved, hosts)
	result.ResolvedHosts = resolved
	progress.Detail(fmt.Sprintf("%d hosts resolved", len(resolved)))

	if len(resolved) == 0 {
		warn("No hosts resolved, skipping HTTP probe")
		return finish(result), nil
	}

	// Stage 3: HTTP probing.
	progress.Stage(3, totalStages, fmt.Sprintf("Probing %d hosts via %s...", len(resolved), result.Prober))
	out, err := stages.Prober.Probe(ctx, resolved, atLeastOne(cfg.Concurrency), cfg.Timeout)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		warn(fmt.Sprintf("HTTP probe error: %s", err))
	}
	if out != nil {
		result.Probes = out.Results
		result.RawTranscript = out.Raw
	}

	// Stage 4: Aggregation.
	progress.Stage(4, totalStages, "Aggregating results...")
	result.LiveHosts = restrictTo(Aggregate(result.Probes), resolved)
	progress.Detail(fmt.Sprintf("%d live hosts", len(result.LiveHosts)))

	return finish(result), nil
}

func finish(result *RunResult) *RunResult {
	result.DeadHosts = DeadHosts(result.InputHosts, result.LiveHosts)
	result.CompletedAt = time.Now()
	result.DurationSecs = result.CompletedAt.Sub(result.StartedAt).Seconds()
	result.Summary = Summary{
		InputHosts:    len(result.InputHosts),
		ResolvedHosts: len(result.ResolvedHosts),
		LiveHosts:     len(result.LiveHosts),
		DeadHosts:     len(result.DeadHosts),
	}
	return result
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
