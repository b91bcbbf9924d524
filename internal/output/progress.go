// Package output handles hostprobe's terminal output and result files.
package output

import (
	"time"

	"github.com/rs/zerolog"
)

// Progress reports pipeline stages through the logger. It implements
// engine.ProgressReporter.
type Progress struct {
	log    zerolog.Logger
	silent bool
	start  time.Time
}

// NewProgress creates a progress reporter. A silent reporter drops
// everything.
func NewProgress(log zerolog.Logger, silent bool) *Progress {
	return &Progress{
		log:    log,
		silent: silent,
		start:  time.Now(),
	}
}

// Stage logs a stage header like "[2/4] Resolving 120 hosts with dnsx".
func (p *Progress) Stage(num, total int, msg string) {
	if p.silent {
		return
	}
	p.log.Info().Msgf("[%d/%d] %s", num, total, msg)
}

// Detail logs at debug level, so it only shows with --verbose.
func (p *Progress) Detail(msg string) {
	if p.silent {
		return
	}
	p.log.Debug().Msg(msg)
}

// Warn logs a non-fatal problem.
func (p *Progress) Warn(msg string) {
	if p.silent {
		return
	}
	p.log.Warn().Msg(msg)
}

// Notice logs an informational message outside of any stage.
func (p *Progress) Notice(msg string) {
	if p.silent {
		return
	}
	p.log.Info().Msg(msg)
}

// Complete logs the total run time.
func (p *Progress) Complete() {
	if p.silent {
		return
	}
	p.log.Info().Msgf("Completed in %.1fs", time.Since(p.start).Seconds())
}
