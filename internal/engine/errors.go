package engine

import (
	"errors"
	"fmt"
)

// ErrToolUnavailable marks an external resolver or prober that is not installed.
var ErrToolUnavailable = errors.New("tool unavailable")

// Failure reasons shared by ResolutionFailure and ProbeFailure.
const (
	ReasonNXDomain = "NXDOMAIN"
	ReasonServFail = "SERVFAIL"
	ReasonTimeout  = "timeout"
	ReasonNoRecord = "no-record"
	ReasonRefused  = "refused"
	ReasonError    = "error"
)

// ResolutionFailure records why a host was excluded from the resolved set.
type ResolutionFailure struct {
	Host   string
	Reason string
	Err    error
}

func (e *ResolutionFailure) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("resolve %s: %s", e.Host, e.Reason)
	}
	return fmt.Sprintf("resolve %s: %s: %v", e.Host, e.Reason, e.Err)
}

func (e *ResolutionFailure) Unwrap() error { return e.Err }

// ProbeFailure records why a host was excluded from the live set.
type ProbeFailure struct {
	Host   string
	Reason string
	Err    error
}

func (e *ProbeFailure) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("probe %s: %s", e.Host, e.Reason)
	}
	return fmt.Sprintf("probe %s: %s: %v", e.Host, e.Reason, e.Err)
}

func (e *ProbeFailure) Unwrap() error { return e.Err }
