package recon

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/miekg/dns"
	"github.com/vulnverified/hostprobe/internal/engine"
)

// resolutionFailure wraps a lookup error with its classified reason.
func resolutionFailure(host string, err error) *engine.ResolutionFailure {
	return &engine.ResolutionFailure{Host: host, Reason: classifyDNSError(err), Err: err}
}

// classifyDNSError maps a lookup error to NXDOMAIN, SERVFAIL, timeout or error.
func classifyDNSError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return engine.ReasonTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsNotFound:
			return engine.ReasonNXDomain
		case dnsErr.IsTimeout:
			return engine.ReasonTimeout
		}
		return engine.ReasonServFail
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return engine.ReasonTimeout
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "no such host") {
		return engine.ReasonNXDomain
	}
	if strings.Contains(errStr, "server misbehaving") {
		return engine.ReasonServFail
	}

	return engine.ReasonError
}

// classifyRcode maps a non-success DNS response code to a failure reason.
func classifyRcode(rcode int) string {
	switch rcode {
	case dns.RcodeNameError:
		return engine.ReasonNXDomain
	case dns.RcodeServerFailure:
		return engine.ReasonServFail
	case dns.RcodeRefused:
		return engine.ReasonRefused
	}
	if s, ok := dns.RcodeToString[rcode]; ok {
		return s
	}
	return engine.ReasonError
}

// classifyProbeError maps an HTTP attempt error to timeout, refused or error.
func classifyProbeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return engine.ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return engine.ReasonTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return engine.ReasonRefused
	}
	return engine.ReasonError
}
