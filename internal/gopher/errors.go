package gopher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
)

// ConnectError reports a failure to reach the peer or complete the exchange:
// DNS failure, refusal, timeout or a broken stream.
type ConnectError struct {
	Addr   string
	Reason string
	Err    error
}

func (e *ConnectError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("connect %s: %s", e.Addr, e.Reason)
	}
	return fmt.Sprintf("connect %s: %s: %v", e.Addr, e.Reason, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was caused by a deadline.
func (e *ConnectError) Timeout() bool { return e.Reason == reasonTimeout }

// TruncatedResponseError reports a menu stream that closed mid-line.
type TruncatedResponseError struct {
	Addr     string
	Received int
}

func (e *TruncatedResponseError) Error() string {
	return fmt.Sprintf("truncated response from %s after %d bytes", e.Addr, e.Received)
}

// MalformedLineError reports a single menu line that could not be decoded.
// It is never fatal to the fetch.
type MalformedLineError struct {
	Line   string
	Reason string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed menu line %q: %s", e.Line, e.Reason)
}

const (
	reasonDNS       = "dns lookup failed"
	reasonRefused   = "connection refused"
	reasonTimeout   = "timed out"
	reasonCancelled = "cancelled"
	reasonFailed    = "connection failed"
)

func newConnectError(addr string, err error) *ConnectError {
	return &ConnectError{Addr: addr, Reason: connectReason(err), Err: err}
}

func connectReason(err error) string {
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.As(err, &dnsErr):
		if dnsErr.IsTimeout {
			return reasonTimeout
		}
		return reasonDNS
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return reasonTimeout
	case errors.Is(err, context.Canceled):
		return reasonCancelled
	case errors.Is(err, syscall.ECONNREFUSED):
		return reasonRefused
	case errors.As(err, &netErr) && netErr.Timeout():
		return reasonTimeout
	}
	return reasonFailed
}
