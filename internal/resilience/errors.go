package resilience

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// statusOverloaded is the Anthropic API's "overloaded" status.
const statusOverloaded = 529

// TransientError marks a failure worth retrying: a server fault, a network
// timeout, or, with StatusCode 429, a rate limit.
type TransientError struct {
	Err        error
	StatusCode int
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// NewTransientError wraps err. statusCode is 0 when no HTTP response exists.
func NewTransientError(err error, statusCode int) *TransientError {
	return &TransientError{Err: err, StatusCode: statusCode}
}

// Substrings matched against lowercased messages of errors that carry no
// type information, such as SDK errors flattened to text.
var (
	networkPatterns = []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"transport connection broken",
	}
	rateLimitPatterns = []string{
		"429",
		"rate limit",
		"rate_limit",
		"resource exhausted",
		"resource_exhausted",
		"quota",
		"too many requests",
	}
)

func messageMatches(err error, patterns []string) bool {
	msg := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransient reports whether err is a TransientError anywhere in its chain
// or a network failure a later attempt may not hit.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ECONNABORTED} {
		if errors.Is(err, errno) {
			return true
		}
	}

	return messageMatches(err, networkPatterns)
}

// IsTransientHTTPStatus reports whether a response with this status is worth
// retrying.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		statusOverloaded:
		return true
	}
	return false
}

// IsRateLimit reports whether err signals quota exhaustion. Retrying such an
// error cannot succeed before the quota window resets.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}

	var te *TransientError
	if errors.As(err, &te) && te.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return messageMatches(err, rateLimitPatterns)
}
