package transport

import (
	"fmt"
	"net/http"
	"time"
)

// ConnectionError is a failure to establish or keep the connection to
// the server: connection refused, DNS failure, TLS handshake or
// certificate validation failure, or a peer that closed the connection
// mid-response.
type ConnectionError struct {
	URL string
	Err error

	// midResponse marks failures after the connection was established,
	// which retry under the read budget rather than the connect budget.
	midResponse bool
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error to %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// TimeoutError is an exhausted read timeout: no response (or no further
// response bytes) arrived within the configured budget.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("no response from %s within read timeout %s", e.URL, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// AuthError is an HTTP 401 or 407 response.
type AuthError struct {
	URL        string
	StatusCode int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication to %s failed: HTTP %d", e.URL, e.StatusCode)
}

// HTTPError is a non-2xx HTTP response that is not an authentication
// failure, including exhausted redirects.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
	Location   string // set for redirects
}

func (e *HTTPError) Error() string {
	if e.IsRedirect() {
		return fmt.Sprintf("server %s redirected to %s (HTTP %d)", e.URL, e.Location, e.StatusCode)
	}
	return fmt.Sprintf("server %s returned HTTP %s", e.URL, e.Status)
}

// IsRedirect reports whether the response was an HTTP redirect.
func (e *HTTPError) IsRedirect() bool {
	switch e.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}
