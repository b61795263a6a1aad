package transport

import (
	"errors"
	"math"
	"time"
)

// Retry policy defaults.
const (
	DefaultConnectRetries  = 3
	DefaultReadRetries     = 3
	DefaultRedirectRetries = 5
	DefaultBackoffFactor   = 0.1
)

// RetryPolicy controls automatic retries per failure class. TotalRetries
// caps the sum across all classes when positive; zero or negative means
// no global cap.
type RetryPolicy struct {
	ConnectRetries  int
	ReadRetries     int
	RedirectRetries int
	TotalRetries    int
	BackoffFactor   float64 // seconds
}

// DefaultRetryPolicy returns the default retry budgets.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		ConnectRetries:  DefaultConnectRetries,
		ReadRetries:     DefaultReadRetries,
		RedirectRetries: DefaultRedirectRetries,
		BackoffFactor:   DefaultBackoffFactor,
	}
}

// failureClass is the retry class of one failed attempt.
type failureClass int

const (
	classConnect failureClass = iota
	classRead
	classRedirect
)

func (c failureClass) String() string {
	switch c {
	case classConnect:
		return "connect"
	case classRead:
		return "read"
	case classRedirect:
		return "redirect"
	}
	return "unknown"
}

// controller coordinates the per-class retry counters of one request.
// All attempts of a request share one controller, so the class budgets
// and the global cap are enforced together.
type controller struct {
	policy RetryPolicy
	counts [3]int
	total  int
}

func newController(policy RetryPolicy) *controller {
	return &controller{policy: policy}
}

func (c *controller) limit(class failureClass) int {
	switch class {
	case classConnect:
		return c.policy.ConnectRetries
	case classRead:
		return c.policy.ReadRetries
	default:
		return c.policy.RedirectRetries
	}
}

// next consumes one retry of the given class. It returns the backoff to
// wait before the retry, or false when the class budget or the global
// cap is exhausted.
func (c *controller) next(class failureClass) (time.Duration, bool) {
	if c.counts[class] >= c.limit(class) {
		return 0, false
	}
	if c.policy.TotalRetries > 0 && c.total >= c.policy.TotalRetries {
		return 0, false
	}
	c.counts[class]++
	c.total++
	return backoff(c.policy.BackoffFactor, c.counts[class]), true
}

// backoff returns factor * 2^(attempt-1) seconds.
func backoff(factor float64, attempt int) time.Duration {
	if factor <= 0 || attempt < 1 {
		return 0
	}
	return time.Duration(factor * math.Pow(2, float64(attempt-1)) * float64(time.Second))
}

// classify maps a public transport error to its retry class. Non-nil
// second return means the error retries under that class; auth errors
// and final HTTP errors never retry.
func classify(err error) (failureClass, bool) {
	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		if connErr.midResponse {
			return classRead, true
		}
		return classConnect, true
	}
	var timeoutErr *TimeoutError
	if errors.As(err, &timeoutErr) {
		return classRead, true
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.IsRedirect() {
		return classRedirect, true
	}
	return 0, false
}
