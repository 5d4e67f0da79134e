package chatapi

import (
	"math/rand"
	"regexp"
	"strconv"
	"time"
)

// MinWait is the floor for any computed backoff wait.
const MinWait = 250 * time.Millisecond

// DefaultBackoffBase seeds the exponential fallback branch.
const DefaultBackoffBase = 500 * time.Millisecond

// DefaultBackoffMax caps any computed wait.
const DefaultBackoffMax = 20 * time.Second

// tryAgainRe extracts the "try again in N s" hint some endpoints embed in
// rate-limit error messages.
var tryAgainRe = regexp.MustCompile(`try again in ([0-9]+(?:\.[0-9]+)?)\s*s`)

// RetryState tracks one remote call's retry progression. It is created per
// call and discarded once the call returns or exhausts its attempts.
type RetryState struct {
	Attempt     int
	MaxAttempts int
}

// Exhausted reports whether the retry budget is spent.
func (s *RetryState) Exhausted() bool {
	return s.Attempt >= s.MaxAttempts
}

// backoffWait computes how long to wait before the next attempt, in
// priority order: an explicit Retry-After header value, a duration parsed
// from the error message, then exponential backoff with jitter. Every
// branch is clamped to [MinWait, max].
func backoffWait(attempt int, retryAfter, message string, base, max time.Duration, jitter func(time.Duration) time.Duration) time.Duration {
	if base <= 0 {
		base = DefaultBackoffBase
	}
	if max <= 0 {
		max = DefaultBackoffMax
	}

	if d, ok := parseRetryAfter(retryAfter); ok {
		return clampWait(d, max)
	}
	if d, ok := parseTryAgain(message); ok {
		return clampWait(d, max)
	}

	if attempt < 1 {
		attempt = 1
	}
	d := base << (attempt - 1)
	if d <= 0 || d > max {
		// Shift overflow or past the ceiling; the clamp handles the rest.
		d = max
	}
	if jitter != nil {
		d += jitter(base)
	}
	return clampWait(d, max)
}

// parseRetryAfter converts a Retry-After header value given in seconds.
// HTTP-date forms are not recognized and fall through to the next branch.
func parseRetryAfter(value string) (time.Duration, bool) {
	if value == "" {
		return 0, false
	}
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// parseTryAgain pulls a duration out of an error message's
// "try again in N s" pattern.
func parseTryAgain(message string) (time.Duration, bool) {
	m := tryAgainRe.FindStringSubmatch(message)
	if m == nil {
		return 0, false
	}
	secs, err := strconv.ParseFloat(m[1], 64)
	if err != nil || secs < 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

func clampWait(d, max time.Duration) time.Duration {
	if d < MinWait {
		return MinWait
	}
	if d > max {
		return max
	}
	return d
}

// randomJitter returns a uniform duration in [0, base].
func randomJitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(base) + 1))
}
