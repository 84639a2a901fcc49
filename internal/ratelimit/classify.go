package ratelimit

import (
	"fmt"
	"strings"
)

// StatusError represents a non-success HTTP response from a provider. It
// carries the code so classification does not depend on error subtypes the
// provider adapters would each have to define.
type StatusError struct {
	API  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.API, e.Code, e.Body)
}

// IsRateLimited reports whether an error looks like a rate-limit rejection.
// Classification is a pure string/status heuristic so it works uniformly
// across providers regardless of how each one phrases its refusals.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if se, ok := err.(*StatusError); ok && se.Code == 429 {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"429", "too many requests", "quota exceeded", "rate limit"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
