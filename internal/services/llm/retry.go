package llm

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// RetryConfig defines retry behaviour for provider calls.
// Explanation calls run under a short per-call deadline, so backoffs are
// measured in seconds rather than quota windows.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int

	// InitialBackoff is the wait before the first rate-limit retry
	InitialBackoff time.Duration

	// MaxBackoff caps every wait
	MaxBackoff time.Duration

	// BackoffMultiplier is applied per retry
	BackoffMultiplier float64

	// TransientBackoff is the linear step used for non rate-limit failures
	TransientBackoff time.Duration
}

const (
	DefaultMaxRetries        = 2
	DefaultInitialBackoff    = 2 * time.Second
	DefaultMaxBackoff        = 8 * time.Second
	DefaultBackoffMultiplier = 2.0
	DefaultTransientBackoff  = 500 * time.Millisecond
)

// NewDefaultRetryConfig returns a RetryConfig with defaults
func NewDefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        DefaultMaxRetries,
		InitialBackoff:    DefaultInitialBackoff,
		MaxBackoff:        DefaultMaxBackoff,
		BackoffMultiplier: DefaultBackoffMultiplier,
		TransientBackoff:  DefaultTransientBackoff,
	}
}

// IsRateLimitError checks if an error is a provider rate limit or quota error.
// Matches 429 status codes, Gemini RESOURCE_EXHAUSTED and Anthropic rate_limit_error.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "RESOURCE_EXHAUSTED") ||
		strings.Contains(errStr, "rate_limit") ||
		strings.Contains(strings.ToLower(errStr), "quota")
}

// IsAuthError checks for errors that no retry can fix
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "401") ||
		strings.Contains(errStr, "403") ||
		strings.Contains(errStr, "authentication_error") ||
		strings.Contains(errStr, "API_KEY_INVALID")
}

// retryDelayRegex matches "Please retry in Xs" or "retryDelay:Xs" patterns
var retryDelayRegex = regexp.MustCompile(`(?i)(?:Please retry in |retryDelay[:\s]+)(\d+(?:\.\d+)?)\s*s`)

// ExtractRetryDelay parses the API-suggested retry delay from an error.
// Returns 0 if no delay is found in the error message.
//
// Example error message:
// "Error 429, Message: ... Please retry in 4.387061394s., Status: RESOURCE_EXHAUSTED"
func ExtractRetryDelay(err error) time.Duration {
	if err == nil {
		return 0
	}

	matches := retryDelayRegex.FindStringSubmatch(err.Error())
	if len(matches) < 2 {
		return 0
	}

	seconds, parseErr := strconv.ParseFloat(matches[1], 64)
	if parseErr != nil {
		return 0
	}

	return time.Duration(seconds * float64(time.Second))
}

// Backoff returns the wait before retry number attempt (0-based) after err.
// Rate-limit errors back off exponentially from the API-suggested delay, or
// InitialBackoff when none is given. Other errors back off linearly.
// The result is capped at MaxBackoff.
func (c *RetryConfig) Backoff(attempt int, err error) time.Duration {
	var backoff time.Duration
	if IsRateLimitError(err) {
		base := c.InitialBackoff
		if apiDelay := ExtractRetryDelay(err); apiDelay > 0 {
			base = apiDelay
		}

		multiplier := 1.0
		for i := 0; i < attempt; i++ {
			multiplier *= c.BackoffMultiplier
		}
		backoff = time.Duration(float64(base) * multiplier)
	} else {
		backoff = time.Duration(attempt+1) * c.TransientBackoff
	}

	if backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}
	return backoff
}
