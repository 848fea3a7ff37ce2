package resilience

import "time"

// CompletionPolicy is the retry policy for AI completion calls: maxRetries
// retries at 1s, 2s, 4s... without jitter, aborting on rate limits. Every
// other failure is retried.
func CompletionPolicy(maxRetries int) Policy {
	return Policy{
		MaxRetries:   maxRetries,
		BaseDelay:    time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		NonRetryable: IsRateLimit,
		OnRetry:      RetryLogger("anthropic", "create_message"),
	}
}
