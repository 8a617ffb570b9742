// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

// RetryConfig configures the optional retry interceptor. The client
// performs no retries unless a config is installed with
// [WithRetryConfig]; the one exception is the event stream, which always
// re-polls on 404 regardless of this config.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int
	// InitialDelay is the initial delay between attempts.
	InitialDelay time.Duration
	// MaxDelay is the maximum delay between attempts.
	MaxDelay time.Duration
	// Multiplier is the exponential backoff multiplier.
	Multiplier float64
	// RetryableErrors defines which errors should trigger a retry.
	RetryableErrors func(error) bool
}

// DefaultRetryConfig returns a retry configuration suitable for flaky
// networks: three attempts with exponential backoff.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:     3,
		InitialDelay:    1 * time.Second,
		MaxDelay:        30 * time.Second,
		Multiplier:      2.0,
		RetryableErrors: IsRetryableError,
	}
}

// retryableFunc is a function that can be retried.
type retryableFunc func(context.Context) error

// withRetry executes a function with retry logic.
func withRetry(ctx context.Context, config *RetryConfig, operation string, fn retryableFunc) error {
	if config == nil || config.MaxAttempts <= 0 {
		// No retry configured
		return fn(ctx)
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if config.RetryableErrors != nil && !config.RetryableErrors(err) {
			return err
		}

		if attempt == config.MaxAttempts-1 {
			break
		}

		// Add jitter to delay (10% variance)
		jitter := time.Duration(rand.Float64() * float64(delay) * 0.1)

		select {
		case <-time.After(delay + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay = time.Duration(float64(delay) * config.Multiplier)
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return fmt.Errorf("operation %s failed after %d attempts: %w", operation, config.MaxAttempts, lastErr)
}

// retryInterceptor creates an HTTP interceptor that adds retry logic.
func retryInterceptor(config *RetryConfig) Interceptor {
	return func(ctx context.Context, req *http.Request, invoker Invoker) (*http.Response, error) {
		var resp *http.Response

		err := withRetry(ctx, config, "HTTP request", func(ctx context.Context) error {
			// Rewind the body so the request can be replayed.
			if req.Body != nil && req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return err
				}
				req.Body = body
			}

			var err error
			resp, err = invoker(ctx, req)
			if err != nil {
				return err
			}

			if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
				resp.Body.Close()
				return &StatusError{StatusCode: resp.StatusCode}
			}

			return nil
		})

		return resp, err
	}
}
