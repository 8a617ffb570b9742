// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-deploy/deploy-go/auth"
)

// Option configures a Client.
type Option func(*options) error

// options holds all configuration for a Client.
type options struct {
	// Core configuration
	baseURL    string
	httpClient *http.Client

	// Connection settings
	timeout      time.Duration
	skipVerify   bool
	pollInterval time.Duration

	// Retry configuration; nil means no retries.
	retryConfig *RetryConfig

	// Authentication
	authProvider auth.TokenProvider

	// Interceptors
	interceptors []Interceptor

	// Calling convention for the resource graph.
	mode CallMode

	// Logging
	logger zerolog.Logger
}

// defaultOptions returns default client options.
func defaultOptions() *options {
	return &options{
		timeout:      2 * time.Minute,
		pollInterval: 500 * time.Millisecond,
		mode:         ModeSync,
		logger:       zerolog.Nop(),
		httpClient:   http.DefaultClient,
	}
}

// WithBaseURL sets the base URL of the API server.
func WithBaseURL(url string) Option {
	return func(o *options) error {
		if url == "" {
			return &ValidationError{Field: "baseURL", Message: "base URL cannot be empty"}
		}
		o.baseURL = url
		return nil
	}
}

// WithHTTPClient sets a custom HTTP client. When set, the client's own
// timeout and TLS settings are left untouched.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) error {
		if client == nil {
			return &ValidationError{Field: "httpClient", Message: "HTTP client cannot be nil"}
		}
		o.httpClient = client
		return nil
	}
}

// WithTimeout sets the timeout applied to every non-streaming request.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) error {
		if timeout <= 0 {
			return &ValidationError{Field: "timeout", Message: "timeout must be positive"}
		}
		o.timeout = timeout
		return nil
	}
}

// WithInsecureSkipVerify disables TLS certificate verification.
func WithInsecureSkipVerify(skip bool) Option {
	return func(o *options) error {
		o.skipVerify = skip
		return nil
	}
}

// WithPollInterval sets the delay between connection attempts while an
// event stream waits for its task to become known to the server.
func WithPollInterval(interval time.Duration) Option {
	return func(o *options) error {
		if interval <= 0 {
			return &ValidationError{Field: "pollInterval", Message: "poll interval must be positive"}
		}
		o.pollInterval = interval
		return nil
	}
}

// WithRetryConfig enables request retries with the given configuration.
// Without it every failed request is surfaced to the caller unchanged.
func WithRetryConfig(config *RetryConfig) Option {
	return func(o *options) error {
		if config == nil {
			return &ValidationError{Field: "retryConfig", Message: "retry config cannot be nil"}
		}
		if config.MaxAttempts < 0 {
			return &ValidationError{Field: "retryConfig.MaxAttempts", Message: "max attempts must be non-negative"}
		}
		o.retryConfig = config
		return nil
	}
}

// WithAuthToken authenticates every request with a static bearer token.
func WithAuthToken(token string) Option {
	return func(o *options) error {
		o.authProvider = auth.NewStaticTokenProvider(token)
		return nil
	}
}

// WithAuthProvider sets a custom credential provider.
func WithAuthProvider(provider auth.TokenProvider) Option {
	return func(o *options) error {
		if provider == nil {
			return &ValidationError{Field: "authProvider", Message: "auth provider cannot be nil"}
		}
		o.authProvider = provider
		return nil
	}
}

// WithInterceptor adds an interceptor to the client.
func WithInterceptor(interceptor Interceptor) Option {
	return func(o *options) error {
		if interceptor == nil {
			return &ValidationError{Field: "interceptor", Message: "interceptor cannot be nil"}
		}
		o.interceptors = append(o.interceptors, interceptor)
		return nil
	}
}

// WithCallMode sets the calling convention advertised by every resource
// spawned from the client.
func WithCallMode(mode CallMode) Option {
	return func(o *options) error {
		if mode != ModeSync && mode != ModeAsync {
			return &ValidationError{Field: "mode", Message: "unknown call mode"}
		}
		o.mode = mode
		return nil
	}
}

// WithLogger sets the logger used for debug output. The default logger
// discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
