// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// Common errors.
var (
	// ErrClientClosed is returned when operations are attempted on a closed client.
	ErrClientClosed = errors.New("client is closed")

	// ErrStreamClosed is returned when reading from a closed event stream.
	ErrStreamClosed = errors.New("event stream is closed")
)

// StatusError is returned when the API server answers with a non-2xx
// status. The response body is captured so callers can inspect the
// server's error payload.
type StatusError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected HTTP status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
}

// Is implements errors.Is, matching on status code.
func (e *StatusError) Is(target error) bool {
	var statusErr *StatusError
	if errors.As(target, &statusErr) {
		return e.StatusCode == statusErr.StatusCode
	}
	return false
}

// IsNotFound reports whether err is a StatusError for HTTP 404.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// ConnectionError represents a transport-level failure: the request never
// produced an HTTP response.
type ConnectionError struct {
	Operation string
	URL       string
	Err       error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s to %s: %v", e.Operation, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// IsRetryableError determines if an error should trigger a retry when the
// optional retry interceptor is enabled.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	var connErr *ConnectionError
	if errors.As(err, &connErr) {
		return true
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}

	return false
}
