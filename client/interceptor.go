// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"net/http"
)

// Invoker performs a single HTTP request.
type Invoker func(ctx context.Context, req *http.Request) (*http.Response, error)

// Interceptor wraps an Invoker, observing or modifying the request and
// response. Interceptors run in registration order for every request the
// client issues, including event-stream connection attempts.
type Interceptor func(ctx context.Context, req *http.Request, invoker Invoker) (*http.Response, error)

// chainInterceptors chains multiple interceptors together.
func chainInterceptors(interceptors []Interceptor, invoker Invoker) Invoker {
	if len(interceptors) == 0 {
		return invoker
	}

	// Build the chain from right to left
	for i := len(interceptors) - 1; i >= 0; i-- {
		interceptor := interceptors[i]
		next := invoker
		invoker = func(ctx context.Context, req *http.Request) (*http.Response, error) {
			return interceptor(ctx, req, next)
		}
	}

	return invoker
}
