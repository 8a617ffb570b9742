// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

package client

import "context"

// Future is the resolved-later half of the SDK's dual calling
// convention. Each operation is implemented once as a blocking method;
// its Async variant hands that same implementation to a Future, which
// drives it on a dedicated goroutine so the caller is never left holding
// a half-finished computation: Wait always returns the resolved value or
// the resolved error.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Async runs fn on its own goroutine and returns a Future for its
// result. The context is handed through to fn unchanged; cancel it to
// cancel the underlying operation.
func Async[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Done returns a channel that is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the operation completes and returns its result, or
// returns early with the context's error. An early return does not stop
// the operation; a later Wait still observes its outcome.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
