// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-deploy/deploy-go/client"
)

func TestFuture_Wait(t *testing.T) {
	ctx := t.Context()

	fut := client.Async(ctx, func(ctx context.Context) (int, error) {
		return 7, nil
	})
	got, err := fut.Wait(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Errorf("expected 7, got %d", got)
	}

	// A second Wait observes the same outcome.
	got, err = fut.Wait(ctx)
	if err != nil || got != 7 {
		t.Errorf("expected cached result, got (%d, %v)", got, err)
	}
}

func TestFuture_Error(t *testing.T) {
	ctx := t.Context()
	boom := errors.New("boom")

	fut := client.Async(ctx, func(ctx context.Context) (string, error) {
		return "", boom
	})
	if _, err := fut.Wait(ctx); !errors.Is(err, boom) {
		t.Errorf("expected wrapped operation error, got %v", err)
	}
}

func TestFuture_WaitCanceled(t *testing.T) {
	ctx := t.Context()
	block := make(chan struct{})
	defer close(block)

	fut := client.Async(ctx, func(ctx context.Context) (int, error) {
		<-block
		return 1, nil
	})

	waitCtx, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := fut.Wait(waitCtx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}

	select {
	case <-fut.Done():
		t.Error("expected operation to still be in flight")
	default:
	}
}
