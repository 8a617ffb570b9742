// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-json-experiment/json"

	deploy "github.com/go-deploy/deploy-go"
)

// StreamState is the phase an event stream is in.
type StreamState int32

const (
	// StreamPolling means the stream is waiting for the server to know
	// about the task, reconnecting at the poll interval.
	StreamPolling StreamState = iota
	// StreamStreaming means the stream is connected and delivering events.
	StreamStreaming
	// StreamDone means the stream has ended, cleanly or with an error.
	StreamDone
)

// String returns the string representation of the stream state.
func (s StreamState) String() string {
	switch s {
	case StreamPolling:
		return "polling"
	case StreamStreaming:
		return "streaming"
	case StreamDone:
		return "done"
	default:
		return "unknown"
	}
}

// EventStream delivers the events of one task as they are produced. The
// sequence is forward-only and not restartable: once the server closes
// the connection the stream is done.
//
// While the server answers 404 the task is considered not yet surfaced
// and the stream silently reconnects after the client's poll interval.
// Any other failure ends the stream; consume the channel until it closes
// and then check Err.
type EventStream struct {
	client       *Client
	task         *Task
	pollInterval time.Duration

	events chan deploy.Event
	state  atomic.Int32
	cancel context.CancelFunc

	closeOnce sync.Once
	closed    atomic.Bool

	errMu sync.Mutex
	err   error
}

// newEventStream starts the reader goroutine for one task's events.
func newEventStream(ctx context.Context, task *Task) *EventStream {
	ctx, cancel := context.WithCancel(ctx)
	s := &EventStream{
		client:       task.client,
		task:         task,
		pollInterval: task.client.opts.pollInterval,
		events:       make(chan deploy.Event, 16),
		cancel:       cancel,
	}
	go s.run(ctx)
	return s
}

// Events returns the channel the task's events are delivered on. It is
// closed when the stream ends for any reason.
func (s *EventStream) Events() <-chan deploy.Event {
	return s.events
}

// State returns the current phase of the stream.
func (s *EventStream) State() StreamState {
	return StreamState(s.state.Load())
}

// Err returns the error that ended the stream, if any. It is only
// meaningful after the events channel has been closed.
func (s *EventStream) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

// Close stops the stream and releases its connection. Closing an already
// closed stream is a no-op.
func (s *EventStream) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.cancel()
	})
	return nil
}

// fail records the error that ended the stream. Cancellation caused by
// Close is not an error.
func (s *EventStream) fail(err error) {
	if s.closed.Load() && errors.Is(err, context.Canceled) {
		return
	}
	s.errMu.Lock()
	s.err = err
	s.errMu.Unlock()
}

// run drives the polling/streaming state machine.
func (s *EventStream) run(ctx context.Context) {
	defer func() {
		s.state.Store(int32(StreamDone))
		close(s.events)
		s.cancel()
	}()

	path := fmt.Sprintf("/deployments/%s/tasks/%s/events", s.task.deploymentID, s.task.id)
	query := url.Values{"session_id": []string{s.task.sessionID}}

	for {
		resp, err := s.client.do(ctx, http.MethodGet, path, requestOptions{
			query:  query,
			stream: true,
		})
		if err != nil {
			if IsNotFound(err) {
				// Task not surfaced yet, keep polling.
				select {
				case <-time.After(s.pollInterval):
					continue
				case <-ctx.Done():
					s.fail(ctx.Err())
					return
				}
			}
			s.fail(err)
			return
		}

		s.state.Store(int32(StreamStreaming))
		s.client.opts.logger.Debug().
			Str("task_id", s.task.id).
			Msg("event stream connected")

		err = s.consume(ctx, resp.Body)
		resp.Body.Close()
		if err != nil {
			s.fail(err)
		}
		return
	}
}

// consume decodes the newline-delimited JSON body line by line, sending
// each event downstream until EOF.
func (s *EventStream) consume(ctx context.Context, body io.Reader) error {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event deploy.Event
		if err := json.Unmarshal(line, &event); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}

		select {
		case s.events <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return scanner.Err()
}

// EventIterator is a pull-based facade over an EventStream.
type EventIterator struct {
	stream *EventStream
}

// NewEventIterator creates an iterator over stream.
func NewEventIterator(stream *EventStream) *EventIterator {
	return &EventIterator{stream: stream}
}

// Next returns the next event. It returns the stream's terminal error
// once the stream ends, or ErrStreamClosed when it ended cleanly.
func (it *EventIterator) Next(ctx context.Context) (deploy.Event, error) {
	select {
	case event, ok := <-it.stream.Events():
		if !ok {
			if err := it.stream.Err(); err != nil {
				return nil, err
			}
			return nil, ErrStreamClosed
		}
		return event, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ForEach applies fn to each remaining event. A clean end of the stream
// returns nil; any other error, including one returned by fn, stops the
// iteration and is returned.
func (it *EventIterator) ForEach(ctx context.Context, fn func(deploy.Event) error) error {
	for {
		event, err := it.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrStreamClosed) {
				return nil
			}
			return err
		}
		if err := fn(event); err != nil {
			return err
		}
	}
}
