// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-json-experiment/json"
)

// Client holds the connection settings for one API server and performs
// the raw HTTP calls on behalf of the resource models spawned from it.
// It carries no per-call state, so a single Client is safely shared by
// any number of concurrent resources.
type Client struct {
	opts         *options
	httpClient   *http.Client
	streamClient *http.Client
	interceptors []Interceptor
	closed       bool
	closeMu      sync.Mutex
}

// New creates a new client with the given options. Construction performs
// no network I/O.
func New(opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	if o.baseURL == "" {
		return nil, &ValidationError{Field: "baseURL", Message: "base URL is required"}
	}

	c := &Client{opts: o}

	if o.httpClient == http.DefaultClient {
		transport := http.DefaultTransport
		if o.skipVerify {
			transport = &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
		c.httpClient = &http.Client{Timeout: o.timeout, Transport: transport}
		// Event streams are open-ended, so they get a client without the
		// overall request timeout.
		c.streamClient = &http.Client{Transport: transport}
	} else {
		c.httpClient = o.httpClient
		c.streamClient = o.httpClient
	}

	c.interceptors = o.interceptors
	if o.retryConfig != nil && o.retryConfig.MaxAttempts > 0 {
		c.interceptors = append([]Interceptor{retryInterceptor(o.retryConfig)}, c.interceptors...)
	}

	return c, nil
}

// BaseURL returns the configured base URL of the API server.
func (c *Client) BaseURL() string {
	return c.opts.baseURL
}

// Mode returns the calling convention propagated to resources spawned
// from this client.
func (c *Client) Mode() CallMode {
	return c.opts.mode
}

// APIServer returns the model wrapping the API server itself, the root
// of the resource graph.
func (c *Client) APIServer() *APIServer {
	return &APIServer{Model: newModel(c, "apiserver", c.opts.mode)}
}

// Close releases the client's idle connections. Resources spawned from
// the client fail with ErrClientClosed afterwards.
func (c *Client) Close() error {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.httpClient.CloseIdleConnections()
	c.streamClient.CloseIdleConnections()
	return nil
}

// requestOptions carries the per-request knobs for do.
type requestOptions struct {
	query       url.Values
	body        io.Reader
	contentType string

	// stream selects the HTTP client without an overall timeout.
	stream bool

	// keepStatus suppresses the conversion of non-2xx responses into
	// *StatusError; the caller inspects the status itself.
	keepStatus bool
}

// do performs one HTTP request against the API server. Unless keepStatus
// is set, a non-2xx response is drained and returned as *StatusError; a
// transport failure is returned as *ConnectionError.
func (c *Client) do(ctx context.Context, method, path string, ro requestOptions) (*http.Response, error) {
	c.closeMu.Lock()
	closed := c.closed
	c.closeMu.Unlock()
	if closed {
		return nil, ErrClientClosed
	}

	u := c.opts.baseURL + path
	if len(ro.query) > 0 {
		u += "?" + ro.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, ro.body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if ro.contentType != "" {
		req.Header.Set("Content-Type", ro.contentType)
	}
	if err := c.applyAuth(req); err != nil {
		return nil, fmt.Errorf("apply auth: %w", err)
	}

	httpClient := c.httpClient
	if ro.stream {
		httpClient = c.streamClient
	}
	invoker := func(ctx context.Context, req *http.Request) (*http.Response, error) {
		return httpClient.Do(req.WithContext(ctx))
	}
	invoker = chainInterceptors(c.interceptors, invoker)

	start := time.Now()
	resp, err := invoker(ctx, req)
	if err != nil {
		// The retry interceptor surfaces exhausted 5xx responses as a
		// *StatusError; pass those through untouched.
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, err
		}
		return nil, &ConnectionError{Operation: method, URL: u, Err: err}
	}

	c.opts.logger.Debug().
		Str("method", method).
		Str("url", u).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request")

	if !ro.keepStatus && resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return resp, nil
}

// doJSON performs a request with an optional JSON body and decodes the
// JSON response into out. A nil out discards the response body.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	ro := requestOptions{query: query}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		ro.body = bytes.NewReader(data)
		ro.contentType = "application/json"
	}

	resp, err := c.do(ctx, method, path, ro)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}
	if err := json.UnmarshalRead(resp.Body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// applyAuth applies the configured credentials to a request.
func (c *Client) applyAuth(req *http.Request) error {
	if c.opts.authProvider == nil {
		return nil
	}

	creds, err := c.opts.authProvider.Credentials()
	if err != nil {
		return err
	}
	header, err := creds.AuthHeader()
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", header)
	return nil
}
