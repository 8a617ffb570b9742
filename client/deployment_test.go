// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

package client_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-deploy/deploy-go/client"
)

func TestDeploymentCollection_Create(t *testing.T) {
	ctx := t.Context()

	const config = "name: test-deployment\nservices: {}\n"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/deployments/" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
			return
		}
		if r.URL.Path != "/deployments/create" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}

		file, _, err := r.FormFile("config_file")
		if err != nil {
			t.Errorf("expected multipart config_file: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()
		body, _ := io.ReadAll(file)
		if string(body) != config {
			t.Errorf("expected config file to be uploaded verbatim, got %q", body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name": "test-deployment"}`))
	}))
	defer server.Close()

	c, err := client.New(client.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer c.Close()

	deployments, err := c.APIServer().Deployments(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	d, err := deployments.Create(ctx, strings.NewReader(config))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.ID() != "test-deployment" {
		t.Errorf("expected deployment named from the response, got %q", d.ID())
	}
}

func TestDeploymentCollection_Fetch(t *testing.T) {
	ctx := t.Context()

	tests := map[string]struct {
		status  int
		wantErr bool
	}{
		"success echoes the requested id": {
			status:  http.StatusOK,
			wantErr: false,
		},
		"missing deployment surfaces the status error": {
			status:  http.StatusNotFound,
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/deployments/" {
					w.Header().Set("Content-Type", "application/json")
					w.Write([]byte(`[]`))
					return
				}
				// The body is deliberately useless; the client must not
				// depend on it.
				w.WriteHeader(tc.status)
				w.Write([]byte(`{}`))
			}))
			defer server.Close()

			c, err := client.New(client.WithBaseURL(server.URL))
			if err != nil {
				t.Fatalf("failed to create client: %v", err)
			}
			defer c.Close()

			deployments, err := c.APIServer().Deployments(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			d, err := deployments.Fetch(ctx, "my-deployment")
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var statusErr *client.StatusError
				if !errors.As(err, &statusErr) || statusErr.StatusCode != tc.status {
					t.Errorf("expected StatusError %d, got %v", tc.status, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.ID() != "my-deployment" {
				t.Errorf("expected requested id to be echoed, got %q", d.ID())
			}
		})
	}
}

// TestDeployment_EmptyCollections creates a deployment against a mocked
// empty backend and immediately fetches its session and task
// collections; both must come back empty, not as errors.
func TestDeployment_EmptyCollections(t *testing.T) {
	ctx := t.Context()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/deployments/":
			w.Write([]byte(`[]`))
		case r.URL.Path == "/deployments/create":
			w.Write([]byte(`{"name": "fresh"}`))
		case strings.HasSuffix(r.URL.Path, "/sessions"), strings.HasSuffix(r.URL.Path, "/tasks"):
			w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c, err := client.New(client.WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer c.Close()

	deployments, err := c.APIServer().Deployments(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, err := deployments.Create(ctx, strings.NewReader("name: fresh\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sessions, err := d.Sessions(ctx)
	if err != nil {
		t.Fatalf("unexpected error fetching sessions: %v", err)
	}
	if sessions.Len() != 0 {
		t.Errorf("expected empty session collection, got %d items", sessions.Len())
	}

	tasks, err := d.Tasks(ctx)
	if err != nil {
		t.Fatalf("unexpected error fetching tasks: %v", err)
	}
	if tasks.Len() != 0 {
		t.Errorf("expected empty task collection, got %d items", tasks.Len())
	}
}
