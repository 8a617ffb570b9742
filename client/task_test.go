// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

package client_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	deploy "github.com/go-deploy/deploy-go"
	"github.com/go-deploy/deploy-go/client"
)

// taskTestServer fakes the deployment and task endpoints used by the
// task tests.
func taskTestServer(t *testing.T, results string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/deployments/":
			w.Write([]byte(`["d1"]`))
		case strings.HasSuffix(r.URL.Path, "/tasks/run"):
			w.Write([]byte(`{"answer": 42}`))
		case strings.HasSuffix(r.URL.Path, "/tasks/create"):
			w.Write([]byte(`{"task_id": "t1", "session_id": "s1"}`))
		case strings.HasSuffix(r.URL.Path, "/results"):
			if r.URL.Query().Get("session_id") == "" {
				t.Error("expected session_id query parameter on results")
			}
			w.Write([]byte(results))
		case strings.HasSuffix(r.URL.Path, "/tasks"):
			w.Write([]byte(`[{"input": "hi", "task_id": "t0", "session_id": "s0"}]`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func taskCollection(t *testing.T, serverURL string) (*client.Client, *client.TaskCollection) {
	t.Helper()
	ctx := t.Context()

	c, err := client.New(client.WithBaseURL(serverURL))
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	deployments, err := c.APIServer().Deployments(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d, ok := deployments.Get("d1")
	if !ok {
		t.Fatal("expected deployment d1")
	}
	tasks, err := d.Tasks(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c, tasks
}

func TestTaskCollection_Run(t *testing.T) {
	ctx := t.Context()

	server := taskTestServer(t, `{}`)
	defer server.Close()

	c, tasks := taskCollection(t, server.URL)
	defer c.Close()

	result, err := tasks.Run(ctx, deploy.NewTaskDefinition("hi", "svc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]any{"answer": float64(42)}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("run result mismatch (-want +got):\n%s", diff)
	}
}

func TestTaskCollection_Create(t *testing.T) {
	ctx := t.Context()

	server := taskTestServer(t, `{}`)
	defer server.Close()

	c, tasks := taskCollection(t, server.URL)
	defer c.Close()

	task, err := tasks.Create(ctx, deploy.NewTaskDefinition("hi", "svc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if task.ID() != "t1" {
		t.Errorf("expected server-assigned task ID, got %q", task.ID())
	}
	if task.SessionID() != "s1" {
		t.Errorf("expected server-assigned session ID, got %q", task.SessionID())
	}
	if task.DeploymentID() != "d1" {
		t.Errorf("expected deployment ID to be inherited, got %q", task.DeploymentID())
	}
}

func TestTaskCollection_Snapshot(t *testing.T) {
	server := taskTestServer(t, `{}`)
	defer server.Close()

	c, tasks := taskCollection(t, server.URL)
	defer c.Close()

	if diff := cmp.Diff([]string{"t0"}, tasks.IDs()); diff != "" {
		t.Errorf("task IDs mismatch (-want +got):\n%s", diff)
	}
	task, ok := tasks.Get("t0")
	if !ok {
		t.Fatal("expected task t0 in collection")
	}
	if task.SessionID() != "s0" {
		t.Errorf("expected session ID from the list response, got %q", task.SessionID())
	}
}

func TestTask_Results(t *testing.T) {
	tests := map[string]struct {
		body string
	}{
		"plain result object": {
			body: `{"task_id": "t1", "result": "done"}`,
		},
		"double-encoded result object": {
			body: `"{\"task_id\": \"t1\", \"result\": \"done\"}"`,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := t.Context()

			server := taskTestServer(t, tc.body)
			defer server.Close()

			c, tasks := taskCollection(t, server.URL)
			defer c.Close()

			task, err := tasks.Create(ctx, deploy.NewTaskDefinition("hi", "svc"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			result, err := task.Results(ctx)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.TaskID != "t1" || result.Result != "done" {
				t.Errorf("unexpected result: %+v", result)
			}
		})
	}
}

func TestTask_ResultsAsync(t *testing.T) {
	ctx := t.Context()

	server := taskTestServer(t, `{"task_id": "t1", "result": "done"}`)
	defer server.Close()

	c, tasks := taskCollection(t, server.URL)
	defer c.Close()

	task, err := tasks.Create(ctx, deploy.NewTaskDefinition("hi", "svc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fut := task.ResultsAsync(ctx)
	result, err := fut.Wait(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Result != "done" {
		t.Errorf("expected resolved result, got %+v", result)
	}
}
