// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-json-experiment/json"

	deploy "github.com/go-deploy/deploy-go"
)

// Task is the model wrapping one unit of work submitted to a session in
// a deployment.
type Task struct {
	Model

	deploymentID string
	sessionID    string
}

// newTask assembles a task model without touching the network.
func newTask(client *Client, id, deploymentID, sessionID string, mode CallMode) *Task {
	return &Task{
		Model:        newModel(client, id, mode),
		deploymentID: deploymentID,
		sessionID:    sessionID,
	}
}

// DeploymentID returns the ID of the deployment the task runs in.
func (t *Task) DeploymentID() string {
	return t.deploymentID
}

// SessionID returns the ID of the session the task belongs to.
func (t *Task) SessionID() string {
	return t.sessionID
}

// Results fetches the result of the task.
func (t *Task) Results(ctx context.Context) (*deploy.TaskResult, error) {
	path := fmt.Sprintf("/deployments/%s/tasks/%s/results", t.deploymentID, t.id)
	query := url.Values{"session_id": []string{t.sessionID}}

	resp, err := t.client.do(ctx, http.MethodGet, path, requestOptions{query: query})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read task result: %w", err)
	}

	// The server may double-encode the result, returning a JSON string
	// that itself contains the serialized result object.
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		data = []byte(raw)
	}

	var result deploy.TaskResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode task result: %w", err)
	}
	return &result, nil
}

// ResultsAsync is the non-blocking form of Results.
func (t *Task) ResultsAsync(ctx context.Context) *Future[*deploy.TaskResult] {
	return Async(ctx, t.Results)
}

// Events opens the task's event stream. The returned stream keeps
// polling while the server reports the task as not found, then delivers
// each streamed event until the server closes the connection. The call
// itself does not block; failures surface through the stream.
func (t *Task) Events(ctx context.Context) *EventStream {
	return newEventStream(ctx, t)
}

// TaskCollection is a snapshot of the tasks in one deployment.
type TaskCollection struct {
	Collection[*Task]

	deploymentID string
}

// DeploymentID returns the ID of the deployment the tasks belong to.
func (tc *TaskCollection) DeploymentID() string {
	return tc.deploymentID
}

// Run submits a task and blocks until the server returns its final
// result inline.
func (tc *TaskCollection) Run(ctx context.Context, task *deploy.TaskDefinition) (any, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}

	var result any
	path := fmt.Sprintf("/deployments/%s/tasks/run", tc.deploymentID)
	if err := tc.client.doJSON(ctx, http.MethodPost, path, nil, task, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// RunAsync is the non-blocking form of Run.
func (tc *TaskCollection) RunAsync(ctx context.Context, task *deploy.TaskDefinition) *Future[any] {
	return Async(ctx, func(ctx context.Context) (any, error) {
		return tc.Run(ctx, task)
	})
}

// Create submits a task without waiting for its result and returns the
// model for it, carrying the server-assigned task and session IDs.
func (tc *TaskCollection) Create(ctx context.Context, task *deploy.TaskDefinition) (*Task, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}

	var fields struct {
		TaskID    string `json:"task_id"`
		SessionID string `json:"session_id"`
	}
	path := fmt.Sprintf("/deployments/%s/tasks/create", tc.deploymentID)
	if err := tc.client.doJSON(ctx, http.MethodPost, path, nil, task, &fields); err != nil {
		return nil, err
	}

	return newTask(tc.client, fields.TaskID, tc.deploymentID, fields.SessionID, tc.mode), nil
}

// CreateAsync is the non-blocking form of Create.
func (tc *TaskCollection) CreateAsync(ctx context.Context, task *deploy.TaskDefinition) *Future[*Task] {
	return Async(ctx, func(ctx context.Context) (*Task, error) {
		return tc.Create(ctx, task)
	})
}
