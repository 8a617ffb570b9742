// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

// Package deploy defines the wire types shared between the API server and
// its Go client SDK: deployments, sessions, tasks and their results.
package deploy

import (
	"fmt"

	"github.com/google/uuid"
)

// Version is the current version of the SDK.
const Version = "0.1.0"

// StatusState represents the reachability state of an API server.
type StatusState string

const (
	// StatusHealthy indicates the server answered with a 2xx status.
	StatusHealthy StatusState = "healthy"

	// StatusUnhealthy indicates the server answered with an error status.
	StatusUnhealthy StatusState = "unhealthy"

	// StatusDown indicates the server could not be reached at all.
	StatusDown StatusState = "down"
)

// Status describes the state of an API server at the time of a status check.
type Status struct {
	State       StatusState `json:"status"`
	Message     string      `json:"status_message,omitempty"`
	Deployments []string    `json:"deployments,omitempty"`
}

// DeploymentDefinition describes a deployment running on the API server.
type DeploymentDefinition struct {
	Name string `json:"name"`
}

// SessionDefinition describes a session within a deployment.
type SessionDefinition struct {
	SessionID string         `json:"session_id"`
	TaskIDs   []string       `json:"task_ids,omitempty"`
	State     map[string]any `json:"state,omitempty"`
}

// NewSessionDefinition returns a SessionDefinition with a freshly
// generated session ID.
func NewSessionDefinition() *SessionDefinition {
	return &SessionDefinition{
		SessionID: uuid.NewString(),
	}
}

// TaskDefinition describes a unit of work submitted to a deployment.
//
// The task ID is assigned client side so a task can be correlated with
// its results and events before the server has acknowledged it.
type TaskDefinition struct {
	Input     string `json:"input"`
	TaskID    string `json:"task_id"`
	SessionID string `json:"session_id,omitempty"`
	ServiceID string `json:"service_id,omitempty"`
}

// NewTaskDefinition returns a TaskDefinition for the given input and
// service with a freshly generated task ID.
func NewTaskDefinition(input, serviceID string) *TaskDefinition {
	return &TaskDefinition{
		Input:     input,
		TaskID:    uuid.NewString(),
		ServiceID: serviceID,
	}
}

// Validate checks that the task definition can be submitted.
func (t *TaskDefinition) Validate() error {
	if t.TaskID == "" {
		return fmt.Errorf("task definition: task ID is empty")
	}
	return nil
}

// Message is one entry in a task's conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TaskResult carries the final outcome of a task.
type TaskResult struct {
	TaskID  string         `json:"task_id"`
	History []Message      `json:"history,omitempty"`
	Result  string         `json:"result,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Event is one decoded entry from a task's event stream. The server
// streams events as newline-delimited JSON objects whose shape is
// defined by the workflow producing them, so no further structure is
// imposed here.
type Event map[string]any
