// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	deploy "github.com/go-deploy/deploy-go"
)

// Session is the model wrapping one stateful execution context within a
// deployment.
type Session struct {
	Model
}

// newSession assembles a session model without touching the network.
func newSession(client *Client, id string, mode CallMode) *Session {
	return &Session{Model: newModel(client, id, mode)}
}

// SessionCollection is a snapshot of the sessions open in one deployment.
type SessionCollection struct {
	Collection[*Session]

	deploymentID string
}

// DeploymentID returns the ID of the deployment the sessions belong to.
func (sc *SessionCollection) DeploymentID() string {
	return sc.deploymentID
}

// Create opens a new session in the deployment and returns its model.
func (sc *SessionCollection) Create(ctx context.Context) (*Session, error) {
	var def deploy.SessionDefinition
	path := fmt.Sprintf("/deployments/%s/sessions/create", sc.deploymentID)
	if err := sc.client.doJSON(ctx, http.MethodPost, path, nil, nil, &def); err != nil {
		return nil, err
	}
	return newSession(sc.client, def.SessionID, sc.mode), nil
}

// CreateAsync is the non-blocking form of Create.
func (sc *SessionCollection) CreateAsync(ctx context.Context) *Future[*Session] {
	return Async(ctx, sc.Create)
}

// Delete removes the session with the given ID from the deployment.
func (sc *SessionCollection) Delete(ctx context.Context, sessionID string) error {
	path := fmt.Sprintf("/deployments/%s/sessions/delete", sc.deploymentID)
	query := url.Values{"session_id": []string{sessionID}}
	return sc.client.doJSON(ctx, http.MethodPost, path, query, nil, nil)
}

// DeleteAsync is the non-blocking form of Delete.
func (sc *SessionCollection) DeleteAsync(ctx context.Context, sessionID string) *Future[struct{}] {
	return Async(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, sc.Delete(ctx, sessionID)
	})
}
