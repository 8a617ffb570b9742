// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-json-experiment/json"

	deploy "github.com/go-deploy/deploy-go"
	"github.com/go-deploy/deploy-go/internal/pool"
)

// Deployment is the model wrapping one running workflow configuration on
// the API server.
type Deployment struct {
	Model
}

// newDeployment assembles a deployment model without touching the network.
func newDeployment(client *Client, id string, mode CallMode) *Deployment {
	return &Deployment{Model: newModel(client, id, mode)}
}

// Sessions returns a snapshot collection of the sessions currently open
// in this deployment.
func (d *Deployment) Sessions(ctx context.Context) (*SessionCollection, error) {
	var defs []deploy.SessionDefinition
	path := fmt.Sprintf("/deployments/%s/sessions", d.id)
	if err := d.client.doJSON(ctx, http.MethodGet, path, nil, nil, &defs); err != nil {
		return nil, err
	}

	items := make(map[string]*Session, len(defs))
	for _, def := range defs {
		items[def.SessionID] = newSession(d.client, def.SessionID, d.mode)
	}
	return &SessionCollection{
		Collection:   newCollection(d.client, d.mode, items),
		deploymentID: d.id,
	}, nil
}

// SessionsAsync is the non-blocking form of Sessions.
func (d *Deployment) SessionsAsync(ctx context.Context) *Future[*SessionCollection] {
	return Async(ctx, d.Sessions)
}

// Tasks returns a snapshot collection of the tasks from all the sessions
// in this deployment.
func (d *Deployment) Tasks(ctx context.Context) (*TaskCollection, error) {
	var defs []deploy.TaskDefinition
	path := fmt.Sprintf("/deployments/%s/tasks", d.id)
	if err := d.client.doJSON(ctx, http.MethodGet, path, nil, nil, &defs); err != nil {
		return nil, err
	}

	items := make(map[string]*Task, len(defs))
	for _, def := range defs {
		items[def.TaskID] = newTask(d.client, def.TaskID, d.id, def.SessionID, d.mode)
	}
	return &TaskCollection{
		Collection:   newCollection(d.client, d.mode, items),
		deploymentID: d.id,
	}, nil
}

// TasksAsync is the non-blocking form of Tasks.
func (d *Deployment) TasksAsync(ctx context.Context) *Future[*TaskCollection] {
	return Async(ctx, d.Tasks)
}

// DeploymentCollection is a snapshot of the deployments active on an API
// server.
type DeploymentCollection struct {
	Collection[*Deployment]
}

// Create uploads a deployment config file and returns the model for the
// deployment the server created from it.
func (dc *DeploymentCollection) Create(ctx context.Context, config io.Reader) (*Deployment, error) {
	buf := pool.Bytes.Get()
	defer pool.Bytes.Put(buf)

	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile("config_file", "deployment.yml")
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(fw, config); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}

	resp, err := dc.client.do(ctx, http.MethodPost, "/deployments/create", requestOptions{
		body:        bytes.NewReader(buf.Bytes()),
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var def deploy.DeploymentDefinition
	if err := json.UnmarshalRead(resp.Body, &def); err != nil {
		return nil, fmt.Errorf("decode create response: %w", err)
	}

	return newDeployment(dc.client, def.Name, dc.mode), nil
}

// CreateAsync is the non-blocking form of Create.
func (dc *DeploymentCollection) CreateAsync(ctx context.Context, config io.Reader) *Future[*Deployment] {
	return Async(ctx, func(ctx context.Context) (*Deployment, error) {
		return dc.Create(ctx, config)
	})
}

// Fetch looks up a deployment by ID on the server. The server does not
// yet return anything useful on this endpoint, so the response body is
// ignored and the requested ID is echoed into a fresh model; the call
// still fails if the deployment does not exist.
func (dc *DeploymentCollection) Fetch(ctx context.Context, id string) (*Deployment, error) {
	if err := dc.client.doJSON(ctx, http.MethodGet, "/deployments/"+id, nil, nil, nil); err != nil {
		return nil, err
	}
	return newDeployment(dc.client, id, dc.mode), nil
}

// FetchAsync is the non-blocking form of Fetch.
func (dc *DeploymentCollection) FetchAsync(ctx context.Context, id string) *Future[*Deployment] {
	return Async(ctx, func(ctx context.Context) (*Deployment, error) {
		return dc.Fetch(ctx, id)
	})
}
