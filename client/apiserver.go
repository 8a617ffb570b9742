// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-json-experiment/json"

	deploy "github.com/go-deploy/deploy-go"
	"github.com/go-deploy/deploy-go/internal/pool"
)

// APIServer is the model wrapping the API server instance itself.
type APIServer struct {
	Model
}

// Status checks the reachability of the API server. A transport failure
// maps to StatusDown and an error response to StatusUnhealthy; neither
// is reported as an error, so callers always get a Status to display.
func (s *APIServer) Status(ctx context.Context) (*deploy.Status, error) {
	resp, err := s.client.do(ctx, http.MethodGet, "/status/", requestOptions{keepStatus: true})
	if err != nil {
		var connErr *ConnectionError
		if errors.As(err, &connErr) {
			return &deploy.Status{
				State:   deploy.StatusDown,
				Message: "API Server is down",
			}, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return &deploy.Status{
			State:   deploy.StatusUnhealthy,
			Message: strings.TrimSpace(string(body)),
		}, nil
	}

	var body struct {
		Deployments []string `json:"deployments"`
	}
	if err := json.UnmarshalRead(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}

	msg := pool.Strings.Get()
	defer pool.Strings.Put(msg)
	msg.WriteString("API Server is up and running.")
	if len(body.Deployments) == 0 {
		msg.WriteString("\nCurrently there are no active deployments")
	} else {
		msg.WriteString("\nActive deployments:")
		for _, name := range body.Deployments {
			msg.WriteString("\n- ")
			msg.WriteString(name)
		}
	}

	return &deploy.Status{
		State:       deploy.StatusHealthy,
		Message:     msg.String(),
		Deployments: body.Deployments,
	}, nil
}

// StatusAsync is the non-blocking form of Status.
func (s *APIServer) StatusAsync(ctx context.Context) *Future[*deploy.Status] {
	return Async(ctx, s.Status)
}

// Deployments returns a snapshot collection of the deployments currently
// active on the API server.
func (s *APIServer) Deployments(ctx context.Context) (*DeploymentCollection, error) {
	var names []string
	if err := s.client.doJSON(ctx, http.MethodGet, "/deployments/", nil, nil, &names); err != nil {
		return nil, err
	}

	items := make(map[string]*Deployment, len(names))
	for _, name := range names {
		items[name] = newDeployment(s.client, name, s.mode)
	}
	return &DeploymentCollection{
		Collection: newCollection(s.client, s.mode, items),
	}, nil
}

// DeploymentsAsync is the non-blocking form of Deployments.
func (s *APIServer) DeploymentsAsync(ctx context.Context) *Future[*DeploymentCollection] {
	return Async(ctx, s.Deployments)
}
