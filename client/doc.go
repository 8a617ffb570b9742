// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

// Package client provides the resource-model layer of the deploy SDK: a
// high-level API for talking to an API server that manages deployments,
// sessions and tasks.
//
// Every remote resource is wrapped by a lightweight model object
// ([APIServer], [Deployment], [Session], [Task]) or a keyed collection of
// models ([DeploymentCollection], [SessionCollection], [TaskCollection]).
// Constructing a model never touches the network; I/O happens only when an
// operation is invoked. All models spawned from one client share that
// client's connection settings by reference.
//
// # Basic Usage
//
//	ctx := context.Background()
//	c, err := client.New(
//		client.WithBaseURL("http://localhost:4501"),
//		client.WithTimeout(2 * time.Minute),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer c.Close()
//
//	status, err := c.APIServer().Status(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(status.Message)
//
// # Calling conventions
//
// Each operation has exactly one implementation: the blocking,
// context-aware method. The non-blocking form is a thin adapter returning
// a [Future] that drives the same implementation on its own goroutine:
//
//	fut := task.ResultsAsync(ctx)
//	// ... do other work ...
//	result, err := fut.Wait(ctx)
//
// The [CallMode] chosen at client construction propagates to every
// resource a resource creates, so an entire object graph advertises one
// calling convention.
//
// # Event streaming
//
// A task's event stream is consumed as newline-delimited JSON. While the
// task is not yet known to the server the stream keeps polling; any other
// HTTP error ends it:
//
//	stream := task.Events(ctx)
//	defer stream.Close()
//	for ev := range stream.Events() {
//		fmt.Println(ev)
//	}
//	if err := stream.Err(); err != nil {
//		log.Fatal(err)
//	}
package client
