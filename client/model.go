// Copyright 2025 The Go Deploy Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"maps"
	"slices"
)

// CallMode is the calling convention advertised by a resource graph. It
// is fixed when a client is constructed and propagates from every
// resource to the resources it creates, so one graph never mixes
// conventions. The mode is advisory: both entry points exist on every
// operation, the mode records which one the graph's owner intends to use.
type CallMode int

const (
	// ModeSync marks a graph driven through the blocking methods.
	ModeSync CallMode = iota
	// ModeAsync marks a graph driven through the Future-returning
	// adapters.
	ModeAsync
)

// String returns the string representation of the call mode.
func (m CallMode) String() string {
	switch m {
	case ModeSync:
		return "sync"
	case ModeAsync:
		return "async"
	default:
		return "unknown"
	}
}

// Model is the base of every single-resource wrapper. It holds the
// resource's opaque identifier, the shared client and the call mode, and
// nothing else: constructing a model is pure metadata assembly and never
// performs I/O.
type Model struct {
	client *Client
	id     string
	mode   CallMode
}

// newModel assembles a model. The id is immutable afterwards.
func newModel(client *Client, id string, mode CallMode) Model {
	return Model{
		client: client,
		id:     id,
		mode:   mode,
	}
}

// ID returns the resource's opaque identifier.
func (m Model) ID() string {
	return m.id
}

// Mode returns the calling convention this resource was created with.
func (m Model) Mode() CallMode {
	return m.mode
}

// Collection is the base of every resource group. It wraps a snapshot of
// models keyed by ID, materialized from one list response; it is not a
// live view and never refreshes itself.
type Collection[T any] struct {
	client *Client
	mode   CallMode
	items  map[string]T
}

// newCollection assembles a collection around pre-built items.
func newCollection[T any](client *Client, mode CallMode, items map[string]T) Collection[T] {
	if items == nil {
		items = make(map[string]T)
	}
	return Collection[T]{
		client: client,
		mode:   mode,
		items:  items,
	}
}

// Mode returns the calling convention this collection was created with.
// Every item shares it, as does every resource the collection creates.
func (c Collection[T]) Mode() CallMode {
	return c.mode
}

// Len returns the number of items in the snapshot.
func (c Collection[T]) Len() int {
	return len(c.items)
}

// IDs returns the sorted keys of the snapshot.
func (c Collection[T]) IDs() []string {
	return slices.Sorted(maps.Keys(c.items))
}

// Get returns the item with the given ID.
func (c Collection[T]) Get(id string) (T, bool) {
	item, ok := c.items[id]
	return item, ok
}

// Items returns a copy of the snapshot map.
func (c Collection[T]) Items() map[string]T {
	return maps.Clone(c.items)
}
