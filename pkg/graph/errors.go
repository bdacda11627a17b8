package graph

import "errors"

// Sentinel errors for dependency-graph operations.
var (
	// ErrAlreadyExists is returned by AddNode when the id is already registered.
	ErrAlreadyExists = errors.New("graph: node already exists")

	// ErrUnknownNode is returned by AddEdge when either endpoint is unregistered.
	ErrUnknownNode = errors.New("graph: unknown node")

	// ErrCycleDetected is returned by AddEdge when the insertion would close a cycle.
	ErrCycleDetected = errors.New("graph: cycle detected")
)
