// Package types provides the shared data model for the incremental evaluation
// core: node identifiers, signatures, dirty-priority levels, rectangles, and
// event records used by the graph, dirty, cache, evaluator, and scheduler
// packages.
//
// # Overview
//
// This package has no dependency on any other package in this module. It
// exists to avoid circular imports between the five core components, which
// all need to agree on what a NodeID, a NodeSignature, and a Priority are.
//
// # Design Principles
//
//   - Minimal dependencies: this package imports only the standard library.
//   - Value semantics: NodeID and Priority are small value types; NodeSignature
//     and Rect are compared structurally, never by pointer identity.
//   - No behavior: this package defines data, not algorithms. Graph traversal
//     lives in pkg/graph, dirty propagation in pkg/dirty, and so on.
package types
