// Package graph implements the central alignment store: an indexed,
// concurrency-safe set of (subject, predicate, object) triples with a
// store-scoped schema catalog, a conjunctive pattern-query engine,
// immutable snapshots, and a versioned file serialization format.
//
// All pipeline stages write through Store.AddEntity and
// Store.AddRelationship and read through Store.QueryPattern or a
// Snapshot. Writes are validated against the Catalog before anything is
// indexed, so a failed write leaves the store unchanged.
package graph
