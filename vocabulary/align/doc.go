// Package align defines the closed vocabulary for the alignment graph:
// entity type names, predicate names, the categorical enumerations each
// categorical predicate accepts, and the deterministic category-to-score
// mapping tables used by the scoring engine.
//
// Everything in this package is a compile-time constant or an immutable
// table. The graph.Catalog consults the enumeration tables at every write
// so that an out-of-vocabulary value never enters the store.
package align
