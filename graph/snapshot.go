package graph

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/stratalign/stratalign/vocabulary/align"
)

// Snapshot is an immutable copy of the store's fact set at one instant.
// Later mutation of the live store never affects a taken snapshot.
type Snapshot struct {
	ID      string
	TakenAt time.Time
	Triples []Triple
	Stats   SnapshotStats

	entities  map[Resource]Resource
	bySubject map[Resource][]Triple
}

// SnapshotStats summarizes a snapshot for stage-boundary inspection.
type SnapshotStats struct {
	TripleCount      int              `json:"triple_count"`
	NodesByType      map[Resource]int `json:"nodes_by_type"`
	EdgesByPredicate map[Resource]int `json:"edges_by_predicate"`
	TotalNodes       int              `json:"total_nodes"`
	TotalEdges       int              `json:"total_edges"`
	Density          float64          `json:"density"`
}

// Snapshot captures the current fact set. The copy is taken under the
// read lock, so it reflects one consistent state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		ID:       uuid.New().String(),
		TakenAt:  time.Now().UTC(),
		Triples:  make([]Triple, 0, len(s.triples)),
		entities: make(map[Resource]Resource, len(s.entities)),
	}
	for _, t := range s.triples {
		snap.Triples = append(snap.Triples, t)
	}
	sort.Slice(snap.Triples, func(i, j int) bool {
		return snap.Triples[i].Key() < snap.Triples[j].Key()
	})
	for id, typ := range s.entities {
		snap.entities[id] = typ
	}
	snap.bySubject = make(map[Resource][]Triple)
	for _, t := range snap.Triples {
		snap.bySubject[t.Subject] = append(snap.bySubject[t.Subject], t)
	}
	snap.Stats = computeStats(snap)
	return snap
}

func computeStats(snap *Snapshot) SnapshotStats {
	stats := SnapshotStats{
		TripleCount:      len(snap.Triples),
		NodesByType:      make(map[Resource]int),
		EdgesByPredicate: make(map[Resource]int),
	}
	for _, typ := range snap.entities {
		stats.NodesByType[typ]++
		stats.TotalNodes++
	}
	for _, t := range snap.Triples {
		if t.Predicate == align.PredicateType || !t.Object.IsResource() {
			continue
		}
		stats.EdgesByPredicate[t.Predicate]++
		stats.TotalEdges++
	}
	// Directed-graph density: edges over nodes*(nodes-1).
	if stats.TotalNodes > 1 {
		stats.Density = float64(stats.TotalEdges) / float64(stats.TotalNodes*(stats.TotalNodes-1))
	}
	return stats
}

// EntityType returns the type of an entity in the snapshot.
func (snap *Snapshot) EntityType(id Resource) (Resource, bool) {
	t, ok := snap.entities[id]
	return t, ok
}

// Entities returns the sorted identifiers of all snapshot entities of a
// type.
func (snap *Snapshot) Entities(entityType Resource) []Resource {
	var out []Resource
	for id, t := range snap.entities {
		if t == entityType {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EntityIDs returns the sorted identifiers of every snapshot entity.
func (snap *Snapshot) EntityIDs() []Resource {
	out := make([]Resource, 0, len(snap.entities))
	for id := range snap.entities {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Properties returns all properties of a snapshot entity, excluding its
// type triple.
func (snap *Snapshot) Properties(id Resource) map[Resource][]Object {
	props := make(map[Resource][]Object)
	for _, t := range snap.bySubject[id] {
		if t.Predicate == align.PredicateType {
			continue
		}
		props[t.Predicate] = append(props[t.Predicate], t.Object)
	}
	return props
}

// Keys returns the set-membership keys of every triple, for
// order-independent comparison of snapshots.
func (snap *Snapshot) Keys() map[string]bool {
	keys := make(map[string]bool, len(snap.Triples))
	for _, t := range snap.Triples {
		keys[t.Key()] = true
	}
	return keys
}
