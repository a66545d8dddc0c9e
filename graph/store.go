package graph

import (
	"sort"
	"sync"

	"github.com/stratalign/stratalign/metric"
	"github.com/stratalign/stratalign/vocabulary/align"
)

// Store is the central triple store. It holds a set of triples indexed
// by subject, predicate, and object, validates every write against its
// Catalog, and is safe for concurrent use: each write updates the fact
// set and all three indices as one atomic unit, and readers observe
// either the pre-write or post-write state, never a torn intermediate.
type Store struct {
	mu      sync.RWMutex
	catalog *Catalog
	metrics *metric.StoreMetrics

	triples     map[string]Triple
	bySubject   map[Resource]map[string]struct{}
	byPredicate map[Resource]map[string]struct{}
	byObject    map[string]map[string]struct{}

	entities   map[Resource]Resource // entity id -> type
	preloaded  map[Resource]bool
	edgeByPair map[pairKey]Resource
}

type pairKey struct {
	objective Resource
	taskGroup Resource
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithMetrics attaches store-scoped Prometheus metrics.
func WithMetrics(m *metric.StoreMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

// NewStore constructs a store scoped to the given catalog and preloads
// the catalog's perspective and reference-goal resources. The preloaded
// resources are never deleted and never mutated afterwards.
func NewStore(catalog *Catalog, opts ...Option) *Store {
	s := &Store{
		catalog:     catalog,
		triples:     make(map[string]Triple),
		bySubject:   make(map[Resource]map[string]struct{}),
		byPredicate: make(map[Resource]map[string]struct{}),
		byObject:    make(map[string]map[string]struct{}),
		entities:    make(map[Resource]Resource),
		preloaded:   make(map[Resource]bool),
		edgeByPair:  make(map[pairKey]Resource),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.preload()
	return s
}

// Catalog returns the store's schema catalog.
func (s *Store) Catalog() *Catalog { return s.catalog }

func (s *Store) preload() {
	for _, p := range s.catalog.Perspectives() {
		s.entities[p.ID] = align.TypePerspective
		s.preloaded[p.ID] = true
	}
	for _, g := range s.catalog.Goals() {
		s.entities[g.ID] = align.TypeGoal
		s.preloaded[g.ID] = true
	}
	for _, t := range preloadTriples(s.catalog) {
		s.insertLocked(t)
	}
}

// preloadTriples builds the catalog's fixed triples. The serializer uses
// the same list to keep preloaded facts out of snapshot files, so a
// store round-trips through NewStore plus a file without duplication.
func preloadTriples(catalog *Catalog) []Triple {
	var out []Triple
	for _, p := range catalog.Perspectives() {
		out = append(out,
			Triple{p.ID, align.PredicateType, Ref(align.TypePerspective)},
			Triple{p.ID, align.PredicateLabel, Lit(String(p.Label))},
		)
		if p.DependsOn != "" {
			out = append(out, Triple{p.ID, align.PredicateDependsOn, Ref(p.DependsOn)})
		}
	}
	for _, g := range catalog.Goals() {
		out = append(out,
			Triple{g.ID, align.PredicateType, Ref(align.TypeGoal)},
			Triple{g.ID, align.PredicateLabel, Lit(String(g.Label))},
			Triple{g.ID, align.PredicatePerspective, Ref(g.Perspective)},
		)
		for _, target := range g.Supports {
			out = append(out, Triple{g.ID, align.PredicateSupportsCausalChain, Ref(target)})
		}
	}
	return out
}

// AddEntity creates or extends an entity: a type triple plus one triple
// per property. The whole write is validated first; on any violation the
// store is left unchanged. Resource-valued properties must reference
// entities that already exist.
//
// Writing an AlignmentEdge for an (Objective, TaskGroup) pair that
// already has one replaces the previous edge rather than duplicating it.
// Re-adding an existing edge id likewise replaces that edge entirely,
// freeing the pair it was previously bound to.
func (s *Store) AddEntity(id Resource, entityType Resource, props map[Resource]Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateEntityLocked(id, entityType, props); err != nil {
		if s.metrics != nil {
			s.metrics.WritesRejected.Inc()
		}
		return err
	}

	if entityType == align.TypeAlignmentEdge {
		if _, ok := s.entities[id]; ok {
			s.removeEdgeLocked(id)
		}
		pair := pairKey{
			objective: props[align.PredicateAlignsObjective].Resource,
			taskGroup: props[align.PredicateAlignsTaskGroup].Resource,
		}
		if prev, ok := s.edgeByPair[pair]; ok {
			s.removeEdgeLocked(prev)
		}
		s.edgeByPair[pair] = id
	}

	s.entities[id] = entityType
	s.insertLocked(Triple{id, align.PredicateType, Ref(entityType)})
	for pred, obj := range props {
		s.insertLocked(Triple{id, pred, obj})
	}
	if s.metrics != nil {
		s.metrics.Writes.Inc()
	}
	return nil
}

func (s *Store) validateEntityLocked(id Resource, entityType Resource, props map[Resource]Object) error {
	shape, ok := s.catalog.Shape(entityType)
	if !ok {
		return &SchemaViolation{Resource: id, Rule: "unknown entity type " + string(entityType)}
	}
	if s.preloaded[id] {
		return &SchemaViolation{Resource: id, Rule: "schema-preloaded resource is immutable"}
	}
	if existing, ok := s.entities[id]; ok && existing != entityType {
		return &SchemaViolation{Resource: id, Rule: "resource already exists with type " + string(existing)}
	}

	for pred, obj := range props {
		if pred == align.PredicateType {
			return &SchemaViolation{Resource: id, Rule: "type is set via the entity type argument"}
		}
		switch {
		case s.catalog.IsCategorical(pred):
			if obj.IsResource() || obj.Literal.Kind != KindCategory {
				return &SchemaViolation{Resource: id, Rule: string(pred) + " requires a category literal"}
			}
			if !s.catalog.InEnum(pred, obj.Literal.Value) {
				return &SchemaViolation{Resource: id, Rule: string(pred) + " value " + obj.Literal.Value + " outside enumeration"}
			}
		case s.catalog.IsRelationship(pred):
			if !obj.IsResource() {
				return &SchemaViolation{Resource: id, Rule: string(pred) + " requires a resource object"}
			}
			if _, ok := s.entities[obj.Resource]; !ok {
				return &UnknownResourceError{Resource: obj.Resource}
			}
		case s.catalog.IsBoolean(pred):
			if obj.IsResource() || obj.Literal.Kind != KindBool {
				return &SchemaViolation{Resource: id, Rule: string(pred) + " requires a boolean literal"}
			}
		default:
			if obj.IsResource() {
				return &SchemaViolation{Resource: id, Rule: string(pred) + " is not in the relationship vocabulary"}
			}
		}
	}

	for _, pred := range shape.Required {
		if _, ok := props[pred]; !ok {
			return &SchemaViolation{Resource: id, Rule: "required property " + string(pred) + " missing"}
		}
	}

	// Re-writing a single-valued property with a new value would leave
	// two triples behind; alignment edges are exempt because the whole
	// previous edge is replaced.
	if entityType != align.TypeAlignmentEdge {
		for _, pred := range append(shape.Required, shape.MaxOne...) {
			obj, ok := props[pred]
			if !ok {
				continue
			}
			for key := range s.bySubject[id] {
				t := s.triples[key]
				if t.Predicate == pred && t.Object.Key() != obj.Key() {
					return &SchemaViolation{Resource: id, Rule: "property " + string(pred) + " already set"}
				}
			}
		}
	}

	if entityType == align.TypeAlignmentEdge {
		if typ := s.entities[props[align.PredicateAlignsObjective].Resource]; typ != align.TypeObjective {
			return &SchemaViolation{Resource: id, Rule: "alignsObjective must reference an Objective"}
		}
		if typ := s.entities[props[align.PredicateAlignsTaskGroup].Resource]; typ != align.TypeTaskGroup {
			return &SchemaViolation{Resource: id, Rule: "alignsTaskGroup must reference a TaskGroup"}
		}
	}
	return nil
}

// AddRelationship records a relationship triple between two existing
// entities. Adding a triple that is already present is a no-op. Safe for
// concurrent callers writing disjoint pairs.
func (s *Store) AddRelationship(subject, predicate, object Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.catalog.IsRelationship(predicate) {
		if s.metrics != nil {
			s.metrics.WritesRejected.Inc()
		}
		return &SchemaViolation{Resource: subject, Rule: string(predicate) + " is not in the relationship vocabulary"}
	}
	if _, ok := s.entities[subject]; !ok {
		if s.metrics != nil {
			s.metrics.WritesRejected.Inc()
		}
		return &UnknownResourceError{Resource: subject}
	}
	if _, ok := s.entities[object]; !ok {
		if s.metrics != nil {
			s.metrics.WritesRejected.Inc()
		}
		return &UnknownResourceError{Resource: object}
	}

	s.insertLocked(Triple{subject, predicate, Ref(object)})
	if s.metrics != nil {
		s.metrics.Writes.Inc()
	}
	return nil
}

// insertLocked adds a triple to the fact set and all three indices.
// Idempotent: an existing triple is left as the single copy.
func (s *Store) insertLocked(t Triple) {
	key := t.Key()
	if _, ok := s.triples[key]; ok {
		return
	}
	s.triples[key] = t
	indexAdd(s.bySubject, t.Subject, key)
	indexAdd(s.byPredicate, t.Predicate, key)
	objectAdd(s.byObject, t.Object.Key(), key)
}

func (s *Store) removeTripleLocked(t Triple) {
	key := t.Key()
	if _, ok := s.triples[key]; !ok {
		return
	}
	delete(s.triples, key)
	indexRemove(s.bySubject, t.Subject, key)
	indexRemove(s.byPredicate, t.Predicate, key)
	objectRemove(s.byObject, t.Object.Key(), key)
}

// removeEdgeLocked removes an alignment edge and its pair-index entry,
// determined from the edge's current triples.
func (s *Store) removeEdgeLocked(id Resource) {
	pair := s.edgePairLocked(id)
	if s.edgeByPair[pair] == id {
		delete(s.edgeByPair, pair)
	}
	s.removeEntityLocked(id)
}

func (s *Store) edgePairLocked(id Resource) pairKey {
	var pair pairKey
	for key := range s.bySubject[id] {
		t := s.triples[key]
		switch t.Predicate {
		case align.PredicateAlignsObjective:
			pair.objective = t.Object.Resource
		case align.PredicateAlignsTaskGroup:
			pair.taskGroup = t.Object.Resource
		}
	}
	return pair
}

// removeEntityLocked removes an entity and every triple touching it.
// Only used for alignment-edge replacement.
func (s *Store) removeEntityLocked(id Resource) {
	for key := range s.bySubject[id] {
		s.removeTripleLocked(s.triples[key])
	}
	objKey := Ref(id).Key()
	for key := range s.byObject[objKey] {
		s.removeTripleLocked(s.triples[key])
	}
	delete(s.entities, id)
}

func indexAdd(idx map[Resource]map[string]struct{}, k Resource, key string) {
	set, ok := idx[k]
	if !ok {
		set = make(map[string]struct{})
		idx[k] = set
	}
	set[key] = struct{}{}
}

func indexRemove(idx map[Resource]map[string]struct{}, k Resource, key string) {
	if set, ok := idx[k]; ok {
		delete(set, key)
		if len(set) == 0 {
			delete(idx, k)
		}
	}
}

func objectAdd(idx map[string]map[string]struct{}, k, key string) {
	set, ok := idx[k]
	if !ok {
		set = make(map[string]struct{})
		idx[k] = set
	}
	set[key] = struct{}{}
}

func objectRemove(idx map[string]map[string]struct{}, k, key string) {
	if set, ok := idx[k]; ok {
		delete(set, key)
		if len(set) == 0 {
			delete(idx, k)
		}
	}
}

// Get returns all properties of a subject, excluding its type triple.
// Multi-valued predicates yield multiple objects.
func (s *Store) Get(subject Resource) map[Resource][]Object {
	s.mu.RLock()
	defer s.mu.RUnlock()

	props := make(map[Resource][]Object)
	for key := range s.bySubject[subject] {
		t := s.triples[key]
		if t.Predicate == align.PredicateType {
			continue
		}
		props[t.Predicate] = append(props[t.Predicate], t.Object)
	}
	return props
}

// GetOne returns the single value of a predicate on a subject, if any.
func (s *Store) GetOne(subject, predicate Resource) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for key := range s.bySubject[subject] {
		t := s.triples[key]
		if t.Predicate == predicate {
			return t.Object, true
		}
	}
	return Object{}, false
}

// EntityType returns the type of an entity, if it exists.
func (s *Store) EntityType(id Resource) (Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.entities[id]
	return t, ok
}

// Entities returns the sorted identifiers of all entities of a type.
func (s *Store) Entities(entityType Resource) []Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Resource
	for id, t := range s.entities {
		if t == entityType {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of triples in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.triples)
}
