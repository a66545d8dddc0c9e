package graph

import (
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stratalign/stratalign/vocabulary/align"
)

// FormatVersion stamps serialized graph files. Restore refuses any file
// carrying a different stamp.
const FormatVersion = "stratalign.graph/v1"

// document is the on-disk graph layout: a version stamp, the entity
// list with literal properties, and the relationship list. Preloaded
// catalog resources are not written; NewStore regenerates them.
type document struct {
	Version       string               `yaml:"version"`
	Entities      []entityRecord       `yaml:"entities"`
	Relationships []relationshipRecord `yaml:"relationships,omitempty"`
}

type entityRecord struct {
	ID         Resource         `yaml:"id"`
	Type       Resource         `yaml:"type"`
	Properties []propertyRecord `yaml:"properties,omitempty"`
}

type propertyRecord struct {
	Predicate Resource    `yaml:"predicate"`
	Kind      LiteralKind `yaml:"kind"`
	Value     string      `yaml:"value"`
}

type relationshipRecord struct {
	Subject   Resource `yaml:"subject"`
	Predicate Resource `yaml:"predicate"`
	Object    Resource `yaml:"object"`
}

// Serialize writes the store's full fact set, minus the catalog's
// preloaded triples, as versioned YAML. Output is deterministic: the
// same fact set always serializes to the same bytes.
func (s *Store) Serialize() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	skip := make(map[string]bool)
	for _, t := range preloadTriples(s.catalog) {
		skip[t.Key()] = true
	}

	doc := document{Version: FormatVersion}

	byEntity := make(map[Resource][]propertyRecord)
	for key, t := range s.triples {
		if skip[key] || t.Predicate == align.PredicateType {
			continue
		}
		if t.Object.IsResource() {
			doc.Relationships = append(doc.Relationships, relationshipRecord{
				Subject:   t.Subject,
				Predicate: t.Predicate,
				Object:    t.Object.Resource,
			})
			continue
		}
		byEntity[t.Subject] = append(byEntity[t.Subject], propertyRecord{
			Predicate: t.Predicate,
			Kind:      t.Object.Literal.Kind,
			Value:     t.Object.Literal.Value,
		})
	}

	for id, typ := range s.entities {
		if s.preloaded[id] {
			continue
		}
		props := byEntity[id]
		sort.Slice(props, func(i, j int) bool {
			if props[i].Predicate != props[j].Predicate {
				return props[i].Predicate < props[j].Predicate
			}
			return props[i].Value < props[j].Value
		})
		doc.Entities = append(doc.Entities, entityRecord{ID: id, Type: typ, Properties: props})
	}
	sort.Slice(doc.Entities, func(i, j int) bool { return doc.Entities[i].ID < doc.Entities[j].ID })
	sort.Slice(doc.Relationships, func(i, j int) bool {
		a, b := doc.Relationships[i], doc.Relationships[j]
		if a.Subject != b.Subject {
			return a.Subject < b.Subject
		}
		if a.Predicate != b.Predicate {
			return a.Predicate < b.Predicate
		}
		return a.Object < b.Object
	})

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, &SerializationError{Detail: "encode graph document", Err: err}
	}
	return data, nil
}

// Restore replaces the store's contents with the fact set in a
// serialized graph document. The document is validated in full against
// the store's catalog before anything is swapped in; on any error the
// store is left exactly as it was.
func (s *Store) Restore(data []byte) error {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &SerializationError{Detail: "parse graph document", Err: err}
	}
	if doc.Version != FormatVersion {
		return &SerializationError{Detail: "unrecognized format version " + strconv.Quote(doc.Version)}
	}

	staging := NewStore(s.catalog)
	if err := staging.loadDocument(&doc); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.triples = staging.triples
	s.bySubject = staging.bySubject
	s.byPredicate = staging.byPredicate
	s.byObject = staging.byObject
	s.entities = staging.entities
	s.preloaded = staging.preloaded
	s.edgeByPair = staging.edgeByPair
	return nil
}

// LoadStore constructs a store from a serialized graph document.
func LoadStore(catalog *Catalog, data []byte, opts ...Option) (*Store, error) {
	s := NewStore(catalog, opts...)
	if err := s.Restore(data); err != nil {
		return nil, err
	}
	return s, nil
}

// loadDocument populates a freshly constructed, unshared store from a
// parsed document. Entities register first so relationship triples can
// reference them regardless of file order.
func (s *Store) loadDocument(doc *document) error {
	for _, rec := range doc.Entities {
		if _, ok := s.catalog.Shape(rec.Type); !ok {
			return &SerializationError{Detail: "entity " + string(rec.ID) + ": unknown type " + string(rec.Type)}
		}
		if s.preloaded[rec.ID] {
			return &SerializationError{Detail: "entity " + string(rec.ID) + " collides with a schema-preloaded resource"}
		}
		if _, ok := s.entities[rec.ID]; ok {
			return &SerializationError{Detail: "entity " + string(rec.ID) + " declared twice"}
		}
		s.entities[rec.ID] = rec.Type
		s.insertLocked(Triple{rec.ID, align.PredicateType, Ref(rec.Type)})
	}

	for _, rec := range doc.Entities {
		for _, prop := range rec.Properties {
			lit, err := decodeLiteral(rec.ID, prop)
			if err != nil {
				return err
			}
			if s.catalog.IsRelationship(prop.Predicate) {
				return &SerializationError{Detail: "entity " + string(rec.ID) + ": " + string(prop.Predicate) + " belongs in the relationship list"}
			}
			if s.catalog.IsCategorical(prop.Predicate) {
				if lit.Kind != KindCategory || !s.catalog.InEnum(prop.Predicate, lit.Value) {
					return &SerializationError{Detail: "entity " + string(rec.ID) + ": " + string(prop.Predicate) + " value " + strconv.Quote(prop.Value) + " outside enumeration"}
				}
			}
			if s.catalog.IsBoolean(prop.Predicate) && lit.Kind != KindBool {
				return &SerializationError{Detail: "entity " + string(rec.ID) + ": " + string(prop.Predicate) + " requires a boolean literal"}
			}
			s.insertLocked(Triple{rec.ID, prop.Predicate, Lit(lit)})
		}
	}

	for _, rec := range doc.Relationships {
		if !s.catalog.IsRelationship(rec.Predicate) {
			return &SerializationError{Detail: string(rec.Predicate) + " is not in the relationship vocabulary"}
		}
		if _, ok := s.entities[rec.Subject]; !ok {
			return &SerializationError{Detail: "relationship references unknown resource " + string(rec.Subject)}
		}
		if _, ok := s.entities[rec.Object]; !ok {
			return &SerializationError{Detail: "relationship references unknown resource " + string(rec.Object)}
		}
		s.insertLocked(Triple{rec.Subject, rec.Predicate, Ref(rec.Object)})
	}

	if err := s.checkShapesLoaded(); err != nil {
		return err
	}
	return s.rebuildEdgePairs()
}

// checkShapesLoaded enforces required and single-valued property
// counts across the combined entity and relationship triples.
func (s *Store) checkShapesLoaded() error {
	for id, typ := range s.entities {
		if s.preloaded[id] {
			continue
		}
		shape, _ := s.catalog.Shape(typ)
		counts := make(map[Resource]int)
		for key := range s.bySubject[id] {
			counts[s.triples[key].Predicate]++
		}
		for _, pred := range shape.Required {
			if counts[pred] == 0 {
				return &SerializationError{Detail: "entity " + string(id) + ": required property " + string(pred) + " missing"}
			}
		}
		for _, pred := range append(shape.Required, shape.MaxOne...) {
			if counts[pred] > 1 {
				return &SerializationError{Detail: "entity " + string(id) + ": property " + string(pred) + " appears more than once"}
			}
		}
	}
	return nil
}

func (s *Store) rebuildEdgePairs() error {
	for id, typ := range s.entities {
		if typ != align.TypeAlignmentEdge {
			continue
		}
		var obj, tg Resource
		for key := range s.bySubject[id] {
			t := s.triples[key]
			switch t.Predicate {
			case align.PredicateAlignsObjective:
				obj = t.Object.Resource
			case align.PredicateAlignsTaskGroup:
				tg = t.Object.Resource
			}
		}
		if s.entities[obj] != align.TypeObjective {
			return &SerializationError{Detail: "edge " + string(id) + ": alignsObjective must reference an Objective"}
		}
		if s.entities[tg] != align.TypeTaskGroup {
			return &SerializationError{Detail: "edge " + string(id) + ": alignsTaskGroup must reference a TaskGroup"}
		}
		pair := pairKey{objective: obj, taskGroup: tg}
		if prev, ok := s.edgeByPair[pair]; ok {
			return &SerializationError{Detail: "edges " + string(prev) + " and " + string(id) + " align the same objective and task group"}
		}
		s.edgeByPair[pair] = id
	}
	return nil
}

// decodeLiteral validates a property record's kind and value and
// returns the canonical literal.
func decodeLiteral(id Resource, prop propertyRecord) (Literal, error) {
	switch prop.Kind {
	case KindString, KindCategory:
		return Literal{Kind: prop.Kind, Value: prop.Value}, nil
	case KindNumber:
		f, err := strconv.ParseFloat(prop.Value, 64)
		if err != nil {
			return Literal{}, &SerializationError{Detail: "entity " + string(id) + ": malformed number " + strconv.Quote(prop.Value)}
		}
		return Number(f), nil
	case KindBool:
		b, err := strconv.ParseBool(prop.Value)
		if err != nil {
			return Literal{}, &SerializationError{Detail: "entity " + string(id) + ": malformed boolean " + strconv.Quote(prop.Value)}
		}
		return Bool(b), nil
	case KindDate:
		t, err := time.Parse(time.RFC3339, prop.Value)
		if err != nil {
			return Literal{}, &SerializationError{Detail: "entity " + string(id) + ": malformed date " + strconv.Quote(prop.Value)}
		}
		return Date(t), nil
	default:
		return Literal{}, &SerializationError{Detail: "entity " + string(id) + ": unknown literal kind " + strconv.Quote(string(prop.Kind))}
	}
}
