// Package validation checks a captured snapshot against the schema
// catalog and reports every shape violation it finds. Validation never
// mutates the store: it works on the snapshot's immutable copy, and a
// non-empty report is returned to the caller rather than halting
// anything. The caller decides whether the pipeline proceeds.
package validation

import (
	"time"

	"github.com/google/uuid"

	"github.com/stratalign/stratalign/graph"
)

// Violation rule identifiers.
const (
	RuleUnknownType      = "unknown-type"
	RuleRequiredMissing  = "required-missing"
	RuleSingleValued     = "single-valued"
	RuleEnum             = "enum"
	RuleBoolean          = "boolean"
	RuleDanglingRef      = "dangling-reference"
	RuleLiteralRelation  = "literal-relationship"
	RuleResourceProperty = "resource-property"
)

// Violation names one entity breaking one rule.
type Violation struct {
	Resource graph.Resource `json:"resource"`
	Rule     string         `json:"rule"`
	Detail   string         `json:"detail"`
}

// Report is the outcome of validating one snapshot.
type Report struct {
	ID         string      `json:"id"`
	SnapshotID string      `json:"snapshot_id"`
	CheckedAt  time.Time   `json:"checked_at"`
	Entities   int         `json:"entities"`
	Violations []Violation `json:"violations,omitempty"`
}

// Valid reports whether the snapshot passed every check.
func (r *Report) Valid() bool { return len(r.Violations) == 0 }

// Validator checks snapshots against a catalog.
type Validator struct {
	catalog *graph.Catalog
}

// NewValidator constructs a validator over a catalog.
func NewValidator(catalog *graph.Catalog) *Validator {
	return &Validator{catalog: catalog}
}

// ValidateStore captures a snapshot of the store and validates it.
func (v *Validator) ValidateStore(s *graph.Store) *Report {
	return v.Validate(s.Snapshot())
}

// Validate checks every snapshot entity against its declared shape:
// required properties present exactly once, single-valued properties
// not repeated, categorical values inside their enumeration, boolean
// properties boolean, and every referenced resource resolvable.
func (v *Validator) Validate(snap *graph.Snapshot) *Report {
	report := &Report{
		ID:         uuid.New().String(),
		SnapshotID: snap.ID,
		CheckedAt:  time.Now().UTC(),
	}

	for _, id := range snap.EntityIDs() {
		report.Entities++
		typ, _ := snap.EntityType(id)
		shape, ok := v.catalog.Shape(typ)
		if !ok {
			report.add(id, RuleUnknownType, "entity type "+string(typ)+" has no declared shape")
			continue
		}

		props := snap.Properties(id)
		for pred, objs := range props {
			for _, obj := range objs {
				v.checkValue(report, snap, id, pred, obj)
			}
		}
		for _, pred := range shape.Required {
			if len(props[pred]) == 0 {
				report.add(id, RuleRequiredMissing, "required property "+string(pred)+" missing")
			}
		}
		for _, pred := range append(shape.Required, shape.MaxOne...) {
			if len(props[pred]) > 1 {
				report.add(id, RuleSingleValued, "property "+string(pred)+" appears more than once")
			}
		}
	}
	return report
}

func (v *Validator) checkValue(report *Report, snap *graph.Snapshot, id, pred graph.Resource, obj graph.Object) {
	switch {
	case v.catalog.IsRelationship(pred):
		if !obj.IsResource() {
			report.add(id, RuleLiteralRelation, string(pred)+" carries a literal instead of a resource")
			return
		}
		if _, ok := snap.EntityType(obj.Resource); !ok {
			report.add(id, RuleDanglingRef, string(pred)+" references unknown resource "+string(obj.Resource))
		}
	case v.catalog.IsCategorical(pred):
		if obj.IsResource() || obj.Literal.Kind != graph.KindCategory || !v.catalog.InEnum(pred, obj.Literal.Value) {
			report.add(id, RuleEnum, string(pred)+" value "+obj.String()+" outside enumeration")
		}
	case v.catalog.IsBoolean(pred):
		if obj.IsResource() || obj.Literal.Kind != graph.KindBool {
			report.add(id, RuleBoolean, string(pred)+" requires a boolean literal")
		}
	default:
		if obj.IsResource() {
			report.add(id, RuleResourceProperty, string(pred)+" is not in the relationship vocabulary")
		}
	}
}

func (r *Report) add(id graph.Resource, rule, detail string) {
	r.Violations = append(r.Violations, Violation{Resource: id, Rule: rule, Detail: detail})
}
