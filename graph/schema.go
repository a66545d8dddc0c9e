package graph

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/stratalign/stratalign/vocabulary/align"
)

// Perspective is a preloaded balanced-scorecard perspective resource.
type Perspective struct {
	ID        Resource `yaml:"id"`
	Label     string   `yaml:"label"`
	DependsOn Resource `yaml:"depends_on,omitempty"`
}

// ReferenceGoal is a preloaded benchmark goal resource. Supports lists
// the reference goals in the next perspective up the causal chain that
// this goal feeds.
type ReferenceGoal struct {
	ID          Resource   `yaml:"id"`
	Label       string     `yaml:"label"`
	Perspective Resource   `yaml:"perspective"`
	Supports    []Resource `yaml:"supports,omitempty"`
}

// Shape declares the property schema of one entity type.
type Shape struct {
	// Required predicates must appear exactly once on every entity of
	// the type.
	Required []Resource

	// MaxOne predicates may appear at most once.
	MaxOne []Resource
}

// Catalog is the store-scoped schema: preloaded perspective and
// reference-goal resources, the enumeration table for every categorical
// predicate, the relationship-predicate vocabulary, and the required
// shape per entity type. A Catalog is read-only after construction and
// is consulted by the store on every write.
type Catalog struct {
	perspectives []Perspective
	goals        []ReferenceGoal
	shapes       map[Resource]Shape
	enums        map[Resource]map[string]bool
	relations    map[Resource]bool
	booleans     map[Resource]bool
}

// NewCatalog builds a catalog with the fixed perspective taxonomy, the
// default reference-goal taxonomy, and the closed vocabularies from the
// align package. Scoped to the store that receives it, never shared
// mutable state.
func NewCatalog() *Catalog {
	return NewCatalogWithGoals(DefaultReferenceGoals())
}

// NewCatalogWithGoals builds a catalog with a caller-supplied
// reference-goal taxonomy in place of the default one.
func NewCatalogWithGoals(goals []ReferenceGoal) *Catalog {
	c := &Catalog{
		perspectives: DefaultPerspectives(),
		goals:        goals,
		shapes:       defaultShapes(),
		enums:        make(map[Resource]map[string]bool),
		relations:    make(map[Resource]bool),
		booleans: map[Resource]bool{
			align.PredicateHasBaseline:  true,
			align.PredicateIsMeasurable: true,
			align.PredicateOrphan:       true,
		},
	}
	for pred, values := range align.Enumerations() {
		set := make(map[string]bool, len(values))
		for _, v := range values {
			set[v] = true
		}
		c.enums[Resource(pred)] = set
	}
	for _, pred := range align.RelationshipPredicates() {
		c.relations[Resource(pred)] = true
	}
	return c
}

// LoadReferenceGoals reads a reference-goal taxonomy from a YAML file.
func LoadReferenceGoals(path string) ([]ReferenceGoal, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference goals: %w", err)
	}
	var goals []ReferenceGoal
	if err := yaml.Unmarshal(data, &goals); err != nil {
		return nil, fmt.Errorf("parse reference goals: %w", err)
	}
	return goals, nil
}

// DefaultPerspectives returns the four balanced-scorecard perspectives
// and their causal chain (Financial depends on Customer depends on
// Internal Process depends on Learning & Growth).
func DefaultPerspectives() []Perspective {
	return []Perspective{
		{ID: PerspectiveFinancial, Label: "Financial", DependsOn: PerspectiveCustomer},
		{ID: PerspectiveCustomer, Label: "Customer", DependsOn: PerspectiveInternalProcess},
		{ID: PerspectiveInternalProcess, Label: "Internal Process", DependsOn: PerspectiveLearningGrowth},
		{ID: PerspectiveLearningGrowth, Label: "Learning & Growth"},
	}
}

// Preloaded perspective resource identifiers.
const (
	PerspectiveFinancial       Resource = "BSC_Financial"
	PerspectiveCustomer        Resource = "BSC_Customer"
	PerspectiveInternalProcess Resource = "BSC_InternalProcess"
	PerspectiveLearningGrowth  Resource = "BSC_LearningGrowth"
)

// DefaultReferenceGoals returns the built-in benchmark goal taxonomy,
// one goal per perspective, chained bottom-up.
func DefaultReferenceGoals() []ReferenceGoal {
	return []ReferenceGoal{
		{
			ID:          "REF_Profitability",
			Label:       "Sustainable Profitability",
			Perspective: PerspectiveFinancial,
		},
		{
			ID:          "REF_CustomerSatisfaction",
			Label:       "Customer Satisfaction & Retention",
			Perspective: PerspectiveCustomer,
			Supports:    []Resource{"REF_Profitability"},
		},
		{
			ID:          "REF_OperationalExcellence",
			Label:       "Operational Excellence",
			Perspective: PerspectiveInternalProcess,
			Supports:    []Resource{"REF_CustomerSatisfaction"},
		},
		{
			ID:          "REF_WorkforceCapability",
			Label:       "Workforce Capability & Learning",
			Perspective: PerspectiveLearningGrowth,
			Supports:    []Resource{"REF_OperationalExcellence"},
		},
	}
}

func defaultShapes() map[Resource]Shape {
	return map[Resource]Shape{
		align.TypePerspective: {
			Required: []Resource{align.PredicateLabel},
		},
		align.TypeGoal: {
			MaxOne: []Resource{
				align.PredicateLabel,
				align.PredicateImportance,
				align.PredicatePerspective,
			},
		},
		align.TypeObjective: {
			Required: []Resource{align.PredicateImportance},
			MaxOne: []Resource{
				align.PredicateLabel,
				align.PredicatePerspective,
			},
		},
		align.TypeTaskGroup: {
			Required: []Resource{align.PredicateAllocation},
			MaxOne:   []Resource{align.PredicateLabel},
		},
		align.TypeTask: {
			MaxOne: []Resource{align.PredicateLabel, align.PredicateOwnedBy},
		},
		align.TypeKPI: {
			MaxOne: []Resource{
				align.PredicateLabel,
				align.PredicateHasBaseline,
				align.PredicateIsMeasurable,
				align.PredicateOwnedBy,
			},
		},
		align.TypeAlignmentEdge: {
			Required: []Resource{
				align.PredicateAlignsObjective,
				align.PredicateAlignsTaskGroup,
				align.PredicateRelevance,
				align.PredicateContribution,
			},
			MaxOne: []Resource{align.PredicateRiskExposure},
		},
		align.TypeCascadeReview: {
			Required: []Resource{
				align.PredicateReviewsObjective,
				align.PredicateCascade,
				align.PredicateSufficiency,
			},
		},
		align.TypeGoalSuggestion: {
			Required: []Resource{align.PredicateSuggestsFor},
			MaxOne:   []Resource{align.PredicateDescription},
		},
		align.TypeOwner: {
			MaxOne: []Resource{align.PredicateLabel},
		},
	}
}

// Shape returns the declared shape for an entity type.
func (c *Catalog) Shape(entityType Resource) (Shape, bool) {
	s, ok := c.shapes[entityType]
	return s, ok
}

// IsCategorical reports whether a predicate is a categorical field.
func (c *Catalog) IsCategorical(pred Resource) bool {
	_, ok := c.enums[pred]
	return ok
}

// InEnum reports whether a value belongs to a categorical predicate's
// closed enumeration.
func (c *Catalog) InEnum(pred Resource, value string) bool {
	return c.enums[pred][value]
}

// IsRelationship reports whether a predicate belongs to the
// relationship vocabulary.
func (c *Catalog) IsRelationship(pred Resource) bool {
	return c.relations[pred]
}

// IsBoolean reports whether a predicate requires a boolean literal.
func (c *Catalog) IsBoolean(pred Resource) bool {
	return c.booleans[pred]
}

// Perspectives returns the preloaded perspective taxonomy.
func (c *Catalog) Perspectives() []Perspective {
	out := make([]Perspective, len(c.perspectives))
	copy(out, c.perspectives)
	return out
}

// Goals returns the preloaded reference-goal taxonomy.
func (c *Catalog) Goals() []ReferenceGoal {
	out := make([]ReferenceGoal, len(c.goals))
	copy(out, c.goals)
	return out
}
