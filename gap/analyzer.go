// Package gap detects structural misalignment in a plan graph: orphan
// objectives and task groups, unbalanced perspectives, execution gaps
// between stated importance and actual resourcing, and breaks in the
// balanced-scorecard causal chain. It also aggregates the cascade
// assessments external reviewers write into the store into the
// per-objective inputs the scoring engine consumes.
package gap

import (
	"sort"

	"github.com/stratalign/stratalign/graph"
	"github.com/stratalign/stratalign/vocabulary/align"
)

// Analyzer runs gap detection over a store. Detection methods read the
// live store; only WriteDerived mutates it.
type Analyzer struct {
	store *graph.Store
}

// NewAnalyzer constructs an analyzer over a store.
func NewAnalyzer(store *graph.Store) *Analyzer {
	return &Analyzer{store: store}
}

// ExecutionGap records an importance/allocation mismatch on one
// objective. Allocation is the maximum over the objective's qualifying
// task groups.
type ExecutionGap struct {
	Objective  graph.Resource    `json:"objective"`
	Importance align.Importance  `json:"importance"`
	Allocation align.Allocation  `json:"allocation"`
	Severity   align.GapSeverity `json:"severity"`
}

// MisalignmentKind classifies a resourcing misalignment.
type MisalignmentKind string

const (
	// UnderResourced marks an objective whose allocation trails its
	// importance.
	UnderResourced MisalignmentKind = "under_resourced"

	// OverResourced marks an objective drawing markedly more resource
	// than its importance warrants.
	OverResourced MisalignmentKind = "over_resourced"
)

// Misalignment pairs an objective with the direction of its resourcing
// mismatch.
type Misalignment struct {
	Objective graph.Resource    `json:"objective"`
	Kind      MisalignmentKind  `json:"kind"`
	Severity  align.GapSeverity `json:"severity,omitempty"`
}

// ChainGap records a break in the perspective causal chain: a
// perspective holds objectives while the perspective it depends on
// holds none, so its outcomes rest on nothing.
type ChainGap struct {
	Perspective graph.Resource `json:"perspective"`
	DependsOn   graph.Resource `json:"depends_on"`
}

// CascadeInput is one reviewer assessment of an objective, read back
// out of the store for scoring.
type CascadeInput struct {
	Objective   graph.Resource    `json:"objective"`
	Cascade     align.Cascade     `json:"cascade"`
	Sufficiency align.Sufficiency `json:"sufficiency"`
}

// OrphanObjectives returns the sorted objectives with no alignment edge
// of relevance other than none.
func (a *Analyzer) OrphanObjectives() ([]graph.Resource, error) {
	return a.orphans(align.TypeObjective, align.PredicateAlignsObjective)
}

// OrphanTaskGroups returns the sorted task groups with no alignment
// edge of relevance other than none.
func (a *Analyzer) OrphanTaskGroups() ([]graph.Resource, error) {
	return a.orphans(align.TypeTaskGroup, align.PredicateAlignsTaskGroup)
}

// orphans runs the covering-edge pattern query for one endpoint role
// and set-differences the result against all entities of the type.
func (a *Analyzer) orphans(entityType, endpoint graph.Resource) ([]graph.Resource, error) {
	bindings, err := a.store.QueryPattern([]graph.Pattern{
		{Subject: graph.V("e"), Predicate: graph.R(align.PredicateType), Object: graph.R(align.TypeAlignmentEdge)},
		{Subject: graph.V("e"), Predicate: graph.R(endpoint), Object: graph.V("x")},
		{Subject: graph.V("e"), Predicate: graph.R(align.PredicateRelevance), Object: graph.V("r")},
	})
	if err != nil {
		return nil, err
	}

	covered := make(map[graph.Resource]bool)
	for _, b := range bindings {
		if b["r"].String() == string(align.RelevanceNone) {
			continue
		}
		covered[b["x"].Resource] = true
	}

	var out []graph.Resource
	for _, id := range a.store.Entities(entityType) {
		if !covered[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

// UnbalancedPerspectives returns the perspectives with zero linked
// objectives, in catalog order.
func (a *Analyzer) UnbalancedPerspectives() []graph.Resource {
	linked := make(map[graph.Resource]bool)
	for _, id := range a.store.Entities(align.TypeObjective) {
		if p, ok := a.store.GetOne(id, align.PredicatePerspective); ok && p.IsResource() {
			linked[p.Resource] = true
		}
	}

	var out []graph.Resource
	for _, p := range a.store.Catalog().Perspectives() {
		if !linked[p.ID] {
			out = append(out, p.ID)
		}
	}
	return out
}

// ExecutionGaps classifies the importance/allocation mismatch of every
// objective with at least one qualifying alignment edge. Objectives
// with no qualifying edge are reported by OrphanObjectives instead.
func (a *Analyzer) ExecutionGaps() []ExecutionGap {
	maxAlloc := a.maxAllocations()

	var out []ExecutionGap
	for _, id := range a.store.Entities(align.TypeObjective) {
		alloc, ok := maxAlloc[id]
		if !ok {
			continue
		}
		imp := a.importance(id)
		out = append(out, ExecutionGap{
			Objective:  id,
			Importance: imp,
			Allocation: alloc,
			Severity:   align.ExecutionGapSeverity(imp, alloc),
		})
	}
	return out
}

// maxAllocations returns each objective's maximum allocation tier over
// the task groups linked to it by an edge of relevance other than none.
func (a *Analyzer) maxAllocations() map[graph.Resource]align.Allocation {
	out := make(map[graph.Resource]align.Allocation)
	for _, edge := range a.store.Entities(align.TypeAlignmentEdge) {
		rel, ok := a.store.GetOne(edge, align.PredicateRelevance)
		if !ok || rel.String() == string(align.RelevanceNone) {
			continue
		}
		obj, ok := a.store.GetOne(edge, align.PredicateAlignsObjective)
		if !ok {
			continue
		}
		tg, ok := a.store.GetOne(edge, align.PredicateAlignsTaskGroup)
		if !ok {
			continue
		}
		allocObj, ok := a.store.GetOne(tg.Resource, align.PredicateAllocation)
		if !ok {
			continue
		}
		alloc := align.Allocation(allocObj.String())
		prev, seen := out[obj.Resource]
		if !seen || align.AllocationRank(alloc) > align.AllocationRank(prev) {
			out[obj.Resource] = alloc
		}
	}
	return out
}

func (a *Analyzer) importance(objective graph.Resource) align.Importance {
	if obj, ok := a.store.GetOne(objective, align.PredicateImportance); ok {
		return align.Importance(obj.String())
	}
	return ""
}

// Misalignments flags objectives whose resourcing runs against their
// importance in either direction. Under-resourcing reuses the execution
// gap severity; over-resourcing flags an allocation two or more tiers
// above the importance's paired tier.
func (a *Analyzer) Misalignments() []Misalignment {
	var out []Misalignment
	for _, g := range a.ExecutionGaps() {
		switch {
		case g.Severity != align.SeverityNone:
			out = append(out, Misalignment{Objective: g.Objective, Kind: UnderResourced, Severity: g.Severity})
		case align.AllocationRank(g.Allocation) >= align.ImportanceRank(g.Importance)+1:
			out = append(out, Misalignment{Objective: g.Objective, Kind: OverResourced})
		}
	}
	return out
}

// ChainGaps walks the perspective dependency chain and flags every
// perspective that holds objectives while its foundation perspective
// holds none.
func (a *Analyzer) ChainGaps() []ChainGap {
	count := make(map[graph.Resource]int)
	for _, id := range a.store.Entities(align.TypeObjective) {
		if p, ok := a.store.GetOne(id, align.PredicatePerspective); ok && p.IsResource() {
			count[p.Resource]++
		}
	}

	var out []ChainGap
	for _, p := range a.store.Catalog().Perspectives() {
		if p.DependsOn == "" {
			continue
		}
		if count[p.ID] > 0 && count[p.DependsOn] == 0 {
			out = append(out, ChainGap{Perspective: p.ID, DependsOn: p.DependsOn})
		}
	}
	return out
}

// CascadeInputs reads every cascade review out of the store, one input
// per assessment, sorted by objective. Reviews are written by an
// external reviewer; the analyzer only aggregates them.
func (a *Analyzer) CascadeInputs() []CascadeInput {
	var out []CascadeInput
	for _, review := range a.store.Entities(align.TypeCascadeReview) {
		obj, ok := a.store.GetOne(review, align.PredicateReviewsObjective)
		if !ok {
			continue
		}
		cascade, ok := a.store.GetOne(review, align.PredicateCascade)
		if !ok {
			continue
		}
		suff, ok := a.store.GetOne(review, align.PredicateSufficiency)
		if !ok {
			continue
		}
		out = append(out, CascadeInput{
			Objective:   obj.Resource,
			Cascade:     align.Cascade(cascade.String()),
			Sufficiency: align.Sufficiency(suff.String()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Objective < out[j].Objective })
	return out
}

// WriteDerived writes the analyzer's findings back into the store as
// derived facts: an orphan marker on every orphan objective and task
// group, and a gap severity category on every objective with a
// qualifying edge.
func (a *Analyzer) WriteDerived() error {
	orphanObjs, err := a.OrphanObjectives()
	if err != nil {
		return err
	}
	for _, id := range orphanObjs {
		if err := a.writeOrphan(id, align.TypeObjective); err != nil {
			return err
		}
	}
	orphanGroups, err := a.OrphanTaskGroups()
	if err != nil {
		return err
	}
	for _, id := range orphanGroups {
		if err := a.writeOrphan(id, align.TypeTaskGroup); err != nil {
			return err
		}
	}

	for _, g := range a.ExecutionGaps() {
		props := map[graph.Resource]graph.Object{
			align.PredicateGapSeverity: graph.Lit(graph.Category(string(g.Severity))),
		}
		if err := a.extend(g.Objective, align.TypeObjective, props); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) writeOrphan(id graph.Resource, entityType graph.Resource) error {
	return a.extend(id, entityType, map[graph.Resource]graph.Object{
		align.PredicateOrphan: graph.Lit(graph.Bool(true)),
	})
}

// extend re-adds an existing entity with extra derived properties.
// AddEntity validates required properties on every call, so the
// entity's existing required values must ride along.
func (a *Analyzer) extend(id graph.Resource, entityType graph.Resource, props map[graph.Resource]graph.Object) error {
	if shape, ok := a.store.Catalog().Shape(entityType); ok {
		for _, pred := range shape.Required {
			if obj, ok := a.store.GetOne(id, pred); ok {
				props[pred] = obj
			}
		}
	}
	return a.store.AddEntity(id, entityType, props)
}
