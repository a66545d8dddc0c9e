// Package scoring computes the six alignment metrics over a plan graph
// and rolls them into an overall score. All metrics are deterministic
// functions of the store's fact set and report on a 0-100 scale.
//
// Empty populations are a contract, not an error: a metric whose
// denominator would be zero (no edges, no objectives, no KPIs, no
// reviews, no mismatches) reports 0. Callers never see a
// division-by-zero fault from this package.
package scoring

import (
	"time"

	"github.com/google/uuid"

	"github.com/stratalign/stratalign/gap"
	"github.com/stratalign/stratalign/graph"
	"github.com/stratalign/stratalign/vocabulary/align"
)

// Metric weights.
const (
	priorityImportanceWeight = 0.50
	priorityAllocationWeight = 0.30
	priorityRiskWeight       = 0.20

	kpiBaselineWeight   = 0.4
	kpiMeasurableWeight = 0.4
	kpiOwnerWeight      = 0.2
)

// Engine computes metrics over one store.
type Engine struct {
	store *graph.Store
	gaps  *gap.Analyzer
}

// NewEngine constructs a scoring engine over a store.
func NewEngine(store *graph.Store) *Engine {
	return &Engine{store: store, gaps: gap.NewAnalyzer(store)}
}

// Report carries one full metric computation.
type Report struct {
	ID         string    `json:"id"`
	ComputedAt time.Time `json:"computed_at"`

	SAI        float64 `json:"sai"`
	Coverage   float64 `json:"coverage"`
	Priority   float64 `json:"priority"`
	KPIUtility float64 `json:"kpi_utility"`
	Catchball  float64 `json:"catchball"`
	EGI        float64 `json:"egi"`

	// Overall averages the six metrics with EGI inverted, so a higher
	// overall score always means better alignment.
	Overall float64 `json:"overall"`
}

// Compute evaluates all six metrics and the overall score.
func (e *Engine) Compute() *Report {
	r := &Report{
		ID:         uuid.New().String(),
		ComputedAt: time.Now().UTC(),
		SAI:        e.SAI(),
		Coverage:   e.Coverage(),
		Priority:   e.Priority(),
		KPIUtility: e.KPIUtility(),
		Catchball:  e.Catchball(),
		EGI:        e.EGI(),
	}
	r.Overall = (r.SAI + r.Coverage + r.Priority + r.KPIUtility + r.Catchball + (100 - r.EGI)) / 6
	return r
}

// SAI is the strategic alignment index: the mean relevance score over
// all alignment edges with relevance other than none. No qualifying
// edges reports 0.
func (e *Engine) SAI() float64 {
	var sum float64
	var n int
	for _, edge := range e.store.Entities(align.TypeAlignmentEdge) {
		rel, ok := e.relevance(edge)
		if !ok || rel == align.RelevanceNone {
			continue
		}
		sum += align.RelevanceScore[rel]
		n++
	}
	return mean(sum, n)
}

// Coverage is the percentage of objectives reached by at least one
// alignment edge of relevance other than none. No objectives reports 0.
func (e *Engine) Coverage() float64 {
	objectives := e.store.Entities(align.TypeObjective)
	if len(objectives) == 0 {
		return 0
	}

	covered := make(map[graph.Resource]bool)
	for _, edge := range e.store.Entities(align.TypeAlignmentEdge) {
		rel, ok := e.relevance(edge)
		if !ok || rel == align.RelevanceNone {
			continue
		}
		if obj, ok := e.store.GetOne(edge, align.PredicateAlignsObjective); ok {
			covered[obj.Resource] = true
		}
	}

	var n int
	for _, id := range objectives {
		if covered[id] {
			n++
		}
	}
	return 100 * float64(n) / float64(len(objectives))
}

// Priority is the weighted importance/allocation/risk score averaged
// over all objective-task-group pairs. A pair's missing categorical
// component contributes 0 to its weighted sum rather than failing the
// computation. No pairs reports 0.
func (e *Engine) Priority() float64 {
	var sum float64
	var n int
	for _, edge := range e.store.Entities(align.TypeAlignmentEdge) {
		var importance, allocation, risk float64
		if obj, ok := e.store.GetOne(edge, align.PredicateAlignsObjective); ok {
			if imp, ok := e.store.GetOne(obj.Resource, align.PredicateImportance); ok {
				importance = align.ImportanceScore[align.Importance(imp.String())]
			}
		}
		if tg, ok := e.store.GetOne(edge, align.PredicateAlignsTaskGroup); ok {
			if alloc, ok := e.store.GetOne(tg.Resource, align.PredicateAllocation); ok {
				allocation = align.AllocationScore[align.Allocation(alloc.String())]
			}
		}
		if r, ok := e.store.GetOne(edge, align.PredicateRiskExposure); ok {
			risk = align.RiskScore[align.RiskExposure(r.String())]
		}
		sum += priorityImportanceWeight*importance + priorityAllocationWeight*allocation + priorityRiskWeight*risk
		n++
	}
	return mean(sum, n)
}

// KPIUtility scores each KPI on baseline presence, measurability, and
// ownership, each boolean mapped to 0 or 100, and averages across all
// KPIs. No KPIs reports 0.
func (e *Engine) KPIUtility() float64 {
	var sum float64
	var n int
	for _, kpi := range e.store.Entities(align.TypeKPI) {
		var baseline, measurable, owner float64
		if obj, ok := e.store.GetOne(kpi, align.PredicateHasBaseline); ok && obj.Literal != nil {
			if b, ok := obj.Literal.Truth(); ok && b {
				baseline = 100
			}
		}
		if obj, ok := e.store.GetOne(kpi, align.PredicateIsMeasurable); ok && obj.Literal != nil {
			if b, ok := obj.Literal.Truth(); ok && b {
				measurable = 100
			}
		}
		if _, ok := e.store.GetOne(kpi, align.PredicateOwnedBy); ok {
			owner = 100
		}
		sum += kpiBaselineWeight*baseline + kpiMeasurableWeight*measurable + kpiOwnerWeight*owner
		n++
	}
	return mean(sum, n)
}

// Catchball multiplies each cascade review's strength and sufficiency
// scores, scales the product back to 0-100, and averages over all
// reviews. No reviews reports 0.
func (e *Engine) Catchball() float64 {
	inputs := e.gaps.CascadeInputs()
	var sum float64
	for _, in := range inputs {
		sum += align.CascadeScore[in.Cascade] * align.SufficiencyScore[in.Sufficiency] / 100
	}
	return mean(sum, len(inputs))
}

// EGI is the execution gap index: the mean severity score over all
// objectives exhibiting an importance/allocation mismatch. No
// mismatches reports 0. Unlike the other five metrics, higher is worse.
func (e *Engine) EGI() float64 {
	var sum float64
	var n int
	for _, g := range e.gaps.ExecutionGaps() {
		if g.Severity == align.SeverityNone {
			continue
		}
		sum += align.SeverityScore[g.Severity]
		n++
	}
	return mean(sum, n)
}

func (e *Engine) relevance(edge graph.Resource) (align.Relevance, bool) {
	obj, ok := e.store.GetOne(edge, align.PredicateRelevance)
	if !ok {
		return "", false
	}
	return align.Relevance(obj.String()), true
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
