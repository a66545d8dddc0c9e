package align_test

import (
	"testing"

	"github.com/stratalign/stratalign/vocabulary/align"
)

var allImportance = []align.Importance{
	align.ImportanceNegligible,
	align.ImportanceLow,
	align.ImportanceModerate,
	align.ImportanceHigh,
	align.ImportanceCritical,
}

var allAllocation = []align.Allocation{
	align.AllocationMinimal,
	align.AllocationLight,
	align.AllocationModerate,
	align.AllocationHeavy,
}

func TestExecutionGapSeverityEndpoints(t *testing.T) {
	tests := []struct {
		imp   align.Importance
		alloc align.Allocation
		want  align.GapSeverity
	}{
		{align.ImportanceCritical, align.AllocationMinimal, align.SeveritySevere},
		{align.ImportanceCritical, align.AllocationHeavy, align.SeverityNone},
		{align.ImportanceHigh, align.AllocationModerate, align.SeverityNone},
		{align.ImportanceHigh, align.AllocationMinimal, align.SeverityHigh},
		{align.ImportanceModerate, align.AllocationLight, align.SeverityNone},
		{align.ImportanceModerate, align.AllocationMinimal, align.SeverityLow},
		{align.ImportanceCritical, align.AllocationModerate, align.SeverityModerate},
		{align.ImportanceNegligible, align.AllocationMinimal, align.SeverityNone},
		{align.ImportanceLow, align.AllocationHeavy, align.SeverityNone},
	}

	for _, tc := range tests {
		t.Run(string(tc.imp)+"/"+string(tc.alloc), func(t *testing.T) {
			got := align.ExecutionGapSeverity(tc.imp, tc.alloc)
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

// The mapping must be total over the importance x allocation product
// and monotonic in both axes.
func TestExecutionGapSeverityTotalAndMonotonic(t *testing.T) {
	rank := map[align.GapSeverity]int{
		align.SeverityNone:     0,
		align.SeverityLow:      1,
		align.SeverityModerate: 2,
		align.SeverityHigh:     3,
		align.SeveritySevere:   4,
	}

	for _, imp := range allImportance {
		for _, alloc := range allAllocation {
			sev := align.ExecutionGapSeverity(imp, alloc)
			if _, ok := rank[sev]; !ok {
				t.Fatalf("ExecutionGapSeverity(%q, %q) = %q, not a severity tier", imp, alloc, sev)
			}
		}
	}

	// Severity never decreases as importance rises.
	for _, alloc := range allAllocation {
		prev := -1
		for _, imp := range allImportance {
			r := rank[align.ExecutionGapSeverity(imp, alloc)]
			if r < prev {
				t.Errorf("severity decreased from rank %d to %d at (%q, %q)", prev, r, imp, alloc)
			}
			prev = r
		}
	}

	// Severity never decreases as allocation falls.
	for _, imp := range allImportance {
		prev := -1
		for i := len(allAllocation) - 1; i >= 0; i-- {
			r := rank[align.ExecutionGapSeverity(imp, allAllocation[i])]
			if r < prev {
				t.Errorf("severity decreased from rank %d to %d at (%q, %q)", prev, r, imp, allAllocation[i])
			}
			prev = r
		}
	}
}

func TestScoreTablesTotal(t *testing.T) {
	for pred, values := range align.Enumerations() {
		for _, v := range values {
			var ok bool
			switch pred {
			case align.PredicateImportance:
				_, ok = align.ImportanceScore[align.Importance(v)]
			case align.PredicateAllocation:
				_, ok = align.AllocationScore[align.Allocation(v)]
			case align.PredicateRelevance:
				_, ok = align.RelevanceScore[align.Relevance(v)]
			case align.PredicateCascade:
				_, ok = align.CascadeScore[align.Cascade(v)]
			case align.PredicateSufficiency:
				_, ok = align.SufficiencyScore[align.Sufficiency(v)]
			case align.PredicateRiskExposure:
				_, ok = align.RiskScore[align.RiskExposure(v)]
			case align.PredicateGapSeverity:
				_, ok = align.SeverityScore[align.GapSeverity(v)]
			default:
				continue
			}
			if !ok {
				t.Errorf("enumeration value %q of %q has no score entry", v, pred)
			}
		}
	}
}
