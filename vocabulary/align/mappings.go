package align

// Category-to-score mapping tables. All scores are on a 0-100 scale and
// the tables are total over their enumerations: every legal category has
// an entry, so a lookup miss means the value was never validated.

// ImportanceScore maps importance categories to numeric scores.
var ImportanceScore = map[Importance]float64{
	ImportanceCritical:   100,
	ImportanceHigh:       75,
	ImportanceModerate:   50,
	ImportanceLow:        25,
	ImportanceNegligible: 0,
}

// AllocationScore maps allocation categories to numeric scores.
var AllocationScore = map[Allocation]float64{
	AllocationHeavy:    100,
	AllocationModerate: 70,
	AllocationLight:    40,
	AllocationMinimal:  10,
}

// RelevanceScore maps relevance categories to numeric scores.
var RelevanceScore = map[Relevance]float64{
	RelevanceDirect:   100,
	RelevancePartial:  60,
	RelevanceIndirect: 30,
	RelevanceNone:     0,
}

// RiskScore maps risk exposure categories to numeric scores.
var RiskScore = map[RiskExposure]float64{
	RiskCritical:   100,
	RiskHigh:       75,
	RiskModerate:   50,
	RiskLow:        25,
	RiskNegligible: 0,
}

// CascadeScore maps cascade strength categories to numeric scores.
var CascadeScore = map[Cascade]float64{
	CascadeStrong:   100,
	CascadeModerate: 65,
	CascadeWeak:     30,
	CascadeNone:     0,
}

// SufficiencyScore maps resource sufficiency categories to numeric scores.
var SufficiencyScore = map[Sufficiency]float64{
	SufficiencyFull:     100,
	SufficiencyAdequate: 65,
	SufficiencyShort:    30,
	SufficiencyLacking:  0,
}

// SeverityScore maps gap severity categories to numeric scores. Higher
// means a worse execution gap.
var SeverityScore = map[GapSeverity]float64{
	SeverityNone:     0,
	SeverityLow:      25,
	SeverityModerate: 50,
	SeverityHigh:     75,
	SeveritySevere:   100,
}

// Ordinal ranks for the execution-gap table. Importance spans five
// tiers, allocation four; both are ranked bottom-up.
var importanceRank = map[Importance]int{
	ImportanceNegligible: 0,
	ImportanceLow:        1,
	ImportanceModerate:   2,
	ImportanceHigh:       3,
	ImportanceCritical:   4,
}

var allocationRank = map[Allocation]int{
	AllocationMinimal:  0,
	AllocationLight:    1,
	AllocationModerate: 2,
	AllocationHeavy:    3,
}

// ImportanceRank returns the bottom-up ordinal rank of an importance
// tier.
func ImportanceRank(imp Importance) int { return importanceRank[imp] }

// AllocationRank returns the bottom-up ordinal rank of an allocation
// tier.
func AllocationRank(alloc Allocation) int { return allocationRank[alloc] }

// ExecutionGapSeverity classifies the mismatch between an objective's
// importance and the (max) allocation of its supporting task groups.
//
// The mapping is total over the importance x allocation product and
// monotonic in both axes: severity never decreases as importance rises
// or allocation falls. Tiers pair off top-down (critical<->heavy,
// high<->moderate, moderate<->light, low<->minimal); a matching or
// better-resourced pair maps to SeverityNone and each additional tier
// of under-resourcing raises the severity, topping out at
// {critical, minimal} -> severe. One tier short is only SeverityLow
// when the objective is at most moderately important.
func ExecutionGapSeverity(imp Importance, alloc Allocation) GapSeverity {
	d := importanceRank[imp] - allocationRank[alloc] - 1
	switch {
	case d <= 0:
		return SeverityNone
	case d == 1:
		if importanceRank[imp] >= importanceRank[ImportanceHigh] {
			return SeverityModerate
		}
		return SeverityLow
	case d == 2:
		return SeverityHigh
	default:
		return SeveritySevere
	}
}
