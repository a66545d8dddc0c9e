package align

// Importance represents the strategic importance of an objective.
type Importance string

const (
	// ImportanceCritical indicates a make-or-break objective.
	ImportanceCritical Importance = "critical"

	// ImportanceHigh indicates a high-priority objective.
	ImportanceHigh Importance = "high"

	// ImportanceModerate indicates a mid-tier objective.
	ImportanceModerate Importance = "moderate"

	// ImportanceLow indicates a low-priority objective.
	ImportanceLow Importance = "low"

	// ImportanceNegligible indicates an objective of marginal weight.
	ImportanceNegligible Importance = "negligible"
)

// Allocation represents the resource allocation level of a task group.
type Allocation string

const (
	// AllocationHeavy indicates a heavily resourced task group.
	AllocationHeavy Allocation = "heavy"

	// AllocationModerate indicates a moderately resourced task group.
	AllocationModerate Allocation = "moderate"

	// AllocationLight indicates a lightly resourced task group.
	AllocationLight Allocation = "light"

	// AllocationMinimal indicates a minimally resourced task group.
	AllocationMinimal Allocation = "minimal"
)

// Relevance represents how relevant a task group is to an objective.
type Relevance string

const (
	// RelevanceDirect indicates the task group directly advances the objective.
	RelevanceDirect Relevance = "direct"

	// RelevancePartial indicates the task group partially advances the objective.
	RelevancePartial Relevance = "partial"

	// RelevanceIndirect indicates an indirect contribution.
	RelevanceIndirect Relevance = "indirect"

	// RelevanceNone indicates no meaningful contribution.
	RelevanceNone Relevance = "none"
)

// ContributionStrength represents how strongly an aligned task group
// contributes to its objective.
type ContributionStrength string

const (
	ContributionStrong   ContributionStrength = "strong"
	ContributionModerate ContributionStrength = "moderate"
	ContributionWeak     ContributionStrength = "weak"
	ContributionNone     ContributionStrength = "none"
)

// Cascade represents the strength of goal-to-sub-goal propagation.
type Cascade string

const (
	CascadeStrong   Cascade = "strong"
	CascadeModerate Cascade = "moderate"
	CascadeWeak     Cascade = "weak"
	CascadeNone     Cascade = "none"
)

// Sufficiency represents whether allocated resources are sufficient to
// achieve an objective.
type Sufficiency string

const (
	SufficiencyFull     Sufficiency = "fully_sufficient"
	SufficiencyAdequate Sufficiency = "adequate"
	SufficiencyShort    Sufficiency = "insufficient"
	SufficiencyLacking  Sufficiency = "severely_lacking"
)

// RiskExposure represents the risk carried by an objective/task-group pair.
type RiskExposure string

const (
	RiskCritical   RiskExposure = "critical"
	RiskHigh       RiskExposure = "high"
	RiskModerate   RiskExposure = "moderate"
	RiskLow        RiskExposure = "low"
	RiskNegligible RiskExposure = "negligible"
)

// GapSeverity classifies an importance/allocation mismatch.
type GapSeverity string

const (
	SeverityNone     GapSeverity = "none"
	SeverityLow      GapSeverity = "low"
	SeverityModerate GapSeverity = "moderate"
	SeverityHigh     GapSeverity = "high"
	SeveritySevere   GapSeverity = "severe"
)

// CausalStrength represents the strength of a causal link between goals
// in adjacent perspectives.
type CausalStrength string

const (
	CausalStrong   CausalStrength = "strong"
	CausalModerate CausalStrength = "moderate"
	CausalWeak     CausalStrength = "weak"
)

// Enumerations maps each categorical predicate name to its closed set of
// allowed values. Writes carrying a categorical predicate are validated
// against this table; any value outside it is rejected at the write
// boundary.
func Enumerations() map[string][]string {
	return map[string][]string{
		PredicateImportance: {
			string(ImportanceCritical), string(ImportanceHigh),
			string(ImportanceModerate), string(ImportanceLow),
			string(ImportanceNegligible),
		},
		PredicateAllocation: {
			string(AllocationHeavy), string(AllocationModerate),
			string(AllocationLight), string(AllocationMinimal),
		},
		PredicateRelevance: {
			string(RelevanceDirect), string(RelevancePartial),
			string(RelevanceIndirect), string(RelevanceNone),
		},
		PredicateContribution: {
			string(ContributionStrong), string(ContributionModerate),
			string(ContributionWeak), string(ContributionNone),
		},
		PredicateCascade: {
			string(CascadeStrong), string(CascadeModerate),
			string(CascadeWeak), string(CascadeNone),
		},
		PredicateSufficiency: {
			string(SufficiencyFull), string(SufficiencyAdequate),
			string(SufficiencyShort), string(SufficiencyLacking),
		},
		PredicateRiskExposure: {
			string(RiskCritical), string(RiskHigh), string(RiskModerate),
			string(RiskLow), string(RiskNegligible),
		},
		PredicateGapSeverity: {
			string(SeverityNone), string(SeverityLow), string(SeverityModerate),
			string(SeverityHigh), string(SeveritySevere),
		},
		PredicateCausalStrength: {
			string(CausalStrong), string(CausalModerate), string(CausalWeak),
		},
	}
}
