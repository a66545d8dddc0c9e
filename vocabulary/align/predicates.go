package align

// Entity type names. Every entity in the store carries exactly one
// PredicateType triple whose object is one of these.
const (
	TypePerspective    = "Perspective"
	TypeGoal           = "Goal"
	TypeObjective      = "Objective"
	TypeTaskGroup      = "TaskGroup"
	TypeTask           = "Task"
	TypeKPI            = "KPI"
	TypeAlignmentEdge  = "AlignmentEdge"
	TypeCascadeReview  = "CascadeReview"
	TypeGoalSuggestion = "GoalSuggestion"
	TypeOwner          = "Owner"
)

// Structural predicates.
const (
	// PredicateType tags an entity with its type.
	PredicateType = "type"

	// PredicateLabel carries the display name of an entity.
	PredicateLabel = "label"

	// PredicateDescription carries free-form descriptive text.
	PredicateDescription = "description"
)

// Relationship predicates. Both ends of a triple using one of these must
// already exist as entities.
const (
	// PredicatePerspective links a Goal or Objective to its Perspective.
	PredicatePerspective = "perspective"

	// PredicateDependsOn links a Perspective to the perspective it
	// causally depends on (the catalog's fixed causal chain).
	PredicateDependsOn = "dependsOn"

	// PredicateHasObjective links a Goal to one of its Objectives.
	PredicateHasObjective = "hasObjective"

	// PredicateHasTask links a TaskGroup to one of its Tasks.
	PredicateHasTask = "hasTask"

	// PredicateHasKPI links an Objective to one of its KPIs.
	PredicateHasKPI = "hasKPI"

	// PredicateOwnedBy links a KPI to its owner resource.
	PredicateOwnedBy = "ownedBy"

	// PredicateMapsToGoal links a plan Goal to a catalog reference goal.
	PredicateMapsToGoal = "mapsToGoal"

	// PredicateSupportsCausalChain links a goal to a goal in the next
	// perspective up the causal chain.
	PredicateSupportsCausalChain = "supportsCausalChain"

	// PredicateAlignsObjective links an AlignmentEdge to its Objective.
	PredicateAlignsObjective = "alignsObjective"

	// PredicateAlignsTaskGroup links an AlignmentEdge to its TaskGroup.
	PredicateAlignsTaskGroup = "alignsTaskGroup"

	// PredicateReviewsObjective links a CascadeReview to the Objective
	// it assesses.
	PredicateReviewsObjective = "reviewsObjective"

	// PredicateSuggestsFor links a GoalSuggestion to the Goal it targets.
	PredicateSuggestsFor = "suggestsFor"
)

// Categorical predicates. Objects must be category literals drawn from
// the matching enumeration in Enumerations.
const (
	PredicateImportance     = "importance"
	PredicateAllocation     = "allocation"
	PredicateRelevance      = "relevance"
	PredicateContribution   = "contributionStrength"
	PredicateCascade        = "cascadeStrength"
	PredicateSufficiency    = "resourceSufficiency"
	PredicateRiskExposure   = "riskExposure"
	PredicateGapSeverity    = "gapSeverity"
	PredicateCausalStrength = "causalStrength"
)

// Boolean predicates used by KPI utility scoring.
const (
	PredicateHasBaseline  = "hasBaseline"
	PredicateIsMeasurable = "isMeasurable"
)

// Derived-fact predicates written back by the gap analyzer.
const (
	// PredicateOrphan marks an Objective or TaskGroup with no qualifying
	// alignment edge.
	PredicateOrphan = "orphan"
)

// RelationshipPredicates returns the closed set of predicates accepted
// by AddRelationship. A relationship written with any other predicate is
// a schema violation.
func RelationshipPredicates() []string {
	return []string{
		PredicatePerspective,
		PredicateDependsOn,
		PredicateHasObjective,
		PredicateHasTask,
		PredicateHasKPI,
		PredicateOwnedBy,
		PredicateMapsToGoal,
		PredicateSupportsCausalChain,
		PredicateAlignsObjective,
		PredicateAlignsTaskGroup,
		PredicateReviewsObjective,
		PredicateSuggestsFor,
	}
}
