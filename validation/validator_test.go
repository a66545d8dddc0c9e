package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratalign/stratalign/graph"
	"github.com/stratalign/stratalign/validation"
	"github.com/stratalign/stratalign/vocabulary/align"
)

func newStore(t *testing.T) *graph.Store {
	t.Helper()
	return graph.NewStore(graph.NewCatalog())
}

func TestValidStorePasses(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.AddEntity("O1", align.TypeObjective, map[graph.Resource]graph.Object{
		align.PredicateImportance: graph.Lit(graph.Category(string(align.ImportanceHigh))),
		align.PredicateLabel:      graph.Lit(graph.String("Grow revenue")),
	}))

	report := validation.NewValidator(s.Catalog()).ValidateStore(s)
	assert.True(t, report.Valid())
	assert.NotEmpty(t, report.ID)
	assert.NotZero(t, report.Entities)
}

// AddRelationship does not enforce per-type shapes, so a second
// perspective link slips past the write boundary. The validator must
// catch it, and validating must not mutate the store.
func TestValidatorFlagsSingleValuedViolation(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.AddEntity("O1", align.TypeObjective, map[graph.Resource]graph.Object{
		align.PredicateImportance: graph.Lit(graph.Category(string(align.ImportanceHigh))),
	}))
	require.NoError(t, s.AddRelationship("O1", align.PredicatePerspective, graph.PerspectiveFinancial))
	require.NoError(t, s.AddRelationship("O1", align.PredicatePerspective, graph.PerspectiveCustomer))

	before := s.Len()
	report := validation.NewValidator(s.Catalog()).ValidateStore(s)

	require.False(t, report.Valid())
	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, graph.Resource("O1"), v.Resource)
	assert.Equal(t, validation.RuleSingleValued, v.Rule)
	assert.Contains(t, v.Detail, "perspective")

	assert.Equal(t, before, s.Len(), "validation must not mutate the store")
}

// Replacing an alignment edge removes every triple touching the old
// edge, including another entity's required relationship pointing at
// it. The validator must flag the resulting hole.
func TestValidatorFlagsRequiredMissing(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.AddEntity("O1", align.TypeObjective, map[graph.Resource]graph.Object{
		align.PredicateImportance: graph.Lit(graph.Category(string(align.ImportanceHigh))),
	}))
	require.NoError(t, s.AddEntity("T1", align.TypeTaskGroup, map[graph.Resource]graph.Object{
		align.PredicateAllocation: graph.Lit(graph.Category(string(align.AllocationHeavy))),
	}))
	addEdge := func(id graph.Resource, rel align.Relevance) {
		require.NoError(t, s.AddEntity(id, align.TypeAlignmentEdge, map[graph.Resource]graph.Object{
			align.PredicateAlignsObjective: graph.Ref("O1"),
			align.PredicateAlignsTaskGroup: graph.Ref("T1"),
			align.PredicateRelevance:       graph.Lit(graph.Category(string(rel))),
			align.PredicateContribution:    graph.Lit(graph.Category(string(align.ContributionStrong))),
		}))
	}
	addEdge("E1", align.RelevancePartial)
	require.NoError(t, s.AddEntity("S1", align.TypeGoalSuggestion, map[graph.Resource]graph.Object{
		align.PredicateSuggestsFor: graph.Ref("E1"),
	}))

	addEdge("E2", align.RelevanceDirect)

	report := validation.NewValidator(s.Catalog()).ValidateStore(s)
	require.False(t, report.Valid())
	require.Len(t, report.Violations, 1)
	v := report.Violations[0]
	assert.Equal(t, graph.Resource("S1"), v.Resource)
	assert.Equal(t, validation.RuleRequiredMissing, v.Rule)
	assert.Contains(t, v.Detail, "suggestsFor")
}

func TestValidatorChecksSnapshotNotLiveStore(t *testing.T) {
	s := newStore(t)
	require.NoError(t, s.AddEntity("O1", align.TypeObjective, map[graph.Resource]graph.Object{
		align.PredicateImportance: graph.Lit(graph.Category(string(align.ImportanceHigh))),
	}))
	snap := s.Snapshot()

	// A violation written after the snapshot is invisible to it.
	require.NoError(t, s.AddRelationship("O1", align.PredicatePerspective, graph.PerspectiveFinancial))
	require.NoError(t, s.AddRelationship("O1", align.PredicatePerspective, graph.PerspectiveCustomer))

	report := validation.NewValidator(s.Catalog()).Validate(snap)
	assert.True(t, report.Valid())
	assert.Equal(t, snap.ID, report.SnapshotID)
}

func TestReportEntitiesCountsPreloadedTaxonomy(t *testing.T) {
	s := newStore(t)
	report := validation.NewValidator(s.Catalog()).ValidateStore(s)
	assert.True(t, report.Valid())
	assert.Equal(t, 8, report.Entities, "four perspectives and four reference goals")
}
