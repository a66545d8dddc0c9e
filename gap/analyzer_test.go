package gap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratalign/stratalign/gap"
	"github.com/stratalign/stratalign/graph"
	"github.com/stratalign/stratalign/vocabulary/align"
)

func newStore(t *testing.T) *graph.Store {
	t.Helper()
	return graph.NewStore(graph.NewCatalog())
}

func addObjective(t *testing.T, s *graph.Store, id graph.Resource, imp align.Importance) {
	t.Helper()
	require.NoError(t, s.AddEntity(id, align.TypeObjective, map[graph.Resource]graph.Object{
		align.PredicateImportance: graph.Lit(graph.Category(string(imp))),
	}))
}

func addTaskGroup(t *testing.T, s *graph.Store, id graph.Resource, alloc align.Allocation) {
	t.Helper()
	require.NoError(t, s.AddEntity(id, align.TypeTaskGroup, map[graph.Resource]graph.Object{
		align.PredicateAllocation: graph.Lit(graph.Category(string(alloc))),
	}))
}

func addEdge(t *testing.T, s *graph.Store, id, obj, tg graph.Resource, rel align.Relevance) {
	t.Helper()
	require.NoError(t, s.AddEntity(id, align.TypeAlignmentEdge, map[graph.Resource]graph.Object{
		align.PredicateAlignsObjective: graph.Ref(obj),
		align.PredicateAlignsTaskGroup: graph.Ref(tg),
		align.PredicateRelevance:       graph.Lit(graph.Category(string(rel))),
		align.PredicateContribution:    graph.Lit(graph.Category(string(align.ContributionModerate))),
	}))
}

// An objective is an orphan iff its set of relevance-bearing edges is
// empty: no edges at all, or only relevance-none edges.
func TestOrphanObjectives(t *testing.T) {
	s := newStore(t)
	addObjective(t, s, "O_covered", align.ImportanceHigh)
	addObjective(t, s, "O_none", align.ImportanceHigh)
	addObjective(t, s, "O_bare", align.ImportanceHigh)
	addTaskGroup(t, s, "T1", align.AllocationHeavy)
	addTaskGroup(t, s, "T2", align.AllocationLight)
	addEdge(t, s, "E1", "O_covered", "T1", align.RelevanceDirect)
	addEdge(t, s, "E2", "O_none", "T2", align.RelevanceNone)

	orphans, err := gap.NewAnalyzer(s).OrphanObjectives()
	require.NoError(t, err)
	assert.Equal(t, []graph.Resource{"O_bare", "O_none"}, orphans)
}

func TestOrphanTaskGroups(t *testing.T) {
	s := newStore(t)
	addObjective(t, s, "O1", align.ImportanceHigh)
	addTaskGroup(t, s, "T_covered", align.AllocationHeavy)
	addTaskGroup(t, s, "T_bare", align.AllocationLight)
	addEdge(t, s, "E1", "O1", "T_covered", align.RelevancePartial)

	orphans, err := gap.NewAnalyzer(s).OrphanTaskGroups()
	require.NoError(t, err)
	assert.Equal(t, []graph.Resource{"T_bare"}, orphans)
}

func TestUnbalancedPerspectives(t *testing.T) {
	s := newStore(t)
	addObjective(t, s, "O1", align.ImportanceHigh)
	require.NoError(t, s.AddRelationship("O1", align.PredicatePerspective, graph.PerspectiveFinancial))

	unbalanced := gap.NewAnalyzer(s).UnbalancedPerspectives()
	assert.Equal(t, []graph.Resource{
		graph.PerspectiveCustomer,
		graph.PerspectiveInternalProcess,
		graph.PerspectiveLearningGrowth,
	}, unbalanced)
}

// The aggregated allocation is the max over linked task groups, so a
// heavy group beside a minimal one closes the gap.
func TestExecutionGapsMaxAllocation(t *testing.T) {
	s := newStore(t)
	addObjective(t, s, "O1", align.ImportanceCritical)
	addTaskGroup(t, s, "T_min", align.AllocationMinimal)
	addTaskGroup(t, s, "T_heavy", align.AllocationHeavy)
	addEdge(t, s, "E1", "O1", "T_min", align.RelevanceDirect)
	addEdge(t, s, "E2", "O1", "T_heavy", align.RelevanceDirect)

	gaps := gap.NewAnalyzer(s).ExecutionGaps()
	require.Len(t, gaps, 1)
	assert.Equal(t, align.AllocationHeavy, gaps[0].Allocation)
	assert.Equal(t, align.SeverityNone, gaps[0].Severity)
}

func TestExecutionGapsSeverity(t *testing.T) {
	s := newStore(t)
	addObjective(t, s, "O1", align.ImportanceCritical)
	addObjective(t, s, "O_unlinked", align.ImportanceCritical)
	addTaskGroup(t, s, "T1", align.AllocationMinimal)
	addEdge(t, s, "E1", "O1", "T1", align.RelevanceDirect)

	gaps := gap.NewAnalyzer(s).ExecutionGaps()
	require.Len(t, gaps, 1, "unlinked objectives are orphans, not execution gaps")
	assert.Equal(t, graph.Resource("O1"), gaps[0].Objective)
	assert.Equal(t, align.SeveritySevere, gaps[0].Severity)
}

func TestMisalignments(t *testing.T) {
	s := newStore(t)
	addObjective(t, s, "O_under", align.ImportanceCritical)
	addObjective(t, s, "O_over", align.ImportanceNegligible)
	addObjective(t, s, "O_fine", align.ImportanceHigh)
	addTaskGroup(t, s, "T_min", align.AllocationMinimal)
	addTaskGroup(t, s, "T_heavy", align.AllocationHeavy)
	addTaskGroup(t, s, "T_mod", align.AllocationModerate)
	addEdge(t, s, "E1", "O_under", "T_min", align.RelevanceDirect)
	addEdge(t, s, "E2", "O_over", "T_heavy", align.RelevanceDirect)
	addEdge(t, s, "E3", "O_fine", "T_mod", align.RelevanceDirect)

	mis := gap.NewAnalyzer(s).Misalignments()
	byObjective := make(map[graph.Resource]gap.MisalignmentKind)
	for _, m := range mis {
		byObjective[m.Objective] = m.Kind
	}
	assert.Equal(t, gap.UnderResourced, byObjective["O_under"])
	assert.Equal(t, gap.OverResourced, byObjective["O_over"])
	_, flagged := byObjective["O_fine"]
	assert.False(t, flagged)
}

func TestChainGaps(t *testing.T) {
	s := newStore(t)
	addObjective(t, s, "O_fin", align.ImportanceHigh)
	require.NoError(t, s.AddRelationship("O_fin", align.PredicatePerspective, graph.PerspectiveFinancial))

	gaps := gap.NewAnalyzer(s).ChainGaps()
	require.Len(t, gaps, 1, "only the financial perspective holds objectives")
	assert.Equal(t, graph.PerspectiveFinancial, gaps[0].Perspective)
	assert.Equal(t, graph.PerspectiveCustomer, gaps[0].DependsOn)
}

func TestCascadeInputs(t *testing.T) {
	s := newStore(t)
	addObjective(t, s, "O1", align.ImportanceHigh)
	require.NoError(t, s.AddEntity("R1", align.TypeCascadeReview, map[graph.Resource]graph.Object{
		align.PredicateReviewsObjective: graph.Ref("O1"),
		align.PredicateCascade:          graph.Lit(graph.Category(string(align.CascadeModerate))),
		align.PredicateSufficiency:      graph.Lit(graph.Category(string(align.SufficiencyShort))),
	}))

	inputs := gap.NewAnalyzer(s).CascadeInputs()
	require.Len(t, inputs, 1)
	assert.Equal(t, graph.Resource("O1"), inputs[0].Objective)
	assert.Equal(t, align.CascadeModerate, inputs[0].Cascade)
	assert.Equal(t, align.SufficiencyShort, inputs[0].Sufficiency)
}

func TestWriteDerived(t *testing.T) {
	s := newStore(t)
	addObjective(t, s, "O_orphan", align.ImportanceHigh)
	addObjective(t, s, "O_gap", align.ImportanceCritical)
	addTaskGroup(t, s, "T_bare", align.AllocationLight)
	addTaskGroup(t, s, "T1", align.AllocationMinimal)
	addEdge(t, s, "E1", "O_gap", "T1", align.RelevanceDirect)

	require.NoError(t, gap.NewAnalyzer(s).WriteDerived())

	orphan, ok := s.GetOne("O_orphan", align.PredicateOrphan)
	require.True(t, ok)
	b, _ := orphan.Literal.Truth()
	assert.True(t, b)

	orphanTG, ok := s.GetOne("T_bare", align.PredicateOrphan)
	require.True(t, ok)
	b, _ = orphanTG.Literal.Truth()
	assert.True(t, b)

	sev, ok := s.GetOne("O_gap", align.PredicateGapSeverity)
	require.True(t, ok)
	assert.Equal(t, string(align.SeveritySevere), sev.String())

	_, ok = s.GetOne("O_gap", align.PredicateOrphan)
	assert.False(t, ok, "a gapped but covered objective is not an orphan")
}
