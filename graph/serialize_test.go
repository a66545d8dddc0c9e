package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratalign/stratalign/graph"
	"github.com/stratalign/stratalign/vocabulary/align"
)

func populatedStore(t *testing.T) *graph.Store {
	t.Helper()
	s := newStore(t)
	addObjective(t, s, "O1", align.ImportanceCritical)
	addObjective(t, s, "O2", align.ImportanceLow)
	addTaskGroup(t, s, "T1", align.AllocationHeavy)
	addEdge(t, s, "E1", "O1", "T1", align.RelevanceDirect)

	require.NoError(t, s.AddEntity("K1", align.TypeKPI, map[graph.Resource]graph.Object{
		align.PredicateLabel:        graph.Lit(graph.String("Revenue growth")),
		align.PredicateHasBaseline:  graph.Lit(graph.Bool(true)),
		align.PredicateIsMeasurable: graph.Lit(graph.Bool(true)),
	}))
	require.NoError(t, s.AddRelationship("O1", align.PredicateHasKPI, "K1"))
	require.NoError(t, s.AddRelationship("O1", align.PredicatePerspective, graph.PerspectiveFinancial))
	return s
}

func TestSerializeRoundTrip(t *testing.T) {
	s := populatedStore(t)

	data, err := s.Serialize()
	require.NoError(t, err)

	restored, err := graph.LoadStore(graph.NewCatalog(), data)
	require.NoError(t, err)

	assert.Equal(t, s.Snapshot().Keys(), restored.Snapshot().Keys(),
		"deserializing a serialized store must reconstruct an identical triple set")
}

func TestSerializeDeterministic(t *testing.T) {
	s := populatedStore(t)

	a, err := s.Serialize()
	require.NoError(t, err)
	b, err := s.Serialize()
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRestoreRejectsUnknownVersion(t *testing.T) {
	doc := []byte("version: stratalign.graph/v999\nentities: []\n")

	_, err := graph.LoadStore(graph.NewCatalog(), doc)
	require.Error(t, err)
	assert.ErrorIs(t, err, graph.ErrSerialization)
}

func TestRestoreLeavesStoreUntouchedOnError(t *testing.T) {
	s := populatedStore(t)
	before := s.Snapshot().Keys()

	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "not yaml",
			doc:  "{{{",
		},
		{
			name: "unknown entity type",
			doc:  "version: stratalign.graph/v1\nentities:\n  - id: X1\n    type: Widget\n",
		},
		{
			name: "enum violation",
			doc: "version: stratalign.graph/v1\nentities:\n  - id: O9\n    type: Objective\n" +
				"    properties:\n      - predicate: importance\n        kind: category\n        value: extreme\n",
		},
		{
			name: "required missing",
			doc:  "version: stratalign.graph/v1\nentities:\n  - id: O9\n    type: Objective\n",
		},
		{
			name: "dangling relationship",
			doc: "version: stratalign.graph/v1\nentities: []\nrelationships:\n" +
				"  - subject: A\n    predicate: hasKPI\n    object: B\n",
		},
		{
			name: "preloaded collision",
			doc:  "version: stratalign.graph/v1\nentities:\n  - id: BSC_Financial\n    type: Objective\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := s.Restore([]byte(tc.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, graph.ErrSerialization)
			assert.Equal(t, before, s.Snapshot().Keys(), "failed restore must not touch the store")
		})
	}
}

func TestRestoreReplacesContents(t *testing.T) {
	s := populatedStore(t)
	data, err := s.Serialize()
	require.NoError(t, err)

	other := newStore(t)
	addObjective(t, other, "OX", align.ImportanceModerate)

	require.NoError(t, other.Restore(data))
	assert.Equal(t, s.Snapshot().Keys(), other.Snapshot().Keys())
	_, ok := other.EntityType("OX")
	assert.False(t, ok, "restore replaces prior contents")
}

func TestRestoredEdgePairStillReplaces(t *testing.T) {
	s := populatedStore(t)
	data, err := s.Serialize()
	require.NoError(t, err)

	restored, err := graph.LoadStore(graph.NewCatalog(), data)
	require.NoError(t, err)

	addEdge(t, restored, "E2", "O1", "T1", align.RelevancePartial)
	_, ok := restored.EntityType("E1")
	assert.False(t, ok, "edge pair index must survive a round trip")
	assert.Len(t, restored.Entities(align.TypeAlignmentEdge), 1)
}
