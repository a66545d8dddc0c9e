package pipeline_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratalign/stratalign/graph"
	"github.com/stratalign/stratalign/pipeline"
	"github.com/stratalign/stratalign/vocabulary/align"
)

type stubIngestion struct {
	sections []pipeline.Section
	err      error
}

func (s *stubIngestion) Sections(ctx context.Context) ([]pipeline.Section, error) {
	return s.sections, s.err
}

type stubExtraction struct {
	extracted *pipeline.Extracted
}

func (s *stubExtraction) Extract(ctx context.Context, sections []pipeline.Section) (*pipeline.Extracted, error) {
	return s.extracted, nil
}

// stubAligner classifies every pair as directly relevant and counts
// the peak number of concurrent calls.
type stubAligner struct {
	mu       sync.Mutex
	inflight int
	peak     int
	calls    atomic.Int64
	err      error
}

func (s *stubAligner) Classify(ctx context.Context, o pipeline.ObjectiveRecord, g pipeline.TaskGroupRecord) (pipeline.Classification, error) {
	s.mu.Lock()
	s.inflight++
	if s.inflight > s.peak {
		s.peak = s.inflight
	}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}()

	s.calls.Add(1)
	if s.err != nil {
		return pipeline.Classification{}, s.err
	}
	return pipeline.Classification{
		Relevance:    align.RelevanceDirect,
		Contribution: align.ContributionStrong,
	}, nil
}

func testExtracted() *pipeline.Extracted {
	return &pipeline.Extracted{
		Objectives: []pipeline.ObjectiveRecord{
			{ID: "O1", Label: "Grow revenue", Importance: align.ImportanceCritical, Perspective: graph.PerspectiveFinancial},
			{ID: "O2", Label: "Retain customers", Importance: align.ImportanceHigh, Perspective: graph.PerspectiveCustomer},
		},
		TaskGroups: []pipeline.TaskGroupRecord{
			{ID: "T1", Label: "Sales push", Allocation: align.AllocationHeavy},
			{ID: "T2", Label: "Support revamp", Allocation: align.AllocationModerate,
				Tasks: []pipeline.TaskRecord{{ID: "TK1", Label: "Hire agents"}}},
			{ID: "T3", Label: "Branding", Allocation: align.AllocationLight},
		},
		KPIs: []pipeline.KPIRecord{
			{ID: "K1", Label: "ARR", Objective: "O1", HasBaseline: true, IsMeasurable: true, Owner: "owner_cfo"},
		},
	}
}

func TestRunWritesOneEdgePerPair(t *testing.T) {
	store := graph.NewStore(graph.NewCatalog())
	runner := pipeline.NewRunner(store, pipeline.WithWorkers(3))
	aligner := &stubAligner{}

	report, err := runner.Run(context.Background(),
		&stubIngestion{sections: []pipeline.Section{{Title: "Plan", Body: "..."}}},
		&stubExtraction{extracted: testExtracted()},
		aligner,
		nil)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.EqualValues(t, 6, aligner.calls.Load(), "one classify call per objective-task-group pair")
	assert.Len(t, store.Entities(align.TypeAlignmentEdge), 6)
	assert.LessOrEqual(t, aligner.peak, 3, "worker pool must stay within its bound")

	// All pairs direct: SAI is 100 and coverage is complete.
	assert.InDelta(t, 100.0, report.SAI, 1e-9)
	assert.InDelta(t, 100.0, report.Coverage, 1e-9)

	obj, ok := store.GetOne("K1", align.PredicateOwnedBy)
	require.True(t, ok)
	assert.Equal(t, graph.Resource("owner_cfo"), obj.Resource)
}

func TestRunRecordsStageSnapshots(t *testing.T) {
	store := graph.NewStore(graph.NewCatalog())
	runner := pipeline.NewRunner(store)

	_, err := runner.Run(context.Background(),
		&stubIngestion{},
		&stubExtraction{extracted: testExtracted()},
		&stubAligner{},
		nil)
	require.NoError(t, err)

	stages := runner.State().Stages()
	var labels []string
	for _, rec := range stages {
		labels = append(labels, rec.Stage)
		require.NotNil(t, rec.Snapshot)
		require.NotNil(t, rec.Validation)
		assert.True(t, rec.Validation.Valid())
	}
	assert.Equal(t, []string{
		pipeline.StageIngestion,
		pipeline.StageExtraction,
		pipeline.StageAlignment,
		pipeline.StageScoring,
	}, labels)
}

func TestStateDiff(t *testing.T) {
	store := graph.NewStore(graph.NewCatalog())
	runner := pipeline.NewRunner(store)

	_, err := runner.Run(context.Background(),
		&stubIngestion{},
		&stubExtraction{extracted: testExtracted()},
		&stubAligner{},
		nil)
	require.NoError(t, err)

	delta, err := runner.State().Diff(pipeline.StageExtraction, pipeline.StageAlignment)
	require.NoError(t, err)
	assert.Positive(t, delta.TriplesAdded)
	assert.Zero(t, delta.TriplesRemoved)
	assert.Equal(t, 6, delta.NodeDelta[align.TypeAlignmentEdge])
	// Six new edge nodes grow the density denominator quadratically, so
	// the density drops even though triples were only added.
	assert.Negative(t, delta.DensityDelta)

	_, err = runner.State().Diff("nonexistent", pipeline.StageAlignment)
	require.Error(t, err)
}

func TestRunSurfacesIngestionError(t *testing.T) {
	store := graph.NewStore(graph.NewCatalog())
	runner := pipeline.NewRunner(store)

	_, err := runner.Run(context.Background(),
		&stubIngestion{err: errors.New("upstream parse failed")},
		&stubExtraction{extracted: testExtracted()},
		&stubAligner{},
		nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingestion stage")
}

func TestRunSurfacesClassifyErrors(t *testing.T) {
	store := graph.NewStore(graph.NewCatalog())
	runner := pipeline.NewRunner(store, pipeline.WithWorkers(2))

	_, err := runner.Run(context.Background(),
		&stubIngestion{},
		&stubExtraction{extracted: testExtracted()},
		&stubAligner{err: errors.New("model timeout")},
		nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alignment stage")
}

type stubBenchmarking struct{}

func (stubBenchmarking) Benchmark(ctx context.Context, snap *graph.Snapshot) (*pipeline.Benchmark, error) {
	return &pipeline.Benchmark{
		Mappings: []pipeline.GoalMapping{
			{Objective: "O1", Reference: "REF_Profitability", Strength: align.CausalStrong},
		},
		Suggestions: []pipeline.Suggestion{
			{ID: "S1", Reference: "REF_WorkforceCapability", Description: "No learning objectives found"},
		},
	}, nil
}

func TestRunAppliesBenchmark(t *testing.T) {
	store := graph.NewStore(graph.NewCatalog())
	runner := pipeline.NewRunner(store)

	_, err := runner.Run(context.Background(),
		&stubIngestion{},
		&stubExtraction{extracted: testExtracted()},
		&stubAligner{},
		stubBenchmarking{})
	require.NoError(t, err)

	mapped, ok := store.GetOne("O1", align.PredicateMapsToGoal)
	require.True(t, ok)
	assert.Equal(t, graph.Resource("REF_Profitability"), mapped.Resource)

	strength, ok := store.GetOne("O1", align.PredicateCausalStrength)
	require.True(t, ok)
	assert.Equal(t, string(align.CausalStrong), strength.String())

	target, ok := store.GetOne("S1", align.PredicateSuggestsFor)
	require.True(t, ok)
	assert.Equal(t, graph.Resource("REF_WorkforceCapability"), target.Resource)
}
