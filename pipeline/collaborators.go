// Package pipeline orchestrates the plan-analysis stages over one
// store: ingestion, extraction, alignment, benchmarking, and scoring.
// The collaborators doing the actual language work are external; this
// package defines their contracts, drives them in order, snapshots the
// graph at every stage boundary, and fans the pairwise alignment calls
// out over a bounded worker pool.
package pipeline

import (
	"context"

	"github.com/stratalign/stratalign/graph"
	"github.com/stratalign/stratalign/vocabulary/align"
)

// Section is one parsed slice of plan text. The core treats the body
// as opaque.
type Section struct {
	Title string
	Body  string
}

// Ingestion supplies parsed plan sections.
type Ingestion interface {
	Sections(ctx context.Context) ([]Section, error)
}

// ObjectiveRecord is one extracted strategic objective with its
// categorical fields already classified.
type ObjectiveRecord struct {
	ID          graph.Resource
	Label       string
	Importance  align.Importance
	Perspective graph.Resource
}

// TaskGroupRecord is one extracted action-plan task group.
type TaskGroupRecord struct {
	ID         graph.Resource
	Label      string
	Allocation align.Allocation
	Tasks      []TaskRecord
}

// TaskRecord is one task inside a task group.
type TaskRecord struct {
	ID    graph.Resource
	Label string
	Owner graph.Resource
}

// KPIRecord is one extracted key performance indicator.
type KPIRecord struct {
	ID           graph.Resource
	Label        string
	Objective    graph.Resource
	HasBaseline  bool
	IsMeasurable bool
	Owner        graph.Resource
}

// Extracted bundles everything the extraction collaborator pulled out
// of the plan sections.
type Extracted struct {
	Objectives []ObjectiveRecord
	TaskGroups []TaskGroupRecord
	KPIs       []KPIRecord
}

// Extraction turns plan sections into typed records.
type Extraction interface {
	Extract(ctx context.Context, sections []Section) (*Extracted, error)
}

// Classification is one pairwise alignment assessment. Risk may be
// empty when the collaborator offers no risk judgement.
type Classification struct {
	Relevance    align.Relevance
	Contribution align.ContributionStrength
	Risk         align.RiskExposure
}

// Alignment classifies how one task group supports one objective.
// Classify must be safe for concurrent calls: the runner dispatches
// one call per objective-task-group pair across its worker pool.
type Alignment interface {
	Classify(ctx context.Context, objective ObjectiveRecord, group TaskGroupRecord) (Classification, error)
}

// GoalMapping links a plan objective to a catalog reference goal.
type GoalMapping struct {
	Objective graph.Resource
	Reference graph.Resource
	Strength  align.CausalStrength
}

// Suggestion proposes a goal the plan is missing.
type Suggestion struct {
	ID          graph.Resource
	Reference   graph.Resource
	Description string
}

// Benchmark bundles the benchmarking collaborator's output.
type Benchmark struct {
	Mappings    []GoalMapping
	Suggestions []Suggestion
}

// Benchmarking maps plan objectives onto the reference-goal taxonomy
// and proposes gaps worth filling.
type Benchmarking interface {
	Benchmark(ctx context.Context, snap *graph.Snapshot) (*Benchmark, error)
}
