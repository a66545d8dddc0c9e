package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/stratalign/stratalign/gap"
	"github.com/stratalign/stratalign/graph"
	"github.com/stratalign/stratalign/publish"
	"github.com/stratalign/stratalign/scoring"
	"github.com/stratalign/stratalign/validation"
	"github.com/stratalign/stratalign/vocabulary/align"
)

// DefaultWorkers bounds the alignment worker pool when no explicit
// size is configured.
const DefaultWorkers = 4

// Runner drives one pipeline run over one store.
type Runner struct {
	store     *graph.Store
	validator *validation.Validator
	publisher *publish.Publisher
	logger    *slog.Logger
	workers   int
	state     *State
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets the alignment worker-pool size.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithPublisher attaches a NATS publisher. A nil publisher is allowed
// and publishes nothing.
func WithPublisher(p *publish.Publisher) RunnerOption {
	return func(r *Runner) { r.publisher = p }
}

// WithLogger sets the runner's logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner constructs a runner over a store.
func NewRunner(store *graph.Store, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:     store,
		validator: validation.NewValidator(store.Catalog()),
		logger:    slog.Default(),
		workers:   DefaultWorkers,
		state:     NewState(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the run's stage records.
func (r *Runner) State() *State { return r.state }

// Run executes the full stage sequence: ingest sections, extract and
// write entities, classify every objective-task-group pair across the
// worker pool, benchmark against the reference taxonomy, derive gap
// facts, and score. Each stage boundary is snapshotted and validated;
// a failed validation is recorded and surfaced through the state, not
// fatal. The benchmarking collaborator may be nil.
func (r *Runner) Run(ctx context.Context, ing Ingestion, ext Extraction, aligner Alignment, bench Benchmarking) (*scoring.Report, error) {
	sections, err := ing.Sections(ctx)
	if err != nil {
		return nil, fmt.Errorf("ingestion stage: %w", err)
	}
	r.recordStage(StageIngestion)
	r.logger.Info("sections ingested", "stage", StageIngestion, "sections", len(sections))

	extracted, err := ext.Extract(ctx, sections)
	if err != nil {
		return nil, fmt.Errorf("extraction stage: %w", err)
	}
	if err := r.applyExtracted(extracted); err != nil {
		return nil, fmt.Errorf("extraction stage: %w", err)
	}
	r.recordStage(StageExtraction)
	r.logger.Info("entities extracted",
		"stage", StageExtraction,
		"objectives", len(extracted.Objectives),
		"task_groups", len(extracted.TaskGroups),
		"kpis", len(extracted.KPIs))

	if err := r.alignPairs(ctx, aligner, extracted); err != nil {
		return nil, fmt.Errorf("alignment stage: %w", err)
	}
	r.recordStage(StageAlignment)

	if bench != nil {
		result, err := bench.Benchmark(ctx, r.store.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("benchmarking stage: %w", err)
		}
		if err := r.applyBenchmark(result); err != nil {
			return nil, fmt.Errorf("benchmarking stage: %w", err)
		}
		r.recordStage(StageBenchmarking)
	}

	if err := gap.NewAnalyzer(r.store).WriteDerived(); err != nil {
		return nil, fmt.Errorf("scoring stage: %w", err)
	}
	report := scoring.NewEngine(r.store).Compute()
	r.recordStage(StageScoring)
	r.logger.Info("metrics computed", "stage", StageScoring, "overall", report.Overall)

	if err := r.publisher.PublishScores(ctx, report); err != nil {
		r.logger.Warn("score publish failed", "error", err)
	}
	if rec, ok := r.state.Latest(); ok {
		if err := r.publisher.PublishValidation(ctx, rec.Validation); err != nil {
			r.logger.Warn("validation publish failed", "error", err)
		}
	}
	return report, nil
}

// recordStage snapshots the store, validates the snapshot, and logs
// any violations. Validation failures do not halt the run.
func (r *Runner) recordStage(stage string) {
	snap := r.store.Snapshot()
	report := r.validator.Validate(snap)
	r.state.Record(stage, snap, report)
	if !report.Valid() {
		r.logger.Warn("stage snapshot has violations",
			"stage", stage, "violations", len(report.Violations))
	}
}

func (r *Runner) applyExtracted(e *Extracted) error {
	for _, o := range e.Objectives {
		props := map[graph.Resource]graph.Object{
			align.PredicateImportance: graph.Lit(graph.Category(string(o.Importance))),
		}
		if o.Label != "" {
			props[align.PredicateLabel] = graph.Lit(graph.String(o.Label))
		}
		if o.Perspective != "" {
			props[align.PredicatePerspective] = graph.Ref(o.Perspective)
		}
		if err := r.store.AddEntity(o.ID, align.TypeObjective, props); err != nil {
			return err
		}
	}
	for _, g := range e.TaskGroups {
		props := map[graph.Resource]graph.Object{
			align.PredicateAllocation: graph.Lit(graph.Category(string(g.Allocation))),
		}
		if g.Label != "" {
			props[align.PredicateLabel] = graph.Lit(graph.String(g.Label))
		}
		if err := r.store.AddEntity(g.ID, align.TypeTaskGroup, props); err != nil {
			return err
		}
		for _, t := range g.Tasks {
			taskProps := map[graph.Resource]graph.Object{}
			if t.Label != "" {
				taskProps[align.PredicateLabel] = graph.Lit(graph.String(t.Label))
			}
			if err := r.store.AddEntity(t.ID, align.TypeTask, taskProps); err != nil {
				return err
			}
			if err := r.store.AddRelationship(g.ID, align.PredicateHasTask, t.ID); err != nil {
				return err
			}
			if t.Owner != "" {
				if err := r.ensureOwner(t.Owner); err != nil {
					return err
				}
				if err := r.store.AddRelationship(t.ID, align.PredicateOwnedBy, t.Owner); err != nil {
					return err
				}
			}
		}
	}
	for _, k := range e.KPIs {
		props := map[graph.Resource]graph.Object{
			align.PredicateHasBaseline:  graph.Lit(graph.Bool(k.HasBaseline)),
			align.PredicateIsMeasurable: graph.Lit(graph.Bool(k.IsMeasurable)),
		}
		if k.Label != "" {
			props[align.PredicateLabel] = graph.Lit(graph.String(k.Label))
		}
		if err := r.store.AddEntity(k.ID, align.TypeKPI, props); err != nil {
			return err
		}
		if k.Objective != "" {
			if err := r.store.AddRelationship(k.Objective, align.PredicateHasKPI, k.ID); err != nil {
				return err
			}
		}
		if k.Owner != "" {
			if err := r.ensureOwner(k.Owner); err != nil {
				return err
			}
			if err := r.store.AddRelationship(k.ID, align.PredicateOwnedBy, k.Owner); err != nil {
				return err
			}
		}
	}
	return nil
}

// ensureOwner registers an owner resource on first reference. Owners
// arrive as bare identifiers from extraction, not as typed records.
func (r *Runner) ensureOwner(id graph.Resource) error {
	if _, ok := r.store.EntityType(id); ok {
		return nil
	}
	return r.store.AddEntity(id, align.TypeOwner, map[graph.Resource]graph.Object{})
}

// alignPairs dispatches one Classify call per objective-task-group
// pair across the bounded worker pool. Disjoint pairs write
// concurrently; the store's locking keeps each write atomic.
func (r *Runner) alignPairs(ctx context.Context, aligner Alignment, e *Extracted) error {
	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

	for _, o := range e.Objectives {
		for _, g := range e.TaskGroups {
			wg.Add(1)
			go func(o ObjectiveRecord, g TaskGroupRecord) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				if ctx.Err() != nil {
					return
				}

				c, err := aligner.Classify(ctx, o, g)
				if err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("classify %s/%s: %w", o.ID, g.ID, err))
					mu.Unlock()
					return
				}
				if err := r.writeEdge(o.ID, g.ID, c); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}(o, g)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func (r *Runner) writeEdge(objective, group graph.Resource, c Classification) error {
	props := map[graph.Resource]graph.Object{
		align.PredicateAlignsObjective: graph.Ref(objective),
		align.PredicateAlignsTaskGroup: graph.Ref(group),
		align.PredicateRelevance:       graph.Lit(graph.Category(string(c.Relevance))),
		align.PredicateContribution:    graph.Lit(graph.Category(string(c.Contribution))),
	}
	if c.Risk != "" {
		props[align.PredicateRiskExposure] = graph.Lit(graph.Category(string(c.Risk)))
	}
	return r.store.AddEntity(graph.Resource("EDGE_"+uuid.New().String()), align.TypeAlignmentEdge, props)
}

func (r *Runner) applyBenchmark(b *Benchmark) error {
	for _, m := range b.Mappings {
		if err := r.store.AddRelationship(m.Objective, align.PredicateMapsToGoal, m.Reference); err != nil {
			return err
		}
		if m.Strength != "" {
			if err := r.extendObjective(m.Objective, map[graph.Resource]graph.Object{
				align.PredicateCausalStrength: graph.Lit(graph.Category(string(m.Strength))),
			}); err != nil {
				return err
			}
		}
	}
	for _, s := range b.Suggestions {
		props := map[graph.Resource]graph.Object{
			align.PredicateSuggestsFor: graph.Ref(s.Reference),
		}
		if s.Description != "" {
			props[align.PredicateDescription] = graph.Lit(graph.String(s.Description))
		}
		if err := r.store.AddEntity(s.ID, align.TypeGoalSuggestion, props); err != nil {
			return err
		}
	}
	return nil
}

// extendObjective re-adds an objective with extra properties, carrying
// its required importance value through validation.
func (r *Runner) extendObjective(id graph.Resource, props map[graph.Resource]graph.Object) error {
	if imp, ok := r.store.GetOne(id, align.PredicateImportance); ok {
		props[align.PredicateImportance] = imp
	}
	return r.store.AddEntity(id, align.TypeObjective, props)
}
