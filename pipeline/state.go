package pipeline

import (
	"fmt"
	"sync"
	"time"

	"github.com/stratalign/stratalign/graph"
	"github.com/stratalign/stratalign/validation"
)

// Stage labels for the standard run order.
const (
	StageIngestion    = "ingestion"
	StageExtraction   = "extraction"
	StageAlignment    = "alignment"
	StageBenchmarking = "benchmarking"
	StageScoring      = "scoring"
)

// StageRecord is one labeled stage boundary: the snapshot taken there
// and its validation report.
type StageRecord struct {
	Stage      string
	RecordedAt time.Time
	Snapshot   *graph.Snapshot
	Validation *validation.Report
}

// State accumulates the stage records of one pipeline run. Stages are
// inspected between layers through their snapshots, never through
// shared mutable graph state.
type State struct {
	mu      sync.Mutex
	records []StageRecord
}

// NewState constructs an empty run state.
func NewState() *State { return &State{} }

// Record appends a stage boundary.
func (s *State) Record(stage string, snap *graph.Snapshot, report *validation.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, StageRecord{
		Stage:      stage,
		RecordedAt: time.Now().UTC(),
		Snapshot:   snap,
		Validation: report,
	})
}

// Stages returns the recorded stage boundaries in run order.
func (s *State) Stages() []StageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StageRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Latest returns the most recent stage record.
func (s *State) Latest() (StageRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return StageRecord{}, false
	}
	return s.records[len(s.records)-1], true
}

// Delta summarizes how the graph changed between two stage boundaries.
type Delta struct {
	From string `json:"from"`
	To   string `json:"to"`

	TriplesAdded   int `json:"triples_added"`
	TriplesRemoved int `json:"triples_removed"`

	NodeDelta    map[graph.Resource]int `json:"node_delta,omitempty"`
	DensityDelta float64                `json:"density_delta"`
}

// Diff compares the snapshots of two recorded stages by triple-set
// difference. Both stages must have been recorded; the later of two
// records with the same label wins.
func (s *State) Diff(from, to string) (*Delta, error) {
	a, ok := s.find(from)
	if !ok {
		return nil, fmt.Errorf("stage %q not recorded", from)
	}
	b, ok := s.find(to)
	if !ok {
		return nil, fmt.Errorf("stage %q not recorded", to)
	}

	aKeys, bKeys := a.Snapshot.Keys(), b.Snapshot.Keys()
	d := &Delta{
		From:         from,
		To:           to,
		NodeDelta:    make(map[graph.Resource]int),
		DensityDelta: b.Snapshot.Stats.Density - a.Snapshot.Stats.Density,
	}
	for k := range bKeys {
		if !aKeys[k] {
			d.TriplesAdded++
		}
	}
	for k := range aKeys {
		if !bKeys[k] {
			d.TriplesRemoved++
		}
	}
	for typ, n := range b.Snapshot.Stats.NodesByType {
		d.NodeDelta[typ] = n - a.Snapshot.Stats.NodesByType[typ]
	}
	for typ, n := range a.Snapshot.Stats.NodesByType {
		if _, ok := b.Snapshot.Stats.NodesByType[typ]; !ok {
			d.NodeDelta[typ] = -n
		}
	}
	for typ, n := range d.NodeDelta {
		if n == 0 {
			delete(d.NodeDelta, typ)
		}
	}
	return d, nil
}

func (s *State) find(stage string) (StageRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Stage == stage {
			return s.records[i], true
		}
	}
	return StageRecord{}, false
}
