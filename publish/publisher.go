// Package publish streams graph entities, metric reports, and
// validation outcomes over NATS for downstream dashboards. A nil
// publisher or one without a connection degrades gracefully: every
// publish becomes a no-op, so pipeline stages never fail because
// messaging is down.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/stratalign/stratalign/graph"
	"github.com/stratalign/stratalign/scoring"
	"github.com/stratalign/stratalign/validation"
)

// DefaultSubjectPrefix is the subject root for all published messages.
const DefaultSubjectPrefix = "stratalign.graph"

// EntityMessage is the wire format for one published entity.
type EntityMessage struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Triples   []TripleRecord `json:"triples"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TripleRecord is one exported triple. Literal marks whether Object is
// a literal value rather than a resource identifier.
type TripleRecord struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
	Literal   bool   `json:"literal,omitempty"`
}

// Publisher publishes to NATS under a subject prefix.
type Publisher struct {
	nc     *nats.Conn
	prefix string
}

// NewPublisher wraps an existing connection. A nil connection yields a
// publisher whose publishes are no-ops.
func NewPublisher(nc *nats.Conn, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &Publisher{nc: nc, prefix: prefix}
}

// Connect dials NATS and returns a publisher over the connection.
func Connect(url, prefix string) (*Publisher, error) {
	nc, err := nats.Connect(url, nats.Name("stratalign"))
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	return NewPublisher(nc, prefix), nil
}

// Close drains the underlying connection.
func (p *Publisher) Close() error {
	if p == nil || p.nc == nil {
		return nil
	}
	return p.nc.Drain()
}

// PublishEntity publishes one snapshot entity and its triples.
func (p *Publisher) PublishEntity(ctx context.Context, snap *graph.Snapshot, id graph.Resource) error {
	if p == nil || p.nc == nil {
		return nil
	}
	typ, ok := snap.EntityType(id)
	if !ok {
		return fmt.Errorf("publish entity: unknown resource %s", id)
	}

	msg := EntityMessage{
		ID:        string(id),
		Type:      string(typ),
		UpdatedAt: snap.TakenAt,
	}
	for pred, objs := range snap.Properties(id) {
		for _, obj := range objs {
			msg.Triples = append(msg.Triples, TripleRecord{
				Subject:   string(id),
				Predicate: string(pred),
				Object:    obj.String(),
				Literal:   !obj.IsResource(),
			})
		}
	}
	return p.publish(ctx, p.prefix+".entity", msg)
}

// PublishSnapshot publishes every entity in a snapshot.
func (p *Publisher) PublishSnapshot(ctx context.Context, snap *graph.Snapshot) error {
	if p == nil || p.nc == nil {
		return nil
	}
	for _, id := range snap.EntityIDs() {
		if err := p.PublishEntity(ctx, snap, id); err != nil {
			return err
		}
	}
	return nil
}

// PublishScores publishes a metric report.
func (p *Publisher) PublishScores(ctx context.Context, report *scoring.Report) error {
	if p == nil || p.nc == nil {
		return nil
	}
	return p.publish(ctx, p.prefix+".scores", report)
}

// PublishValidation publishes a validation report.
func (p *Publisher) PublishValidation(ctx context.Context, report *validation.Report) error {
	if p == nil || p.nc == nil {
		return nil
	}
	return p.publish(ctx, p.prefix+".validation", report)
}

func (p *Publisher) publish(ctx context.Context, subject string, v any) error {
	if p == nil || p.nc == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", subject, err)
	}
	if err := p.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return p.nc.FlushWithContext(ctx)
}
