// Package export flattens a graph snapshot into a generic node/edge
// list for visualization and reporting.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/stratalign/stratalign/graph"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatJSON produces a JSON node/edge document.
	FormatJSON Format = "json"

	// FormatDOT produces a Graphviz digraph.
	FormatDOT Format = "dot"
)

// ParseFormat resolves a format name, case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatDOT:
		return FormatDOT, nil
	default:
		return "", fmt.Errorf("unknown export format %q", name)
	}
}

// Node is one exported entity with its literal properties.
type Node struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Edge is one exported resource-valued triple.
type Edge struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Predicate string `json:"predicate"`
}

// Graph is the flattened node/edge view of a snapshot.
type Graph struct {
	SnapshotID string `json:"snapshot_id"`
	Nodes      []Node `json:"nodes"`
	Edges      []Edge `json:"edges"`
}

// FromSnapshot flattens a snapshot. Nodes carry literal properties
// only; every resource-valued property becomes an edge. Output order
// is deterministic.
func FromSnapshot(snap *graph.Snapshot) *Graph {
	g := &Graph{SnapshotID: snap.ID}

	for _, id := range snap.EntityIDs() {
		typ, _ := snap.EntityType(id)
		node := Node{ID: string(id), Type: string(typ)}
		for pred, objs := range snap.Properties(id) {
			for _, obj := range objs {
				if obj.IsResource() {
					g.Edges = append(g.Edges, Edge{
						Source:    string(id),
						Target:    string(obj.Resource),
						Predicate: string(pred),
					})
					continue
				}
				if node.Properties == nil {
					node.Properties = make(map[string]string)
				}
				// Multi-valued predicates join their values; snapshot
				// property order is deterministic.
				if prev, ok := node.Properties[string(pred)]; ok {
					node.Properties[string(pred)] = prev + ", " + obj.Literal.Value
				} else {
					node.Properties[string(pred)] = obj.Literal.Value
				}
			}
		}
		g.Nodes = append(g.Nodes, node)
	}

	sort.Slice(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Predicate != b.Predicate {
			return a.Predicate < b.Predicate
		}
		return a.Target < b.Target
	})
	return g
}

// Render serializes the graph in the requested format.
func (g *Graph) Render(format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(g, "", "  ")
	case FormatDOT:
		return g.renderDOT(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

func (g *Graph) renderDOT() []byte {
	var buf bytes.Buffer
	buf.WriteString("digraph plan {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box];\n")
	for _, n := range g.Nodes {
		label := n.ID
		if l, ok := n.Properties["label"]; ok {
			label = l
		}
		fmt.Fprintf(&buf, "  %s [label=%s, class=%s];\n", dotQuote(n.ID), dotQuote(label), dotQuote(n.Type))
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %s -> %s [label=%s];\n", dotQuote(e.Source), dotQuote(e.Target), dotQuote(e.Predicate))
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}

func dotQuote(s string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s) + `"`
}
