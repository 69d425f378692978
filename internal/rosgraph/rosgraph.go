// Package rosgraph derives the directed communication graph from a
// canonical model: one vertex per node, one per topic with at least one
// relationship, and one edge per publish or subscribe link. Services are
// not rendered; they only appear in the narrative report.
package rosgraph

import (
	"fmt"

	"github.com/nveloso/roscope/internal/model"
)

// Vertex types rendered in the graph.
const (
	VertexNode  = "node"
	VertexTopic = "topic"
)

// Vertex is one renderable graph vertex.
type Vertex struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Type  string `json:"type"`
}

// Edge is one directed publish (node → topic) or subscribe (topic → node)
// link, labeled with the message type when known.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// Graph is the presentation-ready communication graph.
type Graph struct {
	Nodes []Vertex `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// Build derives the graph from the canonical model. Topics with zero
// publishers and zero subscribers are omitted entirely; they still count in
// the metrics, just not here. Output order follows the model (nodes in
// discovery order, topics in name order), so identical models build
// identical graphs.
func Build(m *model.CanonicalModel) *Graph {
	g := &Graph{Nodes: []Vertex{}, Edges: []Edge{}}

	for _, n := range m.Nodes {
		g.Nodes = append(g.Nodes, Vertex{ID: n.ID, Label: n.DisplayName, Type: VertexNode})
	}

	topicVertex := 0
	for _, t := range m.Topics {
		if len(t.Publishers) == 0 && len(t.Subscribers) == 0 {
			continue
		}
		tid := fmt.Sprintf("topic_%d", topicVertex)
		topicVertex++
		g.Nodes = append(g.Nodes, Vertex{ID: tid, Label: t.ID, Type: VertexTopic})

		for _, pub := range t.Publishers {
			g.Edges = append(g.Edges, Edge{
				ID:     fmt.Sprintf("pub_%s_%s", pub, tid),
				Source: pub,
				Target: tid,
				Label:  t.MessageType,
			})
		}
		for _, sub := range t.Subscribers {
			g.Edges = append(g.Edges, Edge{
				ID:     fmt.Sprintf("sub_%s_%s", tid, sub),
				Source: tid,
				Target: sub,
				Label:  t.MessageType,
			})
		}
	}

	return g
}
