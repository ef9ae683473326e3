// Package canvas holds the client-side workflow graph: the nodes and edges
// the user composes, the inspector selection state, and the two synchronized
// views onto a node's parameters. All mutation happens on the UI event
// goroutine; the graph is not safe for concurrent writers.
package canvas

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/openflow/studio/backend"
	"github.com/openflow/studio/catalog"
)

// Position is a node's location on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is the client-side form of a workflow node. Params is the single
// source of truth for its configuration; both the structured editors and the
// raw JSON panel write through Graph.SetParams.
type Node struct {
	ID       string
	Type     string
	Label    string
	Position Position
	Params   map[string]any
}

// Placement of newly added nodes: first node at the origin offset, then a
// fixed step per existing node so stacks never overlap.
const (
	baseX, baseY = 80.0, 80.0
	stepX, stepY = 160.0, 40.0
)

// Graph is the workflow being edited.
type Graph struct {
	snap   *catalog.Snapshot
	logger *zap.Logger

	nodes  []*Node
	edges  map[string][]string
	nextID int

	selected string
	view     ViewMode
}

// NewGraph creates an empty graph seeded by the bootstrap snapshot.
func NewGraph(snap *catalog.Snapshot, logger *zap.Logger) *Graph {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Graph{
		snap:   snap,
		logger: logger.With(zap.String("component", "canvas")),
		edges:  make(map[string][]string),
		view:   ViewExecution,
	}
}

// AddNode creates a node of the given type, seeds its params from the
// snapshot's default template, places it offset from the previous node, and
// selects it. Ids are unique for the session even after removals.
func (g *Graph) AddNode(nodeType string) *Node {
	g.nextID++
	node := &Node{
		ID:    fmt.Sprintf("node-%d", g.nextID),
		Type:  nodeType,
		Label: g.snap.Describe(nodeType),
		Position: Position{
			X: baseX + float64(len(g.nodes))*stepX,
			Y: baseY + float64(len(g.nodes))*stepY,
		},
		Params: g.snap.DefaultParams(nodeType),
	}
	if node.Label == "" {
		node.Label = nodeType
	}
	g.nodes = append(g.nodes, node)

	g.selected = node.ID
	g.view = NextView(g.view, EventAddNode, g.snap.IsAgentType(nodeType))
	g.logger.Debug("node added", zap.String("id", node.ID), zap.String("type", nodeType))
	return node
}

// Connect appends a directed edge source → target. Duplicate edges are legal.
// Wiring into an agent node pulls selection and the inspector onto it, so the
// user lands on the chain they just connected.
func (g *Graph) Connect(sourceID, targetID string) {
	g.edges[sourceID] = append(g.edges[sourceID], targetID)

	target := g.node(targetID)
	if target != nil && g.snap.IsAgentType(target.Type) {
		g.selected = targetID
		g.view = NextView(g.view, EventConnectTarget, true)
	}
}

// Select makes id the inspected node and switches the view mode for its type.
// Unknown ids are ignored.
func (g *Graph) Select(id string) {
	node := g.node(id)
	if node == nil {
		return
	}
	g.selected = id
	g.view = NextView(g.view, EventSelectNode, g.snap.IsAgentType(node.Type))
}

// SetParams fully replaces a node's parameter map. This is the single write
// entry point shared by the chain editor and the raw JSON panel.
func (g *Graph) SetParams(id string, params map[string]any) error {
	node := g.node(id)
	if node == nil {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	node.Params = params
	return nil
}

// RemoveNode deletes a node together with every edge that touches it.
func (g *Graph) RemoveNode(id string) error {
	idx := -1
	for i, n := range g.nodes {
		if n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	g.nodes = append(g.nodes[:idx], g.nodes[idx+1:]...)

	delete(g.edges, id)
	for source, targets := range g.edges {
		kept := targets[:0]
		for _, t := range targets {
			if t != id {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(g.edges, source)
		} else {
			g.edges[source] = kept
		}
	}

	if g.selected == id {
		g.selected = ""
		g.view = ViewExecution
	}
	return nil
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node { return g.node(id) }

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns a copy of the adjacency mapping.
func (g *Graph) Edges() map[string][]string {
	out := make(map[string][]string, len(g.edges))
	for source, targets := range g.edges {
		out[source] = append([]string(nil), targets...)
	}
	return out
}

// Selected returns the currently inspected node, or nil.
func (g *Graph) Selected() *Node { return g.node(g.selected) }

// SelectedID returns the currently inspected node id, or "".
func (g *Graph) SelectedID() string { return g.selected }

// View returns the current inspector view mode.
func (g *Graph) View() ViewMode { return g.view }

// Payload projects the graph into its wire form. Edge keys whose source node
// no longer exists are pruned; dangling *targets* are kept as-is and left to
// the backend's validation.
func (g *Graph) Payload(id, name string, active bool) *backend.Workflow {
	nodes := make([]backend.Node, 0, len(g.nodes))
	known := make(map[string]bool, len(g.nodes))
	for _, n := range g.nodes {
		known[n.ID] = true
		nodes = append(nodes, backend.Node{ID: n.ID, Type: n.Type, Params: n.Params})
	}

	edges := make(map[string][]string, len(g.edges))
	for source, targets := range g.edges {
		if !known[source] {
			continue
		}
		edges[source] = append([]string(nil), targets...)
	}

	return &backend.Workflow{
		ID:     id,
		Name:   name,
		Nodes:  nodes,
		Edges:  edges,
		Active: active,
	}
}

func (g *Graph) node(id string) *Node {
	for _, n := range g.nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
