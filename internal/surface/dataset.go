package surface

import (
	"sync"

	"github.com/google/uuid"
)

// MutationType identifies a dataset change.
type MutationType string

const (
	MutationNodeAdded   MutationType = "node_added"
	MutationNodeUpdated MutationType = "node_updated"
	MutationEdgeAdded   MutationType = "edge_added"
	MutationEdgeUpdated MutationType = "edge_updated"
	MutationEdgeRemoved MutationType = "edge_removed"
	MutationReset       MutationType = "reset"
	MutationEdgeMode    MutationType = "edge_mode"
)

// Mutation is one dataset change, broadcast to connected editors.
type Mutation struct {
	Type     MutationType `json:"type"`
	Node     *Node        `json:"node,omitempty"`
	Edge     *Edge        `json:"edge,omitempty"`
	EdgeID   string       `json:"edge_id,omitempty"`
	EdgeMode *bool        `json:"edge_mode,omitempty"`
}

// Dataset is the in-memory Surface implementation backing the browser view.
// It mirrors a vis-network DataSet: mutations apply immediately and are
// published to subscribers.
type Dataset struct {
	mu          sync.RWMutex
	nodes       map[int]Node
	nodeOrder   []int
	edges       map[string]Edge
	edgeOrder   []string
	edgeMode    bool
	subscribers []chan<- Mutation
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		nodes: make(map[int]Node),
		edges: make(map[string]Edge),
	}
}

// Subscribe adds a subscriber for dataset mutations. Slow subscribers are
// skipped, never blocked on.
func (d *Dataset) Subscribe(ch chan<- Mutation) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.subscribers = append(d.subscribers, ch)
}

func (d *Dataset) publish(m Mutation) {
	for _, ch := range d.subscribers {
		select {
		case ch <- m:
		default:
		}
	}
}

// AddNode inserts a visual node.
func (d *Dataset) AddNode(n Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.nodes[n.ID]; !ok {
		d.nodeOrder = append(d.nodeOrder, n.ID)
	}
	d.nodes[n.ID] = n
	d.publish(Mutation{Type: MutationNodeAdded, Node: &n})
}

// UpdateNode replaces a visual node record.
func (d *Dataset) UpdateNode(n Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.nodes[n.ID]; !ok {
		d.nodeOrder = append(d.nodeOrder, n.ID)
	}
	d.nodes[n.ID] = n
	d.publish(Mutation{Type: MutationNodeUpdated, Node: &n})
}

// AddEdge inserts a visual edge, assigning an id if the record has none.
func (d *Dataset) AddEdge(e Edge) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, ok := d.edges[e.ID]; !ok {
		d.edgeOrder = append(d.edgeOrder, e.ID)
	}
	d.edges[e.ID] = e
	d.publish(Mutation{Type: MutationEdgeAdded, Edge: &e})
}

// UpdateEdge replaces a visual edge record.
func (d *Dataset) UpdateEdge(e Edge) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.edges[e.ID]; !ok {
		return
	}
	d.edges[e.ID] = e
	d.publish(Mutation{Type: MutationEdgeUpdated, Edge: &e})
}

// RemoveEdge drops a visual edge.
func (d *Dataset) RemoveEdge(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.edges[id]; !ok {
		return
	}
	delete(d.edges, id)
	for i, eid := range d.edgeOrder {
		if eid == id {
			d.edgeOrder = append(d.edgeOrder[:i], d.edgeOrder[i+1:]...)
			break
		}
	}
	d.publish(Mutation{Type: MutationEdgeRemoved, EdgeID: id})
}

// SetEdgeMode arms or disarms edge drawing. The dataset applies the mode
// synchronously, so callers may treat the return as the mode-ready signal.
func (d *Dataset) SetEdgeMode(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.edgeMode = enabled
	d.publish(Mutation{Type: MutationEdgeMode, EdgeMode: &enabled})
}

// EdgeMode reports whether edge drawing is armed.
func (d *Dataset) EdgeMode() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.edgeMode
}

// Reset drops every node and edge.
func (d *Dataset) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nodes = make(map[int]Node)
	d.nodeOrder = nil
	d.edges = make(map[string]Edge)
	d.edgeOrder = nil
	d.publish(Mutation{Type: MutationReset})
}

// Nodes returns the visual nodes in insertion order.
func (d *Dataset) Nodes() []Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Node, 0, len(d.nodeOrder))
	for _, id := range d.nodeOrder {
		out = append(out, d.nodes[id])
	}
	return out
}

// Edges returns the visual edges in insertion order.
func (d *Dataset) Edges() []Edge {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]Edge, 0, len(d.edgeOrder))
	for _, id := range d.edgeOrder {
		out = append(out, d.edges[id])
	}
	return out
}

// Edge returns one edge by id.
func (d *Dataset) Edge(id string) (Edge, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	e, ok := d.edges[id]
	return e, ok
}
