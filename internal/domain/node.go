// Package domain holds the topology session model: nodes, interfaces, and
// the link registry the editor keeps in sync with a remote emulation session.
package domain

import (
	"net/netip"

	"coregraph/internal/nodetype"
)

// Position is a canvas coordinate pair.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Geo is an optional geographic location for a node.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
	Alt float64 `json:"alt"`
}

// Interface is a node's addressed attachment point to a link. Addresses are
// zero values when the daemon assigned none.
type Interface struct {
	ID      int        `json:"id"`
	IP4     netip.Addr `json:"ip4"`
	IP4Mask int        `json:"ip4_mask"`
	IP6     netip.Addr `json:"ip6"`
	IP6Mask int        `json:"ip6_mask"`
}

// Node is one topology participant. Type is immutable after creation; Model
// is only meaningful for the default type. Interfaces are append-only: the
// client model never removes an interface, so indices are never reused.
type Node struct {
	ID         int
	Type       nodetype.Type
	Model      nodetype.Model
	Name       string
	Position   Position
	Geo        *Geo
	Services   []string
	Interfaces map[int]Interface
}

// NewNode creates a node with an initialized interface map.
func NewNode(id int, t nodetype.Type, model nodetype.Model, name string, pos Position) *Node {
	return &Node{
		ID:         id,
		Type:       t,
		Model:      model,
		Name:       name,
		Position:   pos,
		Interfaces: make(map[int]Interface),
	}
}

// NextInterfaceID returns the index for the next interface allocation. It is
// recomputed from the current interface count on every call rather than
// tracked separately, so it stays correct however interfaces arrived.
func (n *Node) NextInterfaceID() int {
	return len(n.Interfaces)
}

// AttachInterface stores ifc keyed by its own id. Replayed sessions carry
// server-assigned ids, which need not match local allocation order.
func (n *Node) AttachInterface(ifc Interface) {
	if n.Interfaces == nil {
		n.Interfaces = make(map[int]Interface)
	}
	n.Interfaces[ifc.ID] = ifc
}

// NodeSet is the session's node collection. Iteration order is insertion
// order so a session push replays nodes deterministically.
type NodeSet struct {
	byID  map[int]*Node
	order []int
}

// NewNodeSet creates an empty node collection.
func NewNodeSet() *NodeSet {
	return &NodeSet{byID: make(map[int]*Node)}
}

// Add inserts a node, replacing any previous node with the same id.
func (s *NodeSet) Add(n *Node) {
	if _, ok := s.byID[n.ID]; !ok {
		s.order = append(s.order, n.ID)
	}
	s.byID[n.ID] = n
}

// Get returns the node with the given id.
func (s *NodeSet) Get(id int) (*Node, bool) {
	n, ok := s.byID[id]
	return n, ok
}

// Len returns the number of nodes.
func (s *NodeSet) Len() int {
	return len(s.order)
}

// All returns the nodes in insertion order.
func (s *NodeSet) All() []*Node {
	out := make([]*Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Reset drops every node.
func (s *NodeSet) Reset() {
	s.byID = make(map[int]*Node)
	s.order = nil
}
