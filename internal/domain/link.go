package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSelfLoop is returned when both link endpoints are the same node.
	ErrSelfLoop = errors.New("link endpoints are the same node")
	// ErrDuplicateLink is returned when the unordered node pair is already
	// registered.
	ErrDuplicateLink = errors.New("link already registered for node pair")
)

// LinkKey identifies the unordered pair of nodes a link connects. The key is
// the same whichever endpoint was discovered first.
type LinkKey string

// KeyFor canonicalizes a node pair into a LinkKey.
func KeyFor(a, b int) LinkKey {
	if a > b {
		a, b = b, a
	}
	return LinkKey(fmt.Sprintf("%d-%d", a, b))
}

// Link is the emulation-model record for one connection. NodeOne/NodeTwo
// preserve discovery order, not numeric order. Interface slots are nil for
// unaddressed ends (e.g. switch-to-switch links carry no addressing).
type Link struct {
	NodeOne      int
	NodeTwo      int
	InterfaceOne *Interface
	InterfaceTwo *Interface
}

// Key returns the canonical registry key for this link.
func (l *Link) Key() LinkKey {
	return KeyFor(l.NodeOne, l.NodeTwo)
}

// LinkRegistry is the authoritative link map, kept separate from the visual
// edge dataset so duplicate or visual-only edges never reach the emulation
// model. At most one entry exists per unordered node pair.
type LinkRegistry struct {
	links map[LinkKey]*Link
	order []LinkKey
}

// NewLinkRegistry creates an empty registry.
func NewLinkRegistry() *LinkRegistry {
	return &LinkRegistry{links: make(map[LinkKey]*Link)}
}

// Register admits a link. Self-loops are never admitted, and a second link
// for an already-registered pair is rejected.
func (r *LinkRegistry) Register(l *Link) error {
	if l.NodeOne == l.NodeTwo {
		return fmt.Errorf("register link %d-%d: %w", l.NodeOne, l.NodeTwo, ErrSelfLoop)
	}

	key := l.Key()
	if _, ok := r.links[key]; ok {
		return fmt.Errorf("register link %s: %w", key, ErrDuplicateLink)
	}

	r.links[key] = l
	r.order = append(r.order, key)
	return nil
}

// Get returns the link for a node pair, in either endpoint order.
func (r *LinkRegistry) Get(a, b int) (*Link, bool) {
	l, ok := r.links[KeyFor(a, b)]
	return l, ok
}

// Len returns the number of registered links.
func (r *LinkRegistry) Len() int {
	return len(r.order)
}

// All returns the links in registration order.
func (r *LinkRegistry) All() []*Link {
	out := make([]*Link, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.links[key])
	}
	return out
}

// Reset drops every link.
func (r *LinkRegistry) Reset() {
	r.links = make(map[LinkKey]*Link)
	r.order = nil
}
