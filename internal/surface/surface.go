// Package surface models the editor's drawing surface: the node/edge dataset
// the browser renders and the pointer events it feeds back.
package surface

import "coregraph/internal/domain"

// Node is one visual node record.
type Node struct {
	ID    int     `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
	Shape string  `json:"shape"`
	Image string  `json:"image"`

	// Entity points back at the session model record.
	Entity *domain.Node `json:"-"`
}

// Edge is one visual edge record. Core carries the link registry key once the
// edge is backed by a registered link. Recreated marks edges replayed from a
// joined session so the interactive edge handler leaves them alone.
type Edge struct {
	ID           string            `json:"id"`
	From         int               `json:"from"`
	To           int               `json:"to"`
	Core         domain.LinkKey    `json:"core,omitempty"`
	Label        string            `json:"label,omitempty"`
	Title        string            `json:"title,omitempty"`
	NodeOne      string            `json:"nodeOne,omitempty"`
	InterfaceOne *domain.Interface `json:"interfaceOne,omitempty"`
	NodeTwo      string            `json:"nodeTwo,omitempty"`
	InterfaceTwo *domain.Interface `json:"interfaceTwo,omitempty"`
	Recreated    bool              `json:"recreated,omitempty"`
}

// Surface is the drawing surface the session writes to. Implementations must
// be safe for use from multiple goroutines.
type Surface interface {
	AddNode(n Node)
	UpdateNode(n Node)
	AddEdge(e Edge)
	UpdateEdge(e Edge)
	RemoveEdge(id string)
	// SetEdgeMode arms or disarms interactive edge drawing. Returning from
	// this call is the mode-ready signal: the surface is ready for the next
	// drawn edge once it returns.
	SetEdgeMode(enabled bool)
	Reset()
}
