// Package client defines the contract against the emulation daemon's session
// API and a JSON-over-HTTP implementation of it.
package client

import (
	"context"
	"fmt"
)

// SessionState is one of the daemon's session lifecycle states.
type SessionState int

const (
	StateDefinition SessionState = iota + 1
	StateConfiguration
	StateInstantiation
	StateRuntime
	StateDataCollect
	StateShutdown
)

// String returns the daemon's name for the state.
func (s SessionState) String() string {
	switch s {
	case StateDefinition:
		return "definition"
	case StateConfiguration:
		return "configuration"
	case StateInstantiation:
		return "instantiation"
	case StateRuntime:
		return "runtime"
	case StateDataCollect:
		return "datacollect"
	case StateShutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// NodePayload is a node's public fields as the daemon sends and accepts them.
type NodePayload struct {
	ID    int     `json:"id"`
	Type  int     `json:"type"`
	Name  string  `json:"name"`
	Model string  `json:"model,omitempty"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Lat   float64 `json:"lat,omitempty"`
	Lon   float64 `json:"lon,omitempty"`
	Alt   float64 `json:"alt,omitempty"`

	Services []string `json:"services,omitempty"`
}

// LinkDescriptor is the daemon's wire shape for one link. Interface ids are
// pointers because "no interface on this end" is distinct from interface 0.
type LinkDescriptor struct {
	Node1ID           int    `json:"node1_id"`
	Node2ID           int    `json:"node2_id"`
	Interface1ID      *int   `json:"interface1_id"`
	Interface1IP4     string `json:"interface1_ip4,omitempty"`
	Interface1IP4Mask int    `json:"interface1_ip4_mask,omitempty"`
	Interface1IP6     string `json:"interface1_ip6,omitempty"`
	Interface1IP6Mask int    `json:"interface1_ip6_mask,omitempty"`
	Interface2ID      *int   `json:"interface2_id"`
	Interface2IP4     string `json:"interface2_ip4,omitempty"`
	Interface2IP4Mask int    `json:"interface2_ip4_mask,omitempty"`
	Interface2IP6     string `json:"interface2_ip6,omitempty"`
	Interface2IP6Mask int    `json:"interface2_ip6_mask,omitempty"`
}

// NodeIPs is a fresh address pair allocated by the daemon for one interface.
type NodeIPs struct {
	IP4     string `json:"ip4"`
	IP4Mask int    `json:"ip4mask"`
	IP6     string `json:"ip6"`
	IP6Mask int    `json:"ip6mask"`
}

// SessionClient is the remote session API the topology session depends on.
// Every call may fail; the caller decides whether a failure is tolerable.
type SessionClient interface {
	// GetLinks lists the links attached to a node.
	GetLinks(ctx context.Context, nodeID int) ([]LinkDescriptor, error)
	// CreateNode pushes a node to the daemon. Links referencing the node
	// must not be created until this returns.
	CreateNode(ctx context.Context, node NodePayload) error
	// CreateLink pushes a link to the daemon.
	CreateLink(ctx context.Context, link LinkDescriptor) error
	// GetNodeIPs allocates an address pair for a node's next interface from
	// the given subnet templates.
	GetNodeIPs(ctx context.Context, nodeID int, ip4Prefix, ip6Prefix string) (NodeIPs, error)
	// SetSessionState transitions the remote session.
	SetSessionState(ctx context.Context, state SessionState) error
}
