// Package nodetype maps the emulation daemon's numeric node-type codes to
// display metadata and classifies which types are network infrastructure.
package nodetype

import "fmt"

// Type is the daemon's wire code for a node type.
type Type int

const (
	// Default covers addressable hosts and routers; the concrete flavor is
	// selected by Model.
	Default    Type = 0
	Switch     Type = 4
	Hub        Type = 5
	WLAN       Type = 6
	PeerToPeer Type = 12
)

// Model is the sub-type of a Default node. It has no meaning for any other
// type and must be empty there.
type Model string

const (
	ModelRouter Model = "router"
	ModelHost   Model = "host"
	ModelPC     Model = "PC"
	ModelMDR    Model = "mdr"
)

// Display is the human-facing metadata for a node type.
type Display struct {
	Name  string
	Label string
}

var displays = map[Type]Display{
	Default:    {Name: "router", Label: "Router"},
	Switch:     {Name: "switch", Label: "Switch"},
	Hub:        {Name: "hub", Label: "Hub"},
	WLAN:       {Name: "wlan", Label: "WLAN"},
	PeerToPeer: {Name: "ptp", Label: "PtP"},
}

// IsNetworkNode reports whether t is network infrastructure. Infrastructure
// nodes are the ones queried for links when rebuilding a joined session.
func IsNetworkNode(t Type) bool {
	switch t {
	case Switch, Hub, WLAN, PeerToPeer:
		return true
	default:
		return false
	}
}

// DisplayFor looks up display metadata for a type code. An unknown code means
// the client and daemon disagree about the type table; callers must treat the
// error as fatal rather than substitute a default.
func DisplayFor(t Type) (Display, error) {
	d, ok := displays[t]
	if !ok {
		return Display{}, fmt.Errorf("unknown node type code %d", int(t))
	}
	return d, nil
}

// Icon returns the asset path for a node. Default-type nodes dispatch on
// model, everything else on the type itself. The two-level dispatch is
// intentional: model only exists for the default type.
func Icon(t Type, m Model) (string, error) {
	if t == Default {
		switch m {
		case ModelHost:
			return "icons/host.svg", nil
		case ModelPC:
			return "icons/pc.svg", nil
		case ModelMDR:
			return "icons/mdr.svg", nil
		case ModelRouter, "":
			return "icons/router.svg", nil
		default:
			return "", fmt.Errorf("unknown node model %q", m)
		}
	}

	switch t {
	case Switch:
		return "icons/switch.svg", nil
	case Hub:
		return "icons/hub.svg", nil
	case WLAN:
		return "icons/wlan.svg", nil
	case PeerToPeer:
		return "icons/ptp.svg", nil
	default:
		return "", fmt.Errorf("no icon for node type code %d", int(t))
	}
}
