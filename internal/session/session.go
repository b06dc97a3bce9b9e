// Package session implements the topology session: the local node and link
// model the editor keeps consistent with a remote emulation session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/netip"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"coregraph/internal/client"
	"coregraph/internal/domain"
	"coregraph/internal/nodetype"
	"coregraph/internal/surface"
)

// linkQueryLimit bounds the concurrent GetLinks fan-out during a join.
const linkQueryLimit = 8

// Subnets are the templates handed to the daemon's address allocator.
type Subnets struct {
	IPv4 string
	IPv6 string
}

// DefaultSubnets returns the stock allocation templates.
func DefaultSubnets() Subnets {
	return Subnets{IPv4: "10.0.0.1/24", IPv6: "2001::/64"}
}

// Session owns the node collection and link registry for one emulation
// session and mediates between the drawing surface and the daemon.
//
// All model state sits behind one mutex: mutations are serialized through it
// so in-flight remote calls interleave without corrupting the registry, the
// same atomicity the original event-loop model gave between await points.
type Session struct {
	client  client.SessionClient
	surface surface.Surface
	subnets Subnets

	mu             sync.Mutex
	nodes          *domain.NodeSet
	links          *domain.LinkRegistry
	lastNodeID     int
	placementType  nodetype.Type
	placementModel nodetype.Model
	nodeCreation   bool
}

// New creates a session bound to one daemon client and one drawing surface.
func New(c client.SessionClient, surf surface.Surface, subnets Subnets) *Session {
	if subnets.IPv4 == "" {
		subnets.IPv4 = DefaultSubnets().IPv4
	}
	if subnets.IPv6 == "" {
		subnets.IPv6 = DefaultSubnets().IPv6
	}
	return &Session{
		client:         c,
		surface:        surf,
		subnets:        subnets,
		nodes:          domain.NewNodeSet(),
		links:          domain.NewLinkRegistry(),
		placementType:  nodetype.Default,
		placementModel: nodetype.ModelRouter,
	}
}

// EnableNodeCreation toggles interactive node placement.
func (s *Session) EnableNodeCreation(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodeCreation = enabled
}

// SetNodePlacement selects the type and model stamped on the next
// interactively created node. Unknown types are rejected outright.
func (s *Session) SetNodePlacement(t nodetype.Type, m nodetype.Model) error {
	if _, err := nodetype.DisplayFor(t); err != nil {
		return fmt.Errorf("set node placement: %w", err)
	}
	if t != nodetype.Default && m != "" {
		return fmt.Errorf("set node placement: model %q is only valid for the default type", m)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.placementType = t
	s.placementModel = m
	return nil
}

// SetLinkMode arms or disarms interactive edge drawing on the surface.
func (s *Session) SetLinkMode(enabled bool) {
	s.surface.SetEdgeMode(enabled)
}

// NodeCount returns the number of nodes in the local model.
func (s *Session) NodeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodes.Len()
}

// LinkCount returns the number of registered links.
func (s *Session) LinkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.links.Len()
}

// NextNodeID returns the id the next placed node would receive.
func (s *Session) NextNodeID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastNodeID + 1
}

// Node returns the model record for one node id.
func (s *Session) Node(id int) (*domain.Node, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodes.Get(id)
}

// Link returns the registered link for a node pair, in either order.
func (s *Session) Link(a, b int) (*domain.Link, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.links.Get(a, b)
}

// SetNodeServices replaces the service set assigned to one node. Services
// only take effect on the daemon at session start.
func (s *Session) SetNodeServices(id int, services []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes.Get(id)
	if !ok {
		return fmt.Errorf("set services: unknown node %d", id)
	}
	n.Services = services
	return nil
}

// CoreNodes serializes every local node to its public fields, the shape the
// daemon accepts on session start.
func (s *Session) CoreNodes() []client.NodePayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	nodes := s.nodes.All()
	out := make([]client.NodePayload, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodePayload(n))
	}
	return out
}

// JoinSession reinitializes the local model from a server-supplied node list
// and rebuilds links by querying every infrastructure node. This is a full
// replace, not a merge, and the only restart path.
//
// Link queries run concurrently and are joined before return. A failed query
// is logged and contributes zero links; the join succeeds with whatever
// subset was retrievable. A link naming an unknown node id means the client
// and server disagree and fails the join.
func (s *Session) JoinSession(ctx context.Context, nodes []client.NodePayload) error {
	s.mu.Lock()
	s.nodes.Reset()
	s.links.Reset()
	s.surface.Reset()

	maxSeen := 0
	var networkIDs []int
	for _, p := range nodes {
		// Every id counts toward the counter, including skipped ptp
		// carriers, so later local ids cannot collide with server ids.
		if p.ID > maxSeen {
			maxSeen = p.ID
		}

		t := nodetype.Type(p.Type)
		if t == nodetype.PeerToPeer {
			// Ptp nodes exist on the server as link carriers, not as
			// visible graph nodes.
			continue
		}

		n := domain.NewNode(p.ID, t, nodetype.Model(p.Model), p.Name, domain.Position{X: p.X, Y: p.Y})
		if p.Lat != 0 || p.Lon != 0 || p.Alt != 0 {
			n.Geo = &domain.Geo{Lat: p.Lat, Lon: p.Lon, Alt: p.Alt}
		}
		n.Services = p.Services

		icon, err := nodetype.Icon(t, n.Model)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("join session: node %d: %w", p.ID, err)
		}

		s.nodes.Add(n)
		s.surface.AddNode(surface.Node{
			ID:     n.ID,
			X:      n.Position.X,
			Y:      n.Position.Y,
			Label:  n.Name,
			Shape:  "image",
			Image:  icon,
			Entity: n,
		})

		if nodetype.IsNetworkNode(t) {
			networkIDs = append(networkIDs, p.ID)
		}
	}
	s.lastNodeID = maxSeen
	s.mu.Unlock()

	var g errgroup.Group
	g.SetLimit(linkQueryLimit)
	for _, id := range networkIDs {
		g.Go(func() error {
			links, err := s.client.GetLinks(ctx, id)
			if err != nil {
				log.Printf("join session: get links for node %d: %v", id, err)
				return nil
			}
			for _, desc := range links {
				if err := s.createEdgeFromLink(desc); err != nil {
					return fmt.Errorf("join session: node %d: %w", id, err)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// createEdgeFromLink folds one remote link descriptor into the registry and
// the surface. Both endpoints of an infrastructure link report it, so an
// already-registered pair is skipped, not an error.
func (s *Session) createEdgeFromLink(desc client.LinkDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	one, ok := s.nodes.Get(desc.Node1ID)
	if !ok {
		return fmt.Errorf("link references unknown node %d", desc.Node1ID)
	}
	two, ok := s.nodes.Get(desc.Node2ID)
	if !ok {
		return fmt.Errorf("link references unknown node %d", desc.Node2ID)
	}

	if _, ok := s.links.Get(desc.Node1ID, desc.Node2ID); ok {
		return nil
	}

	link := &domain.Link{NodeOne: desc.Node1ID, NodeTwo: desc.Node2ID}
	if desc.Interface1ID != nil {
		ifc, err := wireInterface(*desc.Interface1ID, desc.Interface1IP4, desc.Interface1IP4Mask, desc.Interface1IP6, desc.Interface1IP6Mask)
		if err != nil {
			return fmt.Errorf("link %d-%d interface one: %w", desc.Node1ID, desc.Node2ID, err)
		}
		one.AttachInterface(ifc)
		link.InterfaceOne = &ifc
	}
	if desc.Interface2ID != nil {
		ifc, err := wireInterface(*desc.Interface2ID, desc.Interface2IP4, desc.Interface2IP4Mask, desc.Interface2IP6, desc.Interface2IP6Mask)
		if err != nil {
			return fmt.Errorf("link %d-%d interface two: %w", desc.Node1ID, desc.Node2ID, err)
		}
		two.AttachInterface(ifc)
		link.InterfaceTwo = &ifc
	}

	if err := s.links.Register(link); err != nil {
		return err
	}

	s.surface.AddEdge(surface.Edge{
		From:         link.NodeOne,
		To:           link.NodeTwo,
		Core:         link.Key(),
		Label:        linkLabel(link),
		Title:        linkTitle(one, two),
		NodeOne:      one.Name,
		InterfaceOne: link.InterfaceOne,
		NodeTwo:      two.Name,
		InterfaceTwo: link.InterfaceTwo,
		Recreated:    true,
	})
	return nil
}

// HandleDoubleClick places a node at the click position. It is a no-op when
// node creation is disabled or the click landed on an existing node
// (hitNodes > 0).
func (s *Session) HandleDoubleClick(x, y float64, hitNodes int) (*domain.Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.nodeCreation || hitNodes > 0 {
		return nil, nil
	}

	d, err := nodetype.DisplayFor(s.placementType)
	if err != nil {
		return nil, fmt.Errorf("add node: %w", err)
	}
	icon, err := nodetype.Icon(s.placementType, s.placementModel)
	if err != nil {
		return nil, fmt.Errorf("add node: %w", err)
	}

	s.lastNodeID++
	id := s.lastNodeID
	name := fmt.Sprintf("%s%d", d.Name, id)

	n := domain.NewNode(id, s.placementType, s.placementModel, name, domain.Position{X: x, Y: y})
	s.nodes.Add(n)
	s.surface.AddNode(surface.Node{
		ID:     id,
		X:      x,
		Y:      y,
		Label:  name,
		Shape:  "image",
		Image:  icon,
		Entity: n,
	})
	return n, nil
}

// HandleEdgeAdded reacts to an edge drawn on the surface. Replayed edges are
// already registered and ignored. Self-loops are removed and edge mode is
// re-armed once the removal has settled. Valid edges get addresses assigned
// and are registered; concurrent edge creations stay independent because
// each pair keys its own registry entry.
func (s *Session) HandleEdgeAdded(ctx context.Context, e surface.Edge) error {
	if e.Recreated {
		return nil
	}

	if e.From == e.To {
		s.surface.RemoveEdge(e.ID)
		// RemoveEdge completing is the surface's mode-ready signal, so
		// re-arming needs no settle delay.
		s.surface.SetEdgeMode(true)
		return nil
	}

	s.mu.Lock()
	from, ok := s.nodes.Get(e.From)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("add edge: unknown node %d", e.From)
	}
	to, ok := s.nodes.Get(e.To)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("add edge: unknown node %d", e.To)
	}
	_, dup := s.links.Get(e.From, e.To)
	s.mu.Unlock()

	if dup {
		log.Printf("add edge: pair %d-%d already linked, dropping drawn edge", e.From, e.To)
		s.surface.RemoveEdge(e.ID)
		s.surface.SetEdgeMode(true)
		return nil
	}

	// Address both endpoints independently; either may finish first, both
	// are awaited before the link is finalized.
	var ipsOne, ipsTwo *client.NodeIPs
	var g errgroup.Group
	g.Go(func() error {
		ipsOne = s.requestAddresses(ctx, from)
		return nil
	})
	g.Go(func() error {
		ipsTwo = s.requestAddresses(ctx, to)
		return nil
	})
	_ = g.Wait()

	s.mu.Lock()
	link := &domain.Link{NodeOne: from.ID, NodeTwo: to.ID}
	if err := s.links.Register(link); err != nil {
		s.mu.Unlock()
		if errors.Is(err, domain.ErrDuplicateLink) {
			log.Printf("add edge: %v, dropping drawn edge", err)
			s.surface.RemoveEdge(e.ID)
			s.surface.SetEdgeMode(true)
			return nil
		}
		return fmt.Errorf("add edge: %w", err)
	}
	// Interfaces attach only once the pair holds its registry slot, so a
	// creation that loses the duplicate race leaves no orphaned interface
	// behind. Index allocation and attachment share the critical section,
	// keeping the count rule intact across in-flight edge creations.
	if ipsOne != nil {
		ifc := newInterface(from, *ipsOne)
		from.AttachInterface(ifc)
		link.InterfaceOne = &ifc
	}
	if ipsTwo != nil {
		ifc := newInterface(to, *ipsTwo)
		to.AttachInterface(ifc)
		link.InterfaceTwo = &ifc
	}
	s.mu.Unlock()

	e.Core = link.Key()
	e.Label = linkLabel(link)
	e.Title = linkTitle(from, to)
	e.NodeOne = from.Name
	e.InterfaceOne = link.InterfaceOne
	e.NodeTwo = to.Name
	e.InterfaceTwo = link.InterfaceTwo
	s.surface.UpdateEdge(e)
	return nil
}

// requestAddresses fetches a fresh address pair for a default-type endpoint.
// Infrastructure endpoints carry no addressing and get nil. A failed
// allocation is logged and degrades to an unaddressed end.
func (s *Session) requestAddresses(ctx context.Context, n *domain.Node) *client.NodeIPs {
	if n.Type != nodetype.Default {
		return nil
	}

	ips, err := s.client.GetNodeIPs(ctx, n.ID, s.subnets.IPv4, s.subnets.IPv6)
	if err != nil {
		log.Printf("address assignment for node %d: %v", n.ID, err)
		return nil
	}
	return &ips
}

// newInterface builds the next interface record for n from an allocated
// address pair. The caller must hold the session lock.
func newInterface(n *domain.Node, ips client.NodeIPs) domain.Interface {
	ifc := domain.Interface{ID: n.NextInterfaceID()}
	if addr, err := netip.ParseAddr(ips.IP4); err == nil {
		ifc.IP4 = addr
		ifc.IP4Mask = ips.IP4Mask
	}
	if addr, err := netip.ParseAddr(ips.IP6); err == nil {
		ifc.IP6 = addr
		ifc.IP6Mask = ips.IP6Mask
	}
	return ifc
}

// Start pushes the local topology to the daemon and transitions the remote
// session to instantiation. Nodes go first, then links, each call awaited
// before the next; the daemon requires links to reference already-created
// nodes. The first failure aborts the rest and surfaces to the caller; state
// already pushed stays on the server.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	nodes := s.nodes.All()
	links := s.links.All()
	s.mu.Unlock()

	for _, n := range nodes {
		if err := s.client.CreateNode(ctx, nodePayload(n)); err != nil {
			return fmt.Errorf("start session: create node %d (%s): %w", n.ID, n.Name, err)
		}
	}
	for _, l := range links {
		if err := s.client.CreateLink(ctx, linkDescriptor(l)); err != nil {
			return fmt.Errorf("start session: create link %s: %w", l.Key(), err)
		}
	}
	if err := s.client.SetSessionState(ctx, client.StateInstantiation); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

func nodePayload(n *domain.Node) client.NodePayload {
	p := client.NodePayload{
		ID:    n.ID,
		Type:  int(n.Type),
		Name:  n.Name,
		Model: string(n.Model),
		X:     n.Position.X,
		Y:     n.Position.Y,
	}
	if n.Geo != nil {
		p.Lat = n.Geo.Lat
		p.Lon = n.Geo.Lon
		p.Alt = n.Geo.Alt
	}
	p.Services = n.Services
	return p
}

func linkDescriptor(l *domain.Link) client.LinkDescriptor {
	desc := client.LinkDescriptor{Node1ID: l.NodeOne, Node2ID: l.NodeTwo}
	if ifc := l.InterfaceOne; ifc != nil {
		id := ifc.ID
		desc.Interface1ID = &id
		if ifc.IP4.IsValid() {
			desc.Interface1IP4 = ifc.IP4.String()
			desc.Interface1IP4Mask = ifc.IP4Mask
		}
		if ifc.IP6.IsValid() {
			desc.Interface1IP6 = ifc.IP6.String()
			desc.Interface1IP6Mask = ifc.IP6Mask
		}
	}
	if ifc := l.InterfaceTwo; ifc != nil {
		id := ifc.ID
		desc.Interface2ID = &id
		if ifc.IP4.IsValid() {
			desc.Interface2IP4 = ifc.IP4.String()
			desc.Interface2IP4Mask = ifc.IP4Mask
		}
		if ifc.IP6.IsValid() {
			desc.Interface2IP6 = ifc.IP6.String()
			desc.Interface2IP6Mask = ifc.IP6Mask
		}
	}
	return desc
}

func wireInterface(id int, ip4 string, ip4Mask int, ip6 string, ip6Mask int) (domain.Interface, error) {
	ifc := domain.Interface{ID: id}
	if ip4 != "" {
		addr, err := netip.ParseAddr(ip4)
		if err != nil {
			return domain.Interface{}, fmt.Errorf("parse ip4 %q: %w", ip4, err)
		}
		ifc.IP4 = addr
		ifc.IP4Mask = ip4Mask
	}
	if ip6 != "" {
		addr, err := netip.ParseAddr(ip6)
		if err != nil {
			return domain.Interface{}, fmt.Errorf("parse ip6 %q: %w", ip6, err)
		}
		ifc.IP6 = addr
		ifc.IP6Mask = ip6Mask
	}
	return ifc, nil
}

func linkLabel(l *domain.Link) string {
	var parts []string
	for _, ifc := range []*domain.Interface{l.InterfaceOne, l.InterfaceTwo} {
		if ifc != nil && ifc.IP4.IsValid() {
			parts = append(parts, fmt.Sprintf("%s/%d", ifc.IP4, ifc.IP4Mask))
		}
	}
	return strings.Join(parts, "\n")
}

func linkTitle(one, two *domain.Node) string {
	return fmt.Sprintf("%s <> %s", one.Name, two.Name)
}
