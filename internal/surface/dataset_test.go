package surface

import (
	"testing"
)

func TestDatasetNodes(t *testing.T) {
	t.Run("add preserves insertion order", func(t *testing.T) {
		d := NewDataset()
		d.AddNode(Node{ID: 3, Label: "switch3"})
		d.AddNode(Node{ID: 1, Label: "router1"})

		nodes := d.Nodes()
		if len(nodes) != 2 {
			t.Fatalf("expected 2 nodes, got %d", len(nodes))
		}
		if nodes[0].ID != 3 || nodes[1].ID != 1 {
			t.Errorf("unexpected order: %d, %d", nodes[0].ID, nodes[1].ID)
		}
	})

	t.Run("update replaces record", func(t *testing.T) {
		d := NewDataset()
		d.AddNode(Node{ID: 1, Label: "router1"})
		d.UpdateNode(Node{ID: 1, Label: "router1", X: 50, Y: 60})

		nodes := d.Nodes()
		if len(nodes) != 1 {
			t.Fatalf("expected 1 node, got %d", len(nodes))
		}
		if nodes[0].X != 50 {
			t.Errorf("expected updated position, got %f", nodes[0].X)
		}
	})
}

func TestDatasetEdges(t *testing.T) {
	t.Run("add assigns uuid when id empty", func(t *testing.T) {
		d := NewDataset()
		d.AddEdge(Edge{From: 1, To: 2})

		edges := d.Edges()
		if len(edges) != 1 {
			t.Fatalf("expected 1 edge, got %d", len(edges))
		}
		if edges[0].ID == "" {
			t.Error("expected generated edge id")
		}
	})

	t.Run("remove drops the edge", func(t *testing.T) {
		d := NewDataset()
		d.AddEdge(Edge{ID: "e1", From: 1, To: 2})
		d.AddEdge(Edge{ID: "e2", From: 2, To: 3})
		d.RemoveEdge("e1")

		if _, ok := d.Edge("e1"); ok {
			t.Error("expected e1 removed")
		}
		edges := d.Edges()
		if len(edges) != 1 || edges[0].ID != "e2" {
			t.Errorf("expected only e2 to remain, got %v", edges)
		}
	})

	t.Run("update of unknown edge is a no-op", func(t *testing.T) {
		d := NewDataset()
		d.UpdateEdge(Edge{ID: "ghost", From: 1, To: 2})
		if len(d.Edges()) != 0 {
			t.Error("expected no edge created by update")
		}
	})
}

func TestDatasetMutations(t *testing.T) {
	d := NewDataset()
	ch := make(chan Mutation, 16)
	d.Subscribe(ch)

	d.AddNode(Node{ID: 1})
	d.AddEdge(Edge{ID: "e1", From: 1, To: 2})
	d.RemoveEdge("e1")
	d.SetEdgeMode(true)
	d.Reset()

	want := []MutationType{
		MutationNodeAdded,
		MutationEdgeAdded,
		MutationEdgeRemoved,
		MutationEdgeMode,
		MutationReset,
	}
	for i, w := range want {
		select {
		case m := <-ch:
			if m.Type != w {
				t.Errorf("mutation %d: expected %s, got %s", i, w, m.Type)
			}
		default:
			t.Fatalf("expected %d mutations, got %d", len(want), i)
		}
	}
}

func TestDatasetEdgeMode(t *testing.T) {
	d := NewDataset()
	if d.EdgeMode() {
		t.Error("expected edge mode off initially")
	}
	d.SetEdgeMode(true)
	if !d.EdgeMode() {
		t.Error("expected edge mode on")
	}
}
