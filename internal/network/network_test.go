package network

import "testing"

func TestConnectedComponents_Singletons(t *testing.T) {
	net := New()
	net.AddNode("N0", nil, 1, 1)
	net.AddNode("N1", nil, 1, 1)

	ccs := net.ConnectedComponents()
	if len(ccs) != 2 {
		t.Fatalf("expected 2 singleton components, got %d: %v", len(ccs), ccs)
	}
}

func TestConnectedComponents_Merged(t *testing.T) {
	net := New()
	net.AddNode("N0", nil, 1, 1)
	net.AddNode("N1", nil, 1, 1)
	net.AddNode("N2", nil, 1, 1)
	net.AddEdge(0, 1)

	ccs := net.ConnectedComponents()
	if len(ccs) != 2 {
		t.Fatalf("expected 2 components after merging N0/N1, got %d: %v", len(ccs), ccs)
	}
	if ccs[0][0] != 0 || ccs[0][1] != 1 {
		t.Fatalf("expected the first component to contain node 0 then node 1 in order, got %v", ccs[0])
	}
	if ccs[1][0] != 2 {
		t.Fatalf("expected the second component to be the standalone node 2, got %v", ccs[1])
	}
}

func TestConnectedComponents_TransitiveMerge(t *testing.T) {
	net := New()
	net.AddNode("N0", nil, 1, 1)
	net.AddNode("N1", nil, 1, 1)
	net.AddNode("N2", nil, 1, 1)
	net.AddEdge(0, 1)
	net.AddEdge(1, 2)

	ccs := net.ConnectedComponents()
	if len(ccs) != 1 || len(ccs[0]) != 3 {
		t.Fatalf("expected a single 3-node component, got %v", ccs)
	}
}

func TestUnbounded(t *testing.T) {
	n := &Node{Upper: 1}
	if n.Unbounded() {
		t.Fatalf("upper=1 should not be unbounded")
	}
}
