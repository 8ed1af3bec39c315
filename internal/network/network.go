// Package network implements the concurrency-network data model of
// spec.md §3/§4.5 (network variant only): nodes with arity bounds and
// action templates, positive-dependence edges between nodes, and the
// union-find used to group nodes into connected components.
//
// Grounded on the original compiler's MultiagentDomain (nodes/edges/mf
// fields) and NetworkNode (lower/upper/templates) types: a node owns a
// parameter list and a set of action templates, each template mapping
// its own action's parameters onto a subset of the node's parameters by
// index; edges are unordered node-index pairs recording that the second
// node positively depends on the first; mf is the union-find parent
// array merged incrementally as each edge is parsed.
package network

import "github.com/concurrent-pddl/compiler/internal/config"

// ActionTemplate is one action participating in a node: the action's
// name, plus the mapping from that action's own parameter index to the
// index of the node parameter it is bound to (spec.md §3: "a parameter
// remapping from action-param index to node-param index").
type ActionTemplate struct {
	ActionName string
	ParamMap   []int
}

// Node is a single concurrency-constraint node: a name, a typed
// parameter list, a multiplicity range, and the action templates that
// may execute under it.
type Node struct {
	Id         int
	Name       string
	ParamTypes []string
	Lower      int
	Upper      int // config.InfinityBound sentinel means unbounded ("INF")
	Templates  []ActionTemplate
}

// Unbounded reports whether n has no effective upper bound.
func (n *Node) Unbounded() bool { return n.Upper >= config.InfinityBound }

// Edge is an unordered positive-dependence pair: To may not START/SKIP
// until From has reached DONE or SKIPPED.
type Edge struct {
	From, To int // node indices
}

// Network holds every node and edge declared by a source domain, plus
// the union-find merging nodes into connected components as edges are
// added (spec.md §3's "connected components are maintained by
// union-find on node indices").
type Network struct {
	Nodes []*Node
	Edges []Edge
	mf    []int
}

// New returns an empty network.
func New() *Network { return &Network{} }

// AddNode appends a new node and extends the union-find with its own
// singleton component, mirroring MultiagentDomain.parseNetworkNode's
// `mf.push_back(mf.size())`.
func (net *Network) AddNode(name string, paramTypes []string, lower, upper int) *Node {
	n := &Node{Id: len(net.Nodes), Name: name, ParamTypes: paramTypes, Lower: lower, Upper: upper}
	net.Nodes = append(net.Nodes, n)
	net.mf = append(net.mf, len(net.mf))
	return n
}

// AddEdge records that node `to` positively depends on node `from`, and
// merges their connected components.
func (net *Network) AddEdge(from, to int) {
	net.Edges = append(net.Edges, Edge{From: from, To: to})
	a, b := net.find(from), net.find(to)
	if a != b {
		if a < b {
			net.mf[b] = a
		} else {
			net.mf[a] = b
		}
	}
}

// find is the path-compressing union-find root lookup ("uf" in the
// source: `if (mf[n]==n) return n; else return mf[n]=uf(mf,mf[n])`).
func (net *Network) find(n int) int {
	if net.mf[n] == n {
		return n
	}
	net.mf[n] = net.find(net.mf[n])
	return net.mf[n]
}

// ConnectedComponents groups node indices by their union-find root,
// returning one slice per component. Components are ordered by
// ascending root id, and members within a component are ordered by
// ascending node index — both match the source's `std::map<unsigned,
// vector<int>>` (sorted keys) built by iterating nodes in declaration
// order.
func (net *Network) ConnectedComponents() [][]int {
	byRoot := map[int][]int{}
	var roots []int
	for i := range net.Nodes {
		r := net.find(i)
		if _, ok := byRoot[r]; !ok {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], i)
	}
	// Insertion order of `roots` already matches the sorted-map iteration
	// order because node indices (and hence the first-seen root for any
	// component) increase monotonically and union always keeps the
	// smaller index as root.
	out := make([][]int, 0, len(roots))
	for _, r := range roots {
		out = append(out, byRoot[r])
	}
	return out
}

// EdgesInto returns the From side of every edge whose To is node n.
func (net *Network) EdgesInto(n int) []int {
	var out []int
	for _, e := range net.Edges {
		if e.To == n {
			out = append(out, e.From)
		}
	}
	return out
}

// EdgesFrom returns the To side of every edge whose From is node n.
func (net *Network) EdgesFrom(n int) []int {
	var out []int
	for _, e := range net.Edges {
		if e.From == n {
			out = append(out, e.To)
		}
	}
	return out
}
