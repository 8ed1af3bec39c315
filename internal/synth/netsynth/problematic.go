// Package netsynth implements the network-concurrency Domain Synthesiser
// of spec.md §4.5 (component C5, network variant): per node of a
// concurrency network, a START/SKIP/DO/END/FINISH action family plus
// deferred-effect ADD-/DELETE- commit actions for any "problematic"
// fluent a template of a node deletes while a template of the same node
// reads it.
//
// Grounded on the original compiler's examples/serialize_cn/serialize.cpp.
package netsynth

import (
	"sort"

	"github.com/concurrent-pddl/compiler/internal/cond"
	"github.com/concurrent-pddl/compiler/internal/network"
	"github.com/concurrent-pddl/compiler/internal/pddlenv"
)

// ProblematicFluent is a predicate that at least one action template of a
// node deletes while a template of the same node references it in its
// precondition, positively or under a Not — meaning the delete cannot be
// applied immediately without risking invalidating a concurrently-running
// sibling's precondition check, and must instead be deferred to the
// component's END action via a POS-/NEG- bookkeeping pair.
type ProblematicFluent struct {
	Predicate string
}

// deletes reports whether action's effect unconditionally deletes an atom
// of predicate name (a top-level negated Ground in the effect's And),
// ignoring the template's own agent/self parameter (index 0), which never
// contributes to cross-template interference since each participant's
// slot is private to it.
func deletes(action *pddlenv.Action, name string) bool {
	for _, eff := range action.Effect.Children {
		n, ok := eff.(*cond.Not)
		if !ok {
			continue
		}
		g, ok := n.Child.(*cond.Ground)
		if ok && g.Predicate == name {
			return true
		}
	}
	return false
}

// reads reports whether action's precondition references an atom of
// predicate name anywhere in its (possibly nested) precondition tree,
// positively or under a Not.
func reads(action *pddlenv.Action, name string) bool {
	found := false
	var walk func(c cond.Condition)
	walk = func(c cond.Condition) {
		if found || c == nil {
			return
		}
		switch n := c.(type) {
		case *cond.Ground:
			if n.Predicate == name {
				found = true
			}
		case *cond.And:
			for _, ch := range n.Children {
				walk(ch)
			}
		case *cond.Or:
			walk(n.Left)
			walk(n.Right)
		case *cond.Not:
			walk(n.Child)
		case *cond.Exists:
			walk(n.Body)
		case *cond.Forall:
			walk(n.Body)
		}
	}
	walk(action.Precondition)
	return found
}

// Detect returns the sorted set of problematic fluents introduced by a
// single node: every predicate some template of that node deletes that
// some template of the SAME node (itself included, since a template can
// race against its own later re-invocation under a different parameter
// binding) reads. Scoped to one node and gated on Upper > 1, matching
// serialize.cpp:75-89 — a node with only one concurrent slot can never
// race against itself, so it is never a source of problematic fluents,
// regardless of what the rest of its component does.
func Detect(src *pddlenv.Env, net *network.Network, nodeIdx int) []ProblematicFluent {
	node := net.Nodes[nodeIdx]
	if node.Upper <= 1 {
		return nil
	}

	var templateActions []*pddlenv.Action
	for _, tmpl := range node.Templates {
		a, ok := src.LookupAction(tmpl.ActionName)
		if !ok {
			continue
		}
		templateActions = append(templateActions, a)
	}

	seen := map[string]bool{}
	var names []string
	for _, p := range src.Predicates() {
		if p.IsConcurrency {
			continue
		}
		deletedBySome := false
		readBySome := false
		for _, a := range templateActions {
			if deletes(a, p.Name) {
				deletedBySome = true
			}
			if reads(a, p.Name) {
				readBySome = true
			}
		}
		if deletedBySome && readBySome && !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)

	out := make([]ProblematicFluent, len(names))
	for i, n := range names {
		out[i] = ProblematicFluent{Predicate: n}
	}
	return out
}
