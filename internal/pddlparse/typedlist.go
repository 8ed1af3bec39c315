// Package pddlparse builds a Type & Symbol Environment (internal/pddlenv),
// a Condition tree (internal/cond) for every action, and, for
// :concurrency-network domains, a concurrency Network (internal/network)
// out of the generic S-expression tree internal/sexpr produces — the
// surface-syntax-to-domain-model pass of spec.md §6.
package pddlparse

import (
	"github.com/concurrent-pddl/compiler/internal/perr"
	"github.com/concurrent-pddl/compiler/internal/sexpr"
)

// typedItem is one name bound to a type in a PDDL typed list such as
// "?a ?b - AGENT ?loc - LOCATION" or "foo bar - OBJECT".
type typedItem struct {
	Name     string
	TypeName string
}

// parseTypedList reads a flat typed-list body (spec.md §6's typed-list
// grammar, shared by :types, :predicates parameter lists, :parameters,
// and :agent clauses): a run of names followed optionally by "- TYPE",
// repeated, with a final untyped run defaulting to OBJECT.
func parseTypedList(items []sexpr.Expr, file string, defaultType string) ([]typedItem, error) {
	if defaultType == "" {
		defaultType = "OBJECT"
	}
	var out []typedItem
	var pending []string
	i := 0
	for i < len(items) {
		a, ok := items[i].(*sexpr.Atom)
		if !ok {
			return nil, perr.ParseErrorAt(file, items[i].Pos().Line, "expected name or '-' in typed list")
		}
		if a.IsHyphen() {
			i++
			if i >= len(items) {
				return nil, perr.ParseErrorAt(file, a.Token.Line, "'-' at end of typed list with no type name")
			}
			typeName, ok := sexpr.AsSymbol(items[i])
			if !ok {
				return nil, perr.ParseErrorAt(file, items[i].Pos().Line, "expected type name after '-'")
			}
			for _, name := range pending {
				out = append(out, typedItem{Name: name, TypeName: typeName})
			}
			pending = nil
			i++
			continue
		}
		pending = append(pending, a.Text())
		i++
	}
	for _, name := range pending {
		out = append(out, typedItem{Name: name, TypeName: defaultType})
	}
	return out, nil
}
