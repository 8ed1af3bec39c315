// Package pddlenv implements the Type & Symbol Environment of spec.md §4.1
// (component C1): the type hierarchy, predicate table, concurrency-
// predicate sub-table, and action table, with indices stable for the
// lifetime of the environment and tables that preserve insertion order so
// synthesised output is deterministic (spec.md §5, §9).
//
// The ordered-table idiom is grounded on funvibe/funxy's
// internal/symbols package (a scope-chained symbol table of name-keyed
// entries); the type arena with stable integer ids follows the explicit
// design note in spec.md §9.
package pddlenv

import (
	"fmt"

	"github.com/concurrent-pddl/compiler/internal/cond"
)

// RootType is the implicit root of the type forest every domain's types
// hang from (spec.md §3).
const RootType = "OBJECT"

// Env is the Type & Symbol Environment: types, predicates, concurrency
// predicates (a marked subset of predicates), actions, and object
// constants, all insertion-ordered.
type Env struct {
	types      orderedTable[*Type]
	predicates orderedTable[*Predicate]
	actions    orderedTable[*Action]
	constants  orderedTable[*Constant]
}

// New creates an empty Env with only the implicit OBJECT root type.
func New() *Env {
	e := &Env{
		types:      newOrderedTable[*Type](),
		predicates: newOrderedTable[*Predicate](),
		actions:    newOrderedTable[*Action](),
		constants:  newOrderedTable[*Constant](),
	}
	e.types.set(RootType, &Type{Id: 0, Name: RootType})
	return e
}

// IndexOfType returns the stable id of the type named name.
func (e *Env) IndexOfType(name string) (int, bool) {
	t, ok := e.types.get(name)
	if !ok {
		return 0, false
	}
	return t.Id, true
}

// IndexOfPredicate returns the stable id of the predicate named name.
func (e *Env) IndexOfPredicate(name string) (int, bool) {
	p, ok := e.predicates.get(name)
	if !ok {
		return 0, false
	}
	return p.Id, true
}

// IndexOfConcurrencyPredicate returns the stable id of the predicate
// named name iff it is a concurrency predicate. The concurrency-predicate
// index is by construction a subset of the predicate index (spec.md §3).
func (e *Env) IndexOfConcurrencyPredicate(name string) (int, bool) {
	p, ok := e.predicates.get(name)
	if !ok || !p.IsConcurrency {
		return 0, false
	}
	return p.Id, true
}

// HasPredicate reports whether a predicate named name exists. It
// satisfies cond.PredicateEnv, letting cond.Copy re-bind Ground references
// against this environment without pddlenv and cond import-cycling.
func (e *Env) HasPredicate(name string) bool { return e.predicates.has(name) }

// LookupType returns the Type named name.
func (e *Env) LookupType(name string) (*Type, bool) { return e.types.get(name) }

// LookupPredicate returns the Predicate named name.
func (e *Env) LookupPredicate(name string) (*Predicate, bool) { return e.predicates.get(name) }

// LookupAction returns the Action named name.
func (e *Env) LookupAction(name string) (*Action, bool) { return e.actions.get(name) }

// LookupConstant returns the Constant named name.
func (e *Env) LookupConstant(name string) (*Constant, bool) { return e.constants.get(name) }

// Types returns every declared Type in insertion order (OBJECT first).
func (e *Env) Types() []*Type { return e.types.values() }

// Predicates returns every declared Predicate in insertion order.
func (e *Env) Predicates() []*Predicate { return e.predicates.values() }

// Actions returns every declared Action in insertion order.
func (e *Env) Actions() []*Action { return e.actions.values() }

// Constants returns every declared Constant in insertion order.
func (e *Env) Constants() []*Constant { return e.constants.values() }

func fmtErr(format string, args ...any) error { return fmt.Errorf(format, args...) }
