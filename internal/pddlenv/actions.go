package pddlenv

import "github.com/concurrent-pddl/compiler/internal/cond"

// Action is a lifted action schema: a name, an ordered parameter-type
// list, a precondition and an effect (spec.md §3). Both Precondition and
// Effect are kept structurally as *cond.And so addPre/addEff/addOrPre can
// append to them incrementally; after normalisation every synthesised
// Effect upholds the spec's "effect is an And" invariant.
type Action struct {
	Id           int
	Name         string
	ParamTypes   []string
	Precondition *cond.And
	Effect       *cond.And
	Concurrency  *Predicate // nil unless the domain is multi-agent
}

// CreateAction declares a new action schema. When multiAgent is true, a
// concurrency predicate is created 1:1 with the action: same name, same
// parameter list (spec.md §3, §4.1) — the concurrency-predicate index
// remains a subset of the predicate index because it is created through
// the same createPredicate path.
func (e *Env) CreateAction(name string, paramTypes []string, multiAgent bool) (*Action, error) {
	if e.actions.has(name) {
		return nil, fmtErr("pddlenv: action %q already declared", name)
	}
	a := &Action{
		Id:           e.actions.len(),
		Name:         name,
		ParamTypes:   append([]string(nil), paramTypes...),
		Precondition: &cond.And{},
		Effect:       &cond.And{},
	}
	if multiAgent {
		p, err := e.createPredicate(name, paramTypes, true)
		if err != nil {
			return nil, err
		}
		a.Concurrency = p
	}
	e.actions.set(name, a)
	return a, nil
}

// AddPre ANDs a single Ground atom (negated iff negated) referencing
// predName into action's precondition.
func (e *Env) AddPre(action *Action, negated bool, predName string, args ...cond.Term) error {
	if !e.predicates.has(predName) {
		return fmtErr("pddlenv: addPre: unknown predicate %q", predName)
	}
	action.Precondition.Children = append(action.Precondition.Children, groundMaybeNot(negated, predName, args))
	return nil
}

// AddEff ANDs a single Ground atom (negated iff negated) referencing
// predName into action's effect.
func (e *Env) AddEff(action *Action, negated bool, predName string, args ...cond.Term) error {
	if !e.predicates.has(predName) {
		return fmtErr("pddlenv: addEff: unknown predicate %q", predName)
	}
	action.Effect.Children = append(action.Effect.Children, groundMaybeNot(negated, predName, args))
	return nil
}

// AddOrPre ANDs an (or (predA argsA...) (predB argsB...)) disjunction into
// action's precondition — used for the network variant's predecessor
// DONE/SKIPPED preconditions (spec.md §4.5) where a node may proceed once
// either of two sibling flags holds.
func (e *Env) AddOrPre(action *Action, predA string, argsA []cond.Term, predB string, argsB []cond.Term) error {
	if !e.predicates.has(predA) {
		return fmtErr("pddlenv: addOrPre: unknown predicate %q", predA)
	}
	if !e.predicates.has(predB) {
		return fmtErr("pddlenv: addOrPre: unknown predicate %q", predB)
	}
	action.Precondition.Children = append(action.Precondition.Children, &cond.Or{
		Left:  &cond.Ground{Predicate: predA, Args: append([]cond.Term(nil), argsA...)},
		Right: &cond.Ground{Predicate: predB, Args: append([]cond.Term(nil), argsB...)},
	})
	return nil
}

// AddParams appends extra parameter types to an already-declared action
// schema. Used by the serial variant's agent-order and max-joint-action
// options (spec.md §4.5) to extend a synthesised SELECT-/END- action after
// its original precondition/effect have already been copied in.
func (e *Env) AddParams(action *Action, extra ...string) {
	action.ParamTypes = append(action.ParamTypes, extra...)
}

// AddPreCond ANDs an arbitrary pre-built Condition into action's
// precondition — used where the synthesiser needs a shape addPre/addEff
// cannot express directly, such as a Forall- or Or-wrapped conjunct.
func (e *Env) AddPreCond(action *Action, c cond.Condition) {
	action.Precondition.Children = append(action.Precondition.Children, c)
}

// AddEffCond ANDs an arbitrary pre-built Condition into action's effect.
func (e *Env) AddEffCond(action *Action, c cond.Condition) {
	action.Effect.Children = append(action.Effect.Children, c)
}

func groundMaybeNot(negated bool, pred string, args []cond.Term) cond.Condition {
	g := &cond.Ground{Predicate: pred, Args: append([]cond.Term(nil), args...)}
	if negated {
		return &cond.Not{Child: g}
	}
	return g
}
