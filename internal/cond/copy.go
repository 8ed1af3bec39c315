package cond

import "fmt"

// PredicateEnv is the minimal capability Copy needs from a destination
// Type & Symbol Environment: the ability to resolve a lifted predicate by
// name. internal/pddlenv.Env implements this; cond itself never imports
// pddlenv, which is what lets pddlenv import cond for its Action table
// without an import cycle.
type PredicateEnv interface {
	HasPredicate(name string) bool
}

// UnknownPredicateError is returned by Copy when the destination
// environment has no predicate matching a Ground node's name.
type UnknownPredicateError struct{ Name string }

func (e *UnknownPredicateError) Error() string {
	return fmt.Sprintf("copy: unknown predicate %q in target environment", e.Name)
}

// Copy deep-copies cnd, re-binding every Ground's predicate reference by
// looking its name up in target. If a name is absent the copy fails with
// *UnknownPredicateError (spec.md §4.2).
func Copy(c Condition, target PredicateEnv) (Condition, error) {
	if c == nil {
		return nil, nil
	}
	switch n := c.(type) {
	case *And:
		children := make([]Condition, len(n.Children))
		for i, ch := range n.Children {
			cc, err := Copy(ch, target)
			if err != nil {
				return nil, err
			}
			children[i] = cc
		}
		return &And{Children: children}, nil
	case *Or:
		l, err := Copy(n.Left, target)
		if err != nil {
			return nil, err
		}
		r, err := Copy(n.Right, target)
		if err != nil {
			return nil, err
		}
		return &Or{Left: l, Right: r}, nil
	case *Not:
		ch, err := Copy(n.Child, target)
		if err != nil {
			return nil, err
		}
		return &Not{Child: ch}, nil
	case *Exists:
		body, err := Copy(n.Body, target)
		if err != nil {
			return nil, err
		}
		return &Exists{Params: copyParams(n.Params), Body: body}, nil
	case *Forall:
		body, err := Copy(n.Body, target)
		if err != nil {
			return nil, err
		}
		return &Forall{Params: copyParams(n.Params), Body: body}, nil
	case *When:
		g, err := Copy(n.Guard, target)
		if err != nil {
			return nil, err
		}
		e, err := Copy(n.Effect, target)
		if err != nil {
			return nil, err
		}
		return &When{Guard: g, Effect: e}, nil
	case *Ground:
		if target != nil && !target.HasPredicate(n.Predicate) {
			return nil, &UnknownPredicateError{Name: n.Predicate}
		}
		return &Ground{Predicate: n.Predicate, Args: append([]Term(nil), n.Args...)}, nil
	case *Equals:
		return &Equals{Lhs: n.Lhs, Rhs: n.Rhs}, nil
	case *Increase:
		return &Increase{Fluent: n.Fluent, Args: append([]Term(nil), n.Args...), Amount: n.Amount}, nil
	default:
		return nil, fmt.Errorf("cond.Copy: unhandled condition type %T", c)
	}
}

// MustCopy panics if Copy fails; it is used at call sites that have
// already validated the target environment contains every predicate the
// source references (e.g. copying within the same environment).
func MustCopy(c Condition, target PredicateEnv) Condition {
	out, err := Copy(c, target)
	if err != nil {
		panic(err)
	}
	return out
}

func copyParams(ps []Param) []Param {
	out := make([]Param, len(ps))
	copy(out, ps)
	return out
}
