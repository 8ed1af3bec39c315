package pddlparse

import (
	"strconv"
	"github.com/concurrent-pddl/compiler/internal/cond"
	"github.com/concurrent-pddl/compiler/internal/perr"
	"github.com/concurrent-pddl/compiler/internal/sexpr"
)

// varScope accumulates flat parameter indices while descending into a
// condition tree: action parameters occupy indices 0..k-1, and each
// nested Exists/Forall appends its own parameters at the end of the same
// flat list rather than starting a fresh frame, and drops them again once
// its body has been read, so sibling quantifiers reuse the same indices
// (spec.md §9's flat
// parameter-indexing decision, kept consistent with internal/classify and
// internal/cond.Scope's own resolution rule).
type varScope struct {
	names []string
}

func newVarScope(paramNames []string) *varScope {
	return &varScope{names: append([]string(nil), paramNames...)}
}

// push appends new names and returns their assigned flat indices.
func (s *varScope) push(names []string) []int {
	idx := make([]int, len(names))
	for i, n := range names {
		idx[i] = len(s.names)
		s.names = append(s.names, n)
	}
	return idx
}

func (s *varScope) resolve(name string) (int, bool) {
	for i, n := range s.names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// buildCondition parses a precondition or goal expression into a
// cond.Condition, resolving variable references against scope.
func buildCondition(e sexpr.Expr, scope *varScope, file string) (cond.Condition, error) {
	list, ok := e.(*sexpr.List)
	if !ok {
		return nil, perr.ParseErrorAt(file, e.Pos().Line, "expected list in condition position")
	}
	if len(list.Items) == 0 {
		return cond.NewAnd(), nil
	}
	head, ok := sexpr.AsSymbol(list.Items[0])
	if !ok {
		return nil, perr.ParseErrorAt(file, list.Pos().Line, "expected keyword or predicate name")
	}

	switch head {
	case "and":
		children := make([]cond.Condition, 0, len(list.Items)-1)
		for _, it := range list.Items[1:] {
			c, err := buildCondition(it, scope, file)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
		return &cond.And{Children: children}, nil

	case "or":
		if len(list.Items) != 3 {
			return nil, perr.ParseErrorAt(file, list.Pos().Line, "(or a b) takes exactly two disjuncts")
		}
		l, err := buildCondition(list.Items[1], scope, file)
		if err != nil {
			return nil, err
		}
		r, err := buildCondition(list.Items[2], scope, file)
		if err != nil {
			return nil, err
		}
		return &cond.Or{Left: l, Right: r}, nil

	case "not":
		if len(list.Items) != 2 {
			return nil, perr.ParseErrorAt(file, list.Pos().Line, "(not x) takes exactly one operand")
		}
		c, err := buildCondition(list.Items[1], scope, file)
		if err != nil {
			return nil, err
		}
		return &cond.Not{Child: c}, nil

	case "exists", "forall":
		if len(list.Items) != 3 {
			return nil, perr.ParseErrorAt(file, list.Pos().Line, "(%s (vars) body) takes exactly two operands", head)
		}
		varList, ok := list.Items[1].(*sexpr.List)
		if !ok {
			return nil, perr.ParseErrorAt(file, list.Items[1].Pos().Line, "expected variable list")
		}
		items, err := parseTypedList(varList.Items, file, "OBJECT")
		if err != nil {
			return nil, err
		}
		names := make([]string, len(items))
		for i, it := range items {
			names[i] = it.Name
		}
		scope.push(names)
		body, err := buildCondition(list.Items[2], scope, file)
		if err != nil {
			return nil, err
		}
		scope.names = scope.names[:len(scope.names)-len(names)]
		params := make([]cond.Param, len(items))
		for i, it := range items {
			params[i] = cond.Param{Name: it.Name, TypeName: canon(it.TypeName)}
		}
		if head == "exists" {
			return &cond.Exists{Params: params, Body: body}, nil
		}
		return &cond.Forall{Params: params, Body: body}, nil

	case "=":
		if len(list.Items) != 3 {
			return nil, perr.ParseErrorAt(file, list.Pos().Line, "(= a b) takes exactly two operands")
		}
		l, err := buildTerm(list.Items[1], scope, file)
		if err != nil {
			return nil, err
		}
		r, err := buildTerm(list.Items[2], scope, file)
		if err != nil {
			return nil, err
		}
		return &cond.Equals{Lhs: l, Rhs: r}, nil

	default:
		return buildGround(head, list.Items[1:], scope, file)
	}
}

// buildEffect parses an effect expression, additionally recognising
// (when guard effect) conditional effects, which only appear in effect
// position.
func buildEffect(e sexpr.Expr, scope *varScope, file string) (cond.Condition, error) {
	list, ok := e.(*sexpr.List)
	if !ok {
		return nil, perr.ParseErrorAt(file, e.Pos().Line, "expected list in effect position")
	}
	if len(list.Items) == 0 {
		return cond.NewAnd(), nil
	}
	if head, ok := sexpr.AsSymbol(list.Items[0]); ok {
		switch head {
		case "and":
			children := make([]cond.Condition, 0, len(list.Items)-1)
			for _, it := range list.Items[1:] {
				c, err := buildEffect(it, scope, file)
				if err != nil {
					return nil, err
				}
				children = append(children, c)
			}
			return &cond.And{Children: children}, nil
		case "forall":
			if len(list.Items) != 3 {
				return nil, perr.ParseErrorAt(file, list.Pos().Line, "(forall (vars) effect) takes exactly two operands")
			}
			varList, ok := list.Items[1].(*sexpr.List)
			if !ok {
				return nil, perr.ParseErrorAt(file, list.Items[1].Pos().Line, "expected variable list")
			}
			items, err := parseTypedList(varList.Items, file, "OBJECT")
			if err != nil {
				return nil, err
			}
			names := make([]string, len(items))
			for i, it := range items {
				names[i] = it.Name
			}
			scope.push(names)
			body, err := buildEffect(list.Items[2], scope, file)
			if err != nil {
				return nil, err
			}
			scope.names = scope.names[:len(scope.names)-len(names)]
			params := make([]cond.Param, len(items))
			for i, it := range items {
				params[i] = cond.Param{Name: it.Name, TypeName: canon(it.TypeName)}
			}
			return &cond.Forall{Params: params, Body: body}, nil
		case "when":
			if len(list.Items) != 3 {
				return nil, perr.ParseErrorAt(file, list.Pos().Line, "(when guard effect) takes exactly two operands")
			}
			guard, err := buildCondition(list.Items[1], scope, file)
			if err != nil {
				return nil, err
			}
			effect, err := buildEffect(list.Items[2], scope, file)
			if err != nil {
				return nil, err
			}
			return &cond.When{Guard: guard, Effect: effect}, nil
		case "not":
			if len(list.Items) != 2 {
				return nil, perr.ParseErrorAt(file, list.Pos().Line, "(not x) takes exactly one operand")
			}
			c, err := buildEffect(list.Items[1], scope, file)
			if err != nil {
				return nil, err
			}
			return &cond.Not{Child: c}, nil
		case "increase":
			return buildIncrease(list, scope, file)
		}
	}
	return buildCondition(e, scope, file)
}

func buildIncrease(list *sexpr.List, scope *varScope, file string) (cond.Condition, error) {
	if len(list.Items) != 3 {
		return nil, perr.ParseErrorAt(file, list.Pos().Line, "(increase (fluent args) amount) takes exactly two operands")
	}
	fluentList, ok := list.Items[1].(*sexpr.List)
	if !ok || len(fluentList.Items) == 0 {
		return nil, perr.ParseErrorAt(file, list.Items[1].Pos().Line, "expected numeric fluent reference")
	}
	fluentName, ok := sexpr.AsSymbol(fluentList.Items[0])
	if !ok {
		return nil, perr.ParseErrorAt(file, fluentList.Pos().Line, "expected fluent name")
	}
	args := make([]cond.Term, 0, len(fluentList.Items)-1)
	for _, it := range fluentList.Items[1:] {
		t, err := buildTerm(it, scope, file)
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}
	amount := 0.0
	if a, ok := list.Items[2].(*sexpr.Atom); ok && a.IsNumber() {
		v, err := strconv.ParseFloat(a.Text(), 64)
		if err != nil {
			return nil, perr.ParseErrorAt(file, a.Token.Line, "malformed number %q", a.Raw())
		}
		amount = v
	}
	return &cond.Increase{Fluent: canon(fluentName), Args: args, Amount: amount}, nil
}

func buildGround(predicate string, argExprs []sexpr.Expr, scope *varScope, file string) (cond.Condition, error) {
	predicate = canon(predicate)
	args := make([]cond.Term, 0, len(argExprs))
	for _, a := range argExprs {
		t, err := buildTerm(a, scope, file)
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}
	return &cond.Ground{Predicate: predicate, Args: args}, nil
}

func buildTerm(e sexpr.Expr, scope *varScope, file string) (cond.Term, error) {
	a, ok := e.(*sexpr.Atom)
	if !ok {
		return cond.Term{}, perr.ParseErrorAt(file, e.Pos().Line, "expected a name or variable")
	}
	if a.IsVariable() {
		idx, ok := scope.resolve(a.Text())
		if !ok {
			return cond.Term{}, perr.ParseErrorAt(file, a.Token.Line, "unbound variable %q", a.Raw())
		}
		return cond.BoundTerm(idx), nil
	}
	return cond.ConstantTerm(canon(a.Text())), nil
}
