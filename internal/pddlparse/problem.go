package pddlparse

import (
	"strconv"

	"github.com/concurrent-pddl/compiler/internal/pddlenv"
	"github.com/concurrent-pddl/compiler/internal/perr"
	"github.com/concurrent-pddl/compiler/internal/sexpr"
)

// ParseProblem parses a (define (problem ...) (:domain ...) ...) form
// into a pddlenv.Instance. Objects are declared against env so later
// lookups (e.g. agent-count enumeration in cmd/serializecn) see them as
// regular constants alongside any domain-level :constants.
func ParseProblem(src, file string, env *pddlenv.Env) (*pddlenv.Instance, error) {
	r := sexpr.NewReader(src)
	top := r.ReadAll()
	if errs := r.Errors(); len(errs) > 0 {
		return nil, perr.ParseErrorAt(file, errs[0].Line, errs[0].Msg)
	}
	if len(top) == 0 {
		return nil, perr.ParseErrorAt(file, 0, "empty problem file")
	}
	root, ok := top[0].(*sexpr.List)
	if !ok || len(root.Items) == 0 || !sexpr.IsKeyword(root.Items[0], "define") {
		return nil, perr.ParseErrorAt(file, top[0].Pos().Line, "expected (define (problem ...) ...)")
	}

	inst := &pddlenv.Instance{}
	for _, sec := range root.Items[1:] {
		list, ok := sec.(*sexpr.List)
		if !ok || len(list.Items) == 0 {
			continue
		}
		if nameList, ok := list.Items[0].(*sexpr.List); ok && sexpr.IsKeyword(nameList.Items[0], "problem") {
			if len(nameList.Items) > 1 {
				name, _ := sexpr.AsSymbol(nameList.Items[1])
				inst.Name = name
			}
			continue
		}
		kw, ok := sexpr.AsSymbol(list.Items[0])
		if !ok {
			continue
		}
		switch kw {
		case ":domain":
			if len(list.Items) > 1 {
				name, _ := sexpr.AsSymbol(list.Items[1])
				inst.Domain = name
			}
		case ":objects":
			if err := parseObjects(env, inst, list.Items[1:], file); err != nil {
				return nil, err
			}
		case ":init":
			if err := parseAtomList(list.Items[1:], file, func(a pddlenv.Atom) { inst.Init = append(inst.Init, a) }); err != nil {
				return nil, err
			}
		case ":goal":
			if len(list.Items) < 2 {
				return nil, perr.ParseErrorAt(file, list.Pos().Line, ":goal missing a value")
			}
			goalList, ok := list.Items[1].(*sexpr.List)
			if !ok {
				return nil, perr.ParseErrorAt(file, list.Items[1].Pos().Line, "expected goal condition")
			}
			body := goalList.Items
			if sexpr.IsKeyword(goalList.Items[0], "and") {
				body = goalList.Items[1:]
			} else {
				body = []sexpr.Expr{goalList}
			}
			if err := parseAtomList(body, file, func(a pddlenv.Atom) { inst.Goal = append(inst.Goal, a) }); err != nil {
				return nil, err
			}
		case ":metric":
			inst.Metric = renderMetric(list)
		}
	}
	return inst, nil
}

func parseObjects(env *pddlenv.Env, inst *pddlenv.Instance, items []sexpr.Expr, file string) error {
	typed, err := parseTypedList(items, file, "OBJECT")
	if err != nil {
		return err
	}
	for _, t := range typed {
		name, typeName := canon(t.Name), canon(t.TypeName)
		if _, ok := env.LookupConstant(name); ok {
			continue
		}
		c, err := env.CreateConstant(name, typeName)
		if err != nil {
			return err
		}
		inst.Objects = append(inst.Objects, c)
	}
	return nil
}

func parseAtomList(items []sexpr.Expr, file string, emit func(pddlenv.Atom)) error {
	for _, it := range items {
		list, ok := it.(*sexpr.List)
		if !ok || len(list.Items) == 0 {
			return perr.ParseErrorAt(file, it.Pos().Line, "expected (predicate args...) atom")
		}
		if sexpr.IsKeyword(list.Items[0], "=") {
			if len(list.Items) != 3 {
				return perr.ParseErrorAt(file, list.Pos().Line, "(= (fluent args...) value) malformed")
			}
			fluentList, ok := list.Items[1].(*sexpr.List)
			if !ok || len(fluentList.Items) == 0 {
				return perr.ParseErrorAt(file, list.Items[1].Pos().Line, "expected numeric fluent reference")
			}
			fluentName, _ := sexpr.AsSymbol(fluentList.Items[0])
			args := atomArgs(fluentList.Items[1:])
			valAtom, ok := list.Items[2].(*sexpr.Atom)
			if !ok || !valAtom.IsNumber() {
				return perr.ParseErrorAt(file, list.Items[2].Pos().Line, "expected numeric value")
			}
			v, err := strconv.ParseFloat(valAtom.Text(), 64)
			if err != nil {
				return perr.ParseErrorAt(file, valAtom.Token.Line, "malformed number %q", valAtom.Raw())
			}
			emit(pddlenv.Atom{Predicate: canon(fluentName), Args: args, IsNumeric: true, Value: v})
			continue
		}
		name, ok := sexpr.AsSymbol(list.Items[0])
		if !ok {
			return perr.ParseErrorAt(file, list.Pos().Line, "expected predicate name")
		}
		emit(pddlenv.Atom{Predicate: canon(name), Args: atomArgs(list.Items[1:])})
	}
	return nil
}

func atomArgs(items []sexpr.Expr) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := sexpr.AsSymbol(it); ok {
			out = append(out, canon(s))
		}
	}
	return out
}

// renderMetric stores the raw :metric form's source text verbatim; this
// compiler never interprets the metric expression, only carries it
// through to the synthesised instance unchanged.
func renderMetric(list *sexpr.List) string {
	var b []byte
	var walk func(e sexpr.Expr)
	walk = func(e sexpr.Expr) {
		switch n := e.(type) {
		case *sexpr.Atom:
			b = append(b, n.Raw()...)
			b = append(b, ' ')
		case *sexpr.List:
			b = append(b, '(')
			for _, it := range n.Items {
				walk(it)
			}
			b = append(b, ')')
		}
	}
	for _, it := range list.Items[1:] {
		walk(it)
	}
	return string(b)
}
