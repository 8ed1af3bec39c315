package pddlparse

import (
	"fmt"

	"github.com/concurrent-pddl/compiler/internal/cond"
	"github.com/concurrent-pddl/compiler/internal/config"
	"github.com/concurrent-pddl/compiler/internal/network"
	"github.com/concurrent-pddl/compiler/internal/pddlenv"
	"github.com/concurrent-pddl/compiler/internal/perr"
	"github.com/concurrent-pddl/compiler/internal/sexpr"
)

// Domain is the result of parsing a (define (domain ...) ...) form: the
// populated Type & Symbol Environment, the declared requirements, and —
// only for a :concurrency-network domain — the concurrency Network.
type Domain struct {
	Name         string
	Env          *pddlenv.Env
	Requirements []string
	Network      *network.Network // nil unless :concurrency-network is declared
}

// ParseDomain parses a full PDDL domain file's source text.
func ParseDomain(src, file string) (*Domain, error) {
	r := sexpr.NewReader(src)
	top := r.ReadAll()
	if errs := r.Errors(); len(errs) > 0 {
		return nil, perr.ParseErrorAt(file, errs[0].Line, errs[0].Msg)
	}
	if len(top) == 0 {
		return nil, perr.ParseErrorAt(file, 0, "empty domain file")
	}
	root, ok := top[0].(*sexpr.List)
	if !ok || len(root.Items) == 0 || !sexpr.IsKeyword(root.Items[0], "define") {
		return nil, perr.ParseErrorAt(file, top[0].Pos().Line, "expected (define (domain ...) ...)")
	}

	d := &Domain{Env: pddlenv.New()}
	var agentClause []typedItem
	var requiresNetwork bool
	var pendingActions []*sexpr.List

	for _, sec := range root.Items[1:] {
		list, ok := sec.(*sexpr.List)
		if !ok || len(list.Items) == 0 {
			continue
		}
		headExpr := list.Items[0]
		if nameList, ok := headExpr.(*sexpr.List); ok && sexpr.IsKeyword(nameList.Items[0], "domain") {
			if len(nameList.Items) > 1 {
				name, _ := sexpr.AsSymbol(nameList.Items[1])
				d.Name = name
			}
			continue
		}
		kw, ok := sexpr.AsSymbol(headExpr)
		if !ok {
			continue
		}
		switch kw {
		case ":requirements":
			for _, it := range list.Items[1:] {
				s, ok := sexpr.AsSymbol(it)
				if !ok {
					continue
				}
				req := s
				d.Requirements = append(d.Requirements, req)
				if req == config.ReqConcurrencyNetwork {
					requiresNetwork = true
				}
			}
		case ":types":
			if err := parseTypes(d.Env, list.Items[1:], file); err != nil {
				return nil, err
			}
		case ":constants":
			if err := parseConstants(d.Env, list.Items[1:], file); err != nil {
				return nil, err
			}
		case ":predicates":
			if err := parsePredicateList(d.Env, list.Items[1:], file); err != nil {
				return nil, err
			}
		case ":agent":
			items, err := parseTypedList(list.Items[1:], file, "OBJECT")
			if err != nil {
				return nil, err
			}
			agentClause = items
		case ":action":
			pendingActions = append(pendingActions, list)
		case ":concurrency-constraint":
			requiresNetwork = true
		}
	}

	for _, name := range agentClause {
		if _, ok := d.Env.LookupType(canon(name.TypeName)); !ok {
			if _, err := d.Env.CreateType(canon(name.TypeName), ""); err != nil {
				return nil, err
			}
		}
	}

	for _, a := range pendingActions {
		if err := parseAction(d.Env, a, file); err != nil {
			return nil, err
		}
	}

	if requiresNetwork {
		net, err := parseNetworkSection(d.Env, root.Items[1:], file)
		if err != nil {
			return nil, err
		}
		d.Network = net
	}

	return d, nil
}

func parseTypes(env *pddlenv.Env, items []sexpr.Expr, file string) error {
	typed, err := parseTypedList(items, file, "OBJECT")
	if err != nil {
		return err
	}
	for _, t := range typed {
		parent := canon(t.TypeName)
		if _, ok := env.LookupType(parent); !ok {
			if _, err := env.CreateType(parent, ""); err != nil {
				return err
			}
		}
		name := canon(t.Name)
		if _, ok := env.LookupType(name); ok {
			continue
		}
		if _, err := env.CreateType(name, parent); err != nil {
			return err
		}
	}
	return nil
}

func parseConstants(env *pddlenv.Env, items []sexpr.Expr, file string) error {
	typed, err := parseTypedList(items, file, "OBJECT")
	if err != nil {
		return err
	}
	for _, c := range typed {
		if _, err := env.CreateConstant(canon(c.Name), canon(c.TypeName)); err != nil {
			return err
		}
	}
	return nil
}

func parsePredicateList(env *pddlenv.Env, items []sexpr.Expr, file string) error {
	for _, it := range items {
		list, ok := it.(*sexpr.List)
		if !ok || len(list.Items) == 0 {
			return perr.ParseErrorAt(file, it.Pos().Line, "expected (predicate-name params...)")
		}
		name, ok := sexpr.AsSymbol(list.Items[0])
		if !ok {
			return perr.ParseErrorAt(file, list.Pos().Line, "expected predicate name")
		}
		params, err := parseTypedList(list.Items[1:], file, "OBJECT")
		if err != nil {
			return err
		}
		paramTypes := make([]string, len(params))
		for i, p := range params {
			paramTypes[i] = canon(p.TypeName)
		}
		if _, err := env.CreatePredicate(canon(name), paramTypes); err != nil {
			return err
		}
	}
	return nil
}

func parseAction(env *pddlenv.Env, list *sexpr.List, file string) error {
	if len(list.Items) < 2 {
		return perr.ParseErrorAt(file, list.Pos().Line, ":action missing a name")
	}
	name, ok := sexpr.AsSymbol(list.Items[1])
	if !ok {
		return perr.ParseErrorAt(file, list.Items[1].Pos().Line, "expected action name")
	}

	var paramItems []typedItem
	var preExpr, effExpr sexpr.Expr
	multiAgent := false

	i := 2
	for i < len(list.Items) {
		kw, ok := sexpr.AsSymbol(list.Items[i])
		if !ok {
			i++
			continue
		}
		switch kw {
		case ":parameters":
			i++
			if i >= len(list.Items) {
				return perr.ParseErrorAt(file, list.Pos().Line, ":parameters missing a value")
			}
			pl, ok := list.Items[i].(*sexpr.List)
			if !ok {
				return perr.ParseErrorAt(file, list.Items[i].Pos().Line, "expected parameter list")
			}
			params, err := parseTypedList(pl.Items, file, "OBJECT")
			if err != nil {
				return err
			}
			paramItems = params
			i++
		case ":agent":
			multiAgent = true
			i++
		case ":precondition":
			i++
			if i >= len(list.Items) {
				return perr.ParseErrorAt(file, list.Pos().Line, ":precondition missing a value")
			}
			preExpr = list.Items[i]
			i++
		case ":effect":
			i++
			if i >= len(list.Items) {
				return perr.ParseErrorAt(file, list.Pos().Line, ":effect missing a value")
			}
			effExpr = list.Items[i]
			i++
		default:
			i++
		}
	}

	paramTypes := make([]string, len(paramItems))
	paramNames := make([]string, len(paramItems))
	for i, p := range paramItems {
		paramTypes[i] = canon(p.TypeName)
		paramNames[i] = p.Name
	}

	action, err := env.CreateAction(canon(name), paramTypes, multiAgent)
	if err != nil {
		return err
	}

	scope := newVarScope(paramNames)
	if preExpr != nil {
		pre, err := buildCondition(preExpr, scope, file)
		if err != nil {
			return err
		}
		if and, ok := pre.(*cond.And); ok {
			action.Precondition.Children = and.Children
		} else {
			action.Precondition.Children = []cond.Condition{pre}
		}
	}
	if effExpr != nil {
		eff, err := buildEffect(effExpr, scope, file)
		if err != nil {
			return err
		}
		if and, ok := eff.(*cond.And); ok {
			action.Effect.Children = and.Children
		} else {
			action.Effect.Children = []cond.Condition{eff}
		}
	}
	return nil
}

func parseNetworkSection(env *pddlenv.Env, sections []sexpr.Expr, file string) (*network.Network, error) {
	net := network.New()
	byName := map[string]int{}

	for _, sec := range sections {
		list, ok := sec.(*sexpr.List)
		if !ok || len(list.Items) == 0 {
			continue
		}
		if !sexpr.IsKeyword(list.Items[0], "concurrency-constraint") {
			continue
		}
		if len(list.Items) < 2 {
			return nil, perr.ParseErrorAt(file, list.Pos().Line, ":concurrency-constraint missing a name")
		}
		name, ok := sexpr.AsSymbol(list.Items[1])
		if !ok {
			return nil, perr.ParseErrorAt(file, list.Items[1].Pos().Line, "expected node name")
		}
		node, err := parseNetworkNode(env, canon(name), list.Items[2:], file)
		if err != nil {
			return nil, err
		}
		idx := net.AddNode(node.Name, node.ParamTypes, node.Lower, node.Upper)
		idx.Templates = node.Templates
		byName[node.Name] = idx.Id
	}

	for _, sec := range sections {
		list, ok := sec.(*sexpr.List)
		if !ok || len(list.Items) == 0 || !sexpr.IsKeyword(list.Items[0], "positive-dependence") {
			continue
		}
		if len(list.Items) != 3 {
			return nil, perr.ParseErrorAt(file, list.Pos().Line, "(:positive-dependence from to) takes exactly two node names")
		}
		fromName, _ := sexpr.AsSymbol(list.Items[1])
		toName, _ := sexpr.AsSymbol(list.Items[2])
		from, ok := byName[canon(fromName)]
		if !ok {
			return nil, perr.UnknownSymbol("concurrency node", fromName)
		}
		to, ok := byName[canon(toName)]
		if !ok {
			return nil, perr.UnknownSymbol("concurrency node", toName)
		}
		net.AddEdge(from, to)
	}

	return net, nil
}

type parsedNode struct {
	Name       string
	ParamTypes []string
	Lower      int
	Upper      int
	Templates  []network.ActionTemplate
}

func parseNetworkNode(env *pddlenv.Env, name string, items []sexpr.Expr, file string) (*parsedNode, error) {
	n := &parsedNode{Name: name, Lower: 1, Upper: 1}
	i := 0
	for i < len(items) {
		kw, ok := sexpr.AsSymbol(items[i])
		if !ok {
			i++
			continue
		}
		switch kw {
		case ":parameters":
			i++
			pl, ok := items[i].(*sexpr.List)
			if !ok {
				return nil, perr.ParseErrorAt(file, items[i].Pos().Line, "expected node parameter list")
			}
			typed, err := parseTypedList(pl.Items, file, "OBJECT")
			if err != nil {
				return nil, err
			}
			n.ParamTypes = make([]string, len(typed))
			for j, t := range typed {
				n.ParamTypes[j] = canon(t.TypeName)
			}
			i++
		case ":arity":
			i++
			bounds, ok := items[i].(*sexpr.List)
			if !ok || len(bounds.Items) != 2 {
				return nil, perr.ParseErrorAt(file, items[i].Pos().Line, "expected (:arity lower upper)")
			}
			lo, err := parseBound(bounds.Items[0], file)
			if err != nil {
				return nil, err
			}
			hi, err := parseBound(bounds.Items[1], file)
			if err != nil {
				return nil, err
			}
			n.Lower, n.Upper = lo, hi
			i++
		case ":templates":
			i++
			tl, ok := items[i].(*sexpr.List)
			if !ok {
				return nil, perr.ParseErrorAt(file, items[i].Pos().Line, "expected template list")
			}
			for _, te := range tl.Items {
				tmpl, err := parseTemplate(te, file)
				if err != nil {
					return nil, err
				}
				n.Templates = append(n.Templates, tmpl)
			}
			i++
		default:
			i++
		}
	}
	return n, nil
}

func parseBound(e sexpr.Expr, file string) (int, error) {
	a, ok := e.(*sexpr.Atom)
	if !ok {
		return 0, perr.ParseErrorAt(file, e.Pos().Line, "expected a bound")
	}
	if s, ok := sexpr.AsSymbol(e); ok && (s == "inf" || s == "infinity" || s == "*") {
		return config.InfinityBound, nil
	}
	var v int
	if _, err := fmt.Sscanf(a.Text(), "%d", &v); err != nil {
		return 0, perr.ParseErrorAt(file, a.Token.Line, "malformed bound %q", a.Raw())
	}
	return v, nil
}

// parseTemplate reads a single "(action-name i0 i1 ...)" template entry
// where each i-th integer names the node-parameter index that the
// action's own i-th parameter is bound to.
func parseTemplate(e sexpr.Expr, file string) (network.ActionTemplate, error) {
	list, ok := e.(*sexpr.List)
	if !ok || len(list.Items) == 0 {
		return network.ActionTemplate{}, perr.ParseErrorAt(file, e.Pos().Line, "expected (action-name mapping...)")
	}
	name, ok := sexpr.AsSymbol(list.Items[0])
	if !ok {
		return network.ActionTemplate{}, perr.ParseErrorAt(file, list.Pos().Line, "expected action name")
	}
	mapping := make([]int, 0, len(list.Items)-1)
	for _, m := range list.Items[1:] {
		var v int
		a, ok := m.(*sexpr.Atom)
		if !ok {
			return network.ActionTemplate{}, perr.ParseErrorAt(file, m.Pos().Line, "expected integer param mapping")
		}
		if _, err := fmt.Sscanf(a.Text(), "%d", &v); err != nil {
			return network.ActionTemplate{}, perr.ParseErrorAt(file, a.Token.Line, "malformed param mapping %q", a.Raw())
		}
		mapping = append(mapping, v)
	}
	return network.ActionTemplate{ActionName: canon(name), ParamMap: mapping}, nil
}
