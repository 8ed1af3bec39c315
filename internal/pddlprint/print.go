// Package pddlprint implements the canonical PDDL pretty-printer of
// spec.md §6: it renders a synthesised pddlenv.Env and pddlenv.Instance
// back to PDDL source text, in the same insertion order the Env itself
// preserves, so two runs over equivalent input produce byte-identical
// output (spec.md §5's determinism requirement extended to the printer).
package pddlprint

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/concurrent-pddl/compiler/internal/cond"
	"github.com/concurrent-pddl/compiler/internal/config"
	"github.com/concurrent-pddl/compiler/internal/pddlenv"
)

// Domain renders env as a complete (define (domain ...) ...) form.
func Domain(name string, env *pddlenv.Env) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(define (domain %s)\n", name)
	fmt.Fprintf(&b, "  (:requirements %s)\n", strings.Join(config.OutputRequirements, " "))
	writeTypes(&b, env)
	writeConstants(&b, env)
	writePredicates(&b, env)
	for _, a := range env.Actions() {
		writeAction(&b, env, a)
	}
	b.WriteString(")\n")
	return b.String()
}

func writeTypes(b *strings.Builder, env *pddlenv.Env) {
	types := env.Types()
	if len(types) <= 1 { // only the implicit OBJECT root
		return
	}
	b.WriteString("  (:types")
	byParent := map[string][]string{}
	for _, t := range types {
		if t.Name == pddlenv.RootType {
			continue
		}
		byParent[t.Parent] = append(byParent[t.Parent], t.Name)
	}
	for _, t := range types {
		children := byParent[t.Name]
		if len(children) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n    %s - %s", strings.Join(children, " "), t.Name)
	}
	b.WriteString(")\n")
}

func writeConstants(b *strings.Builder, env *pddlenv.Env) {
	consts := env.Constants()
	if len(consts) == 0 {
		return
	}
	b.WriteString("  (:constants")
	byType := map[string][]string{}
	var order []string
	for _, c := range consts {
		if _, ok := byType[c.TypeName]; !ok {
			order = append(order, c.TypeName)
		}
		byType[c.TypeName] = append(byType[c.TypeName], c.Name)
	}
	for _, t := range order {
		fmt.Fprintf(b, "\n    %s - %s", strings.Join(byType[t], " "), t)
	}
	b.WriteString(")\n")
}

func writePredicates(b *strings.Builder, env *pddlenv.Env) {
	preds := env.Predicates()
	if len(preds) == 0 {
		return
	}
	b.WriteString("  (:predicates\n")
	for _, p := range preds {
		fmt.Fprintf(b, "    (%s%s)\n", p.Name, renderTypedParams(p.ParamTypes))
	}
	b.WriteString("  )\n")
}

func renderTypedParams(paramTypes []string) string {
	var b strings.Builder
	for i, t := range paramTypes {
		fmt.Fprintf(&b, " ?x%d - %s", i, t)
	}
	return b.String()
}

func writeAction(b *strings.Builder, env *pddlenv.Env, a *pddlenv.Action) {
	fmt.Fprintf(b, "\n  (:action %s\n", a.Name)
	fmt.Fprintf(b, "   :parameters (%s)\n", strings.TrimPrefix(renderTypedParams(a.ParamTypes), " "))
	pr := &printer{next: len(a.ParamTypes)}
	fmt.Fprintf(b, "   :precondition %s\n", pr.render(a.Precondition))
	fmt.Fprintf(b, "   :effect %s\n", pr.render(a.Effect))
	b.WriteString("  )\n")
}

// printer renders a cond.Condition tree back to PDDL text, naming bound
// terms "?xN" to match the synthetic parameter names writeAction emits —
// the compiler never round-trips a source file's original variable
// names: bound terms are flat indices (spec.md §3), and quantifier
// parameters are printed as "?xN" by the index they occupy, not by the
// source name a cond.Param carries.
type printer struct {
	// next is the flat index the next quantifier parameter occupies: the
	// action's parameter count plus every enclosing quantifier's.
	next int
}

func (p *printer) render(c cond.Condition) string {
	switch n := c.(type) {
	case nil:
		return "()"
	case *cond.And:
		if len(n.Children) == 0 {
			return "()"
		}
		if len(n.Children) == 1 {
			return p.render(n.Children[0])
		}
		parts := make([]string, len(n.Children))
		for i, ch := range n.Children {
			parts[i] = p.render(ch)
		}
		return "(and " + strings.Join(parts, " ") + ")"
	case *cond.Or:
		return fmt.Sprintf("(or %s %s)", p.render(n.Left), p.render(n.Right))
	case *cond.Not:
		return fmt.Sprintf("(not %s)", p.render(n.Child))
	case *cond.Exists:
		return p.renderQuantifier("exists", n.Params, n.Body)
	case *cond.Forall:
		return p.renderQuantifier("forall", n.Params, n.Body)
	case *cond.When:
		return fmt.Sprintf("(when %s %s)", p.render(n.Guard), p.render(n.Effect))
	case *cond.Ground:
		return fmt.Sprintf("(%s%s)", n.Predicate, p.renderArgs(n.Args))
	case *cond.Equals:
		return fmt.Sprintf("(= %s %s)", p.renderTerm(n.Lhs), p.renderTerm(n.Rhs))
	case *cond.Increase:
		return fmt.Sprintf("(increase (%s%s) %s)", n.Fluent, p.renderArgs(n.Args), strconv.FormatFloat(n.Amount, 'g', -1, 64))
	default:
		return "()"
	}
}

func (p *printer) renderQuantifier(kw string, params []cond.Param, body cond.Condition) string {
	ps := p.renderParams(params)
	p.next += len(params)
	rendered := p.render(body)
	p.next -= len(params)
	return fmt.Sprintf("(%s (%s) %s)", kw, ps, rendered)
}

func (p *printer) renderParams(params []cond.Param) string {
	parts := make([]string, len(params))
	for i, pm := range params {
		parts[i] = fmt.Sprintf("?x%d - %s", p.next+i, pm.TypeName)
	}
	return strings.Join(parts, " ")
}

func (p *printer) renderArgs(args []cond.Term) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(p.renderTerm(a))
	}
	return b.String()
}

func (p *printer) renderTerm(t cond.Term) string {
	if t.IsConstant {
		return t.ConstantName
	}
	return fmt.Sprintf("?x%d", t.Index)
}

// Instance renders inst as a complete (define (problem ...) ...) form.
func Instance(inst *pddlenv.Instance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(define (problem %s)\n", inst.Name)
	fmt.Fprintf(&b, "  (:domain %s)\n", inst.Domain)
	writeObjects(&b, inst)
	writeInit(&b, inst)
	writeGoal(&b, inst)
	if inst.Metric != "" {
		fmt.Fprintf(&b, "  (:metric %s)\n", inst.Metric)
	}
	b.WriteString(")\n")
	return b.String()
}

func writeObjects(b *strings.Builder, inst *pddlenv.Instance) {
	if len(inst.Objects) == 0 {
		return
	}
	b.WriteString("  (:objects")
	byType := map[string][]string{}
	var order []string
	for _, o := range inst.Objects {
		if _, ok := byType[o.TypeName]; !ok {
			order = append(order, o.TypeName)
		}
		byType[o.TypeName] = append(byType[o.TypeName], o.Name)
	}
	for _, t := range order {
		fmt.Fprintf(b, "\n    %s - %s", strings.Join(byType[t], " "), t)
	}
	b.WriteString(")\n")
}

func writeInit(b *strings.Builder, inst *pddlenv.Instance) {
	b.WriteString("  (:init\n")
	for _, a := range inst.Init {
		writeAtom(b, a)
	}
	b.WriteString("  )\n")
}

func writeGoal(b *strings.Builder, inst *pddlenv.Instance) {
	b.WriteString("  (:goal (and\n")
	for _, a := range inst.Goal {
		writeAtomGoal(b, a)
	}
	b.WriteString("  ))\n")
}

func writeAtom(b *strings.Builder, a pddlenv.Atom) {
	if a.IsNumeric {
		fmt.Fprintf(b, "    (= (%s%s) %s)\n", a.Predicate, argList(a.Args), strconv.FormatFloat(a.Value, 'g', -1, 64))
		return
	}
	fmt.Fprintf(b, "    (%s%s)\n", a.Predicate, argList(a.Args))
}

func writeAtomGoal(b *strings.Builder, a pddlenv.Atom) {
	fmt.Fprintf(b, "    (%s%s)\n", a.Predicate, argList(a.Args))
}

func argList(args []string) string {
	var b strings.Builder
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	return b.String()
}
