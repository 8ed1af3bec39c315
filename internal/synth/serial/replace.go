package serial

import (
	"github.com/concurrent-pddl/compiler/internal/classify"
	"github.com/concurrent-pddl/compiler/internal/cond"
)

// Replace rewrites every Ground in c whose predicate is a concurrency
// predicate to prefix+name, wrapping the rewritten atom in Not iff
// negate; every other node is recursed into structurally and left
// otherwise unchanged (spec.md §4.5's `replace(cond, prefix, negate)`).
//
// It mutates c in place and returns it (or, for a rewritten Ground under
// negate, a fresh wrapping Not) — grounded directly on the original
// compiler's replaceConcurrencyPredicates. Every call site first deep
// copies its input via cond.Copy so that two independent uses of the
// same classified condition (spec.md §9's open question: SELECT-A's
// precondition and effect, and END-A's effect, each rewrite the same
// negative-concurrency condition under a different prefix) never observe
// each other's mutation.
func Replace(c cond.Condition, prefix string, negate bool, isConcurrency classify.IsConcurrencyPredicate) cond.Condition {
	switch n := c.(type) {
	case nil:
		return nil
	case *cond.And:
		for i, ch := range n.Children {
			n.Children[i] = Replace(ch, prefix, negate, isConcurrency)
		}
		return n
	case *cond.Or:
		n.Left = Replace(n.Left, prefix, negate, isConcurrency)
		n.Right = Replace(n.Right, prefix, negate, isConcurrency)
		return n
	case *cond.Not:
		n.Child = Replace(n.Child, prefix, negate, isConcurrency)
		return n
	case *cond.Exists:
		n.Body = Replace(n.Body, prefix, negate, isConcurrency)
		return n
	case *cond.Forall:
		n.Body = Replace(n.Body, prefix, negate, isConcurrency)
		return n
	case *cond.When:
		n.Guard = Replace(n.Guard, prefix, negate, isConcurrency)
		n.Effect = Replace(n.Effect, prefix, negate, isConcurrency)
		return n
	case *cond.Ground:
		if isConcurrency(n.Predicate) {
			n.Predicate = prefix + n.Predicate
			if negate {
				return &cond.Not{Child: n}
			}
		}
		return n
	case *cond.Equals, *cond.Increase:
		return c
	default:
		return c
	}
}
