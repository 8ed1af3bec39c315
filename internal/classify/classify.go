// Package classify implements the Condition Classifier of spec.md §4.4
// (component C4): given an action's precondition or effect (an
// *cond.And), it partitions the ground atoms it contains into three
// buckets — Normal, PosConc, NegConc — preserving any Exists/Forall
// wrapper the atom was nested under.
//
// The algorithm is grounded directly on the original compiler's
// ConditionClassification machinery (getDominantGroundTypeForCondition,
// createFullNestedCondition, isGroundClassified, getNestedConditionsForGround,
// classifyGround, getClassifiedConditions): a running param-id allocator
// walks the tree in the same pre-order as internal/cond.Walk, recording
// which Exists/Forall frame introduced each non-action parameter, so that
// a ground atom nested several quantifiers deep can be rewrapped in only
// the frames it actually needs, and an Exists already reconstructed once
// is never reconstructed for a second atom nested under it.
package classify

import (
	"sort"

	"github.com/concurrent-pddl/compiler/internal/cond"
)

// Result holds the three output buckets of spec.md §4.4.
type Result struct {
	// Normal holds conditions kept as ordinary classical-domain
	// conjuncts: ground atoms over non-concurrency predicates, either
	// positive or wrapped back in Not when the source atom was negated.
	Normal []cond.Condition
	// PosConc holds positive references to concurrency predicates —
	// "this agent's action is the one executing" markers — still
	// wrapped in whatever Exists/Forall the source atom was nested
	// under.
	PosConc []cond.Condition
	// NegConc holds negated references to concurrency predicates —
	// "this agent's action is not the one executing".
	NegConc []cond.Condition
}

// IsConcurrencyPredicate reports whether name is a concurrency predicate
// in the environment being classified against. classify has no
// dependency on internal/pddlenv; callers close over whatever table
// they're working with.
type IsConcurrencyPredicate func(name string) bool

// Classify partitions cnd according to spec.md §4.4. numActionParams is
// the number of parameters the enclosing action declares; any Term.Index
// at or above it was introduced by a nested Exists or Forall.
func Classify(cnd cond.Condition, numActionParams int, isConcurrency IsConcurrencyPredicate) Result {
	s := &state{
		isConcurrency:   isConcurrency,
		numActionParams: numActionParams,
		lastParamID:     numActionParams - 1,
		paramToCond:     make(map[int]cond.Condition),
		checked:         make(map[cond.Condition]bool),
	}
	s.walk(cnd)
	return s.result
}

type state struct {
	isConcurrency   IsConcurrencyPredicate
	numActionParams int
	lastParamID     int
	paramToCond     map[int]cond.Condition
	checked         map[cond.Condition]bool
	result          Result
}

// walk mirrors getClassifiedConditions: it descends And/Exists/Forall
// structurally, threading the param-id allocator, and hands every Ground
// or Not-of-Ground leaf it finds to classifyGround.
func (s *state) walk(c cond.Condition) {
	switch n := c.(type) {
	case nil:
		return
	case *cond.And:
		for _, ch := range n.Children {
			s.walk(ch)
		}
	case *cond.Exists:
		s.enterFrame(len(n.Params), n)
		s.walk(n.Body)
		s.leaveFrame(len(n.Params))
	case *cond.Forall:
		s.enterFrame(len(n.Params), n)
		s.walk(n.Body)
		s.leaveFrame(len(n.Params))
	case *cond.Ground:
		category := 2
		if s.isConcurrency(n.Predicate) {
			category = 1
		}
		s.classifyGround(n, category)
	case *cond.Not:
		if ng, ok := n.Child.(*cond.Ground); ok {
			category := -2
			if s.isConcurrency(ng.Predicate) {
				category = -1
			}
			s.classifyGround(ng, category)
		} else {
			s.walk(n.Child)
		}
	}
}

func (s *state) enterFrame(size int, owner cond.Condition) {
	for i := 0; i < size; i++ {
		s.lastParamID++
		s.paramToCond[s.lastParamID] = owner
	}
}

func (s *state) leaveFrame(size int) {
	s.lastParamID -= size
}

// classifyGround is classifyGround: skip an already-classified atom
// (one nested under an Exists already reconstructed for a sibling
// atom), otherwise bucket it directly or rebuild its quantifier wrapper
// first.
func (s *state) classifyGround(g *cond.Ground, groundType int) {
	if s.isGroundClassified(g) {
		return
	}
	nested := s.nestedConditionsFor(g)
	if len(nested) == 0 {
		s.bucket(groundType, cond.MustCopy(g, nil))
		return
	}
	wrapped, finalType := s.wrapNested(g, groundType, nested)
	s.bucket(finalType, wrapped)
}

func (s *state) bucket(groundType int, c cond.Condition) {
	switch groundType {
	case -2:
		if _, isNot := c.(*cond.Not); isNot {
			s.result.Normal = append(s.result.Normal, c)
		} else {
			s.result.Normal = append(s.result.Normal, &cond.Not{Child: c})
		}
	case -1:
		s.result.NegConc = append(s.result.NegConc, c)
	case 1:
		s.result.PosConc = append(s.result.PosConc, c)
	case 2:
		s.result.Normal = append(s.result.Normal, c)
	}
}

// isGroundClassified is isGroundClassified: true if any non-action
// parameter of g was introduced by an Exists/Forall that has already
// been fully emitted for another atom.
func (s *state) isGroundClassified(g *cond.Ground) bool {
	for _, t := range g.Args {
		if t.IsConstant || t.Index < s.numActionParams {
			continue
		}
		if owner, ok := s.paramToCond[t.Index]; ok && s.checked[owner] {
			return true
		}
	}
	return false
}

// nestedConditionsFor is getNestedConditionsForGround: the distinct
// Exists/Forall nodes binding g's non-action parameters, outward to
// inward, with consecutive duplicates collapsed (sorting the raw
// parameter indices respects nesting order, since frames are allocated
// in increasing order while descending).
func (s *state) nestedConditionsFor(g *cond.Ground) []cond.Condition {
	seen := map[int]bool{}
	for _, t := range g.Args {
		if !t.IsConstant && t.Index >= s.numActionParams {
			seen[t.Index] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	indices := make([]int, 0, len(seen))
	for idx := range seen {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	var out []cond.Condition
	var last cond.Condition
	for _, idx := range indices {
		owner := s.paramToCond[idx]
		if owner != last {
			out = append(out, owner)
			last = owner
		}
	}
	return out
}

// wrapNested is createFullNestedCondition: reconstruct the chain of
// Forall wrappers nested conditions describes, terminating either in a
// wholesale copy of an Exists (which already contains the ground atom,
// so nothing further is appended) or, for an all-Forall chain, in the
// ground atom itself appended to the innermost reconstructed And.
func (s *state) wrapNested(g *cond.Ground, groundType int, nested []cond.Condition) (cond.Condition, int) {
	var finalCond cond.Condition
	finalType := groundType
	var lastAnd *cond.And

	for _, nc := range nested {
		var newCond cond.Condition
		var currentAnd *cond.And

		switch n := nc.(type) {
		case *cond.Forall:
			body := &cond.And{}
			newCond = &cond.Forall{Params: append([]cond.Param(nil), n.Params...), Body: body}
			currentAnd = body
		case *cond.Exists:
			var ne *cond.Exists
			if _, isAnd := n.Body.(*cond.And); isAnd {
				ne = cond.MustCopy(n, nil).(*cond.Exists)
			} else {
				ne = &cond.Exists{
					Params: append([]cond.Param(nil), n.Params...),
					Body:   &cond.And{Children: []cond.Condition{cond.MustCopy(n.Body, nil)}},
				}
			}
			s.checked[nc] = true
			// A concurrency predicate found inside the Exists body can
			// promote the ground type away from the "normal" default.
			if groundType != -1 && groundType != 1 {
				finalType = dominantGroundType(n, s.isConcurrency)
			}
			newCond = ne
			currentAnd = nil
		}

		if newCond == nil {
			continue
		}
		if finalCond == nil {
			finalCond = newCond
		}
		if lastAnd != nil {
			lastAnd.Children = append(lastAnd.Children, newCond)
		}
		lastAnd = currentAnd
		if lastAnd == nil {
			break
		}
	}

	if lastAnd != nil {
		switch finalType {
		case -2:
			lastAnd.Children = append(lastAnd.Children, &cond.Not{Child: cond.MustCopy(g, nil)})
		default: // -1, 1, 2 all keep the bare (re-copied) ground atom
			lastAnd.Children = append(lastAnd.Children, cond.MustCopy(g, nil))
		}
	}

	return finalCond, finalType
}

// dominantGroundType is getDominantGroundTypeForCondition: the ground
// type of the first concurrency-predicate atom found while descending
// And/Exists/Forall/Not, or the last atom's type if none is found.
func dominantGroundType(c cond.Condition, isConcurrency IsConcurrencyPredicate) int {
	switch n := c.(type) {
	case *cond.And:
		result := 0
		for _, ch := range n.Children {
			result = dominantGroundType(ch, isConcurrency)
			if result == -1 || result == 1 {
				break
			}
		}
		return result
	case *cond.Exists:
		return dominantGroundType(n.Body, isConcurrency)
	case *cond.Forall:
		return dominantGroundType(n.Body, isConcurrency)
	case *cond.Not:
		if gn, ok := n.Child.(*cond.Ground); ok {
			if isConcurrency(gn.Predicate) {
				return -1
			}
			return -2
		}
		return 0
	case *cond.Ground:
		if isConcurrency(n.Predicate) {
			return 1
		}
		return 2
	default:
		return 0
	}
}
