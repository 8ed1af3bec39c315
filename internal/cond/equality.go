package cond

import "github.com/mitchellh/hashstructure/v2"

// Equal reports whether a and b are structurally identical (spec.md §3:
// "Equality and ordering of conditions are structural").
func Equal(a, b Condition) bool {
	ha, err := Hash(a)
	if err != nil {
		return false
	}
	hb, err := Hash(b)
	if err != nil {
		return false
	}
	return ha == hb
}

// Hash computes a structural hash of c using mitchellh/hashstructure,
// which walks exported struct fields recursively — exactly the shape
// every Condition variant already has, so no bespoke structural hasher is
// needed. It backs both Equal above and the idempotence check of spec.md
// §8 property 5 (re-classifying an action must reproduce identical
// (N, P⁻, P⁺) bucket hashes).
func Hash(c Condition) (uint64, error) {
	return hashstructure.Hash(c, hashstructure.FormatV2, nil)
}

// AsGround reports whether c is a bare Ground atom, returning it and
// polarity=true, or the negation of a Ground atom (spec.md §3's "Not
// wraps exactly one Ground wherever the classifier has to inspect
// polarity"), returning the Ground and polarity=false. ok is false for
// any other shape.
func AsGround(c Condition) (g *Ground, positive bool, ok bool) {
	switch n := c.(type) {
	case *Ground:
		return n, true, true
	case *Not:
		if inner, isGround := n.Child.(*Ground); isGround {
			return inner, false, true
		}
	}
	return nil, false, false
}
