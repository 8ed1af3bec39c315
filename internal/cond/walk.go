package cond

// Scope tracks, while walking a Condition tree, how many parameter slots
// are live at the current point: frames[0] is the number of the enclosing
// action's own parameters, and each subsequent entry is the parameter
// count of one more nested Exists/Forall frame, outward to inward (spec.md
// §4.2, §9). A raw Term.Index is resolved against this stack on demand
// rather than via a per-frame map, per the explicit design note in §9.
type Scope struct {
	frames []int
}

// NewScope starts a Scope for an action with the given number of
// top-level parameters.
func NewScope(numActionParams int) Scope {
	return Scope{frames: []int{numActionParams}}
}

// Push returns a new Scope with one more quantifier frame of size n
// nested inside the current one.
func (s Scope) Push(n int) Scope {
	frames := make([]int, len(s.frames)+1)
	copy(frames, s.frames)
	frames[len(s.frames)] = n
	return Scope{frames: frames}
}

// Depth returns the number of quantifier frames nested around the action
// parameters (0 at the action's own precondition/effect top level).
func (s Scope) Depth() int { return len(s.frames) - 1 }

// Total returns the number of distinct parameter indices visible at this
// point in the scope (action params plus every nested quantifier's
// params).
func (s Scope) Total() int {
	n := 0
	for _, f := range s.frames {
		n += f
	}
	return n
}

// Resolve maps a raw Term.Index to the (frameDepth, localIndex) pair that
// declared it: frameDepth 0 is the action's own parameter list,
// frameDepth i>0 is the i-th Exists/Forall frame outward-to-inward.
func (s Scope) Resolve(index int) (frameDepth, localIndex int) {
	remaining := index
	for depth, size := range s.frames {
		if remaining < size {
			return depth, remaining
		}
		remaining -= size
	}
	// Index refers to a frame introduced deeper than any pushed so far;
	// callers only ever resolve indices within the current scope.
	return len(s.frames), remaining
}

// VisitFunc is called once per Condition node in pre-order. Returning
// false skips descending into that node's children.
type VisitFunc func(c Condition, scope Scope) bool

// Walk performs a tail-recursive pre-order traversal of c, threading Scope
// through nested Exists/Forall frames.
func Walk(c Condition, scope Scope, fn VisitFunc) {
	if c == nil {
		return
	}
	if !fn(c, scope) {
		return
	}
	switch n := c.(type) {
	case *And:
		for _, ch := range n.Children {
			Walk(ch, scope, fn)
		}
	case *Or:
		Walk(n.Left, scope, fn)
		Walk(n.Right, scope, fn)
	case *Not:
		Walk(n.Child, scope, fn)
	case *Exists:
		Walk(n.Body, scope.Push(len(n.Params)), fn)
	case *Forall:
		Walk(n.Body, scope.Push(len(n.Params)), fn)
	case *When:
		Walk(n.Guard, scope, fn)
		Walk(n.Effect, scope, fn)
	case *Ground, *Equals, *Increase:
		// leaves
	}
}
