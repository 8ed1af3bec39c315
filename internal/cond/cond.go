// Package cond implements the Condition AST and Walker of spec.md §3/§4.2:
// an immutable recursive logical-expression tree (And/Or/Not/Exists/
// Forall/When/Ground/Equals/Increase) with a deep-copy operator
// parameterised by a target predicate environment, and a pre-order
// structural visitor.
//
// The Node/Accept(Visitor) shape is grounded on funvibe/funxy's
// internal/ast (ast_core.go, ast_expressions.go): every node is a small
// exported struct implementing a one-method Accept that dispatches to a
// Visitor interface, and copies re-intern any lifted-predicate reference
// against the destination table rather than sharing pointers across
// environments.
package cond

import "fmt"

// Term is a single argument slot in a Ground atom or an Equals/Increase
// comparison: either a reference to a parameter in the enclosing scope
// (de Bruijn-like index, spec.md §3) or a constant object.
type Term struct {
	IsConstant   bool
	ConstantName string
	Index        int // meaningful only when !IsConstant
}

// BoundTerm builds a Term referencing the scope parameter at index idx.
func BoundTerm(idx int) Term { return Term{Index: idx} }

// ConstantTerm builds a Term referencing the constant object name.
func ConstantTerm(name string) Term { return Term{IsConstant: true, ConstantName: name} }

func (t Term) String() string {
	if t.IsConstant {
		return t.ConstantName
	}
	return fmt.Sprintf("$%d", t.Index)
}

// Param is a single typed parameter introduced by an Exists or Forall
// quantifier.
type Param struct {
	Name     string
	TypeName string
}

// Condition is the common interface of every AST node.
type Condition interface {
	Accept(v Visitor)
	condNode()
}

// Visitor is a pre-order structural visitor over a Condition tree.
type Visitor interface {
	VisitAnd(*And)
	VisitOr(*Or)
	VisitNot(*Not)
	VisitExists(*Exists)
	VisitForall(*Forall)
	VisitWhen(*When)
	VisitGround(*Ground)
	VisitEquals(*Equals)
	VisitIncrease(*Increase)
}

// And is a (possibly empty, possibly single-child) conjunction.
type And struct{ Children []Condition }

func (a *And) condNode()        {}
func (a *And) Accept(v Visitor) { v.VisitAnd(a) }

// Or is a binary disjunction.
type Or struct{ Left, Right Condition }

func (o *Or) condNode()        {}
func (o *Or) Accept(v Visitor) { v.VisitOr(o) }

// Not negates a single child (normally a Ground, per spec.md §3's
// invariant, but the Walker recurses generically otherwise).
type Not struct{ Child Condition }

func (n *Not) condNode()        {}
func (n *Not) Accept(v Visitor) { v.VisitNot(n) }

// Exists introduces existentially quantified parameters scoped to Body.
type Exists struct {
	Params []Param
	Body   Condition
}

func (e *Exists) condNode()        {}
func (e *Exists) Accept(v Visitor) { v.VisitExists(e) }

// Forall introduces universally quantified parameters scoped to Body.
type Forall struct {
	Params []Param
	Body   Condition
}

func (f *Forall) condNode()        {}
func (f *Forall) Accept(v Visitor) { v.VisitForall(f) }

// When is a PDDL conditional effect: Guard holds Effect is asserted.
// Structurally it carries two Condition children rather than a parameter
// list (grounded on the source compiler's When node, which pairs a guard
// condition with an effect condition, not a quantifier parameter list).
type When struct {
	Guard  Condition
	Effect Condition
}

func (w *When) condNode()        {}
func (w *When) Accept(v Visitor) { v.VisitWhen(w) }

// Ground is a single ground atom reference: a lifted predicate applied to
// a binding list of Terms.
type Ground struct {
	Predicate string // lifted predicate name, case-normalised
	Args      []Term
}

func (g *Ground) condNode()        {}
func (g *Ground) Accept(v Visitor) { v.VisitGround(g) }

// Equals is an (= lhs rhs) object-identity comparison.
type Equals struct{ Lhs, Rhs Term }

func (e *Equals) condNode()        {}
func (e *Equals) Accept(v Visitor) { v.VisitEquals(e) }

// Increase is a numeric-fluent effect: (increase lhs rhs). Rhs may itself
// reference a ground numeric fluent; for the purposes of this compiler it
// is opaque (costs are copied and rewritten like any other effect, never
// interpreted).
type Increase struct {
	Fluent string
	Args   []Term
	Amount float64
}

func (i *Increase) condNode()        {}
func (i *Increase) Accept(v Visitor) { v.VisitIncrease(i) }

// NewAnd builds an And, flattening a single nil-free child list. An empty
// list denotes the trivially true condition, matching the PDDL `(and)`.
func NewAnd(children ...Condition) *And {
	out := make([]Condition, 0, len(children))
	for _, c := range children {
		if c != nil {
			out = append(out, c)
		}
	}
	return &And{Children: out}
}
