package classify

import (
	"testing"

	"github.com/concurrent-pddl/compiler/internal/cond"
)

func isAt(name string) bool { return name == "at" }       // non-concurrency
func isHolding(name string) bool { return name == "holding" } // concurrency predicate for these tests

func concPred(names ...string) IsConcurrencyPredicate {
	set := map[string]bool{}
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestClassify_FlatAtoms(t *testing.T) {
	// (and (at ?x) (not (holding ?y))), action params 0,1, holding concurrent.
	action := cond.NewAnd(
		&cond.Ground{Predicate: "at", Args: []cond.Term{cond.BoundTerm(0)}},
		&cond.Not{Child: &cond.Ground{Predicate: "holding", Args: []cond.Term{cond.BoundTerm(1)}}},
	)

	res := Classify(action, 2, concPred("holding"))

	if len(res.Normal) != 1 {
		t.Fatalf("expected 1 normal condition, got %d", len(res.Normal))
	}
	if len(res.NegConc) != 1 {
		t.Fatalf("expected 1 negative-concurrency condition, got %d", len(res.NegConc))
	}
	if len(res.PosConc) != 0 {
		t.Fatalf("expected 0 positive-concurrency conditions, got %d", len(res.PosConc))
	}
}

func TestClassify_PositiveConcurrency(t *testing.T) {
	action := cond.NewAnd(&cond.Ground{Predicate: "holding", Args: []cond.Term{cond.BoundTerm(0)}})

	res := Classify(action, 1, concPred("holding"))

	if len(res.PosConc) != 1 {
		t.Fatalf("expected 1 positive-concurrency condition, got %d", len(res.PosConc))
	}
	if len(res.Normal) != 0 || len(res.NegConc) != 0 {
		t.Fatalf("unexpected conditions leaked into other buckets: %+v", res)
	}
}

func TestClassify_ForallWrapsNormalAtom(t *testing.T) {
	// (forall (?b - block) (at ?b ?x)), action param 0, forall param is index 1.
	forall := &cond.Forall{
		Params: []cond.Param{{Name: "?b", TypeName: "BLOCK"}},
		Body:   &cond.Ground{Predicate: "at", Args: []cond.Term{cond.BoundTerm(1), cond.BoundTerm(0)}},
	}
	action := cond.NewAnd(forall)

	res := Classify(action, 1, concPred("holding"))

	if len(res.Normal) != 1 {
		t.Fatalf("expected 1 normal (wrapped) condition, got %d", len(res.Normal))
	}
	wrapped, ok := res.Normal[0].(*cond.Forall)
	if !ok {
		t.Fatalf("expected wrapped condition to be *cond.Forall, got %T", res.Normal[0])
	}
	body, ok := wrapped.Body.(*cond.And)
	if !ok || len(body.Children) != 1 {
		t.Fatalf("expected forall body to be a single-child And, got %#v", wrapped.Body)
	}
	if _, ok := body.Children[0].(*cond.Ground); !ok {
		t.Fatalf("expected ground atom inside reconstructed forall, got %T", body.Children[0])
	}
}

func TestClassify_ExistsSharedBySiblingsCopiedOnce(t *testing.T) {
	// (exists (?b - block) (and (at ?b) (holding ?b))) — two ground atoms
	// share the same Exists; only one reconstruction should appear, and it
	// should be bucketed according to the dominant (positive-concurrency)
	// ground type since holding is nested inside.
	exists := &cond.Exists{
		Params: []cond.Param{{Name: "?b", TypeName: "BLOCK"}},
		Body: cond.NewAnd(
			&cond.Ground{Predicate: "at", Args: []cond.Term{cond.BoundTerm(0)}},
			&cond.Ground{Predicate: "holding", Args: []cond.Term{cond.BoundTerm(0)}},
		),
	}
	action := cond.NewAnd(exists)

	res := Classify(action, 0, concPred("holding"))

	total := len(res.Normal) + len(res.PosConc) + len(res.NegConc)
	if total != 1 {
		t.Fatalf("expected the shared Exists to be reconstructed exactly once across buckets, got %d", total)
	}
	if len(res.PosConc) != 1 {
		t.Fatalf("expected the Exists to land in PosConc (dominant type from nested holding atom), got %+v", res)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	action := cond.NewAnd(
		&cond.Ground{Predicate: "at", Args: []cond.Term{cond.BoundTerm(0)}},
		&cond.Not{Child: &cond.Ground{Predicate: "holding", Args: []cond.Term{cond.BoundTerm(1)}}},
	)

	r1 := Classify(action, 2, concPred("holding"))
	r2 := Classify(action, 2, concPred("holding"))

	h1, err := cond.Hash(cond.NewAnd(append(append(append([]cond.Condition{}, r1.Normal...), r1.PosConc...), r1.NegConc...)...))
	if err != nil {
		t.Fatalf("hash 1: %v", err)
	}
	h2, err := cond.Hash(cond.NewAnd(append(append(append([]cond.Condition{}, r2.Normal...), r2.PosConc...), r2.NegConc...)...))
	if err != nil {
		t.Fatalf("hash 2: %v", err)
	}
	if h1 != h2 {
		t.Fatalf("classifying the same condition twice produced different bucket hashes: %d vs %d", h1, h2)
	}
}
