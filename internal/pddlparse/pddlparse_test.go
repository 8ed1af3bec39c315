package pddlparse

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/concurrent-pddl/compiler/internal/cond"
)

const testDomainSrc = `
(define (domain test)
  (:requirements :strips :typing :multi-agent)
  (:types
    agent - object
    loc - object
  )
  (:predicates
    (at ?a - agent ?l - loc)
    (connected ?l1 - loc ?l2 - loc)
  )
  (:action move
    :parameters (?a - agent ?from - loc ?to - loc)
    :agent
    :precondition (and (at ?a ?from) (connected ?from ?to))
    :effect (and (not (at ?a ?from)) (at ?a ?to))
  )
)
`

const testProblemSrc = `
(define (problem test-p)
  (:domain test)
  (:objects
    a1 a2 - agent
    l1 l2 - loc
  )
  (:init
    (at a1 l1)
    (at a2 l2)
    (connected l1 l2)
    (connected l2 l1)
  )
  (:goal (and (at a1 l2)))
)
`

func mustParseTestDomain(t *testing.T) *Domain {
	t.Helper()
	d, err := ParseDomain(testDomainSrc, "test.pddl")
	if err != nil {
		t.Fatalf("ParseDomain: %v", err)
	}
	return d
}

func TestParseDomain_TypesAndPredicates(t *testing.T) {
	d := mustParseTestDomain(t)

	if d.Name != "test" {
		t.Fatalf("domain name = %q, want %q", d.Name, "test")
	}

	for _, name := range []string{"AGENT", "LOC"} {
		if _, ok := d.Env.LookupType(name); !ok {
			t.Errorf("missing type %s", name)
		}
	}

	at, ok := d.Env.LookupPredicate("AT")
	if !ok {
		t.Fatalf("missing predicate AT")
	}
	if diff := cmp.Diff([]string{"AGENT", "LOC"}, at.ParamTypes); diff != "" {
		t.Errorf("AT.ParamTypes mismatch (-want +got):\n%s", diff)
	}

	connected, ok := d.Env.LookupPredicate("CONNECTED")
	if !ok {
		t.Fatalf("missing predicate CONNECTED")
	}
	if diff := cmp.Diff([]string{"LOC", "LOC"}, connected.ParamTypes); diff != "" {
		t.Errorf("CONNECTED.ParamTypes mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDomain_ActionConditionShape(t *testing.T) {
	d := mustParseTestDomain(t)

	action, ok := d.Env.LookupAction("MOVE")
	if !ok {
		t.Fatalf("missing action MOVE")
	}
	if diff := cmp.Diff([]string{"AGENT", "LOC", "LOC"}, action.ParamTypes); diff != "" {
		t.Errorf("MOVE.ParamTypes mismatch (-want +got):\n%s", diff)
	}
	if action.Concurrency == nil {
		t.Fatalf("MOVE should carry a concurrency predicate (:agent clause)")
	}

	wantPre := &cond.And{Children: []cond.Condition{
		&cond.Ground{Predicate: "AT", Args: []cond.Term{cond.BoundTerm(0), cond.BoundTerm(1)}},
		&cond.Ground{Predicate: "CONNECTED", Args: []cond.Term{cond.BoundTerm(1), cond.BoundTerm(2)}},
	}}
	if diff := cmp.Diff(wantPre, action.Precondition); diff != "" {
		t.Errorf("precondition mismatch (-want +got):\n%s", diff)
	}

	wantEff := &cond.And{Children: []cond.Condition{
		&cond.Not{Child: &cond.Ground{Predicate: "AT", Args: []cond.Term{cond.BoundTerm(0), cond.BoundTerm(1)}}},
		&cond.Ground{Predicate: "AT", Args: []cond.Term{cond.BoundTerm(0), cond.BoundTerm(2)}},
	}}
	if diff := cmp.Diff(wantEff, action.Effect); diff != "" {
		t.Errorf("effect mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDomain_NoNetworkSection(t *testing.T) {
	d := mustParseTestDomain(t)
	if d.Network != nil {
		t.Fatalf("domain without :concurrency-network should not produce a Network")
	}
}

func TestParseProblem_ObjectsInitGoal(t *testing.T) {
	d := mustParseTestDomain(t)
	inst, err := ParseProblem(testProblemSrc, "test-p.pddl", d.Env)
	if err != nil {
		t.Fatalf("ParseProblem: %v", err)
	}

	if inst.Domain != "test" {
		t.Errorf("inst.Domain = %q, want %q", inst.Domain, "test")
	}
	if len(inst.Objects) != 4 {
		t.Fatalf("len(inst.Objects) = %d, want 4", len(inst.Objects))
	}

	wantInit := []struct{ Predicate string; Args []string }{
		{"AT", []string{"A1", "L1"}},
		{"AT", []string{"A2", "L2"}},
		{"CONNECTED", []string{"L1", "L2"}},
		{"CONNECTED", []string{"L2", "L1"}},
	}
	if len(inst.Init) != len(wantInit) {
		t.Fatalf("len(inst.Init) = %d, want %d", len(inst.Init), len(wantInit))
	}
	for i, w := range wantInit {
		if inst.Init[i].Predicate != w.Predicate || diffArgs(inst.Init[i].Args, w.Args) {
			t.Errorf("Init[%d] = %+v, want %+v", i, inst.Init[i], w)
		}
	}

	if len(inst.Goal) != 1 || inst.Goal[0].Predicate != "AT" || diffArgs(inst.Goal[0].Args, []string{"A1", "L2"}) {
		t.Errorf("Goal = %+v, want [{AT [A1 L2]}]", inst.Goal)
	}
}

func diffArgs(got, want []string) bool {
	return cmp.Diff(got, want) != ""
}

func TestParseDomain_ConcurrencyNetwork(t *testing.T) {
	src := `
(define (domain rendezvous)
  (:requirements :strips :typing :multi-agent :concurrency-network)
  (:types
    agent - object
    loc - object
  )
  (:predicates
    (at ?a - agent ?l - loc)
    (met ?a1 - agent ?a2 - agent)
  )
  (:action meet
    :parameters (?a1 - agent ?a2 - agent ?l - loc)
    :agent
    :precondition (and (at ?a1 ?l) (at ?a2 ?l))
    :effect (and (met ?a1 ?a2))
  )
  (:concurrency-constraint rendezvous
    :parameters (?l - loc)
    :arity (2 2)
    :templates ((meet 0 1 2) (meet 1 0 2))
  )
)
`
	d, err := ParseDomain(src, "rendezvous.pddl")
	if err != nil {
		t.Fatalf("ParseDomain: %v", err)
	}
	if d.Network == nil {
		t.Fatalf("expected a Network for a :concurrency-network domain")
	}
	if len(d.Network.Nodes) != 1 {
		t.Fatalf("len(Nodes) = %d, want 1", len(d.Network.Nodes))
	}
	node := d.Network.Nodes[0]
	if node.Name != "RENDEZVOUS" || node.Lower != 2 || node.Upper != 2 {
		t.Errorf("node = %+v, want RENDEZVOUS [2,2]", node)
	}
	if len(node.Templates) != 2 {
		t.Fatalf("len(Templates) = %d, want 2", len(node.Templates))
	}
	if node.Templates[0].ActionName != "MEET" || node.Templates[1].ActionName != "MEET" {
		t.Errorf("templates = %+v, want both MEET", node.Templates)
	}
}
