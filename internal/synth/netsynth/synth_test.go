package netsynth

import (
	"testing"

	"github.com/concurrent-pddl/compiler/internal/cond"
	"github.com/concurrent-pddl/compiler/internal/config"
	"github.com/concurrent-pddl/compiler/internal/network"
	"github.com/concurrent-pddl/compiler/internal/pddlenv"
)

// newRendezvousDomain models two agents that must jointly "meet": each
// agent's meet action requires (at ?a ?loc) and adds (met ?a) without
// deleting anything, so no predicate is problematic even though both
// templates read (at ...) — used as the minimal single-node,
// two-template fixture.
func newRendezvousDomain(t *testing.T) (*pddlenv.Env, *network.Network) {
	t.Helper()
	env := pddlenv.New()
	if _, err := env.CreateType("AGENT", ""); err != nil {
		t.Fatalf("CreateType: %v", err)
	}
	if _, err := env.CreateType("LOC", ""); err != nil {
		t.Fatalf("CreateType: %v", err)
	}
	if _, err := env.CreatePredicate("at", []string{"AGENT", "LOC"}); err != nil {
		t.Fatalf("CreatePredicate at: %v", err)
	}
	if _, err := env.CreatePredicate("met", []string{"AGENT"}); err != nil {
		t.Fatalf("CreatePredicate met: %v", err)
	}

	meet, err := env.CreateAction("meet", []string{"AGENT", "LOC"}, true)
	if err != nil {
		t.Fatalf("CreateAction: %v", err)
	}
	if err := env.AddPre(meet, false, "at", cond.BoundTerm(0), cond.BoundTerm(1)); err != nil {
		t.Fatalf("AddPre: %v", err)
	}
	if err := env.AddEff(meet, false, "met", cond.BoundTerm(0)); err != nil {
		t.Fatalf("AddEff: %v", err)
	}

	net := network.New()
	node := net.AddNode("RENDEZVOUS", []string{"AGENT", "AGENT", "LOC"}, 2, 2)
	node.Templates = []network.ActionTemplate{
		{ActionName: "meet", ParamMap: []int{0, 2}},
		{ActionName: "meet", ParamMap: []int{1, 2}},
	}
	return env, net
}

func TestSynthesize_SingleComponentActionShape(t *testing.T) {
	src, net := newRendezvousDomain(t)

	target, err := Synthesize(src, net, 2)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	for _, name := range []string{
		"START-RENDEZVOUS", "SKIP-RENDEZVOUS", "END-RENDEZVOUS",
		"DO-RENDEZVOUS-meet-0", "DO-RENDEZVOUS-meet-1", config.ActionFree,
	} {
		if _, ok := target.LookupAction(name); !ok {
			t.Errorf("missing synthesised action %q", name)
		}
	}

	for _, name := range []string{
		config.PhaseAFree, config.PhaseATemp, config.PrefixActiveNode + "RENDEZVOUS",
		config.PrefixCountNode + "RENDEZVOUS", config.PrefixSatNode + "RENDEZVOUS",
		config.PrefixUsedNode + "RENDEZVOUS", config.PredTaken, config.PredConsec,
		"at", "met",
	} {
		if _, ok := target.LookupPredicate(name); !ok {
			t.Errorf("missing synthesised predicate %q", name)
		}
	}

	if pred, ok := target.LookupPredicate(config.PhaseAFree); ok && len(pred.ParamTypes) != 0 {
		t.Errorf("AFREE should be 0-ary, got params %v", pred.ParamTypes)
	}
	if pred, ok := target.LookupPredicate(config.PhaseATemp); ok && len(pred.ParamTypes) != 0 {
		t.Errorf("ATEMP should be 0-ary, got params %v", pred.ParamTypes)
	}

	if _, ok := target.LookupConstant("ACOUNT-0"); !ok {
		t.Error("missing ACOUNT-0 counter object")
	}
	if _, ok := target.LookupConstant("ACOUNT-2"); !ok {
		t.Error("missing ACOUNT-2 counter object")
	}
}

func TestSynthesize_FreeActionGatesOnGlobalATempAndDrainsPosNeg(t *testing.T) {
	src, net := newRendezvousDomain(t)

	target, err := Synthesize(src, net, 2)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	free, ok := target.LookupAction(config.ActionFree)
	if !ok {
		t.Fatalf("missing FREE action")
	}
	if free.Precondition == nil || len(free.Precondition.Children) == 0 {
		t.Fatalf("FREE action has no real precondition (stub): %+v", free.Precondition)
	}
	if free.Effect == nil || len(free.Effect.Children) != 2 {
		t.Fatalf("FREE action should have exactly 2 effect conjuncts (¬ATEMP, AFREE), got %+v", free.Effect)
	}
}

func TestDetect_NoProblematicFluentWhenNothingIsDeleted(t *testing.T) {
	src, net := newRendezvousDomain(t)
	pf := Detect(src, net, 0)
	if len(pf) != 0 {
		t.Errorf("expected no problematic fluents, got %+v", pf)
	}
}

func TestDetect_FlagsDeletedAndReadPredicate(t *testing.T) {
	env := pddlenv.New()
	env.CreateType("AGENT", "")
	env.CreatePredicate("holding", []string{"AGENT"})

	a1, _ := env.CreateAction("take", []string{"AGENT"}, true)
	env.AddPre(a1, false, "holding", cond.BoundTerm(0))
	env.AddEff(a1, true, "holding", cond.BoundTerm(0))

	a2, _ := env.CreateAction("drop", []string{"AGENT"}, true)
	env.AddPre(a2, true, "holding", cond.BoundTerm(0))
	env.AddEff(a2, false, "holding", cond.BoundTerm(0))

	net := network.New()
	node := net.AddNode("SWAP", []string{"AGENT", "AGENT"}, 2, 2)
	node.Templates = []network.ActionTemplate{
		{ActionName: "take", ParamMap: []int{0}},
		{ActionName: "drop", ParamMap: []int{1}},
	}

	pf := Detect(env, net, 0)
	if len(pf) != 1 || pf[0].Predicate != "holding" {
		t.Fatalf("expected [holding], got %+v", pf)
	}
}

func TestDetect_SingleSlotNodeNeverProblematicEvenWithSiblingReads(t *testing.T) {
	// A node whose Upper == 1 can never race against itself, even when a
	// sibling node in the same component reads a predicate it deletes:
	// Detect is scoped per node (serialize.cpp:75-89), not per component.
	env := pddlenv.New()
	env.CreateType("AGENT", "")
	env.CreatePredicate("holding", []string{"AGENT"})

	solo, _ := env.CreateAction("take-solo", []string{"AGENT"}, true)
	env.AddEff(solo, true, "holding", cond.BoundTerm(0))

	reader, _ := env.CreateAction("check", []string{"AGENT"}, true)
	env.AddPre(reader, true, "holding", cond.BoundTerm(0))

	net := network.New()
	soloNode := net.AddNode("SOLO", []string{"AGENT"}, 1, 1)
	soloNode.Templates = []network.ActionTemplate{{ActionName: "take-solo", ParamMap: []int{0}}}
	readerNode := net.AddNode("READER", []string{"AGENT"}, 2, 2)
	readerNode.Templates = []network.ActionTemplate{{ActionName: "check", ParamMap: []int{0}}}
	net.AddEdge(0, 1)

	pf := Detect(env, net, 0)
	if len(pf) != 0 {
		t.Errorf("single-slot node should never be flagged problematic, got %+v", pf)
	}
}

func TestConnectedComponents_TwoIndependentNodesStaySeparate(t *testing.T) {
	net := network.New()
	net.AddNode("A", nil, 1, 1)
	net.AddNode("B", nil, 1, 1)
	comps := net.ConnectedComponents()
	if len(comps) != 2 {
		t.Fatalf("expected 2 components, got %d: %+v", len(comps), comps)
	}
}
