package serial

import (
	"testing"

	"github.com/concurrent-pddl/compiler/internal/classify"
	"github.com/concurrent-pddl/compiler/internal/cond"
	"github.com/concurrent-pddl/compiler/internal/config"
	"github.com/concurrent-pddl/compiler/internal/pddlenv"
)

func newSingleActionDomain(t *testing.T) *pddlenv.Env {
	t.Helper()
	env := pddlenv.New()
	if _, err := env.CreateType("AGENT", ""); err != nil {
		t.Fatalf("CreateType: %v", err)
	}
	if _, err := env.CreatePredicate("at", []string{"AGENT"}); err != nil {
		t.Fatalf("CreatePredicate: %v", err)
	}
	move, err := env.CreateAction("move", []string{"AGENT"}, true)
	if err != nil {
		t.Fatalf("CreateAction: %v", err)
	}
	if err := env.AddPre(move, false, "at", cond.BoundTerm(0)); err != nil {
		t.Fatalf("AddPre: %v", err)
	}
	if err := env.AddEff(move, false, "at", cond.BoundTerm(0)); err != nil {
		t.Fatalf("AddEff: %v", err)
	}
	return env
}

func TestSynthesize_BasicDomainShape(t *testing.T) {
	src := newSingleActionDomain(t)

	target, err := Synthesize(src, config.CompilerOptions{})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	for _, name := range []string{"SELECT-move", "DO-move", "END-move", config.ActionStart, config.ActionApply, config.ActionReset, config.ActionFinish} {
		if _, ok := target.LookupAction(name); !ok {
			t.Errorf("missing synthesised action %q", name)
		}
	}

	for _, name := range []string{
		config.PhaseFreeBlock, config.PhaseSelecting, config.PhaseApplying, config.PhaseResetting,
		config.PredFreeAgent, config.PredBusyAgent, config.PredDoneAgent,
		"at", config.PrefixActive + "move", config.PrefixReqNeg + "move",
	} {
		if _, ok := target.LookupPredicate(name); !ok {
			t.Errorf("missing synthesised predicate %q", name)
		}
	}

	sel, _ := target.LookupAction("SELECT-move")
	if len(sel.ParamTypes) != 1 || sel.ParamTypes[0] != "AGENT" {
		t.Errorf("SELECT-move params = %v, want [AGENT]", sel.ParamTypes)
	}
}

func TestSynthesize_AgentOrderOptionAddsParamsAndPredicates(t *testing.T) {
	src := newSingleActionDomain(t)

	target, err := Synthesize(src, config.CompilerOptions{UseAgentOrder: true})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	sel, ok := target.LookupAction("SELECT-move")
	if !ok {
		t.Fatal("missing SELECT-move")
	}
	if len(sel.ParamTypes) != 3 {
		t.Fatalf("SELECT-move params = %v, want 3 (1 original + 2 order counters)", sel.ParamTypes)
	}
	if _, ok := target.LookupPredicate(config.PredAgentOrder); !ok {
		t.Error("missing AGENT-ORDER predicate under -o")
	}
	if _, ok := target.LookupType(config.TypeAgentOrderCount); !ok {
		t.Error("missing AGENT-ORDER-COUNT type under -o")
	}
}

func TestSynthesize_MaxJointActionOptionAddsParams(t *testing.T) {
	src := newSingleActionDomain(t)

	target, err := Synthesize(src, config.CompilerOptions{MaxJointActionSize: 2})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	end, ok := target.LookupAction("END-move")
	if !ok {
		t.Fatal("missing END-move")
	}
	if len(end.ParamTypes) != 3 {
		t.Fatalf("END-move params = %v, want 3 (1 original + 2 atomic-action counters)", end.ParamTypes)
	}
}

func TestSynthesizeInstance_CarriesAtomsAndSeedsPhase(t *testing.T) {
	src := newSingleActionDomain(t)
	a1, err := src.CreateConstant("a1", "AGENT")
	if err != nil {
		t.Fatalf("CreateConstant: %v", err)
	}
	a2, err := src.CreateConstant("a2", "AGENT")
	if err != nil {
		t.Fatalf("CreateConstant: %v", err)
	}

	target, err := Synthesize(src, config.CompilerOptions{})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	srcInst := pddlenv.NewInstance("prob", "dom")
	srcInst.AddInit("at", "a1")
	srcInst.AddGoal("at", "a2")

	out := SynthesizeInstance(srcInst, target, []*pddlenv.Constant{a1, a2}, config.CompilerOptions{})

	foundPhase, foundFreeA1, foundFreeA2 := false, false, false
	for _, atom := range out.Init {
		switch {
		case atom.Predicate == config.PhaseFreeBlock:
			foundPhase = true
		case atom.Predicate == config.PredFreeAgent && len(atom.Args) == 1 && atom.Args[0] == "a1":
			foundFreeA1 = true
		case atom.Predicate == config.PredFreeAgent && len(atom.Args) == 1 && atom.Args[0] == "a2":
			foundFreeA2 = true
		}
	}
	if !foundPhase || !foundFreeA1 || !foundFreeA2 {
		t.Fatalf("init missing seeded state atoms: %+v", out.Init)
	}

	goalHasPhase := false
	for _, atom := range out.Goal {
		if atom.Predicate == config.PhaseFreeBlock {
			goalHasPhase = true
		}
	}
	if !goalHasPhase {
		t.Error("goal missing FREE-BLOCK")
	}
}

func TestSynthesizeInstance_AgentOrderGivesEveryAgentANextCounter(t *testing.T) {
	src := newSingleActionDomain(t)
	a1, err := src.CreateConstant("a1", "AGENT")
	if err != nil {
		t.Fatalf("CreateConstant: %v", err)
	}
	a2, err := src.CreateConstant("a2", "AGENT")
	if err != nil {
		t.Fatalf("CreateConstant: %v", err)
	}

	opts := config.CompilerOptions{UseAgentOrder: true}
	target, err := Synthesize(src, opts)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	srcInst := pddlenv.NewInstance("prob", "dom")
	agents := []*pddlenv.Constant{a1, a2}
	out := SynthesizeInstance(srcInst, target, agents, opts)

	order := map[string]string{} // agent name -> its counter object
	for _, atom := range out.Init {
		if atom.Predicate == config.PredAgentOrder && len(atom.Args) == 2 {
			order[atom.Args[0]] = atom.Args[1]
		}
	}
	if len(order) != len(agents) {
		t.Fatalf("expected %d AGENT-ORDER facts, got %+v", len(agents), order)
	}

	for _, a := range agents {
		counter, ok := order[a.Name]
		if !ok {
			t.Fatalf("agent %s has no AGENT-ORDER counter", a.Name)
		}
		hasNext := false
		for _, atom := range out.Init {
			if atom.Predicate == config.PredNextAgentOrder && len(atom.Args) == 2 && atom.Args[0] == counter {
				hasNext = true
			}
		}
		if !hasNext {
			t.Errorf("agent %s's counter %s has no outgoing %s fact: the counter chain must carry len(agents)+1 objects so every agent, including the last in the fixed order, can SELECT-A", a.Name, counter, config.PredNextAgentOrder)
		}
	}
}

func TestAddNoopAction(t *testing.T) {
	src := newSingleActionDomain(t)
	if err := AddNoopAction(src); err != nil {
		t.Fatalf("AddNoopAction: %v", err)
	}
	a, ok := src.LookupAction(config.ActionNoop)
	if !ok {
		t.Fatal("NOOP action not created")
	}
	if a.Concurrency == nil {
		t.Error("NOOP action should have its own concurrency predicate")
	}
}

// classify is exercised indirectly through Synthesize above; this covers
// the normal-only path explicitly since newSingleActionDomain's precondition
// never references a concurrency predicate.
func TestSynthesize_NoConcurrencyReferenceYieldsEmptyConcBuckets(t *testing.T) {
	src := newSingleActionDomain(t)
	move, _ := src.LookupAction("move")
	result := classify.Classify(move.Precondition, len(move.ParamTypes), func(name string) bool {
		_, ok := src.IndexOfConcurrencyPredicate(name)
		return ok
	})
	if len(result.PosConc) != 0 || len(result.NegConc) != 0 {
		t.Fatalf("expected no concurrency buckets, got %+v", result)
	}
	if len(result.Normal) != 1 {
		t.Fatalf("expected 1 normal condition, got %d", len(result.Normal))
	}
}
