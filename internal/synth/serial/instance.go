package serial

import (
	"fmt"

	"github.com/concurrent-pddl/compiler/internal/config"
	"github.com/concurrent-pddl/compiler/internal/pddlenv"
)

// SynthesizeInstance builds the transformed Instance to go with a target
// Env returned by Synthesize: the phase machine starts at FREE-BLOCK, every
// agent object starts FREE-AGENT, every init/goal atom whose predicate
// still exists in target is carried across unchanged (concurrency atoms
// never appear in a legal instance's init or goal, so no rewriting is
// needed here), and the counter-object chains for the agent-order and
// max-joint-action options are seeded when those options are enabled.
//
// Grounded on the original compiler's createTransformedInstance.
func SynthesizeInstance(src *pddlenv.Instance, target *pddlenv.Env, agents []*pddlenv.Constant, opts config.CompilerOptions) *pddlenv.Instance {
	out := pddlenv.NewInstance(src.Name, src.Domain)
	out.Metric = src.Metric

	out.AddInit(config.PhaseFreeBlock)
	for _, a := range agents {
		out.AddInit(config.PredFreeAgent, a.Name)
	}
	for _, atom := range src.Init {
		if !target.HasPredicate(atom.Predicate) {
			continue
		}
		out.Init = append(out.Init, atom)
	}
	for _, atom := range src.Goal {
		if !target.HasPredicate(atom.Predicate) {
			continue
		}
		out.Goal = append(out.Goal, atom)
	}
	out.AddGoal(config.PhaseFreeBlock)

	if opts.UseAgentOrder {
		counters := declareCounterChain(out, len(agents)+1, config.ObjAgentCountPrefix, config.TypeAgentOrderCount,
			config.PredPrevAgentOrder, config.PredNextAgentOrder, config.PredCurrentAgentOrder)
		for i, a := range agents {
			out.AddInit(config.PredAgentOrder, a.Name, counters[i].Name)
		}
	}
	if opts.MaxJointActionSize > 0 {
		declareCounterChain(out, opts.MaxJointActionSize+1, config.ObjAtomicCountPrefix, config.TypeAtomicActionCount,
			config.PredPrevAtomicAction, config.PredNextAtomicAction, config.PredCurrentAtomicAction)
	}

	return out
}

// declareCounterChain declares n counter objects named prefix+"0".."n-1"
// of type counterType, links them PREV/NEXT in sequence, and marks the
// first as CURRENT — the shared shape behind both the agent-order and
// max-joint-action-size counter encodings (spec.md §4.5).
func declareCounterChain(out *pddlenv.Instance, n int, prefix, counterType, predPrev, predNext, predCurrent string) []*pddlenv.Constant {
	objs := make([]*pddlenv.Constant, n)
	for i := 0; i < n; i++ {
		objs[i] = out.AddObject(fmt.Sprintf("%s%d", prefix, i), counterType)
	}
	for i := 0; i+1 < n; i++ {
		out.AddInit(predNext, objs[i].Name, objs[i+1].Name)
		out.AddInit(predPrev, objs[i+1].Name, objs[i].Name)
	}
	if n > 0 {
		out.AddInit(predCurrent, objs[0].Name)
	}
	return objs
}
