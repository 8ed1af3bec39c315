package netsynth

import (
	"github.com/concurrent-pddl/compiler/internal/config"
	"github.com/concurrent-pddl/compiler/internal/pddlenv"
)

// SynthesizeInstance builds the transformed Instance for a target Env
// returned by Synthesize: the system starts globally AFREE (0-ary, seeded
// once, not per node), the CONSEC successor chain over ACOUNT-0..ACOUNT-cap
// is seeded, and every init/goal atom whose predicate still exists in
// target is carried across unchanged. No node starts ACTIVE, since that
// predicate only becomes true once a START action runs.
func SynthesizeInstance(src *pddlenv.Instance, target *pddlenv.Env, counters []string) *pddlenv.Instance {
	out := pddlenv.NewInstance(src.Name, src.Domain)
	out.Metric = src.Metric

	out.AddInit(config.PhaseAFree)

	for i := 0; i+1 < len(counters); i++ {
		out.AddInit(config.PredConsec, counters[i], counters[i+1])
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

	return out
}
