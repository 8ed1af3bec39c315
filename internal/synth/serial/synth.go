// Package serial implements the serial-concurrency Domain Synthesiser of
// spec.md §4.5 (component C5, serial variant): the global four-state
// phase machine, the per-action SELECT/DO/END micro-sequence, and the
// optional fixed agent-ordering and max-joint-action-size encodings.
//
// Grounded throughout on the original compiler's examples/serialize
// program: createClassicalDomain/addTypes/addPredicates/addActions for
// the domain, createTransformedInstance for the instance, and
// addSelectAction/addDoAction/addEndAction/addStateChangeActions for the
// per-action and phase-machine actions.
package serial

import (
	"fmt"

	"github.com/concurrent-pddl/compiler/internal/agentinfer"
	"github.com/concurrent-pddl/compiler/internal/classify"
	"github.com/concurrent-pddl/compiler/internal/cond"
	"github.com/concurrent-pddl/compiler/internal/config"
	"github.com/concurrent-pddl/compiler/internal/pddlenv"
)

// AddNoopAction inserts a NOOP(?a - AGENT) action with an empty
// precondition and effect into env, so that under the agent-order option
// an agent may pass its turn (spec.md §4.5's agent-order note); it is
// given its own 1:1 concurrency predicate like any other multi-agent
// action (grounded on addNoopAction, which calls
// addConcurrencyPredicateFromAction explicitly).
func AddNoopAction(env *pddlenv.Env) error {
	_, err := env.CreateAction(config.ActionNoop, []string{agentinfer.AgentTypeName}, true)
	return err
}

// Synthesize builds the classical target Env from a multi-agent source
// Env already processed by internal/agentinfer (so an AGENT type is
// guaranteed to exist). Concurrency predicates are recognised through
// src.IndexOfConcurrencyPredicate, wrapped as a predicate-name test.
func Synthesize(src *pddlenv.Env, opts config.CompilerOptions) (*pddlenv.Env, error) {
	target := pddlenv.New()
	isConcurrency := func(name string) bool {
		_, ok := src.IndexOfConcurrencyPredicate(name)
		return ok
	}

	if err := copyTypes(src, target, opts); err != nil {
		return nil, err
	}
	if err := addPredicates(src, target, opts); err != nil {
		return nil, err
	}
	if err := copyConstants(src, target); err != nil {
		return nil, err
	}
	if err := addStateChangeActions(target); err != nil {
		return nil, err
	}

	for _, action := range src.Actions() {
		result := classify.Classify(action.Precondition, len(action.ParamTypes), isConcurrency)
		if err := addSelectAction(target, action, result, isConcurrency, opts); err != nil {
			return nil, fmt.Errorf("serial: SELECT-%s: %w", action.Name, err)
		}
		if err := addDoAction(target, action, result, isConcurrency); err != nil {
			return nil, fmt.Errorf("serial: DO-%s: %w", action.Name, err)
		}
		if err := addEndAction(target, action, result, isConcurrency, opts); err != nil {
			return nil, fmt.Errorf("serial: END-%s: %w", action.Name, err)
		}
	}

	return target, nil
}

func copyTypes(src, target *pddlenv.Env, opts config.CompilerOptions) error {
	for _, t := range src.Types() {
		if t.Name == pddlenv.RootType {
			continue
		}
		if _, err := target.CreateType(t.Name, t.Parent); err != nil {
			return err
		}
	}
	if opts.UseAgentOrder {
		if _, err := target.CreateType(config.TypeAgentOrderCount, ""); err != nil {
			return err
		}
	}
	if opts.MaxJointActionSize > 0 {
		if _, err := target.CreateType(config.TypeAtomicActionCount, ""); err != nil {
			return err
		}
	}
	return nil
}

func copyConstants(src, target *pddlenv.Env) error {
	for _, c := range src.Constants() {
		if _, err := target.CreateConstant(c.Name, c.TypeName); err != nil {
			return err
		}
	}
	return nil
}

func addPredicates(src, target *pddlenv.Env, opts config.CompilerOptions) error {
	if err := addStatePredicates(target); err != nil {
		return err
	}
	for _, p := range src.Predicates() {
		if p.IsConcurrency {
			if _, err := target.CreatePredicate(config.PrefixActive+p.Name, p.ParamTypes); err != nil {
				return err
			}
			if _, err := target.CreatePredicate(config.PrefixReqNeg+p.Name, p.ParamTypes); err != nil {
				return err
			}
		} else {
			if _, err := target.CreatePredicate(p.Name, p.ParamTypes); err != nil {
				return err
			}
		}
	}
	if opts.UseAgentOrder {
		if err := addAgentOrderPredicates(target); err != nil {
			return err
		}
	}
	if opts.MaxJointActionSize > 0 {
		if err := addJointActionSizePredicates(target); err != nil {
			return err
		}
	}
	return nil
}

func addStatePredicates(target *pddlenv.Env) error {
	for _, p := range []string{config.PhaseFreeBlock, config.PhaseSelecting, config.PhaseApplying, config.PhaseResetting} {
		if _, err := target.CreatePredicate(p, nil); err != nil {
			return err
		}
	}
	for _, p := range []string{config.PredFreeAgent, config.PredBusyAgent, config.PredDoneAgent} {
		if _, err := target.CreatePredicate(p, []string{agentinfer.AgentTypeName}); err != nil {
			return err
		}
	}
	return nil
}

func addAgentOrderPredicates(target *pddlenv.Env) error {
	if _, err := target.CreatePredicate(config.PredAgentOrder, []string{agentinfer.AgentTypeName, config.TypeAgentOrderCount}); err != nil {
		return err
	}
	for _, p := range []string{config.PredPrevAgentOrder, config.PredNextAgentOrder} {
		if _, err := target.CreatePredicate(p, []string{config.TypeAgentOrderCount, config.TypeAgentOrderCount}); err != nil {
			return err
		}
	}
	_, err := target.CreatePredicate(config.PredCurrentAgentOrder, []string{config.TypeAgentOrderCount})
	return err
}

func addJointActionSizePredicates(target *pddlenv.Env) error {
	for _, p := range []string{config.PredPrevAtomicAction, config.PredNextAtomicAction} {
		if _, err := target.CreatePredicate(p, []string{config.TypeAtomicActionCount, config.TypeAtomicActionCount}); err != nil {
			return err
		}
	}
	_, err := target.CreatePredicate(config.PredCurrentAtomicAction, []string{config.TypeAtomicActionCount})
	return err
}

func addStateChangeActions(target *pddlenv.Env) error {
	if err := addPhaseAction(target, config.ActionStart, config.PhaseFreeBlock, config.PhaseSelecting); err != nil {
		return err
	}
	if err := addPhaseAction(target, config.ActionApply, config.PhaseSelecting, config.PhaseApplying); err != nil {
		return err
	}
	if err := addPhaseAction(target, config.ActionReset, config.PhaseApplying, config.PhaseResetting); err != nil {
		return err
	}
	return addFinishAction(target)
}

func addPhaseAction(target *pddlenv.Env, name, from, to string) error {
	a, err := target.CreateAction(name, nil, false)
	if err != nil {
		return err
	}
	if err := target.AddPre(a, false, from); err != nil {
		return err
	}
	if err := target.AddEff(a, true, from); err != nil {
		return err
	}
	return target.AddEff(a, false, to)
}

func addFinishAction(target *pddlenv.Env) error {
	a, err := target.CreateAction(config.ActionFinish, nil, false)
	if err != nil {
		return err
	}
	if err := target.AddPre(a, false, config.PhaseResetting); err != nil {
		return err
	}
	target.AddPreCond(a, &cond.Forall{
		Params: []cond.Param{{Name: "?a", TypeName: agentinfer.AgentTypeName}},
		Body:   &cond.Ground{Predicate: config.PredFreeAgent, Args: []cond.Term{cond.BoundTerm(0)}},
	})
	if err := target.AddEff(a, true, config.PhaseResetting); err != nil {
		return err
	}
	return target.AddEff(a, false, config.PhaseFreeBlock)
}

func incvec(lo, hi int) []cond.Term {
	out := make([]cond.Term, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, cond.BoundTerm(i))
	}
	return out
}

func addSelectAction(target *pddlenv.Env, action *pddlenv.Action, result classify.Result, isConcurrency classify.IsConcurrencyPredicate, opts config.CompilerOptions) error {
	name := config.PrefixSelect + action.Name
	newAction, err := target.CreateAction(name, action.ParamTypes, false)
	if err != nil {
		return err
	}
	numParams := len(action.ParamTypes)

	if err := target.AddPre(newAction, false, config.PhaseSelecting); err != nil {
		return err
	}
	if err := target.AddPre(newAction, false, config.PredFreeAgent, cond.BoundTerm(0)); err != nil {
		return err
	}
	if err := target.AddPre(newAction, true, config.PrefixReqNeg+action.Name, incvec(0, numParams)...); err != nil {
		return err
	}
	for _, nc := range result.Normal {
		target.AddPreCond(newAction, cond.MustCopy(nc, nil))
	}
	for _, nc := range result.NegConc {
		target.AddPreCond(newAction, Replace(cond.MustCopy(nc, nil), config.PrefixActive, true, isConcurrency))
	}

	if err := target.AddEff(newAction, true, config.PredFreeAgent, cond.BoundTerm(0)); err != nil {
		return err
	}
	if err := target.AddEff(newAction, false, config.PredBusyAgent, cond.BoundTerm(0)); err != nil {
		return err
	}
	if err := target.AddEff(newAction, false, config.PrefixActive+action.Name, incvec(0, numParams)...); err != nil {
		return err
	}
	for _, nc := range result.NegConc {
		target.AddEffCond(newAction, Replace(cond.MustCopy(nc, nil), config.PrefixReqNeg, false, isConcurrency))
	}

	if opts.UseAgentOrder {
		target.AddParams(newAction, config.TypeAgentOrderCount, config.TypeAgentOrderCount)
		if err := target.AddPre(newAction, false, config.PredAgentOrder, cond.BoundTerm(0), cond.BoundTerm(numParams)); err != nil {
			return err
		}
		if err := target.AddPre(newAction, false, config.PredNextAgentOrder, incvec(numParams, numParams+2)...); err != nil {
			return err
		}
		if err := target.AddPre(newAction, false, config.PredCurrentAgentOrder, cond.BoundTerm(numParams)); err != nil {
			return err
		}
		if err := target.AddEff(newAction, true, config.PredCurrentAgentOrder, cond.BoundTerm(numParams)); err != nil {
			return err
		}
		if err := target.AddEff(newAction, false, config.PredCurrentAgentOrder, cond.BoundTerm(numParams+1)); err != nil {
			return err
		}
		numParams += 2
	}

	if opts.MaxJointActionSize > 0 {
		target.AddParams(newAction, config.TypeAtomicActionCount, config.TypeAtomicActionCount)
		if err := target.AddPre(newAction, false, config.PredNextAtomicAction, incvec(numParams, numParams+2)...); err != nil {
			return err
		}
		if err := target.AddPre(newAction, false, config.PredCurrentAtomicAction, cond.BoundTerm(numParams)); err != nil {
			return err
		}
		if err := target.AddEff(newAction, true, config.PredCurrentAtomicAction, cond.BoundTerm(numParams)); err != nil {
			return err
		}
		if err := target.AddEff(newAction, false, config.PredCurrentAtomicAction, cond.BoundTerm(numParams+1)); err != nil {
			return err
		}
	}
	return nil
}

func addDoAction(target *pddlenv.Env, action *pddlenv.Action, result classify.Result, isConcurrency classify.IsConcurrencyPredicate) error {
	name := config.PrefixDo + action.Name
	newAction, err := target.CreateAction(name, action.ParamTypes, false)
	if err != nil {
		return err
	}
	numParams := len(action.ParamTypes)

	if err := target.AddPre(newAction, false, config.PhaseApplying); err != nil {
		return err
	}
	if err := target.AddPre(newAction, false, config.PredBusyAgent, cond.BoundTerm(0)); err != nil {
		return err
	}
	if err := target.AddPre(newAction, false, config.PrefixActive+action.Name, incvec(0, numParams)...); err != nil {
		return err
	}
	for _, pc := range result.PosConc {
		target.AddPreCond(newAction, Replace(cond.MustCopy(pc, nil), config.PrefixActive, false, isConcurrency))
	}

	if err := target.AddEff(newAction, true, config.PredBusyAgent, cond.BoundTerm(0)); err != nil {
		return err
	}
	if err := target.AddEff(newAction, false, config.PredDoneAgent, cond.BoundTerm(0)); err != nil {
		return err
	}
	for _, ec := range action.Effect.Children {
		target.AddEffCond(newAction, Replace(cond.MustCopy(ec, nil), config.PrefixActive, false, isConcurrency))
	}
	return nil
}

func addEndAction(target *pddlenv.Env, action *pddlenv.Action, result classify.Result, isConcurrency classify.IsConcurrencyPredicate, opts config.CompilerOptions) error {
	name := config.PrefixEnd + action.Name
	newAction, err := target.CreateAction(name, action.ParamTypes, false)
	if err != nil {
		return err
	}
	numParams := len(action.ParamTypes)

	if err := target.AddPre(newAction, false, config.PhaseResetting); err != nil {
		return err
	}
	if err := target.AddPre(newAction, false, config.PredDoneAgent, cond.BoundTerm(0)); err != nil {
		return err
	}
	if err := target.AddPre(newAction, false, config.PrefixActive+action.Name, incvec(0, numParams)...); err != nil {
		return err
	}

	if err := target.AddEff(newAction, true, config.PredDoneAgent, cond.BoundTerm(0)); err != nil {
		return err
	}
	if err := target.AddEff(newAction, false, config.PredFreeAgent, cond.BoundTerm(0)); err != nil {
		return err
	}
	if err := target.AddEff(newAction, true, config.PrefixActive+action.Name, incvec(0, numParams)...); err != nil {
		return err
	}
	for _, nc := range result.NegConc {
		target.AddEffCond(newAction, Replace(cond.MustCopy(nc, nil), config.PrefixReqNeg, true, isConcurrency))
	}

	if opts.UseAgentOrder {
		target.AddParams(newAction, config.TypeAgentOrderCount, config.TypeAgentOrderCount)
		if err := target.AddPre(newAction, false, config.PredPrevAgentOrder, incvec(numParams, numParams+2)...); err != nil {
			return err
		}
		if err := target.AddPre(newAction, false, config.PredCurrentAgentOrder, cond.BoundTerm(numParams)); err != nil {
			return err
		}
		if err := target.AddEff(newAction, true, config.PredCurrentAgentOrder, cond.BoundTerm(numParams)); err != nil {
			return err
		}
		if err := target.AddEff(newAction, false, config.PredCurrentAgentOrder, cond.BoundTerm(numParams+1)); err != nil {
			return err
		}
		numParams += 2
	}

	if opts.MaxJointActionSize > 0 {
		target.AddParams(newAction, config.TypeAtomicActionCount, config.TypeAtomicActionCount)
		if err := target.AddPre(newAction, false, config.PredPrevAtomicAction, incvec(numParams, numParams+2)...); err != nil {
			return err
		}
		if err := target.AddPre(newAction, false, config.PredCurrentAtomicAction, cond.BoundTerm(numParams)); err != nil {
			return err
		}
		if err := target.AddEff(newAction, true, config.PredCurrentAtomicAction, cond.BoundTerm(numParams)); err != nil {
			return err
		}
		if err := target.AddEff(newAction, false, config.PredCurrentAtomicAction, cond.BoundTerm(numParams+1)); err != nil {
			return err
		}
	}
	return nil
}
