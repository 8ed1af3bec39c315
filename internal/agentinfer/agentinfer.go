// Package agentinfer implements spec.md §4.3 (component C3): derive a
// single AGENT type, spliced between an inferred common parent and its
// former children, when the source domain does not already declare one.
package agentinfer

import (
	"github.com/concurrent-pddl/compiler/internal/pddlenv"
	"github.com/concurrent-pddl/compiler/internal/perr"
)

// AgentTypeName is the type inserted when the source domain omits it.
const AgentTypeName = "AGENT"

// Infer runs the algorithm of spec.md §4.3. It is a no-op (returns the
// existing type, nil) if env already declares AGENT. Failure to find a
// single common parent for the inferred agent super-types is reported as
// perr.ErrInferenceFailure and is explicitly non-fatal: callers should log
// it and proceed with env unchanged, per spec.md §7.
func Infer(env *pddlenv.Env) (*pddlenv.Type, error) {
	if t, ok := env.LookupType(AgentTypeName); ok {
		return t, nil
	}

	at := collectFirstParamTypes(env)
	if len(at) == 0 {
		return nil, nil
	}

	st := minimalUnderSubtyping(env, at)
	if len(st) == 0 {
		return nil, nil
	}

	first, _ := env.LookupType(st[0])
	commonParent := first.Parent
	for _, name := range st[1:] {
		t, _ := env.LookupType(name)
		if t.Parent != commonParent {
			return nil, perr.ErrInferenceFailure.New("inferred agent types do not share a common parent")
		}
	}

	agent, err := env.CreateType(AgentTypeName, commonParent)
	if err != nil {
		return nil, err
	}
	for _, name := range st {
		if err := env.ConnectTypes(AgentTypeName, name); err != nil {
			return nil, err
		}
	}
	return agent, nil
}

// collectFirstParamTypes gathers, in insertion order and without
// duplicates, the declared type of every action's first parameter
// (spec.md §4.3 step 1).
func collectFirstParamTypes(env *pddlenv.Env) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range env.Actions() {
		if len(a.ParamTypes) == 0 {
			continue
		}
		t := a.ParamTypes[0]
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// minimalUnderSubtyping returns the subset of at whose members have no
// ancestor also present in at (spec.md §4.3 step 2), preserving at's
// insertion order for deterministic tie-breaking (spec.md §4.3's
// "insertion order" note).
func minimalUnderSubtyping(env *pddlenv.Env, at []string) []string {
	set := make(map[string]bool, len(at))
	for _, t := range at {
		set[t] = true
	}
	var st []string
	for _, t := range at {
		hasAncestorInAT := false
		cur, ok := env.LookupType(t)
		for ok && cur.Parent != "" {
			if set[cur.Parent] {
				hasAncestorInAT = true
				break
			}
			cur, ok = env.LookupType(cur.Parent)
		}
		if !hasAncestorInAT {
			st = append(st, t)
		}
	}
	return st
}
