package netsynth

import (
	"fmt"

	"github.com/concurrent-pddl/compiler/internal/agentinfer"
	"github.com/concurrent-pddl/compiler/internal/cond"
	"github.com/concurrent-pddl/compiler/internal/config"
	"github.com/concurrent-pddl/compiler/internal/network"
	"github.com/concurrent-pddl/compiler/internal/pddlenv"
)

// nodeVocab is the bookkeeping-predicate vocabulary synthesised for one
// network node, named off the node's declared name (spec.md §4.5 network
// variant). Some members are only created when the owning component has
// more than one node, or the node itself allows more than one concurrent
// participant (Upper > 1) — mirroring the original compiler's conditional
// predicate declarations, which skip bookkeeping a single-participant,
// single-node component does not need. AFREE/ATEMP are not part of this
// vocabulary: the original declares them exactly once as global, 0-ary
// predicates (serialize.cpp:119-120), not per node.
type nodeVocab struct {
	Active     string // ACTIVE-<node>: this grounding of the node is in progress
	Count, Sat string
	Used, Done string
	Skipped    string
	multiNode  bool // component has more than one node: needs DONE/SKIPPED for sibling edges
	multiAgent bool // node.Upper > 1: needs COUNT/SAT/USED tracking
}

func vocabFor(n *network.Node, multiNode bool) nodeVocab {
	return nodeVocab{
		Active:     config.PrefixActiveNode + n.Name,
		Count:      config.PrefixCountNode + n.Name,
		Sat:        config.PrefixSatNode + n.Name,
		Used:       config.PrefixUsedNode + n.Name,
		Done:       config.PrefixDoneNode + n.Name,
		Skipped:    config.PrefixSkippedNode + n.Name,
		multiNode:  multiNode,
		multiAgent: n.Upper > 1,
	}
}

// Synthesize builds the classical target Env implementing the
// network-concurrency compilation for net over src. maxAgents bounds the
// AGENT-COUNT counter chain generated for nodes whose declared upper
// multiplicity is unbounded — the original compiler grounds the same
// chain against the actual instance's agent population, which this
// mirrors by asking the caller for that count up front rather than
// re-deriving it from an instance inside the synthesiser.
func Synthesize(src *pddlenv.Env, net *network.Network, maxAgents int) (*pddlenv.Env, error) {
	target := pddlenv.New()
	if err := copyTypesAndConstants(src, target); err != nil {
		return nil, err
	}
	if err := copyNonTemplatePredicates(src, target, net); err != nil {
		return nil, err
	}

	if _, err := target.CreatePredicate(config.PhaseAFree, nil); err != nil {
		return nil, err
	}
	if _, err := target.CreatePredicate(config.PhaseATemp, nil); err != nil {
		return nil, err
	}

	counters, err := addAgentCountChain(target, maxAgents)
	if err != nil {
		return nil, err
	}

	components := net.ConnectedComponents()
	vocabs := make(map[int]nodeVocab, len(net.Nodes))
	problematic := map[int][]ProblematicFluent{}

	// Detect scopes the delete-vs-read race to templates of a single node
	// (serialize.cpp:75-89: outer loop per node, gated on upper > 1), so
	// problematic fluents are found per node. The resulting POS-/NEG- pair
	// is still a single global predicate per predicate name, so creation
	// is deduplicated across every node that flags the same fluent.
	posNegDeclared := map[string]bool{}
	for _, comp := range components {
		multiNode := len(comp) > 1
		for _, idx := range comp {
			n := net.Nodes[idx]
			vocabs[idx] = vocabFor(n, multiNode)
			pf := Detect(src, net, idx)
			problematic[idx] = pf
			for _, p := range pf {
				if posNegDeclared[p.Predicate] {
					continue
				}
				posNegDeclared[p.Predicate] = true
				if err := addPosNegPredicates(target, src, p); err != nil {
					return nil, err
				}
			}
		}
	}

	for idx, n := range net.Nodes {
		v := vocabs[idx]
		if err := declareNodePredicates(target, n, v); err != nil {
			return nil, err
		}
	}

	var allProblematic []ProblematicFluent
	seenProblematic := map[string]bool{}
	for idx := range net.Nodes {
		for _, p := range problematic[idx] {
			if seenProblematic[p.Predicate] {
				continue
			}
			seenProblematic[p.Predicate] = true
			allProblematic = append(allProblematic, p)
		}
	}

	if err := addFreeAction(target, allProblematic); err != nil {
		return nil, err
	}
	if _, err := target.CreatePredicate(config.PredTaken, []string{agentinfer.AgentTypeName}); err != nil {
		return nil, err
	}

	for idx, n := range net.Nodes {
		v := vocabs[idx]
		if err := addStartAction(target, net, idx, n, v); err != nil {
			return nil, fmt.Errorf("netsynth: START-%s: %w", n.Name, err)
		}
		if err := addSkipAction(target, n, v, src); err != nil {
			return nil, fmt.Errorf("netsynth: SKIP-%s: %w", n.Name, err)
		}
		for slot, tmpl := range n.Templates {
			action, ok := src.LookupAction(tmpl.ActionName)
			if !ok {
				return nil, fmt.Errorf("netsynth: node %s references unknown action %s", n.Name, tmpl.ActionName)
			}
			if err := addDoAction(target, src, n, v, tmpl, slot, action, problematic[idx], counters); err != nil {
				return nil, fmt.Errorf("netsynth: DO-%s-%s: %w", n.Name, tmpl.ActionName, err)
			}
		}
		if err := addEndAction(target, n, v, problematic[idx]); err != nil {
			return nil, fmt.Errorf("netsynth: END-%s: %w", n.Name, err)
		}
		if err := addFinishAction(target, net, idx, n, v); err != nil {
			return nil, fmt.Errorf("netsynth: FINISH-%s: %w", n.Name, err)
		}
	}

	for _, p := range allProblematic {
		if err := addCommitActions(target, p); err != nil {
			return nil, err
		}
	}

	return target, nil
}

func copyTypesAndConstants(src, target *pddlenv.Env) error {
	for _, t := range src.Types() {
		if t.Name == pddlenv.RootType {
			continue
		}
		if _, err := target.CreateType(t.Name, t.Parent); err != nil {
			return err
		}
	}
	for _, c := range src.Constants() {
		if _, err := target.CreateConstant(c.Name, c.TypeName); err != nil {
			return err
		}
	}
	return nil
}

// copyNonTemplatePredicates copies every source predicate that is not the
// 1:1 concurrency marker of an action used only as a network template body
// (those actions are re-expressed as DO- actions instead of copied
// verbatim, so their synthetic concurrency predicate has no counterpart in
// target).
func copyNonTemplatePredicates(src, target *pddlenv.Env, net *network.Network) error {
	templateActions := map[string]bool{}
	for _, n := range net.Nodes {
		for _, t := range n.Templates {
			templateActions[t.ActionName] = true
		}
	}
	for _, p := range src.Predicates() {
		if p.IsConcurrency && templateActions[p.Name] {
			continue
		}
		if _, err := target.CreatePredicate(p.Name, p.ParamTypes); err != nil {
			return err
		}
	}
	return nil
}

// addAgentCountChain declares the AGENT-COUNT type, ACOUNT-0..ACOUNT-cap
// objects and the CONSEC successor relation every node's count tracking
// shares (spec.md §4.5 network variant's COUNT-/SAT- bookkeeping).
func addAgentCountChain(target *pddlenv.Env, cap int) ([]string, error) {
	if _, err := target.CreateType(config.TypeAgentCount, ""); err != nil {
		return nil, err
	}
	if _, err := target.CreatePredicate(config.PredConsec, []string{config.TypeAgentCount, config.TypeAgentCount}); err != nil {
		return nil, err
	}
	names := make([]string, cap+1)
	for i := 0; i <= cap; i++ {
		name := fmt.Sprintf("%s%d", config.ObjAgentCountNetworkPrefix, i)
		if _, err := target.CreateConstant(name, config.TypeAgentCount); err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}

func addPosNegPredicates(target, src *pddlenv.Env, p ProblematicFluent) error {
	pred, ok := src.LookupPredicate(p.Predicate)
	if !ok {
		return fmt.Errorf("netsynth: unknown problematic predicate %q", p.Predicate)
	}
	if _, err := target.CreatePredicate(config.PrefixPos+p.Predicate, pred.ParamTypes); err != nil {
		return err
	}
	_, err := target.CreatePredicate(config.PrefixNeg+p.Predicate, pred.ParamTypes)
	return err
}

// declareNodePredicates declares the per-node ACTIVE-<node> predicate
// (serialize.cpp:126-127: created whenever the owning component has more
// than one node or the node itself allows more than one participant)
// alongside the DONE/SKIPPED/COUNT/SAT/USED bookkeeping a node needs.
func declareNodePredicates(target *pddlenv.Env, n *network.Node, v nodeVocab) error {
	if v.multiNode || v.multiAgent {
		if _, err := target.CreatePredicate(v.Active, n.ParamTypes); err != nil {
			return err
		}
	}
	if v.multiNode {
		if _, err := target.CreatePredicate(v.Done, n.ParamTypes); err != nil {
			return err
		}
		if _, err := target.CreatePredicate(v.Skipped, n.ParamTypes); err != nil {
			return err
		}
	}
	if v.multiAgent {
		countParams := append(append([]string(nil), n.ParamTypes...), config.TypeAgentCount)
		if _, err := target.CreatePredicate(v.Count, countParams); err != nil {
			return err
		}
		if _, err := target.CreatePredicate(v.Sat, n.ParamTypes); err != nil {
			return err
		}
		usedParams := append(append([]string(nil), n.ParamTypes...), agentinfer.AgentTypeName)
		if _, err := target.CreatePredicate(v.Used, usedParams); err != nil {
			return err
		}
	}
	return nil
}

// addFreeAction builds the global FREE action (serialize.cpp:313-326):
// under ATEMP, and only once every problematic predicate's POS-/NEG-
// bookkeeping has drained to false for every grounding (meaning every
// deferred commit already ran via its ADD-/DELETE- action), transition the
// system back to AFREE.
func addFreeAction(target *pddlenv.Env, problematic []ProblematicFluent) error {
	a, err := target.CreateAction(config.ActionFree, nil, false)
	if err != nil {
		return err
	}
	if err := target.AddPre(a, false, config.PhaseATemp); err != nil {
		return err
	}
	for _, p := range problematic {
		pred, ok := target.LookupPredicate(config.PrefixPos + p.Predicate)
		if !ok {
			return fmt.Errorf("netsynth: missing POS predicate for %q", p.Predicate)
		}
		params := make([]cond.Param, len(pred.ParamTypes))
		args := make([]cond.Term, len(pred.ParamTypes))
		for i, t := range pred.ParamTypes {
			params[i] = cond.Param{Name: fmt.Sprintf("?x%d", i), TypeName: t}
			args[i] = cond.BoundTerm(i)
		}
		target.AddPreCond(a, &cond.Forall{
			Params: params,
			Body: &cond.And{Children: []cond.Condition{
				&cond.Not{Child: &cond.Ground{Predicate: config.PrefixPos + p.Predicate, Args: args}},
				&cond.Not{Child: &cond.Ground{Predicate: config.PrefixNeg + p.Predicate, Args: args}},
			}},
		})
	}
	if err := target.AddEff(a, true, config.PhaseATemp); err != nil {
		return err
	}
	return target.AddEff(a, false, config.PhaseAFree)
}

func nodeArgs(n int) []cond.Term { return incvec(0, n) }

func incvec(lo, hi int) []cond.Term {
	out := make([]cond.Term, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, cond.BoundTerm(i))
	}
	return out
}

func addStartAction(target *pddlenv.Env, net *network.Network, idx int, n *network.Node, v nodeVocab) error {
	name := config.PrefixStartNode + n.Name
	a, err := target.CreateAction(name, n.ParamTypes, false)
	if err != nil {
		return err
	}
	np := len(n.ParamTypes)
	if err := target.AddPre(a, false, config.PhaseAFree); err != nil {
		return err
	}
	for _, predIdx := range net.EdgesInto(idx) {
		pv := vocabForEdge(net, predIdx)
		if err := target.AddOrPre(a, pv.Done, nodeArgs(np), pv.Skipped, nodeArgs(np)); err != nil {
			return err
		}
	}
	if err := target.AddEff(a, true, config.PhaseAFree); err != nil {
		return err
	}
	if err := target.AddEff(a, false, config.PhaseATemp); err != nil {
		return err
	}
	if v.multiNode || v.multiAgent {
		if err := target.AddEff(a, false, v.Active, nodeArgs(np)...); err != nil {
			return err
		}
	}
	if v.multiAgent {
		if err := target.AddEff(a, false, v.Count, append(nodeArgs(np), cond.ConstantTerm(config.ObjAgentCountNetworkPrefix+"0"))...); err != nil {
			return err
		}
		if n.Lower == 0 {
			if err := target.AddEff(a, false, v.Sat, nodeArgs(np)...); err != nil {
				return err
			}
		}
	}
	return nil
}

// vocabForEdge rebuilds the minimal vocab (Done/Skipped names only) for a
// predecessor node addressed purely by index, used when wiring edges
// across components during START/FINISH construction.
func vocabForEdge(net *network.Network, idx int) nodeVocab {
	n := net.Nodes[idx]
	return nodeVocab{
		Done:    config.PrefixDoneNode + n.Name,
		Skipped: config.PrefixSkippedNode + n.Name,
	}
}

func addSkipAction(target *pddlenv.Env, n *network.Node, v nodeVocab, src *pddlenv.Env) error {
	if !v.multiAgent {
		return nil // a single-slot node has nothing to skip independently of END
	}
	name := config.PrefixSkipNode + n.Name
	paramTypes := append(append([]string(nil), n.ParamTypes...), agentinfer.AgentTypeName)
	a, err := target.CreateAction(name, paramTypes, false)
	if err != nil {
		return err
	}
	np := len(n.ParamTypes)
	self := cond.BoundTerm(np)
	if err := target.AddPre(a, false, v.Active, nodeArgs(np)...); err != nil {
		return err
	}
	if err := target.AddPre(a, true, v.Used, append(nodeArgs(np), self)...); err != nil {
		return err
	}
	if err := target.AddPre(a, true, config.PredTaken, self); err != nil {
		return err
	}
	return target.AddEff(a, false, v.Used, append(nodeArgs(np), self)...)
}

func addDoAction(target *pddlenv.Env, src *pddlenv.Env, n *network.Node, v nodeVocab, tmpl network.ActionTemplate, slot int, action *pddlenv.Action, problematic []ProblematicFluent, counters []string) error {
	name := fmt.Sprintf("%s%s-%s-%d", config.PrefixDoAction, n.Name, tmpl.ActionName, slot)
	a, err := target.CreateAction(name, n.ParamTypes, false)
	if err != nil {
		return err
	}
	np := len(n.ParamTypes)
	self := cond.BoundTerm(tmpl.ParamMap[0])

	if err := target.AddPre(a, false, config.PhaseATemp); err != nil {
		return err
	}
	if v.multiNode || v.multiAgent {
		if err := target.AddPre(a, false, v.Active, nodeArgs(np)...); err != nil {
			return err
		}
	}
	if err := target.AddPre(a, true, config.PredTaken, self); err != nil {
		return err
	}
	if v.multiAgent {
		if err := target.AddPre(a, true, v.Used, append(nodeArgs(np), self)...); err != nil {
			return err
		}
	}
	remappedPre, err := remap(action.Precondition, tmpl.ParamMap)
	if err != nil {
		return err
	}
	target.AddPreCond(a, remappedPre)

	if err := target.AddEff(a, false, config.PredTaken, self); err != nil {
		return err
	}
	if v.multiAgent {
		if err := target.AddEff(a, false, v.Used, append(nodeArgs(np), self)...); err != nil {
			return err
		}
	}

	isProblematic := map[string]bool{}
	for _, p := range problematic {
		isProblematic[p.Predicate] = true
	}
	remappedEff, err := remap(action.Effect, tmpl.ParamMap)
	if err != nil {
		return err
	}
	for _, child := range remappedEff.(*cond.And).Children {
		deferred, ok := deferEffectIfProblematic(child, isProblematic)
		if ok {
			target.AddEffCond(a, deferred)
		} else {
			target.AddEffCond(a, child)
		}
	}

	if v.multiAgent {
		if err := advanceCount(target, a, v, np, counters); err != nil {
			return err
		}
	}
	return nil
}

// deferEffectIfProblematic turns a direct add/delete of a problematic
// predicate into setting its POS-/NEG- flag instead, so the real fact is
// only committed once the node's END action runs (spec.md §4.5's
// "problematic fluents are deferred until every concurrent template in
// the component has been accounted for").
func deferEffectIfProblematic(eff cond.Condition, isProblematic map[string]bool) (cond.Condition, bool) {
	switch n := eff.(type) {
	case *cond.Ground:
		if isProblematic[n.Predicate] {
			return &cond.Ground{Predicate: config.PrefixPos + n.Predicate, Args: n.Args}, true
		}
	case *cond.Not:
		if g, ok := n.Child.(*cond.Ground); ok && isProblematic[g.Predicate] {
			return &cond.Ground{Predicate: config.PrefixNeg + g.Predicate, Args: g.Args}, true
		}
	}
	return eff, false
}

func advanceCount(target *pddlenv.Env, a *pddlenv.Action, v nodeVocab, np int, counters []string) error {
	for i := 0; i+1 < len(counters); i++ {
		from, to := cond.ConstantTerm(counters[i]), cond.ConstantTerm(counters[i+1])
		target.AddEffCond(a, &cond.When{
			Guard:  &cond.Ground{Predicate: v.Count, Args: append(nodeArgs(np), from)},
			Effect: &cond.And{Children: []cond.Condition{&cond.Not{Child: &cond.Ground{Predicate: v.Count, Args: append(nodeArgs(np), from)}}, &cond.Ground{Predicate: v.Count, Args: append(nodeArgs(np), to)}}},
		})
	}
	return nil
}

// remap deep-copies c, rewriting every bound Term referencing action-own
// parameter i to node parameter paramMap[i] (spec.md §3's per-template
// parameter remapping onto the owning node's shared parameter list).
func remap(c cond.Condition, paramMap []int) (cond.Condition, error) {
	cp := cond.MustCopy(c, nil)
	rewriteTerms(cp, paramMap)
	return cp, nil
}

func rewriteTerms(c cond.Condition, paramMap []int) {
	switch n := c.(type) {
	case *cond.And:
		for _, ch := range n.Children {
			rewriteTerms(ch, paramMap)
		}
	case *cond.Or:
		rewriteTerms(n.Left, paramMap)
		rewriteTerms(n.Right, paramMap)
	case *cond.Not:
		rewriteTerms(n.Child, paramMap)
	case *cond.Exists:
		rewriteTerms(n.Body, paramMap)
	case *cond.Forall:
		rewriteTerms(n.Body, paramMap)
	case *cond.When:
		rewriteTerms(n.Guard, paramMap)
		rewriteTerms(n.Effect, paramMap)
	case *cond.Ground:
		for i, t := range n.Args {
			n.Args[i] = rewriteTerm(t, paramMap)
		}
	case *cond.Increase:
		for i, t := range n.Args {
			n.Args[i] = rewriteTerm(t, paramMap)
		}
	}
}

func rewriteTerm(t cond.Term, paramMap []int) cond.Term {
	if t.IsConstant {
		return t
	}
	if t.Index < len(paramMap) {
		return cond.BoundTerm(paramMap[t.Index])
	}
	return t
}

func addEndAction(target *pddlenv.Env, n *network.Node, v nodeVocab, problematic []ProblematicFluent) error {
	name := config.PrefixEndNode + n.Name
	a, err := target.CreateAction(name, n.ParamTypes, false)
	if err != nil {
		return err
	}
	np := len(n.ParamTypes)
	if v.multiNode || v.multiAgent {
		if err := target.AddPre(a, false, v.Active, nodeArgs(np)...); err != nil {
			return err
		}
	}
	if v.multiAgent {
		if err := target.AddPre(a, false, v.Sat, nodeArgs(np)...); err != nil {
			return err
		}
	}
	if v.multiNode || v.multiAgent {
		if err := target.AddEff(a, true, v.Active, nodeArgs(np)...); err != nil {
			return err
		}
	}
	if v.multiAgent {
		if err := target.AddEff(a, true, v.Sat, nodeArgs(np)...); err != nil {
			return err
		}
	}
	if v.multiNode {
		// a sibling may still be mid-flight: defer the global phase
		// transition to whichever node in the component FINISHes last.
		return target.AddEff(a, false, v.Done, nodeArgs(np)...)
	}
	if len(problematic) > 0 {
		// a deferred POS-/NEG- commit is outstanding; stay in ATEMP until
		// FREE drains it (serialize.cpp:259).
		return target.AddEff(a, false, config.PhaseATemp)
	}
	if err := target.AddEff(a, true, config.PhaseATemp); err != nil {
		return err
	}
	return target.AddEff(a, false, config.PhaseAFree)
}

func addFinishAction(target *pddlenv.Env, net *network.Network, idx int, n *network.Node, v nodeVocab) error {
	if !v.multiNode {
		return nil // no sibling ever waits on a single-node component
	}
	name := config.PrefixFinishNode + n.Name
	a, err := target.CreateAction(name, n.ParamTypes, false)
	if err != nil {
		return err
	}
	np := len(n.ParamTypes)
	if err := target.AddOrPre(a, v.Done, nodeArgs(np), v.Skipped, nodeArgs(np)); err != nil {
		return err
	}
	if err := target.AddEff(a, true, v.Done, nodeArgs(np)...); err != nil {
		return err
	}
	if err := target.AddEff(a, true, v.Skipped, nodeArgs(np)...); err != nil {
		return err
	}
	if v.multiAgent {
		if err := target.AddEff(a, true, v.Used, nodeArgs(np)...); err != nil {
			return err
		}
	}
	return target.AddEff(a, false, config.PhaseATemp)
}

// addCommitActions declares ADD-p / DELETE-p for a problematic fluent:
// global actions (no node-specific phase precondition, since a single
// problematic fluent may be deferred by templates belonging to several
// nodes of the same component) that commit a deferred POS-/NEG- flag by
// applying the real predicate and clearing the flag.
func addCommitActions(target *pddlenv.Env, p ProblematicFluent) error {
	pred, ok := target.LookupPredicate(config.PrefixPos + p.Predicate)
	if !ok {
		return fmt.Errorf("netsynth: missing POS predicate for %q", p.Predicate)
	}
	paramTypes := pred.ParamTypes

	add, err := target.CreateAction(config.PrefixAdd+p.Predicate, paramTypes, false)
	if err != nil {
		return err
	}
	n := len(paramTypes)
	if err := target.AddPre(add, false, config.PrefixPos+p.Predicate, incvec(0, n)...); err != nil {
		return err
	}
	if err := target.AddEff(add, true, config.PrefixPos+p.Predicate, incvec(0, n)...); err != nil {
		return err
	}
	if err := target.AddEff(add, false, p.Predicate, incvec(0, n)...); err != nil {
		return err
	}

	del, err := target.CreateAction(config.PrefixDelete+p.Predicate, paramTypes, false)
	if err != nil {
		return err
	}
	if err := target.AddPre(del, false, config.PrefixNeg+p.Predicate, incvec(0, n)...); err != nil {
		return err
	}
	if err := target.AddEff(del, true, config.PrefixNeg+p.Predicate, incvec(0, n)...); err != nil {
		return err
	}
	return target.AddEff(del, true, p.Predicate, incvec(0, n)...)
}
