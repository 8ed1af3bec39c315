// Command serializecn implements the network-concurrency compilation
// variant: it reduces a multi-agent PDDL domain/instance pair, whose
// domain declares a :concurrency-network, into an equivalent
// single-agent classical PDDL domain/instance pair.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/concurrent-pddl/compiler/internal/agentinfer"
	"github.com/concurrent-pddl/compiler/internal/config"
	"github.com/concurrent-pddl/compiler/internal/pddlenv"
	"github.com/concurrent-pddl/compiler/internal/pddlparse"
	"github.com/concurrent-pddl/compiler/internal/pddlprint"
	"github.com/concurrent-pddl/compiler/internal/rlog"
	"github.com/concurrent-pddl/compiler/internal/synth/netsynth"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("serializecn", flag.ContinueOnError)
	debug := fs.Bool("debug", false, "enable debug logging")
	configPath := fs.String("config", "", "YAML options file overlaid on top of the flags above")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-config FILE] domain.pddl problem.pddl\n", fs.Name())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 1
	}

	opts := config.CompilerOptions{Debug: *debug}
	if *configPath != "" {
		loaded, err := config.LoadOptions(*configPath, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load options file: %v\n", err)
			return 1
		}
		opts = loaded
	}

	logger := rlog.New(opts.Debug)
	defer logger.Sync()

	domainSrc, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		logger.Error("read domain file", zap.Error(err))
		return 1
	}
	problemSrc, err := os.ReadFile(fs.Arg(1))
	if err != nil {
		logger.Error("read problem file", zap.Error(err))
		return 1
	}

	domain, err := pddlparse.ParseDomain(string(domainSrc), fs.Arg(0))
	if err != nil {
		logger.Error("parse domain", zap.Error(err))
		return 1
	}
	if domain.Network == nil {
		logger.Error("domain declares no :concurrency-network")
		return 1
	}
	instance, err := pddlparse.ParseProblem(string(problemSrc), fs.Arg(1), domain.Env)
	if err != nil {
		logger.Error("parse problem", zap.Error(err))
		return 1
	}

	if _, err := agentinfer.Infer(domain.Env); err != nil {
		logger.Warn("agent type inference failed, proceeding without it", zap.Error(err))
	}

	maxAgents := countAgents(domain.Env)
	target, err := netsynth.Synthesize(domain.Env, domain.Network, maxAgents)
	if err != nil {
		logger.Error("synthesize domain", zap.Error(err))
		return 1
	}

	counters := counterNames(target)
	targetInstance := netsynth.SynthesizeInstance(instance, target, counters)

	fmt.Print(pddlprint.Domain(domain.Name, target))
	fmt.Fprint(os.Stderr, pddlprint.Instance(targetInstance))
	return 0
}

// countAgents bounds the network variant's AGENT-COUNT counter chain by
// the number of declared AGENT-typed objects, mirroring the serial
// variant's agentObjects but only needing the count here.
func countAgents(env *pddlenv.Env) int {
	n := 0
	for _, c := range env.Constants() {
		if c.TypeName == agentinfer.AgentTypeName || env.IsAncestor(agentinfer.AgentTypeName, c.TypeName) {
			n++
		}
	}
	return n
}

// counterNames recovers the ACOUNT-0..ACOUNT-n object names Synthesize
// declared on target, in declaration order.
func counterNames(target *pddlenv.Env) []string {
	var out []string
	for _, c := range target.Constants() {
		if c.TypeName == config.TypeAgentCount {
			out = append(out, c.Name)
		}
	}
	return out
}
