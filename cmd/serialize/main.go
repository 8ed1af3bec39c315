// Command serialize implements the serial-concurrency compilation
// variant: it reduces a multi-agent PDDL domain/instance pair into an
// equivalent single-agent classical PDDL domain/instance pair using the
// FREE-BLOCK/SELECTING/APPLYING/RESETTING global phase machine.
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
	"github.com/concurrent-pddl/compiler/internal/synth/serial"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("serialize", flag.ContinueOnError)
	useAgentOrder := fs.Bool("o", false, "use a fixed round-robin agent ordering")
	fs.BoolVar(useAgentOrder, "use-agent-order", false, "use a fixed round-robin agent ordering")
	maxJoint := fs.Int("j", 0, "bound the number of simultaneously selected agent actions (0: unbounded)")
	fs.IntVar(maxJoint, "max-joint-action-size", 0, "bound the number of simultaneously selected agent actions (0: unbounded)")
	debug := fs.Bool("debug", false, "enable debug logging")
	configPath := fs.String("config", "", "YAML options file overlaid on top of the flags above")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-o] [-j N] [-config FILE] domain.pddl problem.pddl\n", fs.Name())
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 1
	}

	logger := rlog.New(*debug)
	defer logger.Sync()

	opts := config.CompilerOptions{UseAgentOrder: *useAgentOrder, MaxJointActionSize: *maxJoint, Debug: *debug}
	if *configPath != "" {
		loaded, err := config.LoadOptions(*configPath, opts)
		if err != nil {
			logger.Error("load options file", zap.Error(err))
			return 1
		}
		opts = loaded
	}

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
	instance, err := pddlparse.ParseProblem(string(problemSrc), fs.Arg(1), domain.Env)
	if err != nil {
		logger.Error("parse problem", zap.Error(err))
		return 1
	}

	if _, err := agentinfer.Infer(domain.Env); err != nil {
		logger.Warn("agent type inference failed, proceeding without it", zap.Error(err))
	}

	target, err := serial.Synthesize(domain.Env, opts)
	if err != nil {
		logger.Error("synthesize domain", zap.Error(err))
		return 1
	}

	agents := agentObjects(domain.Env)
	targetInstance := serial.SynthesizeInstance(instance, target, agents, opts)

	fmt.Print(pddlprint.Domain(domain.Name, target))
	fmt.Fprint(os.Stderr, pddlprint.Instance(targetInstance))
	return 0
}

// agentObjects returns every object declared against env (domain
// constants and problem objects alike, since ParseProblem registers
// objects on the same Env) whose type descends from AGENT, in
// declaration order.
func agentObjects(env *pddlenv.Env) []*pddlenv.Constant {
	var out []*pddlenv.Constant
	for _, c := range env.Constants() {
		if c.TypeName == agentinfer.AgentTypeName || env.IsAncestor(agentinfer.AgentTypeName, c.TypeName) {
			out = append(out, c)
		}
	}
	return out
}
