// Package config carries the fixed vocabulary of synthesised predicate and
// action names (spec.md §4.5) as exported constants, the same role
// funvibe/funxy's internal/config/constants.go plays for its own builtin
// names, plus the CompilerOptions that parameterise the serial-variant
// synthesiser (-o / -j).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Version is the current compiler version, set via -ldflags at build time
// or edited here for a release.
var Version = "0.1.0"

// Global phase-machine predicates (serial variant, spec.md §4.5).
const (
	PhaseFreeBlock = "FREE-BLOCK"
	PhaseSelecting = "SELECTING"
	PhaseApplying  = "APPLYING"
	PhaseResetting = "RESETTING"
)

// Per-agent lifecycle predicates (serial variant).
const (
	PredFreeAgent = "FREE-AGENT"
	PredBusyAgent = "BUSY-AGENT"
	PredDoneAgent = "DONE-AGENT"
)

// Concurrency-predicate replacement prefixes (serial variant).
const (
	PrefixActive = "ACTIVE-"
	PrefixReqNeg = "REQ-NEG-"
)

// Phase-transition action names (serial variant).
const (
	ActionStart  = "START"
	ActionApply  = "APPLY"
	ActionReset  = "RESET"
	ActionFinish = "FINISH"
	ActionNoop   = "NOOP"
)

// Per-action phase prefixes (serial variant).
const (
	PrefixSelect = "SELECT-"
	PrefixDo     = "DO-"
	PrefixEnd    = "END-"
)

// Agent-order option (-o) vocabulary.
const (
	TypeAgentOrderCount   = "AGENT-ORDER-COUNT"
	PredAgentOrder        = "AGENT-ORDER"
	PredPrevAgentOrder    = "PREV-AGENT-ORDER-COUNT"
	PredNextAgentOrder    = "NEXT-AGENT-ORDER-COUNT"
	PredCurrentAgentOrder = "CURRENT-AGENT-ORDER-COUNT"
	ObjAgentCountPrefix   = "AGENT-COUNT"
)

// Max-joint-action option (-j) vocabulary.
const (
	TypeAtomicActionCount   = "ATOMIC-ACTION-COUNT"
	PredPrevAtomicAction    = "PREV-ATOMIC-ACTION-COUNT"
	PredNextAtomicAction    = "NEXT-ATOMIC-ACTION-COUNT"
	PredCurrentAtomicAction = "CURRENT-ATOMIC-ACTION-COUNT"
	ObjAtomicCountPrefix    = "ATOMIC-COUNT"
)

// Network-variant phase/bookkeeping vocabulary (spec.md §4.5 network
// variant).
const (
	PhaseAFree = "AFREE"
	PhaseATemp = "ATEMP"

	PrefixStartNode  = "START-"
	PrefixSkipNode   = "SKIP-"
	PrefixDoAction   = "DO-"
	PrefixEndNode    = "END-"
	PrefixFinishNode = "FINISH-"
	PrefixActiveNode = "ACTIVE-"
	PrefixCountNode  = "COUNT-"
	PrefixSatNode    = "SAT-"
	PrefixUsedNode   = "USED-"
	PrefixDoneNode   = "DONE-"
	PrefixSkippedNode = "SKIPPED-"

	PrefixPos = "POS-"
	PrefixNeg = "NEG-"

	PredTaken    = "TAKEN"
	PredConsec   = "CONSEC"
	ActionFree   = "FREE"
	PrefixAdd    = "ADD-"
	PrefixDelete = "DELETE-"

	// TypeAgentCount is the network variant's counter type (distinct from
	// the serial variant's AGENT-ORDER-COUNT); ObjAgentCountNetworkPrefix
	// names its n+1 objects ACOUNT-0..ACOUNT-n.
	TypeAgentCount             = "AGENT-COUNT"
	ObjAgentCountNetworkPrefix = "ACOUNT-"
)

// Requirement flags recognised in :requirements (spec.md §6).
const (
	ReqMultiAgent         = ":multi-agent"
	ReqUnfactoredPrivacy  = ":unfactored-privacy"
	ReqFactoredPrivacy    = ":factored-privacy"
	ReqConcurrencyNetwork = ":concurrency-network"
)

// OutputRequirements is the fixed :requirements list every synthesised
// domain declares (spec.md §6).
var OutputRequirements = []string{
	":equality",
	":strips",
	":typing",
	":negative-preconditions",
	":conditional-effects",
	":adl",
	":action-costs",
}

// InfinityBound is the sentinel used for an unbounded NetworkNode upper
// multiplicity bound (spec.md §3).
const InfinityBound = 1<<31 - 1

// CompilerOptions parameterises the serial-variant synthesiser.
type CompilerOptions struct {
	// UseAgentOrder enables the -o / --use-agent-order fixed round-robin
	// agent-ordering encoding (spec.md §4.5).
	UseAgentOrder bool `yaml:"useAgentOrder"`

	// MaxJointActionSize enables the -j / --max-joint-action-size bound
	// on simultaneous agent actions. Zero means unbounded (option
	// disabled).
	MaxJointActionSize int `yaml:"maxJointActionSize"`

	// Debug raises logging to debug level.
	Debug bool `yaml:"debug"`
}

// LoadOptions reads a YAML options file (the -config flag of both
// cmd/serialize and cmd/serializecn) and overlays it onto base, which
// already carries whatever -o/-j/-debug flags were passed on the command
// line. Values present in the file win over those flags; fields the file
// omits keep base's values. The read-then-unmarshal shape mirrors
// funvibe/funxy's ext.LoadConfig.
func LoadOptions(path string, base CompilerOptions) (CompilerOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("reading options file %s: %w", path, err)
	}
	out := base
	if err := yaml.Unmarshal(data, &out); err != nil {
		return base, fmt.Errorf("parsing options file %s: %w", path, err)
	}
	return out, nil
}
