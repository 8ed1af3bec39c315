// Package perr declares the error taxonomy of spec.md §7 as typed error
// kinds, following the pattern dolthub-go-mysql-server uses for its own
// error surface (auth/native.go, auth/auth.go): a package-level
// *errors.Kind per error class, raised with .New(args...), chained with
// .Wrap(other), and matched with .Is(err).
package perr

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrParse reports malformed PDDL: an unknown token where a type,
	// predicate, or action was expected.
	ErrParse = errors.NewKind("parse error: %s:%d: %s")

	// ErrUnknownSymbol reports a reference to a predicate, type, or
	// action that was never declared.
	ErrUnknownSymbol = errors.NewKind("unknown %s: %q")

	// ErrUsage reports missing or ill-formed CLI arguments.
	ErrUsage = errors.NewKind("usage error: %s")

	// ErrInferenceFailure reports that agent-type inference (spec.md
	// §4.3) could not find a single common parent for the inferred
	// agent types. It is not itself fatal; callers fall back to the
	// source's existing AGENT type, or raise ErrUnknownSymbol if none
	// exists.
	ErrInferenceFailure = errors.NewKind("agent-type inference failed: %s")

	// ErrInternal reports an invariant violation, e.g. an effect that
	// is structurally neither an And nor nil.
	ErrInternal = errors.NewKind("internal error: %s")
)

// ParseErrorAt builds an ErrParse for the given source file and line.
func ParseErrorAt(file string, line int, msg string) error {
	return ErrParse.New(file, line, msg)
}

// UnknownSymbol builds an ErrUnknownSymbol for the given symbol kind
// ("type", "predicate", "action", "concurrency predicate") and name.
func UnknownSymbol(kind, name string) error {
	return ErrUnknownSymbol.New(kind, name)
}
