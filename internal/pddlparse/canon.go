package pddlparse

import "strings"

// canon is the single case-normalisation point for every symbol name
// (type, predicate, action, object, requirement) read off the lexer,
// which already lower-cases SYMBOL/VARIABLE literals (internal/pddllex);
// canon re-upper-cases them so parsed names land in the same convention
// internal/config's synthesised vocabulary uses (FREE-BLOCK, ACTIVE-p,
// ...), avoiding a silent case mismatch between source and synthesised
// predicates.
func canon(s string) string { return strings.ToUpper(s) }
