package pddlenv

// Predicate is a lifted predicate symbol: a name and an ordered list of
// parameter types (spec.md §3). IsConcurrency marks the synthetic
// predicates created 1:1 with multi-agent actions.
type Predicate struct {
	Id            int
	Name          string
	ParamTypes    []string
	IsConcurrency bool
}

// CreatePredicate declares a new ordinary predicate. It is an error to
// redeclare an existing predicate name.
func (e *Env) CreatePredicate(name string, paramTypes []string) (*Predicate, error) {
	return e.createPredicate(name, paramTypes, false)
}

func (e *Env) createPredicate(name string, paramTypes []string, concurrency bool) (*Predicate, error) {
	if e.predicates.has(name) {
		return nil, fmtErr("pddlenv: predicate %q already declared", name)
	}
	p := &Predicate{Id: e.predicates.len(), Name: name, ParamTypes: append([]string(nil), paramTypes...), IsConcurrency: concurrency}
	e.predicates.set(name, p)
	return p, nil
}
