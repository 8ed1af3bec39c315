package pddlenv

// Atom is one fact of an instance's initial or goal state: a predicate
// (or, when IsNumeric, a numeric fluent) name applied to a list of
// object-constant names (spec.md §3's "Instance: ... initial atoms
// (including numeric ground functions), goal atoms").
type Atom struct {
	Predicate string
	Args      []string
	IsNumeric bool
	Value     float64
}

// Instance is a problem instance bound to a Domain Env: a set of
// instance-local objects (beyond whatever constants the domain itself
// declares), an initial state, a goal state, and an optional metric
// expression carried through verbatim.
type Instance struct {
	Name    string
	Domain  string
	Objects []*Constant
	Init    []Atom
	Goal    []Atom
	Metric  string
}

// NewInstance returns an empty instance bound to a domain named
// domainName.
func NewInstance(name, domainName string) *Instance {
	return &Instance{Name: name, Domain: domainName}
}

// AddObject declares an instance-local object, distinct from the
// domain's own constants (spec.md §4.5's counter objects — AGENT-COUNT1,
// ATOMIC-COUNT0, etc. — are added this way).
func (i *Instance) AddObject(name, typeName string) *Constant {
	c := &Constant{Id: len(i.Objects), Name: name, TypeName: typeName}
	i.Objects = append(i.Objects, c)
	return c
}

// AddInit appends a propositional fact to the initial state.
func (i *Instance) AddInit(predicate string, args ...string) {
	i.Init = append(i.Init, Atom{Predicate: predicate, Args: args})
}

// AddInitNumeric appends a numeric fluent assignment to the initial
// state.
func (i *Instance) AddInitNumeric(fluent string, value float64, args ...string) {
	i.Init = append(i.Init, Atom{Predicate: fluent, Args: args, IsNumeric: true, Value: value})
}

// AddGoal appends a propositional fact to the goal state.
func (i *Instance) AddGoal(predicate string, args ...string) {
	i.Goal = append(i.Goal, Atom{Predicate: predicate, Args: args})
}
