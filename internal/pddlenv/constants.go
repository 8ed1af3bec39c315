package pddlenv

// Constant is a single object belonging to exactly one (leaf) type, but
// visible to every ancestor of that type (spec.md §3).
type Constant struct {
	Id       int
	Name     string
	TypeName string
}

// CreateConstant declares object name of type typeName in the
// environment's constants table; typeName must already be declared. The
// Type itself is left unchanged: it keeps no object list.
func (e *Env) CreateConstant(name, typeName string) (*Constant, error) {
	if e.constants.has(name) {
		return nil, fmtErr("pddlenv: object %q already declared", name)
	}
	t, ok := e.types.get(typeName)
	if !ok {
		return nil, fmtErr("pddlenv: unknown type %q for object %q", typeName, name)
	}
	_ = t
	c := &Constant{Id: e.constants.len(), Name: name, TypeName: typeName}
	e.constants.set(name, c)
	return c, nil
}

// ConstantsOfType returns every object whose declared type is exactly
// typeName (not including subtypes).
func (e *Env) ConstantsOfType(typeName string) []*Constant {
	var out []*Constant
	for _, c := range e.constants.values() {
		if c.TypeName == typeName {
			out = append(out, c)
		}
	}
	return out
}
