package pddlenv

// Type is a node in the type forest: a name, a weak parent link (by
// name), and the ordered set of child links. A Type holds no list of its
// objects; each Constant records its type's name instead, and
// Env.ConstantsOfType collects them (spec.md §3). Id is the stable arena
// index assigned at creation (spec.md §9); it never changes even when the
// type is reparented.
type Type struct {
	Id       int
	Name     string
	Parent   string
	Children []string
}

// CreateType declares a new type named name, child of parentName (or of
// the implicit OBJECT root if parentName is empty). It is an error to
// redeclare an existing type name.
func (e *Env) CreateType(name string, parentName string) (*Type, error) {
	if e.types.has(name) {
		return nil, fmtErr("pddlenv: type %q already declared", name)
	}
	if parentName == "" {
		parentName = RootType
	}
	parent, ok := e.types.get(parentName)
	if !ok {
		return nil, fmtErr("pddlenv: unknown parent type %q for %q", parentName, name)
	}
	t := &Type{Id: e.types.len(), Name: name, Parent: parentName}
	e.types.set(name, t)
	parent.Children = append(parent.Children, name)
	return t, nil
}

// ConnectTypes is the symmetric low-level primitive used to splice a type
// between an existing parent and one of its former children: it removes
// childName from its current parent's child list, appends it to
// newParentName's child list, and rewrites childName's Parent link. Used
// by internal/agentinfer to insert AGENT between an inferred common
// parent and the agent subtypes (spec.md §4.1, §4.3).
func (e *Env) ConnectTypes(newParentName, childName string) error {
	child, ok := e.types.get(childName)
	if !ok {
		return fmtErr("pddlenv: unknown type %q", childName)
	}
	newParent, ok := e.types.get(newParentName)
	if !ok {
		return fmtErr("pddlenv: unknown type %q", newParentName)
	}
	if oldParent, ok := e.types.get(child.Parent); ok {
		oldParent.Children = removeString(oldParent.Children, childName)
	}
	child.Parent = newParentName
	newParent.Children = append(newParent.Children, childName)
	return nil
}

// IsAncestor reports whether ancestorName is name or a (possibly
// transitive) parent of it.
func (e *Env) IsAncestor(ancestorName, name string) bool {
	for cur := name; cur != ""; {
		if cur == ancestorName {
			return true
		}
		t, ok := e.types.get(cur)
		if !ok || t.Parent == cur {
			return false
		}
		cur = t.Parent
	}
	return false
}

func removeString(xs []string, target string) []string {
	out := xs[:0]
	for _, x := range xs {
		if x != target {
			out = append(out, x)
		}
	}
	return out
}
