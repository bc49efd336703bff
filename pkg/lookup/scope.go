package lookup

// Scope overlays one named value on top of a parent data object. Lookups of
// the name yield the value; every other step resolves against the parent,
// which is never written to. Scopes nest, so an inner loop variable shadows an
// outer one only while the inner scope is in use.
type Scope struct {
	parent any
	name   string
	value  any
}

// With returns a child scope of parent binding name to value.
func With(parent any, name string, value any) *Scope {
	return &Scope{parent: parent, name: name, value: value}
}

// Get resolves a single name through the scope chain.
func (s *Scope) Get(name string) (any, bool) {
	return s.lookup(name)
}

func (s *Scope) lookup(name string) (any, bool) {
	for current := s; current != nil; {
		if current.name == name {
			return current.value, true
		}
		parent, ok := current.parent.(*Scope)
		if !ok {
			return stepInto(current.parent, name)
		}
		current = parent
	}
	return nil, false
}
