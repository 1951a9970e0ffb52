package codegen

// FieldSet is an immutable set of field ids proven to be present along the
// current path. With shares the receiver, so siblings built from the same
// parent never see each other's additions. The nil set is empty.
type FieldSet struct {
	id     string
	parent *FieldSet
	size   int
}

// Has reports whether id is in the set.
func (s *FieldSet) Has(id string) bool {
	for n := s; n != nil; n = n.parent {
		if n.id == id {
			return true
		}
	}
	return false
}

// With returns a set that also contains id.
func (s *FieldSet) With(id string) *FieldSet {
	if s.Has(id) {
		return s
	}
	return &FieldSet{id: id, parent: s, size: s.Len() + 1}
}

// Len returns the number of ids in the set.
func (s *FieldSet) Len() int {
	if s == nil {
		return 0
	}
	return s.size
}

// ids returns the ids in insertion order.
func (s *FieldSet) ids() []string {
	out := make([]string, s.Len())
	i := len(out) - 1
	for n := s; n != nil; n = n.parent {
		out[i] = n.id
		i--
	}
	return out
}
