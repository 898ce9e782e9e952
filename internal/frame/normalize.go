package frame

// Normalize collapses the redundant wrapper the builder's conservative
// recursion produces: a struct with a single field at offset 0 whose
// type is itself a struct with a single field at offset 0 reduces to
// the inner field's type. Children are normalized first, so wrappers
// collapse bottom-up. Scalars pass through untouched. Normalize
// mutates the tree in place and is idempotent; the returned root may
// differ from o when o itself was a wrapper.
func Normalize(o Object) Object {
	switch t := o.(type) {
	case *Array:
		t.Elem = Normalize(t.Elem)
	case *Struct:
		for i := range t.Fields {
			t.Fields[i].Type = Normalize(t.Fields[i].Type)
		}
		if inner, ok := singleFieldAtZero(t); ok {
			if grand, ok := singleFieldAtZero(inner); ok {
				return grand
			}
		}
	}
	return o
}

// singleFieldAtZero returns the field type when o is a struct with
// exactly one field at relative offset 0.
func singleFieldAtZero(o Object) (Object, bool) {
	s, ok := o.(*Struct)
	if !ok || len(s.Fields) != 1 || s.Fields[0].Offset != 0 {
		return nil, false
	}
	return s.Fields[0].Type, true
}
