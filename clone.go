package refine

import "reflect"

// Cloner allows types to provide deep copy logic.
//
// Store processes a copy so the caller's object is left untouched. Without
// Cloner, Store copies every tagged *string and []string, plus each struct
// pointer on the way to a tagged field. Implement Cloner when the copy needs
// more than that.
//
//	func (e Employee) Clone() Employee {
//	    aliases := make([]string, len(e.Aliases))
//	    copy(aliases, e.Aliases)
//	    e.Aliases = aliases
//	    return e
//	}
type Cloner[T any] interface {
	Clone() T
}

// cloneOf returns a copy of obj that processing under s cannot see through
// to obj. Cloner wins when T implements it.
func cloneOf[T any](obj *T, s *Schema) *T {
	if c, ok := any(*obj).(Cloner[T]); ok {
		clone := c.Clone()
		return &clone
	}
	clone := *obj
	root := reflect.ValueOf(&clone).Elem()

	// Struct pointers shared by several tagged fields are copied once.
	copied := make(map[uintptr]bool)
	for _, f := range s.fields {
		detachField(root, f, copied)
	}
	return &clone
}

// detachField replaces every pointer on f's path, and f's own backing
// storage, with fresh copies.
func detachField(root reflect.Value, f FieldMetadata, copied map[uintptr]bool) {
	v := root
	for i, idx := range f.Index {
		v = v.Field(idx)
		if i == len(f.Index)-1 {
			break
		}
		if v.Kind() != reflect.Pointer {
			continue
		}
		if v.IsNil() {
			return
		}
		if !copied[v.Pointer()] {
			cp := reflect.New(v.Type().Elem())
			cp.Elem().Set(v.Elem())
			v.Set(cp)
			copied[cp.Pointer()] = true
		}
		v = v.Elem()
	}

	switch f.shape {
	case shapeStringPtr:
		if v.IsNil() {
			return
		}
		cp := reflect.New(v.Type().Elem())
		cp.Elem().Set(v.Elem())
		v.Set(cp)
	case shapeStringSlice:
		if v.IsNil() {
			return
		}
		cp := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		reflect.Copy(cp, v)
		v.Set(cp)
	}
}
