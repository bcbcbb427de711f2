package refine

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/zoobzio/sentinel"
)

// tagKey is the struct tag scanned for declarations.
const tagKey = "refine"

func init() {
	sentinel.Tag(tagKey)
}

// fieldShape is how a tagged field holds its string value(s).
type fieldShape int

const (
	shapeString      fieldShape = iota // string or named string type
	shapeStringPtr                     // *string, nil is skipped
	shapeStringSlice                   // []string, per element
)

// FieldMetadata describes one tagged field of a processable type.
type FieldMetadata struct {
	Name  string          // Dotted path from the root type, e.g. "Address.City"
	Type  reflect.Type    // Declared field type
	Index []int           // Access path for reflect.Value.Field
	Tags  []TagDescriptor // In declaration order

	shape fieldShape
}

// activeIn reports whether at least one of f's tags is active.
func (f FieldMetadata) activeIn(a Activation) bool {
	for _, t := range f.Tags {
		if a.Allows(t.Kind) {
			return true
		}
	}
	return false
}

// Schema is the static descriptor table of a type: its tagged fields in
// declared field order. Schemas are built once per type and never mutated.
type Schema struct {
	TypeName string
	fields   []FieldMetadata
}

// Fields returns every tagged field.
func (s *Schema) Fields() []FieldMetadata {
	return slices.Clone(s.fields)
}

// Scan returns, in declared order, the fields carrying at least one tag
// active in a. Fields without active tags are not returned.
func (s *Schema) Scan(a Activation) []FieldMetadata {
	if a.Empty() {
		return nil
	}
	var out []FieldMetadata
	for _, f := range s.fields {
		if f.activeIn(a) {
			out = append(out, f)
		}
	}
	return out
}

// FieldSpec is an explicit declaration of one field's tags.
type FieldSpec struct {
	Path string // Field name, dotted for nested structs
	Tags []TagDescriptor
}

// Field returns a FieldSpec for path with tags in the given order.
func Field(path string, tags ...TagDescriptor) FieldSpec {
	return FieldSpec{Path: path, Tags: tags}
}

var (
	schemas   = make(map[reflect.Type]*Schema)
	schemasMu sync.RWMutex
)

// Declare registers an explicit field table for T, replacing struct-tag
// scanning. Call it during startup, before any pipeline for T is built.
// Declaring the same type twice fails.
func Declare[T any](fields ...FieldSpec) error {
	rt := reflect.TypeFor[T]()

	schema, err := buildFromSpecs(rt, fields)
	if err != nil {
		return err
	}

	schemasMu.Lock()
	defer schemasMu.Unlock()
	if _, ok := schemas[rt]; ok {
		return newConfigError(ErrAlreadyDeclared, "", rt.String(), nil)
	}
	schemas[rt] = schema
	return nil
}

// SchemaOf returns the schema for T, building and caching it on first use.
func SchemaOf[T any]() (*Schema, error) {
	rt := reflect.TypeFor[T]()

	// Fast path: read-lock cache check
	schemasMu.RLock()
	if s, ok := schemas[rt]; ok {
		schemasMu.RUnlock()
		return s, nil
	}
	schemasMu.RUnlock()

	schemasMu.Lock()
	defer schemasMu.Unlock()

	// Double-check pattern
	if s, ok := schemas[rt]; ok {
		return s, nil
	}

	s, err := buildSchema[T](rt)
	if err != nil {
		return nil, err
	}
	schemas[rt] = s
	return s, nil
}

// ResetSchemas clears the schema cache, including declarations.
// This is primarily useful for test isolation.
func ResetSchemas() {
	schemasMu.Lock()
	defer schemasMu.Unlock()
	schemas = make(map[reflect.Type]*Schema)
}

func buildSchema[T any](rt reflect.Type) (*Schema, error) {
	if rt.Kind() != reflect.Struct {
		return nil, newReflectionError(rt.String(), "", fmt.Errorf("%w: %s is not a struct", ErrUnsupportedType, rt.Kind()))
	}

	var zero T
	if d, ok := any(&zero).(Declarer); ok {
		return buildFromSpecs(rt, d.RefineFields())
	}

	s := &Schema{TypeName: rt.String()}
	if err := checkUnexported(s.TypeName, rt, ""); err != nil {
		return nil, err
	}
	meta := sentinel.Scan[T]()
	seen := map[reflect.Type]bool{rt: true}
	if err := walkFields(s, meta.Fields, nil, "", seen); err != nil {
		return nil, err
	}
	return s, nil
}

// walkFields flattens nested structs into s, depth first, in declared order.
func walkFields(s *Schema, fields []sentinel.FieldMetadata, parentIndex []int, prefix string, seen map[reflect.Type]bool) error {
	for _, field := range fields {
		index := append(slices.Clone(parentIndex), field.Index...)
		name := field.Name
		if prefix != "" {
			name = prefix + "." + field.Name
		}

		if raw, ok := field.Tags[tagKey]; ok && raw != "" {
			tags, err := ParseTags(raw)
			if err != nil {
				return newConfigError(ErrInvalidTag, "", name, err)
			}
			shape, err := shapeOf(field.ReflectType)
			if err != nil {
				return newReflectionError(s.TypeName, name, err)
			}
			if len(tags) > 0 {
				s.fields = append(s.fields, FieldMetadata{
					Name:  name,
					Type:  field.ReflectType,
					Index: index,
					Tags:  tags,
					shape: shape,
				})
			}
			continue
		}

		nested := field.ReflectType
		if nested.Kind() == reflect.Pointer {
			nested = nested.Elem()
		}
		if nested.Kind() != reflect.Struct || seen[nested] {
			continue
		}
		if err := checkUnexported(s.TypeName, nested, name); err != nil {
			return err
		}
		seen[nested] = true
		if err := walkFields(s, scanNested(nested), index, name, seen); err != nil {
			return err
		}
		delete(seen, nested)
	}
	return nil
}

// checkUnexported rejects tagged fields of rt that cannot be read or set.
func checkUnexported(typeName string, rt reflect.Type, prefix string) error {
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if sf.IsExported() {
			continue
		}
		if raw, ok := sf.Tag.Lookup(tagKey); ok && raw != "" {
			name := sf.Name
			if prefix != "" {
				name = prefix + "." + sf.Name
			}
			return newReflectionError(typeName, name, ErrUnexported)
		}
	}
	return nil
}

// scanNested reads the exported fields of a nested struct type.
func scanNested(rt reflect.Type) []sentinel.FieldMetadata {
	if meta, ok := sentinel.Lookup(rt.String()); ok {
		return meta.Fields
	}

	fields := make([]sentinel.FieldMetadata, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tags := map[string]string{}
		if v, ok := sf.Tag.Lookup(tagKey); ok {
			tags[tagKey] = v
		}
		fields = append(fields, sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        tags,
		})
	}
	return fields
}

// buildFromSpecs resolves explicit declarations against rt and orders them
// by the type's declared field order.
func buildFromSpecs(rt reflect.Type, specs []FieldSpec) (*Schema, error) {
	if rt.Kind() != reflect.Struct {
		return nil, newReflectionError(rt.String(), "", fmt.Errorf("%w: %s is not a struct", ErrUnsupportedType, rt.Kind()))
	}

	s := &Schema{TypeName: rt.String()}
	declared := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if declared[spec.Path] {
			return nil, newConfigError(ErrInvalidTag, "", spec.Path, fmt.Errorf("field declared twice"))
		}
		declared[spec.Path] = true

		sf, index, err := resolvePath(rt, spec.Path)
		if err != nil {
			return nil, newReflectionError(s.TypeName, spec.Path, err)
		}
		shape, err := shapeOf(sf.Type)
		if err != nil {
			return nil, newReflectionError(s.TypeName, spec.Path, err)
		}
		for _, t := range spec.Tags {
			if t.Kind == "" {
				return nil, newConfigError(ErrInvalidTag, "", spec.Path, fmt.Errorf("empty tag kind"))
			}
		}
		if len(spec.Tags) == 0 {
			continue
		}
		s.fields = append(s.fields, FieldMetadata{
			Name:  spec.Path,
			Type:  sf.Type,
			Index: index,
			Tags:  slices.Clone(spec.Tags),
			shape: shape,
		})
	}

	slices.SortStableFunc(s.fields, func(a, b FieldMetadata) int {
		return slices.Compare(a.Index, b.Index)
	})
	return s, nil
}

// resolvePath walks a dotted field path through structs and struct pointers.
func resolvePath(rt reflect.Type, path string) (reflect.StructField, []int, error) {
	var (
		sf    reflect.StructField
		index []int
		cur   = rt
	)
	for i, seg := range strings.Split(path, ".") {
		if seg == "" {
			return sf, nil, fmt.Errorf("%w: malformed path %q", ErrFieldNotFound, path)
		}
		if i > 0 {
			if cur.Kind() == reflect.Pointer {
				cur = cur.Elem()
			}
			if cur.Kind() != reflect.Struct {
				return sf, nil, fmt.Errorf("%w: %s is not a struct", ErrFieldNotFound, cur)
			}
		}
		f, ok := cur.FieldByName(seg)
		if !ok {
			return sf, nil, fmt.Errorf("%w: %s", ErrFieldNotFound, seg)
		}
		if !f.IsExported() {
			return sf, nil, fmt.Errorf("%w: %s", ErrUnexported, seg)
		}
		sf = f
		index = append(index, f.Index...)
		cur = f.Type
	}
	return sf, index, nil
}

func shapeOf(t reflect.Type) (fieldShape, error) {
	switch {
	case t.Kind() == reflect.String:
		return shapeString, nil
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.String:
		return shapeStringPtr, nil
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.String:
		return shapeStringSlice, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}
}
