package refine

import (
	"fmt"
	"reflect"
)

// dispatch holds the state of one call: the activation, the target and the
// failure accumulator. It is never shared between calls.
type dispatch struct {
	registry   *Registry
	activation Activation
	typeName   string
	target     reflect.Value
	agg        Aggregator

	transformed int
}

// run processes fields in order. Transformer errors, unresolvable tags and
// unreachable fields abort immediately; validation failures accumulate and
// are returned together at the end.
func (d *dispatch) run(fields []FieldMetadata) error {
	for _, f := range fields {
		v, ok := locate(d.target, f.Index)
		if !ok {
			continue
		}
		if !v.CanSet() {
			return newReflectionError(d.typeName, f.Name, fmt.Errorf("field cannot be set"))
		}
		if err := d.field(f, v); err != nil {
			return err
		}
	}
	return d.agg.Err()
}

// field runs f's active tags in declaration order.
func (d *dispatch) field(f FieldMetadata, v reflect.Value) error {
	for _, tag := range f.Tags {
		if !d.activation.Allows(tag.Kind) {
			continue
		}
		proc, err := d.registry.Resolve(tag.Kind)
		if err != nil {
			return newConfigError(ErrUnknownTag, tag.Kind, f.Name, nil)
		}

		switch f.shape {
		case shapeString:
			if err := d.apply(f.Name, v, tag, proc); err != nil {
				return err
			}
		case shapeStringPtr:
			if v.IsNil() {
				continue
			}
			if err := d.apply(f.Name, v.Elem(), tag, proc); err != nil {
				return err
			}
		case shapeStringSlice:
			for i := 0; i < v.Len(); i++ {
				if err := d.apply(fmt.Sprintf("%s[%d]", f.Name, i), v.Index(i), tag, proc); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// apply runs one tag slot on one string value: transform first, then
// validate the current value.
func (d *dispatch) apply(name string, v reflect.Value, tag TagDescriptor, proc Processor) error {
	value := v.String()

	if proc.transform != nil {
		out, err := proc.transform(value, tag)
		if err != nil {
			return &ProcessorError{Field: name, Tag: tag.Kind, Cause: err}
		}
		if out != value {
			v.SetString(out)
			value = out
		}
		d.transformed++
	}

	if proc.validate != nil {
		if detail, ok := proc.validate(value, tag); !ok {
			d.agg.Record(name, tag.Kind, tag.render(proc.message, name, detail))
		}
	}
	return nil
}

// locate follows index from root, dereferencing intermediate pointers.
// A nil pointer on the way means the field is absent and is skipped.
func locate(root reflect.Value, index []int) (reflect.Value, bool) {
	v := root
	for i, idx := range index {
		v = v.Field(idx)
		if i == len(index)-1 {
			break
		}
		if v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return reflect.Value{}, false
			}
			v = v.Elem()
		}
	}
	return v, true
}
