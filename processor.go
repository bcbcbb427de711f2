package refine

import "errors"

var errNoBehavior = errors.New("processor has neither transform nor validate")

// TransformFunc rewrites a field value. An error means the transformer cannot
// handle the input and aborts the call.
type TransformFunc func(value string, tag TagDescriptor) (string, error)

// ValidateFunc reports whether value is acceptable. detail is substituted for
// {detail} in the failure message, e.g. the offending character.
type ValidateFunc func(value string, tag TagDescriptor) (detail string, ok bool)

// ArgCheck rejects a malformed tag argument before any call runs.
type ArgCheck func(arg string) error

// Processor is the behavior bound to a tag kind. It is either a transformer,
// a validator, or a sanitizer that transforms then validates within the same
// tag slot. Processors are stateless values shared by every call.
type Processor struct {
	transform TransformFunc
	validate  ValidateFunc
	message   string
	check     ArgCheck
}

// Transformer returns a Processor that rewrites values.
func Transformer(fn TransformFunc) Processor {
	return Processor{transform: fn}
}

// Validator returns a Processor that accepts or rejects values. message is
// the default failure template; descriptors may override it.
func Validator(fn ValidateFunc, message string) Processor {
	return Processor{validate: fn, message: message}
}

// Sanitizer returns a Processor that transforms and then validates the
// transformed value.
func Sanitizer(transform TransformFunc, validate ValidateFunc, message string) Processor {
	return Processor{transform: transform, validate: validate, message: message}
}

// WithArgCheck returns a copy of p that validates tag arguments when a
// pipeline is built.
func (p Processor) WithArgCheck(check ArgCheck) Processor {
	p.check = check
	return p
}

// IsTransformer reports whether p rewrites values.
func (p Processor) IsTransformer() bool { return p.transform != nil }

// IsValidator reports whether p rejects values.
func (p Processor) IsValidator() bool { return p.validate != nil }

func (p Processor) valid() bool {
	return p.transform != nil || p.validate != nil
}

// checkArg runs the argument check, if any.
func (p Processor) checkArg(arg string) error {
	if p.check == nil {
		return nil
	}
	return p.check(arg)
}
