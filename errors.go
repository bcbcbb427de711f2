package refine

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrValidation indicates one or more validators rejected the input.
	ErrValidation = errors.New("validation failed")

	// ErrReflection indicates a field could not be located, read or written.
	ErrReflection = errors.New("reflection failed")

	// ErrProcessor indicates a transformer failed.
	ErrProcessor = errors.New("processor failed")

	// ErrUnknownTag indicates a tag kind has no registered processor.
	ErrUnknownTag = errors.New("unknown tag kind")

	// ErrDuplicateTag indicates a tag kind was registered twice.
	ErrDuplicateTag = errors.New("duplicate tag kind")

	// ErrRegistryFrozen indicates a registration after the registry was frozen.
	ErrRegistryFrozen = errors.New("registry frozen")

	// ErrInvalidTag indicates a tag has an invalid format or argument.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrUnknownMarker indicates an operation has no configured marker.
	ErrUnknownMarker = errors.New("unknown marker")

	// ErrAlreadyDeclared indicates a type's field table was declared twice.
	ErrAlreadyDeclared = errors.New("type already declared")

	// ErrFieldNotFound indicates a declared field does not exist on the type.
	ErrFieldNotFound = errors.New("field not found")

	// ErrUnexported indicates a declared field is not exported.
	ErrUnexported = errors.New("field not exported")

	// ErrUnsupportedType indicates a tagged field has a shape processors cannot handle.
	ErrUnsupportedType = errors.New("unsupported field type")

	// ErrNilTarget indicates a nil object was handed to the pipeline.
	ErrNilTarget = errors.New("nil target")

	// ErrNoCodec indicates Receive or Store was called without a codec.
	ErrNoCodec = errors.New("no codec configured")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")
)

// Failure is a single validator rejection.
type Failure struct {
	Field   string  // Dotted field name, with [i] for slice elements
	Tag     TagKind // Kind of the failing validator
	Message string  // Rendered message
}

func (f Failure) String() string {
	return fmt.Sprintf("%s (%s): %s", f.Field, f.Tag, f.Message)
}

// ValidationError carries every validation failure of one call in dispatch order.
// It is the designed failure mode of Process; it is never returned empty.
type ValidationError struct {
	Failures []Failure
}

func (e *ValidationError) Error() string {
	if len(e.Failures) == 1 {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Failures[0])
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s: %d failures: %s", ErrValidation.Error(), len(e.Failures), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Fields returns the distinct failing field names in first-failure order.
func (e *ValidationError) Fields() []string {
	seen := make(map[string]bool, len(e.Failures))
	var fields []string
	for _, f := range e.Failures {
		if !seen[f.Field] {
			seen[f.Field] = true
			fields = append(fields, f.Field)
		}
	}
	return fields
}

// ReflectionError represents a structural defect in the target type or value.
type ReflectionError struct {
	Type  string // Target type name
	Field string // Field that could not be accessed, empty for the whole target
	Cause error
}

func (e *ReflectionError) Error() string {
	switch {
	case e.Field != "" && e.Cause != nil:
		return fmt.Sprintf("%s %s.%s: %v", ErrReflection.Error(), e.Type, e.Field, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("%s %s: %v", ErrReflection.Error(), e.Type, e.Cause)
	default:
		return fmt.Sprintf("%s %s.%s", ErrReflection.Error(), e.Type, e.Field)
	}
}

func (e *ReflectionError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrReflection}
	}
	return []error{ErrReflection, e.Cause}
}

// ConfigurationError represents a registry or declaration mistake.
// It wraps a sentinel error with the tag kind and, when known, the field.
type ConfigurationError struct {
	Err   error   // Underlying sentinel error (ErrUnknownTag, ErrDuplicateTag, ...)
	Tag   TagKind // Tag kind involved
	Field string  // Field that declared the tag, if any
	Cause error   // Detail, such as an argument parse error
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString(e.Err.Error())
	if e.Tag != "" {
		fmt.Fprintf(&b, " %q", string(e.Tag))
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " (field %s)", e.Field)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ProcessorError represents a transformer failure. The call is aborted and
// the target may be left partially transformed.
type ProcessorError struct {
	Field string
	Tag   TagKind
	Cause error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("%s tag %q field %s: %v", ErrProcessor.Error(), string(e.Tag), e.Field, e.Cause)
}

func (e *ProcessorError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrProcessor}
	}
	return []error{ErrProcessor, e.Cause}
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps a pipeline error to the status a request handler should
// answer with: 422 for validation and unmarshal failures, 500 otherwise.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUnmarshal):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func newConfigError(sentinel error, tag TagKind, field string, cause error) error {
	return &ConfigurationError{
		Err:   sentinel,
		Tag:   tag,
		Field: field,
		Cause: cause,
	}
}

func newReflectionError(typ, field string, cause error) error {
	return &ReflectionError{
		Type:  typ,
		Field: field,
		Cause: cause,
	}
}

func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
