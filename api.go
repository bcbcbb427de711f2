// Package refine prepares entities for persistence by running declarative,
// tag-driven field processing.
//
// A field declares an ordered list of tag kinds. A call activates a set of
// kinds. For every field carrying an active tag the pipeline resolves the
// kind in a write-once Registry and runs the bound Processor: transformers
// rewrite the field in place, validators record failures. Every failure of
// one call is reported together in a single ValidationError.
//
// # Tag Syntax
//
// Tags are declared in the refine struct tag, comma separated, in the order
// they run. A kind may carry one argument after the first "=":
//
//	type Employee struct {
//	    Name    string `json:"name" refine:"trim,normalize-name,no-digits"`
//	    Email   string `json:"email" refine:"trim,lowercase,rule=email"`
//	    Country string `json:"country" refine:"uppercase,pattern=^[A-Z]{2}$"`
//	}
//
// # Basic Usage
//
//	emp := &Employee{Name: "  john  smith ", Email: "John@Example.com"}
//
//	emp, err := refine.Process(ctx, emp, refine.TagTrim, refine.TagNormalizeName, refine.TagNoDigits)
//	var verr *refine.ValidationError
//	if errors.As(err, &verr) {
//	    // verr.Failures lists every (field, tag, message) in dispatch order
//	}
//
// Kinds that are declared on a field but not activated are never run.
//
// # Explicit Declaration
//
// Types can skip struct-tag scanning and register a static field table at
// startup:
//
//	refine.Declare[Employee](
//	    refine.Field("Name", refine.Tag(refine.TagCapitalize), refine.Tag(refine.TagNoDigits)),
//	)
//
// or implement Declarer.
//
// # Built-in Kinds
//
// Transformers: trim, lowercase, uppercase, capitalize, normalize-name,
// hash, mask, redact.
//
// Validators: no-digits, not-blank, min-length, max-length, pattern, rule.
//
// Encryption needs a key, so it is registered by the caller:
//
//	enc, _ := refine.AES(key)
//	refine.MustRegister(refine.TagEncrypt, refine.Encrypting(enc))
//
// # Markers
//
// Operations can name their active kinds in configuration instead of code:
//
//	REFINE_MARKER_CREATE=normalize-name,lowercase
//
//	markers, _ := refine.LoadMarkers("REFINE_MARKER_")
//	pipe, _ := refine.NewPipeline[Employee](refine.WithMarkers(markers))
//	emp, err := pipe.Apply(ctx, "create", emp)
//
// # Codec Providers
//
// Receive and Store wrap a codec boundary around processing. Implementations
// are available as submodules: json, xml, yaml, msgpack, bson.
package refine

import "context"

// Process runs the cached default pipeline for T over obj with the given
// kinds active. obj is mutated in place and returned.
func Process[T any](ctx context.Context, obj *T, kinds ...TagKind) (*T, error) {
	p, err := Use[T]()
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, obj, kinds...)
}
