package refine

import (
	"context"
	"errors"
	"reflect"
	"time"
)

// Pipeline runs tag processing for type T. Pipelines are immutable after
// construction and safe for concurrent use; each call works on its own
// target.
type Pipeline[T any] struct {
	registry *Registry
	schema   *Schema
	codec    Codec
	markers  Markers
	typeName string
}

// Option configures a Pipeline.
type Option func(*options)

type options struct {
	registry *Registry
	codec    Codec
	markers  Markers
}

// WithRegistry uses r instead of the default registry.
func WithRegistry(r *Registry) Option {
	return func(o *options) { o.registry = r }
}

// WithCodec sets the codec used by Receive and Store.
func WithCodec(c Codec) Option {
	return func(o *options) { o.codec = c }
}

// WithMarkers sets the operation markers used by Apply.
func WithMarkers(m Markers) Option {
	return func(o *options) { o.markers = m }
}

// NewPipeline builds a pipeline for T.
//
// The schema for T is built (or taken from the cache) and the arguments of
// declared tags whose kinds are registered are checked. The registry is
// frozen only once both succeed, so a failed build leaves it open for a
// fix. A kind that is declared but not registered only fails when a call
// activates it. Use Validate to reject those at startup.
func NewPipeline[T any](opts ...Option) (*Pipeline[T], error) {
	o := options{registry: defaultRegistry}
	for _, opt := range opts {
		opt(&o)
	}

	schema, err := SchemaOf[T]()
	if err != nil {
		return nil, err
	}

	p := &Pipeline[T]{
		registry: o.registry,
		schema:   schema,
		codec:    o.codec,
		markers:  o.markers,
		typeName: schema.TypeName,
	}

	if err := p.checkArgs(); err != nil {
		return nil, err
	}
	o.registry.Freeze()

	emitPipelineCreated(context.Background(), p.typeName, len(schema.fields))
	return p, nil
}

// checkArgs validates every declared argument against its processor.
func (p *Pipeline[T]) checkArgs() error {
	for _, f := range p.schema.fields {
		for _, tag := range f.Tags {
			proc, err := p.registry.Resolve(tag.Kind)
			if err != nil {
				continue
			}
			if err := proc.checkArg(tag.Arg); err != nil {
				return newConfigError(ErrInvalidTag, tag.Kind, f.Name, err)
			}
		}
	}
	return nil
}

// Validate checks that every tag kind declared on T resolves in the
// registry and, when markers are configured, that every marker kind does.
func (p *Pipeline[T]) Validate() error {
	var errs []error
	for _, f := range p.schema.fields {
		for _, tag := range f.Tags {
			if _, err := p.registry.Resolve(tag.Kind); err != nil {
				errs = append(errs, newConfigError(ErrUnknownTag, tag.Kind, f.Name, nil))
			}
		}
	}
	for _, op := range p.markers.Operations() {
		for _, kind := range p.markers[op].Kinds() {
			if _, err := p.registry.Resolve(kind); err != nil {
				errs = append(errs, newConfigError(ErrUnknownTag, kind, "", errors.New("marker "+op)))
			}
		}
	}
	return errors.Join(errs...)
}

// Schema returns the field table of T.
func (p *Pipeline[T]) Schema() *Schema {
	return p.schema
}

// Process runs the tags of obj that are active in kinds, mutating obj in
// place, and returns obj.
//
// On validation failure it returns a *ValidationError listing every failure
// in field then declaration order. Transformer failures return a
// *ProcessorError immediately; obj may then be partially transformed and
// must not be reused.
func (p *Pipeline[T]) Process(ctx context.Context, obj *T, kinds ...TagKind) (*T, error) {
	return p.process(ctx, "", obj, Activate(kinds...))
}

// Apply runs Process with the kinds configured for operation.
func (p *Pipeline[T]) Apply(ctx context.Context, operation string, obj *T) (*T, error) {
	act, ok := p.markers.Activation(operation)
	if !ok {
		return nil, newConfigError(ErrUnknownMarker, "", "", errors.New(operation))
	}
	return p.process(ctx, operation, obj, act)
}

func (p *Pipeline[T]) process(ctx context.Context, operation string, obj *T, act Activation) (*T, error) {
	if obj == nil {
		return nil, newReflectionError(p.typeName, "", ErrNilTarget)
	}
	if act.Empty() {
		return obj, nil
	}

	start := time.Now()
	emitProcessStart(ctx, p.typeName, operation, act.Len())

	fields := p.schema.Scan(act)
	d := &dispatch{
		registry:   p.registry,
		activation: act,
		typeName:   p.typeName,
		target:     reflect.ValueOf(obj).Elem(),
	}

	err := d.run(fields)

	var failures int
	var verr *ValidationError
	if errors.As(err, &verr) {
		failures = len(verr.Failures)
	}
	emitProcessComplete(ctx, p.typeName, operation, time.Since(start), len(fields), d.transformed, failures, err)

	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Receive unmarshals data with the pipeline's codec and processes the
// result. Use it for DTOs arriving from a request.
func (p *Pipeline[T]) Receive(ctx context.Context, data []byte, kinds ...TagKind) (*T, error) {
	if p.codec == nil {
		return nil, newConfigError(ErrNoCodec, "", "", nil)
	}
	var obj T
	if err := p.codec.Unmarshal(data, &obj); err != nil {
		return nil, newCodecError(ErrUnmarshal, err)
	}
	return p.Process(ctx, &obj, kinds...)
}

// Store processes a copy of obj and marshals it with the pipeline's codec.
// obj itself is left unmodified. Use it just before handing data to storage.
func (p *Pipeline[T]) Store(ctx context.Context, obj *T, kinds ...TagKind) ([]byte, error) {
	if p.codec == nil {
		return nil, newConfigError(ErrNoCodec, "", "", nil)
	}
	if obj == nil {
		return nil, newReflectionError(p.typeName, "", ErrNilTarget)
	}
	clone, err := p.Process(ctx, cloneOf(obj, p.schema), kinds...)
	if err != nil {
		return nil, err
	}
	data, err := p.codec.Marshal(clone)
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	return data, nil
}
