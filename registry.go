package refine

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
)

// Registry maps tag kinds to processors. It is populated during startup and
// frozen before first use; after Freeze, Resolve reads without locking.
//
// Register and Resolve must not race: register everything first, then
// freeze. Building a Pipeline freezes its registry.
type Registry struct {
	mu         sync.Mutex
	frozen     atomic.Bool
	processors map[TagKind]Processor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{processors: make(map[TagKind]Processor)}
}

// Register binds kind to p. Registering a kind twice, registering an invalid
// processor, or registering after Freeze fails with a ConfigurationError.
func (r *Registry) Register(kind TagKind, p Processor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case r.frozen.Load():
		return newConfigError(ErrRegistryFrozen, kind, "", nil)
	case kind == "":
		return newConfigError(ErrInvalidTag, kind, "", nil)
	case !p.valid():
		return newConfigError(ErrInvalidTag, kind, "", errNoBehavior)
	}
	if _, ok := r.processors[kind]; ok {
		return newConfigError(ErrDuplicateTag, kind, "", nil)
	}
	r.processors[kind] = p
	return nil
}

// MustRegister is Register that panics on error. Intended for init.
func (r *Registry) MustRegister(kind TagKind, p Processor) *Registry {
	if err := r.Register(kind, p); err != nil {
		panic(err)
	}
	return r
}

// Resolve returns the processor bound to kind. It locks only while the
// registry is still open for registration.
func (r *Registry) Resolve(kind TagKind) (Processor, error) {
	if !r.frozen.Load() {
		r.mu.Lock()
		defer r.mu.Unlock()
	}
	p, ok := r.processors[kind]
	if !ok {
		return Processor{}, newConfigError(ErrUnknownTag, kind, "", nil)
	}
	return p, nil
}

// Freeze makes the registry read-only. It is idempotent.
func (r *Registry) Freeze() *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen.CompareAndSwap(false, true) {
		emitRegistryFrozen(context.Background(), len(r.processors))
	}
	return r
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Kinds returns the registered kinds in lexical order.
func (r *Registry) Kinds() []TagKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]TagKind, 0, len(r.processors))
	for k := range r.processors {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

var defaultRegistry = Builtins()

// Default returns the process-wide registry used when no registry option is
// given. It starts with the built-in kinds.
func Default() *Registry {
	return defaultRegistry
}

// Register binds kind to p in the default registry. Call it from init or
// main before any pipeline is built.
func Register(kind TagKind, p Processor) error {
	return defaultRegistry.Register(kind, p)
}

// MustRegister is Register that panics on error.
func MustRegister(kind TagKind, p Processor) {
	defaultRegistry.MustRegister(kind, p)
}
