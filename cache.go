package refine

import (
	"reflect"
	"sync"
)

var (
	pipelines   = make(map[reflect.Type]any)
	pipelinesMu sync.RWMutex
)

// Use returns the cached default pipeline for T, building it on first use.
// The default pipeline uses the default registry and has no codec or
// markers; build one with NewPipeline for anything else.
func Use[T any]() (*Pipeline[T], error) {
	typ := reflect.TypeFor[T]()

	// Fast path: read-lock cache check
	pipelinesMu.RLock()
	if cached, ok := pipelines[typ]; ok {
		pipelinesMu.RUnlock()
		return cached.(*Pipeline[T]), nil
	}
	pipelinesMu.RUnlock()

	// Slow path: build and cache with write-lock
	pipelinesMu.Lock()
	defer pipelinesMu.Unlock()

	// Double-check pattern
	if cached, ok := pipelines[typ]; ok {
		return cached.(*Pipeline[T]), nil
	}

	p, err := NewPipeline[T]()
	if err != nil {
		return nil, err
	}

	pipelines[typ] = p
	return p, nil
}

// Reset clears the pipeline and schema caches.
// This is primarily useful for test isolation.
func Reset() {
	pipelinesMu.Lock()
	defer pipelinesMu.Unlock()
	pipelines = make(map[reflect.Type]any)
	ResetSchemas()
}
