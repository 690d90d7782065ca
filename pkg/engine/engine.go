// Package engine derives physical quantities, material compositions and
// storey partitions from an opened building-model document. All
// resolution is read-only over the source document; the only mutable
// state is the per-engine memoization cache.
package engine

import (
	"sync"

	"github.com/buildlane/ifcbridge/pkg/ifc"
)

// maxCacheEntries bounds each memoization map. Batch jobs over very
// large documents call ClearCaches between documents; the bound is a
// backstop when they don't.
const maxCacheEntries = 8192

// Engine resolves attributes, quantities and materials for elements of
// one document. Construct one engine per opened document; it is safe
// for concurrent readers.
type Engine struct {
	doc   *ifc.Document
	units UnitTable

	mu         sync.Mutex
	volumes    map[int64]Quantity
	areas      map[int64]Quantity
	dimensions map[int64]Dimensions
	properties map[int64]map[string]any
	types      map[int64]*string
}

// New creates an engine for the document and resolves its unit table.
func New(doc *ifc.Document) *Engine {
	e := &Engine{
		doc:   doc,
		units: ResolveUnits(doc),
	}
	e.resetCaches()
	return e
}

// Document returns the engine's source document.
func (e *Engine) Document() *ifc.Document { return e.doc }

// Units returns the resolved unit table.
func (e *Engine) Units() UnitTable { return e.units }

// ClearCaches drops all memoized results. Call between batch jobs to
// bound memory.
func (e *Engine) ClearCaches() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetCaches()
}

func (e *Engine) resetCaches() {
	e.volumes = map[int64]Quantity{}
	e.areas = map[int64]Quantity{}
	e.dimensions = map[int64]Dimensions{}
	e.properties = map[int64]map[string]any{}
	e.types = map[int64]*string{}
}

func cacheVolume(e *Engine, id int64, compute func() Quantity) Quantity {
	e.mu.Lock()
	if q, ok := e.volumes[id]; ok {
		e.mu.Unlock()
		return q
	}
	e.mu.Unlock()
	q := compute()
	e.mu.Lock()
	if len(e.volumes) >= maxCacheEntries {
		e.volumes = map[int64]Quantity{}
	}
	e.volumes[id] = q
	e.mu.Unlock()
	return q
}

func cacheArea(e *Engine, id int64, compute func() Quantity) Quantity {
	e.mu.Lock()
	if q, ok := e.areas[id]; ok {
		e.mu.Unlock()
		return q
	}
	e.mu.Unlock()
	q := compute()
	e.mu.Lock()
	if len(e.areas) >= maxCacheEntries {
		e.areas = map[int64]Quantity{}
	}
	e.areas[id] = q
	e.mu.Unlock()
	return q
}

func cacheDimensions(e *Engine, id int64, compute func() Dimensions) Dimensions {
	e.mu.Lock()
	if d, ok := e.dimensions[id]; ok {
		e.mu.Unlock()
		return d
	}
	e.mu.Unlock()
	d := compute()
	e.mu.Lock()
	if len(e.dimensions) >= maxCacheEntries {
		e.dimensions = map[int64]Dimensions{}
	}
	e.dimensions[id] = d
	e.mu.Unlock()
	return d
}
