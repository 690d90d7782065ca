package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/buildlane/ifcbridge/pkg/ifc"
	"github.com/buildlane/ifcbridge/pkg/logger"
)

// ErrNoStoreys is returned when a document declares no building
// storeys; a split has nothing to produce.
var ErrNoStoreys = errors.New("no storeys found in the document")

// SplitResult is one storey's extracted sub-document.
type SplitResult struct {
	StoreyName     string
	StoreyGlobalID string
	Document       *ifc.Document
}

// SplitByStorey partitions the document into one self-contained
// sub-document per storey. Storeys are processed in parallel over the
// read-only source document and emitted in declaration order. A storey
// that fails is logged and skipped; the rest of the batch continues.
func (e *Engine) SplitByStorey(ctx context.Context) ([]SplitResult, error) {
	storeys := e.doc.ByType("IfcBuildingStorey")
	if len(storeys) == 0 {
		return nil, ErrNoStoreys
	}

	logger.Info("[Split] Processing storeys", "count", len(storeys))

	results := make([]*SplitResult, len(storeys))
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())

	for i, storey := range storeys {
		idx, st := i, storey
		eg.Go(func() error {
			select {
			case <-gCtx.Done():
				return nil
			default:
			}

			sub, err := e.extractStorey(st)
			if err != nil {
				logger.Error("[Split] Skipping storey", "storey", st.Name(), "err", err)
				return nil
			}

			name := st.Name()
			if name == "" {
				name = "Unnamed"
			}
			results[idx] = &SplitResult{
				StoreyName:     name,
				StoreyGlobalID: st.GlobalID,
				Document:       sub,
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]SplitResult, 0, len(storeys))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// extractStorey builds a new document scoped to one storey: products
// are added broadly (elements outside the storey lose their geometric
// representation but stay as placeholders), the inverse-relationship
// closure is repaired, and a final pass prunes element entities that
// still fail the storey test. Adding broadly before pruning keeps the
// inverse relationships of shared entities intact.
func (e *Engine) extractStorey(storey *ifc.Entity) (doc *ifc.Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("storey extraction panicked: %v", r)
		}
	}()

	src := e.doc
	dst := ifc.NewDocument(src.Schema())
	for k, v := range src.Header() {
		dst.SetHeader(k, v)
	}

	var products []*ifc.Entity
	if src.Schema() == ifc.SchemaIFC2X3 {
		products = append(src.ByType("IfcProject"), src.ByType(ifc.TypeProduct)...)
	} else {
		products = append(src.ByType(ifc.TypeContext), src.ByType(ifc.TypeProduct)...)
	}

	added := map[int64]bool{}
	var inverseSources []int64

	for _, product := range products {
		strip := ifc.IsElement(product.Type) && !e.isInStorey(product, storey)
		if !copyEntityDeep(dst, src, product.ID, strip, added) {
			logger.Warn("[Split] Skipping unresolvable product", "id", product.ID, "storey", storey.Name())
			continue
		}
		for _, rel := range src.InverseRelationshipsOf(product) {
			inverseSources = append(inverseSources, rel.Source)
		}
	}

	// Closure repair: pull in every entity that points at a kept one,
	// so property sets, material associations and type definitions
	// survive into the sub-document.
	for _, id := range inverseSources {
		copyEntityDeep(dst, src, id, false, added)
	}

	for _, rel := range src.Relationships() {
		if added[rel.Source] && added[rel.Target] {
			dst.Relate(rel.Kind, rel.Source, rel.Target)
		}
	}

	for _, el := range dst.ByType(ifc.TypeElement) {
		source := src.Entity(el.ID)
		if source == nil || !e.isInStorey(source, storey) {
			dst.Remove(el)
		}
	}

	return dst, nil
}

// copyEntityDeep clones an entity into dst together with everything
// reachable through its attribute references. Stripping the geometric
// representation happens before the walk, so excluded elements never
// drag their geometry subtree along.
func copyEntityDeep(dst, src *ifc.Document, id int64, stripRepresentation bool, added map[int64]bool) bool {
	if added[id] {
		return true
	}
	entity := src.Entity(id)
	if entity == nil {
		return false
	}
	added[id] = true

	clone := entity.Clone()
	if stripRepresentation {
		delete(clone.Attributes, "Representation")
	}
	dst.Add(clone)

	for _, v := range clone.Attributes {
		copyValueRefs(dst, src, v, added)
	}
	return true
}

func copyValueRefs(dst, src *ifc.Document, v ifc.Value, added map[int64]bool) {
	switch v.Kind() {
	case ifc.KindRef:
		if id, ok := v.AsRef(); ok {
			copyEntityDeep(dst, src, id, false, added)
		}
	case ifc.KindList:
		items, _ := v.AsList()
		for _, item := range items {
			copyValueRefs(dst, src, item, added)
		}
	case ifc.KindMap:
		m, _ := v.AsMap()
		for _, item := range m {
			copyValueRefs(dst, src, item, added)
		}
	}
}

// isInStorey is the direct-parent containment test used for
// partitioning: the element's first spatial-containment relationship
// must point at this exact storey. Unlike ResolveContainment it does
// not look through spaces; collapsing the two rules would change which
// elements land in which storey file.
func (e *Engine) isInStorey(el *ifc.Entity, storey *ifc.Entity) bool {
	for _, rel := range e.doc.RelationshipsOf(el) {
		if rel.Kind != ifc.RelContainedIn {
			continue
		}
		container := e.doc.Entity(rel.Target)
		return container != nil &&
			container.Type == "IfcBuildingStorey" &&
			container.GlobalID == storey.GlobalID
	}
	return false
}
