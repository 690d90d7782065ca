package engine

import (
	"github.com/buildlane/ifcbridge/pkg/ifc"
)

// StoreyRef identifies the storey containing an element.
type StoreyRef struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	Elevation *float64 `json:"elevation,omitempty"`
}

// BuildingRef identifies the building containing an element.
type BuildingRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// SpaceRef identifies the space containing an element.
type SpaceRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ContainmentPath is the resolved spatial containment of an element.
// Fields are nil when the corresponding container does not exist;
// absence is not an error.
type ContainmentPath struct {
	Storey   *StoreyRef   `json:"storey,omitempty"`
	Building *BuildingRef `json:"building,omitempty"`
	Space    *SpaceRef    `json:"space,omitempty"`
}

// ResolveContainment walks an element's spatial-containment
// relationship to its direct container, then upward through the
// aggregation hierarchy. A storey container yields storey and building;
// a space container additionally records the space and resolves the
// storey transitively. Only the nearest container of each kind is kept.
func (e *Engine) ResolveContainment(el *ifc.Entity) ContainmentPath {
	var path ContainmentPath

	for _, rel := range e.doc.RelationshipsOf(el) {
		if rel.Kind != ifc.RelContainedIn {
			continue
		}
		container := e.doc.Entity(rel.Target)
		if container == nil {
			continue
		}

		switch container.Type {
		case "IfcBuildingStorey":
			if path.Storey == nil {
				path.Storey = storeyRef(container)
				if path.Building == nil {
					path.Building = e.buildingAbove(container)
				}
			}
		case "IfcSpace":
			if path.Space == nil {
				path.Space = &SpaceRef{ID: container.GlobalID, Name: container.Name()}
				if storey := e.parentOfType(container, "IfcBuildingStorey"); storey != nil {
					if path.Storey == nil {
						path.Storey = storeyRef(storey)
					}
					if path.Building == nil {
						path.Building = e.buildingAbove(storey)
					}
				}
			}
		}
	}
	return path
}

func (e *Engine) buildingAbove(storey *ifc.Entity) *BuildingRef {
	building := e.parentOfType(storey, "IfcBuilding")
	if building == nil {
		return nil
	}
	return &BuildingRef{ID: building.GlobalID, Name: building.Name()}
}

// parentOfType follows the decomposition edges of an entity upward and
// returns the first parent of the wanted type.
func (e *Engine) parentOfType(child *ifc.Entity, typeTag string) *ifc.Entity {
	for _, rel := range e.doc.RelationshipsOf(child) {
		if rel.Kind != ifc.RelDecomposes {
			continue
		}
		parent := e.doc.Entity(rel.Target)
		if parent != nil && parent.Type == typeTag {
			return parent
		}
	}
	return nil
}

func storeyRef(storey *ifc.Entity) *StoreyRef {
	ref := &StoreyRef{ID: storey.GlobalID, Name: storey.Name()}
	if v, ok := storey.Attr("Elevation"); ok {
		if f, ok := v.AsFloat(); ok {
			ref.Elevation = &f
		}
	}
	return ref
}
