package engine

import (
	"github.com/buildlane/ifcbridge/pkg/ifc"
)

// Shared fixture builders for the engine tests. Documents are built the
// way the codec would deliver them: entities plus typed relationships,
// with property and quantity sets pointing at the elements they define.

func newTestDocument(units ...*ifc.Entity) (*ifc.Document, *ifc.Entity) {
	doc := ifc.NewDocument(ifc.SchemaIFC4)
	doc.SetHeader("name", "test-model")

	if len(units) == 0 {
		units = []*ifc.Entity{
			siUnit("LENGTHUNIT", "METRE", ""),
			siUnit("AREAUNIT", "SQUARE_METRE", ""),
			siUnit("VOLUMEUNIT", "CUBIC_METRE", ""),
		}
	}
	refs := make([]ifc.Value, 0, len(units))
	for _, u := range units {
		doc.Add(u)
		refs = append(refs, ifc.Ref(u.ID))
	}

	project := ifc.NewEntity("IfcProject")
	project.GlobalID = "project-1"
	project.Set("Name", ifc.Str("Test Project"))
	project.Set("UnitsInContext", ifc.List(refs...))
	doc.Add(project)

	return doc, project
}

func siUnit(unitType, name, prefix string) *ifc.Entity {
	u := ifc.NewEntity("IfcSIUnit").
		Set("UnitType", ifc.Str(unitType)).
		Set("Name", ifc.Str(name))
	if prefix != "" {
		u.Set("Prefix", ifc.Str(prefix))
	}
	return u
}

func addBuilding(doc *ifc.Document, project *ifc.Entity, gid string) *ifc.Entity {
	building := ifc.NewEntity("IfcBuilding")
	building.GlobalID = gid
	building.Set("Name", ifc.Str("Main Building"))
	doc.Add(building)
	doc.Relate(ifc.RelDecomposes, building.ID, project.ID)
	return building
}

func addStorey(doc *ifc.Document, building *ifc.Entity, gid, name string, elevation float64) *ifc.Entity {
	storey := ifc.NewEntity("IfcBuildingStorey")
	storey.GlobalID = gid
	if name != "" {
		storey.Set("Name", ifc.Str(name))
	}
	storey.Set("Elevation", ifc.Float(elevation))
	doc.Add(storey)
	doc.Relate(ifc.RelDecomposes, storey.ID, building.ID)
	return storey
}

func addElement(doc *ifc.Document, typeTag, gid string, container *ifc.Entity) *ifc.Entity {
	el := ifc.NewEntity(typeTag)
	el.GlobalID = gid
	doc.Add(el)
	if container != nil {
		doc.Relate(ifc.RelContainedIn, el.ID, container.ID)
	}
	return el
}

func addPset(doc *ifc.Document, el *ifc.Entity, name string, props map[string]ifc.Value) *ifc.Entity {
	pset := ifc.NewEntity("IfcPropertySet").
		Set("Name", ifc.Str(name)).
		Set("Properties", ifc.Map(props))
	doc.Add(pset)
	doc.Relate(ifc.RelDefinesByProperties, pset.ID, el.ID)
	return pset
}

func addQuantitySet(doc *ifc.Document, el *ifc.Entity, entries ...ifc.Value) *ifc.Entity {
	qset := ifc.NewEntity("IfcElementQuantity").
		Set("Name", ifc.Str("BaseQuantities")).
		Set("Quantities", ifc.List(entries...))
	doc.Add(qset)
	doc.Relate(ifc.RelDefinesByProperties, qset.ID, el.ID)
	return qset
}

func volumeQuantity(name string, value float64) ifc.Value {
	return ifc.Map(map[string]ifc.Value{
		"Type":        ifc.Str("IfcQuantityVolume"),
		"Name":        ifc.Str(name),
		"VolumeValue": ifc.Float(value),
	})
}

func areaQuantity(name string, value float64) ifc.Value {
	return ifc.Map(map[string]ifc.Value{
		"Type":      ifc.Str("IfcQuantityArea"),
		"Name":      ifc.Str(name),
		"AreaValue": ifc.Float(value),
	})
}

func lengthQuantity(name string, value float64) ifc.Value {
	return ifc.Map(map[string]ifc.Value{
		"Type":        ifc.Str("IfcQuantityLength"),
		"Name":        ifc.Str(name),
		"LengthValue": ifc.Float(value),
	})
}

func complexQuantity(name string, subs ...ifc.Value) ifc.Value {
	return ifc.Map(map[string]ifc.Value{
		"Type":          ifc.Str("IfcPhysicalComplexQuantity"),
		"Name":          ifc.Str(name),
		"HasQuantities": ifc.List(subs...),
	})
}

func addMaterial(doc *ifc.Document, name string) *ifc.Entity {
	mat := ifc.NewEntity("IfcMaterial").Set("Name", ifc.Str(name))
	doc.Add(mat)
	return mat
}

func addLayerSet(doc *ifc.Document, el *ifc.Entity, layers ...ifc.Value) *ifc.Entity {
	set := ifc.NewEntity("IfcMaterialLayerSet").
		Set("MaterialLayers", ifc.List(layers...))
	doc.Add(set)
	doc.Relate(ifc.RelAssociatesMaterial, set.ID, el.ID)
	return set
}

func layerOf(material *ifc.Entity, thickness float64) ifc.Value {
	return ifc.Map(map[string]ifc.Value{
		"Material":       ifc.Ref(material.ID),
		"LayerThickness": ifc.Float(thickness),
	})
}

func addConstituentSet(doc *ifc.Document, el *ifc.Entity, constituents ...ifc.Value) *ifc.Entity {
	set := ifc.NewEntity("IfcMaterialConstituentSet").
		Set("MaterialConstituents", ifc.List(constituents...))
	doc.Add(set)
	doc.Relate(ifc.RelAssociatesMaterial, set.ID, el.ID)
	return set
}

func constituentOf(name string, material *ifc.Entity) ifc.Value {
	m := map[string]ifc.Value{
		"Material": ifc.Ref(material.ID),
	}
	if name != "" {
		m["Name"] = ifc.Str(name)
	}
	return ifc.Map(m)
}

func floatProps(props map[string]float64) map[string]ifc.Value {
	out := make(map[string]ifc.Value, len(props))
	for k, v := range props {
		out[k] = ifc.Float(v)
	}
	return out
}

func float64Value(v *float64) float64 {
	if v == nil {
		return -1
	}
	return *v
}

func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}
