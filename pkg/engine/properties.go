package engine

import (
	"strconv"
	"strings"

	"github.com/buildlane/ifcbridge/pkg/ifc"
)

// propertySets returns all property-set entities defining an element.
func (e *Engine) propertySets(el *ifc.Entity) []*ifc.Entity {
	return e.definingSets(el, "IfcPropertySet")
}

// psetProperty reads a named property from a named property set of the
// element. Absence is reported, never raised.
func (e *Engine) psetProperty(el *ifc.Entity, psetName, propertyName string) (ifc.Value, bool) {
	for _, pset := range e.propertySets(el) {
		if pset.Name() != psetName {
			continue
		}
		props, ok := pset.Attr("Properties")
		if !ok {
			continue
		}
		if v, ok := props.Get(propertyName); ok {
			return v, true
		}
	}
	return ifc.Value{}, false
}

// commonPsetName derives the expected common property-set name from the
// element's concrete type: IfcWall -> Pset_WallCommon.
func commonPsetName(el *ifc.Entity) string {
	return "Pset_" + strings.TrimPrefix(el.Type, "Ifc") + "Common"
}

// elementProperty probes the element's type-specific common property
// set, then the generic Pset_ElementCommon.
func (e *Engine) elementProperty(el *ifc.Entity, name string) (ifc.Value, bool) {
	if v, ok := e.psetProperty(el, commonPsetName(el), name); ok {
		return v, true
	}
	return e.psetProperty(el, "Pset_ElementCommon", name)
}

// propertyFloat resolves a named property and coerces it to a float.
// Missing or non-numeric values yield nil; coercion failures are
// swallowed, never propagated.
func (e *Engine) propertyFloat(el *ifc.Entity, name string) *float64 {
	v, ok := e.elementProperty(el, name)
	if !ok {
		return nil
	}
	return coerceFloat(v)
}

func coerceFloat(v ifc.Value) *float64 {
	if f, ok := v.AsFloat(); ok {
		return &f
	}
	if s, ok := v.AsString(); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		return &f
	}
	return nil
}

func coerceBool(v ifc.Value) *bool {
	if b, ok := v.AsBool(); ok {
		return &b
	}
	if i, ok := v.AsInt(); ok {
		b := i != 0
		return &b
	}
	if s, ok := v.AsString(); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil
		}
		return &b
	}
	return nil
}

func coerceString(v ifc.Value) *string {
	switch v.Kind() {
	case ifc.KindString:
		s, _ := v.AsString()
		return &s
	case ifc.KindFloat:
		f, _ := v.AsFloat()
		s := strconv.FormatFloat(f, 'f', -1, 64)
		return &s
	case ifc.KindInt:
		i, _ := v.AsInt()
		s := strconv.FormatInt(i, 10)
		return &s
	case ifc.KindBool:
		b, _ := v.AsBool()
		s := strconv.FormatBool(b)
		return &s
	}
	return nil
}

type propertyKind int

const (
	asBool propertyKind = iota
	asString
	asFloat
)

// commonPropertyTable maps source property names to output keys and the
// coercion applied to each.
var commonPropertyTable = []struct {
	property string
	key      string
	kind     propertyKind
}{
	{"LoadBearing", "loadBearing", asBool},
	{"IsExternal", "isExternal", asBool},
	{"Description", "description", asString},
	{"FireRating", "fireRating", asString},
	{"Reference", "reference", asString},
	{"Status", "status", asString},
	{"ThermalTransmittance", "thermalTransmittance", asFloat},
	{"AcousticRating", "acousticRating", asString},
	{"Combustible", "combustible", asBool},
	{"SurfaceSpreadOfFlame", "surfaceSpreadOfFlame", asString},
	{"ExtendToStructure", "extendToStructure", asBool},
	{"Compartmentation", "compartmentation", asBool},
	{"Phase", "phase", asString},
	{"Manufacturer", "manufacturer", asString},
	{"ModelReference", "model", asString},
	{"SerialNumber", "serialNumber", asString},
	{"InstallationDate", "installationDate", asString},
	{"ConstructionMethod", "constructionMethod", asString},
}

// CommonProperties resolves the fixed table of common element
// properties plus a catch-all bucket of any other property found in the
// element's defining property sets, keyed by property-set name then
// property name. Absent values are omitted.
func (e *Engine) CommonProperties(el *ifc.Entity) map[string]any {
	e.mu.Lock()
	if cached, ok := e.properties[el.ID]; ok {
		e.mu.Unlock()
		return cached
	}
	e.mu.Unlock()

	properties := map[string]any{}
	commonName := commonPsetName(el)
	custom := map[string]map[string]any{}

	for _, pset := range e.propertySets(el) {
		props, ok := pset.Attr("Properties")
		if !ok {
			continue
		}
		m, ok := props.AsMap()
		if !ok {
			continue
		}
		psetName := pset.Name()

		if psetName == commonName || psetName == "Pset_ElementCommon" {
			for _, row := range commonPropertyTable {
				v, ok := m[row.property]
				if !ok {
					continue
				}
				switch row.kind {
				case asBool:
					if b := coerceBool(v); b != nil {
						properties[row.key] = *b
					}
				case asString:
					if s := coerceString(v); s != nil {
						properties[row.key] = *s
					}
				case asFloat:
					if f := coerceFloat(v); f != nil {
						properties[row.key] = *f
					}
				}
			}
			continue
		}

		for name, v := range m {
			native := v.Native()
			if native == nil {
				continue
			}
			if custom[psetName] == nil {
				custom[psetName] = map[string]any{}
			}
			custom[psetName][name] = native
		}
	}

	if len(custom) > 0 {
		properties["customProperties"] = custom
	}
	if containment := containmentMap(e.ResolveContainment(el)); len(containment) > 0 {
		properties["containment"] = containment
	}

	e.mu.Lock()
	if len(e.properties) >= maxCacheEntries {
		e.properties = map[int64]map[string]any{}
	}
	e.properties[el.ID] = properties
	e.mu.Unlock()
	return properties
}

func containmentMap(path ContainmentPath) map[string]any {
	out := map[string]any{}
	if path.Storey != nil {
		out["storey"] = path.Storey
	}
	if path.Building != nil {
		out["building"] = path.Building
	}
	if path.Space != nil {
		out["space"] = path.Space
	}
	return out
}

// ObjectType resolves the name of the type object defining an element,
// if any, through the inverse relationship index.
func (e *Engine) ObjectType(el *ifc.Entity) *string {
	e.mu.Lock()
	if cached, ok := e.types[el.ID]; ok {
		e.mu.Unlock()
		return cached
	}
	e.mu.Unlock()

	var result *string
	for _, rel := range e.doc.InverseRelationshipsOf(el) {
		if rel.Kind != ifc.RelDefinesByType {
			continue
		}
		typeObject := e.doc.Entity(rel.Source)
		if typeObject == nil {
			continue
		}
		if name := typeObject.Name(); name != "" {
			result = &name
		}
		break
	}

	e.mu.Lock()
	if len(e.types) >= maxCacheEntries {
		e.types = map[int64]*string{}
	}
	e.types[el.ID] = result
	e.mu.Unlock()
	return result
}
