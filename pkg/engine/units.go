package engine

import (
	"github.com/buildlane/ifcbridge/pkg/ifc"
)

// Unit describes one declared project unit: an SI unit with an optional
// metric prefix, or a conversion-based unit with an explicit factor to
// the SI base.
type Unit struct {
	Type   string
	Name   string
	Prefix string
	// Factor is the explicit scalar of a conversion-based unit; zero
	// means the unit is a plain (possibly prefixed) SI unit.
	Factor float64
}

// UnitTable maps a unit type tag (LENGTHUNIT, AREAUNIT, VOLUMEUNIT, …)
// to its declared unit.
type UnitTable map[string]Unit

// prefixFactors holds the SI prefix scale table, ATTO through EXA.
var prefixFactors = map[string]float64{
	"EXA":   1e18,
	"PETA":  1e15,
	"TERA":  1e12,
	"GIGA":  1e9,
	"MEGA":  1e6,
	"KILO":  1e3,
	"HECTO": 1e2,
	"DECA":  1e1,
	"DECI":  1e-1,
	"CENTI": 1e-2,
	"MILLI": 1e-3,
	"MICRO": 1e-6,
	"NANO":  1e-9,
	"PICO":  1e-12,
	"FEMTO": 1e-15,
	"ATTO":  1e-18,
}

// Scale returns the unit's multiplier to the SI base unit.
func (u Unit) Scale() float64 {
	factor := 1.0
	if u.Prefix != "" {
		if f, ok := prefixFactors[u.Prefix]; ok {
			factor *= f
		}
	}
	if u.Factor != 0 {
		factor *= u.Factor
	}
	return factor
}

// Convert scales a value from the declared unit to the SI base unit.
func (u Unit) Convert(value float64) float64 {
	return value * u.Scale()
}

// ConvertOptional converts a value, passing nil through unchanged.
func (u Unit) ConvertOptional(value *float64) *float64 {
	if value == nil {
		return nil
	}
	converted := u.Convert(*value)
	return &converted
}

// ConvertMap converts every leaf of a per-field value map, passing nil
// entries through unchanged.
func (u Unit) ConvertMap(values map[string]*float64) map[string]*float64 {
	out := make(map[string]*float64, len(values))
	for k, v := range values {
		out[k] = u.ConvertOptional(v)
	}
	return out
}

// ScaleToMillimeters returns the multiplier from the declared length
// unit to millimeters.
func (u Unit) ScaleToMillimeters() float64 {
	return u.Scale() * 1000.0
}

// defaultLengthUnit is used when a project declares no units at all.
// Missing declarations are never fatal.
var defaultLengthUnit = Unit{Type: "LENGTHUNIT", Name: "METRE"}

// Length returns the table's length unit, defaulting to meters.
func (t UnitTable) Length() Unit {
	if u, ok := t["LENGTHUNIT"]; ok {
		return u
	}
	return defaultLengthUnit
}

// ResolveUnits reads the project-level unit declarations of a document.
// Each declared unit entity carries a UnitType, a Name, and either an
// SI prefix or an explicit conversion factor.
func ResolveUnits(doc *ifc.Document) UnitTable {
	table := UnitTable{}

	project := firstContext(doc)
	if project == nil {
		return table
	}
	unitsAttr, ok := project.Attr("UnitsInContext")
	if !ok {
		return table
	}
	refs, ok := unitsAttr.AsList()
	if !ok {
		return table
	}

	for _, ref := range refs {
		id, ok := ref.AsRef()
		if !ok {
			continue
		}
		unitEntity := doc.Entity(id)
		if unitEntity == nil {
			continue
		}
		unitType := stringAttr(unitEntity, "UnitType")
		if unitType == "" {
			continue
		}
		switch unitEntity.Type {
		case "IfcSIUnit":
			table[unitType] = Unit{
				Type:   unitType,
				Name:   stringAttr(unitEntity, "Name"),
				Prefix: stringAttr(unitEntity, "Prefix"),
			}
		case "IfcConversionBasedUnit":
			factor := 1.0
			if v, ok := unitEntity.Attr("ConversionFactor"); ok {
				if f, ok := v.AsFloat(); ok {
					factor = f
				}
			}
			table[unitType] = Unit{
				Type:   unitType,
				Name:   stringAttr(unitEntity, "Name"),
				Factor: factor,
			}
		}
	}
	return table
}

func firstContext(doc *ifc.Document) *ifc.Entity {
	if projects := doc.ByType(ifc.TypeContext); len(projects) > 0 {
		return projects[0]
	}
	return nil
}

func stringAttr(e *ifc.Entity, name string) string {
	v, ok := e.Attr(name)
	if !ok {
		return ""
	}
	s, _ := v.AsString()
	return s
}
