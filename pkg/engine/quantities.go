package engine

import (
	"strings"

	"github.com/buildlane/ifcbridge/pkg/ifc"
)

// Quantity is a resolved net/gross physical measure. Nil fields mean
// the source document carries no value for them.
type Quantity struct {
	Net   *float64 `json:"net"`
	Gross *float64 `json:"gross"`
}

// Empty reports whether neither field resolved.
func (q Quantity) Empty() bool { return q.Net == nil && q.Gross == nil }

// Dimensions are resolved linear measures of an element.
type Dimensions struct {
	Length *float64 `json:"length"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

// Empty reports whether no dimension resolved.
func (d Dimensions) Empty() bool {
	return d.Length == nil && d.Width == nil && d.Height == nil
}

// Quantity entry type tags inside a quantity set.
const (
	quantityVolume  = "IfcQuantityVolume"
	quantityArea    = "IfcQuantityArea"
	quantityLength  = "IfcQuantityLength"
	quantityComplex = "IfcPhysicalComplexQuantity"
)

// definingSets returns the property/quantity-set entities defining an
// element, found through the inverse relationship index.
func (e *Engine) definingSets(el *ifc.Entity, typeTag string) []*ifc.Entity {
	var sets []*ifc.Entity
	for _, rel := range e.doc.InverseRelationshipsOf(el) {
		if rel.Kind != ifc.RelDefinesByProperties {
			continue
		}
		set := e.doc.Entity(rel.Source)
		if set != nil && set.Type == typeTag {
			sets = append(sets, set)
		}
	}
	return sets
}

// quantityEntries iterates the entries of every quantity set attached
// to the element.
func (e *Engine) quantityEntries(el *ifc.Entity) []ifc.Value {
	var entries []ifc.Value
	for _, set := range e.definingSets(el, "IfcElementQuantity") {
		attr, ok := set.Attr("Quantities")
		if !ok {
			continue
		}
		list, ok := attr.AsList()
		if !ok {
			continue
		}
		entries = append(entries, list...)
	}
	return entries
}

func entryType(entry ifc.Value) string {
	v, _ := entry.Get("Type")
	s, _ := v.AsString()
	return s
}

func entryName(entry ifc.Value) string {
	v, _ := entry.Get("Name")
	s, _ := v.AsString()
	return s
}

func entryFloat(entry ifc.Value, field string) (float64, bool) {
	v, ok := entry.Get(field)
	if !ok {
		return 0, false
	}
	return v.AsFloat()
}

// Volume resolves an element's net and gross volume. Quantity sets take
// precedence; named common properties are the fallback. Values typed as
// length measures under a volume name are accepted defensively, since
// source data is not always schema-pure.
func (e *Engine) Volume(el *ifc.Entity) Quantity {
	return cacheVolume(e, el.ID, func() Quantity {
		q := e.volumeFromQuantitySets(el)
		if !q.Empty() {
			return q
		}
		return Quantity{
			Net:   e.propertyFloat(el, "NetVolume"),
			Gross: e.propertyFloat(el, "GrossVolume"),
		}
	})
}

func (e *Engine) volumeFromQuantitySets(el *ifc.Entity) Quantity {
	var q Quantity
	for _, entry := range e.quantityEntries(el) {
		var field string
		switch entryType(entry) {
		case quantityVolume:
			field = "VolumeValue"
		case quantityLength:
			field = "LengthValue"
		default:
			continue
		}
		value, ok := entryFloat(entry, field)
		if !ok {
			continue
		}
		switch entryName(entry) {
		case "NetVolume":
			q.Net = &value
		case "GrossVolume":
			q.Gross = &value
		}
	}
	return q
}

// Area resolves an element's net and gross area, quantity sets first.
func (e *Engine) Area(el *ifc.Entity) Quantity {
	return cacheArea(e, el.ID, func() Quantity {
		q := e.areaFromQuantitySets(el)
		if !q.Empty() {
			return q
		}
		net := e.propertyFloat(el, "NetArea")
		if net == nil {
			net = e.propertyFloat(el, "NetSideArea")
		}
		gross := e.propertyFloat(el, "GrossArea")
		if gross == nil {
			gross = e.propertyFloat(el, "GrossSideArea")
		}
		return Quantity{Net: net, Gross: gross}
	})
}

func (e *Engine) areaFromQuantitySets(el *ifc.Entity) Quantity {
	var q Quantity
	for _, entry := range e.quantityEntries(el) {
		if entryType(entry) != quantityArea {
			continue
		}
		value, ok := entryFloat(entry, "AreaValue")
		if !ok {
			continue
		}
		switch entryName(entry) {
		case "NetArea", "NetSideArea":
			q.Net = &value
		case "GrossArea", "GrossSideArea":
			q.Gross = &value
		}
	}
	return q
}

// Dims resolves an element's length, width and height. Width and
// Thickness are synonyms.
func (e *Engine) Dims(el *ifc.Entity) Dimensions {
	return cacheDimensions(e, el.ID, func() Dimensions {
		d := e.dimensionsFromQuantitySets(el)
		if !d.Empty() {
			return d
		}
		width := e.propertyFloat(el, "Width")
		if width == nil {
			width = e.propertyFloat(el, "Thickness")
		}
		return Dimensions{
			Length: e.propertyFloat(el, "Length"),
			Width:  width,
			Height: e.propertyFloat(el, "Height"),
		}
	})
}

func (e *Engine) dimensionsFromQuantitySets(el *ifc.Entity) Dimensions {
	var d Dimensions
	for _, entry := range e.quantityEntries(el) {
		if entryType(entry) != quantityLength {
			continue
		}
		value, ok := entryFloat(entry, "LengthValue")
		if !ok {
			continue
		}
		switch entryName(entry) {
		case "Length":
			d.Length = &value
		case "Width", "Thickness":
			d.Width = &value
		case "Height":
			d.Height = &value
		}
	}
	return d
}

// complexQuantities groups the element's complex quantity entries by
// lowercased name, preserving order of appearance so duplicate names
// can be consumed positionally.
func (e *Engine) complexQuantities(el *ifc.Entity) map[string][]ifc.Value {
	byName := map[string][]ifc.Value{}
	for _, entry := range e.quantityEntries(el) {
		if entryType(entry) != quantityComplex {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(entryName(entry)))
		byName[name] = append(byName[name], entry)
	}
	return byName
}
