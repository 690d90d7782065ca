package engine

import (
	"fmt"
	"math"

	"github.com/buildlane/ifcbridge/pkg/ifc"
)

// fractionTolerance is the accepted deviation of a material fraction
// sum from 1.0.
const fractionTolerance = 0.001

// MaterialFraction is one material's share of an element's volume.
type MaterialFraction struct {
	Name     string   `json:"name"`
	Fraction float64  `json:"fraction"`
	Volume   float64  `json:"volume"`
	Width    *float64 `json:"width,omitempty"`
}

// FractionWarning reports an element whose material fractions do not
// sum to 1.0 within tolerance. The breakdown is suppressed but the
// element keeps being processed.
type FractionWarning struct {
	ElementID     string  `json:"element_id"`
	ElementType   string  `json:"element_type"`
	TotalFraction float64 `json:"total_fraction"`
}

// MaterialBreakdown is the per-material volume split of one element.
// When Warning is set, Keys and Fractions are nil.
type MaterialBreakdown struct {
	Keys      []string
	Fractions map[string]MaterialFraction
	Warning   *FractionWarning
}

// materialAssignment finds the element's material association through
// the inverse index. The first matching association wins.
func (e *Engine) materialAssignment(el *ifc.Entity) *ifc.Entity {
	for _, rel := range e.doc.InverseRelationshipsOf(el) {
		if rel.Kind != ifc.RelAssociatesMaterial {
			continue
		}
		if material := e.doc.Entity(rel.Source); material != nil {
			return material
		}
	}
	return nil
}

// layerSetOf unwraps a layer-set usage to its layer set, or returns the
// entity itself when it already is one.
func (e *Engine) layerSetOf(material *ifc.Entity) *ifc.Entity {
	if material.Type == "IfcMaterialLayerSet" {
		return material
	}
	if material.Type != "IfcMaterialLayerSetUsage" {
		return nil
	}
	ref, ok := material.Attr("ForLayerSet")
	if !ok {
		return nil
	}
	id, ok := ref.AsRef()
	if !ok {
		return nil
	}
	return e.doc.Entity(id)
}

func (e *Engine) materialName(ref ifc.Value) string {
	id, ok := ref.AsRef()
	if !ok {
		return ""
	}
	material := e.doc.Entity(id)
	if material == nil {
		return ""
	}
	return material.Name()
}

type layer struct {
	name      string
	thickness float64
}

func (e *Engine) layersOf(layerSet *ifc.Entity) []layer {
	attr, ok := layerSet.Attr("MaterialLayers")
	if !ok {
		return nil
	}
	list, ok := attr.AsList()
	if !ok {
		return nil
	}
	layers := make([]layer, 0, len(list))
	for _, entry := range list {
		name := "Unnamed Material"
		if ref, ok := entry.Get("Material"); ok {
			if n := e.materialName(ref); n != "" {
				name = n
			}
		}
		thickness := 0.0
		if v, ok := entry.Get("LayerThickness"); ok {
			if f, ok := v.AsFloat(); ok {
				thickness = f
			}
		}
		layers = append(layers, layer{name: name, thickness: thickness})
	}
	return layers
}

// Materials returns the element's material names in order of
// appearance, across all three assignment shapes.
func (e *Engine) Materials(el *ifc.Entity) []string {
	material := e.materialAssignment(el)
	if material == nil {
		return nil
	}

	switch material.Type {
	case "IfcMaterial":
		if name := material.Name(); name != "" {
			return []string{name}
		}
		return nil
	case "IfcMaterialLayerSet", "IfcMaterialLayerSetUsage":
		layerSet := e.layerSetOf(material)
		if layerSet == nil {
			return nil
		}
		var names []string
		for _, l := range e.layersOf(layerSet) {
			names = append(names, l.name)
		}
		return names
	case "IfcMaterialConstituentSet":
		var names []string
		for _, c := range e.constituentsOf(material) {
			names = append(names, c.materialName)
		}
		return names
	}
	return nil
}

// totalVolume is the element's net volume if present, else gross, else
// zero. Absence of volume still yields a fraction structure.
func (e *Engine) totalVolume(el *ifc.Entity) float64 {
	volume := e.Volume(el)
	if volume.Net != nil {
		return *volume.Net
	}
	if volume.Gross != nil {
		return *volume.Gross
	}
	return 0
}

// MaterialFractions computes the element's material volume breakdown.
// Layered sets derive fractions from layer thicknesses, constituent
// sets from matched quantity widths, a single material gets the whole
// volume. A fraction sum outside tolerance suppresses the breakdown
// and reports a warning instead.
func (e *Engine) MaterialFractions(el *ifc.Entity) MaterialBreakdown {
	material := e.materialAssignment(el)
	if material == nil {
		return MaterialBreakdown{}
	}
	total := e.totalVolume(el)

	var fractions []MaterialFraction
	switch material.Type {
	case "IfcMaterial":
		name := material.Name()
		if name == "" {
			name = "Unnamed Material"
		}
		single := MaterialFraction{Name: name, Fraction: 1.0, Volume: total}
		if width := e.Dims(el).Width; width != nil {
			single.Width = width
		}
		fractions = []MaterialFraction{single}
	case "IfcMaterialLayerSet", "IfcMaterialLayerSetUsage":
		layerSet := e.layerSetOf(material)
		if layerSet == nil {
			return MaterialBreakdown{}
		}
		fractions = layerFractions(e.layersOf(layerSet), total)
	case "IfcMaterialConstituentSet":
		fractions = e.constituentFractions(el, material, total)
	default:
		return MaterialBreakdown{}
	}

	if len(fractions) == 0 {
		return MaterialBreakdown{}
	}

	sum := 0.0
	for _, f := range fractions {
		sum += f.Fraction
	}
	if math.Abs(sum-1.0) > fractionTolerance {
		return MaterialBreakdown{
			Warning: &FractionWarning{
				ElementID:     el.GlobalID,
				ElementType:   el.Type,
				TotalFraction: sum,
			},
		}
	}

	keys := make([]string, 0, len(fractions))
	byKey := make(map[string]MaterialFraction, len(fractions))
	for _, f := range fractions {
		key := uniqueKey(byKey, f.Name)
		keys = append(keys, key)
		byKey[key] = f
	}
	return MaterialBreakdown{Keys: keys, Fractions: byKey}
}

// layerFractions derives thickness-proportional fractions. A zero total
// thickness yields all-zero fractions; layer widths stay in the
// document's native length unit.
func layerFractions(layers []layer, totalVolume float64) []MaterialFraction {
	totalThickness := 0.0
	for _, l := range layers {
		totalThickness += l.thickness
	}

	out := make([]MaterialFraction, 0, len(layers))
	for _, l := range layers {
		fraction := 0.0
		if totalThickness != 0 {
			fraction = l.thickness / totalThickness
		}
		width := l.thickness
		out = append(out, MaterialFraction{
			Name:     l.name,
			Fraction: fraction,
			Volume:   totalVolume * fraction,
			Width:    &width,
		})
	}
	return out
}

// uniqueKey keeps map keys unique when materials share a name: the
// second occurrence of "X" becomes "X (2)", then "X (3)", and so on.
func uniqueKey(existing map[string]MaterialFraction, name string) string {
	if _, taken := existing[name]; !taken {
		return name
	}
	for n := 2; ; n++ {
		key := fmt.Sprintf("%s (%d)", name, n)
		if _, taken := existing[key]; !taken {
			return key
		}
	}
}
