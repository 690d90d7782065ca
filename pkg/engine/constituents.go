package engine

import (
	"strings"

	"github.com/buildlane/ifcbridge/pkg/ifc"
)

type constituent struct {
	name         string
	materialName string
}

func (e *Engine) constituentsOf(constituentSet *ifc.Entity) []constituent {
	attr, ok := constituentSet.Attr("MaterialConstituents")
	if !ok {
		return nil
	}
	list, ok := attr.AsList()
	if !ok {
		return nil
	}
	out := make([]constituent, 0, len(list))
	for _, entry := range list {
		name := "Unnamed Constituent"
		if v, ok := entry.Get("Name"); ok {
			if s, ok := v.AsString(); ok && strings.TrimSpace(s) != "" {
				name = s
			}
		}
		materialName := "Unknown"
		if ref, ok := entry.Get("Material"); ok {
			if n := e.materialName(ref); n != "" {
				materialName = n
			}
		}
		out = append(out, constituent{name: name, materialName: materialName})
	}
	return out
}

// constituentWidths matches each constituent to a complex quantity by
// case-insensitive name, consuming duplicate-named quantities in order
// of appearance, and extracts the "Width" sub-quantity scaled to
// millimeters. Constituents without a matching quantity get width 0.
func (e *Engine) constituentWidths(el *ifc.Entity, constituents []constituent) []float64 {
	quantities := e.complexQuantities(el)
	scaleToMM := e.units.Length().ScaleToMillimeters()

	seen := map[string]int{}
	widths := make([]float64, len(constituents))
	for i, c := range constituents {
		name := strings.ToLower(strings.TrimSpace(c.name))
		index := seen[name]
		seen[name] = index + 1

		candidates := quantities[name]
		if index >= len(candidates) {
			continue
		}
		widths[i] = widthSubQuantity(candidates[index]) * scaleToMM
	}
	return widths
}

func widthSubQuantity(entry ifc.Value) float64 {
	list, ok := entry.Get("HasQuantities")
	if !ok {
		return 0
	}
	subs, ok := list.AsList()
	if !ok {
		return 0
	}
	for _, sub := range subs {
		if entryType(sub) != quantityLength {
			continue
		}
		if strings.ToLower(strings.TrimSpace(entryName(sub))) != "width" {
			continue
		}
		if value, ok := entryFloat(sub, "LengthValue"); ok {
			return value
		}
	}
	return 0
}

// constituentFractions derives width-proportional fractions for a
// constituent set. When the widths sum to exactly zero the fractions
// are distributed equally.
func (e *Engine) constituentFractions(el *ifc.Entity, constituentSet *ifc.Entity, totalVolume float64) []MaterialFraction {
	constituents := e.constituentsOf(constituentSet)
	if len(constituents) == 0 {
		return nil
	}

	widths := e.constituentWidths(el, constituents)
	totalWidth := 0.0
	for _, w := range widths {
		totalWidth += w
	}

	out := make([]MaterialFraction, 0, len(constituents))
	for i, c := range constituents {
		fraction := 1.0 / float64(len(constituents))
		if totalWidth != 0 {
			fraction = widths[i] / totalWidth
		}
		width := widths[i]
		out = append(out, MaterialFraction{
			Name:     c.materialName,
			Fraction: fraction,
			Volume:   totalVolume * fraction,
			Width:    &width,
		})
	}
	return out
}
