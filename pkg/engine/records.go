package engine

import (
	"fmt"
	"math"

	"github.com/buildlane/ifcbridge/pkg/ifc"
	"github.com/buildlane/ifcbridge/pkg/logger"
)

// ExtractOptions controls which sections of an element record are
// produced. The zero value includes everything except widths.
type ExtractOptions struct {
	// Classes filters by concrete entity type when non-empty.
	Classes           []string
	Offset            int
	Limit             int
	ExcludeProperties bool
	ExcludeQuantities bool
	ExcludeMaterials  bool
	IncludeWidths     bool
}

// QuantityRecord groups the resolved quantities of one element. Empty
// sections are omitted from the wire shape.
type QuantityRecord struct {
	Volume     *Quantity   `json:"volume,omitempty"`
	Area       *Quantity   `json:"area,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty"`
}

// MaterialVolumeRecord is the wire shape of one material's share.
type MaterialVolumeRecord struct {
	Fraction float64  `json:"fraction"`
	Volume   float64  `json:"volume"`
	Width    *float64 `json:"width,omitempty"`
}

// ElementRecord is the JSON-shaped output for one building element.
// Optional sections are controlled by ExtractOptions.
type ElementRecord struct {
	ID              string                          `json:"id"`
	IfcClass        string                          `json:"ifc_class"`
	ObjectType      *string                         `json:"object_type"`
	Properties      map[string]any                  `json:"properties,omitempty"`
	Quantities      *QuantityRecord                 `json:"quantities,omitempty"`
	Materials       []string                        `json:"materials,omitempty"`
	MaterialVolumes map[string]MaterialVolumeRecord `json:"material_volumes,omitempty"`
}

// ExtractResult carries one page of element records plus the warnings
// collected while producing them.
type ExtractResult struct {
	TotalElements int
	Records       []ElementRecord
	Warnings      []FractionWarning
}

// ExtractElements resolves records for the document's building
// elements. Offset and Limit page over the filtered element list before
// any resolution happens, so untouched pages cost nothing. A failure on
// one element skips that element and continues.
func (e *Engine) ExtractElements(opts ExtractOptions) ExtractResult {
	elements := e.doc.ByType(ifc.TypeBuildingElement)
	if len(opts.Classes) > 0 {
		wanted := make(map[string]bool, len(opts.Classes))
		for _, class := range opts.Classes {
			wanted[class] = true
		}
		filtered := elements[:0:0]
		for _, el := range elements {
			if wanted[el.Type] {
				filtered = append(filtered, el)
			}
		}
		elements = filtered
	}

	result := ExtractResult{TotalElements: len(elements)}

	start := opts.Offset
	if start > len(elements) {
		start = len(elements)
	}
	end := len(elements)
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	for _, el := range elements[start:end] {
		record, warning, err := e.elementRecord(el, opts)
		if err != nil {
			logger.Warn("[Extract] Skipping element", "id", el.GlobalID, "class", el.Type, "err", err)
			continue
		}
		if warning != nil {
			result.Warnings = append(result.Warnings, *warning)
		}
		result.Records = append(result.Records, record)
	}
	return result
}

func (e *Engine) elementRecord(el *ifc.Entity, opts ExtractOptions) (record ElementRecord, warning *FractionWarning, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()

	record = ElementRecord{
		ID:         el.GlobalID,
		IfcClass:   el.Type,
		ObjectType: e.ObjectType(el),
	}

	if !opts.ExcludeProperties {
		record.Properties = e.CommonProperties(el)
	}

	if !opts.ExcludeQuantities {
		record.Quantities = e.quantityRecord(el)
	}

	if !opts.ExcludeMaterials {
		record.Materials = e.Materials(el)
		if len(record.Materials) > 0 {
			breakdown := e.MaterialFractions(el)
			if breakdown.Warning != nil {
				warning = breakdown.Warning
			}
			record.MaterialVolumes = e.materialVolumeRecords(breakdown, opts.IncludeWidths)
		}
	}
	return record, warning, nil
}

func (e *Engine) quantityRecord(el *ifc.Entity) *QuantityRecord {
	q := &QuantityRecord{}

	if volume := e.Volume(el); !volume.Empty() {
		q.Volume = &Quantity{
			Net:   roundPtr(volume.Net, 5),
			Gross: roundPtr(volume.Gross, 5),
		}
	}
	if area := e.Area(el); !area.Empty() {
		length := e.units.Length()
		q.Area = &Quantity{
			Net:   roundPtr(length.ConvertOptional(area.Net), 5),
			Gross: roundPtr(length.ConvertOptional(area.Gross), 5),
		}
	}
	if dims := e.Dims(el); !dims.Empty() {
		q.Dimensions = &Dimensions{
			Length: roundPtr(dims.Length, 3),
			Width:  roundPtr(dims.Width, 3),
			Height: roundPtr(dims.Height, 3),
		}
	}

	if q.Volume == nil && q.Area == nil && q.Dimensions == nil {
		return nil
	}
	return q
}

func (e *Engine) materialVolumeRecords(breakdown MaterialBreakdown, includeWidths bool) map[string]MaterialVolumeRecord {
	if len(breakdown.Keys) == 0 {
		return nil
	}
	length := e.units.Length()

	out := make(map[string]MaterialVolumeRecord, len(breakdown.Keys))
	for _, key := range breakdown.Keys {
		f := breakdown.Fractions[key]
		record := MaterialVolumeRecord{
			Fraction: roundValue(f.Fraction, 5),
			Volume:   roundValue(length.Convert(f.Volume), 5),
		}
		if includeWidths && f.Width != nil {
			record.Width = roundPtr(f.Width, 3)
		}
		out[key] = record
	}
	return out
}

func recoveredError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

func roundValue(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}

func roundPtr(v *float64, digits int) *float64 {
	if v == nil {
		return nil
	}
	rounded := roundValue(*v, digits)
	return &rounded
}
