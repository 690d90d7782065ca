package engine

import (
	"github.com/buildlane/ifcbridge/pkg/ifc"
)

// ProjectInfo is the descriptive header of the document's project
// entity.
type ProjectInfo struct {
	GlobalID    string  `json:"global_id"`
	Name        string  `json:"name"`
	LongName    *string `json:"long_name,omitempty"`
	Description *string `json:"description,omitempty"`
	Phase       *string `json:"phase,omitempty"`
}

// ModelInfo summarizes an opened document: schema, header fields,
// project descriptors, declared units and entity counts.
type ModelInfo struct {
	Schema        string            `json:"schema"`
	Header        map[string]string `json:"header,omitempty"`
	Project       *ProjectInfo      `json:"project,omitempty"`
	Units         map[string]string `json:"units,omitempty"`
	TotalElements int               `json:"total_elements"`
	ElementCounts map[string]int    `json:"element_counts,omitempty"`
	StoreyCount   int               `json:"storey_count"`
}

// ModelInfo resolves the document summary.
func (e *Engine) ModelInfo() ModelInfo {
	info := ModelInfo{
		Schema:      e.doc.Schema(),
		Header:      e.doc.Header(),
		StoreyCount: len(e.doc.ByType("IfcBuildingStorey")),
	}

	if project := firstContext(e.doc); project != nil {
		p := &ProjectInfo{
			GlobalID: project.GlobalID,
			Name:     project.Name(),
		}
		if v, ok := project.Attr("LongName"); ok {
			p.LongName = coerceString(v)
		}
		if v, ok := project.Attr("Description"); ok {
			p.Description = coerceString(v)
		}
		if v, ok := project.Attr("Phase"); ok {
			p.Phase = coerceString(v)
		}
		info.Project = p
	}

	if len(e.units) > 0 {
		units := make(map[string]string, len(e.units))
		for unitType, unit := range e.units {
			units[unitType] = unit.Prefix + unit.Name
		}
		info.Units = units
	}

	elements := e.doc.ByType(ifc.TypeBuildingElement)
	info.TotalElements = len(elements)
	if len(elements) > 0 {
		counts := map[string]int{}
		for _, el := range elements {
			counts[el.Type]++
		}
		info.ElementCounts = counts
	}
	return info
}

// ElementsInfo returns the raw attribute dump of the document's product
// entities, paged like ExtractElements. Classes filters by concrete
// type when non-empty; otherwise all products are listed.
func (e *Engine) ElementsInfo(classes []string, offset, limit int) (int, []map[string]any) {
	var elements []*ifc.Entity
	if len(classes) > 0 {
		for _, class := range classes {
			elements = append(elements, e.doc.ByType(class)...)
		}
	} else {
		elements = e.doc.ByType(ifc.TypeProduct)
	}

	total := len(elements)
	start := offset
	if start > total {
		start = total
	}
	end := total
	if limit > 0 && start+limit < end {
		end = start + limit
	}

	infos := make([]map[string]any, 0, end-start)
	for _, el := range elements[start:end] {
		info := map[string]any{
			"id":        el.ID,
			"GlobalId":  el.GlobalID,
			"ifc_class": el.Type,
		}
		for name, v := range el.Attributes {
			if native := v.Native(); native != nil {
				info[name] = native
			}
		}
		infos = append(infos, info)
	}
	return total, infos
}
