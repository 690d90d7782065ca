package routes

import (
	"net/http"

	"github.com/buildlane/ifcbridge/pkg/engine"

	"github.com/labstack/echo/v4"
)

// ExtractBuildingElementsHandler resolves properties, quantities and
// material breakdowns for the building elements of an uploaded
// document, one page at a time.
func ExtractBuildingElementsHandler(c echo.Context) error {
	type extractParams struct {
		pageParams
		ExcludeProperties bool `query:"exclude_properties"`
		ExcludeQuantities bool `query:"exclude_quantities"`
		ExcludeMaterials  bool `query:"exclude_materials"`
		IncludeWidths     bool `query:"include_widths"`
	}

	type fractionWarnings struct {
		Message          string                   `json:"message"`
		AffectedElements []engine.FractionWarning `json:"affected_elements"`
	}

	type extractMetadata struct {
		TotalElements int                         `json:"total_elements"`
		TotalPages    int                         `json:"total_pages"`
		CurrentPage   int                         `json:"current_page"`
		PageSize      int                         `json:"page_size"`
		IfcClasses    []string                    `json:"ifc_classes"`
		Units         map[string]string           `json:"units"`
		Warnings      map[string]fractionWarnings `json:"warnings,omitempty"`
	}

	type extractResponse struct {
		Message  string                 `json:"message,omitempty"`
		Metadata *extractMetadata       `json:"metadata,omitempty"`
		Elements []engine.ElementRecord `json:"elements,omitempty"`
	}

	params := new(extractParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, extractResponse{
			Message: "Invalid request parameters",
		})
	}
	params.normalize()
	classes := classFilter(c)
	if classes == nil {
		classes = []string{}
	}

	doc, _, err := openUploadedDocument(c)
	if doc == nil {
		return err
	}

	eng := engine.New(doc)
	result := eng.ExtractElements(engine.ExtractOptions{
		Classes:           classes,
		Offset:            params.offset(),
		Limit:             params.PageSize,
		ExcludeProperties: params.ExcludeProperties,
		ExcludeQuantities: params.ExcludeQuantities,
		ExcludeMaterials:  params.ExcludeMaterials,
		IncludeWidths:     params.IncludeWidths,
	})

	metadata := &extractMetadata{
		TotalElements: result.TotalElements,
		TotalPages:    totalPages(result.TotalElements, params.PageSize),
		CurrentPage:   params.Page,
		PageSize:      params.PageSize,
		IfcClasses:    classes,
		Units:         unitsMetadata(eng),
	}
	if len(result.Warnings) > 0 {
		metadata.Warnings = map[string]fractionWarnings{
			"invalid_material_fractions": {
				Message:          "Some elements have material fractions that don't sum to 1.0",
				AffectedElements: result.Warnings,
			},
		}
	}

	elements := result.Records
	if elements == nil {
		elements = []engine.ElementRecord{}
	}

	return c.JSON(http.StatusOK, extractResponse{
		Metadata: metadata,
		Elements: elements,
	})
}
