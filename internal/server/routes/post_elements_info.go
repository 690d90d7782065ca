package routes

import (
	"net/http"

	"github.com/buildlane/ifcbridge/pkg/engine"

	"github.com/labstack/echo/v4"
)

// ElementsInfoHandler dumps the raw attributes of the document's
// product entities, for schema-level inspection and debugging.
func ElementsInfoHandler(c echo.Context) error {
	type infoMetadata struct {
		TotalElements   int      `json:"total_elements"`
		TotalPages      int      `json:"total_pages"`
		CurrentPage     int      `json:"current_page"`
		PageSize        int      `json:"page_size"`
		FilteredClasses []string `json:"filtered_classes"`
	}

	type infoResponse struct {
		Message  string           `json:"message,omitempty"`
		Metadata *infoMetadata    `json:"metadata,omitempty"`
		Elements []map[string]any `json:"elements,omitempty"`
	}

	params := new(pageParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, infoResponse{
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
	total, infos := eng.ElementsInfo(classes, params.offset(), params.PageSize)
	if infos == nil {
		infos = []map[string]any{}
	}

	return c.JSON(http.StatusOK, infoResponse{
		Metadata: &infoMetadata{
			TotalElements:   total,
			TotalPages:      totalPages(total, params.PageSize),
			CurrentPage:     params.Page,
			PageSize:        params.PageSize,
			FilteredClasses: classes,
		},
		Elements: infos,
	})
}
