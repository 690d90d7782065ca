package routes

import (
	"net/http"

	"github.com/buildlane/ifcbridge/pkg/engine"

	"github.com/labstack/echo/v4"
)

// ModelInfoHandler summarizes an uploaded document: schema, header,
// project descriptors, units and element counts.
func ModelInfoHandler(c echo.Context) error {
	doc, fileName, err := openUploadedDocument(c)
	if doc == nil {
		return err
	}

	type modelInfoResponse struct {
		FileName string `json:"file_name"`
		engine.ModelInfo
	}

	eng := engine.New(doc)
	return c.JSON(http.StatusOK, modelInfoResponse{
		FileName:  fileName,
		ModelInfo: eng.ModelInfo(),
	})
}
