package routes

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/buildlane/ifcbridge/pkg/engine"
	"github.com/buildlane/ifcbridge/pkg/ifc"
	"github.com/buildlane/ifcbridge/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Maximum accepted document size (50MB).
const maxUploadBytes = 50 * 1024 * 1024

const documentExt = ".ifcj"

// openUploadedDocument reads the "file" part of a multipart upload and
// decodes it. On failure the error response has already been written;
// the handler just returns the result.
func openUploadedDocument(c echo.Context) (*ifc.Document, string, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, "", c.JSON(http.StatusBadRequest, map[string]string{
			"message": "No file provided",
		})
	}
	if !strings.HasSuffix(strings.ToLower(header.Filename), documentExt) {
		return nil, "", c.JSON(http.StatusBadRequest, map[string]string{
			"message": fmt.Sprintf("Invalid file type. Must be a %s file.", documentExt),
		})
	}
	if header.Size > maxUploadBytes {
		return nil, "", c.JSON(http.StatusRequestEntityTooLarge, map[string]string{
			"message": "File exceeds the 50MB limit",
		})
	}

	src, err := header.Open()
	if err != nil {
		return nil, "", c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Could not open file",
		})
	}
	defer src.Close()

	content, err := io.ReadAll(src)
	if err != nil {
		return nil, "", c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Could not read file",
		})
	}

	doc, err := ifc.Open(content)
	if err != nil {
		logger.Warn("[Routes] Rejecting unreadable document", "file", header.Filename, "err", err)
		return nil, "", c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Could not parse document: " + err.Error(),
		})
	}
	return doc, header.Filename, nil
}

type pageParams struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}

func (p *pageParams) normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 50
	}
	if p.PageSize > 10000 {
		p.PageSize = 10000
	}
}

func (p *pageParams) offset() int {
	return (p.Page - 1) * p.PageSize
}

func totalPages(total, pageSize int) int {
	if total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// classFilter returns the requested class names, or nil when filtering
// is disabled.
func classFilter(c echo.Context) []string {
	if enabled, _ := strconvBool(c.QueryParam("enable_filter")); !enabled {
		return nil
	}
	var classes []string
	for _, raw := range c.QueryParams()["ifc_classes"] {
		if name := strings.TrimSpace(raw); name != "" {
			classes = append(classes, name)
		}
	}
	return classes
}

func strconvBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	}
	return false, false
}

// unitsMetadata describes the document's length-derived units the way
// clients expect them in response metadata.
func unitsMetadata(eng *engine.Engine) map[string]string {
	length := eng.Units().Length()
	name := length.Prefix + length.Name
	return map[string]string{
		"length": name,
		"area":   name + "²",
		"volume": name + "³",
	}
}
