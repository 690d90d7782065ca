package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/buildlane/ifcbridge/internal/split"
	"github.com/buildlane/ifcbridge/pkg/engine"
	"github.com/buildlane/ifcbridge/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SplitByStoreyHandler partitions an uploaded document into one file
// per storey and returns the zip archive synchronously. For large
// documents prefer the job-based endpoint.
func SplitByStoreyHandler(c echo.Context) error {
	doc, fileName, err := openUploadedDocument(c)
	if doc == nil {
		return err
	}

	eng := engine.New(doc)
	results, err := eng.SplitByStorey(c.Request().Context())
	if err != nil {
		if errors.Is(err, engine.ErrNoStoreys) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"message": "No storeys found in the model",
			})
		}
		logger.Error("[Routes] Split failed", "file", fileName, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Internal server error",
		})
	}
	if len(results) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "No storeys could be extracted from the model",
		})
	}

	archive, entries, err := split.Archive(results)
	if err != nil {
		logger.Error("[Routes] Failed to build archive", "file", fileName, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"message": "Internal server error",
		})
	}

	base := strings.TrimSuffix(fileName, documentExt)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s_storeys.zip"`, base))
	c.Response().Header().Set("X-Storey-Count", fmt.Sprintf("%d", len(entries)))
	return c.Blob(http.StatusOK, "application/zip", archive)
}
