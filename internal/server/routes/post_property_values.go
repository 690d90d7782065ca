package routes

import (
	"errors"
	"net/http"

	"github.com/buildlane/ifcbridge/pkg/engine"

	"github.com/labstack/echo/v4"
)

// PropertyValuesHandler resolves one property path for every element
// of a class. The property-set segment may carry a glob wildcard, e.g.
// "*Common.LoadBearing".
func PropertyValuesHandler(c echo.Context) error {
	type propertyValuesParams struct {
		IfcClass     string `query:"ifc_class" form:"ifc_class" validate:"required"`
		PropertyPath string `query:"property_path" form:"property_path" validate:"required"`
	}

	type propertyValuesResponse struct {
		Message string                 `json:"message,omitempty"`
		Values  []engine.PropertyValue `json:"values"`
	}

	params := new(propertyValuesParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, propertyValuesResponse{
			Message: "Invalid request parameters",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, propertyValuesResponse{
			Message: "ifc_class and property_path are required",
		})
	}

	doc, _, err := openUploadedDocument(c)
	if doc == nil {
		return err
	}

	eng := engine.New(doc)
	values, err := eng.PropertyValues(params.IfcClass, params.PropertyPath)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidPropertyPath) {
			return c.JSON(http.StatusBadRequest, propertyValuesResponse{
				Message: err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, propertyValuesResponse{
			Message: "Internal server error",
		})
	}
	if values == nil {
		values = []engine.PropertyValue{}
	}

	return c.JSON(http.StatusOK, propertyValuesResponse{
		Values: values,
	})
}
