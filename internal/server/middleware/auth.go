package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware checks the X-API-Key header against the configured
// client keys. On success the owning client's name is attached to the
// request context.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Header.Get("X-API-Key")
		if key == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Missing API key"})
		}

		cc := c.(*AppContext)
		for client, known := range cc.App.APIKeys {
			if subtle.ConstantTimeCompare([]byte(key), []byte(known)) == 1 {
				cc.Client = client
				return next(c)
			}
		}

		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid API key"})
	}
}
