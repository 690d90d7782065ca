package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func runAuth(t *testing.T, apiKey string) (*httptest.ResponseRecorder, string) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var authedClient string
	handler := AppContextMiddleware(nil, nil, nil, map[string]string{
		"client-a": "key-a",
		"client-b": "key-b",
	})(AuthMiddleware(func(c echo.Context) error {
		authedClient = c.(*AppContext).Client
		return c.NoContent(http.StatusOK)
	}))

	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec, authedClient
}

func TestAuthMiddleware_MissingKey(t *testing.T) {
	rec, _ := runAuth(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_InvalidKey(t *testing.T) {
	rec, _ := runAuth(t, "wrong-key")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_ValidKey(t *testing.T) {
	rec, client := runAuth(t, "key-b")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if client != "client-b" {
		t.Fatalf("expected client-b, got %q", client)
	}
}
