package pubsite

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus renders cmp in full before writing it with code, so a failing
// template turns into an error response instead of a truncated page.
// Error pages are never cached.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	var buf bytes.Buffer
	if err := cmp.Render(c.Request().Context(), &buf); err != nil {
		return fmt.Errorf("render %s: %w", c.Request().URL.Path, err)
	}
	if code >= http.StatusBadRequest {
		c.Response().Header().Set("Cache-Control", "no-store")
	}
	return c.HTMLBlob(code, buf.Bytes())
}
