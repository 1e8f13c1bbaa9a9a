package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gurri8686/zohoprospects/internal/server"
	"github.com/labstack/echo/v4"
)

// openAPIUIPath is the docs page, relative to the working directory.
const openAPIUIPath = "static/openapi.html"

// OpenAPIHandler serves the API documentation UI. The page loads
// /static/openapi.json.
type OpenAPIHandler struct {
	Handler
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

// ServeOpenAPIUI reads the HTML page on every request and disables caching,
// so edits to the docs show up without a restart.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")

	page, err := os.ReadFile(openAPIUIPath)
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTMLBlob(http.StatusOK, page); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}
