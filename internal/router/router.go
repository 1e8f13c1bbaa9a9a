// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers
package router

import (
	"github.com/gurri8686/zohoprospects/internal/handler"
	"github.com/gurri8686/zohoprospects/internal/middleware"
	"github.com/gurri8686/zohoprospects/internal/server"
	"github.com/gurri8686/zohoprospects/internal/service"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance with the global middleware chain and
// every route group.
//
// Order matters: the request id must exist before the New Relic
// transaction is annotated, and both before the request logger is built.
func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	mw := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = mw.Global.GlobalErrorHandler

	router.Use(
		mw.Global.CORS(),
		mw.Global.Secure(),
		middleware.RequestID(),
		mw.Tracing.NewRelicMiddleware(),
		mw.Tracing.EnhanceTracing(),
		mw.ContextEnhancer.EnhanceContext(),
		mw.Global.RequestLogger(),
		mw.Global.Recover(),
	)

	registerSystemRoutes(router, s, h)
	registerProspectRoutes(router, s, h, mw, services)

	return router
}
