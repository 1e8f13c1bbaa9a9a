package router

import (
	"github.com/gurri8686/zohoprospects/internal/handler"
	"github.com/gurri8686/zohoprospects/internal/middleware"
	"github.com/gurri8686/zohoprospects/internal/server"
	"github.com/gurri8686/zohoprospects/internal/service"
	"github.com/labstack/echo/v4"
)

// registerProspectRoutes mounts the Zoho proxy endpoints:
//
//	GET  /prospects/recent
//	POST /prospects
func registerProspectRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers, mw *middleware.Middlewares, services *service.Services) {
	if !services.Auth.Enabled() {
		s.Logger.Warn().Msg("auth.secret_key is empty, prospect routes are public")
	}

	prospects := r.Group("/prospects", mw.Auth.Optional(), mw.RateLimit.Limit())

	prospects.GET("/recent", h.Prospect.ListRecentRoute())
	prospects.POST("", h.Prospect.CreateRoute())
}
