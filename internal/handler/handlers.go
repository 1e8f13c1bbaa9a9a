package handler

import (
	"github.com/gurri8686/zohoprospects/internal/server"
	"github.com/gurri8686/zohoprospects/internal/service"
)

// Handlers groups all HTTP handlers so the router receives a single value.
type Handlers struct {
	Health   *HealthHandler
	OpenAPI  *OpenAPIHandler
	Prospect *ProspectHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(s),
		OpenAPI:  NewOpenAPIHandler(s),
		Prospect: NewProspectHandler(s, services.Prospect),
	}
}
