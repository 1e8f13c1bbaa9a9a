package middleware

import (
	"github.com/gurri8686/zohoprospects/internal/server"
)

// Middlewares groups every middleware component used by the router, built
// once from the server container.
type Middlewares struct {
	// Global: CORS, request logging, recovery, secure headers and the error handler.
	Global *GlobalMiddlewares

	// Auth is the optional Clerk session check for the prospect routes.
	Auth *AuthMiddleware

	// ContextEnhancer attaches the request-scoped logger.
	ContextEnhancer *ContextEnhancer

	// Tracing wires New Relic transactions and attributes.
	Tracing *TracingMiddleware

	// RateLimit throttles prospect routes per client IP.
	RateLimit *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components.
//
// When New Relic is not configured the tracing middleware degrades to a no-op.
func NewMiddlewares(s *server.Server) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, s.LoggerService.GetApplication()),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
