package middleware

import (
	"net/http"

	"github.com/gurri8686/zohoprospects/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/integrations/nrecho-v4"
	"github.com/newrelic/go-agent/v3/integrations/nrpkgerrors"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// TracingMiddleware ties requests to New Relic transactions.
// With a nil application both middlewares pass requests through.
type TracingMiddleware struct {
	server *server.Server
	nrApp  *newrelic.Application
}

func NewTracingMiddleware(s *server.Server, nrApp *newrelic.Application) *TracingMiddleware {
	return &TracingMiddleware{
		server: s,
		nrApp:  nrApp,
	}
}

// NewRelicMiddleware starts one transaction per request so that
// newrelic.FromContext works in handlers and the Zoho round tripper.
func (tm *TracingMiddleware) NewRelicMiddleware() echo.MiddlewareFunc {
	if tm.nrApp == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return nrecho.Middleware(tm.nrApp)
}

// EnhanceTracing annotates the transaction and reports failures.
//
// Only server-side failures (5xx, which includes every upstream CRM error)
// are noticed as errors. Validation failures, auth failures and rate-limit
// rejections are recorded as the http.error_code attribute instead.
func (tm *TracingMiddleware) EnhanceTracing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			txn := newrelic.FromContext(c.Request().Context())
			if txn == nil {
				return next(c)
			}

			txn.AddAttribute("service.name", tm.server.Config.Observability.ServiceName)
			txn.AddAttribute("service.environment", tm.server.Config.Primary.Env)
			txn.AddAttribute("http.real_ip", c.RealIP())
			txn.AddAttribute("request.id", GetRequestID(c))

			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = statusFromError(err)
				if status >= http.StatusInternalServerError {
					txn.NoticeError(nrpkgerrors.Wrap(err))
				} else {
					txn.AddAttribute("http.error_code", errorCode(err))
				}
			}

			// The auth middleware runs on the route group, after this one.
			if userID := GetUserID(c); userID != "" {
				txn.AddAttribute("user.id", userID)
			}
			txn.AddAttribute("http.status_code", status)

			return err
		}
	}
}
