package handler

import (
	"time"

	"github.com/gurri8686/zohoprospects/internal/middleware"
	"github.com/gurri8686/zohoprospects/internal/server"
	"github.com/gurri8686/zohoprospects/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// Handler is the base handler type that holds shared application dependencies.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// recordEvent records a New Relic custom event when the agent is running.
func (h Handler) recordEvent(eventType string, params map[string]interface{}) {
	if app := h.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent(eventType, params)
	}
}

// HandlerFunc is a typed endpoint: it receives a bound and validated
// request and returns a response or an error.
//
// Req is a pointer type, e.g. *prospect.CreateProspectPayload, because
// Echo's Bind populates it in place.
type HandlerFunc[Req validation.Validatable, Res any] func(c echo.Context, req Req) (Res, error)

// ResponseHandler writes a successful result and names the operation in logs.
type ResponseHandler interface {
	Handle(c echo.Context, result interface{}) error
	GetOperation() string
}

// JSONResponseHandler writes JSON responses with a given status code.
type JSONResponseHandler struct {
	status    int
	operation string
}

func (h JSONResponseHandler) Handle(c echo.Context, result interface{}) error {
	return c.JSON(h.status, result)
}

func (h JSONResponseHandler) GetOperation() string {
	return h.operation
}

// handleRequest runs one typed request: bind and validate, call the
// handler, write the result. Timings go to the request logger and to the
// New Relic transaction; errors are left to the global error handler.
func handleRequest[Req validation.Validatable](
	h Handler,
	c echo.Context,
	req Req,
	handler func(c echo.Context, req Req) (interface{}, error),
	responseHandler ResponseHandler,
) error {
	start := time.Now()
	route := c.Path()
	txn := newrelic.FromContext(c.Request().Context())

	annotate := func(key string, value interface{}) {
		if txn != nil {
			txn.AddAttribute(key, value)
		}
	}
	annotate("handler.name", route)

	logger := middleware.GetLogger(c).With().
		Str("operation", responseHandler.GetOperation()).
		Str("route", route).
		Logger()

	if err := h.server.Validator.BindAndValidate(c, req); err != nil {
		validationDuration := time.Since(start)
		annotate("validation.status", "failed")
		annotate("validation.duration_ms", validationDuration.Milliseconds())
		h.server.Metrics.ObserveValidationFailure()

		logger.Warn().
			Err(err).
			Dur("validation_duration", validationDuration).
			Msg("request validation failed")
		return err
	}

	validationDuration := time.Since(start)
	annotate("validation.status", "success")
	annotate("validation.duration_ms", validationDuration.Milliseconds())

	handlerStart := time.Now()
	result, err := handler(c, req)
	handlerDuration := time.Since(handlerStart)
	annotate("handler.duration_ms", handlerDuration.Milliseconds())

	if err != nil {
		annotate("handler.status", "error")
		logger.Error().
			Err(err).
			Dur("handler_duration", handlerDuration).
			Dur("total_duration", time.Since(start)).
			Msg("handler execution failed")
		return err
	}

	annotate("handler.status", "success")
	logger.Info().
		Dur("handler_duration", handlerDuration).
		Dur("validation_duration", validationDuration).
		Dur("total_duration", time.Since(start)).
		Msg("request completed successfully")

	return responseHandler.Handle(c, result)
}

// Handle wraps a typed handler with binding, validation, logging and tracing.
//
// newReq is called once per request so concurrent requests never share a
// payload value.
//
//	router.POST("", handler.Handle(h.Handler, "create_prospect", h.Create, http.StatusOK, newCreatePayload))
func Handle[Req validation.Validatable, Res any](
	h Handler,
	operation string,
	handler HandlerFunc[Req, Res],
	status int,
	newReq func() Req,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		return handleRequest(h, c, newReq(), func(c echo.Context, req Req) (interface{}, error) {
			return handler(c, req)
		}, JSONResponseHandler{status: status, operation: operation})
	}
}
