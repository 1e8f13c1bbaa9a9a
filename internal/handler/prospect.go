package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gurri8686/zohoprospects/internal/errs"
	"github.com/gurri8686/zohoprospects/internal/lib/email"
	"github.com/gurri8686/zohoprospects/internal/middleware"
	"github.com/gurri8686/zohoprospects/internal/model/prospect"
	"github.com/gurri8686/zohoprospects/internal/server"
	"github.com/labstack/echo/v4"
)

// ProspectService is the business layer behind the prospect routes.
// *service.ProspectService satisfies it.
type ProspectService interface {
	ListRecent(ctx context.Context) (*prospect.RecentProspectsResponse, error)
	Create(ctx context.Context, input *prospect.CreateProspectPayload) (*prospect.CreateProspectResponse, error)
}

type ProspectHandler struct {
	Handler
	prospects ProspectService
}

func NewProspectHandler(s *server.Server, prospects ProspectService) *ProspectHandler {
	return &ProspectHandler{
		Handler:   NewHandler(s),
		prospects: prospects,
	}
}

// ListRecentRoute serves GET /prospects/recent.
func (h *ProspectHandler) ListRecentRoute() echo.HandlerFunc {
	return Handle(h.Handler, "list_recent_prospects", h.ListRecent, http.StatusOK, func() *prospect.ListRecentRequest {
		return &prospect.ListRecentRequest{}
	})
}

// CreateRoute serves POST /prospects.
func (h *ProspectHandler) CreateRoute() echo.HandlerFunc {
	return Handle(h.Handler, "create_prospect", h.Create, http.StatusOK, func() *prospect.CreateProspectPayload {
		return &prospect.CreateProspectPayload{}
	})
}

func (h *ProspectHandler) ListRecent(c echo.Context, _ *prospect.ListRecentRequest) (*prospect.RecentProspectsResponse, error) {
	return h.prospects.ListRecent(c.Request().Context())
}

// Create creates the prospect upstream. A failed notification does not fail
// the request: the record exists in the CRM, so the response is still 200
// and carries a "notification" block describing the failure.
func (h *ProspectHandler) Create(c echo.Context, payload *prospect.CreateProspectPayload) (*prospect.CreateProspectResponse, error) {
	resp, err := h.prospects.Create(c.Request().Context(), payload)
	if err == nil {
		return resp, nil
	}

	if resp == nil || !errors.Is(err, email.ErrNotificationFailed) {
		return nil, err
	}

	middleware.GetLogger(c).Error().
		Err(err).
		Str("error_code", errs.CodeNotificationFailed).
		Str("prospect_id", resp.ID).
		Msg("prospect created but notification failed")

	h.recordEvent("ProspectNotificationFailed", map[string]interface{}{
		"prospect_id":   resp.ID,
		"error_message": err.Error(),
	})

	resp.Notification = &prospect.NotificationStatus{
		Delivered: false,
		Error:     "notification email could not be delivered",
	}
	return resp, nil
}
