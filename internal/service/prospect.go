package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gurri8686/zohoprospects/internal/config"
	"github.com/gurri8686/zohoprospects/internal/lib/email"
	"github.com/gurri8686/zohoprospects/internal/metrics"
	"github.com/gurri8686/zohoprospects/internal/model/prospect"
	"github.com/gurri8686/zohoprospects/internal/zoho"
	"github.com/rs/zerolog"
)

const (
	operationListRecent = "list_recent"
	operationCreate     = "create"

	recentPage    = 1
	recentPerPage = 5
	recentFields  = "Name,Email,First_Name,Mobile,DOB,Tax_File_Number,Agreed_Terms,Status"
)

// CRMClient sends authenticated requests to the CRM. *zoho.Client satisfies it.
type CRMClient interface {
	Send(ctx context.Context, method, endpoint string, opts zoho.RequestOptions) (*zoho.Response, error)
}

// Notifier announces a newly created prospect. Both *email.Client (inline)
// and *job.JobService (queued) satisfy it.
type Notifier interface {
	NotifyProspectCreated(ctx context.Context, p email.ProspectCreated) error
}

// ProspectService lists and creates prospects in Zoho CRM.
type ProspectService struct {
	crm      CRMClient
	notifier Notifier
	cfg      config.ZohoConfig
	metrics  *metrics.Metrics
}

func NewProspectService(crm CRMClient, notifier Notifier, cfg config.ZohoConfig, m *metrics.Metrics) *ProspectService {
	return &ProspectService{
		crm:      crm,
		notifier: notifier,
		cfg:      cfg,
		metrics:  m,
	}
}

// ListRecent fetches the first page of five prospects and returns the
// upstream JSON unchanged under "prospects".
func (s *ProspectService) ListRecent(ctx context.Context) (*prospect.RecentProspectsResponse, error) {
	resp, err := s.crm.Send(ctx, http.MethodGet, s.cfg.ListURL, zoho.RequestOptions{
		Operation: operationListRecent,
		Query: url.Values{
			"page":     {strconv.Itoa(recentPage)},
			"per_page": {strconv.Itoa(recentPerPage)},
			"fields":   {recentFields},
		},
	})
	if err != nil {
		return nil, err
	}

	var prospects any
	if err := resp.Decode(&prospects); err != nil {
		return nil, err
	}

	return &prospect.RecentProspectsResponse{Prospects: prospects}, nil
}

// Create forwards a validated payload to Zoho CRM, then sends the
// notification for the new record.
//
// When only the notification fails, the response is still returned together
// with an error matching email.ErrNotificationFailed.
func (s *ProspectService) Create(ctx context.Context, input *prospect.CreateProspectPayload) (*prospect.CreateProspectResponse, error) {
	resp, err := s.crm.Send(ctx, http.MethodPost, s.cfg.CreateURL, zoho.RequestOptions{
		Operation: operationCreate,
		JSON:      map[string]any{"data": []any{toUpstreamRecord(input)}},
	})
	if err != nil {
		return nil, err
	}

	var created any
	if err := resp.Decode(&created); err != nil {
		return nil, err
	}

	id, err := createdRecordID(created)
	if err != nil {
		s.metrics.ObserveMalformedResponse(operationCreate)
		return nil, zoho.Malformed(http.MethodPost, s.cfg.CreateURL, err)
	}

	result := &prospect.CreateProspectResponse{Prospect: created, ID: id}

	logger := zerolog.Ctx(ctx)
	logger.Info().Str("prospect_id", id).Msg("prospect created in zoho")

	notification := email.ProspectCreated{
		ID:    id,
		Name:  input.FullName(),
		Email: input.Email,
		Link:  s.cfg.RecordURLBase + id,
	}

	if err := s.notifier.NotifyProspectCreated(ctx, notification); err != nil {
		s.metrics.ObserveNotification(metrics.OutcomeFailed)
		if !errors.Is(err, email.ErrNotificationFailed) {
			err = fmt.Errorf("%w: %w", email.ErrNotificationFailed, err)
		}
		return result, err
	}

	s.metrics.ObserveNotification(metrics.OutcomeSuccess)
	return result, nil
}

// toUpstreamRecord maps the payload onto Zoho API field names.
func toUpstreamRecord(p *prospect.CreateProspectPayload) map[string]string {
	return map[string]string{
		"First_Name":      p.FirstName,
		"Name":            p.Name,
		"Mobile":          p.Mobile,
		"Email":           p.Email,
		"DOB":             p.DOB,
		"Tax_File_Number": p.TaxFileNumber,
		"Agreed_Terms":    p.AgreedTerms,
		"Status":          p.Status,
	}
}

// createdRecordID reads data[0].details.id from a create response.
func createdRecordID(body any) (string, error) {
	root, ok := body.(map[string]any)
	if !ok {
		return "", errors.New("create response is not an object")
	}

	data, ok := root["data"].([]any)
	if !ok || len(data) == 0 {
		return "", errors.New("create response has no data entries")
	}

	first, ok := data[0].(map[string]any)
	if !ok {
		return "", errors.New("create response data[0] is not an object")
	}

	details, ok := first["details"].(map[string]any)
	if !ok {
		return "", errors.New("create response data[0] has no details")
	}

	switch id := details["id"].(type) {
	case string:
		if id != "" {
			return id, nil
		}
	case json.Number:
		return id.String(), nil
	}

	return "", errors.New("create response data[0].details has no id")
}
