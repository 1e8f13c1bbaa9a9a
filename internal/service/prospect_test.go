package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gurri8686/zohoprospects/internal/config"
	"github.com/gurri8686/zohoprospects/internal/lib/email"
	"github.com/gurri8686/zohoprospects/internal/metrics"
	"github.com/gurri8686/zohoprospects/internal/model/prospect"
	"github.com/gurri8686/zohoprospects/internal/zoho"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyProspectCreated(ctx context.Context, p email.ProspectCreated) error {
	return m.Called(ctx, p).Error(0)
}

type ProspectServiceSuite struct {
	suite.Suite

	upstream *httptest.Server
	handler  http.HandlerFunc

	lastQuery url.Values
	lastBody  []byte
	calls     int

	notifier *mockNotifier
	service  *ProspectService
}

func TestProspectServiceSuite(t *testing.T) {
	suite.Run(t, new(ProspectServiceSuite))
}

func (s *ProspectServiceSuite) SetupTest() {
	s.calls = 0
	s.lastQuery = nil
	s.lastBody = nil
	s.handler = func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

	s.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls++
		s.lastQuery = r.URL.Query()
		s.lastBody, _ = io.ReadAll(r.Body)
		s.handler(w, r)
	}))

	crm, err := zoho.New(zoho.Config{Token: "token", Timeout: 2 * time.Second}, nil)
	s.Require().NoError(err)

	s.notifier = &mockNotifier{}
	s.service = NewProspectService(crm, s.notifier, config.ZohoConfig{
		ListURL:       s.upstream.URL + "/list",
		CreateURL:     s.upstream.URL + "/create",
		Token:         "token",
		RecordURLBase: "https://crm.example.com/tab/CustomModule1/",
	}, nil)
}

func (s *ProspectServiceSuite) TearDownTest() {
	s.upstream.Close()
}

func (s *ProspectServiceSuite) respond(status int, body string) {
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func validPayload() *prospect.CreateProspectPayload {
	return &prospect.CreateProspectPayload{
		FirstName:     "Jane",
		Name:          "Citizen",
		Mobile:        "0412345678",
		Email:         "jane@example.com",
		DOB:           "1990-05-17",
		TaxFileNumber: "123456789",
		AgreedTerms:   "Yes",
		Status:        "New Prospect",
	}
}

func (s *ProspectServiceSuite) TestListRecent_RequestsFirstPageOfFive() {
	s.respond(http.StatusOK, `{"data":[{"id":"1"},{"id":"2"},{"id":"3"},{"id":"4"},{"id":"5"}],"info":{"per_page":5,"page":1,"more_records":true}}`)

	resp, err := s.service.ListRecent(context.Background())
	s.Require().NoError(err)

	s.Equal("1", s.lastQuery.Get("page"))
	s.Equal("5", s.lastQuery.Get("per_page"))
	s.Equal(recentFields, s.lastQuery.Get("fields"))

	out, err := json.Marshal(resp)
	s.Require().NoError(err)
	s.JSONEq(`{"prospects":{"data":[{"id":"1"},{"id":"2"},{"id":"3"},{"id":"4"},{"id":"5"}],"info":{"per_page":5,"page":1,"more_records":true}}}`, string(out))
}

func (s *ProspectServiceSuite) TestListRecent_NoContent() {
	s.respond(http.StatusNoContent, "")

	resp, err := s.service.ListRecent(context.Background())
	s.Require().NoError(err)
	s.Nil(resp.Prospects)
}

func (s *ProspectServiceSuite) TestListRecent_PropagatesUpstreamErrors() {
	s.respond(http.StatusUnauthorized, `{"code":"INVALID_TOKEN"}`)

	_, err := s.service.ListRecent(context.Background())
	s.ErrorIs(err, zoho.ErrUpstreamRejected)

	s.respond(http.StatusOK, `not json`)
	_, err = s.service.ListRecent(context.Background())
	s.ErrorIs(err, zoho.ErrUpstreamMalformed)
}

func (s *ProspectServiceSuite) TestCreate_Success() {
	s.respond(http.StatusCreated, `{"data":[{"code":"SUCCESS","details":{"id":"999"},"status":"success"}]}`)

	expected := email.ProspectCreated{
		ID:    "999",
		Name:  "Jane Citizen",
		Email: "jane@example.com",
		Link:  "https://crm.example.com/tab/CustomModule1/999",
	}
	s.notifier.On("NotifyProspectCreated", mock.Anything, expected).Return(nil).Once()

	resp, err := s.service.Create(context.Background(), validPayload())
	s.Require().NoError(err)
	s.Equal("999", resp.ID)
	s.Nil(resp.Notification)

	var sent map[string][]map[string]string
	s.Require().NoError(json.Unmarshal(s.lastBody, &sent))
	s.Require().Len(sent["data"], 1)
	s.Equal("Jane", sent["data"][0]["First_Name"])
	s.Equal("123456789", sent["data"][0]["Tax_File_Number"])
	s.Equal("New Prospect", sent["data"][0]["Status"])

	out, err := json.Marshal(resp)
	s.Require().NoError(err)
	s.JSONEq(`{"prospect":{"data":[{"code":"SUCCESS","details":{"id":"999"},"status":"success"}]}}`, string(out))

	s.notifier.AssertExpectations(s.T())
	s.notifier.AssertNumberOfCalls(s.T(), "NotifyProspectCreated", 1)
}

func (s *ProspectServiceSuite) TestCreate_NumericID() {
	s.respond(http.StatusCreated, `{"data":[{"details":{"id":4876876000000624001}}]}`)
	s.notifier.On("NotifyProspectCreated", mock.Anything, mock.MatchedBy(func(p email.ProspectCreated) bool {
		return p.ID == "4876876000000624001"
	})).Return(nil).Once()

	resp, err := s.service.Create(context.Background(), validPayload())
	s.Require().NoError(err)
	s.Equal("4876876000000624001", resp.ID)
	s.notifier.AssertExpectations(s.T())
}

func (s *ProspectServiceSuite) TestCreate_MissingIDIsMalformed() {
	for _, body := range []string{
		`{"data":[{"details":{}}]}`,
		`{"data":[]}`,
		`{"data":[{"code":"SUCCESS"}]}`,
		`[]`,
	} {
		s.respond(http.StatusCreated, body)

		resp, err := s.service.Create(context.Background(), validPayload())
		s.Nil(resp, body)
		s.ErrorIs(err, zoho.ErrUpstreamMalformed, body)
	}

	s.notifier.AssertNotCalled(s.T(), "NotifyProspectCreated", mock.Anything, mock.Anything)
}

func (s *ProspectServiceSuite) TestCreate_MalformedBodiesAreCounted() {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	crm, err := zoho.New(zoho.Config{Token: "token", Timeout: 2 * time.Second}, m)
	s.Require().NoError(err)
	svc := NewProspectService(crm, s.notifier, config.ZohoConfig{
		ListURL:   s.upstream.URL + "/list",
		CreateURL: s.upstream.URL + "/create",
		Token:     "token",
	}, m)

	// One body fails to decode, the other decodes but carries no id.
	for _, body := range []string{`[]`, `{"data":[{"details":{}}]}`} {
		s.respond(http.StatusCreated, body)
		_, err := svc.Create(context.Background(), validPayload())
		s.ErrorIs(err, zoho.ErrUpstreamMalformed, body)
	}

	s.Equal(2.0, counterValue(s, reg, "prospects_zoho_malformed_responses_total"))
	s.Equal(2.0, counterValue(s, reg, "prospects_zoho_requests_total"))
	s.notifier.AssertNotCalled(s.T(), "NotifyProspectCreated", mock.Anything, mock.Anything)
}

func counterValue(s *ProspectServiceSuite, reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	s.Require().NoError(err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func (s *ProspectServiceSuite) TestCreate_UpstreamRejectedSkipsNotification() {
	s.respond(http.StatusBadRequest, `{"data":[{"code":"INVALID_DATA"}]}`)

	_, err := s.service.Create(context.Background(), validPayload())
	s.ErrorIs(err, zoho.ErrUpstreamRejected)
	s.notifier.AssertNotCalled(s.T(), "NotifyProspectCreated", mock.Anything, mock.Anything)
}

func (s *ProspectServiceSuite) TestCreate_NotificationFailureKeepsResponse() {
	s.respond(http.StatusCreated, `{"data":[{"details":{"id":"999"}}]}`)
	s.notifier.On("NotifyProspectCreated", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

	resp, err := s.service.Create(context.Background(), validPayload())
	s.Require().Error(err)
	s.ErrorIs(err, email.ErrNotificationFailed)
	s.Require().NotNil(resp)
	s.Equal("999", resp.ID)
	s.Equal(1, s.calls)
}
