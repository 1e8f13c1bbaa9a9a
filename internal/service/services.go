package service

import (
	"fmt"

	"github.com/gurri8686/zohoprospects/internal/server"
	"github.com/gurri8686/zohoprospects/internal/zoho"
)

type Services struct {
	Auth     *AuthService
	Prospect *ProspectService
}

// NewServices builds the business services from the server container.
//
// The notifier is the job queue when async notifications are on, and the
// mailer otherwise.
func NewServices(s *server.Server) (*Services, error) {
	crm, err := zoho.New(zoho.Config{
		Token:   s.Config.Zoho.Token,
		Timeout: s.Config.Zoho.Timeout,
	}, s.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to create zoho client: %w", err)
	}

	var notifier Notifier = s.Mailer
	if s.Job != nil {
		notifier = s.Job
	}

	return &Services{
		Auth:     NewAuthService(s),
		Prospect: NewProspectService(crm, notifier, s.Config.Zoho, s.Metrics),
	}, nil
}
