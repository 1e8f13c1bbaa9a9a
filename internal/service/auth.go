package service

// Initialization of Clerk Services by passing the secret key from Clerk
import (
	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/gurri8686/zohoprospects/internal/server"
)

type AuthService struct {
	server *server.Server
}

// NewAuthService configures Clerk when a secret key is present.
// Without one the prospect routes stay public.
func NewAuthService(s *server.Server) *AuthService {
	if s.Config.Auth.SecretKey != "" {
		clerk.SetKey(s.Config.Auth.SecretKey)
	}
	return &AuthService{
		server: s,
	}
}

// Enabled reports whether routes should require a Clerk session.
func (a *AuthService) Enabled() bool {
	return a.server.Config.Auth.SecretKey != ""
}
