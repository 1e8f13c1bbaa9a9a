package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	clerkhttp "github.com/clerk/clerk-sdk-go/v2/http"
	"github.com/gurri8686/zohoprospects/internal/errs"
	"github.com/gurri8686/zohoprospects/internal/server"
	"github.com/labstack/echo/v4"
)

// AuthMiddleware checks Clerk session tokens.
type AuthMiddleware struct {
	server *server.Server
}

func NewAuthMiddleware(s *server.Server) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
	}
}

// Optional returns RequireAuth when a Clerk secret key is configured and a
// pass-through middleware otherwise.
func (auth *AuthMiddleware) Optional() echo.MiddlewareFunc {
	if auth.server.Config.Auth.SecretKey == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}
	return auth.RequireAuth
}

// RequireAuth is an Echo middleware that enforces authentication using Clerk.
//
//  1. Clerk's net/http middleware validates the `Authorization: Bearer` token.
//  2. On failure a JSON 401 in the errs.HTTPError shape is written.
//  3. On success the session claims are copied into the echo context and the
//     request logger is extended with the user.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return echo.WrapMiddleware(
		clerkhttp.WithHeaderAuthorization(
			clerkhttp.AuthorizationFailureHandler(http.HandlerFunc(auth.writeUnauthorized)),
		))(
		func(c echo.Context) error {
			start := time.Now()

			claims, ok := clerk.SessionClaimsFromContext(c.Request().Context())
			if !ok {
				GetLogger(c).Warn().
					Str("function", "RequireAuth").
					Dur("duration", time.Since(start)).
					Msg("could not get session claims from context")

				return errs.NewUnauthorizedError("Unauthorized", false)
			}

			c.Set(UserIDKey, claims.Subject)
			c.Set(UserRoleKey, claims.ActiveOrganizationRole)
			c.Set("permissions", claims.Claims.ActiveOrganizationPermissions)

			userLogger := GetLogger(c).With().Str(UserIDKey, claims.Subject).Logger()
			c.Set(LoggerKey, &userLogger)
			c.SetRequest(c.Request().WithContext(userLogger.WithContext(c.Request().Context())))

			userLogger.Debug().
				Str("function", "RequireAuth").
				Dur("duration", time.Since(start)).
				Msg("user authenticated successfully")

			return next(c)
		})
}

func (auth *AuthMiddleware) writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	if err := json.NewEncoder(w).Encode(errs.NewUnauthorizedError("Unauthorized", false)); err != nil {
		auth.server.Logger.Error().
			Err(err).
			Str("function", "RequireAuth").
			Msg("failed to write JSON response")
		return
	}

	auth.server.Logger.Warn().
		Str("function", "RequireAuth").
		Str("path", r.URL.Path).
		Msg("request rejected: missing or invalid session token")
}
