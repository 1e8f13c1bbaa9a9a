// Package config manages environment variables.
//
// It reads variables from the `.env` file and the process environment,
// loads them into structured Go types, applies defaults and
// validates that required values are present so they can be reused
// across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. notification, observability).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the prefix PROSPECTS_. Keys are lowercased and the
	prefix removed; nesting uses the "." delimiter:

	    PROSPECTS_ZOHO.CREATE_URL -> zoho.create_url -> Config.Zoho.CreateURL

	The variable names used by the previous deployment (ZOHO_CRM_GET_URL,
	ZOHO_CRM_CREATE_URL, ZOHO_CRM_TOKEN) are still honoured, but any
	PROSPECTS_ variable wins over them.
*/

const (
	// EnvPrefix is the prefix every configuration variable must carry.
	EnvPrefix = "PROSPECTS_"

	legacyPrefix = "ZOHO_CRM_"
)

// Default values applied when the environment leaves a field empty.
const (
	DefaultPort                = "8080"
	DefaultRecordURLBase       = "https://crmsandbox.zoho.com.au/crm/newff/tab/CustomModule1/"
	DefaultNotificationTo      = "it@truewealth.com.au"
	DefaultNotificationSubject = "New Prospect Created"
	DefaultFromEmail           = "onboarding@resend.dev"
	DefaultFromName            = "Zoho Prospects"
	DefaultMobilePattern       = `^04\d{8}$`
	DefaultUpstreamTimeout     = 30 * time.Second
)

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf maps values from.
// The `validate:"..."` tags are enforced by go-playground/validator.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Zoho          ZohoConfig           `koanf:"zoho" validate:"required"`
	Notification  NotificationConfig   `koanf:"notification"`
	Validation    ValidationConfig     `koanf:"validation"`
	Redis         RedisConfig          `koanf:"redis"`
	Auth          AuthConfig           `koanf:"auth"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are whole seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"min=0"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"min=0"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"min=0"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// RateLimit is the number of requests per second allowed per client IP
	// on the prospect routes. Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
}

// ZohoConfig holds the upstream CRM endpoints and credential.
//
// The token is process-wide and read-only: it is handed to the CRM client
// once at construction and never looked up again.
type ZohoConfig struct {
	ListURL   string `koanf:"list_url" validate:"required,url"`
	CreateURL string `koanf:"create_url" validate:"required,url"`
	Token     string `koanf:"token" validate:"required"`

	// RecordURLBase is prefixed to a record id to build the CRM deep link.
	RecordURLBase string `koanf:"record_url_base" validate:"required,url"`

	// Timeout bounds a single upstream call.
	Timeout time.Duration `koanf:"timeout" validate:"min=0"`
}

// NotificationConfig controls the "new prospect" email.
type NotificationConfig struct {
	// Provider selects the mail transport: resend, sendgrid, ses or log.
	Provider  string `koanf:"provider" validate:"required,oneof=resend sendgrid ses log"`
	To        string `koanf:"to" validate:"required,email"`
	Subject   string `koanf:"subject" validate:"required"`
	FromEmail string `koanf:"from_email" validate:"required,email"`
	FromName  string `koanf:"from_name"`

	// Async hands the email to the background job queue instead of sending
	// it inline. Requires Redis.
	Async bool `koanf:"async"`

	Resend   ResendConfig   `koanf:"resend"`
	SendGrid SendGridConfig `koanf:"sendgrid"`
	SES      SESConfig      `koanf:"ses"`
}

type ResendConfig struct {
	APIKey string `koanf:"api_key"`
}

type SendGridConfig struct {
	APIKey string `koanf:"api_key"`
}

// SESConfig configures AWS SES. Static keys are optional; when empty the
// default AWS credential chain is used.
type SESConfig struct {
	Region          string `koanf:"region"`
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
}

// ValidationConfig holds toggles for input rules whose strictness is a
// deployment decision.
type ValidationConfig struct {
	EnforceMobileFormat bool   `koanf:"enforce_mobile_format"`
	MobilePattern       string `koanf:"mobile_pattern"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port"; empty means Redis is not used.
type RedisConfig struct {
	Address string `koanf:"address"`
}

// AuthConfig stores authentication-related secrets.
// An empty SecretKey leaves the prospect routes unauthenticated.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key"`
}

// LoadConfig loads configuration from environment variables, unmarshals it into
// Config, applies defaults, validates it and returns the resulting config.
//
// Behavior summary:
//   - Loads legacy ZOHO_CRM_* vars, then PROSPECTS_* vars on top
//   - Unmarshals into Config
//   - Applies defaults for empty optional fields
//   - Validates struct tags and cross-field rules
//   - Sets default observability if missing and validates it
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(env.Provider(legacyPrefix, ".", legacyKey), nil); err != nil {
		return nil, fmt.Errorf("could not load legacy env variables: %w", err)
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load initial env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	mainConfig.applyDefaults()

	// Service name and environment are forced so logs and traces always
	// agree with the primary config.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// legacyKey maps the variable names of the previous deployment onto koanf keys.
// Unknown ZOHO_CRM_ variables are ignored.
func legacyKey(s string) string {
	switch strings.TrimPrefix(s, legacyPrefix) {
	case "GET_URL":
		return "zoho.list_url"
	case "CREATE_URL":
		return "zoho.create_url"
	case "TOKEN":
		return "zoho.token"
	}
	return ""
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{"*"}
	}

	if c.Zoho.RecordURLBase == "" {
		c.Zoho.RecordURLBase = DefaultRecordURLBase
	}
	if c.Zoho.Timeout == 0 {
		c.Zoho.Timeout = DefaultUpstreamTimeout
	}

	n := &c.Notification
	if n.Provider == "" {
		n.Provider = "log"
	}
	if n.To == "" {
		n.To = DefaultNotificationTo
	}
	if n.Subject == "" {
		n.Subject = DefaultNotificationSubject
	}
	if n.FromEmail == "" {
		n.FromEmail = DefaultFromEmail
	}
	if n.FromName == "" {
		n.FromName = DefaultFromName
	}

	if c.Validation.MobilePattern == "" {
		c.Validation.MobilePattern = DefaultMobilePattern
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
		return
	}

	// Partially configured observability block: fill the gaps.
	defaults := DefaultObservabilityConfig()
	if c.Observability.Logging.Level == "" {
		c.Observability.Logging.Level = defaults.Logging.Level
	}
	if c.Observability.Logging.Format == "" {
		c.Observability.Logging.Format = defaults.Logging.Format
	}
	if c.Observability.HealthChecks.Timeout == 0 {
		c.Observability.HealthChecks.Timeout = defaults.HealthChecks.Timeout
	}
}

// Validate applies cross-field rules that struct tags cannot express.
func (c *Config) Validate() error {
	n := c.Notification
	switch n.Provider {
	case "log":
		if c.Primary.Env == "production" {
			return fmt.Errorf("notification.provider=log sends no email and is not allowed in production")
		}
	case "resend":
		if n.Resend.APIKey == "" {
			return fmt.Errorf("notification.resend.api_key is required for the resend provider")
		}
	case "sendgrid":
		if n.SendGrid.APIKey == "" {
			return fmt.Errorf("notification.sendgrid.api_key is required for the sendgrid provider")
		}
	case "ses":
		if n.SES.Region == "" {
			return fmt.Errorf("notification.ses.region is required for the ses provider")
		}
		if (n.SES.AccessKeyID == "") != (n.SES.SecretAccessKey == "") {
			return fmt.Errorf("notification.ses access_key_id and secret_access_key must be set together")
		}
	}

	if n.Async && c.Redis.Address == "" {
		return fmt.Errorf("redis.address is required when notification.async is enabled")
	}

	return nil
}

const redactedValue = "[REDACTED]"

// Redacted returns a copy of the config with every secret masked, suitable
// for printing.
func (c *Config) Redacted() *Config {
	out := *c

	mask := func(s *string) {
		if *s != "" {
			*s = redactedValue
		}
	}

	mask(&out.Zoho.Token)
	mask(&out.Notification.Resend.APIKey)
	mask(&out.Notification.SendGrid.APIKey)
	mask(&out.Notification.SES.AccessKeyID)
	mask(&out.Notification.SES.SecretAccessKey)
	mask(&out.Auth.SecretKey)

	if c.Observability != nil {
		obs := *c.Observability
		mask(&obs.NewRelic.LicenseKey)
		out.Observability = &obs
	}

	return &out
}
