package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PROSPECTS_PRIMARY.ENV", "development")
	t.Setenv("PROSPECTS_ZOHO.LIST_URL", "https://www.zohoapis.com.au/crm/v2/CustomModule1")
	t.Setenv("PROSPECTS_ZOHO.CREATE_URL", "https://www.zohoapis.com.au/crm/v2/CustomModule1")
	t.Setenv("PROSPECTS_ZOHO.TOKEN", "token-123")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "token-123", cfg.Zoho.Token)
	assert.Equal(t, DefaultRecordURLBase, cfg.Zoho.RecordURLBase)
	assert.Equal(t, DefaultUpstreamTimeout, cfg.Zoho.Timeout)

	assert.Equal(t, "log", cfg.Notification.Provider)
	assert.Equal(t, "it@truewealth.com.au", cfg.Notification.To)
	assert.Equal(t, "New Prospect Created", cfg.Notification.Subject)
	assert.False(t, cfg.Notification.Async)

	assert.False(t, cfg.Validation.EnforceMobileFormat)
	assert.Equal(t, DefaultMobilePattern, cfg.Validation.MobilePattern)

	require.NotNil(t, cfg.Observability)
	assert.Equal(t, ServiceName, cfg.Observability.ServiceName)
	assert.Equal(t, "development", cfg.Observability.Environment)
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PROSPECTS_SERVER.PORT", "9090")
	t.Setenv("PROSPECTS_ZOHO.TIMEOUT", "5s")
	t.Setenv("PROSPECTS_NOTIFICATION.TO", "ops@example.com")
	t.Setenv("PROSPECTS_NOTIFICATION.SUBJECT", "Prospect!")
	t.Setenv("PROSPECTS_VALIDATION.ENFORCE_MOBILE_FORMAT", "true")
	t.Setenv("PROSPECTS_SERVER.CORS_ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Zoho.Timeout)
	assert.Equal(t, "ops@example.com", cfg.Notification.To)
	assert.Equal(t, "Prospect!", cfg.Notification.Subject)
	assert.True(t, cfg.Validation.EnforceMobileFormat)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSAllowedOrigins)
}

func TestLoadConfig_LegacyVariables(t *testing.T) {
	t.Setenv("PROSPECTS_PRIMARY.ENV", "development")
	t.Setenv("ZOHO_CRM_GET_URL", "https://legacy.example.com/list")
	t.Setenv("ZOHO_CRM_CREATE_URL", "https://legacy.example.com/create")
	t.Setenv("ZOHO_CRM_TOKEN", "legacy-token")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://legacy.example.com/list", cfg.Zoho.ListURL)
	assert.Equal(t, "https://legacy.example.com/create", cfg.Zoho.CreateURL)
	assert.Equal(t, "legacy-token", cfg.Zoho.Token)
}

func TestLoadConfig_PrefixedWinsOverLegacy(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ZOHO_CRM_TOKEN", "legacy-token")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "token-123", cfg.Zoho.Token)
}

func TestLoadConfig_MissingToken(t *testing.T) {
	t.Setenv("PROSPECTS_PRIMARY.ENV", "development")
	t.Setenv("PROSPECTS_ZOHO.LIST_URL", "https://example.com/list")
	t.Setenv("PROSPECTS_ZOHO.CREATE_URL", "https://example.com/create")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Token")
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "log provider needs nothing",
			mutate: func(c *Config) {},
		},
		{
			name:    "log provider rejected in production",
			mutate:  func(c *Config) { c.Primary.Env = "production" },
			wantErr: "notification.provider",
		},
		{
			name: "real provider allowed in production",
			mutate: func(c *Config) {
				c.Primary.Env = "production"
				c.Notification.Provider = "resend"
				c.Notification.Resend.APIKey = "re_key"
			},
		},
		{
			name:    "resend without key",
			mutate:  func(c *Config) { c.Notification.Provider = "resend" },
			wantErr: "resend.api_key",
		},
		{
			name:    "sendgrid without key",
			mutate:  func(c *Config) { c.Notification.Provider = "sendgrid" },
			wantErr: "sendgrid.api_key",
		},
		{
			name:    "ses without region",
			mutate:  func(c *Config) { c.Notification.Provider = "ses" },
			wantErr: "ses.region",
		},
		{
			name: "ses with half a key pair",
			mutate: func(c *Config) {
				c.Notification.Provider = "ses"
				c.Notification.SES.Region = "ap-southeast-2"
				c.Notification.SES.AccessKeyID = "AKIA"
			},
			wantErr: "must be set together",
		},
		{
			name:    "async without redis",
			mutate:  func(c *Config) { c.Notification.Async = true },
			wantErr: "redis.address",
		},
		{
			name: "async with redis",
			mutate: func(c *Config) {
				c.Notification.Async = true
				c.Redis.Address = "localhost:6379"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestObservabilityConfig(t *testing.T) {
	cfg := DefaultObservabilityConfig()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.IsProduction())
	assert.True(t, cfg.HealthCheckEnabled("redis"))
	assert.False(t, cfg.HealthCheckEnabled("database"))

	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg.Logging.Level = ""
	cfg.Environment = "production"
	assert.Equal(t, "info", cfg.GetLogLevel())
	assert.True(t, cfg.IsProduction())

	cfg.HealthChecks.Enabled = false
	assert.False(t, cfg.HealthCheckEnabled("redis"))
}

func TestRedacted(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Zoho.Token = "secret-token"
	cfg.Auth.SecretKey = "sk_live"
	cfg.Observability.NewRelic.LicenseKey = "nr-key"

	out := cfg.Redacted()

	assert.Equal(t, redactedValue, out.Zoho.Token)
	assert.Equal(t, redactedValue, out.Auth.SecretKey)
	assert.Equal(t, redactedValue, out.Observability.NewRelic.LicenseKey)
	assert.Empty(t, out.Notification.Resend.APIKey)

	assert.Equal(t, "secret-token", cfg.Zoho.Token)
	assert.Equal(t, "nr-key", cfg.Observability.NewRelic.LicenseKey)
}
