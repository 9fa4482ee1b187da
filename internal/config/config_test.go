package config

import (
	"testing"

	"github.com/caarlos0/env/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "file.db")
	t.Setenv("GATEWAY_KEY_ID", "rzp_test_key")

	cfg := &Config{}
	require.NoError(t, env.Parse(cfg))

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "file.db", cfg.Database.URL)
	assert.Equal(t, "rzp_test_key", cfg.Gateway.KeyID)
	assert.Equal(t, "INR", cfg.Gateway.Currency)
	assert.Equal(t, "X-Razorpay-Signature", cfg.Gateway.SignatureHeader)
	assert.Equal(t, 3, cfg.Database.TxMaxAttempts)
	assert.Equal(t, "8080", cfg.HTTP.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: Database{Driver: "sqlite", URL: "orders.db"},
			Gateway:  Gateway{KeyID: "key", KeySecret: "secret", WebhookSecret: "whsec"},
			Auth:     Auth{JWTSecret: "jwt"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "complete config", mutate: func(c *Config) {}},
		{name: "missing database url", mutate: func(c *Config) { c.Database.URL = "" }, wantErr: "DATABASE_URL"},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, wantErr: "DATABASE_DRIVER"},
		{name: "missing webhook secret", mutate: func(c *Config) { c.Gateway.WebhookSecret = "" }, wantErr: "GATEWAY_WEBHOOK_SECRET"},
		{name: "shared secrets", mutate: func(c *Config) { c.Gateway.WebhookSecret = "secret" }, wantErr: "must differ"},
		{name: "missing jwt secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "JWT_SECRET"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
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
