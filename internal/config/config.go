package config

import (
	"errors"
	"fmt"
	"time"
)

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	Database    Database

	Gateway  Gateway  `envPrefix:"GATEWAY_"`
	Mail     Mail     `envPrefix:"MAIL_"`
	Notifier Notifier `envPrefix:"NOTIFIER_"`
	Auth     Auth
}

// Gateway holds the payment provider credentials. KeySecret signs the
// redirect confirmation, WebhookSecret signs webhook bodies.
type Gateway struct {
	BaseApiURL      string        `env:"BASE_API_URL" envDefault:"https://api.razorpay.com"`
	KeyID           string        `env:"KEY_ID"`
	KeySecret       string        `env:"KEY_SECRET"`
	WebhookSecret   string        `env:"WEBHOOK_SECRET"`
	SignatureHeader string        `env:"SIGNATURE_HEADER" envDefault:"X-Razorpay-Signature"`
	EventIDHeader   string        `env:"EVENT_ID_HEADER" envDefault:"X-Razorpay-Event-Id"`
	Currency        string        `env:"CURRENCY" envDefault:"INR"`
	Timeout         time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type Mail struct {
	BaseApiURL string        `env:"BASE_API_URL" envDefault:"https://api.resend.com"`
	APIKey     string        `env:"API_KEY"`
	From       string        `env:"FROM" envDefault:"orders@example.com"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type Notifier struct {
	QueueSize int `env:"QUEUE_SIZE" envDefault:"256"`
	Workers   int `env:"WORKERS" envDefault:"2"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type Database struct {
	Driver        string `env:"DATABASE_DRIVER" envDefault:"mysql"`
	URL           string `env:"DATABASE_URL"`
	MaxOpenConns  int    `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"50"`
	MaxIdleConns  int    `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"10"`
	TxMaxAttempts int    `env:"DATABASE_TX_MAX_ATTEMPTS" envDefault:"3"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host            string        `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port            string        `env:"HTTP_PORT" envDefault:"8080"`
	OrderRateLimit  float64       `env:"HTTP_ORDER_RATE_LIMIT" envDefault:"1"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Database.Driver != "mysql" && c.Database.Driver != "sqlite" {
		errs = append(errs, fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver))
	}
	if c.Gateway.KeyID == "" || c.Gateway.KeySecret == "" {
		errs = append(errs, errors.New("GATEWAY_KEY_ID and GATEWAY_KEY_SECRET are required"))
	}
	if c.Gateway.WebhookSecret == "" {
		errs = append(errs, errors.New("GATEWAY_WEBHOOK_SECRET is required"))
	} else if c.Gateway.WebhookSecret == c.Gateway.KeySecret {
		errs = append(errs, errors.New("GATEWAY_WEBHOOK_SECRET must differ from GATEWAY_KEY_SECRET"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	return errors.Join(errs...)
}
