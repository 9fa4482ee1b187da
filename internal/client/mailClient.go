package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"order-payment-engine/internal/config"
	"strings"
)

type Email struct {
	To      string
	Subject string
	Text    string
}

type MailClient interface {
	Send(ctx context.Context, email Email) error
}

type mailClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	apiKey     string
	from       string
}

func NewMailClient(cfg config.Mail) MailClient {
	return &mailClientImpl{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseApiURL: strings.TrimRight(cfg.BaseApiURL, "/"),
		apiKey:     cfg.APIKey,
		from:       cfg.From,
	}
}

func (c *mailClientImpl) Send(ctx context.Context, email Email) error {
	body, err := json.Marshal(map[string]interface{}{
		"from":    c.from,
		"to":      []string{email.To},
		"subject": email.Subject,
		"text":    email.Text,
	})
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail provider error %d: %s", resp.StatusCode, string(b))
	}

	return nil
}
