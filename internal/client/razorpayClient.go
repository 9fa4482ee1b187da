package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"order-payment-engine/internal/config"
	"order-payment-engine/internal/model"
	"strings"
)

type CreateGatewayOrderRequest struct {
	OrderID  string
	Amount   int64
	Currency string
}

// PaymentGateway opens payment sessions with the provider. Capture happens
// on the provider side and reaches us as a signed redirect or webhook.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req CreateGatewayOrderRequest) (*model.GatewayOrder, error)
}

type razorpayClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	keyID      string
	keySecret  string
}

func NewRazorpayClient(cfg config.Gateway) PaymentGateway {
	return &razorpayClientImpl{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseApiURL: strings.TrimRight(cfg.BaseApiURL, "/"),
		keyID:      cfg.KeyID,
		keySecret:  cfg.KeySecret,
	}
}

func (c *razorpayClientImpl) CreateOrder(ctx context.Context, in CreateGatewayOrderRequest) (*model.GatewayOrder, error) {
	payload := map[string]interface{}{
		"amount":   in.Amount,
		"currency": in.Currency,
		"receipt":  in.OrderID,
		"notes": model.Notes{
			OrderID: in.OrderID,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: status=%d body=%s", model.ErrGatewayUnavailable, resp.StatusCode, string(respBody))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway create order failed: status=%d body=%s", resp.StatusCode, string(respBody))
	}

	var result model.GatewayOrder
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	if result.ID == "" {
		return nil, fmt.Errorf("gateway response has no order id: %s", string(respBody))
	}

	return &result, nil
}
