package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/InternLink/portal-service/internal/config"
	"github.com/InternLink/portal-service/internal/util/logger"
)

// SMSGateway posts messages to an HTTP SMS provider. Failures are reported
// to the caller as-is; no retry or backoff happens here.
type SMSGateway struct {
	http   *http.Client
	url    string
	apiKey string
	sender string
}

func NewSMSGateway(cfg config.SMSConfig) *SMSGateway {
	return &SMSGateway{
		http:   &http.Client{Timeout: cfg.Timeout},
		url:    cfg.GatewayURL,
		apiKey: cfg.APIKey,
		sender: cfg.Sender,
	}
}

func (g *SMSGateway) SendSMS(ctx context.Context, to, message string) error {
	payload, err := json.Marshal(map[string]string{
		"from": g.sender,
		"to":   to,
		"body": message,
	})
	if err != nil {
		return fmt.Errorf("encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	res, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("sms gateway: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// SimulatedSMS logs the message instead of sending it. Used in development
// and wherever no gateway credentials exist.
type SimulatedSMS struct{}

func (SimulatedSMS) SendSMS(ctx context.Context, to, message string) error {
	logger.Infof("SMS simulation to=%s body=%q", maskContact(to), message)
	return nil
}

// maskContact keeps only the last 3 characters for logs.
func maskContact(c string) string {
	if n := len(c); n > 3 {
		return strings.Repeat("*", n-3) + c[n-3:]
	}
	return "***"
}
