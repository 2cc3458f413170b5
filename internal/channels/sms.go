package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/config"
	"github.com/itarutakasaka-glitch/rental-crm-sub000/pkg/logger"
)

// SMSSender delivers messages through an HTTP SMS gateway
type SMSSender struct {
	cfg    config.SMSConfig
	client *http.Client
	logger *logger.Logger
}

// NewSMSSender creates an SMS gateway sender
func NewSMSSender(cfg config.SMSConfig, log *logger.Logger) *SMSSender {
	return &SMSSender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: log,
	}
}

type smsRequest struct {
	To   string `json:"to"`
	From string `json:"from"`
	Body string `json:"body"`
}

// Send sends a text message to a phone number
func (s *SMSSender) Send(ctx context.Context, msg Message) error {
	payload := smsRequest{
		To:   msg.To,
		From: s.cfg.FromNumber,
		Body: msg.Body,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIEndpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send sms request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned status %d: %s", resp.StatusCode, detail)
	}

	s.logger.Debug("SMS sent", logger.String("to", msg.To))
	return nil
}
