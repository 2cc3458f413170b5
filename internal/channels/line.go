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

// LineSender delivers messages through the LINE Messaging API push endpoint
type LineSender struct {
	cfg    config.LineConfig
	client *http.Client
	logger *logger.Logger
}

// NewLineSender creates a LINE push message sender
func NewLineSender(cfg config.LineConfig, log *logger.Logger) *LineSender {
	return &LineSender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: log,
	}
}

type linePushRequest struct {
	To       string        `json:"to"`
	Messages []lineMessage `json:"messages"`
}

type lineMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Send pushes a text message to a LINE user
func (s *LineSender) Send(ctx context.Context, msg Message) error {
	payload := linePushRequest{
		To:       msg.To,
		Messages: []lineMessage{{Type: "text", Text: msg.Body}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal line payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIEndpoint, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create line request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.ChannelAccessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send line request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("line api returned status %d: %s", resp.StatusCode, detail)
	}

	s.logger.Debug("LINE message sent", logger.String("to", msg.To))
	return nil
}
