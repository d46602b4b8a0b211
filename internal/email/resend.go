package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ResendSender posts email to the Resend HTTP API with bearer-token auth.
type ResendSender struct {
	client *http.Client
	url    string
	apiKey string
	from   string
	logger *zap.Logger
}

type ResendConfig struct {
	APIURL string
	APIKey string
	From   string
}

func NewResendSender(cfg ResendConfig, logger *zap.Logger) (*ResendSender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("resend api key required")
	}
	url := cfg.APIURL
	if url == "" {
		url = "https://api.resend.com/emails"
	}
	return &ResendSender{
		client: &http.Client{Timeout: 15 * time.Second},
		url:    url,
		apiKey: cfg.APIKey,
		from:   cfg.From,
		logger: logger,
	}, nil
}

type resendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("email missing recipient")
	}

	body, err := json.Marshal(resendRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email api returned status %d: %s", resp.StatusCode, string(respBody))
	}

	s.logger.Info("email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("status_code", resp.StatusCode),
	)

	return nil
}
