package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"clearance-backend/internal/logger"
)

type httpSMSService struct {
	endpoint string
	apiKey   string
	sender   string
	client   *http.Client
	enabled  bool
}

// NewSMSService posts messages to a generic HTTP SMS gateway. With an
// empty endpoint it degrades to a logging no-op.
func NewSMSService(endpoint, apiKey, sender string) SMSService {
	return &httpSMSService{
		endpoint: endpoint,
		apiKey:   apiKey,
		sender:   sender,
		client:   &http.Client{Timeout: 10 * time.Second},
		enabled:  endpoint != "",
	}
}

func (s *httpSMSService) Send(ctx context.Context, phone, message string) error {
	if !s.enabled {
		logger.Info("sms disabled, skipping send", "phone", phone)
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"to":      phone,
		"from":    s.sender,
		"message": message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sms gateway error: status %d", resp.StatusCode)
	}
	return nil
}
