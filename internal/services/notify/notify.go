// Package notify fans a final decision out to the configured channels: an
// HTTP webhook and an email to the account officer. Delivery is best
// effort; the decision itself never fails on a notification error.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"credit-decision-engine/internal/metrics"
	"credit-decision-engine/internal/models"
	"credit-decision-engine/internal/services/ses"
	"credit-decision-engine/internal/utils"
)

// Service delivers decision notifications.
type Service struct {
	webhookURL string
	emailer    *ses.Service
	httpClient *http.Client
	metrics    *metrics.Metrics
}

// NewService creates a notifier. Either channel may be absent: an empty
// webhook URL disables the webhook, a nil emailer disables email.
func NewService(webhookURL string, emailer *ses.Service, m *metrics.Metrics) *Service {
	return &Service{
		webhookURL: webhookURL,
		emailer:    emailer,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		metrics:    m,
	}
}

// NotifyDecision posts the decision to the webhook and emails the account
// officer when the profile names one. Failures are logged and counted,
// never returned.
func (s *Service) NotifyDecision(ctx context.Context, record *models.DecisionRecord) {
	if s == nil {
		return
	}

	logger := utils.GetLogger()

	if s.webhookURL != "" {
		if err := s.postWebhook(ctx, record); err != nil {
			logger.Warn("Failed to deliver decision webhook",
				utils.String("sessionID", record.SessionID),
				utils.Error(err))
			s.metrics.NotifyFailed("webhook")
		}
	}

	if s.emailer != nil && record.Profile.OfficerEmail != "" {
		params := ses.DecisionNotificationParams{
			OfficerEmail: record.Profile.OfficerEmail,
			OfficerName:  record.Profile.AccountOfficer,
			ClientName:   record.Profile.ClientName,
			ClientNumber: record.Profile.ClientNumber,
			SessionID:    record.SessionID,
			Outcome:      record.Outcome,
			Reasons:      record.Reasons,
			DecidedAt:    record.CreatedAt,
		}

		if _, err := s.emailer.SendDecisionNotification(ctx, params); err != nil {
			logger.Warn("Failed to deliver decision email",
				utils.String("sessionID", record.SessionID),
				utils.Error(err))
			s.metrics.NotifyFailed("email")
		}
	}
}

// postWebhook sends the decision record to the configured webhook.
func (s *Service) postWebhook(ctx context.Context, record *models.DecisionRecord) error {
	payload := map[string]interface{}{
		"session_id": record.SessionID,
		"outcome":    string(record.Outcome),
		"reasons":    record.Reasons,
		"policy":     record.Policy,
		"mode":       record.Mode,
		"decided_at": record.CreatedAt.UTC().Format(time.RFC3339),
		"source":     "credit-decision-engine",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
