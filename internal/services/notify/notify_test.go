package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credit-decision-engine/internal/models"
	"credit-decision-engine/internal/services/notify"
	"credit-decision-engine/internal/utils"
)

func TestMain(m *testing.M) {
	_ = utils.InitLogger("error")
	os.Exit(m.Run())
}

func sampleRecord() *models.DecisionRecord {
	return &models.DecisionRecord{
		ID:        "rec-1",
		SessionID: "sess-1",
		Profile:   models.ApplicantProfile{ClientNumber: "C-00042"},
		Outcome:   models.OutcomeRefused,
		Reasons:   []string{"debt ratio too high"},
		Policy:    "v2",
		Mode:      "collect-all",
		CreatedAt: time.Date(2026, 8, 21, 9, 30, 0, 0, time.UTC),
	}
}

func TestNotifyDecision_Webhook(t *testing.T) {
	var received map[string]interface{}
	var contentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	service := notify.NewService(server.URL, nil, nil)
	service.NotifyDecision(context.Background(), sampleRecord())

	require.NotNil(t, received, "The webhook should have been called")
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "sess-1", received["session_id"])
	assert.Equal(t, "refused", received["outcome"])
	assert.Equal(t, "v2", received["policy"])
	assert.Equal(t, "2026-08-21T09:30:00Z", received["decided_at"])
	assert.Equal(t, "credit-decision-engine", received["source"])
}

func TestNotifyDecision_WebhookFailureIsSwallowed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	service := notify.NewService(server.URL, nil, nil)

	// Must not panic or block the decision flow.
	service.NotifyDecision(context.Background(), sampleRecord())
}

func TestNotifyDecision_NoChannelsConfigured(t *testing.T) {
	service := notify.NewService("", nil, nil)
	service.NotifyDecision(context.Background(), sampleRecord())

	var nilService *notify.Service
	nilService.NotifyDecision(context.Background(), sampleRecord())
}
