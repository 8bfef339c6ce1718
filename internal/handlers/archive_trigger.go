package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	appConfig "credit-decision-engine/internal/config"
	"credit-decision-engine/internal/services/database"
	"credit-decision-engine/internal/services/history"
	s3service "credit-decision-engine/internal/services/s3"
	"credit-decision-engine/internal/utils"
)

// ArchiveTriggerHandler archives the decision log to S3 on demand and
// announces the export downstream. Schedulers or back-office tooling call
// it through API Gateway.
type ArchiveTriggerHandler struct {
	history    history.Store
	archiver   *s3service.Service
	webhookURL string
}

// NewArchiveTriggerHandler builds the handler from environment
// configuration.
func NewArchiveTriggerHandler(ctx context.Context) (*ArchiveTriggerHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	archiver, err := s3service.NewService(ctx, cfg.S3Bucket)
	if err != nil {
		return nil, err
	}

	return &ArchiveTriggerHandler{
		history:    database.NewHistoryRepository(db),
		archiver:   archiver,
		webhookURL: cfg.DecisionWebhookURL,
	}, nil
}

// ArchiveTriggerRequest carries the optional archive parameters.
type ArchiveTriggerRequest struct {
	Limit         int `json:"limit,omitempty"`
	ExpiryMinutes int `json:"expiry_minutes,omitempty"`
}

// ArchiveTriggerResponse reports a completed archive run.
type ArchiveTriggerResponse struct {
	Message  string                        `json:"message"`
	Records  int                           `json:"records"`
	Download *s3service.PresignedURLResult `json:"download"`
}

// Handle processes the API Gateway archive request.
func (h *ArchiveTriggerHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()

	// CORS headers
	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "POST,OPTIONS",
		"Content-Type":                 "application/json",
	}

	// Handle CORS preflight
	if request.HTTPMethod == "OPTIONS" {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	var req ArchiveTriggerRequest
	if request.Body != "" {
		if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
			return errorResponse(headers, http.StatusBadRequest, "Invalid request body: "+err.Error())
		}
	}

	limit := req.Limit
	if limit <= 0 {
		limit = exportLimit
	}

	records, err := h.history.List(ctx, limit)
	if err != nil {
		logger.Error("Failed to list decision history", utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to read decision history")
	}

	var buf bytes.Buffer
	if err := utils.WriteHistoryCSV(&buf, records); err != nil {
		logger.Error("Failed to build history archive", utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to build archive")
	}

	key := "exports/" + exportFilename(time.Now().UTC())
	if err := h.archiver.UploadArchive(ctx, key, buf.Bytes(), "text/csv"); err != nil {
		return errorResponse(headers, http.StatusInternalServerError, "Failed to upload archive")
	}

	download, err := h.archiver.GeneratePresignedDownloadURL(ctx, key, req.ExpiryMinutes)
	if err != nil {
		logger.Error("Failed to presign archive download", utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to generate download link")
	}

	if h.webhookURL != "" {
		if err := h.announceArchive(ctx, key, len(records), download); err != nil {
			logger.Warn("Failed to announce archive",
				utils.String("key", key),
				utils.Error(err))
		}
	}

	response := ArchiveTriggerResponse{
		Message:  fmt.Sprintf("Archived %d decision records", len(records)),
		Records:  len(records),
		Download: download,
	}

	body, _ := json.Marshal(response)

	logger.Info("Decision history archived",
		utils.String("key", key),
		utils.Int("records", len(records)))

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// announceArchive posts the archive location to the configured webhook.
func (h *ArchiveTriggerHandler) announceArchive(ctx context.Context, key string, records int, download *s3service.PresignedURLResult) error {
	payload := map[string]interface{}{
		"archive_key":  key,
		"records":      records,
		"download_url": download.URL,
		"expires_at":   download.ExpiresAt.Format(time.RFC3339),
		"trigger_type": "history_archive",
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
