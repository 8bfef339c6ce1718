package handlers

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appConfig "credit-decision-engine/internal/config"
	"credit-decision-engine/internal/decision"
	"credit-decision-engine/internal/models"
	"credit-decision-engine/internal/services/database"
	"credit-decision-engine/internal/services/history"
	s3service "credit-decision-engine/internal/services/s3"
	"credit-decision-engine/internal/utils"
)

// BatchHandler evaluates whole CSV files of applications in one pass. It
// serves two entry points: the S3-triggered Lambda that picks up uploaded
// batch files, and the HTTP endpoints that take the CSV in the request
// body.
type BatchHandler struct {
	engine     *decision.Engine
	history    history.Store
	archiver   *s3service.Service
	webhookURL string
}

// NewBatchHandler builds the S3-event handler from environment
// configuration. The decision log and the bucket are required: a batch
// evaluation that cannot be recorded or acknowledged must fail loudly.
func NewBatchHandler(ctx context.Context) (*BatchHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	policy, err := decision.PolicyByName(cfg.RulePolicy)
	if err != nil {
		return nil, err
	}

	mode, err := decision.ModeByName(cfg.AggregationMode)
	if err != nil {
		return nil, err
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	archiver, err := s3service.NewService(ctx, cfg.S3Bucket)
	if err != nil {
		return nil, err
	}

	return &BatchHandler{
		engine:     decision.NewEngine(policy, mode, cfg.CreditStartDelayDays),
		history:    database.NewHistoryRepository(db),
		archiver:   archiver,
		webhookURL: cfg.DecisionWebhookURL,
	}, nil
}

// NewBatchHTTPHandler builds the handler around the server's own engine and
// decision log. The HTTP endpoints carry the CSV in the request body, so no
// bucket is involved.
func NewBatchHTTPHandler(engine *decision.Engine, store history.Store) *BatchHandler {
	return &BatchHandler{
		engine:  engine,
		history: store,
	}
}

// Register mounts the batch endpoints on the router.
func (h *BatchHandler) Register(r chi.Router) {
	r.Route("/api/batch", func(r chi.Router) {
		r.Post("/evaluate", h.EvaluateBatch)
		r.Post("/validate", h.ValidateBatch)
	})
}

// BatchResult summarizes one processed batch file.
type BatchResult struct {
	Message         string   `json:"message"`
	BatchID         string   `json:"batch_id"`
	Evaluated       int      `json:"evaluated"`
	Failed          int      `json:"failed"`
	Accepted        int      `json:"accepted"`
	ConditionalRisk int      `json:"conditional_risk"`
	Refused         int      `json:"refused"`
	Errors          []string `json:"errors,omitempty"`
}

// Handle processes an S3 event for an uploaded batch file.
func (h *BatchHandler) Handle(ctx context.Context, s3Event events.S3Event) (BatchResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return BatchResult{}, fmt.Errorf("no S3 records in event")
	}

	record := s3Event.Records[0]
	bucket := record.S3.Bucket.Name
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to unescape object key: %w", err)
	}

	logger.Info("Processing batch file",
		utils.String("bucket", bucket),
		utils.String("key", key))

	content, err := h.archiver.DownloadObject(ctx, key)
	if err != nil {
		return BatchResult{}, err
	}
	if len(content) == 0 {
		return BatchResult{}, fmt.Errorf("batch file is empty")
	}

	batchID := generateBatchID(key)
	result := h.evaluateBatch(ctx, batchID, string(content))

	if h.webhookURL != "" {
		if err := h.triggerWebhook(ctx, &result); err != nil {
			logger.Warn("Failed to trigger batch webhook",
				utils.String("batchID", batchID),
				utils.Error(err))
		}
	}

	if err := h.archiver.MoveToProcessed(ctx, key); err != nil {
		logger.Warn("Failed to archive batch file",
			utils.String("key", key),
			utils.Error(err))
	}

	logger.Info("Batch evaluation completed",
		utils.String("batchID", batchID),
		utils.Int("evaluated", result.Evaluated),
		utils.Int("failed", result.Failed))

	return result, nil
}

// EvaluateBatch handles POST /api/batch/evaluate. The request body is the
// CSV file itself.
func (h *BatchHandler) EvaluateBatch(w http.ResponseWriter, r *http.Request) {
	content, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body: "+err.Error())
		return
	}
	if len(content) == 0 {
		writeError(w, http.StatusBadRequest, "Batch file is empty")
		return
	}

	batchID := generateBatchID(uuid.New().String())
	result := h.evaluateBatch(r.Context(), batchID, string(content))

	writeJSON(w, http.StatusOK, result)
}

// ValidateBatch handles POST /api/batch/validate. It checks the CSV
// structure without evaluating anything.
func (h *BatchHandler) ValidateBatch(w http.ResponseWriter, r *http.Request) {
	content, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body: "+err.Error())
		return
	}

	result, err := utils.ValidateCSVStructure(string(content))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Validation failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// evaluateBatch parses the CSV, evaluates every row one-shot and appends
// the decisions to the history log under the shared batch id. Rows that
// fail to parse or to record are reported and skipped; the rest of the
// batch still goes through.
func (h *BatchHandler) evaluateBatch(ctx context.Context, batchID, content string) BatchResult {
	logger := utils.GetLogger()
	result := BatchResult{BatchID: batchID}

	parser := utils.NewApplicationsCSVParser()
	profiles, parseErrors := parser.ParseApplications(content)

	var errorMessages []string
	for _, parseErr := range parseErrors {
		errorMessages = append(errorMessages, parseErr.Error())
	}
	result.Failed = len(parseErrors)

	now := time.Now().UTC()
	for i := range profiles {
		profile := profiles[i]

		alerts := h.engine.EvaluateAll(&profile, now)
		d := h.engine.Decide(alerts)

		record := &models.DecisionRecord{
			ID:        uuid.New().String(),
			SessionID: batchID,
			Profile:   profile,
			Outcome:   d.Outcome,
			Reasons:   d.Reasons,
			Policy:    h.engine.PolicyName(),
			Mode:      string(h.engine.Mode()),
			CreatedAt: d.DecidedAt,
		}

		if h.history != nil {
			if err := h.history.Append(ctx, record); err != nil {
				logger.Error("Failed to record batch decision",
					utils.String("batchID", batchID),
					utils.String("clientNumber", profile.ClientNumber),
					utils.Error(err))
				errorMessages = append(errorMessages,
					fmt.Sprintf("client %s: failed to record decision: %v", profile.ClientNumber, err))
				result.Failed++
				continue
			}
		}

		switch d.Outcome {
		case models.OutcomeAccepted:
			result.Accepted++
		case models.OutcomeConditionalRisk:
			result.ConditionalRisk++
		case models.OutcomeRefused:
			result.Refused++
		}
		result.Evaluated++
	}

	// Cap errors in the response
	if len(errorMessages) > 10 {
		capped := len(errorMessages) - 10
		errorMessages = append(errorMessages[:10], fmt.Sprintf("... and %d more errors", capped))
	}
	result.Errors = errorMessages
	result.Message = fmt.Sprintf("Batch processed: %d evaluated, %d failed", result.Evaluated, result.Failed)

	return result
}

// generateBatchID creates a short unique id for a batch.
func generateBatchID(seed string) string {
	data := seed + time.Now().UTC().Format(time.RFC3339Nano)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)[:16]
}

// triggerWebhook posts the batch summary to the configured webhook.
func (h *BatchHandler) triggerWebhook(ctx context.Context, result *BatchResult) error {
	payload := map[string]interface{}{
		"batch_id":         result.BatchID,
		"evaluated":        result.Evaluated,
		"failed":           result.Failed,
		"accepted":         result.Accepted,
		"conditional_risk": result.ConditionalRisk,
		"refused":          result.Refused,
		"trigger_type":     "batch_upload",
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
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
