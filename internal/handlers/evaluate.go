package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"

	appConfig "credit-decision-engine/internal/config"
	"credit-decision-engine/internal/decision"
	"credit-decision-engine/internal/models"
	"credit-decision-engine/internal/utils"
)

// EvaluateHandler handles one-shot evaluation requests: the complete
// profile arrives in a single payload and the decision comes back
// immediately, without an application session.
type EvaluateHandler struct {
	engine *decision.Engine
}

// NewEvaluateHandler builds the handler from environment configuration.
func NewEvaluateHandler() (*EvaluateHandler, error) {
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

	return &EvaluateHandler{
		engine: decision.NewEngine(policy, mode, cfg.CreditStartDelayDays),
	}, nil
}

// EvaluateResponse is the decision for a one-shot evaluation.
type EvaluateResponse struct {
	Outcome   models.Outcome `json:"outcome"`
	Label     string         `json:"label"`
	Reasons   []string       `json:"reasons"`
	Alerts    []models.Alert `json:"alerts"`
	Policy    string         `json:"policy"`
	DecidedAt string         `json:"decided_at"`
}

// Handle processes the API Gateway evaluation request.
func (h *EvaluateHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
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

	var req StepRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(headers, http.StatusBadRequest, "Invalid request body: "+err.Error())
	}

	profile, err := req.ToProfile()
	if err != nil {
		return errorResponse(headers, http.StatusBadRequest, err.Error())
	}

	alerts := h.engine.EvaluateAll(profile, time.Now().UTC())
	d := h.engine.Decide(alerts)

	response := EvaluateResponse{
		Outcome:   d.Outcome,
		Label:     d.Outcome.Label(),
		Reasons:   d.Reasons,
		Alerts:    alerts.Items,
		Policy:    h.engine.PolicyName(),
		DecidedAt: d.DecidedAt.Format(time.RFC3339),
	}
	if response.Reasons == nil {
		response.Reasons = []string{}
	}
	if response.Alerts == nil {
		response.Alerts = []models.Alert{}
	}

	body, _ := json.Marshal(response)

	logger.Info("One-shot evaluation completed",
		utils.String("outcome", string(d.Outcome)),
		utils.Int("alerts", alerts.Len()))

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// errorResponse creates an error response.
func errorResponse(headers map[string]string, statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(map[string]string{
		"error":   http.StatusText(statusCode),
		"message": message,
	})

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}
