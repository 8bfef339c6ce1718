package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	appConfig "credit-decision-engine/internal/config"
	s3service "credit-decision-engine/internal/services/s3"
	"credit-decision-engine/internal/utils"
)

// UploadURLHandler hands out presigned PUT URLs so the intake side can drop
// batch CSV files straight into the bucket. Uploads land under incoming/,
// where the batch Lambda picks them up.
type UploadURLHandler struct {
	archiver *s3service.Service
}

// NewUploadURLHandler builds the handler from environment configuration.
func NewUploadURLHandler(ctx context.Context) (*UploadURLHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	archiver, err := s3service.NewService(ctx, cfg.S3Bucket)
	if err != nil {
		return nil, err
	}

	return &UploadURLHandler{archiver: archiver}, nil
}

// UploadURLResponse carries the presigned upload details.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"`
}

// Handle processes the API Gateway request for a presigned upload URL.
func (h *UploadURLHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger := utils.GetLogger()

	// CORS headers
	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "GET,POST,OPTIONS",
		"Content-Type":                 "application/json",
	}

	// Handle CORS preflight
	if request.HTTPMethod == "OPTIONS" {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	filename := request.QueryStringParameters["filename"]
	if filename == "" {
		filename = fmt.Sprintf("batch_%s.csv", uuid.New().String()[:8])
	}

	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return errorResponse(headers, http.StatusBadRequest, "Only CSV files are allowed")
	}

	key := fmt.Sprintf("incoming/%s/%s_%s",
		time.Now().UTC().Format("2006/01/02"),
		uuid.New().String(),
		sanitizeFilename(filename),
	)

	result, err := h.archiver.GeneratePresignedUploadURL(ctx, key, "text/csv", time.Hour)
	if err != nil {
		logger.Error("Failed to generate upload URL",
			utils.String("key", key),
			utils.Error(err))
		return errorResponse(headers, http.StatusInternalServerError, "Failed to generate upload URL")
	}

	response := UploadURLResponse{
		UploadURL: result.URL,
		Key:       result.Key,
		ExpiresIn: int(time.Hour.Seconds()),
	}

	body, _ := json.Marshal(response)

	logger.Info("Generated batch upload URL", utils.String("key", key))

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// sanitizeFilename keeps only safe characters in a filename.
func sanitizeFilename(filename string) string {
	var sb strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '.', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}

	name := sb.String()
	if len(name) > 100 {
		name = name[len(name)-100:]
	}

	return name
}
