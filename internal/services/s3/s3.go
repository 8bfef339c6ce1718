// Package s3service archives history exports in S3 and hands out
// presigned download links for them.
package s3service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"credit-decision-engine/internal/utils"
)

// Service handles S3 operations.
type Service struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	bucketName string
}

// PresignedURLResult contains the presigned URL details.
type PresignedURLResult struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewService creates a new S3 service for the given bucket.
func NewService(ctx context.Context, bucket string) (*Service, error) {
	if bucket == "" {
		return nil, fmt.Errorf("no S3 bucket configured")
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	return &Service{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucketName: bucket,
	}, nil
}

// UploadArchive stores one history export under the given key.
func (s *Service) UploadArchive(ctx context.Context, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		utils.GetLogger().Error("Failed to upload archive to S3",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("failed to upload archive: %w", err)
	}

	utils.GetLogger().Info("Uploaded archive to S3",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return nil
}

// DownloadObject fetches the content of one object.
func (s *Service) DownloadObject(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer result.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(result.Body); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	return buf.Bytes(), nil
}

// MoveToProcessed copies a handled batch file under the processed/ prefix
// and removes the original, so re-delivered events cannot process it twice.
func (s *Service) MoveToProcessed(ctx context.Context, key string) error {
	destKey := "processed/" + key

	if _, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucketName),
		CopySource: aws.String(s.bucketName + "/" + key),
		Key:        aws.String(destKey),
	}); err != nil {
		return fmt.Errorf("failed to copy object to processed prefix: %w", err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete original object: %w", err)
	}

	utils.GetLogger().Info("Moved processed file",
		zap.String("bucket", s.bucketName),
		zap.String("from", key),
		zap.String("to", destKey),
	)

	return nil
}

// GeneratePresignedUploadURL creates a presigned PUT URL so the intake side
// can upload a batch file directly to the bucket.
func (s *Service) GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expiry time.Duration) (*PresignedURLResult, error) {
	if expiry <= 0 {
		expiry = time.Hour
	}

	presignedReq, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned upload URL: %w", err)
	}

	return &PresignedURLResult{
		URL:       presignedReq.URL,
		Key:       key,
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}

// GeneratePresignedDownloadURL creates a presigned URL for downloading an
// archived export.
func (s *Service) GeneratePresignedDownloadURL(ctx context.Context, key string, expiryMinutes int) (*PresignedURLResult, error) {
	if expiryMinutes <= 0 {
		expiryMinutes = 15 // Default 15 minutes
	}

	expiry := time.Duration(expiryMinutes) * time.Minute

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}

	presignedReq, err := s.presigner.PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}

	return &PresignedURLResult{
		URL:       presignedReq.URL,
		Key:       key,
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}
