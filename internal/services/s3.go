package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"seongsu-popup-collector/internal/models"
)

// S3Client stores event snapshots so the frontend and the reprocessing
// entry point can read them back.
type S3Client struct {
	client     *s3.Client
	bucketName string
	region     string
}

// S3UploadResult describes a completed snapshot upload
type S3UploadResult struct {
	Key        string    `json:"key"`
	ETag       string    `json:"etag"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
	PublicURL  string    `json:"public_url"`
}

// NewS3Client creates a snapshot client against the given bucket
func NewS3Client(ctx context.Context, bucketName string) (*S3Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Client{
		client:     s3.NewFromConfig(cfg),
		bucketName: bucketName,
		region:     cfg.Region,
	}, nil
}

// UploadEvents uploads a snapshot of the merged events under the given key
func (s *S3Client) UploadEvents(ctx context.Context, events []*models.Event, key string) (*S3UploadResult, error) {
	output := models.NewEventsOutput(events, time.Now())

	jsonData, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal events to JSON: %w", err)
	}

	return s.uploadJSON(ctx, jsonData, key)
}

// UploadEventsWithTimestamp uploads events under a timestamp-based key
func (s *S3Client) UploadEventsWithTimestamp(ctx context.Context, events []*models.Event) (*S3UploadResult, error) {
	timestamp := time.Now().UTC().Format("2006-01-02T15-04-05Z")
	return s.UploadEvents(ctx, events, fmt.Sprintf("events/%s.json", timestamp))
}

// UploadLatestEvents uploads events as the "latest" snapshot for frontend
// consumption.
func (s *S3Client) UploadLatestEvents(ctx context.Context, events []*models.Event) (*S3UploadResult, error) {
	return s.UploadEvents(ctx, events, "events/latest.json")
}

// DownloadEvents downloads and parses an event snapshot
func (s *S3Client) DownloadEvents(ctx context.Context, key string) (*models.EventsOutput, error) {
	key = strings.TrimPrefix(key, "/")

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read S3 object body: %w", err)
	}

	var output models.EventsOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to unmarshal events JSON: %w", err)
	}

	return &output, nil
}

func (s *S3Client) uploadJSON(ctx context.Context, data []byte, key string) (*S3UploadResult, error) {
	key = strings.TrimPrefix(key, "/")

	result, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucketName),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String("application/json"),
		CacheControl: aws.String("public, max-age=300"),
		Metadata: map[string]string{
			"uploaded-by": "seongsu-popup-collector",
			"upload-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &S3UploadResult{
		Key:        key,
		ETag:       strings.Trim(aws.ToString(result.ETag), `"`),
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		PublicURL:  s.GetPublicURL(key),
	}, nil
}

// GetPublicURL generates the public URL for a snapshot key
func (s *S3Client) GetPublicURL(key string) string {
	key = strings.TrimPrefix(key, "/")
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucketName, s.region, key)
}

// GetBucketName returns the configured bucket name
func (s *S3Client) GetBucketName() string {
	return s.bucketName
}
