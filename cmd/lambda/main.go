package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog"

	"seongsu-popup-collector/internal/config"
	"seongsu-popup-collector/internal/services"
)

// LambdaEvent represents the EventBridge trigger event
type LambdaEvent struct {
	Source      string   `json:"source"`
	DetailType  string   `json:"detail-type"`
	TriggerType string   `json:"trigger-type,omitempty"` // manual, scheduled
	Keywords    []string `json:"keywords,omitempty"`     // optional keyword override
	Publish     bool     `json:"publish,omitempty"`
}

// LambdaResponse represents the function response
type LambdaResponse struct {
	Success          bool     `json:"success"`
	Message          string   `json:"message"`
	RunID            string   `json:"run_id"`
	RecordsCollected int      `json:"records_collected"`
	TotalEvents      int      `json:"total_events"`
	Published        int      `json:"published"`
	Skipped          int      `json:"skipped"`
	ProcessingTimeMS int64    `json:"processing_time_ms"`
	UploadedFiles    []string `json:"uploaded_files,omitempty"`
	Errors           []string `json:"errors,omitempty"`
}

func handler(ctx context.Context, event LambdaEvent) (LambdaResponse, error) {
	start := time.Now()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg := config.Load()

	keywords := cfg.Keywords
	if len(event.Keywords) > 0 {
		keywords = event.Keywords
	}

	logger.Info().
		Str("trigger_type", event.TriggerType).
		Strs("keywords", keywords).
		Msg("starting scheduled collection")

	analyzer := services.NewOpenAIClientWithConfig(cfg.OpenAIAPIKey, cfg.OpenAIModel, 0.1, 1000, logger)
	collector := services.NewNaverClient(services.NaverConfig{
		ClientID:     cfg.NaverClientID,
		ClientSecret: cfg.NaverClientSecret,
	}, logger)
	processor := services.NewEventProcessor(analyzer, logger)
	integrator := services.NewDataIntegrator(logger)
	pipeline := services.NewPipeline(collector, processor, integrator, cfg.MaxConcurrency, logger)

	resp := LambdaResponse{RunID: pipeline.RunID()}

	records := pipeline.Collect(ctx, keywords, cfg.MaxResultsPerKeyword, cfg.SearchSort)
	resp.RecordsCollected = len(records)

	events := pipeline.Run(ctx, records)
	resp.TotalEvents = len(events)

	if cfg.S3Bucket != "" {
		s3Client, err := services.NewS3Client(ctx, cfg.S3Bucket)
		if err != nil {
			resp.Errors = append(resp.Errors, fmt.Sprintf("s3 client: %v", err))
		} else {
			if result, err := s3Client.UploadEventsWithTimestamp(ctx, events); err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("s3 upload: %v", err))
			} else {
				resp.UploadedFiles = append(resp.UploadedFiles, result.Key)
			}
			if result, err := s3Client.UploadLatestEvents(ctx, events); err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("s3 upload: %v", err))
			} else {
				resp.UploadedFiles = append(resp.UploadedFiles, result.Key)
			}
		}
	}

	publish := event.Publish || os.Getenv("PUBLISH_EVENTS") == "true"
	if publish {
		wp := services.NewWordPressClient(services.WordPressConfig{
			BaseURL:    cfg.WordPressURL,
			Username:   cfg.WordPressUsername,
			Password:   cfg.WordPressPassword,
			CategoryID: cfg.WordPressCategoryID,
		}, logger)

		var registry *services.EventRegistry
		if cfg.EventsTable != "" {
			awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
			if err != nil {
				resp.Errors = append(resp.Errors, fmt.Sprintf("aws config: %v", err))
			} else {
				registry = services.NewEventRegistry(dynamodb.NewFromConfig(awsCfg), cfg.EventsTable)
			}
		}

		result := pipeline.Publish(ctx, wp, registry, events)
		resp.Published = result.Success
		resp.Skipped = result.Skipped
		if result.Errors > 0 {
			resp.Errors = append(resp.Errors, fmt.Sprintf("%d events failed to publish", result.Errors))
		}
	}

	resp.Success = len(resp.Errors) == 0
	resp.ProcessingTimeMS = time.Since(start).Milliseconds()
	resp.Message = fmt.Sprintf("collected %d records, merged into %d events", resp.RecordsCollected, resp.TotalEvents)

	logger.Info().
		Int("total_events", resp.TotalEvents).
		Int64("processing_time_ms", resp.ProcessingTimeMS).
		Msg("collection run complete")

	return resp, nil
}

func main() {
	lambda.Start(handler)
}
