package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rs/zerolog"

	"seongsu-popup-collector/internal/config"
	"seongsu-popup-collector/internal/models"
	"seongsu-popup-collector/internal/services"
)

func main() {
	publish := flag.Bool("publish", false, "publish merged events to WordPress")
	file := flag.String("file", "", "reprocess events from a saved snapshot instead of collecting")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02 15:04:05"}).
		With().Timestamp().Logger()

	cfg := config.Load()
	ctx := context.Background()

	if err := run(ctx, cfg, logger, *publish, *file); err != nil {
		logger.Fatal().Err(err).Msg("collection run failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger, publish bool, file string) error {
	analyzer := services.NewOpenAIClientWithConfig(cfg.OpenAIAPIKey, cfg.OpenAIModel, 0.1, 1000, logger)
	collector := services.NewNaverClient(services.NaverConfig{
		ClientID:     cfg.NaverClientID,
		ClientSecret: cfg.NaverClientSecret,
	}, logger)
	processor := services.NewEventProcessor(analyzer, logger)
	integrator := services.NewDataIntegrator(logger)
	pipeline := services.NewPipeline(collector, processor, integrator, cfg.MaxConcurrency, logger)

	var events []*models.Event
	if file != "" {
		logger.Info().Str("file", file).Msg("reprocessing events from snapshot")
		loaded, err := loadSnapshot(file)
		if err != nil {
			return err
		}
		events = integrator.IntegrateEvents(loaded)
	} else {
		records := pipeline.Collect(ctx, cfg.Keywords, cfg.MaxResultsPerKeyword, cfg.SearchSort)
		events = pipeline.Run(ctx, records)
	}

	logger.Info().Int("events", len(events)).Msg("pipeline finished")

	path, err := saveSnapshot(cfg.OutputDir, events)
	if err != nil {
		return err
	}
	logger.Info().Str("path", path).Msg("snapshot saved")

	if cfg.S3Bucket != "" {
		s3Client, err := services.NewS3Client(ctx, cfg.S3Bucket)
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if _, err := s3Client.UploadEventsWithTimestamp(ctx, events); err != nil {
			logger.Error().Err(err).Msg("failed to upload timestamped snapshot")
		}
		if result, err := s3Client.UploadLatestEvents(ctx, events); err != nil {
			logger.Error().Err(err).Msg("failed to upload latest snapshot")
		} else {
			logger.Info().Str("url", result.PublicURL).Msg("snapshot uploaded")
		}
	}

	if publish {
		wp := services.NewWordPressClient(services.WordPressConfig{
			BaseURL:    cfg.WordPressURL,
			Username:   cfg.WordPressUsername,
			Password:   cfg.WordPressPassword,
			CategoryID: cfg.WordPressCategoryID,
		}, logger)

		registry, err := newRegistry(ctx, cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("event registry unavailable, publishing without it")
		}

		result := pipeline.Publish(ctx, wp, registry, events)
		logger.Info().
			Int("success", result.Success).
			Int("skipped", result.Skipped).
			Int("errors", result.Errors).
			Msg("publishing results")
	}

	return nil
}

// loadSnapshot reads a saved snapshot back into events via the external
// record shape.
func loadSnapshot(path string) ([]*models.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var output models.EventsOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	events := make([]*models.Event, 0, len(output.Events))
	for _, record := range output.Events {
		events = append(events, models.EventFromRecord(record))
	}
	return events, nil
}

// saveSnapshot writes the merged events as a monthly-partitioned JSON file
func saveSnapshot(outputDir string, events []*models.Event) (string, error) {
	now := time.Now()
	dir := filepath.Join(outputDir, now.Format("200601"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	output := models.NewEventsOutput(events, now)
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal events: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("popup_events_%s.json", output.Timestamp))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}

func newRegistry(ctx context.Context, cfg *config.Config) (*services.EventRegistry, error) {
	if cfg.EventsTable == "" {
		return nil, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return services.NewEventRegistry(dynamodb.NewFromConfig(awsCfg), cfg.EventsTable), nil
}
