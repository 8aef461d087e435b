package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"seongsu-popup-collector/internal/models"
)

// Pipeline runs the full collection flow: search keywords, assemble one
// candidate per record, then deduplicate the whole batch.
type Pipeline struct {
	collector      *NaverClient
	processor      *EventProcessor
	integrator     *DataIntegrator
	maxConcurrency int
	runID          string
	logger         zerolog.Logger
}

// NewPipeline wires the collection flow together. maxConcurrency bounds the
// per-record workers, which matters because each worker holds an open AI
// request.
func NewPipeline(collector *NaverClient, processor *EventProcessor, integrator *DataIntegrator, maxConcurrency int, logger zerolog.Logger) *Pipeline {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	runID := "run_" + uuid.NewString()[:8]
	return &Pipeline{
		collector:      collector,
		processor:      processor,
		integrator:     integrator,
		maxConcurrency: maxConcurrency,
		runID:          runID,
		logger:         logger.With().Str("run_id", runID).Logger(),
	}
}

// RunID identifies this pipeline instance across log lines and snapshots
func (p *Pipeline) RunID() string {
	return p.runID
}

// Collect searches every keyword and concatenates the raw results. A failed
// keyword is logged and skipped; collection never aborts the run.
func (p *Pipeline) Collect(ctx context.Context, keywords []string, maxPerKeyword int, sort string) []models.RawRecord {
	var all []models.RawRecord
	for _, keyword := range keywords {
		records, err := p.collector.Search(ctx, keyword, maxPerKeyword, sort)
		if err != nil {
			p.logger.Error().Err(err).Str("keyword", keyword).Msg("keyword search failed")
		}
		all = append(all, records...)
	}
	p.logger.Info().Int("raw_records", len(all)).Msg("collection finished")
	return all
}

// Process assembles candidates for a batch of raw records. Assembly is
// independent per record and runs in a bounded worker pool; results are
// collected in input order before the batch-level merge, because merge
// decisions compare the whole set.
func (p *Pipeline) Process(ctx context.Context, records []models.RawRecord) []*models.Event {
	results := make([]*models.Event, len(records))

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, p.maxConcurrency)

	for i, record := range records {
		wg.Add(1)
		go func(index int, raw models.RawRecord) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			results[index] = p.processor.ProcessRecord(ctx, raw)
		}(i, record)
	}
	wg.Wait()

	events := make([]*models.Event, 0, len(records))
	for _, event := range results {
		if event != nil {
			events = append(events, event)
		}
	}

	p.logger.Info().Int("processed", len(events)).Int("dropped", len(records)-len(events)).Msg("processing finished")
	return events
}

// Run processes a batch and integrates the results
func (p *Pipeline) Run(ctx context.Context, records []models.RawRecord) []*models.Event {
	return p.integrator.IntegrateEvents(p.Process(ctx, records))
}

// Publish sends events to the CMS, consulting the registry first when one
// is configured so events published by earlier runs are not re-posted.
func (p *Pipeline) Publish(ctx context.Context, wp *WordPressClient, registry *EventRegistry, events []*models.Event) PublishResult {
	var result PublishResult

	for _, event := range events {
		if registry != nil {
			published, err := registry.IsPublished(ctx, event)
			if err != nil {
				p.logger.Warn().Err(err).Str("title", event.Title).Msg("registry lookup failed")
			} else if published {
				p.logger.Info().Str("title", event.Title).Msg("event in registry, skipping")
				result.Skipped++
				continue
			}
		}

		exists, err := wp.EventExists(ctx, event)
		if err != nil {
			p.logger.Warn().Err(err).Str("title", event.Title).Msg("duplicate check failed")
		}
		if exists {
			result.Skipped++
			continue
		}

		postID, err := wp.CreatePost(ctx, event)
		if err != nil {
			p.logger.Error().Err(err).Str("title", event.Title).Msg("failed to publish event")
			result.Errors++
			continue
		}
		result.Success++

		if registry != nil {
			if err := registry.RecordPublished(ctx, event, postID); err != nil {
				p.logger.Warn().Err(err).Str("title", event.Title).Msg("failed to record publication")
			}
		}
	}

	p.logger.Info().
		Int("success", result.Success).
		Int("skipped", result.Skipped).
		Int("errors", result.Errors).
		Msg("publishing finished")
	return result
}
