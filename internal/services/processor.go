package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"seongsu-popup-collector/internal/models"
)

// Keywords that mark a record as popup-store related. The relevance filter
// runs before any extraction work.
var popupKeywords = []string{
	"팝업", "팝업스토어", "pop-up", "popup", "pop up",
	"프리오픈", "오픈", "open", "opening", "런칭", "시즌", "한정", "limited",
}

// EventProcessor assembles one event candidate per raw record: relevance
// filter, regex extraction, AI enrichment, then a final validity check.
type EventProcessor struct {
	dates     *DateExtractor
	locations *LocationExtractor
	analyzer  EventAnalyzer
	logger    zerolog.Logger
}

// NewEventProcessor creates a processor using the given enrichment backend
func NewEventProcessor(analyzer EventAnalyzer, logger zerolog.Logger) *EventProcessor {
	return &EventProcessor{
		dates:     NewDateExtractor(logger),
		locations: NewLocationExtractor(logger),
		analyzer:  analyzer,
		logger:    logger,
	}
}

// ProcessRecord turns a raw search record into an event candidate, or nil
// when the record is not popup-store related or the candidate ends up
// missing required fields.
func (p *EventProcessor) ProcessRecord(ctx context.Context, raw models.RawRecord) *models.Event {
	if !p.isLikelyPopupStore(raw.Title, raw.Description) {
		p.logger.Debug().Str("title", raw.Title).Msg("skipping non-popup record")
		return nil
	}

	// Regex extraction works the description first and falls back to the
	// title when nothing is found.
	dateInfo := p.dates.ExtractDates(raw.Description)
	if dateInfo == nil {
		dateInfo = p.dates.ExtractDates(raw.Title)
	}
	locationInfo := p.locations.ExtractLocation(raw.Description)
	if locationInfo == nil {
		locationInfo = p.locations.ExtractLocation(raw.Title)
	}

	event := p.buildPreliminaryEvent(raw, dateInfo, locationInfo)

	p.enrichWithAI(ctx, event, raw.Title, raw.Description)

	if !event.IsValid() {
		p.logger.Warn().Str("title", event.Title).Msg("event failed validation, dropping")
		return nil
	}

	p.logger.Info().Str("title", event.Title).Msg("event processed")
	return event
}

// buildPreliminaryEvent assembles a candidate from whatever the extractors
// found, with undetermined defaults for the rest.
func (p *EventProcessor) buildPreliminaryEvent(raw models.RawRecord, dateInfo *models.DateRange, locationInfo *models.LocationGuess) *models.Event {
	event := &models.Event{
		Title:       raw.Title,
		Location:    models.NewEventLocation(),
		CollectedAt: time.Now(),
	}

	if dateInfo != nil {
		start := dateInfo.StartDate
		event.Period = &models.EventPeriod{StartDate: &start, EndDate: dateInfo.EndDate}
	}

	if locationInfo != nil {
		event.Location = models.EventLocation{
			Place:       locationInfo.Place,
			Address:     locationInfo.Address,
			Coordinates: locationInfo.Coordinates,
			Transit:     locationInfo.Transit,
		}
	}

	if raw.Description != "" {
		event.Details.Introduction = []string{raw.Description}
	}
	if raw.Link != "" {
		event.SourceURLs = []string{raw.Link}
	}

	return event
}

// enrichWithAI consults the enrichment backend and folds its answer into the
// candidate. The model's brand replaces ours unconditionally; every other
// field is only overwritten when the model actually supplied a value, so an
// empty answer never erases a regex-derived one. Model-supplied dates are
// calendar-validated before acceptance.
func (p *EventProcessor) enrichWithAI(ctx context.Context, event *models.Event, title, description string) {
	record := event.ToRecord()
	analysis := p.analyzer.AnalyzeEvent(ctx, title, description, &record)
	if analysis == nil {
		return
	}

	event.Brand = analysis.Brand

	if start := parseAnalysisDate(analysis.StartDate); start != nil {
		if event.Period == nil {
			event.Period = &models.EventPeriod{}
		}
		event.Period.StartDate = start
	}
	if end := parseAnalysisDate(analysis.EndDate); end != nil {
		if event.Period == nil {
			event.Period = &models.EventPeriod{}
		}
		event.Period.EndDate = end
	}

	if analysis.Place != "" {
		event.Location.Place = analysis.Place
	}
	if analysis.Address != "" {
		event.Location.Address = analysis.Address
	}
	if analysis.Confidence != nil {
		event.Confidence = *analysis.Confidence
	}
	event.Reasoning = analysis.Reasoning
}

func (p *EventProcessor) isLikelyPopupStore(title, description string) bool {
	combined := strings.ToLower(title + " " + description)
	for _, keyword := range popupKeywords {
		if strings.Contains(combined, keyword) {
			return true
		}
	}
	return false
}

func parseAnalysisDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}
