package models

import "time"

// Undetermined is the placeholder used for unknown place and address values.
// It is the Korean word "미정" and survives into the published record as-is.
const Undetermined = "미정"

// RawRecord is a single search result as produced by the collector.
// It is read-only input to the processing pipeline.
type RawRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	BloggerName string `json:"blogger_name,omitempty"`
}

// Coordinates represents geographical coordinates
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// EventLocation holds where a popup store takes place
type EventLocation struct {
	Place       string
	Address     string
	Coordinates Coordinates
	Transit     string // e.g. "성수역 3번 출구"
}

// NewEventLocation returns a location with undetermined place and address
func NewEventLocation() EventLocation {
	return EventLocation{
		Place:   Undetermined,
		Address: Undetermined,
	}
}

// EventPeriod is the date range an event runs for. Dates are calendar days;
// time-of-day is never significant.
type EventPeriod struct {
	StartDate *time.Time
	EndDate   *time.Time
}

// HasStart reports whether the period carries a usable start date
func (p *EventPeriod) HasStart() bool {
	return p != nil && p.StartDate != nil
}

// IsActive reports whether the event is running at the given moment
func (p *EventPeriod) IsActive(now time.Time) bool {
	if !p.HasStart() {
		return false
	}
	if p.EndDate != nil {
		return !now.Before(*p.StartDate) && !now.After(p.EndDate.AddDate(0, 0, 1))
	}
	return !now.Before(*p.StartDate)
}

// OperatingHours holds daily opening and closing times as "HH:MM" strings
type OperatingHours struct {
	Start string
	End   string
}

// EventDetails carries free-form descriptive sections for an event
type EventDetails struct {
	Introduction []string
	Contents     []string
	VisitorInfo  []string
}

// Event is a candidate popup store event working its way through the
// pipeline: assembled from a RawRecord, refined by AI enrichment, then
// grouped and merged with other candidates for the same real-world event.
type Event struct {
	Title          string
	Brand          string
	Period         *EventPeriod
	Location       EventLocation
	OperatingHours OperatingHours
	Details        EventDetails
	SourceURLs     []string
	Confidence     float64
	CollectedAt    time.Time
	Reasoning      string // the model's justification, informational only
}

// IsValid reports whether the event carries the minimum information
// required for publishing: a title, a start date, and a place name.
func (e *Event) IsValid() bool {
	return e.Title != "" && e.Period.HasStart() && e.Location.Place != ""
}
