package models

import "time"

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

// EventRecord is the external representation of an Event: the shape written
// to snapshot files and S3, read back by the reprocessing entry point, and
// handed to the publisher. Converting an Event to a record and back must
// round-trip; dates degrade to null when unparseable.
type EventRecord struct {
	Title          string               `json:"title"`
	Brand          string               `json:"brand"`
	Period         PeriodRecord         `json:"period"`
	Location       LocationRecord       `json:"location"`
	OperatingHours OperatingHoursRecord `json:"operating_hours"`
	Details        DetailsRecord        `json:"details"`
	SourceURLs     []string             `json:"source_urls"`
	Confidence     float64              `json:"confidence"`
	CollectedAt    string               `json:"collected_at"`
}

// PeriodRecord holds period dates as "YYYY-MM-DD" strings or null
type PeriodRecord struct {
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// LocationRecord is the external location shape
type LocationRecord struct {
	Place       string      `json:"place"`
	Address     string      `json:"address"`
	Coordinates Coordinates `json:"coordinates"`
	Transit     string      `json:"transit"`
}

// OperatingHoursRecord is the external operating hours shape
type OperatingHoursRecord struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// DetailsRecord is the external details shape
type DetailsRecord struct {
	Introduction []string `json:"introduction"`
	Contents     []string `json:"contents"`
	VisitorInfo  []string `json:"visitor_info"`
}

// EventsOutput is the snapshot envelope written to disk and S3
type EventsOutput struct {
	Timestamp   string        `json:"timestamp"`
	TotalEvents int           `json:"total_events"`
	Events      []EventRecord `json:"events"`
}

// ToRecord converts the event to its external record shape
func (e *Event) ToRecord() EventRecord {
	return EventRecord{
		Title: e.Title,
		Brand: e.Brand,
		Period: PeriodRecord{
			StartDate: formatDate(periodStart(e.Period)),
			EndDate:   formatDate(periodEnd(e.Period)),
		},
		Location: LocationRecord{
			Place:       e.Location.Place,
			Address:     e.Location.Address,
			Coordinates: e.Location.Coordinates,
			Transit:     e.Location.Transit,
		},
		OperatingHours: OperatingHoursRecord{
			Start: e.OperatingHours.Start,
			End:   e.OperatingHours.End,
		},
		Details: DetailsRecord{
			Introduction: e.Details.Introduction,
			Contents:     e.Details.Contents,
			VisitorInfo:  e.Details.VisitorInfo,
		},
		SourceURLs:  e.SourceURLs,
		Confidence:  e.Confidence,
		CollectedAt: e.CollectedAt.Format(timestampLayout),
	}
}

// EventFromRecord rebuilds an Event from its external record shape.
// Malformed dates become nil rather than failing the whole record; a
// malformed collected_at falls back to the current time.
func EventFromRecord(r EventRecord) *Event {
	e := &Event{
		Title: r.Title,
		Brand: r.Brand,
		Location: EventLocation{
			Place:       r.Location.Place,
			Address:     r.Location.Address,
			Coordinates: r.Location.Coordinates,
			Transit:     r.Location.Transit,
		},
		OperatingHours: OperatingHours{
			Start: r.OperatingHours.Start,
			End:   r.OperatingHours.End,
		},
		Details: EventDetails{
			Introduction: r.Details.Introduction,
			Contents:     r.Details.Contents,
			VisitorInfo:  r.Details.VisitorInfo,
		},
		SourceURLs:  r.SourceURLs,
		Confidence:  r.Confidence,
		CollectedAt: time.Now(),
	}

	if e.Location.Place == "" {
		e.Location.Place = Undetermined
	}
	if e.Location.Address == "" {
		e.Location.Address = Undetermined
	}

	start := parseDate(r.Period.StartDate)
	end := parseDate(r.Period.EndDate)
	if start != nil || end != nil {
		e.Period = &EventPeriod{StartDate: start, EndDate: end}
	}

	if ts, err := time.Parse(timestampLayout, r.CollectedAt); err == nil {
		e.CollectedAt = ts
	}

	return e
}

// NewEventsOutput wraps the given events in a snapshot envelope
func NewEventsOutput(events []*Event, now time.Time) EventsOutput {
	records := make([]EventRecord, 0, len(events))
	for _, e := range events {
		records = append(records, e.ToRecord())
	}
	return EventsOutput{
		Timestamp:   now.Format("20060102_150405"),
		TotalEvents: len(records),
		Events:      records,
	}
}

func periodStart(p *EventPeriod) *time.Time {
	if p == nil {
		return nil
	}
	return p.StartDate
}

func periodEnd(p *EventPeriod) *time.Time {
	if p == nil {
		return nil
	}
	return p.EndDate
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}
