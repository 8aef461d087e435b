package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func datePtr(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func sampleEvent() *Event {
	return &Event{
		Title: "무신사 스탠다드 팝업스토어",
		Brand: "무신사",
		Period: &EventPeriod{
			StartDate: datePtr(2024, time.March, 5),
			EndDate:   datePtr(2024, time.March, 10),
		},
		Location: EventLocation{
			Place:       "무신사 테라스",
			Address:     "서울 성동구 연무장길 12",
			Coordinates: Coordinates{Lat: 37.544, Lng: 127.056},
			Transit:     "성수역 3번 출구",
		},
		OperatingHours: OperatingHours{Start: "11:00", End: "20:00"},
		Details: EventDetails{
			Introduction: []string{"무신사 스탠다드의 봄 시즌 팝업스토어"},
			Contents:     []string{"신제품 전시", "한정판 굿즈"},
			VisitorInfo:  []string{"예약 없이 방문 가능"},
		},
		SourceURLs:  []string{"https://blog.naver.com/example/1"},
		Confidence:  0.85,
		CollectedAt: time.Date(2024, time.February, 28, 14, 30, 0, 0, time.UTC),
		Reasoning:   "제목과 본문에 기간과 장소가 명시됨",
	}
}

func TestEventValidity(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Event)
		valid  bool
	}{
		{"fully populated", func(e *Event) {}, true},
		{"missing title", func(e *Event) { e.Title = "" }, false},
		{"missing period", func(e *Event) { e.Period = nil }, false},
		{"period without start", func(e *Event) { e.Period.StartDate = nil }, false},
		{"missing place", func(e *Event) { e.Location.Place = "" }, false},
		{"undetermined place still counts", func(e *Event) { e.Location.Place = Undetermined }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			event := sampleEvent()
			tc.mutate(event)
			if got := event.IsValid(); got != tc.valid {
				t.Errorf("IsValid() = %v, want %v", got, tc.valid)
			}
		})
	}
}

func TestPeriodIsActive(t *testing.T) {
	period := &EventPeriod{
		StartDate: datePtr(2024, time.March, 5),
		EndDate:   datePtr(2024, time.March, 10),
	}

	if !period.IsActive(time.Date(2024, time.March, 7, 12, 0, 0, 0, time.UTC)) {
		t.Error("period should be active in the middle of the range")
	}
	if !period.IsActive(time.Date(2024, time.March, 10, 18, 0, 0, 0, time.UTC)) {
		t.Error("period should be active on the last day")
	}
	if period.IsActive(time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC)) {
		t.Error("period should not be active after the end date")
	}

	var missing *EventPeriod
	if missing.IsActive(time.Now()) {
		t.Error("nil period should never be active")
	}
}

func TestEventRecordRoundTrip(t *testing.T) {
	original := sampleEvent()

	record := original.ToRecord()
	restored := EventFromRecord(record)

	if restored.Title != original.Title || restored.Brand != original.Brand {
		t.Errorf("title/brand changed in round trip: got %q/%q", restored.Title, restored.Brand)
	}
	if !restored.Period.StartDate.Equal(*original.Period.StartDate) {
		t.Errorf("start date changed: got %v, want %v", restored.Period.StartDate, original.Period.StartDate)
	}
	if !restored.Period.EndDate.Equal(*original.Period.EndDate) {
		t.Errorf("end date changed: got %v, want %v", restored.Period.EndDate, original.Period.EndDate)
	}
	if !reflect.DeepEqual(restored.Location, original.Location) {
		t.Errorf("location changed: got %+v, want %+v", restored.Location, original.Location)
	}
	if !reflect.DeepEqual(restored.Details, original.Details) {
		t.Errorf("details changed: got %+v, want %+v", restored.Details, original.Details)
	}
	if !reflect.DeepEqual(restored.SourceURLs, original.SourceURLs) {
		t.Errorf("source urls changed: got %v, want %v", restored.SourceURLs, original.SourceURLs)
	}
	if restored.Confidence != original.Confidence {
		t.Errorf("confidence changed: got %f, want %f", restored.Confidence, original.Confidence)
	}
	if !restored.CollectedAt.Equal(original.CollectedAt) {
		t.Errorf("collected_at changed: got %v, want %v", restored.CollectedAt, original.CollectedAt)
	}

	// The record shape itself must also survive a second conversion.
	if again := restored.ToRecord(); !reflect.DeepEqual(again, record) {
		t.Errorf("record not stable across conversions:\n got %+v\nwant %+v", again, record)
	}
}

func TestEventRecordDegradedDates(t *testing.T) {
	record := sampleEvent().ToRecord()
	bad := "not-a-date"
	record.Period.StartDate = &bad
	record.Period.EndDate = nil

	restored := EventFromRecord(record)
	if restored.Period.HasStart() {
		t.Error("unparseable start date should degrade to nil")
	}
}

func TestEventRecordJSONKeys(t *testing.T) {
	data, err := json.Marshal(sampleEvent().ToRecord())
	if err != nil {
		t.Fatalf("failed to marshal record: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal record: %v", err)
	}

	for _, key := range []string{"title", "brand", "period", "location", "operating_hours", "details", "source_urls", "confidence", "collected_at"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("record JSON missing key %q", key)
		}
	}

	period := decoded["period"].(map[string]interface{})
	if period["start_date"] != "2024-03-05" {
		t.Errorf("expected start_date 2024-03-05, got %v", period["start_date"])
	}
	if decoded["collected_at"] != "2024-02-28 14:30:00" {
		t.Errorf("expected collected_at in YYYY-MM-DD HH:MM:SS form, got %v", decoded["collected_at"])
	}
}

func TestEventsOutput(t *testing.T) {
	events := []*Event{sampleEvent(), sampleEvent()}
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	output := NewEventsOutput(events, now)
	if output.TotalEvents != 2 {
		t.Errorf("expected 2 total events, got %d", output.TotalEvents)
	}
	if output.Timestamp != "20240301_090000" {
		t.Errorf("unexpected timestamp: %s", output.Timestamp)
	}

	data, err := json.Marshal(output)
	if err != nil {
		t.Fatalf("failed to marshal output: %v", err)
	}

	var restored EventsOutput
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}
	if len(restored.Events) != 2 {
		t.Errorf("expected 2 events after round trip, got %d", len(restored.Events))
	}
}

func TestEventIDGeneration(t *testing.T) {
	id1 := GenerateEventID("무신사 팝업", "2024-03-05", "무신사 테라스")
	id2 := GenerateEventID("무신사 팝업", "2024-03-05", "무신사 테라스")
	id3 := GenerateEventID("나이키 팝업", "2024-03-05", "무신사 테라스")

	if id1 != id2 {
		t.Errorf("same inputs should generate same ID: %s != %s", id1, id2)
	}
	if id1 == id3 {
		t.Errorf("different inputs should generate different IDs: %s == %s", id1, id3)
	}
	if len(id1) != 12 || id1[:4] != "evt_" {
		t.Errorf("event ID should be 12 characters starting with 'evt_', got: %s", id1)
	}

	if got := sampleEvent().EventID(); got != GenerateEventID("무신사 스탠다드 팝업스토어", "2024-03-05", "무신사 테라스") {
		t.Errorf("EventID() disagrees with GenerateEventID: %s", got)
	}
}
