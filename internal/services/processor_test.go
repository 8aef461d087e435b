package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"seongsu-popup-collector/internal/models"
)

// fakeAnalyzer is a deterministic EventAnalyzer for tests. It records the
// arguments it was called with and returns a canned analysis.
type fakeAnalyzer struct {
	analysis *EventAnalysis
	calls    int
	lastText string
}

func (f *fakeAnalyzer) AnalyzeEvent(_ context.Context, title, description string, _ *models.EventRecord) *EventAnalysis {
	f.calls++
	f.lastText = title + " " + description
	return f.analysis
}

func TestProcessRecordSkipsNonPopupRecords(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	processor := NewEventProcessor(analyzer, zerolog.Nop())

	record := models.RawRecord{
		Title:       "성수동 맛집 탐방기",
		Description: "오늘은 성수동의 유명한 카페를 다녀왔습니다",
	}

	if got := processor.ProcessRecord(context.Background(), record); got != nil {
		t.Errorf("ProcessRecord = %+v, want nil", got)
	}
	if analyzer.calls != 0 {
		t.Errorf("analyzer called %d times, want 0", analyzer.calls)
	}
}

func TestProcessRecordRegexOnly(t *testing.T) {
	// Analyzer returns nothing; the candidate must stand on regex
	// extraction alone.
	analyzer := &fakeAnalyzer{}
	processor := NewEventProcessor(analyzer, zerolog.Nop())

	record := models.RawRecord{
		Title:       "무신사 테라스 팝업스토어 오픈",
		Description: "3월 5일부터 3월 10일까지 무신사 테라스에서 진행됩니다",
		Link:        "https://blog.example.com/1",
	}

	got := processor.ProcessRecord(context.Background(), record)
	if got == nil {
		t.Fatal("ProcessRecord returned nil")
	}
	if got.Title != record.Title {
		t.Errorf("title = %q, want %q", got.Title, record.Title)
	}
	if !got.Period.HasStart() {
		t.Fatal("period has no start date")
	}
	wantStart := time.Date(time.Now().Year(), 3, 5, 0, 0, 0, 0, time.UTC)
	if !got.Period.StartDate.Equal(wantStart) {
		t.Errorf("start = %v, want %v", got.Period.StartDate, wantStart)
	}
	if got.Location.Place != "무신사 테라스" {
		t.Errorf("place = %q, want 무신사 테라스", got.Location.Place)
	}
	if len(got.SourceURLs) != 1 || got.SourceURLs[0] != record.Link {
		t.Errorf("source urls = %v", got.SourceURLs)
	}
	if len(got.Details.Introduction) != 1 || got.Details.Introduction[0] != record.Description {
		t.Errorf("introduction = %v", got.Details.Introduction)
	}
	if analyzer.calls != 1 {
		t.Errorf("analyzer called %d times, want 1", analyzer.calls)
	}
}

func TestProcessRecordAIEnrichment(t *testing.T) {
	confidence := 0.9
	analyzer := &fakeAnalyzer{
		analysis: &EventAnalysis{
			Brand:      "무신사",
			StartDate:  "2024-04-01",
			EndDate:    "2024-04-14",
			Place:      "무신사 스튜디오",
			Address:    "서울 성동구 아차산로 13",
			Confidence: &confidence,
			Reasoning:  "본문에 명시됨",
		},
	}
	processor := NewEventProcessor(analyzer, zerolog.Nop())

	record := models.RawRecord{
		Title:       "무신사 팝업 소식",
		Description: "3월 5일부터 3월 10일까지 무신사 테라스에서",
	}

	got := processor.ProcessRecord(context.Background(), record)
	if got == nil {
		t.Fatal("ProcessRecord returned nil")
	}
	if got.Brand != "무신사" {
		t.Errorf("brand = %q", got.Brand)
	}
	wantStart := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	if !got.Period.StartDate.Equal(wantStart) {
		t.Errorf("start = %v, want %v (model value wins)", got.Period.StartDate, wantStart)
	}
	if got.Location.Place != "무신사 스튜디오" {
		t.Errorf("place = %q, want 무신사 스튜디오", got.Location.Place)
	}
	if got.Location.Address != "서울 성동구 아차산로 13" {
		t.Errorf("address = %q", got.Location.Address)
	}
	if got.Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", got.Confidence)
	}
	if got.Reasoning != "본문에 명시됨" {
		t.Errorf("reasoning = %q", got.Reasoning)
	}
}

func TestProcessRecordEmptyAIAnswerKeepsRegexValues(t *testing.T) {
	// The model answered but supplied nothing usable: regex-derived period
	// and location must survive untouched.
	analyzer := &fakeAnalyzer{analysis: &EventAnalysis{Title: "무신사 팝업"}}
	processor := NewEventProcessor(analyzer, zerolog.Nop())

	record := models.RawRecord{
		Title:       "무신사 테라스 팝업스토어",
		Description: "3월 5일부터 3월 10일까지 무신사 테라스에서 열립니다",
	}

	got := processor.ProcessRecord(context.Background(), record)
	if got == nil {
		t.Fatal("ProcessRecord returned nil")
	}
	wantStart := time.Date(time.Now().Year(), 3, 5, 0, 0, 0, 0, time.UTC)
	if !got.Period.StartDate.Equal(wantStart) {
		t.Errorf("start = %v, want regex-derived %v", got.Period.StartDate, wantStart)
	}
	if got.Location.Place != "무신사 테라스" {
		t.Errorf("place = %q, want regex-derived 무신사 테라스", got.Location.Place)
	}
}

func TestProcessRecordInvalidAIDateRejected(t *testing.T) {
	analyzer := &fakeAnalyzer{
		analysis: &EventAnalysis{StartDate: "2024년 4월경", EndDate: "미정"},
	}
	processor := NewEventProcessor(analyzer, zerolog.Nop())

	record := models.RawRecord{
		Title:       "무신사 팝업스토어",
		Description: "3월 5일부터 3월 10일까지 무신사 테라스에서",
	}

	got := processor.ProcessRecord(context.Background(), record)
	if got == nil {
		t.Fatal("ProcessRecord returned nil")
	}
	wantStart := time.Date(time.Now().Year(), 3, 5, 0, 0, 0, 0, time.UTC)
	if !got.Period.StartDate.Equal(wantStart) {
		t.Errorf("start = %v, want regex-derived %v", got.Period.StartDate, wantStart)
	}
}

func TestProcessRecordTitleFallback(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	processor := NewEventProcessor(analyzer, zerolog.Nop())

	// The description carries no date or location; both extractors must
	// fall back to the title.
	record := models.RawRecord{
		Title:       "성수역 팝업 3월 5일부터 3월 10일까지",
		Description: "다녀온 후기입니다",
	}

	got := processor.ProcessRecord(context.Background(), record)
	if got == nil {
		t.Fatal("ProcessRecord returned nil")
	}
	if !got.Period.HasStart() {
		t.Fatal("period has no start date")
	}
	if got.Location.Place != "성수역" {
		t.Errorf("place = %q, want 성수역", got.Location.Place)
	}
}

func TestProcessRecordDropsInvalidCandidate(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	processor := NewEventProcessor(analyzer, zerolog.Nop())

	// Popup-related but no date anywhere: fails the validity check.
	record := models.RawRecord{
		Title:       "무신사 팝업스토어 소식",
		Description: "무신사 테라스에서 곧 열린다고 합니다",
	}

	if got := processor.ProcessRecord(context.Background(), record); got != nil {
		t.Errorf("ProcessRecord = %+v, want nil", got)
	}
}
