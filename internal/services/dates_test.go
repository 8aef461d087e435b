package services

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"seongsu-popup-collector/internal/models"
)

func newFixedDateExtractor(now time.Time) *DateExtractor {
	return &DateExtractor{
		now:    func() time.Time { return now },
		logger: zerolog.Nop(),
	}
}

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func TestExtractDates(t *testing.T) {
	// Fixed reference clock: March 1st, 2024 (a leap year).
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	extractor := newFixedDateExtractor(now)

	tests := []struct {
		name        string
		text        string
		wantStart   time.Time
		wantEnd     *time.Time
		wantPattern string
		wantConf    float64
	}{
		{
			name:        "korean explicit range",
			text:        "성수동 팝업스토어가 3월 5일부터 3월 10일까지 열립니다",
			wantStart:   date(2024, 3, 5),
			wantEnd:     timePtr(date(2024, 3, 10)),
			wantPattern: models.PatternExplicit,
			wantConf:    0.9,
		},
		{
			name:        "slash explicit range",
			text:        "기간: 3/5~3/10",
			wantStart:   date(2024, 3, 5),
			wantEnd:     timePtr(date(2024, 3, 10)),
			wantPattern: models.PatternExplicit,
			wantConf:    0.9,
		},
		{
			name:        "explicit range crossing into next year",
			text:        "12월 20일부터 1월 5일까지 운영",
			wantStart:   date(2024, 12, 20),
			wantEnd:     timePtr(date(2025, 1, 5)),
			wantPattern: models.PatternExplicit,
			wantConf:    0.9,
		},
		{
			name:        "month long in leap year",
			text:        "2월 한달간 진행되는 팝업",
			wantStart:   date(2024, 2, 1),
			wantEnd:     timePtr(date(2024, 2, 29)),
			wantPattern: models.PatternMonth,
			wantConf:    0.7,
		},
		{
			name:        "dangling end only range",
			text:        "~3/15 까지만 운영합니다",
			wantStart:   date(2024, 3, 1),
			wantEnd:     timePtr(date(2024, 3, 15)),
			wantPattern: models.PatternMonth,
			wantConf:    0.7,
		},
		{
			name:        "dangling end already past rolls to next year",
			text:        "~1/15 까지",
			wantStart:   date(2024, 3, 1),
			wantEnd:     timePtr(date(2025, 1, 15)),
			wantPattern: models.PatternMonth,
			wantConf:    0.7,
		},
		{
			name:        "single date with korean year",
			text:        "2024년 4월 1일 오픈",
			wantStart:   date(2024, 4, 1),
			wantEnd:     timePtr(date(2024, 4, 8)),
			wantPattern: models.PatternSingleWithYear,
			wantConf:    0.8,
		},
		{
			name:        "single date in iso form",
			text:        "오픈일 2024-04-01",
			wantStart:   date(2024, 4, 1),
			wantEnd:     timePtr(date(2024, 4, 8)),
			wantPattern: models.PatternSingleWithYear,
			wantConf:    0.8,
		},
		{
			name:        "bare single date this year",
			text:        "3월 5일 오픈 예정",
			wantStart:   date(2024, 3, 5),
			wantEnd:     timePtr(date(2024, 3, 12)),
			wantPattern: models.PatternSingle,
			wantConf:    0.6,
		},
		{
			name:        "bare slash date more than three days past rolls forward",
			text:        "1/20 오픈했던 그 팝업",
			wantStart:   date(2025, 1, 20),
			wantEnd:     timePtr(date(2025, 1, 27)),
			wantPattern: models.PatternSingle,
			wantConf:    0.6,
		},
		{
			name:        "bare date within three day grace stays this year",
			text:        "2월 28일 오픈",
			wantStart:   date(2024, 2, 28),
			wantEnd:     timePtr(date(2024, 3, 6)),
			wantPattern: models.PatternSingle,
			wantConf:    0.6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractor.ExtractDates(tt.text)
			if got == nil {
				t.Fatalf("ExtractDates(%q) = nil, want a range", tt.text)
			}
			if !got.StartDate.Equal(tt.wantStart) {
				t.Errorf("start = %v, want %v", got.StartDate, tt.wantStart)
			}
			if tt.wantEnd == nil {
				if got.EndDate != nil {
					t.Errorf("end = %v, want nil", *got.EndDate)
				}
			} else if got.EndDate == nil || !got.EndDate.Equal(*tt.wantEnd) {
				t.Errorf("end = %v, want %v", got.EndDate, *tt.wantEnd)
			}
			if got.PatternType != tt.wantPattern {
				t.Errorf("pattern = %q, want %q", got.PatternType, tt.wantPattern)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestExtractDatesMonthLongNonLeapYear(t *testing.T) {
	extractor := newFixedDateExtractor(time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC))

	got := extractor.ExtractDates("2월 한달간 열리는 전시")
	if got == nil {
		t.Fatal("ExtractDates returned nil")
	}
	want := date(2023, 2, 28)
	if got.EndDate == nil || !got.EndDate.Equal(want) {
		t.Errorf("end = %v, want %v", got.EndDate, want)
	}
}

func TestExtractDatesExplicitBeatsSingle(t *testing.T) {
	extractor := newFixedDateExtractor(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	// The single-date pattern would also match here; the explicit range
	// must win.
	got := extractor.ExtractDates("4월 1일 안내: 4월 5일부터 4월 20일까지")
	if got == nil {
		t.Fatal("ExtractDates returned nil")
	}
	if got.PatternType != models.PatternExplicit {
		t.Errorf("pattern = %q, want %q", got.PatternType, models.PatternExplicit)
	}
	if !got.StartDate.Equal(date(2024, 4, 5)) {
		t.Errorf("start = %v, want 2024-04-05", got.StartDate)
	}
}

func TestExtractDatesInvalidDateSkipped(t *testing.T) {
	extractor := newFixedDateExtractor(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	// February 30th does not exist; the later valid mention must be used.
	got := extractor.ExtractDates("2월 30일, 아니 3월 5일 오픈")
	if got == nil {
		t.Fatal("ExtractDates returned nil")
	}
	if !got.StartDate.Equal(date(2024, 3, 5)) {
		t.Errorf("start = %v, want 2024-03-05", got.StartDate)
	}
}

func TestExtractDatesNoMatch(t *testing.T) {
	extractor := newFixedDateExtractor(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))

	if got := extractor.ExtractDates("성수동에서 열리는 신제품 팝업스토어"); got != nil {
		t.Errorf("ExtractDates = %+v, want nil", got)
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
