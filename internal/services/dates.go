package services

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"seongsu-popup-collector/internal/models"
)

// Date pattern kinds. They are finer-grained than the reported pattern type
// because the two "month" shapes parse differently.
const (
	dateKindExplicitKorean = iota
	dateKindExplicitSlash
	dateKindMonthLong
	dateKindMonthUntil
	dateKindSingleYearKorean
	dateKindSingleYearISO
	dateKindSingleKorean
	dateKindSingleSlash
)

type datePattern struct {
	re   *regexp.Regexp
	kind int
}

// Patterns in priority order: explicit ranges beat month ranges beat dated
// single mentions beat bare single mentions. The first pattern with a
// parseable match anywhere in the text wins.
var datePatterns = []datePattern{
	{regexp.MustCompile(`(\d{1,2})월\s*(\d{1,2})일부터\s*(\d{1,2})월\s*(\d{1,2})일까지`), dateKindExplicitKorean},
	{regexp.MustCompile(`(\d{1,2})[./](\d{1,2})\s*[~\-]\s*(\d{1,2})[./](\d{1,2})`), dateKindExplicitSlash},
	{regexp.MustCompile(`(\d{1,2})월\s*한달간`), dateKindMonthLong},
	{regexp.MustCompile(`~\s*(\d{1,2})[/월]\s*(\d{1,2})일?`), dateKindMonthUntil},
	{regexp.MustCompile(`(\d{4})년\s*(\d{1,2})월\s*(\d{1,2})일`), dateKindSingleYearKorean},
	{regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})`), dateKindSingleYearISO},
	{regexp.MustCompile(`(\d{1,2})월\s*(\d{1,2})일`), dateKindSingleKorean},
	{regexp.MustCompile(`(\d{1,2})[./](\d{1,2})`), dateKindSingleSlash},
}

// DateExtractor parses event periods out of free text
type DateExtractor struct {
	now    func() time.Time
	logger zerolog.Logger
}

// NewDateExtractor creates a date extractor using the wall clock
func NewDateExtractor(logger zerolog.Logger) *DateExtractor {
	return &DateExtractor{now: time.Now, logger: logger}
}

// ExtractDates returns the best-guess date range found in the text, or nil
// when no supported date phrasing appears. A match that fails to parse
// (such as an invalid day-of-month) is skipped, never fatal.
func (d *DateExtractor) ExtractDates(text string) *models.DateRange {
	for _, pattern := range datePatterns {
		for _, groups := range pattern.re.FindAllStringSubmatch(text, -1) {
			result, err := d.parseMatch(pattern.kind, groups)
			if err != nil {
				d.logger.Debug().Err(err).Str("match", groups[0]).Msg("skipping unparseable date match")
				continue
			}
			return result
		}
	}
	return nil
}

func (d *DateExtractor) parseMatch(kind int, groups []string) (*models.DateRange, error) {
	switch kind {
	case dateKindExplicitKorean, dateKindExplicitSlash:
		return d.parseExplicitRange(groups)
	case dateKindMonthLong:
		return d.parseMonthLong(groups)
	case dateKindMonthUntil:
		return d.parseMonthUntil(groups)
	case dateKindSingleYearKorean, dateKindSingleYearISO:
		return d.parseSingleWithYear(groups)
	default:
		return d.parseSingle(groups)
	}
}

// parseExplicitRange handles "N월 N일부터 N월 N일까지" and "N/N~N/N"
func (d *DateExtractor) parseExplicitRange(groups []string) (*models.DateRange, error) {
	m1, d1 := atoi(groups[1]), atoi(groups[2])
	m2, d2 := atoi(groups[3]), atoi(groups[4])
	year := d.now().Year()

	start, err := makeDate(year, m1, d1)
	if err != nil {
		return nil, err
	}
	end, err := makeDate(year, m2, d2)
	if err != nil {
		return nil, err
	}

	// A second month numerically below the first means the range crosses
	// into the next calendar year.
	if end.Before(start) && m1 > m2 {
		end, err = makeDate(year+1, m2, d2)
		if err != nil {
			return nil, err
		}
	}

	return &models.DateRange{
		StartDate:   start,
		EndDate:     &end,
		PatternType: models.PatternExplicit,
		Confidence:  0.9,
	}, nil
}

// parseMonthLong handles "N월 한달간": the full calendar month
func (d *DateExtractor) parseMonthLong(groups []string) (*models.DateRange, error) {
	month := atoi(groups[1])
	year := d.now().Year()

	start, err := makeDate(year, month, 1)
	if err != nil {
		return nil, err
	}
	end, err := makeDate(year, month, lastDayOfMonth(year, month))
	if err != nil {
		return nil, err
	}

	return &models.DateRange{
		StartDate:   start,
		EndDate:     &end,
		PatternType: models.PatternMonth,
		Confidence:  0.7,
	}, nil
}

// parseMonthUntil handles the dangling "~N/N" shape: the event is already
// running, so the start date is today.
func (d *DateExtractor) parseMonthUntil(groups []string) (*models.DateRange, error) {
	month, day := atoi(groups[1]), atoi(groups[2])
	now := d.now()

	end, err := makeDate(now.Year(), month, day)
	if err != nil {
		return nil, err
	}
	start := dateOnly(now)

	// An end date already behind us points at next year.
	if end.Before(start) {
		end, err = makeDate(now.Year()+1, month, day)
		if err != nil {
			return nil, err
		}
	}

	return &models.DateRange{
		StartDate:   start,
		EndDate:     &end,
		PatternType: models.PatternMonth,
		Confidence:  0.7,
	}, nil
}

// parseSingleWithYear handles "YYYY년 MM월 DD일" and "YYYY-MM-DD" and
// synthesizes a 7-day event.
func (d *DateExtractor) parseSingleWithYear(groups []string) (*models.DateRange, error) {
	year, month, day := atoi(groups[1]), atoi(groups[2]), atoi(groups[3])

	start, err := makeDate(year, month, day)
	if err != nil {
		return nil, err
	}
	end := start.AddDate(0, 0, 7)

	return &models.DateRange{
		StartDate:   start,
		EndDate:     &end,
		PatternType: models.PatternSingleWithYear,
		Confidence:  0.8,
	}, nil
}

// parseSingle handles bare "N월 N일" and "N/N" mentions. The current year is
// assumed; a date more than three days in the past rolls forward to next
// year. A 7-day event is synthesized either way.
func (d *DateExtractor) parseSingle(groups []string) (*models.DateRange, error) {
	month, day := atoi(groups[1]), atoi(groups[2])
	now := d.now()

	start, err := makeDate(now.Year(), month, day)
	if err != nil {
		return nil, err
	}

	if start.Before(now.Add(-72 * time.Hour)) {
		start, err = makeDate(now.Year()+1, month, day)
		if err != nil {
			return nil, err
		}
	}
	end := start.AddDate(0, 0, 7)

	return &models.DateRange{
		StartDate:   start,
		EndDate:     &end,
		PatternType: models.PatternSingle,
		Confidence:  0.6,
	}, nil
}

// makeDate builds a calendar date, rejecting components that time.Date
// would silently normalize (e.g. February 30th).
func makeDate(year, month, day int) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid calendar date %d-%d-%d", year, month, day)
	}
	return t, nil
}

func lastDayOfMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	}
	return 28
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
