package services

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"seongsu-popup-collector/internal/models"
)

// Known venues and landmarks around Seongsu-dong, checked in order.
var knownVenues = []string{
	// buildings
	"언더스탠드에비뉴", "대림창고", "에스팩토리", "성수연방", "성수동 아틀리에",
	"아크앤북",
	// stations
	"성수역", "서울숲역", "뚝섬역", "건대입구역",
	// streets
	"연무장길", "성수이로", "성수일로", "서울숲2길", "서울숲4길",
	// areas
	"성수동", "서울숲", "성수", "뚝섬", "성동구",
}

type brandStores struct {
	brand  string
	stores []string
}

// Brand stores with a Seongsu presence. The first brand found in the text
// short-circuits the scan.
var knownBrands = []brandStores{
	{"무신사", []string{"무신사 테라스", "무신사 스튜디오", "무신사 스토어"}},
	{"나이키", []string{"나이키 성수", "나이키 서울"}},
	{"아디다스", []string{"아디다스 성수"}},
	{"언더아머", []string{"언더아머 성수"}},
	{"아크네", []string{"아크네 스튜디오 성수"}},
}

var addressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`서울\s*성동구\s*성수동\d가\s*\d+[가-힣\d\-]+`),
	regexp.MustCompile(`성수동\d가\s*\d+[가-힣\d\-]+`),
	regexp.MustCompile(`성동구\s*성수동\s*\d+[가-힣\d\-]+`),
	regexp.MustCompile(`서울\s*성동구\s*[가-힣\w]+로\s*\d+`),
	regexp.MustCompile(`서울시\s*성동구\s*[가-힣\w]+로\s*\d+`),
}

var transitPatterns = []*regexp.Regexp{
	regexp.MustCompile(`성수역\s*\d+번\s*출구`),
	regexp.MustCompile(`서울숲역\s*\d+번\s*출구`),
	regexp.MustCompile(`뚝섬역\s*\d+번\s*출구`),
}

// LocationExtractor finds event locations in free text by matching against
// the venue and brand gazetteers and a handful of address patterns.
type LocationExtractor struct {
	logger zerolog.Logger
}

// NewLocationExtractor creates a location extractor
func NewLocationExtractor(logger zerolog.Logger) *LocationExtractor {
	return &LocationExtractor{logger: logger}
}

// ExtractLocation returns the best-guess location found in the text, or nil
// when nothing at all was found. The three signal sources (venues, brand
// stores, addresses) each only ever raise the confidence.
func (l *LocationExtractor) ExtractLocation(text string) *models.LocationGuess {
	result := models.NewLocationGuess()

	for _, venue := range knownVenues {
		if strings.Contains(text, venue) {
			result.Place = venue
			result.Confidence = raiseConfidence(result.Confidence, 0.7)
			break
		}
	}

	for _, entry := range knownBrands {
		if !strings.Contains(text, entry.brand) {
			continue
		}
		storeFound := false
		for _, store := range entry.stores {
			if strings.Contains(text, store) {
				result.Place = store
				result.Confidence = raiseConfidence(result.Confidence, 0.8)
				storeFound = true
				break
			}
		}
		if !storeFound {
			// Brand mentioned without a specific store: assume its
			// Seongsu location.
			result.Place = entry.brand + " 성수"
			result.Confidence = raiseConfidence(result.Confidence, 0.6)
		}
		break
	}

	for _, pattern := range addressPatterns {
		if match := pattern.FindString(text); match != "" {
			result.Address = match
			result.Confidence = raiseConfidence(result.Confidence, 0.9)
			break
		}
	}

	for _, pattern := range transitPatterns {
		if match := pattern.FindString(text); match != "" {
			result.Transit = match
			break
		}
	}

	if result.Confidence < 0.1 && result.Place == models.Undetermined && result.Address == models.Undetermined {
		return nil
	}

	return &result
}

func raiseConfidence(current, signal float64) float64 {
	if signal > current {
		return signal
	}
	return current
}
