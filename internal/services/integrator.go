package services

import (
	"regexp"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"

	"seongsu-popup-collector/internal/models"
)

// titleSimilarityThreshold is the title ratio above which two candidates
// are the same event regardless of any other field.
const titleSimilarityThreshold = 0.7

var punctuationPattern = regexp.MustCompile(`[\s\-_,\.;:'"!?]+`)

// DataIntegrator groups candidate events that denote the same real-world
// popup store and merges each group into a single record.
type DataIntegrator struct {
	logger zerolog.Logger
}

// NewDataIntegrator creates an integrator
func NewDataIntegrator(logger zerolog.Logger) *DataIntegrator {
	return &DataIntegrator{logger: logger}
}

// IntegrateEvents deduplicates the batch. Grouping is greedy single-link:
// the first unclaimed candidate becomes a group's reference and claims
// everything similar to it in one scan, so the output is deterministic for
// a fixed input order. Integration never loses input: a group that cannot
// be merged degrades to its first member.
func (di *DataIntegrator) IntegrateEvents(events []*models.Event) []*models.Event {
	if len(events) == 0 {
		return nil
	}

	groups := di.groupSimilarEvents(events)

	merged := make([]*models.Event, 0, len(groups))
	for _, group := range groups {
		if event := di.mergeEventGroup(group); event != nil {
			merged = append(merged, event)
		}
	}

	di.logger.Info().Int("input", len(events)).Int("unique", len(merged)).Msg("integrated events")
	return merged
}

func (di *DataIntegrator) groupSimilarEvents(events []*models.Event) [][]*models.Event {
	var groups [][]*models.Event
	ungrouped := make([]*models.Event, len(events))
	copy(ungrouped, events)

	for len(ungrouped) > 0 {
		reference := ungrouped[0]
		ungrouped = ungrouped[1:]
		group := []*models.Event{reference}

		remaining := ungrouped[:0]
		for _, candidate := range ungrouped {
			if di.areEventsSimilar(reference, candidate) {
				group = append(group, candidate)
			} else {
				remaining = append(remaining, candidate)
			}
		}
		ungrouped = remaining

		groups = append(groups, group)
	}

	return groups
}

// areEventsSimilar decides whether two candidates denote the same event.
// The tests run in priority order; the first one that fires decides.
func (di *DataIntegrator) areEventsSimilar(reference, candidate *models.Event) bool {
	titleSimilarity := stringSimilarity(reference.Title, candidate.Title)

	if titleSimilarity > titleSimilarityThreshold {
		return true
	}

	if titleSimilarity > 0.5 && reference.Period.HasStart() && candidate.Period.HasStart() {
		if periodsEqual(reference.Period, candidate.Period) {
			return true
		}
		if periodsOverlap(reference.Period, candidate.Period) {
			if stringSimilarity(reference.Location.Place, candidate.Location.Place) > 0.7 {
				return true
			}
		}
	}

	if reference.Brand != "" && reference.Brand == candidate.Brand {
		if reference.Period.HasStart() && candidate.Period.HasStart() {
			diff := reference.Period.StartDate.Sub(*candidate.Period.StartDate).Hours() / 24
			if diff < 0 {
				diff = -diff
			}
			if diff <= 3 {
				return true
			}
		}
	}

	return false
}

// mergeEventGroup collapses a group into one event. A single-member group
// is returned as-is. Larger groups build a new event from the
// highest-confidence member, unioning source URLs, adopting the longest
// introduction when the base has none, and preferring any determinate
// address over an undetermined one.
func (di *DataIntegrator) mergeEventGroup(group []*models.Event) *models.Event {
	if len(group) == 0 {
		return nil
	}
	if len(group) == 1 {
		return group[0]
	}

	base := group[0]
	for _, event := range group[1:] {
		if event.Confidence > base.Confidence {
			base = event
		}
	}

	var sourceURLs []string
	seen := make(map[string]struct{})
	for _, event := range group {
		for _, url := range event.SourceURLs {
			if _, ok := seen[url]; !ok {
				seen[url] = struct{}{}
				sourceURLs = append(sourceURLs, url)
			}
		}
	}

	longestIntroduction := ""
	for _, event := range group {
		if joined := strings.Join(event.Details.Introduction, " "); len(joined) > len(longestIntroduction) {
			longestIntroduction = joined
		}
	}

	details := base.Details
	if longestIntroduction != "" && len(details.Introduction) == 0 {
		details.Introduction = []string{longestIntroduction}
	}

	// Keep the base's location unless a later member supplies a concrete
	// address while the base's is still undetermined. The place is never
	// re-evaluated once set.
	location := base.Location
	for _, event := range group {
		if event.Location.Address != models.Undetermined && location.Address == models.Undetermined {
			location = event.Location
		}
	}

	confidence := base.Confidence
	for _, event := range group {
		if event.Confidence > confidence {
			confidence = event.Confidence
		}
	}

	merged := &models.Event{
		Title:          base.Title,
		Brand:          base.Brand,
		Period:         base.Period,
		Location:       location,
		OperatingHours: base.OperatingHours,
		Details:        details,
		SourceURLs:     sourceURLs,
		Confidence:     confidence,
		CollectedAt:    base.CollectedAt,
		Reasoning:      base.Reasoning,
	}

	di.logger.Info().Int("group_size", len(group)).Str("title", merged.Title).Msg("merged event group")
	return merged
}

// stringSimilarity is a normalized edit-distance ratio over lowercased,
// punctuation-stripped strings: 1.0 for identical, 0.0 for nothing in
// common or either side empty.
func stringSimilarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0.0
	}

	na := normalizeForComparison(a)
	nb := normalizeForComparison(b)
	if na == "" || nb == "" {
		return 0.0
	}
	if na == nb {
		return 1.0
	}

	distance := levenshtein.ComputeDistance(na, nb)
	longest := len([]rune(na))
	if l := len([]rune(nb)); l > longest {
		longest = l
	}

	return 1.0 - float64(distance)/float64(longest)
}

func normalizeForComparison(s string) string {
	return punctuationPattern.ReplaceAllString(strings.ToLower(s), "")
}

func periodsEqual(a, b *models.EventPeriod) bool {
	if !a.StartDate.Equal(*b.StartDate) {
		return false
	}
	if a.EndDate == nil || b.EndDate == nil {
		return a.EndDate == nil && b.EndDate == nil
	}
	return a.EndDate.Equal(*b.EndDate)
}

// periodsOverlap reports whether two periods share at least one calendar
// day. A missing end date is treated as equal to the start date; a missing
// start date on either side means no overlap.
func periodsOverlap(a, b *models.EventPeriod) bool {
	if !a.HasStart() || !b.HasStart() {
		return false
	}

	endA := a.StartDate
	if a.EndDate != nil {
		endA = a.EndDate
	}
	endB := b.StartDate
	if b.EndDate != nil {
		endB = b.EndDate
	}

	return !a.StartDate.After(*endB) && !b.StartDate.After(*endA)
}
