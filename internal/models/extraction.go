package models

import "time"

// Pattern type tags for extracted date ranges. They record how explicit
// the source phrasing was and drive the extraction confidence.
const (
	PatternExplicit       = "explicit"
	PatternMonth          = "month"
	PatternSingleWithYear = "single_with_year"
	PatternSingle         = "single"
)

// DateRange is a best-guess event period extracted from free text
type DateRange struct {
	StartDate   time.Time
	EndDate     *time.Time
	PatternType string
	Confidence  float64
}

// LocationGuess is a best-guess event location extracted from free text
type LocationGuess struct {
	Place       string
	Address     string
	Coordinates Coordinates
	Transit     string
	Confidence  float64
}

// NewLocationGuess returns a guess with undetermined place and address
func NewLocationGuess() LocationGuess {
	return LocationGuess{
		Place:   Undetermined,
		Address: Undetermined,
	}
}
