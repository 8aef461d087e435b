package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// GenerateEventID creates a deterministic ID for an event from its core
// attributes, so the same real-world event hashes to the same ID across runs.
func GenerateEventID(title, startDate, place string) string {
	normalizedTitle := strings.ToLower(strings.TrimSpace(title))
	normalizedDate := strings.TrimSpace(startDate)
	normalizedPlace := strings.ToLower(strings.TrimSpace(place))

	input := fmt.Sprintf("%s|%s|%s", normalizedTitle, normalizedDate, normalizedPlace)
	hash := sha256.Sum256([]byte(input))

	return "evt_" + hex.EncodeToString(hash[:])[:8]
}

// EventID returns the deterministic ID for this event
func (e *Event) EventID() string {
	startDate := ""
	if e.Period.HasStart() {
		startDate = e.Period.StartDate.Format(dateLayout)
	}
	return GenerateEventID(e.Title, startDate, e.Location.Place)
}

// GenerateRunID creates a unique ID for a collection run
func GenerateRunID(timestamp time.Time) string {
	input := fmt.Sprintf("run|%d", timestamp.UnixNano())
	hash := sha256.Sum256([]byte(input))
	return "run_" + hex.EncodeToString(hash[:])[:8]
}
