package types

import "time"

// Origin identifies where a candidate reel was discovered.
type Origin string

const (
	OriginDirect Origin = "direct"
	OriginFile   Origin = "file"
	OriginSearch Origin = "search"
)

// ReelCandidate is a discovered but not-yet-processed reel reference.
// Identity is ReelID: two candidates with the same ID are the same reel
// regardless of where they came from. Immutable after creation.
type ReelCandidate struct {
	RawURL string
	ReelID string
	Origin Origin
}

// TimeRange restricts search results to a recency window.
type TimeRange string

const (
	TimeRangeNone  TimeRange = ""
	TimeRangeHour  TimeRange = "h"
	TimeRangeDay   TimeRange = "d"
	TimeRangeWeek  TimeRange = "w"
	TimeRangeMonth TimeRange = "m"
	TimeRangeYear  TimeRange = "y"
)

// SafeSearch controls the provider's content filtering level.
type SafeSearch string

const (
	SafeSearchOff      SafeSearch = "off"
	SafeSearchModerate SafeSearch = "moderate"
	SafeSearchStrict   SafeSearch = "strict"
)

// SearchFilterSpec holds structured search parameters for search-seeded runs.
// Built once from CLI input and never mutated.
type SearchFilterSpec struct {
	Keywords         string
	TimeRange        TimeRange
	MinLengthMinutes int
	ExactMatch       bool
	ExcludedTerms    []string
	SafeSearch       SafeSearch
}

// ExtractionRecord is the per-reel output of the extraction pipeline.
// Exactly one record exists per accepted candidate. Timestamp is set when the
// pipeline starts, not when it finishes. If Error is non-empty, Transcription
// is always empty.
type ExtractionRecord struct {
	ReelID        string `json:"reel_id"`
	OriginalURL   string `json:"original_url"`
	FinalURL      string `json:"final_url"`
	Timestamp     string `json:"timestamp"`
	Transcription string `json:"transcription"`
	Caption       string `json:"caption"`
	Error         string `json:"error,omitempty"`
}

// NewExtractionRecord creates a record at pipeline entry with the timestamp
// already fixed.
func NewExtractionRecord(reelID, originalURL, finalURL string) ExtractionRecord {
	return ExtractionRecord{
		ReelID:      reelID,
		OriginalURL: originalURL,
		FinalURL:    finalURL,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

// RunSummary is what a run reports when it terminates.
type RunSummary struct {
	Accepted     int
	FailedItems  int
	SkippedSeeds int
}
