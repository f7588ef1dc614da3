package models

import (
	"strings"
	"time"
)

// Kind is the media kind of a destination search result.
//
// Its string value doubles as the search filter sent to the destination.
type Kind string

const (
	KindSong  Kind = "songs"
	KindVideo Kind = "videos"
)

// MatchMethod names the cascade stage that produced a match.
type MatchMethod string

const (
	MethodStrict  MatchMethod = "strict"
	MethodRelaxed MatchMethod = "relaxed"
	MethodVideo   MatchMethod = "video"
	MethodNone    MatchMethod = "none"
)

// SourceTrack is a track read from the playlist being migrated away from.
type SourceTrack struct {
	Title           string   `json:"title"`
	Artists         []string `json:"artists"` // main artist first
	Album           string   `json:"album"`
	DurationSeconds int      `json:"duration_seconds"`
}

// MainArtist returns the first listed artist, or an empty string.
func (t SourceTrack) MainArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// JoinedArtists returns every artist joined by a single space.
func (t SourceTrack) JoinedArtists() string {
	return strings.Join(t.Artists, " ")
}

// String renders the track as "Title - Artist, Artist".
func (t SourceTrack) String() string {
	if len(t.Artists) == 0 {
		return t.Title
	}
	return t.Title + " - " + strings.Join(t.Artists, ", ")
}

// CandidateResult is a single destination search hit.
type CandidateResult struct {
	Title           string   `json:"title"`
	Artists         []string `json:"artists"`
	DurationSeconds int      `json:"duration_seconds"` // 0 when the destination omitted it
	ExternalID      string   `json:"external_id"`
	Kind            Kind     `json:"kind"`
}

// MainArtist returns the first listed artist, or an empty string.
func (c CandidateResult) MainArtist() string {
	if len(c.Artists) == 0 {
		return ""
	}
	return c.Artists[0]
}

// JoinedArtists returns every artist joined by a single space.
func (c CandidateResult) JoinedArtists() string {
	return strings.Join(c.Artists, " ")
}

// MatchOutcome is the result of running the match cascade for one source track.
//
// Outcomes with [MethodNone] carry no ExternalID, Score or Candidate.
type MatchOutcome struct {
	Track      SourceTrack      `json:"track"`
	Position   int              `json:"position"` // index of Track in the source playlist
	ExternalID string           `json:"external_id,omitempty"`
	Method     MatchMethod      `json:"method"`
	Score      *float64         `json:"score,omitempty"`
	Candidate  *CandidateResult `json:"candidate,omitempty"`
}

// Unmatched builds the outcome recorded when every stage failed.
func Unmatched(track SourceTrack) MatchOutcome {
	return MatchOutcome{Track: track, Method: MethodNone}
}

// Accepted reports whether a stage accepted a candidate.
func (o MatchOutcome) Accepted() bool {
	return o.Method != MethodNone && o.ExternalID != ""
}

// MigrationReport aggregates the results of one migration run.
type MigrationReport struct {
	RunID            string         `json:"run_id"`
	SourceRef        string         `json:"source_ref"`
	PlaylistID       string         `json:"playlist_id"`
	PlaylistName     string         `json:"playlist_name"`
	ApplyMode        string         `json:"apply_mode"`
	Outcomes         []MatchOutcome `json:"outcomes"`  // one per source track, in source order
	Added            int            `json:"added"`     // identifiers accepted by the destination
	Failed           []MatchOutcome `json:"failed"`    // matched but rejected by the destination
	Unmatched        []SourceTrack  `json:"unmatched"` // every stage failed
	Flagged          []MatchOutcome `json:"flagged"`   // video fallbacks needing review
	DestinationCount int            `json:"destination_count"`
	CountVerified    bool           `json:"count_verified"`
	StartedAt        time.Time      `json:"started_at"`
	CompletedAt      time.Time      `json:"completed_at"`
}

// Total returns the number of source tracks processed.
func (r *MigrationReport) Total() int {
	return len(r.Outcomes)
}

// MatchedCount returns the number of outcomes with an accepted candidate.
func (r *MigrationReport) MatchedCount() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Accepted() {
			n++
		}
	}
	return n
}

// FailedCount returns the number of matched tracks the destination rejected.
func (r *MigrationReport) FailedCount() int {
	return len(r.Failed)
}

// UnmatchedCount returns the number of tracks no stage could match.
func (r *MigrationReport) UnmatchedCount() int {
	return len(r.Unmatched)
}

// MethodCounts tallies outcomes per match method.
func (r *MigrationReport) MethodCounts() map[MatchMethod]int {
	counts := map[MatchMethod]int{
		MethodStrict:  0,
		MethodRelaxed: 0,
		MethodVideo:   0,
		MethodNone:    0,
	}
	for _, o := range r.Outcomes {
		counts[o.Method]++
	}
	return counts
}

// MatchPercentage returns the share of source tracks added to the destination.
func (r *MigrationReport) MatchPercentage() float64 {
	if r.Total() == 0 {
		return 0
	}
	return float64(r.Added) / float64(r.Total()) * 100
}

// FailedPositions returns the source positions of the outcomes listed in Failed.
func (r *MigrationReport) FailedPositions() map[int]bool {
	positions := make(map[int]bool, len(r.Failed))
	for _, f := range r.Failed {
		positions[f.Position] = true
	}
	return positions
}

// Status is the final state of one source track after a run.
type Status string

const (
	StatusAdded     Status = "added"
	StatusFailed    Status = "failed"
	StatusUnmatched Status = "unmatched"
)

// Statuses returns the final state of every outcome, in source order.
func (r *MigrationReport) Statuses() []Status {
	failed := r.FailedPositions()
	statuses := make([]Status, len(r.Outcomes))
	for i, o := range r.Outcomes {
		switch {
		case !o.Accepted():
			statuses[i] = StatusUnmatched
		case failed[o.Position]:
			statuses[i] = StatusFailed
		default:
			statuses[i] = StatusAdded
		}
	}
	return statuses
}

// RunSummary is a persisted migration run without its outcomes.
type RunSummary struct {
	ID               string
	SourceRef        string
	PlaylistID       string
	PlaylistName     string
	ApplyMode        string
	Total            int
	Added            int
	Failed           int
	Unmatched        int
	DestinationCount *int
	StartedAt        time.Time
	CompletedAt      time.Time
}
