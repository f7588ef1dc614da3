package matching

import (
	"math"
	"strings"

	"github.com/desertthunder/ytmigrate/internal/models"
)

const (
	// ArtistGate is the artist similarity below which a candidate without an exact main artist match is excluded.
	ArtistGate = 80.0
	// MainArtistBonus is added to the weighted score when the main artists match exactly.
	MainArtistBonus = 10.0
)

// ArtistMode selects which source artists are compared against the candidate's artists.
type ArtistMode int

const (
	ArtistsAll  ArtistMode = iota // every source artist, joined
	ArtistsMain                   // the main source artist only
)

func (m ArtistMode) String() string {
	if m == ArtistsMain {
		return "main"
	}
	return "all"
}

// Weights are the per-component multipliers of the overall score.
type Weights struct {
	Title    float64
	Artist   float64
	Duration float64
}

// Profile is a weighting profile used to score candidates.
type Profile struct {
	Weights    Weights
	ArtistMode ArtistMode
}

// Score is the breakdown of a single (source, candidate) comparison.
type Score struct {
	Title           float64
	Artist          float64
	Duration        float64
	Overall         float64 // weighted sum plus bonus
	MainArtistExact bool
}

// PassesGate reports whether the candidate may be considered at all.
func (s Score) PassesGate() bool {
	return s.Artist >= ArtistGate || s.MainArtistExact
}

// Score computes the confidence that candidate is the same recording as track.
func (p Profile) Score(track models.SourceTrack, candidate models.CandidateResult) Score {
	sourceArtists := track.JoinedArtists()
	if p.ArtistMode == ArtistsMain {
		sourceArtists = track.MainArtist()
	}

	s := Score{
		Title:           TokenSetRatio(track.Title, candidate.Title),
		Artist:          TokenSetRatio(sourceArtists, candidate.JoinedArtists()),
		Duration:        DurationScore(track.DurationSeconds, candidate.DurationSeconds),
		MainArtistExact: MainArtistExact(track, candidate),
	}

	s.Overall = p.Weights.Title*s.Title + p.Weights.Artist*s.Artist + p.Weights.Duration*s.Duration
	if s.MainArtistExact {
		s.Overall += MainArtistBonus
	}
	return s
}

// DurationScore is 100 minus two points per second of difference.
//
// It is not clamped, so large differences go negative.
func DurationScore(source, candidate int) float64 {
	return 100 - 2*math.Abs(float64(candidate-source))
}

// MainArtistExact reports whether the first artists of both sides are equal ignoring case.
func MainArtistExact(track models.SourceTrack, candidate models.CandidateResult) bool {
	if len(track.Artists) == 0 || len(candidate.Artists) == 0 {
		return false
	}
	return strings.ToLower(track.Artists[0]) == strings.ToLower(candidate.Artists[0])
}
