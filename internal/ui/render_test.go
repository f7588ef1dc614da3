package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/ytmigrate/internal/matching"
	"github.com/desertthunder/ytmigrate/internal/models"
	"github.com/desertthunder/ytmigrate/internal/shared"
)

func TestPalette(t *testing.T) {
	p := DefaultPalette

	t.Run("Summary", func(t *testing.T) {
		t.Run("clean run", func(t *testing.T) {
			report := &models.MigrationReport{
				PlaylistName:     "Migrated",
				PlaylistID:       "PL1",
				Outcomes:         []models.MatchOutcome{{ExternalID: "a", Method: models.MethodStrict}},
				Added:            1,
				DestinationCount: 1,
				CountVerified:    true,
			}

			out := p.Summary(report)
			for _, want := range []string{"Migration Complete", "Added: 1/1 (100.0%)", "strict 1, relaxed 0, video 0", "Destination count: 1"} {
				if !strings.Contains(out, want) {
					t.Errorf("summary missing %q, got:\n%s", want, out)
				}
			}
			if strings.Contains(out, "Unmatched tracks") {
				t.Errorf("expected no unmatched section, got:\n%s", out)
			}
		})

		t.Run("lists unmatched tracks by title and artist", func(t *testing.T) {
			lost := models.SourceTrack{Title: "Lost", Artists: []string{"Nobody", "Else"}}
			report := &models.MigrationReport{
				Outcomes:  []models.MatchOutcome{models.Unmatched(lost)},
				Unmatched: []models.SourceTrack{lost},
			}

			out := p.Summary(report)
			if !strings.Contains(out, "Unmatched tracks (1):") || !strings.Contains(out, "• Lost - Nobody, Else") {
				t.Errorf("unexpected summary:\n%s", out)
			}
			if !strings.Contains(out, "unverified") {
				t.Errorf("expected unverified count, got:\n%s", out)
			}
		})

		t.Run("count mismatch", func(t *testing.T) {
			report := &models.MigrationReport{
				Outcomes:         []models.MatchOutcome{{ExternalID: "a", Method: models.MethodVideo}},
				Added:            1,
				Flagged:          []models.MatchOutcome{{Track: models.SourceTrack{Title: "Clip"}, ExternalID: "v1", Method: models.MethodVideo}},
				DestinationCount: 3,
				CountVerified:    true,
			}

			out := p.Summary(report)
			if !strings.Contains(out, "3 (expected 1)") {
				t.Errorf("expected mismatch note, got:\n%s", out)
			}
			if !strings.Contains(out, "Clip → v1") {
				t.Errorf("expected flagged video, got:\n%s", out)
			}
		})
	})

	t.Run("Runs", func(t *testing.T) {
		t.Run("empty", func(t *testing.T) {
			if out := p.Runs(nil); !strings.Contains(out, "No migration runs recorded") {
				t.Errorf("unexpected output %q", out)
			}
		})

		t.Run("table", func(t *testing.T) {
			count := 48
			runs := []models.RunSummary{
				{ID: "run-1", PlaylistName: "Mix", ApplyMode: shared.ApplyModeBatched, Total: 50, Added: 48, Unmatched: 2, DestinationCount: &count, StartedAt: time.Now()},
				{ID: "run-2", PlaylistName: "Other", ApplyMode: shared.ApplyModeSingle, Total: 3, Added: 3, StartedAt: time.Now()},
			}

			out := p.Runs(runs)
			for _, want := range []string{"run-1", "Mix", "48/50", "run-2", "single"} {
				if !strings.Contains(out, want) {
					t.Errorf("table missing %q, got:\n%s", want, out)
				}
			}
		})
	})

	t.Run("Explain", func(t *testing.T) {
		track := models.SourceTrack{Title: "Song A", Artists: []string{"Artist X"}, DurationSeconds: 200}
		candidate := models.CandidateResult{Title: "Song A", Artists: []string{"Artist X"}, DurationSeconds: 200, ExternalID: "yt1", Kind: models.KindSong}
		outcome := models.MatchOutcome{Track: track, ExternalID: "yt1", Method: models.MethodStrict}
		score := matching.Score{Title: 100, Artist: 100, Duration: 100, Overall: 110, MainArtistExact: true}

		reports := []matching.StageReport{
			{
				Method:     models.MethodStrict,
				Query:      "Song A Artist X",
				Kind:       models.KindSong,
				Candidates: []matching.ScoredCandidate{{Candidate: candidate, Score: &score, Eligible: true}},
				Outcome:    &outcome,
			},
			{
				Method: models.MethodVideo,
				Query:  "Song A Artist X",
				Kind:   models.KindVideo,
				Err:    shared.ErrNoCandidate,
			},
			{
				Method: models.MethodRelaxed,
				Query:  "Song A Artist X",
				Kind:   models.KindSong,
				Err:    errors.New("proxy down"),
			},
		}

		out := p.Explain(track, reports)
		for _, want := range []string{"Matching \"Song A - Artist X\"", "strict", "110.0", "yes", "accepted yt1", "no acceptable candidate", "proxy down"} {
			if !strings.Contains(out, want) {
				t.Errorf("explain missing %q, got:\n%s", want, out)
			}
		}
	})
}
