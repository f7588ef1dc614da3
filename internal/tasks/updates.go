package tasks

import (
	"fmt"

	"github.com/desertthunder/ytmigrate/internal/models"
)

// ProgressUpdate represents a progress event during a migration run.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// TrackProgress is attached to [MatchTracks] updates.
type TrackProgress struct {
	Outcome models.MatchOutcome
}

// ApplyProgress is attached to [AddTracks] updates.
type ApplyProgress struct {
	Count int
	Err   error
}

// Operation phase enumeration
type Phase int

const (
	FetchSource Phase = iota
	CreatePlaylist
	MatchTracks
	AddTracks
	VerifyPlaylist
	RecordRun
)

func (p Phase) String() string {
	switch p {
	case FetchSource:
		return "fetch_source"
	case CreatePlaylist:
		return "create_playlist"
	case MatchTracks:
		return "match_tracks"
	case AddTracks:
		return "add_tracks"
	case VerifyPlaylist:
		return "verify_playlist"
	case RecordRun:
		return "record_run"
	default:
		return ""
	}
}

// Label is the per-track status shown to users: the match method, or "failed" when nothing matched.
func Label(o models.MatchOutcome) string {
	if !o.Accepted() {
		return "failed"
	}
	return string(o.Method)
}

func fetchSourceUpdate(ref string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching source playlist %s from Spotify...", ref),
	}
}

func foundTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d tracks", count),
		Data:    count,
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating YouTube Music playlist %q...", name),
	}
}

func createdPlaylistUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Created playlist %s", id),
		Data:    id,
	}
}

func matchTrackUpdate(step, total int, outcome models.MatchOutcome) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MatchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%s] %s", Label(outcome), outcome.Track.String()),
		Data:    TrackProgress{Outcome: outcome},
	}
}

func addTracksUpdate(result ApplyResult) ProgressUpdate {
	msg := fmt.Sprintf("Added %d tracks", len(result.Outcomes))
	if result.Err != nil {
		msg = fmt.Sprintf("Failed to add %d tracks: %v", len(result.Outcomes), result.Err)
	}
	return ProgressUpdate{
		Phase:   AddTracks,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    ApplyProgress{Count: len(result.Outcomes), Err: result.Err},
	}
}

func verifyPlaylistUpdate(count int, verified bool) ProgressUpdate {
	msg := fmt.Sprintf("Destination playlist has %d tracks", count)
	if !verified {
		msg = "Could not verify destination track count"
	}
	return ProgressUpdate{
		Phase:   VerifyPlaylist,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    count,
	}
}

func recordRunUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RecordRun,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Recorded run %s", id),
	}
}
