// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/desertthunder/ytmigrate/internal/models"
)

// FakeSource is a test double for tasks.SourceCatalog
type FakeSource struct {
	Tracks []models.SourceTrack
	Err    error
	Refs   []string // every requested playlist reference
}

func (f *FakeSource) FetchSourceTracks(ctx context.Context, ref string) ([]models.SourceTrack, error) {
	f.Refs = append(f.Refs, ref)
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Tracks, nil
}

// FakeDestination is an in-memory test double for tasks.Destination.
//
// Search results are looked up by exact query. AddErr, when set, decides per call (0-based) whether the call fails.
type FakeDestination struct {
	Songs      map[string][]models.CandidateResult
	Videos     map[string][]models.CandidateResult
	SearchErrs map[string]error

	PlaylistID string
	CreateErr  error
	AddErr     func(call int, ids []string) error
	CountErr   error
	CountDelta int // added to the number of stored items when reporting the count

	Searches  []string
	Playlists []string // created playlist names
	AddCalls  [][]string
	Items     []string
}

func (f *FakeDestination) SearchCandidates(ctx context.Context, query string, kind models.Kind) ([]models.CandidateResult, error) {
	f.Searches = append(f.Searches, string(kind)+":"+query)
	if err, ok := f.SearchErrs[query]; ok {
		return nil, err
	}
	if kind == models.KindVideo {
		return f.Videos[query], nil
	}
	return f.Songs[query], nil
}

func (f *FakeDestination) CreatePlaylist(ctx context.Context, name, description string) (string, error) {
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	f.Playlists = append(f.Playlists, name)
	if f.PlaylistID == "" {
		f.PlaylistID = "PLfake"
	}
	return f.PlaylistID, nil
}

func (f *FakeDestination) AddItems(ctx context.Context, playlistID string, ids []string) error {
	call := len(f.AddCalls)
	f.AddCalls = append(f.AddCalls, append([]string(nil), ids...))
	if f.AddErr != nil {
		if err := f.AddErr(call, ids); err != nil {
			return err
		}
	}
	f.Items = append(f.Items, ids...)
	return nil
}

func (f *FakeDestination) PlaylistTrackCount(ctx context.Context, playlistID string) (int, error) {
	if f.CountErr != nil {
		return 0, f.CountErr
	}
	return len(f.Items) + f.CountDelta, nil
}

// SleepRecorder records requested pauses instead of sleeping
type SleepRecorder struct {
	Calls []time.Duration
}

func (s *SleepRecorder) Sleep(d time.Duration) {
	s.Calls = append(s.Calls, d)
}

// Song builds a song candidate.
func Song(id, title string, duration int, artists ...string) models.CandidateResult {
	return models.CandidateResult{Title: title, Artists: artists, DurationSeconds: duration, ExternalID: id, Kind: models.KindSong}
}

// Video builds a video candidate.
func Video(id, title string, duration int, artists ...string) models.CandidateResult {
	c := Song(id, title, duration, artists...)
	c.Kind = models.KindVideo
	return c
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
