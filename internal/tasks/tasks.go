// package tasks implements the Spotify to YouTube Music migration pipeline.
//
// The core abstraction is MigrationEngine, which fetches, matches, applies and verifies a single playlist.
// Progress updates are delivered over a channel that the caller must drain until Run returns.
package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytmigrate/internal/matching"
	"github.com/desertthunder/ytmigrate/internal/models"
	"github.com/desertthunder/ytmigrate/internal/shared"
)

// SourceCatalog reads the playlist being migrated away from.
type SourceCatalog interface {
	// FetchSourceTracks returns every track of the playlist in order, paginating internally.
	FetchSourceTracks(ctx context.Context, playlistRef string) ([]models.SourceTrack, error)
}

// Destination is the catalog and playlist store tracks are migrated to.
type Destination interface {
	matching.Searcher
	ItemAdder

	// CreatePlaylist creates an empty playlist and returns its opaque identifier.
	CreatePlaylist(ctx context.Context, name, description string) (string, error)

	// PlaylistTrackCount returns the number of tracks currently in the playlist.
	PlaylistTrackCount(ctx context.Context, playlistID string) (int, error)
}

// RunRecorder persists a finished migration report.
type RunRecorder interface {
	SaveRun(ctx context.Context, report *models.MigrationReport) error
}

// MigrationRequest names the source playlist and the destination playlist to create.
//
// Defaults for Name and Description are applied by the caller.
type MigrationRequest struct {
	SourceRef   string
	Name        string
	Description string
}

// EngineOpts contains the dependencies of a [MigrationEngine].
type EngineOpts struct {
	Source      SourceCatalog
	Destination Destination
	Cascade     *matching.Cascade // defaults to matching.DefaultPolicy
	Apply       ApplyOpts
	Recorder    RunRecorder // optional
	Logger      *log.Logger
	Now         func() time.Time
}

// MigrationEngine drives a migration run: fetch the source tracks, create the destination playlist, match each
// track through the cascade, apply accepted matches, verify the destination and report.
//
// Runs are sequential. Destination writes are append-only.
type MigrationEngine struct {
	source   SourceCatalog
	dest     Destination
	cascade  *matching.Cascade
	apply    ApplyOpts
	recorder RunRecorder
	logger   *log.Logger
	now      func() time.Time
}

// NewMigrationEngine creates a new MigrationEngine with the provided dependencies.
func NewMigrationEngine(opts EngineOpts) *MigrationEngine {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Cascade == nil {
		opts.Cascade = matching.DefaultPolicy().Cascade(opts.Logger)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Apply.Logger == nil {
		opts.Apply.Logger = opts.Logger
	}

	return &MigrationEngine{
		source:   opts.Source,
		dest:     opts.Destination,
		cascade:  opts.Cascade,
		apply:    opts.Apply,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		now:      opts.Now,
	}
}

// sendProgress delivers a progress update, blocking until it is received or ctx is done.
func (e *MigrationEngine) sendProgress(ctx context.Context, progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	case <-ctx.Done():
	}
}

// Run performs a full migration.
//
// Only a failed source fetch or playlist creation aborts the run, returning an error wrapping
// [shared.ErrSourceFetch] or [shared.ErrPlaylistCreate]. Every other failure is recorded in the report.
func (e *MigrationEngine) Run(ctx context.Context, req MigrationRequest, progress chan<- ProgressUpdate) (*models.MigrationReport, error) {
	if e.source == nil {
		return nil, fmt.Errorf("%w: source catalog not initialized", shared.ErrServiceUnavailable)
	}
	if e.dest == nil {
		return nil, fmt.Errorf("%w: destination not initialized", shared.ErrServiceUnavailable)
	}
	if req.SourceRef == "" {
		return nil, fmt.Errorf("%w: source playlist reference", shared.ErrMissingArgument)
	}
	if req.Name == "" {
		return nil, fmt.Errorf("%w: destination playlist name", shared.ErrMissingArgument)
	}

	report := &models.MigrationReport{
		RunID:        shared.GenerateID(),
		SourceRef:    req.SourceRef,
		PlaylistName: req.Name,
		ApplyMode:    e.apply.Mode,
		Outcomes:     []models.MatchOutcome{},
		Failed:       []models.MatchOutcome{},
		Unmatched:    []models.SourceTrack{},
		Flagged:      []models.MatchOutcome{},
		StartedAt:    e.now(),
	}
	if report.ApplyMode == "" {
		report.ApplyMode = shared.ApplyModeBatched
	}
	logger := shared.WithLogger(e.logger, "run", report.RunID)

	e.sendProgress(ctx, progress, fetchSourceUpdate(req.SourceRef))
	tracks, err := e.source.FetchSourceTracks(ctx, req.SourceRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrSourceFetch, err)
	}
	logger.Info("fetched source tracks", "count", len(tracks))
	e.sendProgress(ctx, progress, foundTracksUpdate(len(tracks)))

	e.sendProgress(ctx, progress, createPlaylistUpdate(req.Name))
	playlistID, err := e.dest.CreatePlaylist(ctx, req.Name, req.Description)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrPlaylistCreate, err)
	}
	report.PlaylistID = playlistID
	logger.Info("created destination playlist", "id", playlistID)
	e.sendProgress(ctx, progress, createdPlaylistUpdate(playlistID))

	applier, err := NewApplier(e.dest, playlistID, e.apply)
	if err != nil {
		return nil, err
	}

	for i, track := range tracks {
		outcome := e.cascade.Resolve(ctx, e.dest, track)
		outcome.Position = i
		report.Outcomes = append(report.Outcomes, outcome)
		e.sendProgress(ctx, progress, matchTrackUpdate(i+1, len(tracks), outcome))

		if !outcome.Accepted() {
			logger.Warn("no match", "track", track.String())
			report.Unmatched = append(report.Unmatched, track)
			continue
		}

		logger.Debug("matched", "track", track.String(), "method", outcome.Method, "id", outcome.ExternalID)
		if outcome.Method == models.MethodVideo {
			report.Flagged = append(report.Flagged, outcome)
		}
		e.record(ctx, report, applier.Enqueue(ctx, outcome), progress)
	}

	e.record(ctx, report, applier.Flush(ctx), progress)

	count, err := e.dest.PlaylistTrackCount(ctx, playlistID)
	if err != nil {
		logger.Warn("failed to verify destination track count", "error", err)
	} else {
		report.DestinationCount = count
		report.CountVerified = true
		if count != report.Added {
			logger.Warn("destination track count differs from added", "count", count, "added", report.Added)
		}
	}
	e.sendProgress(ctx, progress, verifyPlaylistUpdate(count, report.CountVerified))

	report.CompletedAt = e.now()
	logger.Info("migration finished",
		"total", report.Total(), "added", report.Added,
		"failed", report.FailedCount(), "unmatched", report.UnmatchedCount())

	if e.recorder != nil {
		if err := e.recorder.SaveRun(ctx, report); err != nil {
			logger.Warn("failed to record run", "error", err)
		} else {
			e.sendProgress(ctx, progress, recordRunUpdate(report.RunID))
		}
	}

	return report, nil
}

func (e *MigrationEngine) record(ctx context.Context, report *models.MigrationReport, results []ApplyResult, progress chan<- ProgressUpdate) {
	for _, result := range results {
		if result.Err != nil {
			report.Failed = append(report.Failed, result.Outcomes...)
		} else {
			report.Added += len(result.Outcomes)
		}
		e.sendProgress(ctx, progress, addTracksUpdate(result))
	}
}
