package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/ytmigrate/internal/formatter"
	"github.com/desertthunder/ytmigrate/internal/matching"
	"github.com/desertthunder/ytmigrate/internal/models"
	"github.com/desertthunder/ytmigrate/internal/services"
	"github.com/desertthunder/ytmigrate/internal/shared"
	"github.com/desertthunder/ytmigrate/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Migrate runs a full Spotify → YouTube Music migration.
//
// Missing source, name and description are prompted for. Partial failures are reported, not returned, unless
// --fail-on-unmatched is set.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	config, err := r.prepare(ctx, cmd)
	if err != nil {
		return err
	}

	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized (set credentials.spotify in %s)", shared.ErrServiceUnavailable, r.configPath)
	}

	mode := config.Migration.ApplyMode
	if cmd.IsSet("mode") {
		mode = cmd.String("mode")
	}
	batchSize := config.Migration.BatchSize
	if cmd.IsSet("batch-size") {
		batchSize = cmd.Int("batch-size")
	}

	var reportFormat formatter.Format
	if cmd.IsSet("format") {
		if reportFormat, err = formatter.ParseFormat(cmd.String("format")); err != nil {
			return err
		}
	}

	req, err := r.migrationRequest(cmd, config)
	if err != nil {
		return err
	}

	opts := tasks.EngineOpts{
		Source:      r.spotify,
		Destination: r.youtube,
		Cascade:     matching.PolicyFromConfig(config.Matching).Cascade(shared.WithLogger(r.logger, "component", "matching")),
		Apply: tasks.ApplyOpts{
			Mode:       mode,
			BatchSize:  batchSize,
			BatchDelay: config.Migration.BatchDelay(),
			ItemDelay:  config.Migration.ItemDelay(),
			Sleep:      r.sleep,
		},
		Logger: r.logger,
	}

	if config.Migration.RecordHistory {
		runs, closeDB, err := r.openRuns(config)
		if err != nil {
			r.logger.Warn("run history disabled", "error", err)
		} else {
			defer closeDB()
			opts.Recorder = runs
		}
	}

	engine := tasks.NewMigrationEngine(opts)

	r.logger.Info("starting migration", "source", req.SourceRef, "name", req.Name, "mode", mode)
	r.writePlain("Starting playlist migration...\n")
	r.writePlain("Source: %s\n", req.SourceRef)
	r.writePlain("Destination: %s\n\n", req.Name)

	progressCh := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.showProgress(update)
		}
	}()

	report, err := engine.Run(ctx, req, progressCh)
	close(progressCh)
	<-done

	if errors.Is(err, shared.ErrSourceFetch) && services.IsNotFound(err) {
		return fmt.Errorf("%w (check the playlist ID and that the playlist is visible to your account)", err)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(report, true); err != nil {
			return err
		}
	} else {
		r.writePlain("\n%s", r.palette.Summary(report))
	}

	if path := cmd.String("report"); path != "" || reportFormat != "" {
		written, err := formatter.WriteReport(report, path, reportFormat)
		if err != nil {
			return err
		}
		r.logger.Info("report written", "path", written)
		r.writePlain("\nReport saved to: %s\n", written)
	}

	if cmd.Bool("fail-on-unmatched") && report.UnmatchedCount() > 0 {
		return fmt.Errorf("%w: %d of %d tracks", shared.ErrUnmatchedTracks, report.UnmatchedCount(), report.Total())
	}

	return nil
}

// migrationRequest fills the request from flags, prompting for anything missing.
func (r *Runner) migrationRequest(cmd *cli.Command, config *shared.Config) (tasks.MigrationRequest, error) {
	req := tasks.MigrationRequest{
		SourceRef:   cmd.String("source"),
		Name:        cmd.String("name"),
		Description: cmd.String("description"),
	}

	var err error
	if req.SourceRef == "" {
		if req.SourceRef, err = r.prompt("Spotify playlist (ID, URL or URI)", ""); err != nil {
			return req, err
		}
		if req.SourceRef == "" {
			return req, fmt.Errorf("%w: source playlist", shared.ErrMissingArgument)
		}
	}

	if !cmd.IsSet("name") {
		if req.Name, err = r.prompt("Playlist name", config.Migration.PlaylistName); err != nil {
			return req, err
		}
	}

	if !cmd.IsSet("description") {
		if req.Description, err = r.prompt("Playlist description", config.Migration.PlaylistDescription); err != nil {
			return req, err
		}
	}

	return req, nil
}

func (r *Runner) showProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.FetchSource:
		r.writePlain("📥 %s\n", update.Message)
	case tasks.CreatePlaylist:
		r.writePlain("📝 %s\n", update.Message)
	case tasks.MatchTracks:
		if update.Step == 1 {
			r.writePlain("\n🔍 Matching %d tracks\n", update.Total)
		}
		status := update.Message
		if data, ok := update.Data.(tasks.TrackProgress); ok && !data.Outcome.Accepted() {
			status = r.palette.Warn(status)
		} else if ok && data.Outcome.Method == models.MethodVideo {
			status = r.palette.Help(status)
		}
		r.writePlain("   %d/%d %s\n", update.Step, update.Total, status)
	case tasks.AddTracks:
		if data, ok := update.Data.(tasks.ApplyProgress); ok && data.Err != nil {
			r.writePlain("   %s\n", r.palette.Err(update.Message))
		} else {
			r.writePlain("   ➕ %s\n", update.Message)
		}
	case tasks.VerifyPlaylist:
		r.writePlain("\n✔ %s\n", update.Message)
	case tasks.RecordRun:
		r.writePlain("💾 %s\n", update.Message)
	}
}
