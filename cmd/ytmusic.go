package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/ytmigrate/internal/matching"
	"github.com/desertthunder/ytmigrate/internal/models"
	"github.com/desertthunder/ytmigrate/internal/shared"
	"github.com/urfave/cli/v3"
)

// YTMusicSearch searches YouTube Music for tracks.
//
// With --title it builds a source track and runs every matching stage against it, printing each candidate's score.
// Otherwise it prints the raw results for the query.
func (r *Runner) YTMusicSearch(ctx context.Context, cmd *cli.Command) error {
	config, err := r.prepare(ctx, cmd)
	if err != nil {
		return err
	}
	if r.youtube == nil {
		return fmt.Errorf("%w: YouTube Music service not initialized", shared.ErrServiceUnavailable)
	}

	query := cmd.StringArg("query")
	title := cmd.String("title")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if title != "" {
		track := models.SourceTrack{Title: title, Artists: cmd.StringSlice("artist")}
		if d := cmd.String("duration"); d != "" {
			if track.DurationSeconds, err = shared.ParseDuration(d); err != nil {
				return fmt.Errorf("%w: --duration: %v", shared.ErrInvalidArgument, err)
			}
		}

		r.logger.Info("explaining match", "track", track.String())
		cascade := matching.PolicyFromConfig(config.Matching).Cascade(r.logger)
		reports := cascade.Explain(ctx, r.youtube, track)

		if useJSON {
			return r.writeJSON(explainJSON(reports), pretty)
		}
		return r.writePlain("%s", r.palette.Explain(track, reports))
	}

	if query == "" {
		return fmt.Errorf("%w: a query argument or --title is required", shared.ErrMissingArgument)
	}

	var kind models.Kind
	switch strings.ToLower(cmd.String("kind")) {
	case "songs", "song", "":
		kind = models.KindSong
	case "videos", "video":
		kind = models.KindVideo
	default:
		return fmt.Errorf("%w: invalid kind '%s' (must be 'songs' or 'videos')", shared.ErrInvalidArgument, cmd.String("kind"))
	}

	r.logger.Info("searching youtube music", "query", query, "kind", kind)

	results, err := r.youtube.SearchCandidates(ctx, query, kind)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if useJSON {
		return r.writeJSON(results, pretty)
	}

	if len(results) == 0 {
		return r.writePlain("No %s found for %q\n", kind, query)
	}

	r.writePlain("Found %d %s:\n\n", len(results), kind)
	for i, c := range results {
		r.writePlain("%d. %s\n", i+1, c.Title)
		if len(c.Artists) > 0 {
			r.writePlain("   Artists: %s\n", strings.Join(c.Artists, ", "))
		}
		if c.DurationSeconds > 0 {
			r.writePlain("   Duration: %s\n", shared.FormatDuration(c.DurationSeconds))
		}
		r.writePlain("   ID: %s\n", c.ExternalID)
	}

	return nil
}

// YTMusicHealth reports the proxy's health status.
func (r *Runner) YTMusicHealth(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.prepare(ctx, cmd); err != nil {
		return err
	}

	checker, ok := r.youtube.(healthChecker)
	if !ok {
		return fmt.Errorf("%w: destination does not report health", shared.ErrNotImplemented)
	}

	status, err := checker.Health(ctx)
	if err != nil {
		return err
	}

	r.writePlain("%s\n", r.palette.OK("✓ YouTube Music proxy is reachable"))
	return r.writeJSON(status, true)
}

type stageJSON struct {
	Method     models.MatchMethod   `json:"method"`
	Query      string               `json:"query"`
	Kind       models.Kind          `json:"kind"`
	Candidates []candidateJSON      `json:"candidates"`
	Outcome    *models.MatchOutcome `json:"outcome,omitempty"`
	Error      string               `json:"error,omitempty"`
}

type candidateJSON struct {
	models.CandidateResult
	Score    *matching.Score `json:"score,omitempty"`
	Eligible bool            `json:"eligible"`
}

// explainJSON flattens stage reports into a form that keeps error messages when encoded.
func explainJSON(reports []matching.StageReport) []stageJSON {
	out := make([]stageJSON, len(reports))
	for i, report := range reports {
		out[i] = stageJSON{
			Method:     report.Method,
			Query:      report.Query,
			Kind:       report.Kind,
			Candidates: make([]candidateJSON, len(report.Candidates)),
			Outcome:    report.Outcome,
		}
		for j, c := range report.Candidates {
			out[i].Candidates[j] = candidateJSON{CandidateResult: c.Candidate, Score: c.Score, Eligible: c.Eligible}
		}
		if report.Err != nil {
			out[i].Error = report.Err.Error()
		}
	}
	return out
}
