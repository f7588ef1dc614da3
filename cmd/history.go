package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytmigrate/internal/formatter"
	"github.com/desertthunder/ytmigrate/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints recorded runs, most recent first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	runs, closeDB, err := r.openRuns(config)
	if err != nil {
		return err
	}
	defer closeDB()

	summaries, err := runs.List(ctx, cmd.Int("limit"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(summaries, true)
	}
	return r.writePlain("%s", r.palette.Runs(summaries))
}

// HistoryShow renders the report of a recorded run.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	runs, closeDB, err := r.openRuns(config)
	if err != nil {
		return err
	}
	defer closeDB()

	report, err := runs.Get(ctx, id)
	if err != nil {
		return err
	}

	if f := cmd.String("format"); f != "" && f != "summary" {
		format, err := formatter.ParseFormat(f)
		if err != nil {
			return err
		}
		data, err := formatter.Export(report, format)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	return r.writePlain("%s", r.palette.Summary(report))
}

// HistoryDelete removes a recorded run and its outcomes.
func (r *Runner) HistoryDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	runs, closeDB, err := r.openRuns(config)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := runs.Delete(ctx, id); err != nil {
		return err
	}

	r.logger.Info("run deleted", "id", id)
	return r.writePlain("✓ Deleted run %s\n", id)
}
