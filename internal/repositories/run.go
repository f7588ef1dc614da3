package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytmigrate/internal/models"
	"github.com/desertthunder/ytmigrate/internal/shared"
)

// RunRepository persists migration reports and their per-track outcomes.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun inserts the report and one outcome row per source track in a single transaction.
func (r *RunRepository) SaveRun(ctx context.Context, report *models.MigrationReport) error {
	if report.RunID == "" {
		report.RunID = shared.GenerateID()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var destinationCount any
	if report.CountVerified {
		destinationCount = report.DestinationCount
	}

	query := `
		INSERT INTO runs (
			id, source_ref, playlist_id, playlist_name, apply_mode,
			tracks_total, tracks_added, tracks_failed, tracks_unmatched,
			destination_count, started_at, completed_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = tx.ExecContext(ctx, query,
		report.RunID,
		report.SourceRef,
		report.PlaylistID,
		report.PlaylistName,
		report.ApplyMode,
		report.Total(),
		report.Added,
		report.FailedCount(),
		report.UnmatchedCount(),
		destinationCount,
		report.StartedAt,
		report.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO outcomes (run_id, position, title, artists, album, duration, method, external_id, score, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	failed := report.FailedPositions()
	for i, o := range report.Outcomes {
		artists, err := encodeArtists(o.Track.Artists)
		if err != nil {
			return err
		}

		_, err = stmt.ExecContext(ctx,
			report.RunID,
			i,
			o.Track.Title,
			artists,
			o.Track.Album,
			o.Track.DurationSeconds,
			string(o.Method),
			nullString(o.ExternalID),
			nullFloat(o.Score),
			boolInt(failed[o.Position]),
		)
		if err != nil {
			return fmt.Errorf("failed to insert outcome %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// Get loads a run and rebuilds its report. Candidate details are not persisted and stay nil.
func (r *RunRepository) Get(ctx context.Context, id string) (*models.MigrationReport, error) {
	query := `
		SELECT id, source_ref, playlist_id, playlist_name, apply_mode,
			tracks_total, tracks_added, tracks_failed, tracks_unmatched,
			destination_count, started_at, completed_at
		FROM runs
		WHERE id = ?
	`

	summary, err := scanSummary(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	report := &models.MigrationReport{
		RunID:        summary.ID,
		SourceRef:    summary.SourceRef,
		PlaylistID:   summary.PlaylistID,
		PlaylistName: summary.PlaylistName,
		ApplyMode:    summary.ApplyMode,
		Added:        summary.Added,
		Outcomes:     []models.MatchOutcome{},
		Failed:       []models.MatchOutcome{},
		Unmatched:    []models.SourceTrack{},
		Flagged:      []models.MatchOutcome{},
		StartedAt:    summary.StartedAt,
		CompletedAt:  summary.CompletedAt,
	}
	if summary.DestinationCount != nil {
		report.DestinationCount = *summary.DestinationCount
		report.CountVerified = true
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT position, title, artists, album, duration, method, external_id, score, failed
		FROM outcomes
		WHERE run_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		outcome, failed, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}

		report.Outcomes = append(report.Outcomes, outcome)
		switch {
		case !outcome.Accepted():
			report.Unmatched = append(report.Unmatched, outcome.Track)
		case failed:
			report.Failed = append(report.Failed, outcome)
		}
		if outcome.Method == models.MethodVideo {
			report.Flagged = append(report.Flagged, outcome)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return report, nil
}

// List returns the most recent runs first. A non-positive limit returns every run.
func (r *RunRepository) List(ctx context.Context, limit int) ([]models.RunSummary, error) {
	query := `
		SELECT id, source_ref, playlist_id, playlist_name, apply_mode,
			tracks_total, tracks_added, tracks_failed, tracks_unmatched,
			destination_count, started_at, completed_at
		FROM runs
		ORDER BY started_at DESC, id ASC
	`

	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []models.RunSummary{}
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Delete removes a run and, through the foreign key cascade, its outcomes.
func (r *RunRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSummary(row scanner) (*models.RunSummary, error) {
	var (
		s                models.RunSummary
		destinationCount sql.NullInt64
		startedAt        time.Time
		completedAt      time.Time
	)

	err := row.Scan(
		&s.ID, &s.SourceRef, &s.PlaylistID, &s.PlaylistName, &s.ApplyMode,
		&s.Total, &s.Added, &s.Failed, &s.Unmatched,
		&destinationCount, &startedAt, &completedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	if destinationCount.Valid {
		count := int(destinationCount.Int64)
		s.DestinationCount = &count
	}
	s.StartedAt = startedAt
	s.CompletedAt = completedAt
	return &s, nil
}

func scanOutcome(rows *sql.Rows) (models.MatchOutcome, bool, error) {
	var (
		o          models.MatchOutcome
		artists    string
		method     string
		externalID sql.NullString
		score      sql.NullFloat64
		failed     int
	)

	err := rows.Scan(&o.Position, &o.Track.Title, &artists, &o.Track.Album, &o.Track.DurationSeconds, &method, &externalID, &score, &failed)
	if err != nil {
		return o, false, fmt.Errorf("failed to scan outcome: %w", err)
	}

	if o.Track.Artists, err = decodeArtists(artists); err != nil {
		return o, false, err
	}
	o.Method = models.MatchMethod(method)
	o.ExternalID = externalID.String
	if score.Valid {
		v := score.Float64
		o.Score = &v
	}
	return o, failed != 0, nil
}
