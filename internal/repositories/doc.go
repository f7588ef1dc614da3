// Package repositories implements SQLite persistence for migration history.
//
// [RunRepository] stores one row per migration run and one row per source track outcome, keyed by the run ID and
// the track's position in the source playlist. It satisfies tasks.RunRecorder so the migration engine can record
// finished runs, and backs the history commands.
//
// Outcome rows are removed with their run through an ON DELETE CASCADE foreign key. [shared.NewDatabase] enables
// foreign key enforcement on every connection.
package repositories
