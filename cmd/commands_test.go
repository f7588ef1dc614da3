package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/ytmigrate/internal/models"
	"github.com/desertthunder/ytmigrate/internal/repositories"
	"github.com/desertthunder/ytmigrate/internal/shared"
	tu "github.com/desertthunder/ytmigrate/internal/testing"
)

func migrationFixtures() (*tu.FakeSource, *tu.FakeDestination) {
	source := &tu.FakeSource{Tracks: []models.SourceTrack{
		{Title: "Song A", Artists: []string{"Artist X"}, DurationSeconds: 200},
		{Title: "Lost", Artists: []string{"Nobody"}, DurationSeconds: 100},
		{Title: "Clip", Artists: []string{"Artist V"}, DurationSeconds: 180},
	}}
	dest := &tu.FakeDestination{
		Songs: map[string][]models.CandidateResult{
			"Song A Artist X": {tu.Song("yt1", "Song A", 200, "Artist X")},
		},
		Videos: map[string][]models.CandidateResult{
			"Clip Artist V": {tu.Video("v1", "Clip (Official Video)", 185, "Artist V")},
		},
	}
	return source, dest
}

func TestMigrate(t *testing.T) {
	t.Run("prompts with defaults and reports unmatched tracks", func(t *testing.T) {
		source, dest := migrationFixtures()
		runner, output, sleeper := testRunner(t, "\n\n", source, dest)

		if err := runApp(runner, "migrate", "--source", "spotify:playlist:abc"); err != nil {
			t.Fatalf("migrate failed: %v", err)
		}

		if len(source.Refs) != 1 || source.Refs[0] != "spotify:playlist:abc" {
			t.Errorf("unexpected source refs %v", source.Refs)
		}
		if len(dest.Playlists) != 1 || dest.Playlists[0] != "Migrated from Spotify (High Accuracy)" {
			t.Errorf("expected default playlist name, got %v", dest.Playlists)
		}
		if len(dest.AddCalls) != 1 || strings.Join(dest.AddCalls[0], ",") != "yt1,v1" {
			t.Errorf("expected one batched add call, got %v", dest.AddCalls)
		}
		if len(sleeper.Calls) != 0 {
			t.Errorf("a single batch should not pause, got %v", sleeper.Calls)
		}

		out := output.String()
		for _, want := range []string{
			"Playlist name [Migrated from Spotify (High Accuracy)]:",
			"[strict] Song A - Artist X",
			"[failed] Lost - Nobody",
			"[video] Clip - Artist V",
			"Added: 2/3",
			"Unmatched tracks (1):",
			"• Lost - Nobody",
			"Clip - Artist V → v1",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q, got:\n%s", want, out)
			}
		}
	})

	t.Run("records the run in history", func(t *testing.T) {
		source, dest := migrationFixtures()
		runner, output, _ := testRunner(t, "", source, dest)

		err := runApp(runner, "migrate", "--source", "abc", "--name", "Mine", "--description", "D")
		if err != nil {
			t.Fatalf("migrate failed: %v", err)
		}

		runs, closeDB, err := runner.openRuns(runner.config)
		if err != nil {
			t.Fatalf("failed to open history: %v", err)
		}
		defer closeDB()

		summaries, err := runs.List(context.Background(), 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(summaries) != 1 || summaries[0].PlaylistName != "Mine" || summaries[0].Unmatched != 1 {
			t.Errorf("unexpected history %+v", summaries)
		}
		if !strings.Contains(output.String(), "Recorded run") {
			t.Errorf("expected record progress, got:\n%s", output.String())
		}
	})

	t.Run("single mode paces every call", func(t *testing.T) {
		source, dest := migrationFixtures()
		runner, _, sleeper := testRunner(t, "", source, dest)

		err := runApp(runner, "migrate", "--source", "abc", "--name", "N", "--description", "D", "--mode", "single")
		if err != nil {
			t.Fatalf("migrate failed: %v", err)
		}

		if len(dest.AddCalls) != 2 {
			t.Errorf("expected one add call per match, got %v", dest.AddCalls)
		}
		if len(sleeper.Calls) != 2 || sleeper.Calls[0] != time.Second {
			t.Errorf("expected a 1s pause after each call, got %v", sleeper.Calls)
		}
	})

	t.Run("fail on unmatched", func(t *testing.T) {
		source, dest := migrationFixtures()
		runner, _, _ := testRunner(t, "", source, dest)

		err := runApp(runner, "migrate", "--source", "abc", "--name", "N", "--description", "D", "--fail-on-unmatched")
		if !errors.Is(err, shared.ErrUnmatchedTracks) {
			t.Errorf("expected ErrUnmatchedTracks, got %v", err)
		}
		if len(dest.Items) != 2 {
			t.Errorf("matches should still be added, got %v", dest.Items)
		}
	})

	t.Run("writes report file", func(t *testing.T) {
		source, dest := migrationFixtures()
		runner, _, _ := testRunner(t, "", source, dest)
		path := filepath.Join(t.TempDir(), "report.json")

		err := runApp(runner, "migrate", "--source", "abc", "--name", "N", "--description", "D", "--report", path)
		if err != nil {
			t.Fatalf("migrate failed: %v", err)
		}

		var report models.MigrationReport
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, path)), &report); err != nil {
			t.Fatalf("invalid report: %v", err)
		}
		if report.Added != 2 || len(report.Unmatched) != 1 || report.DestinationCount != 2 || !report.CountVerified {
			t.Errorf("unexpected report %+v", report)
		}
	})

	t.Run("missing source after prompt", func(t *testing.T) {
		source, dest := migrationFixtures()
		runner, _, _ := testRunner(t, "\n", source, dest)

		if err := runApp(runner, "migrate"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if len(dest.Playlists) != 0 {
			t.Error("no playlist should be created without a source")
		}
	})

	t.Run("source fetch failure is fatal", func(t *testing.T) {
		source, dest := migrationFixtures()
		source.Err = errors.New("boom")
		runner, _, _ := testRunner(t, "", source, dest)

		err := runApp(runner, "migrate", "--source", "abc", "--name", "N", "--description", "D")
		if !errors.Is(err, shared.ErrSourceFetch) {
			t.Errorf("expected ErrSourceFetch, got %v", err)
		}
	})

	t.Run("prints progress for every track", func(t *testing.T) {
		tracks := make([]models.SourceTrack, 150)
		for i := range tracks {
			tracks[i] = models.SourceTrack{Title: fmt.Sprintf("Track %d", i), Artists: []string{"Nobody"}}
		}
		runner, output, _ := testRunner(t, "", &tu.FakeSource{Tracks: tracks}, &tu.FakeDestination{})

		if err := runApp(runner, "migrate", "--source", "abc", "--name", "N", "--description", "D"); err != nil {
			t.Fatalf("migrate failed: %v", err)
		}

		out := output.String()
		if got := strings.Count(out, "[failed] Track "); got != len(tracks) {
			t.Errorf("expected %d progress lines, got %d", len(tracks), got)
		}
		if !strings.Contains(out, "150/150 ") {
			t.Error("expected the last track's progress line")
		}
	})

	t.Run("missing source playlist gets a hint", func(t *testing.T) {
		source, dest := migrationFixtures()
		source.Err = fmt.Errorf("%w: spotify API error: status 404", shared.ErrPlaylistNotFound)
		runner, _, _ := testRunner(t, "", source, dest)

		err := runApp(runner, "migrate", "--source", "abc", "--name", "N", "--description", "D")
		if !errors.Is(err, shared.ErrSourceFetch) || !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Fatalf("expected ErrSourceFetch wrapping ErrPlaylistNotFound, got %v", err)
		}
		if !strings.Contains(err.Error(), "check the playlist ID") {
			t.Errorf("expected a hint in %q", err.Error())
		}
	})

	t.Run("invalid report format", func(t *testing.T) {
		source, dest := migrationFixtures()
		runner, _, _ := testRunner(t, "", source, dest)

		err := runApp(runner, "migrate", "--source", "abc", "--name", "N", "--description", "D", "--format", "xml")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
		if len(source.Refs) != 0 {
			t.Error("migration should not start with an invalid format")
		}
	})
}

func TestYTMusicSearch(t *testing.T) {
	t.Run("raw search", func(t *testing.T) {
		_, dest := migrationFixtures()
		runner, output, _ := testRunner(t, "", nil, dest)

		if err := runApp(runner, "ytmusic", "search", "Song A Artist X"); err != nil {
			t.Fatalf("search failed: %v", err)
		}

		out := output.String()
		if !strings.Contains(out, "Found 1 songs") || !strings.Contains(out, "ID: yt1") || !strings.Contains(out, "Duration: 3:20") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("video kind", func(t *testing.T) {
		_, dest := migrationFixtures()
		runner, _, _ := testRunner(t, "", nil, dest)

		if err := runApp(runner, "ytmusic", "search", "--kind", "videos", "Clip Artist V"); err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if len(dest.Searches) != 1 || dest.Searches[0] != "videos:Clip Artist V" {
			t.Errorf("unexpected searches %v", dest.Searches)
		}
	})

	t.Run("explains every stage", func(t *testing.T) {
		_, dest := migrationFixtures()
		runner, output, _ := testRunner(t, "", nil, dest)

		err := runApp(runner, "ytmusic", "search", "--title", "Song A", "--artist", "Artist X", "--duration", "3:20")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}

		if len(dest.Searches) != 3 {
			t.Errorf("expected one search per stage, got %v", dest.Searches)
		}
		if out := output.String(); !strings.Contains(out, "accepted yt1") {
			t.Errorf("expected strict acceptance, got:\n%s", out)
		}
	})

	t.Run("explain as JSON keeps errors", func(t *testing.T) {
		_, dest := migrationFixtures()
		runner, output, _ := testRunner(t, "", nil, dest)

		err := runApp(runner, "ytmusic", "search", "--title", "Nothing", "--json")
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}

		var stages []stageJSON
		if err := json.Unmarshal(output.Bytes(), &stages); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(stages) != 3 || stages[2].Error == "" || stages[0].Outcome != nil {
			t.Errorf("unexpected stages %+v", stages)
		}
	})

	t.Run("missing query", func(t *testing.T) {
		runner, _, _ := testRunner(t, "", nil, &tu.FakeDestination{})

		if err := runApp(runner, "ytmusic", "search"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("invalid duration", func(t *testing.T) {
		runner, _, _ := testRunner(t, "", nil, &tu.FakeDestination{})

		err := runApp(runner, "ytmusic", "search", "--title", "T", "--duration", "abc")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("health requires a checker", func(t *testing.T) {
		runner, _, _ := testRunner(t, "", nil, &tu.FakeDestination{})

		if err := runApp(runner, "ytmusic", "health"); !errors.Is(err, shared.ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented, got %v", err)
		}
	})
}

func TestHistory(t *testing.T) {
	seed := func(t *testing.T, runner *Runner) *models.MigrationReport {
		t.Helper()

		runs, closeDB, err := runner.openRuns(runner.config)
		if err != nil {
			t.Fatalf("failed to open history: %v", err)
		}
		defer closeDB()

		lost := models.SourceTrack{Title: "Lost", Artists: []string{"Nobody"}}
		report := &models.MigrationReport{
			RunID:        shared.GenerateID(),
			SourceRef:    "abc",
			PlaylistID:   "PL1",
			PlaylistName: "Seeded",
			ApplyMode:    shared.ApplyModeBatched,
			Outcomes:     []models.MatchOutcome{models.Unmatched(lost)},
			Unmatched:    []models.SourceTrack{lost},
			StartedAt:    time.Now(),
			CompletedAt:  time.Now(),
		}
		if err := runs.SaveRun(context.Background(), report); err != nil {
			t.Fatalf("failed to seed run: %v", err)
		}
		return report
	}

	t.Run("list", func(t *testing.T) {
		runner, output, _ := testRunner(t, "", nil, nil)
		report := seed(t, runner)

		if err := runApp(runner, "history", "list"); err != nil {
			t.Fatalf("history list failed: %v", err)
		}
		if out := output.String(); !strings.Contains(out, report.RunID) || !strings.Contains(out, "Seeded") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("list empty", func(t *testing.T) {
		runner, output, _ := testRunner(t, "", nil, nil)

		if err := runApp(runner, "history", "list"); err != nil {
			t.Fatalf("history list failed: %v", err)
		}
		if !strings.Contains(output.String(), "No migration runs recorded") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("show", func(t *testing.T) {
		runner, output, _ := testRunner(t, "", nil, nil)
		report := seed(t, runner)

		if err := runApp(runner, "history", "show", report.RunID); err != nil {
			t.Fatalf("history show failed: %v", err)
		}
		if !strings.Contains(output.String(), "• Lost - Nobody") {
			t.Errorf("unexpected output:\n%s", output.String())
		}
	})

	t.Run("show as csv", func(t *testing.T) {
		runner, output, _ := testRunner(t, "", nil, nil)
		report := seed(t, runner)

		if err := runApp(runner, "history", "show", "--format", "csv", report.RunID); err != nil {
			t.Fatalf("history show failed: %v", err)
		}
		if !strings.HasPrefix(output.String(), "Position,Title") {
			t.Errorf("expected CSV, got:\n%s", output.String())
		}
	})

	t.Run("delete", func(t *testing.T) {
		runner, _, _ := testRunner(t, "", nil, nil)
		report := seed(t, runner)

		if err := runApp(runner, "history", "delete", report.RunID); err != nil {
			t.Fatalf("history delete failed: %v", err)
		}
		if err := runApp(runner, "history", "show", report.RunID); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound after delete, got %v", err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		runner, _, _ := testRunner(t, "", nil, nil)

		if err := runApp(runner, "history", "show"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("database", func(t *testing.T) {
		runner, output, _ := testRunner(t, "", nil, nil)

		if err := runApp(runner, "setup", "database"); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}

		tu.AssertFileExists(t, runner.config.Database.Path)
		if !strings.Contains(output.String(), "schema version 1") {
			t.Errorf("unexpected output %q", output.String())
		}

		db, err := shared.NewDatabase(runner.config.Database.Path)
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()
		if _, err := repositories.NewRunRepository(db).List(context.Background(), 0); err != nil {
			t.Errorf("expected runs table to exist: %v", err)
		}
	})

	t.Run("config", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: io.Discard})
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := runApp(runner, "setup", "config", "--config", path); err != nil {
			t.Fatalf("setup config failed: %v", err)
		}
		tu.AssertFileExists(t, path)

		if _, err := shared.LoadConfig(path); err != nil {
			t.Errorf("written config should load: %v", err)
		}
		if err := runApp(runner, "setup", "config", "--config", path); err == nil {
			t.Error("expected error when the config already exists")
		}
	})

	t.Run("config flag selects file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.toml")
		dbPath := filepath.Join(t.TempDir(), "custom.db")
		body := "[database]\npath = \"" + filepath.ToSlash(dbPath) + "\"\n"
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: io.Discard})
		if err := runApp(runner, "setup", "database", "--config", path); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}
		tu.AssertFileExists(t, dbPath)
	})
}
