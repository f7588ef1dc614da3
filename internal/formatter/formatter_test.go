package formatter

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/ytmigrate/internal/models"
	"github.com/desertthunder/ytmigrate/internal/shared"
	th "github.com/desertthunder/ytmigrate/internal/testing"
)

func testReport() *models.MigrationReport {
	score := 109.6
	strict := models.MatchOutcome{
		Track:      models.SourceTrack{Title: "Song One", Artists: []string{"Artist One", "Guest"}, Album: "Album One", DurationSeconds: 185},
		ExternalID: "yt1",
		Method:     models.MethodStrict,
		Score:      &score,
	}
	video := models.MatchOutcome{
		Track:      models.SourceTrack{Title: "Clip", Artists: []string{"Artist V"}, DurationSeconds: 200},
		Position:   1,
		ExternalID: "v1",
		Method:     models.MethodVideo,
	}
	rejected := models.MatchOutcome{
		Track:      models.SourceTrack{Title: "Rejected", Artists: []string{"Artist R"}, DurationSeconds: 90},
		Position:   2,
		ExternalID: "yt3",
		Method:     models.MethodRelaxed,
	}
	lost := models.SourceTrack{Title: "Lost Song", Artists: []string{"Nobody"}, DurationSeconds: 61}

	return &models.MigrationReport{
		RunID:            "run-1",
		SourceRef:        "spotify:playlist:abc",
		PlaylistID:       "PL1",
		PlaylistName:     "Migrated",
		Outcomes:         []models.MatchOutcome{strict, video, rejected, models.Unmatched(lost)},
		Added:            2,
		Failed:           []models.MatchOutcome{rejected},
		Unmatched:        []models.SourceTrack{lost},
		Flagged:          []models.MatchOutcome{video},
		DestinationCount: 2,
		CountVerified:    true,
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testReport())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("failed to parse CSV: %v", err)
		}
		if len(records) != 5 {
			t.Fatalf("expected header and 4 rows, got %d", len(records))
		}
		if strings.Join(records[0], ",") != "Position,Title,Artists,Album,Duration,Method,ExternalID,Score,Status" {
			t.Errorf("CSV missing headers, got: %v", records[0])
		}

		first := records[1]
		if first[2] != "Artist One; Guest" || first[4] != "3:05" || first[7] != "109.6" || first[8] != "added" {
			t.Errorf("unexpected first row %v", first)
		}
		if records[3][8] != "failed" {
			t.Errorf("expected rejected track to be failed, got %s", records[3][8])
		}
		if records[4][5] != "none" || records[4][6] != "" || records[4][8] != "unmatched" {
			t.Errorf("unexpected unmatched row %v", records[4])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testReport())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Migrated",
			"| Added | 2 (50.0%) |",
			"| Destination count | 2 |",
			"## Unmatched",
			"1. Lost Song - Nobody [1:01]",
			"## Failed to add",
			"1. Rejected - Artist R (`yt3`)",
			"## Video matches to review",
			"watch?v=v1",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown omits empty sections", func(t *testing.T) {
		report := testReport()
		report.Unmatched = nil
		report.Failed = nil
		report.Flagged = nil
		report.CountVerified = false

		data, err := ExportToMarkdown(report)
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		if strings.Contains(output, "## Unmatched") || strings.Contains(output, "## Failed") {
			t.Errorf("expected no attention sections, got:\n%s", output)
		}
		if !strings.Contains(output, "| Destination count | unverified |") {
			t.Errorf("expected unverified destination count, got:\n%s", output)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testReport())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Playlist: Migrated (PL1)") {
			t.Errorf("Text missing playlist header")
		}
		if !strings.Contains(output, "Unmatched: 1") {
			t.Errorf("Text missing unmatched count")
		}
		if !strings.Contains(output, "1. Lost Song - Nobody") {
			t.Errorf("Text missing unmatched track")
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(testReport())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded models.MigrationReport
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded.Outcomes) != 4 || decoded.Outcomes[3].Method != models.MethodNone {
			t.Errorf("unexpected outcomes %+v", decoded.Outcomes)
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"CSV", FormatCSV},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
		{"text", FormatText},
		{" txt ", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("FormatFromPath", func(t *testing.T) {
		if got := FormatFromPath("out/report.md"); got != FormatMarkdown {
			t.Errorf("expected markdown, got %s", got)
		}
		if got := FormatFromPath("report"); got != FormatJSON {
			t.Errorf("expected json default, got %s", got)
		}
	})
}

func TestWriteReport(t *testing.T) {
	t.Run("infers format from path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "report.csv")

		written, err := WriteReport(testReport(), path, "")
		if err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		if written != path {
			t.Errorf("expected %s, got %s", path, written)
		}

		th.AssertFileExists(t, path)
		if content := th.MustReadFile(t, path); !strings.HasPrefix(content, "Position,Title") {
			t.Errorf("expected CSV content, got %s", content)
		}
	})

	t.Run("default filename", func(t *testing.T) {
		t.Chdir(t.TempDir())

		written, err := WriteReport(testReport(), "", FormatMarkdown)
		if err != nil {
			t.Fatalf("WriteReport failed: %v", err)
		}
		if written != "run-1_report.md" {
			t.Errorf("unexpected default filename %s", written)
		}
		th.AssertFileExists(t, written)
	})

	t.Run("unknown format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.json")
		if _, err := WriteReport(testReport(), path, Format("xml")); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
