// package formatter renders migration reports as JSON, CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/ytmigrate/internal/models"
	"github.com/desertthunder/ytmigrate/internal/shared"
)

// Format names a report encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
)

// Extension returns the file extension used for the format, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	default:
		return "." + string(f)
	}
}

// ParseFormat accepts a format name or a common alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidArgument, s)
	}
}

// FormatFromPath infers the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), ".")); err == nil {
		return f
	}
	return FormatJSON
}

// ExportToJSON renders the full report, outcomes included.
func ExportToJSON(report *models.MigrationReport) ([]byte, error) {
	return shared.MarshalJSON(report, true)
}

// ExportToCSV writes one row per source track with columns: Position, Title, Artists, Album, Duration, Method,
// ExternalID, Score, Status
func ExportToCSV(report *models.MigrationReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Title", "Artists", "Album", "Duration", "Method", "ExternalID", "Score", "Status"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	statuses := report.Statuses()
	for i, o := range report.Outcomes {
		score := ""
		if o.Score != nil {
			score = strconv.FormatFloat(*o.Score, 'f', 1, 64)
		}

		record := []string{
			strconv.Itoa(i + 1),
			o.Track.Title,
			strings.Join(o.Track.Artists, "; "),
			o.Track.Album,
			shared.FormatDuration(o.Track.DurationSeconds),
			string(o.Method),
			o.ExternalID,
			score,
			string(statuses[i]),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a summary followed by the tracks that need attention.
func ExportToMarkdown(report *models.MigrationReport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", report.PlaylistName))
	buf.WriteString(fmt.Sprintf("**Source**: %s\n", report.SourceRef))
	buf.WriteString(fmt.Sprintf("**Playlist**: %s\n", report.PlaylistID))
	buf.WriteString(fmt.Sprintf("**Run**: %s\n\n", report.RunID))

	buf.WriteString("## Summary\n\n")
	buf.WriteString("| Metric | Value |\n|---|---|\n")
	for _, row := range summaryRows(report) {
		buf.WriteString(fmt.Sprintf("| %s | %s |\n", row[0], row[1]))
	}

	if len(report.Unmatched) > 0 {
		buf.WriteString("\n## Unmatched\n\n")
		for i, track := range report.Unmatched {
			buf.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, track, shared.FormatDuration(track.DurationSeconds)))
		}
	}

	if len(report.Failed) > 0 {
		buf.WriteString("\n## Failed to add\n\n")
		for i, o := range report.Failed {
			buf.WriteString(fmt.Sprintf("%d. %s (`%s`)\n", i+1, o.Track, o.ExternalID))
		}
	}

	if len(report.Flagged) > 0 {
		buf.WriteString("\n## Video matches to review\n\n")
		for i, o := range report.Flagged {
			buf.WriteString(fmt.Sprintf("%d. %s [https://music.youtube.com/watch?v=%s](https://music.youtube.com/watch?v=%s)\n",
				i+1, o.Track, o.ExternalID, o.ExternalID))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a report to plain text format
func ExportToText(report *models.MigrationReport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s (%s)\n", report.PlaylistName, report.PlaylistID))
	buf.WriteString(fmt.Sprintf("Source: %s\n", report.SourceRef))
	for _, row := range summaryRows(report) {
		buf.WriteString(fmt.Sprintf("%s: %s\n", row[0], row[1]))
	}

	if len(report.Unmatched) > 0 {
		buf.WriteString("\nUnmatched:\n")
		for i, track := range report.Unmatched {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, track))
		}
	}

	if len(report.Failed) > 0 {
		buf.WriteString("\nFailed:\n")
		for i, o := range report.Failed {
			buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, o.Track))
		}
	}

	return buf.Bytes(), nil
}

// Export dispatches to the exporter for format.
func Export(report *models.MigrationReport, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(report)
	case FormatCSV:
		return ExportToCSV(report)
	case FormatMarkdown:
		return ExportToMarkdown(report)
	case FormatText:
		return ExportToText(report)
	default:
		return nil, fmt.Errorf("%w: unknown report format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteReport exports a report to a file.
//
// Defaults to {run ID}_report{ext} as the filename. An empty format is inferred from the path.
func WriteReport(report *models.MigrationReport, path string, format Format) (string, error) {
	if format == "" {
		format = FormatFromPath(path)
	}
	if path == "" {
		path = report.RunID + "_report" + format.Extension()
	}

	data, err := Export(report, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}

func summaryRows(report *models.MigrationReport) [][2]string {
	counts := report.MethodCounts()

	count := "unverified"
	if report.CountVerified {
		count = strconv.Itoa(report.DestinationCount)
	}

	return [][2]string{
		{"Tracks", strconv.Itoa(report.Total())},
		{"Added", fmt.Sprintf("%d (%.1f%%)", report.Added, report.MatchPercentage())},
		{"Strict", strconv.Itoa(counts[models.MethodStrict])},
		{"Relaxed", strconv.Itoa(counts[models.MethodRelaxed])},
		{"Video", strconv.Itoa(counts[models.MethodVideo])},
		{"Unmatched", strconv.Itoa(report.UnmatchedCount())},
		{"Failed", strconv.Itoa(report.FailedCount())},
		{"Destination count", count},
	}
}
