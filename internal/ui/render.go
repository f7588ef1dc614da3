package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/ytmigrate/internal/matching"
	"github.com/desertthunder/ytmigrate/internal/models"
	"github.com/desertthunder/ytmigrate/internal/shared"
)

const timeLayout = "2006-01-02 15:04"

// Summary renders the end-of-run report.
func (p *Palette) Summary(report *models.MigrationReport) string {
	var b strings.Builder

	if report.UnmatchedCount() == 0 && report.FailedCount() == 0 {
		b.WriteString(p.OK("✓ Migration Complete!"))
	} else {
		b.WriteString(p.Warn("Migration finished with unmatched tracks"))
	}
	b.WriteString("\n\n")

	counts := report.MethodCounts()
	fmt.Fprintf(&b, "Playlist: %s (%s)\n", report.PlaylistName, report.PlaylistID)
	fmt.Fprintf(&b, "Source: %s\n", report.SourceRef)
	fmt.Fprintf(&b, "Added: %d/%d (%.1f%%)\n", report.Added, report.Total(), report.MatchPercentage())
	fmt.Fprintf(&b, "Matched: strict %d, relaxed %d, video %d\n",
		counts[models.MethodStrict], counts[models.MethodRelaxed], counts[models.MethodVideo])

	switch {
	case !report.CountVerified:
		fmt.Fprintf(&b, "Destination count: %s\n", p.Warn("unverified"))
	case report.DestinationCount != report.Added:
		fmt.Fprintf(&b, "Destination count: %s\n", p.Warn(fmt.Sprintf("%d (expected %d)", report.DestinationCount, report.Added)))
	default:
		fmt.Fprintf(&b, "Destination count: %d\n", report.DestinationCount)
	}

	if len(report.Unmatched) > 0 {
		fmt.Fprintf(&b, "\n%s\n", p.Warn(fmt.Sprintf("Unmatched tracks (%d):", len(report.Unmatched))))
		for _, track := range report.Unmatched {
			fmt.Fprintf(&b, "  • %s\n", track)
		}
	}

	if len(report.Failed) > 0 {
		fmt.Fprintf(&b, "\n%s\n", p.Err(fmt.Sprintf("Failed to add %d tracks:", len(report.Failed))))
		for _, o := range report.Failed {
			fmt.Fprintf(&b, "  • %s\n", o.Track)
		}
	}

	if len(report.Flagged) > 0 {
		fmt.Fprintf(&b, "\n%s\n", p.Help(fmt.Sprintf("Video matches to review (%d):", len(report.Flagged))))
		for _, o := range report.Flagged {
			fmt.Fprintf(&b, "  • %s → %s\n", o.Track, o.ExternalID)
		}
	}

	return b.String()
}

// Runs renders persisted runs as a table, most recent first.
func (p *Palette) Runs(runs []models.RunSummary) string {
	if len(runs) == 0 {
		return p.Help("No migration runs recorded") + "\n"
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		count := "-"
		if run.DestinationCount != nil {
			count = strconv.Itoa(*run.DestinationCount)
		}
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(timeLayout),
			run.PlaylistName,
			run.ApplyMode,
			fmt.Sprintf("%d/%d", run.Added, run.Total),
			strconv.Itoa(run.Unmatched),
			strconv.Itoa(run.Failed),
			count,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.help).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.ok.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("ID", "Started", "Playlist", "Mode", "Added", "Unmatched", "Failed", "Count").
		Rows(rows...)

	return t.Render() + "\n"
}

// Explain renders the per-stage diagnostics produced by [matching.Cascade.Explain].
func (p *Palette) Explain(track models.SourceTrack, reports []matching.StageReport) string {
	var b strings.Builder

	b.WriteString(p.Title(fmt.Sprintf("Matching %q", track.String())))
	b.WriteString("\n")

	for _, report := range reports {
		fmt.Fprintf(&b, "%s %s\n", p.OK(string(report.Method)), p.Help(fmt.Sprintf("(%s) %q", report.Kind, report.Query)))

		if len(report.Candidates) > 0 {
			b.WriteString(p.candidateTable(report))
			b.WriteString("\n")
		}

		switch {
		case report.Outcome != nil:
			fmt.Fprintf(&b, "  → %s %s\n\n", p.OK("accepted"), report.Outcome.ExternalID)
		case report.Err != nil:
			fmt.Fprintf(&b, "  → %s %v\n\n", p.Err("rejected"), report.Err)
		}
	}

	return b.String()
}

func (p *Palette) candidateTable(report matching.StageReport) string {
	selected := ""
	if report.Outcome != nil {
		selected = report.Outcome.ExternalID
	}

	rows := make([][]string, 0, len(report.Candidates))
	for i, sc := range report.Candidates {
		c := sc.Candidate
		mark := ""
		if c.ExternalID == selected {
			mark = "✓"
		}

		overall, title, artist, gate := "-", "-", "-", "-"
		if sc.Score != nil {
			overall = strconv.FormatFloat(sc.Score.Overall, 'f', 1, 64)
			title = strconv.FormatFloat(sc.Score.Title, 'f', 1, 64)
			artist = strconv.FormatFloat(sc.Score.Artist, 'f', 1, 64)
			gate = "no"
			if sc.Eligible {
				gate = "yes"
			}
		}

		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			mark,
			c.Title,
			strings.Join(c.Artists, ", "),
			shared.FormatDuration(c.DurationSeconds),
			c.ExternalID,
			title,
			artist,
			overall,
			gate,
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.help).
		Headers("#", "", "Title", "Artists", "Length", "ID", "Title%", "Artist%", "Score", "Gate").
		Rows(rows...).
		Render()
}
