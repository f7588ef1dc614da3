// Package ui renders migration results for the terminal with lipgloss.
//
// Renderers return plain strings so callers decide where output goes. lipgloss strips colors automatically when the
// output is not a terminal, which keeps redirected output and test assertions readable.
//
//   - [Palette.Summary] : the end-of-run summary, listing unmatched tracks by title and artist
//   - [Palette.Runs] : a table of persisted runs
//   - [Palette.Explain] : per-stage candidate scores for a single track
package ui
