package matching

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytmigrate/internal/models"
	"github.com/desertthunder/ytmigrate/internal/shared"
)

// Searcher runs a destination catalog search. Results must be in search-ranked order.
type Searcher interface {
	SearchCandidates(ctx context.Context, query string, kind models.Kind) ([]models.CandidateResult, error)
}

// QueryShape decides which artists are appended to the title in a search query.
type QueryShape int

const (
	QueryAllArtists QueryShape = iota
	QueryMainArtist
)

// BuildQuery renders the search query for track.
func (q QueryShape) BuildQuery(track models.SourceTrack) string {
	artists := track.JoinedArtists()
	if q == QueryMainArtist {
		artists = track.MainArtist()
	}
	return strings.TrimSpace(track.Title + " " + artists)
}

// Strategy is one stage of the match cascade.
//
// Select never searches; it only picks from the candidates it is handed and returns [shared.ErrNoCandidate] when
// none is acceptable.
type Strategy interface {
	Method() models.MatchMethod
	Kind() models.Kind
	Query(track models.SourceTrack) string
	Select(track models.SourceTrack, candidates []models.CandidateResult) (models.MatchOutcome, error)
}

// ScoredCandidate pairs a candidate with its score under a stage's profile.
//
// Score is nil for stages that do not score (video fallback).
type ScoredCandidate struct {
	Candidate models.CandidateResult
	Score     *Score
	Eligible  bool // passes the artist gate
}

// ScoredStrategy accepts the best gated candidate scoring above Threshold.
type ScoredStrategy struct {
	Name      models.MatchMethod
	Profile   Profile
	Threshold float64
	Shape     QueryShape
}

func (s ScoredStrategy) Method() models.MatchMethod { return s.Name }
func (s ScoredStrategy) Kind() models.Kind          { return models.KindSong }

func (s ScoredStrategy) Query(track models.SourceTrack) string {
	return s.Shape.BuildQuery(track)
}

// Rank scores every candidate in search order.
func (s ScoredStrategy) Rank(track models.SourceTrack, candidates []models.CandidateResult) []ScoredCandidate {
	ranked := make([]ScoredCandidate, len(candidates))
	for i, c := range candidates {
		score := s.Profile.Score(track, c)
		ranked[i] = ScoredCandidate{Candidate: c, Score: &score, Eligible: score.PassesGate()}
	}
	return ranked
}

// Select keeps the highest scoring eligible candidate. Ties keep the earlier candidate.
func (s ScoredStrategy) Select(track models.SourceTrack, candidates []models.CandidateResult) (models.MatchOutcome, error) {
	var best *ScoredCandidate
	ranked := s.Rank(track, candidates)
	for i := range ranked {
		sc := &ranked[i]
		if !sc.Eligible {
			continue
		}
		if best == nil || sc.Score.Overall > best.Score.Overall {
			best = sc
		}
	}

	if best == nil {
		return models.MatchOutcome{}, fmt.Errorf("%w: %s stage had no eligible candidates among %d", shared.ErrNoCandidate, s.Name, len(candidates))
	}
	if best.Score.Overall <= s.Threshold {
		return models.MatchOutcome{}, fmt.Errorf("%w: %s best score %.1f is not above %.1f", shared.ErrNoCandidate, s.Name, best.Score.Overall, s.Threshold)
	}

	overall := best.Score.Overall
	candidate := best.Candidate
	return models.MatchOutcome{
		Track:      track,
		ExternalID: candidate.ExternalID,
		Method:     s.Name,
		Score:      &overall,
		Candidate:  &candidate,
	}, nil
}

// VideoStrategy falls back to music videos, preferring one within Tolerance seconds of the source duration.
type VideoStrategy struct {
	Tolerance int
}

func (VideoStrategy) Method() models.MatchMethod { return models.MethodVideo }
func (VideoStrategy) Kind() models.Kind          { return models.KindVideo }

func (VideoStrategy) Query(track models.SourceTrack) string {
	return QueryAllArtists.BuildQuery(track)
}

// Select picks the first video within tolerance, or the first video when none is.
func (v VideoStrategy) Select(track models.SourceTrack, candidates []models.CandidateResult) (models.MatchOutcome, error) {
	if len(candidates) == 0 {
		return models.MatchOutcome{}, fmt.Errorf("%w: video search returned nothing", shared.ErrNoCandidate)
	}

	chosen := candidates[0]
	for _, c := range candidates {
		if v.withinTolerance(track, c) {
			chosen = c
			break
		}
	}

	return models.MatchOutcome{
		Track:      track,
		ExternalID: chosen.ExternalID,
		Method:     models.MethodVideo,
		Candidate:  &chosen,
	}, nil
}

func (v VideoStrategy) withinTolerance(track models.SourceTrack, c models.CandidateResult) bool {
	delta := c.DurationSeconds - track.DurationSeconds
	if delta < 0 {
		delta = -delta
	}
	return delta <= v.Tolerance
}

// Cascade tries each strategy in order and stops at the first accepted match.
type Cascade struct {
	stages []Strategy
	logger *log.Logger
}

// NewCascade builds a cascade over stages. A nil logger discards output.
func NewCascade(logger *log.Logger, stages ...Strategy) *Cascade {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Cascade{stages: stages, logger: logger}
}

// Stages returns the configured strategies in evaluation order.
func (c *Cascade) Stages() []Strategy {
	return c.stages
}

// Resolve runs the cascade for a single track and always returns an outcome.
//
// Search failures are logged and count as an empty result for that stage.
func (c *Cascade) Resolve(ctx context.Context, searcher Searcher, track models.SourceTrack) models.MatchOutcome {
	for _, stage := range c.stages {
		query := stage.Query(track)
		candidates, err := searcher.SearchCandidates(ctx, query, stage.Kind())
		if err != nil {
			c.logger.Warn("search failed", "stage", stage.Method(), "query", query, "error", err)
			continue
		}

		outcome, err := stage.Select(track, candidates)
		if err != nil {
			c.logger.Debug("stage rejected track", "stage", stage.Method(), "track", track.String(), "reason", err)
			continue
		}

		c.logger.Debug("matched", "method", outcome.Method, "track", track.String(), "id", outcome.ExternalID)
		return outcome
	}
	return models.Unmatched(track)
}

// StageReport is the diagnostic view of a single stage evaluation.
type StageReport struct {
	Method     models.MatchMethod
	Query      string
	Kind       models.Kind
	Candidates []ScoredCandidate
	Outcome    *models.MatchOutcome // nil when the stage rejected the track
	Err        error
}

// Explain evaluates every stage without short-circuiting and reports each candidate's score.
func (c *Cascade) Explain(ctx context.Context, searcher Searcher, track models.SourceTrack) []StageReport {
	reports := make([]StageReport, 0, len(c.stages))
	for _, stage := range c.stages {
		report := StageReport{Method: stage.Method(), Query: stage.Query(track), Kind: stage.Kind()}

		candidates, err := searcher.SearchCandidates(ctx, report.Query, report.Kind)
		if err != nil {
			report.Err = err
			reports = append(reports, report)
			continue
		}

		if scored, ok := stage.(ScoredStrategy); ok {
			report.Candidates = scored.Rank(track, candidates)
		} else {
			report.Candidates = make([]ScoredCandidate, len(candidates))
			for i, cand := range candidates {
				report.Candidates[i] = ScoredCandidate{Candidate: cand, Eligible: true}
			}
		}

		if outcome, err := stage.Select(track, candidates); err != nil {
			report.Err = err
		} else {
			report.Outcome = &outcome
		}
		reports = append(reports, report)
	}
	return reports
}
