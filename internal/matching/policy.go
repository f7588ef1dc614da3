package matching

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytmigrate/internal/models"
	"github.com/desertthunder/ytmigrate/internal/shared"
)

// StagePolicy parameterizes a scored stage.
type StagePolicy struct {
	Weights    Weights
	Threshold  float64
	ArtistMode ArtistMode
	Query      QueryShape
}

// Policy is the complete matching configuration for the cascade.
type Policy struct {
	Strict         StagePolicy
	Relaxed        StagePolicy
	VideoTolerance int // seconds
}

// DefaultPolicy returns the policy built from the embedded default configuration.
func DefaultPolicy() Policy {
	return PolicyFromConfig(shared.DefaultConfig().Matching)
}

// PolicyFromConfig maps the [matching] config section onto a Policy.
//
// Artist comparison and query shape are fixed per stage: strict compares and searches with every artist, relaxed with
// the main artist only.
func PolicyFromConfig(cfg shared.MatchingConfig) Policy {
	return Policy{
		Strict: StagePolicy{
			Weights:    weightsOf(cfg.Strict),
			Threshold:  cfg.Strict.Threshold,
			ArtistMode: ArtistsAll,
			Query:      QueryAllArtists,
		},
		Relaxed: StagePolicy{
			Weights:    weightsOf(cfg.Relaxed),
			Threshold:  cfg.Relaxed.Threshold,
			ArtistMode: ArtistsMain,
			Query:      QueryMainArtist,
		},
		VideoTolerance: cfg.Video.DurationTolerance,
	}
}

func weightsOf(s shared.StageConfig) Weights {
	return Weights{Title: s.TitleWeight, Artist: s.ArtistWeight, Duration: s.DurationWeight}
}

// Strategies returns the ordered strict, relaxed and video stages.
func (p Policy) Strategies() []Strategy {
	return []Strategy{
		p.Strict.strategy(models.MethodStrict),
		p.Relaxed.strategy(models.MethodRelaxed),
		VideoStrategy{Tolerance: p.VideoTolerance},
	}
}

// Cascade builds a [Cascade] over [Policy.Strategies].
func (p Policy) Cascade(logger *log.Logger) *Cascade {
	return NewCascade(logger, p.Strategies()...)
}

func (s StagePolicy) strategy(method models.MatchMethod) ScoredStrategy {
	return ScoredStrategy{
		Name:      method,
		Profile:   Profile{Weights: s.Weights, ArtistMode: s.ArtistMode},
		Threshold: s.Threshold,
		Shape:     s.Query,
	}
}
