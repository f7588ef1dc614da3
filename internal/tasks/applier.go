package tasks

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytmigrate/internal/models"
	"github.com/desertthunder/ytmigrate/internal/shared"
)

// ItemAdder appends identifiers to a destination playlist. A nil error means the destination accepted them.
type ItemAdder interface {
	AddItems(ctx context.Context, playlistID string, ids []string) error
}

// ApplyResult is the outcome of one destination-mutating call.
//
// Err wraps [shared.ErrDestinationMutation] when the call failed; every outcome in the call is then considered failed.
type ApplyResult struct {
	Outcomes []models.MatchOutcome
	Err      error
}

// Applier commits accepted matches to the destination playlist.
//
// Implementations never retry and never return errors directly: failures are reported per call in [ApplyResult].
type Applier interface {
	// Enqueue hands an accepted outcome to the applier, returning results of any calls it made.
	Enqueue(ctx context.Context, outcome models.MatchOutcome) []ApplyResult
	// Flush issues every pending call.
	Flush(ctx context.Context) []ApplyResult
}

// ApplyOpts configures [NewApplier].
type ApplyOpts struct {
	Mode       string // shared.ApplyModeBatched or shared.ApplyModeSingle
	BatchSize  int
	BatchDelay time.Duration
	ItemDelay  time.Duration
	Sleep      func(time.Duration) // defaults to time.Sleep
	Logger     *log.Logger
}

// NewApplier returns the applier for opts.Mode writing to playlistID.
func NewApplier(dest ItemAdder, playlistID string, opts ApplyOpts) (Applier, error) {
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	switch opts.Mode {
	case shared.ApplyModeBatched, "":
		if opts.BatchSize <= 0 {
			return nil, fmt.Errorf("%w: batch size must be positive, got %d", shared.ErrInvalidArgument, opts.BatchSize)
		}
		return &BatchApplier{
			dest:       dest,
			playlistID: playlistID,
			size:       opts.BatchSize,
			delay:      opts.BatchDelay,
			sleep:      opts.Sleep,
			logger:     opts.Logger,
		}, nil
	case shared.ApplyModeSingle:
		return &SingleApplier{
			dest:       dest,
			playlistID: playlistID,
			delay:      opts.ItemDelay,
			sleep:      opts.Sleep,
			logger:     opts.Logger,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown apply mode %q", shared.ErrInvalidArgument, opts.Mode)
	}
}

func addOutcomes(ctx context.Context, dest ItemAdder, playlistID string, outcomes []models.MatchOutcome) ApplyResult {
	ids := make([]string, len(outcomes))
	for i, o := range outcomes {
		ids[i] = o.ExternalID
	}

	result := ApplyResult{Outcomes: outcomes}
	if err := dest.AddItems(ctx, playlistID, ids); err != nil {
		result.Err = fmt.Errorf("%w: %v", shared.ErrDestinationMutation, err)
	}
	return result
}

// BatchApplier accumulates outcomes and adds them in fixed-size chunks on Flush, pausing between chunks.
type BatchApplier struct {
	dest       ItemAdder
	playlistID string
	size       int
	delay      time.Duration
	sleep      func(time.Duration)
	logger     *log.Logger
	pending    []models.MatchOutcome
}

func (b *BatchApplier) Enqueue(_ context.Context, outcome models.MatchOutcome) []ApplyResult {
	b.pending = append(b.pending, outcome)
	return nil
}

func (b *BatchApplier) Flush(ctx context.Context) []ApplyResult {
	pending := b.pending
	b.pending = nil

	var results []ApplyResult
	for start := 0; start < len(pending); start += b.size {
		if start > 0 {
			b.sleep(b.delay)
		}

		end := min(start+b.size, len(pending))
		result := addOutcomes(ctx, b.dest, b.playlistID, pending[start:end])
		if result.Err != nil {
			b.logger.Warn("batch add failed", "offset", start, "size", end-start, "error", result.Err)
		} else {
			b.logger.Debug("batch added", "offset", start, "size", end-start)
		}
		results = append(results, result)
	}
	return results
}

// SingleApplier adds each outcome as soon as it is enqueued and pauses after every call.
type SingleApplier struct {
	dest       ItemAdder
	playlistID string
	delay      time.Duration
	sleep      func(time.Duration)
	logger     *log.Logger
}

func (s *SingleApplier) Enqueue(ctx context.Context, outcome models.MatchOutcome) []ApplyResult {
	result := addOutcomes(ctx, s.dest, s.playlistID, []models.MatchOutcome{outcome})
	if result.Err != nil {
		s.logger.Warn("add failed", "track", outcome.Track.String(), "id", outcome.ExternalID, "error", result.Err)
	}
	s.sleep(s.delay)
	return []ApplyResult{result}
}

func (s *SingleApplier) Flush(context.Context) []ApplyResult {
	return nil
}
