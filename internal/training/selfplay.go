package training

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/hailam/jumpsturdy/internal/board"
	"github.com/hailam/jumpsturdy/internal/engine"
	"github.com/hailam/jumpsturdy/internal/storage"
)

// TrainConfig configures the self-play perturbation loop.
type TrainConfig struct {
	Iterations int     // games to play
	Step       float64 // how far the baseline moves toward a winner
	Parallel   int     // games played concurrently per batch
	MaxPlies   int
	Seed       uint64
	Start      string // setup string, empty for the standard start
	Player     PlayerConfig
}

// DefaultTrainConfig returns the settings used for tournament tuning.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Iterations: 100,
		Step:       0.002,
		Parallel:   1,
		MaxPlies:   DefaultMaxPlies,
		Seed:       1,
		Player: PlayerConfig{
			Kind:     PlayerSearch,
			TTSizeMB: 16,
			Clock:    12 * time.Second,
		},
	}
}

// Perturbation is the pair of weight vectors one self-play game is played
// with: Red gets baseline+delta, Blue baseline-delta.
type Perturbation struct {
	Delta   engine.Weights
	Vectors [2]engine.Weights // indexed by color
}

// IterationResult reports one finished self-play game.
type IterationResult struct {
	Index    int
	Game     GameRecord
	Baseline engine.Weights // after the update
}

// SelfPlay nudges a baseline weight vector toward the winners of games
// between mirrored perturbations of it.
type SelfPlay struct {
	cfg      TrainConfig
	baseline engine.Weights
	rng      *frand.RNG
	store    *storage.Storage
	start    *board.Position

	// Callbacks
	OnIteration func(IterationResult)
}

// NewSelfPlay creates the loop. store may be nil.
func NewSelfPlay(cfg TrainConfig, baseline engine.Weights, store *storage.Storage) (*SelfPlay, error) {
	if cfg.Parallel < 1 {
		cfg.Parallel = 1
	}
	if cfg.Step <= 0 {
		cfg.Step = DefaultTrainConfig().Step
	}

	start := board.NewPosition()
	if cfg.Start != "" {
		var err error
		if start, err = board.ParseSetup(cfg.Start); err != nil {
			return nil, errors.Wrap(err, "self-play start position")
		}
	}

	return &SelfPlay{
		cfg:      cfg,
		baseline: baseline,
		rng:      newRNG(cfg.Seed),
		store:    store,
		start:    start,
	}, nil
}

// Baseline returns a copy of the current baseline.
func (sp *SelfPlay) Baseline() engine.Weights {
	return sp.baseline
}

// Perturb draws a delta for every feature from its bounds and returns the
// mirrored weight vectors. Bounds are in units of the unnormalised default
// table and are rescaled to the normalised baseline. The bias is kept.
func (sp *SelfPlay) Perturb() Perturbation {
	scale := 1 / engine.RawDefaultSum()

	var p Perturbation
	for f := engine.Feature(0); f < engine.NumFeatures; f++ {
		b := engine.DeltaBounds[f]
		if b.Min == b.Max {
			continue
		}
		p.Delta[f] = (b.Min + sp.rng.Float64()*(b.Max-b.Min)) * scale
	}

	p.Vectors[board.Red] = sp.baseline.Add(p.Delta)
	p.Vectors[board.Blue] = sp.baseline.Sub(p.Delta)
	return p
}

// Update moves baseline toward the winner's vector and renormalises. A draw
// leaves the direction unchanged.
func Update(baseline *engine.Weights, p Perturbation, winner board.Color, step float64) {
	if winner != board.NoColor {
		baseline.Blend(p.Vectors[winner], step)
	}
	baseline.Normalize()
}

// Run plays cfg.Iterations games and returns the final baseline. Games of a
// batch run concurrently against the same baseline snapshot; their updates
// are applied in game order.
func (sp *SelfPlay) Run(ctx context.Context) (engine.Weights, error) {
	for first := 0; first < sp.cfg.Iterations; first += sp.cfg.Parallel {
		n := min(sp.cfg.Parallel, sp.cfg.Iterations-first)

		perturbations := lo.Times(n, func(int) Perturbation { return sp.Perturb() })
		seeds := lo.Times(n, func(int) uint64 { return sp.rng.Uint64n(1 << 62) })
		games := make([]GameRecord, n)

		g, gctx := errgroup.WithContext(ctx)
		for i := range n {
			g.Go(func() error {
				agents := [2]Agent{
					board.Blue: sp.cfg.Player.NewAgent(perturbations[i].Vectors[board.Blue], seeds[i]),
					board.Red:  sp.cfg.Player.NewAgent(perturbations[i].Vectors[board.Red], seeds[i]+1),
				}
				rec, err := PlayGame(gctx, agents, sp.start, sp.cfg.MaxPlies)
				if err != nil {
					return errors.Wrapf(err, "self-play game %d", first+i)
				}
				games[i] = rec
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return sp.baseline, err
		}

		for i, rec := range games {
			Update(&sp.baseline, perturbations[i], rec.Winner(), sp.cfg.Step)
			if err := sp.record(first+i, rec); err != nil {
				return sp.baseline, err
			}
		}
	}

	return sp.baseline, nil
}

func (sp *SelfPlay) record(index int, rec GameRecord) error {
	log.Info().
		Int("iteration", index).
		Str("winner", rec.WinnerName()).
		Int("plies", rec.Plies()).
		Dur("duration", rec.Duration).
		Float64("sum", sp.baseline.Sum()).
		Msg("self-play-game")

	if sp.OnIteration != nil {
		sp.OnIteration(IterationResult{Index: index, Game: rec, Baseline: sp.baseline})
	}

	if sp.store == nil {
		return nil
	}
	err := sp.store.SaveIteration(storage.Iteration{
		Loop:     storage.LoopSelfPlay,
		Index:    index,
		Winner:   rec.WinnerName(),
		Plies:    rec.Plies(),
		Duration: rec.Duration,
		Weights:  sp.baseline.Map(),
	})
	if err != nil {
		return err
	}
	return sp.store.RecordGame(storage.GameResult{
		Winner:   rec.WinnerName(),
		Loop:     storage.LoopSelfPlay,
		Plies:    rec.Plies(),
		Duration: rec.Duration,
		// The baseline learns from whichever side wins.
		TrainedWon: rec.Winner() != board.NoColor,
	})
}
