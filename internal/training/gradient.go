package training

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hailam/jumpsturdy/internal/board"
	"github.com/hailam/jumpsturdy/internal/engine"
	"github.com/hailam/jumpsturdy/internal/storage"
)

// GradientConfig configures the heuristic-error gradient loop.
type GradientConfig struct {
	Games        int
	LearningRate float64
	Discount     float64 // per-ply discount of the final reward
	Reward       float64 // reward for a win of the trained side; losses and draws get 0
	Side         board.Color
	MaxPlies     int
	Seed         uint64
	Start        string // setup string, empty for the standard start
	Trained      PlayerConfig
	Opponent     PlayerConfig
}

// DefaultGradientConfig trains Blue from random-move games.
func DefaultGradientConfig() GradientConfig {
	return GradientConfig{
		Games:        100,
		LearningRate: 0.1,
		Discount:     0.95,
		Reward:       100,
		Side:         board.Blue,
		MaxPlies:     DefaultMaxPlies,
		Seed:         1,
		Trained:      PlayerConfig{Kind: PlayerRandom},
		Opponent:     PlayerConfig{Kind: PlayerRandom},
	}
}

// Step is the trained side's evaluation of one recorded position.
type Step = engine.Evaluation

// GameReport summarises the update made after one game.
type GameReport struct {
	Index       int
	Game        GameRecord
	Reward      float64
	MeanError   float64 // mean heuristic error before the update
	Improvement float64 // total reduction of |error| over all plies
	Weights     engine.Weights
}

// GradientLoop adjusts weights toward the discounted game outcome.
type GradientLoop struct {
	cfg     GradientConfig
	weights engine.Weights
	store   *storage.Storage
	start   *board.Position

	// Callbacks
	OnGame func(GameReport)
}

// NewGradientLoop creates the loop. store may be nil.
func NewGradientLoop(cfg GradientConfig, w engine.Weights, store *storage.Storage) (*GradientLoop, error) {
	start := board.NewPosition()
	if cfg.Start != "" {
		var err error
		if start, err = board.ParseSetup(cfg.Start); err != nil {
			return nil, errors.Wrap(err, "gradient start position")
		}
	}
	if cfg.Side != board.Blue && cfg.Side != board.Red {
		return nil, errors.Errorf("gradient: trained side %s", cfg.Side)
	}

	w.Normalize()
	return &GradientLoop{cfg: cfg, weights: w, store: store, start: start}, nil
}

// Weights returns a copy of the current weights.
func (gl *GradientLoop) Weights() engine.Weights {
	return gl.weights
}

// Run plays cfg.Games games one after another, updating the weights after
// each, and returns the final weights.
func (gl *GradientLoop) Run(ctx context.Context) (engine.Weights, error) {
	for i := 0; i < gl.cfg.Games; i++ {
		if _, err := gl.PlayOnce(ctx, i); err != nil {
			return gl.weights, err
		}
	}
	return gl.weights, nil
}

// PlayOnce plays game index, records the trained side's evaluation of every
// position and applies the update.
func (gl *GradientLoop) PlayOnce(ctx context.Context, index int) (GameReport, error) {
	side := gl.cfg.Side
	seed := gl.cfg.Seed + uint64(index)*2

	var agents [2]Agent
	agents[side] = gl.cfg.Trained.NewAgent(gl.weights, seed)
	agents[side.Other()] = gl.cfg.Opponent.NewAgent(gl.weights, seed+1)

	var history []Step
	record := func(pos *board.Position, ply int) {
		history = append(history, engine.Evaluate(pos, side, &gl.weights))
	}

	rec, err := PlayGame(ctx, agents, gl.start, gl.cfg.MaxPlies, record)
	if err != nil {
		return GameReport{}, errors.Wrapf(err, "gradient game %d", index)
	}

	reward := 0.0
	if rec.Winner() == side {
		reward = gl.cfg.Reward
	}

	report := GameReport{Index: index, Game: rec, Reward: reward}
	report.MeanError, report.Improvement = Backpropagate(&gl.weights, history, reward, gl.cfg.Discount, gl.cfg.LearningRate)
	report.Weights = gl.weights

	if err := gl.record(report); err != nil {
		return report, err
	}
	return report, nil
}

// Backpropagate walks history from the last position to the first. The
// target of each position is the final reward discounted by its distance
// from the end; each feature's weight moves by its share of the score times
// the error:
//
//	w += lr * (c/h) * err * w/c
//
// Features with no contribution and positions scored 0 are skipped. The
// weights are renormalised afterwards. It returns the mean error and the
// total reduction of |error| measured with the updated weights.
func Backpropagate(w *engine.Weights, history []Step, reward, discount, lr float64) (meanErr, improvement float64) {
	if len(history) == 0 {
		return 0, 0
	}

	errs := make([]float64, len(history))
	target := reward
	for i := len(history) - 1; i >= 0; i-- {
		h := history[i].Total
		errs[i] = target - h

		if h != 0 && !math.IsNaN(h) {
			for f := engine.Feature(0); f < engine.NumFeatures; f++ {
				c := history[i].Contributions[f]
				if c.Value == 0 {
					continue
				}
				featureErr := c.Value / h * errs[i]
				w[f] += lr * featureErr * c.Weight / c.Value
			}
		}

		target *= discount
	}
	w.Normalize()

	// Rescore the recorded features with the new weights.
	target = reward
	for i := len(history) - 1; i >= 0; i-- {
		h := 0.0
		for f := engine.Feature(0); f < engine.NumFeatures; f++ {
			h += w[f] * history[i].Contributions[f].Raw
		}
		improvement += math.Abs(errs[i]) - math.Abs(target-h)
		target *= discount
	}

	meanErr = lo.Sum(errs) / float64(len(errs))
	return meanErr, improvement
}

func (gl *GradientLoop) record(r GameReport) error {
	log.Info().
		Int("game", r.Index).
		Str("winner", r.Game.WinnerName()).
		Int("plies", r.Game.Plies()).
		Float64("reward", r.Reward).
		Float64("mean-error", r.MeanError).
		Float64("improvement", r.Improvement).
		Msg("gradient-game")

	if gl.OnGame != nil {
		gl.OnGame(r)
	}

	if gl.store == nil {
		return nil
	}
	err := gl.store.SaveIteration(storage.Iteration{
		Loop:     storage.LoopGradient,
		Index:    r.Index,
		Winner:   r.Game.WinnerName(),
		Plies:    r.Game.Plies(),
		Duration: r.Game.Duration,
		Weights:  r.Weights.Map(),
	})
	if err != nil {
		return err
	}
	return gl.store.RecordGame(storage.GameResult{
		Winner:     r.Game.WinnerName(),
		TrainedWon: r.Game.Winner() == gl.cfg.Side,
		Loop:       storage.LoopGradient,
		Plies:      r.Game.Plies(),
		Duration:   r.Game.Duration,
	})
}
