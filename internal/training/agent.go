// Package training adapts evaluation weights offline, either by self-play
// between perturbed weight vectors or by a heuristic-error gradient pass over
// recorded games.
package training

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	"lukechampine.com/frand"

	"github.com/hailam/jumpsturdy/internal/board"
	"github.com/hailam/jumpsturdy/internal/engine"
)

// ErrNoMoves is returned by an agent asked to move without a legal move.
var ErrNoMoves = errors.New("no legal moves")

// Agent picks moves. Implementations must not modify pos.
type Agent interface {
	Choose(ctx context.Context, pos *board.Position, side board.Color, turn int) (board.Move, error)
}

// SearchAgent plays with its own engine and weights.
type SearchAgent struct {
	Engine *engine.Engine

	// Limits, when set, replace the budget table.
	Limits engine.Limits

	// Remaining is the agent's clock. Zero means the clock is not tracked.
	Remaining time.Duration
}

// NewSearchAgent creates a search agent with a private transposition table
// of ttSizeMB megabytes.
func NewSearchAgent(w engine.Weights, ttSizeMB int) *SearchAgent {
	return &SearchAgent{Engine: engine.NewEngine(ttSizeMB, w)}
}

// Choose implements Agent.
func (a *SearchAgent) Choose(ctx context.Context, pos *board.Position, side board.Color, turn int) (board.Move, error) {
	start := time.Now()

	var move board.Move
	if a.Limits.Depth > 0 || a.Limits.MoveTime > 0 {
		move, _ = a.Engine.BestMove(ctx, pos, side, a.Limits)
	} else {
		move, _ = a.Engine.Think(ctx, pos, side, turn, a.Remaining)
	}

	if a.Remaining > 0 {
		a.Remaining -= time.Since(start)
		if a.Remaining <= 0 {
			a.Remaining = time.Millisecond
		}
	}

	if move == board.NoMove {
		return move, ErrNoMoves
	}
	return move, nil
}

// RandomAgent plays a uniformly random legal move.
type RandomAgent struct {
	rng *frand.RNG
}

// NewRandomAgent creates a random agent whose choices are fixed by seed.
func NewRandomAgent(seed uint64) *RandomAgent {
	return &RandomAgent{rng: newRNG(seed)}
}

// Choose implements Agent.
func (a *RandomAgent) Choose(ctx context.Context, pos *board.Position, side board.Color, turn int) (board.Move, error) {
	moves := pos.GenerateMoves(side)
	if moves.Len() == 0 {
		return board.NoMove, ErrNoMoves
	}
	return moves.Get(a.rng.Intn(moves.Len())), nil
}

// PlayerKind selects the agent implementation used by the training loops.
type PlayerKind string

const (
	PlayerSearch PlayerKind = "search"
	PlayerRandom PlayerKind = "random"
)

// PlayerConfig describes how training agents are built.
type PlayerConfig struct {
	Kind     PlayerKind
	TTSizeMB int
	Limits   engine.Limits // zero uses the budget table
	Clock    time.Duration // per-game clock for the budget table, zero for none
}

// NewAgent builds an agent playing with w. seed only matters for random
// agents.
func (pc PlayerConfig) NewAgent(w engine.Weights, seed uint64) Agent {
	if pc.Kind == PlayerRandom {
		return NewRandomAgent(seed)
	}

	ttSize := pc.TTSizeMB
	if ttSize <= 0 {
		ttSize = 16
	}
	a := NewSearchAgent(w, ttSize)
	a.Limits = pc.Limits
	a.Remaining = pc.Clock
	return a
}

// newRNG derives a ChaCha8 generator from a 64-bit seed.
func newRNG(seed uint64) *frand.RNG {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	return frand.NewCustom(key[:], 1024, 8)
}
