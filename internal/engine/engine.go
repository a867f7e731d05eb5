package engine

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/hailam/jumpsturdy/internal/board"
)

// SearchInfo contains information about the current search.
type SearchInfo struct {
	Depth    int // last completed depth, 0 if the fallback search was used
	Score    float64
	Nodes    uint64
	Time     time.Duration
	Move     board.Move
	HashFull int // Permille of hash table used
}

// Limits specifies constraints on the search.
type Limits struct {
	Depth    int           // Maximum depth (0 = MaxDepth)
	MoveTime time.Duration // Time for this move (0 = no limit)
}

// Engine is the Jump Sturdy AI engine for one player.
type Engine struct {
	searcher *Searcher
	tt       *TranspositionTable
	weights  Weights
	budgets  BudgetTable

	// TT scores are from the agent's point of view and are dropped when the
	// engine starts playing the other color.
	agent board.Color

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new engine with the given transposition table size in
// MB and evaluation weights.
func NewEngine(ttSizeMB int, w Weights) *Engine {
	tt := NewTranspositionTable(ttSizeMB)
	return &Engine{
		searcher: NewSearcher(tt, w, DefaultSearchOptions),
		tt:       tt,
		weights:  w,
		budgets:  DefaultBudgetTable(),
		agent:    board.NoColor,
	}
}

// Weights returns a copy of the engine's evaluation weights.
func (e *Engine) Weights() Weights {
	return e.weights
}

// SetWeights replaces the evaluation weights. Cached scores were computed
// with the old weights, so the caches are cleared.
func (e *Engine) SetWeights(w Weights) {
	e.weights = w
	e.searcher.SetWeights(w)
	e.tt.Clear()
}

// SetOptions sets the search options.
func (e *Engine) SetOptions(opts SearchOptions) {
	e.searcher.opts = opts
}

// SetBudgets replaces the budget table used by Think.
func (e *Engine) SetBudgets(bt BudgetTable) {
	e.budgets = bt
}

// Think picks a move for side using the budget for turn and the remaining
// clock.
func (e *Engine) Think(ctx context.Context, pos *board.Position, side board.Color, turn int, remaining time.Duration) (board.Move, SearchInfo) {
	return e.BestMove(ctx, pos, side, e.budgets.Limits(turn, remaining))
}

// BestMove runs an iterative-deepening search for side and returns the move
// of the deepest completed iteration. pos is not modified. NoMove is only
// returned when side has no legal move.
func (e *Engine) BestMove(ctx context.Context, pos *board.Position, side board.Color, limits Limits) (board.Move, SearchInfo) {
	if side != e.agent {
		// Stored and cached scores are from the previous agent's side.
		e.tt.Clear()
		e.searcher.evals.Clear()
		e.agent = side
	}

	startTime := time.Now()
	work := pos.Copy()
	e.searcher.Reset(work, side)

	maxDepth := MaxDepth
	if limits.Depth > 0 {
		maxDepth = limits.Depth
	}

	searchCtx := ctx
	if limits.MoveTime > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, limits.MoveTime)
		defer cancel()
	}

	var info SearchInfo
	for depth := 1; depth <= maxDepth; depth++ {
		score, move, err := e.searcher.Search(searchCtx, depth)
		if err != nil {
			e.checkSearchErr(err)
			break
		}
		if move == board.NoMove {
			break
		}

		info = SearchInfo{
			Depth:    depth,
			Score:    score,
			Nodes:    e.searcher.Nodes(),
			Time:     time.Since(startTime),
			Move:     move,
			HashFull: e.tt.HashFull(),
		}
		if e.OnInfo != nil {
			e.OnInfo(info)
		}

		// A proven win cannot be improved by searching deeper.
		if e.searcher.opts.Cutoff && math.IsInf(score, 1) {
			break
		}
	}

	if info.Move == board.NoMove {
		info = e.fallback(ctx, work, side)
		info.Time = time.Since(startTime)
	}

	log.Debug().
		Str("side", side.String()).
		Str("move", info.Move.String()).
		Int("depth", info.Depth).
		Str("score", ScoreToString(info.Score)).
		Uint64("nodes", info.Nodes).
		Dur("elapsed", info.Time).
		Float64("tt-hit-rate", e.tt.HitRate()).
		Msg("best-move")

	return info.Move, info
}

// fallback is used when no iteration finished in time: a depth-1 search that
// ignores the deadline, then any legal move.
func (e *Engine) fallback(ctx context.Context, pos *board.Position, side board.Color) SearchInfo {
	e.searcher.Reset(pos, side)
	score, move, err := e.searcher.Search(context.WithoutCancel(ctx), 1)
	if err != nil {
		e.checkSearchErr(err)
	}
	if move != board.NoMove {
		return SearchInfo{Depth: 1, Score: score, Nodes: e.searcher.Nodes(), Move: move}
	}

	moves := pos.GenerateMoves(side)
	if moves.Len() == 0 {
		return SearchInfo{Score: math.Inf(-1)}
	}
	return SearchInfo{Move: moves.Get(0), Score: math.NaN()}
}

// checkSearchErr aborts on anything other than an expired deadline or a
// cancelled context; those are the only errors a correct search returns.
func (e *Engine) checkSearchErr(err error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return
	}
	log.Panic().Err(err).Msg("search-failed")
}

// Clear clears the transposition table and other caches.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.searcher.evals.Clear()
	e.agent = board.NoColor
}

// Perft counts the leaf nodes of the move tree to depth, side moving first.
func (e *Engine) Perft(pos *board.Position, side board.Color, depth int) uint64 {
	if depth == 0 || pos.GameOver() != board.Ongoing {
		return 1
	}

	moves := pos.GenerateMoves(side)
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		if outcome := pos.Apply(moves.Get(i)); !outcome.OK() {
			log.Panic().Err(outcome.Err()).Str("move", moves.Get(i).String()).Msg("perft-apply")
		}
		nodes += e.Perft(pos, side.Other(), depth-1)
		if err := pos.Undo(); err != nil {
			log.Panic().Err(err).Msg("perft-undo")
		}
	}

	return nodes
}

// Evaluate returns the static evaluation of a position for us with the
// engine's weights.
func (e *Engine) Evaluate(pos *board.Position, us board.Color) Evaluation {
	return Evaluate(pos, us, &e.weights)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score float64) string {
	switch {
	case math.IsInf(score, 1):
		return "win"
	case math.IsInf(score, -1):
		return "loss"
	case math.IsNaN(score):
		return "unknown"
	}
	return strconv.FormatFloat(score, 'f', 4, 64)
}
