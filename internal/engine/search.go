package engine

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/hailam/jumpsturdy/internal/board"
)

// Search constants
const (
	MaxDepth = 128
)

// SearchOptions toggles search behaviour.
type SearchOptions struct {
	Cutoff bool // stop exploring siblings once alpha >= beta
	Trace  bool // log the board at every node; never changes results
}

// DefaultSearchOptions enables pruning and disables tracing.
var DefaultSearchOptions = SearchOptions{Cutoff: true}

// Searcher performs the alpha-beta search for one agent. The maximizing
// player is always the agent; scores are from its point of view.
type Searcher struct {
	pos     *board.Position
	agent   board.Color
	weights Weights
	tt      *TranspositionTable
	evals   *EvalCache
	orderer *MoveOrderer
	opts    SearchOptions
	nodes   uint64
}

// NewSearcher creates a new searcher.
func NewSearcher(tt *TranspositionTable, w Weights, opts SearchOptions) *Searcher {
	return &Searcher{
		weights: w,
		tt:      tt,
		evals:   NewEvalCache(1), // 1MB eval cache
		orderer: NewMoveOrderer(),
		opts:    opts,
	}
}

// Reset prepares the searcher for a new search of pos on behalf of agent.
// The searcher mutates pos during the search and restores it before
// returning.
func (s *Searcher) Reset(pos *board.Position, agent board.Color) {
	s.pos = pos
	s.agent = agent
	s.nodes = 0
}

// SetWeights replaces the evaluation weights and drops cached evaluations.
func (s *Searcher) SetWeights(w Weights) {
	s.weights = w
	s.evals.Clear()
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Search searches the position to depth with a full window.
func (s *Searcher) Search(ctx context.Context, depth int) (float64, board.Move, error) {
	return s.alphaBeta(ctx, depth, math.Inf(-1), math.Inf(1), true)
}

// alphaBeta returns the minimax value of the current position and the move
// achieving it. When ctx is done it returns ctx.Err(); every move applied on
// the way down has been undone by then.
func (s *Searcher) alphaBeta(ctx context.Context, depth int, alpha, beta float64, maximizing bool) (float64, board.Move, error) {
	if err := ctx.Err(); err != nil {
		return 0, board.NoMove, err
	}
	s.nodes++

	side := s.agent
	if !maximizing {
		side = side.Other()
	}

	if s.opts.Trace {
		log.Debug().
			Int("depth", depth).
			Bool("maximizing", maximizing).
			Float64("alpha", alpha).
			Float64("beta", beta).
			Str("board", s.pos.String()).
			Msg("search-node")
	}

	hash := s.pos.Hash(side)
	var ttMove board.Move
	if entry, ok := s.tt.Probe(hash); ok {
		ttMove = entry.BestMove
		if int(entry.Depth) >= depth {
			if entry.Score <= alpha {
				return entry.Score, entry.BestMove, nil
			}
			if entry.Score >= beta {
				return entry.Score, entry.BestMove, nil
			}
			alpha = math.Max(alpha, entry.Score)
		}
	}

	// A finished game always means the previous mover won, which is the
	// side not to move here.
	if s.pos.GameOver() != board.Ongoing {
		return lossFor(maximizing), board.NoMove, nil
	}

	if depth <= 0 {
		return s.evaluate(hash), board.NoMove, nil
	}

	moves := s.pos.GenerateMoves(side)
	if moves.Len() == 0 {
		return lossFor(maximizing), board.NoMove, nil
	}
	s.orderer.OrderMoves(s.pos, moves, ttMove)

	best := lossFor(maximizing)
	bestMove := moves.Get(0)
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)

		value, err := s.searchChild(ctx, m, depth, alpha, beta, maximizing)
		if err != nil {
			return 0, board.NoMove, err
		}

		if maximizing {
			if value > best {
				best, bestMove = value, m
			}
			alpha = math.Max(alpha, value)
		} else {
			if value < best {
				best, bestMove = value, m
			}
			beta = math.Min(beta, value)
		}

		if s.opts.Cutoff && alpha >= beta {
			break
		}
	}

	s.tt.Store(hash, best, depth, bestMove, alpha, beta)
	return best, bestMove, nil
}

// searchChild plays m, searches the resulting position and takes m back,
// also when the child search is cancelled.
func (s *Searcher) searchChild(ctx context.Context, m board.Move, depth int, alpha, beta float64, maximizing bool) (float64, error) {
	if outcome := s.pos.Apply(m); !outcome.OK() {
		return 0, errors.Wrapf(outcome.Err(), "search: generated move %s rejected", m)
	}
	defer s.undo()

	value, _, err := s.alphaBeta(ctx, depth-1, alpha, beta, !maximizing)
	return value, err
}

func (s *Searcher) undo() {
	if err := s.pos.Undo(); err != nil {
		panic(errors.Wrap(err, "search: undo"))
	}
}

// evaluate returns the static evaluation from the agent's point of view.
func (s *Searcher) evaluate(hash uint64) float64 {
	if score, ok := s.evals.Probe(hash); ok {
		return score
	}
	score := Score(s.pos, s.agent, &s.weights)
	s.evals.Store(hash, score)
	return score
}

// lossFor is the value of a node whose side to move has lost: -Inf when the
// agent is to move, +Inf otherwise.
func lossFor(maximizing bool) float64 {
	if maximizing {
		return math.Inf(-1)
	}
	return math.Inf(1)
}
