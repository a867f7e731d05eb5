package training

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hailam/jumpsturdy/internal/board"
)

// DefaultMaxPlies ends a game as a draw when nobody has won by then.
const DefaultMaxPlies = 400

// GameRecord is the outcome of one played game.
type GameRecord struct {
	Result   board.Result // Ongoing means the ply cap was reached
	Moves    []board.Move
	Duration time.Duration
	Final    string // setup string of the final position
}

// Plies returns the number of moves played.
func (r GameRecord) Plies() int {
	return len(r.Moves)
}

// Winner returns the winning color, or NoColor for a draw.
func (r GameRecord) Winner() board.Color {
	return r.Result.Winner()
}

// WinnerName returns "Blue", "Red" or "draw".
func (r GameRecord) WinnerName() string {
	if w := r.Winner(); w != board.NoColor {
		return w.String()
	}
	return "draw"
}

// PlyObserver sees every position of a game, after ply moves were played,
// including the final one. It must not modify pos.
type PlyObserver func(pos *board.Position, ply int)

// PlayGame plays agents[Blue] against agents[Red] from start, the side to
// move in start moving first. A side without a legal move loses. After
// maxPlies moves (DefaultMaxPlies when maxPlies <= 0) the game is a draw.
// start is not modified.
func PlayGame(ctx context.Context, agents [2]Agent, start *board.Position, maxPlies int, observers ...PlyObserver) (GameRecord, error) {
	if maxPlies <= 0 {
		maxPlies = DefaultMaxPlies
	}

	began := time.Now()
	pos := start.Copy()
	rec := GameRecord{Result: board.Ongoing}

	observe := func(ply int) {
		for _, o := range observers {
			o(pos, ply)
		}
	}

	for ply := 0; ; ply++ {
		observe(ply)

		if result := pos.GameOver(); result != board.Ongoing {
			rec.Result = result
			break
		}
		if ply >= maxPlies {
			break
		}
		if err := ctx.Err(); err != nil {
			return rec, err
		}

		side := pos.SideToMove
		if !pos.HasLegalMoves(side) {
			rec.Result = board.WinFor(side.Other())
			break
		}

		m, err := agents[side].Choose(ctx, pos, side, ply/2+1)
		if err != nil {
			return rec, errors.Wrapf(err, "%s agent at ply %d", side, ply)
		}
		if outcome := pos.Apply(m); !outcome.OK() {
			return rec, errors.Wrapf(outcome.Err(), "%s agent played %s at ply %d", side, m, ply)
		}
		if err := pos.Validate(); err != nil {
			return rec, errors.Wrapf(err, "after %s at ply %d", m, ply)
		}
		rec.Moves = append(rec.Moves, m)
	}

	rec.Duration = time.Since(began)
	rec.Final = pos.Setup()
	return rec, nil
}
