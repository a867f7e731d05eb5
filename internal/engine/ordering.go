package engine

import (
	"github.com/hailam/jumpsturdy/internal/board"
)

// Move ordering priorities
const (
	TTMoveScore     = 10000000 // TT move gets highest priority
	WinningMoveBase = 5000000  // Moves landing on the goal band
	GoodCaptureBase = 1000000  // Base score for captures
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores
// Higher score = search first
var mvvLva = [2][2]int{
	//            single double (attacker)
	/* single */ {15, 14},
	/* double */ {25, 24},
}

var goalBand = [2]board.Bitboard{
	board.Blue: board.BlueGoal,
	board.Red:  board.RedGoal,
}

// MoveOrderer handles move ordering for the search.
type MoveOrderer struct {
	scores [board.MaxMoves]int
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// scoreMove rates a move; moves with equal scores keep generation order.
func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ttMove board.Move) int {
	if m == ttMove {
		return TTMoveScore
	}

	us := m.Side()
	them := us.Other()
	from := board.SquareBB(m.From())
	to := board.SquareBB(m.To())

	score := 0
	// Only a move that leaves a single on the goal band wins.
	if to&goalBand[us] != 0 && to&(pos.Singles[us]|pos.Doubles[them]) == 0 {
		score += WinningMoveBase
	}

	if to&pos.Occupied(them) != 0 {
		victim, attacker := 0, 0
		if to&pos.Doubles[them] != 0 {
			victim = 1
		}
		if from&pos.Doubles[us] != 0 {
			attacker = 1
		}
		score += GoodCaptureBase + mvvLva[victim][attacker]*1000
	}

	return score
}

// OrderMoves sorts moves so the hash move comes first, then goal-reaching
// moves and captures. The sort is stable.
func (mo *MoveOrderer) OrderMoves(pos *board.Position, moves *board.MoveList, ttMove board.Move) {
	n := moves.Len()
	scores := mo.scores[:n]
	for i := 0; i < n; i++ {
		scores[i] = mo.scoreMove(pos, moves.Get(i), ttMove)
	}

	// Insertion sort (sufficient for ~40 moves, keeps ties in order)
	for i := 1; i < n; i++ {
		for j := i; j > 0 && scores[j] > scores[j-1]; j-- {
			moves.Swap(j, j-1)
			scores[j], scores[j-1] = scores[j-1], scores[j]
		}
	}
}
