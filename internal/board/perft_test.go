package board

import "testing"

// Perft counts the number of leaf nodes at the given depth.
// Every generated move must be accepted by Apply.
func perft(t *testing.T, p *Position, side Color, depth int) int64 {
	if depth == 0 || p.GameOver() != Ongoing {
		return 1
	}

	moves := p.GenerateMoves(side)
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if outcome := p.Apply(m); !outcome.OK() {
			t.Fatalf("generated move %s rejected: %v\n%s", m, outcome, p)
		}
		nodes += perft(t, p, side.Other(), depth-1)
		if err := p.Undo(); err != nil {
			t.Fatal(err)
		}
	}
	return nodes
}

func TestPerftStartingPosition(t *testing.T) {
	pos := NewPosition()

	// 6 pushes, 2 sidesteps onto the A and H files and 26 merges.
	if got := perft(t, pos, Blue, 1); got != 34 {
		t.Errorf("perft(1) = %d, want 34", got)
	}

	// The start is symmetric under swapping colors and flipping ranks.
	for depth := 1; depth <= 3; depth++ {
		blue := perft(t, pos, Blue, depth)
		red := perft(t, pos, Red, depth)
		if blue != red {
			t.Errorf("perft(%d): blue %d, red %d", depth, blue, red)
		}
	}

	if s := pos.Setup(); s != StartSetup {
		t.Errorf("perft left the position changed: %s", s)
	}
}
