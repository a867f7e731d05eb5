package engine

import (
	"math"
	"testing"

	"github.com/hailam/jumpsturdy/internal/board"
)

func TestEvaluateIsPure(t *testing.T) {
	pos := board.NewPosition()
	w := DefaultWeights()

	first := Evaluate(pos, board.Blue, &w)
	second := Evaluate(pos, board.Blue, &w)
	if first != second {
		t.Error("two evaluations of the same position differ")
	}
	if pos.Ply() != 0 || pos.Setup() != board.StartSetup {
		t.Error("evaluation changed the position")
	}
}

func TestEvaluateTotalIsSumOfContributions(t *testing.T) {
	pos := mustSetup(t, "6/1b0b0bb4/3r04/8/2rb5/8/1r0r05/6 b")
	w := DefaultWeights()

	for _, us := range []board.Color{board.Blue, board.Red} {
		ev := Evaluate(pos, us, &w)
		sum := 0.0
		for f := Feature(0); f < NumFeatures; f++ {
			c := ev.Contributions[f]
			if c.Value != c.Weight*c.Raw {
				t.Errorf("%s %s: value %v != %v * %v", us, f, c.Value, c.Weight, c.Raw)
			}
			sum += c.Value
		}
		if math.Abs(sum-ev.Total) > 1e-9 {
			t.Errorf("%s: total %v, sum of contributions %v", us, ev.Total, sum)
		}
		if s := Score(pos, us, &w); s != ev.Total {
			t.Errorf("%s: Score %v != Evaluate total %v", us, s, ev.Total)
		}
	}
}

func TestStartPositionIsSymmetric(t *testing.T) {
	pos := board.NewPosition()
	w := DefaultWeights()

	blue := Evaluate(pos, board.Blue, &w)
	red := Evaluate(pos, board.Red, &w)
	for f := Feature(0); f < NumFeatures; f++ {
		b, r := blue.Contributions[f].Raw, red.Contributions[f].Raw
		if math.Abs(b-r) > 1e-9 {
			t.Errorf("%s: blue %v, red %v", f, b, r)
		}
	}
}

func TestFeatures(t *testing.T) {
	w := DefaultWeights()

	tests := []struct {
		name    string
		setup   string
		us      board.Color
		feature Feature
		want    float64
	}{
		{"singles count", board.StartSetup, board.Blue, FriendlySinglesValue, 12},
		{"enemy doubles count", "6/8/8/3rr4/8/8/8/6", board.Blue, EnemyDoublesValue, 1},
		// Red single on D5 is three ranks from its goal: 100 * 0.5^3.
		{"most advanced", "6/8/8/3r04/8/8/8/6", board.Red, FriendlyMostAdvancedSingles, 12.5},
		{"most advanced counts the whole rank", "6/8/8/2r0r04/8/8/3r04/6", board.Red, FriendlyMostAdvancedSingles, 25},
		// Blue single on D4 is three ranks from rank 1.
		{"blue advancement", "6/8/8/8/3b04/8/8/6", board.Blue, FriendlyAdvancementOfSingles, 12.5},
		{"singles in line", "6/8/8/8/3r04/3r04/8/6", board.Red, FriendlySinglesInLine, 1},
		{"blue singles in line", "6/8/3b04/3b04/8/8/8/6", board.Blue, FriendlySinglesInLine, 1},
		{"no wrap in line", "6/8/8/8/7r0/r07/8/6", board.Red, FriendlySinglesInLine, 0},
		{"mobility", "6/8/8/8/8/8/3r04/6", board.Red, FriendlyMobility, 3},
		{"density of two", "6/8/8/8/8/8/3r0r03/6", board.Red, FriendlyDensity, 1},
		{"density of one", "6/8/8/8/8/8/3r04/6", board.Red, FriendlyDensity, 0},
		{"single under attack", "6/8/8/8/4b03/3r04/8/6", board.Red, FriendlySingleUnderAttack, 1},
		{"no attack across the edge", "6/8/8/8/r06b0/8/8/6", board.Red, FriendlySingleUnderAttack, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := mustSetup(t, tt.setup)
			raw := Features(pos, tt.us, &w)
			if math.Abs(raw[tt.feature]-tt.want) > 1e-9 {
				t.Errorf("%s = %v, want %v", tt.feature, raw[tt.feature], tt.want)
			}
		})
	}
}

func TestPieceIsLast(t *testing.T) {
	w := DefaultWeights()

	// Red's D6 is past Blue's only piece on B3.
	pos := mustSetup(t, "6/8/3r04/8/8/1b06/8/6")
	want := w[FriendlySinglesValue] + 5
	if got := Features(pos, board.Red, &w)[FriendlyPieceIsLast]; math.Abs(got-want) > 1e-9 {
		t.Errorf("red leading: got %v, want %v", got, want)
	}

	// Blue's B3 is also past Red's D6 in Blue's frame.
	want = w[FriendlySinglesValue] + 5
	if got := Features(pos, board.Blue, &w)[FriendlyPieceIsLast]; math.Abs(got-want) > 1e-9 {
		t.Errorf("blue leading: got %v, want %v", got, want)
	}

	// Facing pieces that have not passed each other.
	pos = mustSetup(t, "6/8/3b04/8/8/3r04/8/6")
	if got := Features(pos, board.Red, &w)[FriendlyPieceIsLast]; got != 0 {
		t.Errorf("no piece is last: got %v", got)
	}
}

func TestEvalCache(t *testing.T) {
	ec := NewEvalCache(1)

	if _, ok := ec.Probe(0); ok {
		t.Error("key 0 must never hit")
	}
	if _, ok := ec.Probe(99); ok {
		t.Error("expected miss on first lookup")
	}

	ec.Store(99, -0.75)
	if s, ok := ec.Probe(99); !ok || s != -0.75 {
		t.Errorf("got (%v, %v), want (-0.75, true)", s, ok)
	}

	ec.Clear()
	if _, ok := ec.Probe(99); ok {
		t.Error("hit after Clear")
	}
}

func TestMoveOrdering(t *testing.T) {
	pos := mustSetup(t, "6/3r04/8/4b03/3r04/8/8/6 r")
	moves := pos.GenerateMoves(board.Red)
	tt := board.NewMove(board.Red, board.D4, board.C4)

	NewMoveOrderer().OrderMoves(pos, moves, tt)

	want := []board.Move{
		tt,
		board.NewMove(board.Red, board.D7, board.D8), // reaches the goal
		board.NewMove(board.Red, board.D4, board.E5), // capture
	}
	for i, m := range want {
		if moves.Get(i) != m {
			t.Errorf("moves[%d] = %s, want %s", i, moves.Get(i), m)
		}
	}
}
