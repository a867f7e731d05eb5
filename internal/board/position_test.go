package board

import (
	"testing"

	"github.com/pkg/errors"
)

func mustSetup(t *testing.T, s string) *Position {
	t.Helper()
	pos, err := ParseSetup(s)
	if err != nil {
		t.Fatalf("ParseSetup(%q): %v", s, err)
	}
	return pos
}

func TestApplyOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		before  string
		side    Color
		from    Square
		to      Square
		outcome MoveOutcome
		after   string // empty when the move is rejected
	}{
		{"red front", "6/8/8/8/8/8/3r04/6 r", Red, D2, D3, FrontalMove, "6/8/8/8/8/3r04/8/6 b"},
		{"red left", "6/8/8/8/8/8/3r04/6 r", Red, D2, C2, LeftMove, "6/8/8/8/8/8/2r05/6 b"},
		{"red right", "6/8/8/8/8/8/3r04/6 r", Red, D2, E2, RightMove, "6/8/8/8/8/8/4r03/6 b"},
		{"blue front", "6/3b04/8/8/8/8/8/6", Blue, D7, D6, FrontalMove, "6/8/3b04/8/8/8/8/6 r"},
		{"blue left is east", "6/3b04/8/8/8/8/8/6", Blue, D7, E7, LeftMove, "6/4b03/8/8/8/8/8/6 r"},
		{"merge", "6/8/8/8/8/8/3r0r03/6 r", Red, D2, E2, NewDouble, "6/8/8/8/8/8/4rr3/6 b"},
		{"kill single", "6/8/8/4b03/3r04/8/8/6 r", Red, D4, E5, KillingMove, "6/8/8/4r03/8/8/8/6 b"},
		{"kill double", "6/8/8/4bb3/3r04/8/8/6 r", Red, D4, E5, DoubleKillingMove, "6/8/8/4br3/8/8/8/6 b"},
		{"single onto own double", "6/8/8/8/8/8/3r0rr3/6 r", Red, D2, E2, InvalidMove, ""},
		{"front onto enemy", "6/8/8/8/8/3b04/3r04/6 r", Red, D2, D3, InvalidMove, ""},
		{"diagonal onto empty", "6/8/8/8/8/8/3r04/6 r", Red, D2, E3, InvalidMove, ""},
		{"two squares ahead", "6/8/8/8/8/8/3r04/6 r", Red, D2, D4, UnknownMove, ""},
		{"no wrap around", "6/8/8/8/8/8/7r0/6 r", Red, H2, A3, UnknownMove, ""},
		{"double jump", "6/8/8/8/8/8/3rr4/6 r", Red, D2, E4, DoubleMove, "6/8/8/8/4r03/8/3r04/6 b"},
		{"double frees enemy", "6/8/8/8/8/8/3br4/6 r", Red, D2, B3, DoubleMove, "6/8/8/8/8/1r06/3b04/6 b"},
		{"change of double", "6/8/8/8/4r03/8/3rr4/6 r", Red, D2, E4, ChangeOfDouble, "6/8/8/8/4rr3/8/3r04/6 b"},
		{"double kills double", "6/8/8/8/4bb3/8/3rr4/6 r", Red, D2, E4, DoubleKillingMove, "6/8/8/8/4br3/8/3r04/6 b"},
		{"double kills single", "6/8/8/8/4b03/8/3rr4/6 r", Red, D2, E4, KillingMove, "6/8/8/8/4r03/8/3r04/6 b"},
		{"double onto own double", "6/8/8/8/4rr3/8/3rr4/6 r", Red, D2, E4, InvalidMove, ""},
		{"blue double jump", "6/3bb4/8/8/8/8/8/6", Blue, D7, C5, DoubleMove, "6/3b04/8/2b05/8/8/8/6 r"},
		{"blocked", "6/8/8/8/8/8/3rb4/6 r", Red, D2, D3, BlockedCannotMove, ""},
		{"no piece", "6/8/8/8/8/8/8/6 r", Red, D2, D3, PieceNotFound, ""},
		{"skip", "6/8/8/8/8/8/3r04/6 r", Red, D2, D2, SkipNotAllowed, ""},
		{"corner", "6/8/8/8/8/8/8/6 r", Red, A1, B1, InvalidCoordinates, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustSetup(t, tc.before)
			before := pos.Setup()

			got := pos.Apply(NewMove(tc.side, tc.from, tc.to))
			if got != tc.outcome {
				t.Fatalf("Apply(%s-%s) = %v, want %v", tc.from, tc.to, got, tc.outcome)
			}

			if tc.after == "" {
				if got.OK() {
					t.Fatalf("%v reported as success", got)
				}
				if pos.Setup() != before {
					t.Errorf("rejected move changed the position: %s", pos.Setup())
				}
				if pos.Ply() != 0 {
					t.Errorf("rejected move pushed history")
				}
				return
			}

			if s := pos.Setup(); s != tc.after {
				t.Errorf("after = %s, want %s", s, tc.after)
			}
			if err := pos.Validate(); err != nil {
				t.Errorf("invalid position after move: %v", err)
			}
			if err := pos.Undo(); err != nil {
				t.Fatalf("Undo: %v", err)
			}
			if s := pos.Setup(); s != before {
				t.Errorf("after undo = %s, want %s", s, before)
			}
		})
	}
}

func TestApplyMissingBlockedPiece(t *testing.T) {
	pos := &Position{SideToMove: Red}
	pos.Doubles[Red] = SquareBB(D2)
	before := *pos

	got := pos.Apply(NewMove(Red, D2, E4))
	if got != MissingBlockedPiece {
		t.Fatalf("Apply = %v, want %v", got, MissingBlockedPiece)
	}
	if pos.Doubles != before.Doubles || pos.Singles != before.Singles || pos.Blocked != before.Blocked {
		t.Error("position mutated on invariant failure")
	}
	if !IsInvariant(got.Err()) {
		t.Errorf("Err() = %v, want an invariant error", got.Err())
	}
}

func TestOutcomeErrors(t *testing.T) {
	tests := []struct {
		outcome MoveOutcome
		want    error
	}{
		{FrontalMove, nil},
		{DoubleMove, nil},
		{InvalidCoordinates, ErrInvalidCoordinates},
		{InvalidMove, ErrInvalidMove},
		{UnknownMove, ErrUnknownMove},
		{BlockedCannotMove, ErrBlockedCannotMove},
		{PieceNotFound, ErrPieceNotFound},
		{SkipNotAllowed, ErrSkipNotAllowed},
	}

	for _, tc := range tests {
		t.Run(tc.outcome.String(), func(t *testing.T) {
			if err := tc.outcome.Err(); !errors.Is(err, tc.want) {
				t.Errorf("Err() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestUndoToStart(t *testing.T) {
	pos := NewPosition()
	side := Blue

	for i := 0; i < 12; i++ {
		moves := pos.GenerateMoves(side)
		if moves.Len() == 0 || pos.GameOver() != Ongoing {
			break
		}
		m := moves.Get(i % moves.Len())
		if outcome := pos.Apply(m); !outcome.OK() {
			t.Fatalf("generated move %s rejected: %v", m, outcome)
		}
		side = side.Other()
	}

	for pos.Ply() > 0 {
		if err := pos.Undo(); err != nil {
			t.Fatalf("Undo: %v", err)
		}
	}
	if s := pos.Setup(); s != StartSetup {
		t.Errorf("after undoing everything: %s, want %s", s, StartSetup)
	}
	if err := pos.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("Undo on empty history = %v, want %v", err, ErrNothingToUndo)
	}
}

func TestGameOver(t *testing.T) {
	tests := []struct {
		name  string
		setup string
		want  Result
	}{
		{"start", StartSetup, Ongoing},
		{"blue reaches rank 1", "6/8/8/8/8/8/3r04/b05", BlueWins},
		{"red reaches rank 8", "5r0/8/8/8/8/8/3b04/6", RedWins},
		{"blue double on goal", "6/8/8/8/8/8/3r04/4rb1", Ongoing},
		{"red double on goal", "1rr4/8/8/8/8/8/3b04/6", Ongoing},
		{"red eliminated", "6/8/8/3b04/8/8/8/6", BlueWins},
		{"red only blocked", "6/8/8/3rb4/8/8/8/6", BlueWins},
		{"blue eliminated", "6/8/8/3r04/8/8/8/6", RedWins},
		{"both on goal, blue first", "r05/8/8/8/8/8/8/b05", BlueWins},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustSetup(t, tc.setup)
			if got := pos.GameOver(); got != tc.want {
				t.Errorf("GameOver() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("corner", func(t *testing.T) {
		pos := &Position{}
		pos.Singles[Blue] = SquareBB(H8)
		if err := pos.Validate(); !IsInvariant(err) {
			t.Errorf("Validate() = %v, want invariant error", err)
		}
	})

	t.Run("overlap", func(t *testing.T) {
		pos := &Position{}
		pos.Singles[Blue] = SquareBB(D4)
		pos.Doubles[Red] = SquareBB(D4)
		pos.Blocked[Red] = SquareBB(D4)
		if err := pos.Validate(); !IsInvariant(err) {
			t.Errorf("Validate() = %v, want invariant error", err)
		}
	})

	t.Run("stray marker", func(t *testing.T) {
		pos := &Position{}
		pos.Blocked[Blue] = SquareBB(C3)
		if err := pos.Validate(); !IsInvariant(err) {
			t.Errorf("Validate() = %v, want invariant error", err)
		}
	})

	t.Run("start", func(t *testing.T) {
		if err := NewPosition().Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})
}

func TestCopyIsIndependent(t *testing.T) {
	pos := NewPosition()
	pos.Apply(NewMove(Blue, D7, D6))

	cp := pos.Copy()
	cp.Apply(NewMove(Red, D2, D3))
	if err := cp.Undo(); err != nil {
		t.Fatal(err)
	}
	if err := cp.Undo(); err != nil {
		t.Fatal(err)
	}

	if pos.Ply() != 1 {
		t.Errorf("original history changed: ply %d", pos.Ply())
	}
	if !pos.Singles[Blue].IsSet(D6) {
		t.Error("original position changed")
	}
}
