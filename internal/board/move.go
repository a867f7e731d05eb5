package board

import (
	"strings"

	"github.com/pkg/errors"
)

// Move encodes a move in 16 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bit  12:    side (0=Blue, 1=Red)
type Move uint16

// NoMove represents an invalid or null move. It decodes to A1-A1, which is
// never legal.
const NoMove Move = 0

// NewMove creates a move for side.
func NewMove(side Color, from, to Square) Move {
	return Move(from&0x3F) | Move(to&0x3F)<<6 | Move(side&1)<<12
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Side returns the color making the move.
func (m Move) Side() Color {
	return Color((m >> 12) & 1)
}

// String returns the move text (e.g., "B7-B6").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	return m.From().String() + "-" + m.To().String()
}

// ParseMove parses move text of the form "<FROM>-<TO>" for side.
// Squares are case-insensitive. Whether the move is legal is decided by Apply.
func ParseMove(side Color, s string) (Move, error) {
	parts := strings.Split(strings.ToUpper(strings.TrimSpace(s)), "-")
	if len(parts) != 2 {
		return NoMove, errors.Errorf("invalid move %q: expected format like F3-F4", s)
	}

	from, err := ParseSquare(parts[0])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(parts[1])
	if err != nil {
		return NoMove, err
	}

	return NewMove(side, from, to), nil
}

// MaxMoves bounds the moves of one side: a single has at most five moves,
// a double four, and there are 60 playable squares.
const MaxMoves = 5 * 60

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [MaxMoves]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Swap swaps two moves in the list.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// MoveOutcome is the result of applying a move.
type MoveOutcome uint8

const (
	NewDouble MoveOutcome = iota
	FrontalMove
	LeftMove
	RightMove
	KillingMove
	DoubleKillingMove
	ChangeOfDouble
	DoubleMove

	// Everything from here on is a rejection; the position is untouched.
	InvalidCoordinates
	InvalidMove
	UnknownMove
	BlockedCannotMove
	PieceNotFound
	MissingBlockedPiece
	SkipNotAllowed
)

var outcomeNames = [...]string{
	NewDouble:           "Good: New double",
	FrontalMove:         "Good: Frontal move",
	LeftMove:            "Good: Left move",
	RightMove:           "Good: Right move",
	KillingMove:         "Good: Killing move",
	DoubleKillingMove:   "Good: Double killing move",
	ChangeOfDouble:      "Good: Change of double",
	DoubleMove:          "Good: Double move",
	InvalidCoordinates:  "Error: Invalid coordinates",
	InvalidMove:         "Error: Invalid move",
	UnknownMove:         "Error: Unknown move",
	BlockedCannotMove:   "Error: Blocked can not move",
	PieceNotFound:       "Error: Could not find the piece",
	MissingBlockedPiece: "Error: Missing blocked piece",
	SkipNotAllowed:      "Error: Skipping turns is not allowed",
}

// String returns a human-readable description of the outcome.
func (o MoveOutcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "Error: Unknown outcome"
}

// OK reports whether the move was applied.
func (o MoveOutcome) OK() bool {
	return o < InvalidCoordinates
}

// Err returns nil for applied moves and the matching sentinel otherwise.
// MissingBlockedPiece yields an *InvariantError.
func (o MoveOutcome) Err() error {
	switch o {
	case InvalidCoordinates:
		return ErrInvalidCoordinates
	case InvalidMove:
		return ErrInvalidMove
	case UnknownMove:
		return ErrUnknownMove
	case BlockedCannotMove:
		return ErrBlockedCannotMove
	case PieceNotFound:
		return ErrPieceNotFound
	case SkipNotAllowed:
		return ErrSkipNotAllowed
	case MissingBlockedPiece:
		return &InvariantError{Square: NoSquare, Reason: "double without blocked marker"}
	}
	if !o.OK() {
		return ErrUnknownMove
	}
	return nil
}
