package board

import (
	"fmt"
	"strings"
)

// Result is the outcome of a finished or running game.
type Result uint8

const (
	Ongoing Result = iota
	BlueWins
	RedWins
)

// String returns the result name.
func (r Result) String() string {
	switch r {
	case BlueWins:
		return "Blue wins"
	case RedWins:
		return "Red wins"
	default:
		return "Ongoing"
	}
}

// Winner returns the winning color, or NoColor while the game runs.
func (r Result) Winner() Color {
	switch r {
	case BlueWins:
		return Blue
	case RedWins:
		return Red
	default:
		return NoColor
	}
}

// WinFor returns the result in which c has won.
func WinFor(c Color) Result {
	if c == Blue {
		return BlueWins
	}
	return RedWins
}

// snapshot holds everything Apply changes.
type snapshot struct {
	singles, doubles, blocked [2]Bitboard
	side                      Color
}

// Position is a Jump Sturdy position: singles and doubles per color, and for
// every double the color of the single trapped underneath it.
type Position struct {
	Singles [2]Bitboard
	Doubles [2]Bitboard
	// Blocked[c] marks doubles that stand on top of a c single.
	Blocked [2]Bitboard

	// SideToMove is informational; Apply trusts the move's side and flips it.
	SideToMove Color

	history []snapshot
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, err := ParseSetup(StartSetup)
	if err != nil {
		panic(err)
	}
	return pos
}

// Copy creates a deep copy of the position, including its undo history.
func (p *Position) Copy() *Position {
	newPos := *p
	newPos.history = append([]snapshot(nil), p.history...)
	return &newPos
}

// Clear resets the position to an empty board with Blue to move.
func (p *Position) Clear() {
	*p = Position{SideToMove: Blue}
}

// Occupied returns every square holding a piece of c as the top piece.
func (p *Position) Occupied(c Color) Bitboard {
	return p.Singles[c] | p.Doubles[c]
}

// AllOccupied returns every occupied square.
func (p *Position) AllOccupied() Bitboard {
	return p.Singles[Blue] | p.Singles[Red] | p.Doubles[Blue] | p.Doubles[Red]
}

// Mask returns the bitboard of one piece kind.
func (p *Position) Mask(k PieceKind) Bitboard {
	switch k {
	case BlueSingle, RedSingle:
		return p.Singles[k-BlueSingle]
	case BlueDouble, RedDouble:
		return p.Doubles[k-BlueDouble]
	case BlueBlocked, RedBlocked:
		return p.Blocked[k-BlueBlocked]
	}
	return Empty
}

// Ply returns the number of moves that can be undone.
func (p *Position) Ply() int {
	return len(p.history)
}

func (p *Position) push() {
	p.history = append(p.history, snapshot{
		singles: p.Singles,
		doubles: p.Doubles,
		blocked: p.Blocked,
		side:    p.SideToMove,
	})
}

// relativeStep returns the square and file difference of a move as seen from
// Red, which moves toward rank 8.
func relativeStep(us Color, from, to Square) (step, fileDelta int) {
	step = int(to) - int(from)
	fileDelta = to.File() - from.File()
	if us == Blue {
		return -step, -fileDelta
	}
	return step, fileDelta
}

func isDoubleStep(step, fileDelta int) bool {
	switch {
	case step == 6 && fileDelta == -2,
		step == 15 && fileDelta == -1,
		step == 17 && fileDelta == 1,
		step == 10 && fileDelta == 2:
		return true
	}
	return false
}

// Apply plays m for m.Side(). On a rejection the position is left untouched;
// on success the previous state is pushed onto the undo history.
func (p *Position) Apply(m Move) MoveOutcome {
	from, to := m.From(), m.To()
	if !from.IsValid() || !to.IsValid() || from.IsForbidden() || to.IsForbidden() {
		return InvalidCoordinates
	}
	if from == to {
		return SkipNotAllowed
	}

	us := m.Side()
	fromBB := SquareBB(from)
	switch {
	case p.Singles[us]&fromBB != 0:
		return p.applySingle(us, from, to)
	case p.Doubles[us]&fromBB != 0:
		return p.applyDouble(us, from, to)
	case p.Blocked[us]&fromBB != 0:
		return BlockedCannotMove
	}
	return PieceNotFound
}

func (p *Position) applySingle(us Color, from, to Square) MoveOutcome {
	them := us.Other()
	fromBB, toBB := SquareBB(from), SquareBB(to)
	step, fd := relativeStep(us, from, to)

	switch {
	case step == 8 && fd == 0, step == -1 && fd == -1, step == 1 && fd == 1:
		if p.Singles[us]&toBB != 0 {
			p.push()
			p.Singles[us] &^= fromBB | toBB
			p.Doubles[us] |= toBB
			p.Blocked[us] |= toBB
			p.SideToMove = them
			return NewDouble
		}
		if p.AllOccupied()&toBB != 0 {
			return InvalidMove
		}
		p.push()
		p.Singles[us] ^= fromBB | toBB
		p.SideToMove = them
		switch step {
		case 8:
			return FrontalMove
		case -1:
			return LeftMove
		}
		return RightMove

	case step == 7 && fd == -1, step == 9 && fd == 1:
		switch {
		case p.Singles[them]&toBB != 0:
			p.push()
			p.Singles[them] &^= toBB
			p.Singles[us] ^= fromBB | toBB
			p.SideToMove = them
			return KillingMove
		case p.Doubles[them]&toBB != 0:
			// The trapped piece underneath keeps its color.
			p.push()
			p.Doubles[them] &^= toBB
			p.Singles[us] &^= fromBB
			p.Doubles[us] |= toBB
			p.SideToMove = them
			return DoubleKillingMove
		}
		return InvalidMove
	}
	return UnknownMove
}

func (p *Position) applyDouble(us Color, from, to Square) MoveOutcome {
	them := us.Other()
	fromBB, toBB := SquareBB(from), SquareBB(to)
	step, fd := relativeStep(us, from, to)

	if !isDoubleStep(step, fd) {
		return UnknownMove
	}
	if p.Doubles[us]&toBB != 0 {
		return InvalidMove
	}

	var under Color
	switch {
	case p.Blocked[us]&fromBB != 0:
		under = us
	case p.Blocked[them]&fromBB != 0:
		under = them
	default:
		return MissingBlockedPiece
	}

	p.push()
	p.Doubles[us] &^= fromBB
	p.Blocked[under] &^= fromBB
	p.Singles[under] |= fromBB
	p.SideToMove = them

	switch {
	case p.Singles[us]&toBB != 0:
		p.Singles[us] &^= toBB
		p.Doubles[us] |= toBB
		p.Blocked[us] |= toBB
		return ChangeOfDouble
	case p.Singles[them]&toBB != 0:
		p.Singles[them] &^= toBB
		p.Singles[us] |= toBB
		return KillingMove
	case p.Doubles[them]&toBB != 0:
		p.Doubles[them] &^= toBB
		p.Doubles[us] |= toBB
		return DoubleKillingMove
	}
	p.Singles[us] |= toBB
	return DoubleMove
}

// Undo restores the position before the last applied move.
func (p *Position) Undo() error {
	n := len(p.history)
	if n == 0 {
		return ErrNothingToUndo
	}
	s := p.history[n-1]
	p.history = p.history[:n-1]
	p.Singles = s.singles
	p.Doubles = s.doubles
	p.Blocked = s.blocked
	p.SideToMove = s.side
	return nil
}

// GameOver reports whether a side has a single on its goal band or lost all
// of its movable pieces. A double on the goal band does not win.
func (p *Position) GameOver() Result {
	switch {
	case p.Singles[Blue]&BlueGoal != 0:
		return BlueWins
	case p.Singles[Red]&RedGoal != 0:
		return RedWins
	case p.Occupied(Red) == 0:
		return BlueWins
	case p.Occupied(Blue) == 0:
		return RedWins
	}
	return Ongoing
}

// Validate checks that the masks describe a consistent board.
func (p *Position) Validate() error {
	all := [...]Bitboard{
		p.Singles[Blue], p.Singles[Red],
		p.Doubles[Blue], p.Doubles[Red],
		p.Blocked[Blue], p.Blocked[Red],
	}
	for k, bb := range all {
		if bad := bb & Forbidden; bad != 0 {
			return &InvariantError{Square: bad.LSB(), Reason: PieceKind(k).String() + " on a corner square"}
		}
	}

	var seen Bitboard
	for k := BlueSingle; k <= RedDouble; k++ {
		bb := all[k]
		if overlap := seen & bb; overlap != 0 {
			return &InvariantError{Square: overlap.LSB(), Reason: "square holds more than one top piece"}
		}
		seen |= bb
	}

	if both := p.Blocked[Blue] & p.Blocked[Red]; both != 0 {
		return &InvariantError{Square: both.LSB(), Reason: "two blocked markers on one square"}
	}
	doubles := p.Doubles[Blue] | p.Doubles[Red]
	blocked := p.Blocked[Blue] | p.Blocked[Red]
	if missing := doubles &^ blocked; missing != 0 {
		return &InvariantError{Square: missing.LSB(), Reason: "double without blocked marker"}
	}
	if stray := blocked &^ doubles; stray != 0 {
		return &InvariantError{Square: stray.LSB(), Reason: "blocked marker without double"}
	}
	return nil
}

// squareCode returns the two-letter code of a square: bottom color then top
// color for doubles, color and '0' for singles, "" when empty.
func (p *Position) squareCode(sq Square) string {
	bb := SquareBB(sq)
	for c := Blue; c <= Red; c++ {
		if p.Singles[c]&bb != 0 {
			return string([]byte{c.Char(), '0'})
		}
		if p.Doubles[c]&bb != 0 {
			bottom := c
			if p.Blocked[c.Other()]&bb != 0 {
				bottom = c.Other()
			}
			return string([]byte{bottom.Char(), c.Char()})
		}
	}
	return ""
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			switch code := p.squareCode(sq); {
			case sq.IsForbidden():
				sb.WriteString("   ")
			case code == "":
				sb.WriteString("-- ")
			default:
				sb.WriteString(code + " ")
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   A  B  C  D  E  F  G  H\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Hash: %016x\n", p.Hash(p.SideToMove))
	return sb.String()
}
