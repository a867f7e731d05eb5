package board

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// StartSetup is the setup string for the starting position. Rows run from
// rank 8 down to rank 1; the back ranks list only the six squares between
// the corners.
const StartSetup = "b0b0b0b0b0b0/1b0b0b0b0b0b01/8/8/8/8/1r0r0r0r0r0r01/r0r0r0r0r0r0 b"

// rowBounds returns the first file and the number of squares of a row.
func rowBounds(rank int) (first, width int) {
	if rank == 0 || rank == 7 {
		return 1, 6
	}
	return 0, 8
}

// ParseSetup parses a setup string and returns a Position.
// Pieces are written as two letters: "b0"/"r0" for singles, and for doubles
// the bottom color followed by the top color ("bb", "rr", "br", "rb").
// Digits are runs of empty squares. An optional trailing "b" or "r" gives
// the side to move; Blue moves when it is absent.
func ParseSetup(setup string) (*Position, error) {
	parts := strings.Fields(setup)
	if len(parts) == 0 || len(parts) > 2 {
		return nil, errors.Errorf("invalid setup: need 1 or 2 fields, got %d", len(parts))
	}

	pos := &Position{SideToMove: Blue}

	rows := strings.Split(parts[0], "/")
	if len(rows) != 8 {
		return nil, errors.Errorf("invalid setup: need 8 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if err := parseRow(pos, 7-i, row); err != nil {
			return nil, err
		}
	}

	if len(parts) == 2 {
		switch c := colorFromChar(parts[1][0]); {
		case len(parts[1]) != 1 || c == NoColor:
			return nil, errors.Errorf("invalid side to move: %s", parts[1])
		default:
			pos.SideToMove = c
		}
	}

	if err := pos.Validate(); err != nil {
		return nil, err
	}
	return pos, nil
}

// parseRow parses one row of a setup string into rank.
func parseRow(pos *Position, rank int, row string) error {
	first, width := rowBounds(rank)
	file := first
	for i := 0; i < len(row); i++ {
		ch := row[i]
		if ch >= '1' && ch <= '8' {
			file += int(ch - '0')
			continue
		}
		if i+1 >= len(row) {
			return errors.Errorf("invalid setup: truncated piece in row %d", rank+1)
		}
		if file >= first+width {
			return errors.Errorf("invalid setup: row %d is too long", rank+1)
		}
		sq := NewSquare(file, rank)
		bb := SquareBB(sq)

		bottom := colorFromChar(ch)
		if bottom == NoColor {
			return errors.Errorf("invalid setup: unknown piece %q in row %d", row[i:i+2], rank+1)
		}
		switch top := row[i+1]; top {
		case '0':
			pos.Singles[bottom] |= bb
		default:
			c := colorFromChar(top)
			if c == NoColor {
				return errors.Errorf("invalid setup: unknown piece %q in row %d", row[i:i+2], rank+1)
			}
			pos.Doubles[c] |= bb
			pos.Blocked[bottom] |= bb
		}
		i++
		file++
	}
	if file != first+width {
		return errors.Errorf("invalid setup: row %d has %d squares, want %d", rank+1, file-first, width)
	}
	return nil
}

// Setup returns the setup string of the position, including the side to move.
func (p *Position) Setup() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		first, width := rowBounds(rank)
		empty := 0
		for file := first; file < first+width; file++ {
			code := p.squareCode(NewSquare(file, rank))
			if code == "" {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(code)
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	sb.WriteByte(p.SideToMove.Char())
	return sb.String()
}
