package board

// Color represents the color of a piece or player.
type Color uint8

const (
	Blue Color = iota
	Red
	NoColor Color = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	switch c {
	case Blue:
		return "Blue"
	case Red:
		return "Red"
	default:
		return "NoColor"
	}
}

// Char returns the setup-string letter for the color.
func (c Color) Char() byte {
	if c == Blue {
		return 'b'
	}
	return 'r'
}

// colorFromChar converts a setup-string letter to a Color.
func colorFromChar(ch byte) Color {
	switch ch {
	case 'b', 'B':
		return Blue
	case 'r', 'R':
		return Red
	default:
		return NoColor
	}
}

// PieceKind identifies one of the six per-square markers tracked by a Position.
type PieceKind uint8

const (
	BlueSingle PieceKind = iota
	RedSingle
	BlueDouble
	RedDouble
	BlueBlocked
	RedBlocked
	NumPieceKinds
)

// String returns the piece kind name.
func (k PieceKind) String() string {
	switch k {
	case BlueSingle:
		return "BlueSingle"
	case RedSingle:
		return "RedSingle"
	case BlueDouble:
		return "BlueDouble"
	case RedDouble:
		return "RedDouble"
	case BlueBlocked:
		return "BlueBlocked"
	case RedBlocked:
		return "RedBlocked"
	default:
		return "None"
	}
}
