package board

// Pre-computed capture tables: the squares a piece of a color standing on a
// square may capture on.
var (
	singleAttacks [2][64]Bitboard // [Color][Square] diagonal forward steps
	doubleAttacks [2][64]Bitboard // [Color][Square] knight-like forward jumps
)

func init() {
	initSingleAttacks()
	initDoubleAttacks()
}

func initSingleAttacks() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		singleAttacks[Red][sq] = (bb.Shift(7, -1) | bb.Shift(9, 1)) & Playable
		singleAttacks[Blue][sq] = (bb.Shift(-7, 1) | bb.Shift(-9, -1)) & Playable
	}
}

func initDoubleAttacks() {
	for sq := A1; sq <= H8; sq++ {
		bb := SquareBB(sq)

		attacks := bb.Shift(6, -2)  // left-left-front
		attacks |= bb.Shift(15, -1) // front-front-left
		attacks |= bb.Shift(17, 1)  // front-front-right
		attacks |= bb.Shift(10, 2)  // right-right-front
		doubleAttacks[Red][sq] = attacks & Playable

		attacks = bb.Shift(-6, 2)
		attacks |= bb.Shift(-15, 1)
		attacks |= bb.Shift(-17, -1)
		attacks |= bb.Shift(-10, -2)
		doubleAttacks[Blue][sq] = attacks & Playable
	}
}

// AttackersByColor returns the c pieces that can capture on sq.
func (p *Position) AttackersByColor(sq Square, c Color) Bitboard {
	enemy := c.Other()
	return (singleAttacks[enemy][sq] & p.Singles[c]) |
		(doubleAttacks[enemy][sq] & p.Doubles[c])
}

// AttackCount counts capture relationships from by's pieces onto targets.
// A target attacked by several pieces counts once per attacker.
func (p *Position) AttackCount(by Color, targets Bitboard) int {
	n := 0
	for targets != 0 {
		n += p.AttackersByColor(targets.PopLSB(), by).PopCount()
	}
	return n
}
