package board

// Zobrist hash keys for position hashing.
// Uses PRNG with fixed seed for reproducibility.
var (
	zobristPiece      [NumPieceKinds][64]uint64
	zobristSideToMove uint64 // XOR when Red to move
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234) // Fixed seed

	for k := BlueSingle; k < NumPieceKinds; k++ {
		for sq := A1; sq <= H8; sq++ {
			zobristPiece[k][sq] = rng.next()
		}
	}

	zobristSideToMove = rng.next()
}

// ZobristPiece returns the Zobrist key for a piece kind on a square.
func ZobristPiece(k PieceKind, sq Square) uint64 {
	return zobristPiece[k][sq]
}

// ZobristSideToMove returns the Zobrist key for Red to move.
func ZobristSideToMove() uint64 {
	return zobristSideToMove
}

// Hash computes the position key from scratch with side to move.
// Positions with equal masks and side always hash equally.
func (p *Position) Hash(side Color) uint64 {
	var h uint64
	for k := BlueSingle; k < NumPieceKinds; k++ {
		bb := p.Mask(k)
		for bb != 0 {
			h ^= zobristPiece[k][bb.PopLSB()]
		}
	}
	if side == Red {
		h ^= zobristSideToMove
	}
	return h
}
