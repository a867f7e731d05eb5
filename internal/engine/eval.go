// Package engine implements the Jump Sturdy search engine: a linear
// evaluation over named features, a transposition table and a time-bounded
// iterative-deepening alpha-beta search.
package engine

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/hailam/jumpsturdy/internal/board"
)

// Contribution is one feature's share of an evaluation.
type Contribution struct {
	Weight float64 // weight the feature was scored with
	Raw    float64 // feature value before weighting
	Value  float64 // Weight * Raw
}

// Evaluation is a scored position with its per-feature breakdown.
type Evaluation struct {
	Total         float64
	Contributions [NumFeatures]Contribution
}

// Back-rank squares next to the corners, per color.
var backCorners = [2]board.Bitboard{
	board.Blue: board.SquareBB(board.B8) | board.SquareBB(board.G8),
	board.Red:  board.SquareBB(board.B1) | board.SquareBB(board.G1),
}

// forward returns the square step toward c's goal rank.
func forward(c board.Color) int {
	if c == board.Red {
		return 8
	}
	return -8
}

// Evaluate scores pos from us's point of view. The result is a pure
// function of the position, us and w.
func Evaluate(pos *board.Position, us board.Color, w *Weights) Evaluation {
	raw := Features(pos, us, w)

	var ev Evaluation
	ev.Total = floats.Dot(w[:], raw[:])
	for f := Feature(0); f < NumFeatures; f++ {
		ev.Contributions[f] = Contribution{
			Weight: w[f],
			Raw:    raw[f],
			Value:  w[f] * raw[f],
		}
	}
	return ev
}

// Score returns only the total of Evaluate.
func Score(pos *board.Position, us board.Color, w *Weights) float64 {
	raw := Features(pos, us, w)
	return floats.Dot(w[:], raw[:])
}

// Features computes the raw feature vector. Some features are defined in
// terms of other weights (material score, board control, positional
// bonuses), so the vector depends on w as well as the position.
func Features(pos *board.Position, us board.Color, w *Weights) [NumFeatures]float64 {
	them := us.Other()
	var raw [NumFeatures]float64

	ourSingles, ourDoubles := pos.Singles[us], pos.Doubles[us]
	theirSingles, theirDoubles := pos.Singles[them], pos.Doubles[them]

	// Material
	raw[FriendlySinglesValue] = float64(ourSingles.PopCount())
	raw[FriendlyDoublesValue] = float64(ourDoubles.PopCount())
	raw[FriendlyMaterialScore] = w[FriendlySinglesValue]*raw[FriendlySinglesValue] +
		w[FriendlyDoublesValue]*raw[FriendlyDoublesValue]
	raw[EnemySinglesValue] = float64(theirSingles.PopCount())
	raw[EnemyDoublesValue] = float64(theirDoubles.PopCount())
	raw[EnemyMaterialScore] = -(w[EnemySinglesValue]*raw[EnemySinglesValue] +
		w[EnemyDoublesValue]*raw[EnemyDoublesValue])

	// Advancement
	raw[FriendlyMostAdvancedSingles] = mostAdvanced(ourSingles, us)
	raw[FriendlyMostAdvancedDoubles] = mostAdvanced(ourDoubles, us)
	raw[EnemyMostAdvancedSingles] = mostAdvanced(theirSingles, them)
	raw[EnemyMostAdvancedDoubles] = mostAdvanced(theirDoubles, them)
	raw[FriendlyAdvancementOfSingles] = advancement(ourSingles, us)
	raw[FriendlyAdvancementOfDoubles] = advancement(ourDoubles, us)
	raw[EnemyAdvancementOfSingles] = advancement(theirSingles, them)
	raw[EnemyAdvancementOfDoubles] = advancement(theirDoubles, them)

	// Board control
	raw[ControlOfCenter] = control(pos, us, w, board.Center)
	raw[ControlOfEdges] = control(pos, us, w, board.Edges)

	// Positional bonuses
	raw[FriendlySingleInEdges] = presence(ourSingles, board.Edges, w[FriendlySinglesValue])
	raw[FriendlyDoubleInEdges] = presence(ourDoubles, board.Edges, w[FriendlyDoublesValue])
	raw[FriendlySingleInCenter] = presence(ourSingles, board.Center, w[FriendlySinglesValue])
	raw[FriendlyDoubleInCenter] = presence(ourDoubles, board.Center, w[FriendlyDoublesValue])
	raw[EnemySingleInEdges] = presence(theirSingles, board.Edges, -w[EnemySinglesValue])
	raw[EnemyDoubleInEdges] = presence(theirDoubles, board.Edges, -w[EnemyDoublesValue])
	raw[EnemySingleInCenter] = presence(theirSingles, board.Center, -w[EnemySinglesValue])
	raw[EnemyDoubleInCenter] = presence(theirDoubles, board.Center, -w[EnemyDoublesValue])
	raw[FriendlyDoubleInBackCorner] = presence(ourDoubles, backCorners[us], w[FriendlyDoublesValue])
	raw[FriendlyDoublesInLine] = inLine(ourDoubles, ourDoubles, us)
	raw[FriendlySingleDoubleInLine] = inLine(ourSingles, ourDoubles, us)
	raw[FriendlySinglesInLine] = inLine(ourSingles, ourSingles, us)
	raw[FriendlyPieceIsLast] = pieceIsLast(pos, us, w)

	// Density and mobility
	raw[FriendlyDensity] = density(pos.Occupied(us))
	raw[EnemyDensity] = density(pos.Occupied(them))
	ourMoves := pos.LegalMoves(us, board.AllCategories)
	theirMoves := pos.LegalMoves(them, board.AllCategories)
	raw[FriendlyMobility] = float64(ourMoves.Count())
	raw[EnemyMobility] = float64(theirMoves.Count())

	// Threats
	raw[FriendlySingleUnderAttack] = float64(pos.AttackCount(them, ourSingles))
	raw[FriendlyDoubleUnderAttack] = float64(pos.AttackCount(them, ourDoubles))

	return raw
}

// mostAdvanced scores the frontmost occupied rank of bb for c:
// pieces on that rank * 100 * 0.5^(ranks left to the goal).
func mostAdvanced(bb board.Bitboard, c board.Color) float64 {
	if bb == 0 {
		return 0
	}
	var front board.Square
	if c == board.Red {
		front = bb.MSB()
	} else {
		front = bb.LSB()
	}
	count := (bb & board.RankMask[front.Rank()]).PopCount()
	return float64(count) * 100 * math.Pow(0.5, float64(7-front.RelativeRank(c)))
}

// advancement sums 100 * 0.5^(ranks left to the goal) over every piece.
func advancement(bb board.Bitboard, c board.Color) float64 {
	total := 0.0
	for bb != 0 {
		sq := bb.PopLSB()
		total += 100 * math.Pow(0.5, float64(7-sq.RelativeRank(c)))
	}
	return total
}

// control sums the piece-value weights of every piece standing in set.
// Enemy value weights are negative, so enemy presence lowers the score.
func control(pos *board.Position, us board.Color, w *Weights, set board.Bitboard) float64 {
	them := us.Other()
	return w[FriendlySinglesValue]*float64((pos.Singles[us]&set).PopCount()) +
		w[FriendlyDoublesValue]*float64((pos.Doubles[us]&set).PopCount()) +
		w[EnemySinglesValue]*float64((pos.Singles[them]&set).PopCount()) +
		w[EnemyDoublesValue]*float64((pos.Doubles[them]&set).PopCount())
}

// presence returns bonus if any piece of bb stands in set.
func presence(bb, set board.Bitboard, bonus float64) float64 {
	if bb&set != 0 {
		return bonus
	}
	return 0
}

// inLine counts pieces of first that have a piece of second directly in
// front of them, in c's direction of travel.
func inLine(first, second board.Bitboard, c board.Color) float64 {
	behind := second.Shift(-forward(c), 0)
	return float64((first & behind).PopCount())
}

// pieceIsLast rewards a side whose frontmost piece has passed every enemy
// piece: the value weight of its leading piece type plus the rank reached.
func pieceIsLast(pos *board.Position, us board.Color, w *Weights) float64 {
	ours := pos.Occupied(us)
	if ours == 0 {
		return 0
	}
	friend := frontRank(ours, us)

	// The enemy piece nearest its own back rank, in our frame.
	enemy := 8
	if theirs := pos.Occupied(us.Other()); theirs != 0 {
		enemy = frontRank(theirs, us)
	}
	if friend <= enemy {
		return 0
	}

	typeValue := w[FriendlySinglesValue]
	if pos.Doubles[us] != 0 {
		typeValue = w[FriendlyDoublesValue]
	}
	return typeValue + float64(friend)
}

// frontRank returns the highest rank of bb relative to c.
func frontRank(bb board.Bitboard, c board.Color) int {
	if c == board.Red {
		return bb.MSB().RelativeRank(c)
	}
	return bb.LSB().RelativeRank(c)
}

// density is the mean Euclidean distance over all pairs of pieces in bb.
func density(bb board.Bitboard) float64 {
	squares := bb.Squares()
	n := len(squares)
	if n < 2 {
		return 0
	}

	total := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			df := float64(squares[i].File() - squares[j].File())
			dr := float64(squares[i].Rank() - squares[j].Rank())
			total += math.Hypot(df, dr)
		}
	}
	return total / float64(n*(n-1)/2)
}
