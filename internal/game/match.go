// internal/game/match.go
//
// Pair evaluation. Neighbors match when their digits agree or sum to 10.
// Evaluate only classifies; Select acts on the outcome.

package game

// Complementary reports whether two digits may be removed together:
// they are equal or sum to 10.
func Complementary(x, y int) bool { return x == y || x+y == 10 }

// Evaluate classifies the pair (a, b). Values are consulted only for
// neighbors.
func (b *Board) Evaluate(a, c int) Outcome {
	if !b.Neighbors(a, c) {
		return OutcomeNotNeighbors
	}
	if Complementary(b.Value(a), b.Value(c)) {
		return OutcomeMatch
	}
	return OutcomeInvalidPair
}
