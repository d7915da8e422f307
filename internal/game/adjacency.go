// internal/game/adjacency.go
//
// Neighbor resolution. Two occupied cells are neighbors when either:
//   1. walking from a in one of the 8 compass directions, skipping empty
//      cells, the first occupied cell reached is b; or
//   2. one is the last occupied cell of its row and the other is the first
//      occupied cell of the row directly below (the board read as one strip).
//
// Both rules are symmetric, so Neighbors(a, b) == Neighbors(b, a).

package game

// direction is a unit step on the grid.
type direction struct{ dr, dc int }

// compass lists the 8 scan directions. Every entry has its opposite.
var compass = [8]direction{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

// Neighbors reports whether a and b are neighbors. Unoccupied, equal or
// out-of-range indices are never neighbors.
func (b *Board) Neighbors(a, c int) bool {
	if a == c || !b.Occupied(a) || !b.Occupied(c) {
		return false
	}
	for _, d := range compass {
		if b.scan(a, d) == c {
			return true
		}
	}
	return b.wraps(a, c) || b.wraps(c, a)
}

// scan walks from index in direction d and returns the first occupied index
// it reaches, or -1 at the board edge.
func (b *Board) scan(index int, d direction) int {
	r, c := b.Coords(index)
	for {
		r, c = r+d.dr, c+d.dc
		i, ok := b.Index(r, c)
		if !ok {
			return -1
		}
		if b.cells[i].Occupied {
			return i
		}
	}
}

// wraps reports whether upper ends its row and lower starts the next one.
func (b *Board) wraps(upper, lower int) bool {
	row, _ := b.Coords(upper)
	if b.LastInRow(row) != upper {
		return false
	}
	return b.FirstInRow(row+1) == lower
}
