// internal/game/board.go
//
// Board owns the row-major cell slice and the occupancy bookkeeping.
// Index = row*cols + col. highest is derived state; every mutation that
// changes occupancy recomputes it before returning.

package game

import "math/rand"

// Cell is one grid position. Value is meaningful only when Occupied.
type Cell struct {
	Occupied bool `json:"occupied"`
	Value    int  `json:"value,omitempty"`
	Tag      Tag  `json:"tag"`
}

// Board is a fixed-size grid of cells.
type Board struct {
	rows, cols, fillRows int
	cells                []Cell
	highest              int
}

// NewBoard allocates an empty board. Dimensions are validated by the caller.
func NewBoard(cfg Config) *Board {
	b := &Board{
		rows:     cfg.Rows,
		cols:     cfg.Cols,
		fillRows: cfg.FillRows,
		cells:    make([]Cell, cfg.Rows*cfg.Cols),
		highest:  -1,
	}
	for i := range b.cells {
		b.cells[i].Tag = TagNormal
	}
	return b
}

func (b *Board) Rows() int  { return b.rows }
func (b *Board) Cols() int  { return b.cols }
func (b *Board) Total() int { return len(b.cells) }

// HighestFilled is the largest occupied index, or -1 on an empty board.
func (b *Board) HighestFilled() int { return b.highest }

// Reset deals fillRows rows of random digits in [1,9]; everything else is empty.
func (b *Board) Reset(rng *rand.Rand) {
	dealt := b.fillRows * b.cols
	for i := range b.cells {
		if i < dealt {
			b.cells[i] = Cell{Occupied: true, Value: rng.Intn(9) + 1, Tag: TagNormal}
		} else {
			b.cells[i] = Cell{Tag: TagNormal}
		}
	}
	b.recompute()
}

// Index maps (row, col) to a cell index. Out-of-range coordinates report
// false instead of aliasing into a neighbouring row.
func (b *Board) Index(row, col int) (int, bool) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return -1, false
	}
	return row*b.cols + col, true
}

// Coords is the inverse of Index.
func (b *Board) Coords(index int) (row, col int) {
	return index / b.cols, index % b.cols
}

// InBounds reports whether index names a cell.
func (b *Board) InBounds(index int) bool { return index >= 0 && index < len(b.cells) }

// Cell returns a copy of the cell at index. Out-of-range indices read as
// an empty normal cell.
func (b *Board) Cell(index int) Cell {
	if !b.InBounds(index) {
		return Cell{Tag: TagNormal}
	}
	return b.cells[index]
}

// Occupied reports whether index is in range and holds a digit.
func (b *Board) Occupied(index int) bool {
	return b.InBounds(index) && b.cells[index].Occupied
}

// Value returns the digit at index (0 when empty or out of range).
func (b *Board) Value(index int) int {
	if !b.Occupied(index) {
		return 0
	}
	return b.cells[index].Value
}

// Set places a digit at index.
func (b *Board) Set(index, value int) {
	b.cells[index].Occupied = true
	b.cells[index].Value = value
	b.recompute()
}

// Clear empties the cell at index and resets its tag.
func (b *Board) Clear(index int) {
	b.cells[index] = Cell{Tag: TagNormal}
	b.recompute()
}

// SetTag changes only the presentation marker of a cell.
func (b *Board) SetTag(index int, t Tag) { b.cells[index].Tag = t }

// writeRun copies values into consecutive cells starting at start and
// recomputes highest once.
func (b *Board) writeRun(start int, values []int) {
	for i, v := range values {
		b.cells[start+i] = Cell{Occupied: true, Value: v, Tag: TagNormal}
	}
	b.recompute()
}

// OccupiedValues returns the digits of occupied cells in [from, to), in order.
func (b *Board) OccupiedValues(from, to int) []int {
	if from < 0 {
		from = 0
	}
	if to > len(b.cells) {
		to = len(b.cells)
	}
	var out []int
	for i := from; i < to; i++ {
		if b.cells[i].Occupied {
			out = append(out, b.cells[i].Value)
		}
	}
	return out
}

// OccupiedCount is the number of occupied cells.
func (b *Board) OccupiedCount() int {
	n := 0
	for _, c := range b.cells {
		if c.Occupied {
			n++
		}
	}
	return n
}

// Empty reports whether no cell is occupied.
func (b *Board) Empty() bool { return b.highest < 0 }

// RowEligible reports whether row lies below the historical fill boundary,
// i.e. row < floor(highest/cols). Nothing is eligible on an empty board.
func (b *Board) RowEligible(row int) bool {
	if b.highest < 0 || row < 0 {
		return false
	}
	return row < b.highest/b.cols
}

// RowEmpty reports whether every cell in row is unoccupied.
func (b *Board) RowEmpty(row int) bool {
	start := row * b.cols
	for i := start; i < start+b.cols; i++ {
		if b.cells[i].Occupied {
			return false
		}
	}
	return true
}

// FirstInRow returns the first occupied index scanning left to right, or -1.
func (b *Board) FirstInRow(row int) int {
	if row < 0 || row >= b.rows {
		return -1
	}
	for col := 0; col < b.cols; col++ {
		if i := row*b.cols + col; b.cells[i].Occupied {
			return i
		}
	}
	return -1
}

// LastInRow returns the last occupied index scanning right to left, or -1.
func (b *Board) LastInRow(row int) int {
	if row < 0 || row >= b.rows {
		return -1
	}
	for col := b.cols - 1; col >= 0; col-- {
		if i := row*b.cols + col; b.cells[i].Occupied {
			return i
		}
	}
	return -1
}

// RemoveRow deletes row, shifts every row below it up by one and appends a
// fresh empty row at the bottom.
func (b *Board) RemoveRow(row int) {
	start := row * b.cols
	copy(b.cells[start:], b.cells[start+b.cols:])
	for i := len(b.cells) - b.cols; i < len(b.cells); i++ {
		b.cells[i] = Cell{Tag: TagNormal}
	}
	b.recompute()
}

// clearTags resets every tag equal to one of ts back to normal.
func (b *Board) clearTags(ts ...Tag) {
	for i := range b.cells {
		for _, t := range ts {
			if b.cells[i].Tag == t {
				b.cells[i].Tag = TagNormal
				break
			}
		}
	}
}

func (b *Board) recompute() {
	b.highest = -1
	for i := len(b.cells) - 1; i >= 0; i-- {
		if b.cells[i].Occupied {
			b.highest = i
			return
		}
	}
}
