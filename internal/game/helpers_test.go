package game

import (
	"strings"
	"testing"
)

// sessionFromRows builds a session whose board is described row by row:
// '1'..'9' are digits, '.' is an empty cell.
func sessionFromRows(t *testing.T, rows ...string) *Session {
	t.Helper()
	cols := len(rows[0])
	s, err := New(Config{Rows: len(rows), Cols: cols}, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for r, line := range rows {
		if len(line) != cols {
			t.Fatalf("row %d has %d cells, want %d", r, len(line), cols)
		}
		for c, ch := range line {
			if ch == '.' {
				continue
			}
			s.board.cells[r*cols+c] = Cell{Occupied: true, Value: int(ch - '0'), Tag: TagNormal}
		}
	}
	s.board.recompute()
	return s
}

// rowsOf renders the board back into the sessionFromRows notation.
func rowsOf(b *Board) []string {
	out := make([]string, 0, b.rows)
	for r := 0; r < b.rows; r++ {
		var sb strings.Builder
		for c := 0; c < b.cols; c++ {
			cell := b.cells[r*b.cols+c]
			if !cell.Occupied {
				sb.WriteByte('.')
				continue
			}
			sb.WriteByte(byte('0' + cell.Value))
		}
		out = append(out, sb.String())
	}
	return out
}

func assertRows(t *testing.T, b *Board, want ...string) {
	t.Helper()
	got := rowsOf(b)
	if strings.Join(got, "/") != strings.Join(want, "/") {
		t.Fatalf("board = %v, want %v", got, want)
	}
}
