package game

import (
	"math/rand"
	"testing"
)

func TestNeighbors(t *testing.T) {
	cases := []struct {
		name string
		rows []string
		a, b int
		want bool
	}{
		{"horizontal adjacent", []string{"12.", "..."}, 0, 1, true},
		{"horizontal across gap", []string{"1.3", "..."}, 0, 2, true},
		{"horizontal blocked", []string{"123", "..."}, 0, 2, false},
		{"vertical across gap", []string{"1..", "...", "7.."}, 0, 6, true},
		{"vertical blocked", []string{"1..", "4..", "7.."}, 0, 6, false},
		{"diagonal across gap", []string{"1..", "...", "..9"}, 0, 8, true},
		{"anti-diagonal", []string{"..3", "...", "7.."}, 2, 6, true},
		{"knight move", []string{"1..", "...", ".8."}, 0, 7, false},
		{"row wrap", []string{".12", "34."}, 2, 3, true},
		{"row wrap reversed", []string{".12", "34."}, 3, 2, true},
		{"wrap needs last of row", []string{"12.", "..4"}, 0, 5, false},
		{"wrap needs first of next row", []string{"..12", "34.."}, 3, 5, false},
		{"wrap skips an empty row", []string{"...2", "....", "7..."}, 3, 8, false},
		{"no wrap from last row to first", []string{"1...", ".5..", "...9"}, 11, 0, false},
		{"same cell", []string{"12.", "..."}, 0, 0, false},
		{"empty target", []string{"1..", "..."}, 0, 1, false},
		{"out of range", []string{"1..", "..."}, 0, 6, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := sessionFromRows(t, tc.rows...).Board()
			if got := b.Neighbors(tc.a, tc.b); got != tc.want {
				t.Fatalf("Neighbors(%d,%d) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestNeighborsSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for round := 0; round < 50; round++ {
		b := NewBoard(Config{Rows: 6, Cols: 9})
		for i := range b.cells {
			if rng.Intn(2) == 0 {
				b.cells[i] = Cell{Occupied: true, Value: rng.Intn(9) + 1, Tag: TagNormal}
			}
		}
		b.recompute()

		for a := 0; a < b.Total(); a++ {
			if !b.Occupied(a) {
				continue
			}
			for c := a + 1; c < b.Total(); c++ {
				if !b.Occupied(c) {
					continue
				}
				if b.Neighbors(a, c) != b.Neighbors(c, a) {
					t.Fatalf("round %d: Neighbors(%d,%d) != Neighbors(%d,%d)\n%v", round, a, c, c, a, rowsOf(b))
				}
			}
		}
	}
}

func TestEvaluate(t *testing.T) {
	cases := []struct {
		name string
		rows []string
		a, b int
		want Outcome
	}{
		{"four and six", []string{"46.", "..."}, 0, 1, OutcomeMatch},
		{"equal digits", []string{"77.", "..."}, 0, 1, OutcomeMatch},
		{"five and five", []string{"5..", "5.."}, 0, 3, OutcomeMatch},
		{"neighbors that do not pair", []string{"45.", "..."}, 0, 1, OutcomeInvalidPair},
		{"pairing digits blocked", []string{"416", "..."}, 0, 2, OutcomeNotNeighbors},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := sessionFromRows(t, tc.rows...).Board()
			if got := b.Evaluate(tc.a, tc.b); got != tc.want {
				t.Fatalf("Evaluate(%d,%d) = %q, want %q", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestComplementary(t *testing.T) {
	for x := 1; x <= 9; x++ {
		for y := 1; y <= 9; y++ {
			want := x == y || x+y == 10
			if got := Complementary(x, y); got != want {
				t.Fatalf("Complementary(%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}
