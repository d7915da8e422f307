// internal/game/refill.go
//
// Refill appends a copy of every visible digit to the tail of the board.
// The copy is what ends the game: when the tail reaches the last cell the
// session moves to GameOver, and an empty board wins outright.

package game

import "slices"

// Refill copies every visible digit, in board order, onto the tail of the
// board starting right after the highest occupied cell.
//
// An empty board wins instead. When the copy would run past the last cell it
// is truncated to the free capacity and the session ends in GameOver.
// Otherwise the collapse cascade runs again over the grown board.
func (s *Session) Refill() RefillResult {
	if s.state != StatePlaying || s.pending >= 0 {
		return RefillResult{State: s.state, Ignored: true}
	}
	if s.board.Empty() {
		s.state = StateWin
		return RefillResult{State: s.state}
	}
	s.clearSelection()

	highest := s.board.HighestFilled()
	start := highest + 1
	seq := s.board.OccupiedValues(0, start)
	total := s.board.Total()

	if highest+len(seq) >= total {
		seq = seq[:total-start]
		s.board.writeRun(start, seq)
		s.refills++
		s.state = StateGameOver
		return RefillResult{CellsAdded: len(seq), State: s.state}
	}

	s.board.writeRun(start, seq)
	s.refills++
	res := RefillResult{CellsAdded: len(seq)}
	if len(seq) > 0 {
		s.startCascade()
		res.CollapsedRows = slices.Clone(s.collapsed)
		res.RowsCleared = len(s.collapsed)
	}
	res.State = s.state
	return res
}
