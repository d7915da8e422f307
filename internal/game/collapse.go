// internal/game/collapse.go
//
// Row-collapse cascade, split in two phases so a host can animate the row
// before it disappears:
//
//   mark:  the first fully empty eligible row (scanning down from the cursor)
//          becomes pending and the Scheduler, if any, is handed the apply step.
//   apply: ApplyCollapse removes the pending row, awards RowBonus and marks
//          the next one. The scan resumes at the same row index because the
//          content below has shifted into it.
//
// Each collapse lowers the eligibility bound by one row, so the cascade ends.

package game

import "slices"

// Scheduler defers apply until the host has finished the row transition.
// apply must be called exactly once.
type Scheduler interface {
	Schedule(row int, apply func())
}

// SchedulerFunc adapts a plain function to Scheduler.
type SchedulerFunc func(row int, apply func())

func (f SchedulerFunc) Schedule(row int, apply func()) { f(row, apply) }

// immediate is recognised by the cascade and applied inline, so a chain of
// collapses runs as a loop rather than nested calls.
type immediate struct{}

func (immediate) Schedule(_ int, apply func()) { apply() }

// Immediate collapses rows synchronously, inside the call that marked them.
var Immediate Scheduler = immediate{}

// PendingCollapse reports the row marked for collapse, if any.
func (s *Session) PendingCollapse() (int, bool) {
	return s.pending, s.pending >= 0
}

// ApplyCollapse removes the pending row and continues the cascade.
// It is a no-op when nothing is pending.
func (s *Session) ApplyCollapse() CollapseResult {
	if s.pending < 0 {
		return CollapseResult{Row: -1, State: s.state}
	}
	row := s.removePending()
	s.markNext()
	return CollapseResult{
		Applied: true,
		Row:     row,
		Bonus:   RowBonus,
		Pending: s.pending >= 0,
		State:   s.state,
	}
}

// removePending deletes the pending row and awards the bonus.
func (s *Session) removePending() int {
	row := s.pending
	s.pending = -1
	s.board.RemoveRow(row)
	s.score += RowBonus
	s.collapsed = append(s.collapsed, row)
	return row
}

// CollapsedRows lists the rows removed by the most recent cascade.
func (s *Session) CollapsedRows() []int { return slices.Clone(s.collapsed) }

// startCascade begins a new cascade from the top row.
func (s *Session) startCascade() {
	s.collapsed = s.collapsed[:0]
	s.cursor = 0
	s.markNext()
}

// markNext marks the next empty eligible row or, when there is none,
// settles the cascade. With the Immediate scheduler each marked row is
// removed in place and the scan continues from the same row.
func (s *Session) markNext() {
	for {
		row, ok := s.nextEmptyRow()
		if !ok {
			s.pending = -1
			s.checkWin()
			return
		}
		s.cursor, s.pending = row, row
		if _, inline := s.sched.(immediate); inline {
			s.removePending()
			continue
		}
		if s.sched != nil {
			gen := s.gen
			s.sched.Schedule(row, func() {
				if gen == s.gen && s.pending == row {
					s.ApplyCollapse()
				}
			})
		}
		return
	}
}

// nextEmptyRow scans eligible rows from the cursor for a fully empty one.
// The bound is re-read on every step because removals lower it.
func (s *Session) nextEmptyRow() (int, bool) {
	for row := s.cursor; s.board.RowEligible(row); row++ {
		if s.board.RowEmpty(row) {
			return row, true
		}
	}
	return -1, false
}
