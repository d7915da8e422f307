// internal/game/snapshot.go
//
// Snapshot is the read model handed to the rendering collaborator and the
// wire form used by session stores. Restore rebuilds a Session from one.

package game

import (
	"fmt"
	"math/rand"
	"time"
)

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	ID            string    `json:"id"`
	Daily         string    `json:"daily,omitempty"`
	StartedAt     time.Time `json:"startedAt"`
	Config        Config    `json:"config"`
	Seed          int64     `json:"seed"`
	Cells         []Cell    `json:"cells"`
	Selection     []int     `json:"selection"`
	Evaluated     bool      `json:"evaluated"`
	Score         int       `json:"score"`
	Moves         int       `json:"moves"`
	Refills       int       `json:"refills"`
	State         State     `json:"state"`
	HighestFilled int       `json:"highestFilled"`
	RefillTarget  int       `json:"refillTarget"`
	PendingRow    int       `json:"pendingRow"` // -1 when no collapse is pending
}

// Snapshot copies the current session state.
func (s *Session) Snapshot() Snapshot {
	cells := make([]Cell, len(s.board.cells))
	copy(cells, s.board.cells)
	sel := s.Selection()
	if sel == nil {
		sel = []int{}
	}
	return Snapshot{
		ID:            s.ID,
		Daily:         s.Daily,
		StartedAt:     s.StartedAt,
		Config:        s.cfg,
		Seed:          s.seed,
		Cells:         cells,
		Selection:     sel,
		Evaluated:     s.evaluated,
		Score:         s.score,
		Moves:         s.moves,
		Refills:       s.refills,
		State:         s.state,
		HighestFilled: s.board.HighestFilled(),
		RefillTarget:  s.RefillTarget(),
		PendingRow:    s.pending,
	}
}

// Restore rebuilds a session from a snapshot. Derived fields (highest
// filled, refill target) are recomputed, not trusted. The scheduler is not
// part of a snapshot; set it again after restoring.
func Restore(snap Snapshot) (*Session, error) {
	cfg := snap.Config
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if len(snap.Cells) != cfg.Rows*cfg.Cols {
		return nil, fmt.Errorf("%w: %d cells for %dx%d board", ErrInvalidSnapshot, len(snap.Cells), cfg.Rows, cfg.Cols)
	}
	switch snap.State {
	case StatePlaying, StateWin, StateGameOver:
	default:
		return nil, fmt.Errorf("%w: unknown state %q", ErrInvalidSnapshot, snap.State)
	}
	if snap.Score < 0 {
		return nil, fmt.Errorf("%w: negative score", ErrInvalidSnapshot)
	}

	b := NewBoard(cfg)
	for i, c := range snap.Cells {
		if c.Occupied && (c.Value < 1 || c.Value > 9) {
			return nil, fmt.Errorf("%w: cell %d holds %d", ErrInvalidSnapshot, i, c.Value)
		}
		if !c.Occupied {
			c.Value = 0
		}
		if c.Tag == "" {
			c.Tag = TagNormal
		}
		b.cells[i] = c
	}
	b.recompute()

	if len(snap.Selection) > 1 {
		return nil, fmt.Errorf("%w: %d cells selected", ErrInvalidSnapshot, len(snap.Selection))
	}
	for _, i := range snap.Selection {
		if !b.Occupied(i) {
			return nil, fmt.Errorf("%w: selected cell %d is empty", ErrInvalidSnapshot, i)
		}
	}

	pending := snap.PendingRow
	if pending < 0 {
		pending = -1
	} else if pending >= cfg.Rows || !b.RowEmpty(pending) {
		return nil, fmt.Errorf("%w: pending row %d", ErrInvalidSnapshot, pending)
	}

	s := &Session{
		ID:        snap.ID,
		Daily:     snap.Daily,
		StartedAt: snap.StartedAt,
		cfg:       cfg,
		board:     b,
		selection: append([]int(nil), snap.Selection...),
		evaluated: snap.Evaluated,
		score:     snap.Score,
		moves:     snap.Moves,
		refills:   snap.Refills,
		state:     snap.State,
		seed:      snap.Seed,
		seeds:     rand.New(rand.NewSource(snap.Seed)),
		pending:   pending,
		cursor:    max(pending, 0),
	}
	if s.ID == "" {
		s.ID = NewID()
	}
	return s, nil
}
