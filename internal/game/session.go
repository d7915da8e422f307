// internal/game/session.go
//
// Session is the single owner of a game: board, selection, score and the
// playing → win/gameover state machine.
//
// Responsibilities:
//   - Toggle selection and evaluate a full pair automatically.
//   - Remove matched pairs and drive the row-collapse cascade.
//   - Refill on explicit request (see refill.go).
//   - Re-deal on Reset.
//
// A Session is not safe for concurrent use; callers serialize access.

package game

import (
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Session holds the full state of one game.
type Session struct {
	ID        string    // unique session identifier
	Daily     string    // YYYY-MM-DD for daily challenge sessions, empty otherwise
	StartedAt time.Time // first deal (UTC)

	cfg       Config
	board     *Board
	selection []int
	evaluated bool // invalid_pair / not_neighbor tags are on the board
	score     int
	moves     int
	refills   int
	state     State

	seed  int64      // seed of the current deal
	seeds *rand.Rand // source of seeds for later deals

	sched     Scheduler
	gen       int   // bumped by Reset; stale scheduler callbacks compare against it
	pending   int   // row marked for collapse, -1 when none
	cursor    int   // row the cascade resumes from
	collapsed []int // rows removed by the current cascade
}

// NewID returns a fresh session identifier.
func NewID() string { return uuid.NewString() }

// New constructs a session and deals the first board from seed.
func New(cfg Config, seed int64) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s := &Session{
		ID:        NewID(),
		StartedAt: time.Now().UTC(),
		cfg:       cfg,
		board:     NewBoard(cfg),
		seed:      seed,
		seeds:     rand.New(rand.NewSource(seed)),
	}
	s.deal()
	return s, nil
}

// SetScheduler installs the host's delay between marking a row and
// collapsing it. With no scheduler the host calls ApplyCollapse itself.
func (s *Session) SetScheduler(sc Scheduler) { s.sched = sc }

// Config returns the board geometry.
func (s *Session) Config() Config { return s.cfg }

// Board exposes the board for read-only queries.
func (s *Session) Board() *Board { return s.board }

func (s *Session) Score() int      { return s.score }
func (s *Session) State() State    { return s.state }
func (s *Session) Moves() int      { return s.moves }
func (s *Session) Refills() int    { return s.refills }
func (s *Session) Seed() int64     { return s.seed }
func (s *Session) Cell(i int) Cell { return s.board.Cell(i) }

// Selection returns a copy of the current selection in insertion order.
func (s *Session) Selection() []int { return slices.Clone(s.selection) }

// RefillTarget is the index where the next refill starts writing,
// or -1 when the board is packed.
func (s *Session) RefillTarget() int {
	next := s.board.HighestFilled() + 1
	if next >= s.board.Total() {
		return -1
	}
	return next
}

// Select toggles index in the selection and evaluates the pair once two
// cells are selected.
//
// Ignored when the game is over, a collapse is pending, the index is out of
// range or the cell is empty. Tags left by the previous evaluation are
// cleared before the toggle.
func (s *Session) Select(index int) SelectResult {
	ignored := SelectResult{Action: ActionIgnored}
	if s.state != StatePlaying || s.pending >= 0 || !s.board.Occupied(index) {
		return ignored
	}
	s.clearEvaluation()

	if pos := slices.Index(s.selection, index); pos >= 0 {
		s.selection = slices.Delete(s.selection, pos, pos+1)
		s.board.SetTag(index, TagNormal)
		return SelectResult{Action: ActionRemoved}
	}
	if len(s.selection) >= 2 {
		return ignored
	}
	s.selection = append(s.selection, index)
	s.board.SetTag(index, TagSelected)

	res := SelectResult{Action: ActionAdded}
	if len(s.selection) == 2 {
		s.resolvePair(&res)
	}
	return res
}

// resolvePair evaluates the two selected cells and applies the outcome.
func (s *Session) resolvePair(res *SelectResult) {
	a, b := s.selection[0], s.selection[1]
	s.selection = s.selection[:0]
	res.Outcome = s.board.Evaluate(a, b)

	switch res.Outcome {
	case OutcomeMatch:
		before := s.score
		s.board.Clear(a)
		s.board.Clear(b)
		s.score++
		s.moves++
		s.startCascade()
		res.ScoreDelta = s.score - before
		res.CollapsedRows = slices.Clone(s.collapsed)
		res.RowsCleared = len(s.collapsed)
		res.Pending = s.pending >= 0
	case OutcomeInvalidPair:
		s.flag(a, b, TagInvalidPair)
	default:
		s.flag(a, b, TagNotNeighbor)
	}
}

func (s *Session) flag(a, b int, t Tag) {
	s.board.SetTag(a, t)
	s.board.SetTag(b, t)
	s.evaluated = true
}

// clearEvaluation drops evaluation tags from the previous pair.
func (s *Session) clearEvaluation() {
	if !s.evaluated {
		return
	}
	s.board.clearTags(TagInvalidPair, TagNotNeighbor)
	s.evaluated = false
	s.selection = s.selection[:0]
}

// clearSelection drops any half-made selection together with its tags.
func (s *Session) clearSelection() {
	s.clearEvaluation()
	s.board.clearTags(TagSelected)
	s.selection = s.selection[:0]
}

// Reset discards the current game and deals a new board.
func (s *Session) Reset() Snapshot {
	s.gen++
	s.seed = s.seeds.Int63()
	s.StartedAt = time.Now().UTC()
	s.deal()
	return s.Snapshot()
}

func (s *Session) deal() {
	s.board.Reset(rand.New(rand.NewSource(s.seed)))
	s.selection = nil
	s.evaluated = false
	s.score, s.moves, s.refills = 0, 0, 0
	s.state = StatePlaying
	s.pending, s.cursor = -1, 0
	s.collapsed = nil
}

// checkWin moves a playing session to Win once the board is empty.
func (s *Session) checkWin() {
	if s.state == StatePlaying && s.board.Empty() {
		s.state = StateWin
	}
}
