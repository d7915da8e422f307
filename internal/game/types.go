// internal/game/types.go
//
// Core type definitions for the tenpair match engine.
// Defines:
//   - State:   session lifecycle (playing / win / gameover).
//   - Tag:     per-cell marker read by the renderer.
//   - Action / Outcome: result tags returned by Select.
//   - Result structs for Select, Refill and ApplyCollapse.
//   - Config:  board dimensions.

package game

import "errors"

// State is the coarse lifecycle of a session.
// Win and GameOver are terminal; only Reset leaves them.
type State string

const (
	StatePlaying  State = "playing"
	StateWin      State = "win"
	StateGameOver State = "gameover"
)

// Terminal reports whether no further selection or refill is accepted.
func (s State) Terminal() bool { return s == StateWin || s == StateGameOver }

// Tag marks a cell for the rendering collaborator.
//   - "normal":       nothing to show.
//   - "selected":     part of the pending selection.
//   - "invalid_pair": last evaluated pair were neighbors but did not match.
//   - "not_neighbor": last evaluated pair were not neighbors.
type Tag string

const (
	TagNormal      Tag = "normal"
	TagSelected    Tag = "selected"
	TagInvalidPair Tag = "invalid_pair"
	TagNotNeighbor Tag = "not_neighbor"
)

// Action is what Select did with the requested index.
type Action string

const (
	ActionAdded   Action = "added"
	ActionRemoved Action = "removed"
	ActionIgnored Action = "ignored"
)

// Outcome is the evaluation of a full two-cell selection.
// OutcomeNone means no evaluation happened on this call.
type Outcome string

const (
	OutcomeNone         Outcome = ""
	OutcomeMatch        Outcome = "match"
	OutcomeInvalidPair  Outcome = "invalid_pair"
	OutcomeNotNeighbors Outcome = "not_neighbors"
)

// RowBonus is awarded for each collapsed row.
const RowBonus = 10

// Default board dimensions.
const (
	DefaultRows     = 10
	DefaultCols     = 9
	DefaultFillRows = 3

	// MaxCells bounds Rows*Cols.
	MaxCells = 1 << 20
)

var (
	// ErrInvalidConfig is returned by New for unusable dimensions.
	ErrInvalidConfig = errors.New("game: invalid config")
	// ErrInvalidSnapshot is returned by Restore for inconsistent input.
	ErrInvalidSnapshot = errors.New("game: invalid snapshot")
)

// Config holds the board geometry for a session.
type Config struct {
	Rows     int `json:"rows"`
	Cols     int `json:"cols"`
	FillRows int `json:"fillRows"` // rows dealt with random digits on reset
}

// DefaultConfig returns the classic 10x9 board with three dealt rows.
func DefaultConfig() Config {
	return Config{Rows: DefaultRows, Cols: DefaultCols, FillRows: DefaultFillRows}
}

func (c Config) validate() error {
	if c.Rows <= 0 || c.Cols <= 0 {
		return ErrInvalidConfig
	}
	// divide before multiplying: Rows*Cols may overflow int
	if c.Rows > MaxCells/c.Cols {
		return ErrInvalidConfig
	}
	if c.FillRows < 0 || c.FillRows > c.Rows {
		return ErrInvalidConfig
	}
	return nil
}

// SelectResult reports what a Select call did.
//
// Outcome is set only when the call completed a pair. For a match,
// ScoreDelta includes the row bonuses already applied; Pending is true when a
// row has been marked for collapse and is waiting on ApplyCollapse.
type SelectResult struct {
	Action        Action  `json:"action"`
	Outcome       Outcome `json:"outcome,omitempty"`
	ScoreDelta    int     `json:"scoreDelta"`
	RowsCleared   int     `json:"rowsCleared"`
	CollapsedRows []int   `json:"collapsedRows,omitempty"`
	Pending       bool    `json:"pending"`
}

// RefillResult reports what a Refill call did.
type RefillResult struct {
	CellsAdded    int   `json:"cellsAdded"`
	State         State `json:"state"`
	Ignored       bool  `json:"ignored"`
	RowsCleared   int   `json:"rowsCleared"`
	CollapsedRows []int `json:"collapsedRows,omitempty"`
}

// CollapseResult reports one ApplyCollapse step.
type CollapseResult struct {
	Applied bool  `json:"applied"`
	Row     int   `json:"row"`
	Bonus   int   `json:"bonus"`
	Pending bool  `json:"pending"` // another row was marked by the cascade
	State   State `json:"state"`
}
