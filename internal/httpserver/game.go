// internal/httpserver/game.go
//
// Game endpoints and their database bookkeeping.
//   - POST /game/new     → deal a new session
//   - GET  /game/{id}    → current board
//   - POST /game/select  → select/deselect a cell, pairs evaluate automatically
//   - POST /game/refill  → copy the visible digits onto the tail of the board
//   - POST /game/reset   → re-deal the same session (not for daily games)
//
// Every session owns a row in the games table (user_id or anonymous_id).
// When a session turns terminal the row is finished, the owner's stats are
// bumped and, for daily sessions, a daily result is recorded.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tenpair/internal/daily"
	"github.com/robalobadob/tenpair/internal/game"
	"github.com/robalobadob/tenpair/internal/store"
)

// maxCells bounds client-chosen board sizes.
const maxCells = 4096

// boardRes is the common response for endpoints that return a whole board.
type boardRes struct {
	GameID string        `json:"gameId"`
	Board  game.Snapshot `json:"board"`
}

// owner identifies who a games row belongs to.
type owner struct {
	userID string
	anonID string
}

// id is the identity used for daily results.
func (o owner) id() string {
	if o.userID != "" {
		return o.userID
	}
	return o.anonID
}

// clause returns the WHERE fragment and argument that scope a games row to o.
func (o owner) clause() (string, any) {
	if o.userID != "" {
		return `user_id=?`, o.userID
	}
	return `anonymous_id=?`, o.anonID
}

// ownerOf resolves the caller: the authenticated user, else the anon cookie.
func (s *Server) ownerOf(w http.ResponseWriter, r *http.Request) owner {
	if me := userFrom(r); me != nil {
		return owner{userID: me.ID}
	}
	return owner{anonID: s.ensureAnonID(w, r)}
}

// loadSession fetches a session and reattaches the scheduler, which is not
// part of stored state. Caller holds s.mu.
func (s *Server) loadSession(ctx context.Context, id string) (*game.Session, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.SetScheduler(game.Immediate)
	return sess, nil
}

// sessionError maps a store error onto a JSON response.
func sessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	log.Error().Err(err).Msg("load session")
	http.Error(w, `{"error":"load_failed"}`, http.StatusInternalServerError)
}

// ------------------------------ /game/new ----------------------------------

type newGameReq struct {
	Rows     int `json:"rows"`
	Cols     int `json:"cols"`
	FillRows int `json:"fillRows"`
}

// boardConfig overlays the request's non-zero dimensions on the server default.
func (s *Server) boardConfig(req newGameReq) (game.Config, bool) {
	cfg := s.cfg.Board
	if req.Rows != 0 {
		cfg.Rows = req.Rows
	}
	if req.Cols != 0 {
		cfg.Cols = req.Cols
	}
	if req.FillRows != 0 {
		cfg.FillRows = req.FillRows
	}
	if cfg.Rows <= 0 || cfg.Cols <= 0 || cfg.Rows > maxCells/cfg.Cols {
		return cfg, false
	}
	return cfg, true
}

// handleNewGame deals a fresh session and persists its owner row.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req) // empty body means defaults

	cfg, ok := s.boardConfig(req)
	if !ok {
		http.Error(w, `{"error":"invalid_config"}`, http.StatusBadRequest)
		return
	}
	sess, err := game.New(cfg, time.Now().UnixNano())
	if err != nil {
		http.Error(w, `{"error":"invalid_config"}`, http.StatusBadRequest)
		return
	}
	o := s.ownerOf(w, r)

	s.mu.Lock()
	err = s.store.Save(r.Context(), sess)
	s.mu.Unlock()
	if err != nil {
		log.Error().Err(err).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	s.insertGameRow(r.Context(), sess, o)

	_ = json.NewEncoder(w).Encode(boardRes{GameID: sess.ID, Board: sess.Snapshot()})
}

// insertGameRow records a new session for its owner (best effort).
func (s *Server) insertGameRow(ctx context.Context, sess *game.Session, o owner) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO games (id, user_id, anonymous_id, daily_date, started_at, status)
		 VALUES (?,?,?,?,?,?)`,
		sess.ID, nullIfEmpty(o.userID), nullIfEmpty(o.anonID), nullIfEmpty(sess.Daily),
		sess.StartedAt.Format(time.RFC3339), string(game.StatePlaying))
	if err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("insert game row")
	}
}

// ------------------------------ /game/{id} ---------------------------------

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	sess, err := s.loadSession(r.Context(), id)
	s.mu.Unlock()
	if err != nil {
		sessionError(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(boardRes{GameID: sess.ID, Board: sess.Snapshot()})
}

// ----------------------------- /game/select --------------------------------

type selectReq struct {
	GameID string `json:"gameId"`
	Index  *int   `json:"index"`
}

type selectRes struct {
	game.SelectResult
	Board game.Snapshot `json:"board"`
}

// handleSelect applies one click. Completing a matching pair may collapse
// rows and finish the game.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GameID == "" || req.Index == nil {
		http.Error(w, `{"error":"bad_request"}`, http.StatusBadRequest)
		return
	}
	o := s.ownerOf(w, r)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.loadSession(r.Context(), req.GameID)
	if err != nil {
		sessionError(w, err)
		return
	}
	before := sess.State()
	res := sess.Select(*req.Index)
	if res.Action != game.ActionIgnored {
		if err := s.store.Save(r.Context(), sess); err != nil {
			log.Error().Err(err).Str("gameId", sess.ID).Msg("save game")
			http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
			return
		}
	}
	if res.Outcome == game.OutcomeMatch {
		s.syncGame(r.Context(), sess, o, before)
	}
	_ = json.NewEncoder(w).Encode(selectRes{SelectResult: res, Board: sess.Snapshot()})
}

// ----------------------------- /game/refill --------------------------------

type gameReq struct {
	GameID string `json:"gameId"`
}

type refillRes struct {
	game.RefillResult
	Board game.Snapshot `json:"board"`
}

func (s *Server) handleRefill(w http.ResponseWriter, r *http.Request) {
	var req gameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GameID == "" {
		http.Error(w, `{"error":"bad_request"}`, http.StatusBadRequest)
		return
	}
	o := s.ownerOf(w, r)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.loadSession(r.Context(), req.GameID)
	if err != nil {
		sessionError(w, err)
		return
	}
	before := sess.State()
	res := sess.Refill()
	if !res.Ignored {
		if err := s.store.Save(r.Context(), sess); err != nil {
			log.Error().Err(err).Str("gameId", sess.ID).Msg("save game")
			http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
			return
		}
		s.syncGame(r.Context(), sess, o, before)
	}
	_ = json.NewEncoder(w).Encode(refillRes{RefillResult: res, Board: sess.Snapshot()})
}

// ------------------------------ /game/reset --------------------------------

// handleReset re-deals a session in place. Daily boards cannot be re-dealt.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req gameReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GameID == "" {
		http.Error(w, `{"error":"bad_request"}`, http.StatusBadRequest)
		return
	}
	o := s.ownerOf(w, r)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, err := s.loadSession(r.Context(), req.GameID)
	if err != nil {
		sessionError(w, err)
		return
	}
	if sess.Daily != "" {
		http.Error(w, `{"error":"daily_locked"}`, http.StatusConflict)
		return
	}
	snap := sess.Reset()
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Str("gameId", sess.ID).Msg("save game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}

	clause, arg := o.clause()
	if _, err := s.db.ExecContext(r.Context(),
		`UPDATE games SET started_at=?, finished_at=NULL, status=?, score=0, moves=0, refills=0
		 WHERE id=? AND `+clause,
		sess.StartedAt.Format(time.RFC3339), string(game.StatePlaying), sess.ID, arg); err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("reset game row")
	}

	_ = json.NewEncoder(w).Encode(boardRes{GameID: sess.ID, Board: snap})
}

// ----------------------------- persistence ---------------------------------

// syncGame copies progress onto the games row and, if this call ended the
// game, finishes the row and bumps stats in one best-effort transaction.
// A finished daily session also records its daily result.
func (s *Server) syncGame(ctx context.Context, sess *game.Session, o owner, before game.State) {
	finished := !before.Terminal() && sess.State().Terminal()
	won := sess.State() == game.StateWin
	clause, arg := o.clause()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin sync")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE games SET score=?, moves=?, refills=? WHERE id=? AND `+clause,
		sess.Score(), sess.Moves(), sess.Refills(), sess.ID, arg); err != nil {
		log.Warn().Err(err).Msg("update game progress")
	}
	if finished {
		if _, err := tx.Exec(`UPDATE games SET status=?, finished_at=? WHERE id=? AND `+clause,
			string(sess.State()), time.Now().UTC().Format(time.RFC3339), sess.ID, arg); err != nil {
			log.Warn().Err(err).Msg("finish game")
		}
		if o.userID != "" {
			if err := bumpStats(tx, o.userID, won, sess.Score()); err != nil {
				log.Warn().Err(err).Str("user", o.userID).Msg("bump stats")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit sync")
	}

	if finished && sess.Daily != "" {
		err := s.daily.InsertResult(ctx, daily.Result{
			UserID:    o.id(),
			Date:      sess.Daily,
			Seed:      sess.Seed(),
			Score:     sess.Score(),
			Moves:     sess.Moves(),
			Won:       won,
			ElapsedMs: int(time.Since(sess.StartedAt).Milliseconds()),
		})
		if err != nil {
			log.Warn().Err(err).Str("gameId", sess.ID).Msg("insert daily result")
		}
	}
}

// bumpStats increments games played; updates wins, streak and best score (within tx).
func bumpStats(tx *sql.Tx, userID string, won bool, score int) error {
	var gp, wins, streak, best int
	row := tx.QueryRow(`SELECT games_played, wins, streak, best_score FROM users WHERE id=?`, userID)
	if err := row.Scan(&gp, &wins, &streak, &best); err != nil {
		return err
	}
	gp++
	if won {
		wins++
		streak++
	} else {
		streak = 0
	}
	best = max(best, score)
	_, err := tx.Exec(`UPDATE users SET games_played=?, wins=?, streak=?, best_score=? WHERE id=?`,
		gp, wins, streak, best, userID)
	return err
}

// nullIfEmpty maps "" to SQL NULL.
func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}
