// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
//   - POST /daily/new         → start (or resume) today's daily board
//   - GET  /daily/leaderboard → top 20 results for today (or ?date=)
//
// Every player gets the same board on a given UTC date: the deal is seeded
// with HMAC(DAILY_SALT, date). The board is played through the regular
// /game/* endpoints; the session carries its date, cannot be reset, and
// records one result per player when it finishes.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/tenpair/internal/daily"
	"github.com/robalobadob/tenpair/internal/game"
	"github.com/robalobadob/tenpair/internal/store"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	salt     string
	now      func() time.Time
	sessions map[string]string // session ID keyed by playerID|date
	mu       sync.Mutex        // guards sessions
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		salt:     s.cfg.DailySalt,
		now:      time.Now,
		sessions: make(map[string]string),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// newRes is returned by /daily/new. GameID and Board are empty once the
// player has a recorded result for the date.
type newRes struct {
	GameID string         `json:"gameId"`
	Date   string         `json:"date"`
	Played bool           `json:"played"`
	Board  *game.Snapshot `json:"board,omitempty"`
}

// handleNew creates or resumes the caller's daily session for today.
//   - A recorded result for today → Played=true.
//   - A live session for today → that session.
//   - Otherwise a freshly dealt daily board.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	o := d.srv.ownerOf(w, r)
	now := d.now()
	date := daily.DateKey(now)

	played, err := d.srv.daily.AlreadyPlayed(r.Context(), o.id(), date)
	if err != nil {
		log.Warn().Err(err).Msg("daily already played")
	}
	if played {
		_ = json.NewEncoder(w).Encode(newRes{Date: date, Played: true})
		return
	}

	key := o.id() + "|" + date
	d.srv.mu.Lock()
	defer d.srv.mu.Unlock()

	d.mu.Lock()
	id, ok := d.sessions[key]
	d.mu.Unlock()
	if ok {
		sess, err := d.srv.loadSession(r.Context(), id)
		if err == nil {
			snap := sess.Snapshot()
			_ = json.NewEncoder(w).Encode(newRes{GameID: sess.ID, Date: date, Board: &snap})
			return
		}
		if !errors.Is(err, store.ErrNotFound) {
			sessionError(w, err)
			return
		}
		// expired from the store; deal again
	}

	sess, err := game.New(d.srv.cfg.Board, daily.Seed(now, d.salt))
	if err != nil {
		log.Error().Err(err).Msg("deal daily board")
		http.Error(w, `{"error":"invalid_config"}`, http.StatusInternalServerError)
		return
	}
	sess.Daily = date
	if err := d.srv.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save daily game")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	d.srv.insertGameRow(r.Context(), sess, o)

	d.mu.Lock()
	for k := range d.sessions {
		if !strings.HasSuffix(k, "|"+date) {
			delete(d.sessions, k) // yesterday's boards
		}
	}
	d.sessions[key] = sess.ID
	d.mu.Unlock()

	snap := sess.Snapshot()
	_ = json.NewEncoder(w).Encode(newRes{GameID: sess.ID, Date: date, Board: &snap})
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.now())
	}
	rows, err := d.srv.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("daily leaderboard")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
