package httpserver

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"math"
	"math/bits"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/robalobadob/tenpair/internal/config"
	"github.com/robalobadob/tenpair/internal/database"
	"github.com/robalobadob/tenpair/internal/game"
	"github.com/robalobadob/tenpair/internal/store"
)

type testEnv struct {
	t  *testing.T
	ts *httptest.Server
	db *sql.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(database.MemoryDSN)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	cfg := config.Config{
		JWTSecret:     "test_secret",
		JWTExpiryDays: 1,
		CookieName:    "tenpair_token",
		ClientOrigin:  "http://localhost:5173",
		DailySalt:     "test_salt",
		Board:         game.DefaultConfig(),
	}
	srv := New(store.NewMemoryStore(0), db, cfg)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &testEnv{t: t, ts: ts, db: db}
}

// client is one browser: its own cookie jar.
type client struct {
	env *testEnv
	hc  *http.Client
}

func (e *testEnv) client() *client {
	jar, _ := cookiejar.New(nil)
	return &client{env: e, hc: &http.Client{Jar: jar}}
}

// do sends body as JSON and decodes the response into out when non-nil.
func (c *client) do(method, path string, body, out any) int {
	c.env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, err := http.NewRequest(method, c.env.ts.URL+path, &buf)
	if err != nil {
		c.env.t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.hc.Do(req)
	if err != nil {
		c.env.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if out != nil && res.StatusCode == http.StatusOK {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			c.env.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return res.StatusCode
}

func (c *client) newGame() boardRes {
	c.env.t.Helper()
	var res boardRes
	if code := c.do(http.MethodPost, "/game/new", map[string]any{}, &res); code != http.StatusOK {
		c.env.t.Fatalf("POST /game/new = %d", code)
	}
	return res
}

func (c *client) signup(username string) {
	c.env.t.Helper()
	code := c.do(http.MethodPost, "/auth/signup", map[string]string{"username": username, "password": "password123"}, nil)
	if code != http.StatusOK {
		c.env.t.Fatalf("signup %s = %d", username, code)
	}
}

// playToGameOver refills a fresh default board twice: 27 cells, then the
// truncated copy that overflows.
func (c *client) playToGameOver(id string) {
	c.env.t.Helper()
	var first, second refillRes
	c.do(http.MethodPost, "/game/refill", gameReq{GameID: id}, &first)
	if first.CellsAdded != 27 || first.State != game.StatePlaying {
		c.env.t.Fatalf("first refill = %+v", first.RefillResult)
	}
	c.do(http.MethodPost, "/game/refill", gameReq{GameID: id}, &second)
	if second.CellsAdded != 36 || second.State != game.StateGameOver {
		c.env.t.Fatalf("second refill = %+v", second.RefillResult)
	}
}

func occupied(snap game.Snapshot) int {
	n := 0
	for _, c := range snap.Cells {
		if c.Occupied {
			n++
		}
	}
	return n
}

func TestHealthAndNotFound(t *testing.T) {
	c := newTestEnv(t).client()
	var body map[string]bool
	if code := c.do(http.MethodGet, "/health", nil, &body); code != http.StatusOK || !body["ok"] {
		t.Fatalf("GET /health = %d %v", code, body)
	}
	if code := c.do(http.MethodGet, "/nope", nil, nil); code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d, want 404", code)
	}
}

func TestNewGameDealsDefaultBoard(t *testing.T) {
	c := newTestEnv(t).client()
	res := c.newGame()

	b := res.Board
	if res.GameID == "" || b.ID != res.GameID {
		t.Fatalf("game id %q, board id %q", res.GameID, b.ID)
	}
	if len(b.Cells) != 90 || occupied(b) != 27 {
		t.Fatalf("cells %d occupied %d, want 90 / 27", len(b.Cells), occupied(b))
	}
	if b.HighestFilled != 26 || b.RefillTarget != 27 || b.State != game.StatePlaying || b.PendingRow != -1 {
		t.Fatalf("board = highest %d target %d state %s pending %d", b.HighestFilled, b.RefillTarget, b.State, b.PendingRow)
	}

	var got boardRes
	if code := c.do(http.MethodGet, "/game/"+res.GameID, nil, &got); code != http.StatusOK || got.GameID != res.GameID {
		t.Fatalf("GET /game/{id} = %d %q", code, got.GameID)
	}
	if code := c.do(http.MethodGet, "/game/unknown", nil, nil); code != http.StatusNotFound {
		t.Fatalf("GET unknown game = %d, want 404", code)
	}
}

func TestNewGameBoardSize(t *testing.T) {
	c := newTestEnv(t).client()
	tests := []struct {
		name string
		req  newGameReq
		code int
		size int
	}{
		{"small", newGameReq{Rows: 4, Cols: 5, FillRows: 2}, http.StatusOK, 20},
		{"partial override", newGameReq{Rows: 6}, http.StatusOK, 54},
		{"too large", newGameReq{Rows: 100, Cols: 100}, http.StatusBadRequest, 0},
		{"fill exceeds rows", newGameReq{Rows: 2, Cols: 2, FillRows: 3}, http.StatusBadRequest, 0},
		{"negative", newGameReq{Cols: -1}, http.StatusBadRequest, 0},
		{"product overflows", newGameReq{Rows: math.MaxInt/3 + 1, Cols: 4}, http.StatusBadRequest, 0},
		{"product wraps to zero", newGameReq{Rows: 1 << (bits.UintSize / 2), Cols: 1 << (bits.UintSize / 2)}, http.StatusBadRequest, 0},
		{"at cap", newGameReq{Rows: maxCells / 8, Cols: 8, FillRows: 1}, http.StatusOK, maxCells},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res boardRes
			code := c.do(http.MethodPost, "/game/new", tt.req, &res)
			if code != tt.code {
				t.Fatalf("code = %d, want %d", code, tt.code)
			}
			if tt.code == http.StatusOK && len(res.Board.Cells) != tt.size {
				t.Fatalf("cells = %d, want %d", len(res.Board.Cells), tt.size)
			}
		})
	}
}

func TestSelectFlow(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()
	id := c.newGame().GameID

	steps := []struct {
		name   string
		index  int
		action game.Action
	}{
		{"add", 0, game.ActionAdded},
		{"toggle off", 0, game.ActionRemoved},
		{"out of range", 500, game.ActionIgnored},
		{"empty cell", 80, game.ActionIgnored},
	}
	for _, st := range steps {
		var res selectRes
		if code := c.do(http.MethodPost, "/game/select", map[string]any{"gameId": id, "index": st.index}, &res); code != http.StatusOK {
			t.Fatalf("%s: code %d", st.name, code)
		}
		if res.Action != st.action {
			t.Fatalf("%s: action %s, want %s", st.name, res.Action, st.action)
		}
	}

	// 0 and 1 are horizontal neighbors, so the pair is never "not_neighbors".
	var first, second selectRes
	c.do(http.MethodPost, "/game/select", map[string]any{"gameId": id, "index": 0}, &first)
	c.do(http.MethodPost, "/game/select", map[string]any{"gameId": id, "index": 1}, &second)
	switch second.Outcome {
	case game.OutcomeMatch:
		if second.Board.Score != 1 || second.Board.Cells[0].Occupied || second.Board.Cells[1].Occupied {
			t.Fatalf("match did not clear the pair: %+v", second.SelectResult)
		}
		var moves int
		if err := env.db.QueryRow(`SELECT moves FROM games WHERE id=?`, id).Scan(&moves); err != nil || moves != 1 {
			t.Fatalf("games.moves = %d, %v; want 1", moves, err)
		}
	case game.OutcomeInvalidPair:
		if second.Board.Cells[0].Tag != game.TagInvalidPair || second.Board.Cells[1].Tag != game.TagInvalidPair {
			t.Fatalf("invalid pair not tagged: %+v %+v", second.Board.Cells[0], second.Board.Cells[1])
		}
	default:
		t.Fatalf("outcome = %q", second.Outcome)
	}
	if len(second.Board.Selection) != 0 {
		t.Fatalf("selection = %v after a pair", second.Board.Selection)
	}

	bad := []any{
		map[string]any{"gameId": id},
		map[string]any{"index": 3},
	}
	for _, body := range bad {
		if code := c.do(http.MethodPost, "/game/select", body, nil); code != http.StatusBadRequest {
			t.Fatalf("select %v = %d, want 400", body, code)
		}
	}
	if code := c.do(http.MethodPost, "/game/select", map[string]any{"gameId": "nope", "index": 0}, nil); code != http.StatusNotFound {
		t.Fatalf("select unknown game = %d, want 404", code)
	}
}

func TestRefillOverflowFinishesGameAndBumpsStats(t *testing.T) {
	c := newTestEnv(t).client()
	c.signup("alice")
	id := c.newGame().GameID

	c.playToGameOver(id)

	var again refillRes
	c.do(http.MethodPost, "/game/refill", gameReq{GameID: id}, &again)
	if !again.Ignored || again.State != game.StateGameOver {
		t.Fatalf("refill after game over = %+v", again.RefillResult)
	}

	var stats struct {
		GamesPlayed int `json:"gamesPlayed"`
		Wins        int `json:"wins"`
		Streak      int `json:"streak"`
		BestScore   int `json:"bestScore"`
	}
	if code := c.do(http.MethodGet, "/stats/me", nil, &stats); code != http.StatusOK {
		t.Fatalf("GET /stats/me = %d", code)
	}
	if stats.GamesPlayed != 1 || stats.Wins != 0 || stats.Streak != 0 || stats.BestScore != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	var mine []gameRow
	c.do(http.MethodGet, "/games/mine", nil, &mine)
	if len(mine) != 1 || mine[0].ID != id || mine[0].Status != "gameover" || mine[0].Refills != 2 || mine[0].FinishedAt == "" {
		t.Fatalf("games/mine = %+v", mine)
	}

	// reset re-deals the same session and reopens the row
	var reset boardRes
	if code := c.do(http.MethodPost, "/game/reset", gameReq{GameID: id}, &reset); code != http.StatusOK {
		t.Fatalf("POST /game/reset = %d", code)
	}
	if reset.GameID != id || reset.Board.State != game.StatePlaying || occupied(reset.Board) != 27 {
		t.Fatalf("reset board = %s %s %d", reset.GameID, reset.Board.State, occupied(reset.Board))
	}
	c.do(http.MethodGet, "/games/mine", nil, &mine)
	if mine[0].Status != "playing" || mine[0].Refills != 0 {
		t.Fatalf("games/mine after reset = %+v", mine)
	}
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	if code := c.do(http.MethodGet, "/auth/me", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("GET /auth/me as guest = %d, want 401", code)
	}

	tests := []struct {
		name string
		path string
		user string
		pass string
		code int
	}{
		{"signup", "/auth/signup", "bob_1", "password123", http.StatusOK},
		{"duplicate", "/auth/signup", "BOB_1", "password123", http.StatusConflict},
		{"short name", "/auth/signup", "bo", "password123", http.StatusBadRequest},
		{"bad chars", "/auth/signup", "bob!", "password123", http.StatusBadRequest},
		{"short password", "/auth/signup", "carol", "short", http.StatusBadRequest},
		{"wrong password", "/auth/login", "bob_1", "password124", http.StatusUnauthorized},
		{"unknown user", "/auth/login", "nobody", "password123", http.StatusUnauthorized},
		{"login", "/auth/login", "bob_1", "password123", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := env.client().do(http.MethodPost, tt.path, map[string]string{"username": tt.user, "password": tt.pass}, nil)
			if code != tt.code {
				t.Fatalf("code = %d, want %d", code, tt.code)
			}
		})
	}

	if code := c.do(http.MethodPost, "/auth/login", map[string]string{"username": "bob_1", "password": "password123"}, nil); code != http.StatusOK {
		t.Fatalf("login = %d", code)
	}
	var me authUser
	if code := c.do(http.MethodGet, "/auth/me", nil, &me); code != http.StatusOK || me.Username != "bob_1" {
		t.Fatalf("GET /auth/me = %d %+v", code, me)
	}
	c.do(http.MethodPost, "/auth/logout", nil, nil)
	if code := c.do(http.MethodGet, "/auth/me", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("GET /auth/me after logout = %d, want 401", code)
	}
}

func TestSignupClaimsAnonymousGames(t *testing.T) {
	c := newTestEnv(t).client()
	id := c.newGame().GameID
	c.signup("dave")

	var mine []gameRow
	if code := c.do(http.MethodGet, "/games/mine", nil, &mine); code != http.StatusOK {
		t.Fatalf("GET /games/mine = %d", code)
	}
	if len(mine) != 1 || mine[0].ID != id || mine[0].Status != "playing" {
		t.Fatalf("games/mine = %+v", mine)
	}
}

func TestDailyChallenge(t *testing.T) {
	env := newTestEnv(t)
	c := env.client()

	var first newRes
	if code := c.do(http.MethodPost, "/daily/new", nil, &first); code != http.StatusOK {
		t.Fatalf("POST /daily/new = %d", code)
	}
	if first.Played || first.GameID == "" || first.Board == nil || first.Board.Daily != first.Date {
		t.Fatalf("daily/new = %+v", first)
	}

	var resumed newRes
	c.do(http.MethodPost, "/daily/new", nil, &resumed)
	if resumed.GameID != first.GameID {
		t.Fatalf("daily/new dealt %s, want resumed %s", resumed.GameID, first.GameID)
	}

	// another player gets the same board
	var other newRes
	env.client().do(http.MethodPost, "/daily/new", nil, &other)
	if other.GameID == first.GameID {
		t.Fatalf("players share a session")
	}
	for i := range first.Board.Cells {
		if first.Board.Cells[i] != other.Board.Cells[i] {
			t.Fatalf("daily boards differ at %d: %+v vs %+v", i, first.Board.Cells[i], other.Board.Cells[i])
		}
	}

	if code := c.do(http.MethodPost, "/game/reset", gameReq{GameID: first.GameID}, nil); code != http.StatusConflict {
		t.Fatalf("reset daily = %d, want 409", code)
	}

	c.playToGameOver(first.GameID)

	var done newRes
	c.do(http.MethodPost, "/daily/new", nil, &done)
	if !done.Played || done.GameID != "" {
		t.Fatalf("daily/new after finishing = %+v", done)
	}

	var lb lbRes
	if code := c.do(http.MethodGet, "/daily/leaderboard", nil, &lb); code != http.StatusOK {
		t.Fatalf("GET /daily/leaderboard = %d", code)
	}
	if lb.Date != first.Date || len(lb.Top) != 1 || lb.Top[0].Username != "guest" || lb.Top[0].Won {
		t.Fatalf("leaderboard = %+v", lb)
	}

	var empty lbRes
	c.do(http.MethodGet, "/daily/leaderboard?date=2000-01-01", nil, &empty)
	if empty.Top == nil || len(empty.Top) != 0 {
		t.Fatalf("leaderboard for empty date = %+v", empty)
	}
}

func TestBoardConfigRejectsOversizedDimensions(t *testing.T) {
	srv := &Server{cfg: config.Config{Board: game.DefaultConfig()}}
	wrap := 1 << (bits.UintSize / 2)
	for _, req := range []newGameReq{
		{Rows: wrap, Cols: wrap},
		{Rows: math.MaxInt, Cols: 2},
		{Rows: maxCells + 1},
		{Cols: maxCells},
	} {
		if cfg, ok := srv.boardConfig(req); ok {
			t.Fatalf("boardConfig(%+v) accepted %+v", req, cfg)
		}
	}
	if _, ok := srv.boardConfig(newGameReq{Rows: 64, Cols: 64}); !ok {
		t.Fatalf("boardConfig rejected a 64x64 board")
	}
}
