package daily

import (
	"context"
	"database/sql"
)

// Result is one player's finished daily board.
type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	Seed      int64  `json:"seed"`
	Score     int    `json:"score"`
	Moves     int    `json:"moves"`
	Won       bool   `json:"won"`
	ElapsedMs int    `json:"elapsedMs"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a finished board. A second result for the same
// user and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, seed, score, moves, won, elapsed_ms)
		VALUES(?,?,?,?,?,?,?)`, r.UserID, r.Date, r.Seed, r.Score, r.Moves, r.Won, r.ElapsedMs,
	)
	return err
}

// LBRow is one leaderboard line. Guests show up as "guest".
type LBRow struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Won       bool   `json:"won"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Leaderboard returns the best results for date: highest score first,
// then fastest, then earliest submitted.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT d.user_id, COALESCE(u.username, 'guest'), d.score, d.won, d.elapsed_ms
		FROM daily_results d
		LEFT JOIN users u ON u.id = d.user_id
		WHERE d.date=?
		ORDER BY d.score DESC, d.elapsed_ms ASC, d.created_at ASC
		LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.Score, &r.Won, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
