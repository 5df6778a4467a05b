package results

import (
	"context"
	"database/sql"
	"time"
)

// Win is a finished Grid Chase game.
type Win struct {
	SessionID string    `json:"-"`
	GridSize  int       `json:"gridSize"`
	Moves     int       `json:"moves"`
	CreatedAt time.Time `json:"createdAt"`
}

// BatchRun is the summary of one image batch.
type BatchRun struct {
	ID         string    `json:"batchId"`
	Filename   string    `json:"filename"`
	Rows       int       `json:"rows"`
	Processed  int       `json:"processed"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	DurationMs int64     `json:"durationMs"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) RecordWin(ctx context.Context, w Win) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO game_wins(session_id, grid_size, moves) VALUES(?,?,?)`,
		w.SessionID, w.GridSize, w.Moves,
	)
	return err
}

// Leaderboard returns the fewest-move wins for a grid size, earliest first on ties.
func (s *Store) Leaderboard(ctx context.Context, gridSize, limit int) ([]Win, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT grid_size, moves, created_at
		FROM game_wins
		WHERE grid_size=?
		ORDER BY moves ASC, created_at ASC, id ASC
		LIMIT ?`, gridSize, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Win, 0, limit)
	for rows.Next() {
		var w Win
		var created string
		if err := rows.Scan(&w.GridSize, &w.Moves, &created); err != nil {
			return nil, err
		}
		w.CreatedAt = parseTime(created)
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) RecordBatch(ctx context.Context, b BatchRun) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO batch_runs(id, filename, total_rows, processed, skipped, failed, duration_ms)
		VALUES(?,?,?,?,?,?,?)`,
		b.ID, b.Filename, b.Rows, b.Processed, b.Skipped, b.Failed, b.DurationMs,
	)
	return err
}

func (s *Store) RecentBatches(ctx context.Context, limit int) ([]BatchRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, filename, total_rows, processed, skipped, failed, duration_ms, created_at
		FROM batch_runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]BatchRun, 0, limit)
	for rows.Next() {
		var b BatchRun
		var created string
		if err := rows.Scan(&b.ID, &b.Filename, &b.Rows, &b.Processed, &b.Skipped, &b.Failed, &b.DurationMs, &created); err != nil {
			return nil, err
		}
		b.CreatedAt = parseTime(created)
		out = append(out, b)
	}
	return out, rows.Err()
}

// parseTime reads the strftime format written by the schema defaults; on error returns zero time.
func parseTime(s string) time.Time {
	t, _ := time.Parse("2006-01-02T15:04:05.999Z", s)
	return t
}
