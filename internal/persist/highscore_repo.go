package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// TopTen is how many scores the highscore list shows.
const TopTen = 10

type HighscoreRow struct {
	RunID  uuid.UUID // uuid.Nil for the built-in defaults
	Name   string
	Points int
	Rating string
}

type HighscoreRepo struct {
	db *DB
}

func NewHighscoreRepo(db *DB) *HighscoreRepo {
	return &HighscoreRepo{db: db}
}

// Save records one finished run.
func (r *HighscoreRepo) Save(ctx context.Context, row HighscoreRow) error {
	if row.Name == "" {
		return fmt.Errorf("save highscore: empty name")
	}
	q := fmt.Sprintf(`INSERT INTO highscores (run_id, name, points, rating) VALUES (%s, %s, %s, %s)`,
		r.db.bind(1), r.db.bind(2), r.db.bind(3), r.db.bind(4))
	if _, err := r.db.SQL.ExecContext(ctx, q, row.RunID.String(), row.Name, row.Points, row.Rating); err != nil {
		return fmt.Errorf("save highscore: %w", err)
	}
	return nil
}

// Top returns the n best scores, highest first. Ties keep insertion order.
func (r *HighscoreRepo) Top(ctx context.Context, n int) ([]HighscoreRow, error) {
	q := fmt.Sprintf(`SELECT run_id, name, points, rating FROM highscores
		ORDER BY points DESC, id ASC LIMIT %s`, r.db.bind(1))
	rows, err := r.db.SQL.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("query highscores: %w", err)
	}
	defer rows.Close()

	var out []HighscoreRow
	for rows.Next() {
		var row HighscoreRow
		var runID string
		if err := rows.Scan(&runID, &row.Name, &row.Points, &row.Rating); err != nil {
			return nil, fmt.Errorf("scan highscore: %w", err)
		}
		// Built-in rows carry a placeholder id.
		if id, err := uuid.Parse(runID); err == nil {
			row.RunID = id
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Qualifies reports whether points would enter the top n.
func (r *HighscoreRepo) Qualifies(ctx context.Context, points, n int) (bool, error) {
	top, err := r.Top(ctx, n)
	if err != nil {
		return false, err
	}
	if len(top) < n {
		return true, nil
	}
	return points > top[len(top)-1].Points, nil
}
