package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// JournalEntry is one event that fired during a run.
type JournalEntry struct {
	RunID    uuid.UUID
	Turn     int
	Date     string
	EventID  string
	DaysLost int
	Text     string
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// Write atomically writes a batch of entries in a single transaction.
func (r *JournalRepo) Write(ctx context.Context, entries []JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.SQL.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback()

	q := fmt.Sprintf(`INSERT INTO journal (run_id, turn, game_date, event_id, days_lost, text)
		VALUES (%s, %s, %s, %s, %s, %s)`,
		r.db.bind(1), r.db.bind(2), r.db.bind(3), r.db.bind(4), r.db.bind(5), r.db.bind(6))
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, q,
			e.RunID.String(), e.Turn, e.Date, e.EventID, e.DaysLost, e.Text,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("journal commit: %w", err)
	}
	return nil
}

// ForRun returns a run's entries in turn order.
func (r *JournalRepo) ForRun(ctx context.Context, runID uuid.UUID) ([]JournalEntry, error) {
	q := fmt.Sprintf(`SELECT turn, game_date, event_id, days_lost, text FROM journal
		WHERE run_id = %s ORDER BY turn, id`, r.db.bind(1))
	rows, err := r.db.SQL.QueryContext(ctx, q, runID.String())
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		e := JournalEntry{RunID: runID}
		if err := rows.Scan(&e.Turn, &e.Date, &e.EventID, &e.DaysLost, &e.Text); err != nil {
			return nil, fmt.Errorf("scan journal: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
