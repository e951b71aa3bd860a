package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/MatheusPlinio/DotWysion/internal/attendance/models"
	"github.com/MatheusPlinio/DotWysion/pkg/platform/sentinel"
)

// PostgresStore persists the ledger in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const eventColumns = `id, user_id, user_name, kind, occurred_at, note, created_at`

func (s *PostgresStore) GetLatest(ctx context.Context, userID string) (*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM attendance_events
		WHERE user_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT 1
	`
	event, err := scanEvent(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest event: %w", err)
	}
	return event, nil
}

// AppendAfter serializes appends per user with a transaction-scoped advisory
// lock, then re-checks the latest event ID before inserting. Two racing
// punches for the same user queue on the lock; the loser re-reads a changed
// latest ID and gets sentinel.ErrConflict with nothing written.
func (s *PostgresStore) AppendAfter(ctx context.Context, event models.Event, afterID *int64) (*models.Event, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin append tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, event.UserID); err != nil {
		return nil, fmt.Errorf("acquire user append lock: %w", err)
	}

	var latestID *int64
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM attendance_events
		WHERE user_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT 1
	`, event.UserID).Scan(&latestID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("recheck latest event: %w", err)
	}

	if !sameID(latestID, afterID) {
		return nil, sentinel.ErrConflict
	}

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO attendance_events (user_id, user_name, kind, occurred_at, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, event.UserID, event.UserName, event.Kind.String(), event.OccurredAt, nullable(event.Note), event.CreatedAt).Scan(&event.ID)
	if err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit append tx: %w", err)
	}
	return &event, nil
}

func (s *PostgresStore) Query(ctx context.Context, userID string, from, to time.Time) ([]models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM attendance_events
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func (s *PostgresStore) ListRecent(ctx context.Context, userID string, limit int) ([]models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM attendance_events
		WHERE user_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		event models.Event
		kind  string
		note  sql.NullString
	)
	err := row.Scan(&event.ID, &event.UserID, &event.UserName, &kind, &event.OccurredAt, &note, &event.CreatedAt)
	if err != nil {
		return nil, err
	}
	event.Kind = models.Kind(kind)
	event.Note = note.String
	return &event, nil
}

func scanEvents(rows *sql.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
