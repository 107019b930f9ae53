package notifylog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists notification log entries in Postgres.
//
// There is no unique constraint on (type, session_id) and no locking between
// the HasLog check and the Create write. Cycles run daily and sequentially,
// so the check-then-write window is accepted; two cycles running at the same
// instant could double-send. That gap is documented rather than guarded.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// HasLog reports whether a SENT entry already exists for the rule/session pair.
func (s *PGStore) HasLog(ctx context.Context, ruleType, sessionID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM notification_logs
            WHERE type = $1 AND session_id = $2 AND status = 'SENT'
        )
    `
	var exists bool
	if err := s.pool.QueryRow(ctx, query, ruleType, sessionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("notifylog: check log: %w", err)
	}
	return exists, nil
}

// Create appends a new entry. The id and created_at default when unset.
func (s *PGStore) Create(ctx context.Context, entry Entry) error {
	if entry.Type == "" || entry.SessionID == "" {
		return fmt.Errorf("notifylog: entry requires type and session id")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Status == "" {
		entry.Status = StatusSent
	}

	const query = `
        INSERT INTO notification_logs (id, type, session_id, recipient, status, created_at)
        VALUES ($1, $2, $3, $4, $5, COALESCE(NULLIF($6::timestamptz, '0001-01-01T00:00:00Z'::timestamptz), now()))
    `
	if _, err := s.pool.Exec(ctx, query,
		entry.ID, entry.Type, entry.SessionID, entry.Recipient, entry.Status, entry.CreatedAt,
	); err != nil {
		return fmt.Errorf("notifylog: insert log: %w", err)
	}
	return nil
}
