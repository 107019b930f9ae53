package notifylog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TestLogRoundTrip_Integration connects to a real PostgreSQL via DATABASE_URL
// and verifies the check-then-write behavior the engine relies on.
func TestLogRoundTrip_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pool: %v", err)
	}
	defer pool.Close()

	var exists bool
	if err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'notification_logs')`,
	).Scan(&exists); err != nil || !exists {
		t.Skip("database schema missing; apply migrations first")
	}

	// Seed the foreign-key chain for one session.
	var clientID, formationID, sessionID string
	if err := pool.QueryRow(ctx,
		`INSERT INTO clients (company_name, email) VALUES ('Log Test Co', 'log@test.example') RETURNING id`,
	).Scan(&clientID); err != nil {
		t.Fatalf("seed client: %v", err)
	}
	if err := pool.QueryRow(ctx,
		`INSERT INTO formations (title) VALUES ('Log Test Formation') RETURNING id`,
	).Scan(&formationID); err != nil {
		t.Fatalf("seed formation: %v", err)
	}
	if err := pool.QueryRow(ctx,
		`INSERT INTO sessions (client_id, formation_id, session_date) VALUES ($1, $2, now() + interval '10 days') RETURNING id`,
		clientID, formationID,
	).Scan(&sessionID); err != nil {
		t.Fatalf("seed session: %v", err)
	}

	store := NewStore(pool)

	seen, err := store.HasLog(ctx, "PROGRAM_SEND_J30", sessionID)
	if err != nil {
		t.Fatalf("has log: %v", err)
	}
	if seen {
		t.Fatal("fresh session must have no log entry")
	}

	if err := store.Create(ctx, Entry{
		Type:      "PROGRAM_SEND_J30",
		SessionID: sessionID,
		Recipient: "log@test.example",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	seen, err = store.HasLog(ctx, "PROGRAM_SEND_J30", sessionID)
	if err != nil {
		t.Fatalf("has log after create: %v", err)
	}
	if !seen {
		t.Fatal("expected the entry to be visible")
	}

	// Another rule type for the same session is still unsent.
	seen, err = store.HasLog(ctx, "DOC_PACK_J7", sessionID)
	if err != nil {
		t.Fatalf("has log other type: %v", err)
	}
	if seen {
		t.Fatal("a different rule type must not be marked sent")
	}

	// Defaults: id and created_at are filled in when the caller leaves them zero.
	var filledID string
	var createdAt time.Time
	if err := pool.QueryRow(ctx,
		`SELECT id, created_at FROM notification_logs WHERE type = 'PROGRAM_SEND_J30' AND session_id = $1`,
		sessionID,
	).Scan(&filledID, &createdAt); err != nil {
		t.Fatalf("read back: %v", err)
	}
	if filledID == "" || createdAt.IsZero() {
		t.Fatalf("expected defaulted id and created_at, got %q / %v", filledID, createdAt)
	}
}
