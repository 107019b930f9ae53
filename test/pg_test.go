package test

import (
	"context"
	"io"
	"os"
	"os/exec"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"trainflow/test/infra"
)

// startDatabase provisions a migrated Postgres for a test: an explicit DSN if
// given, a Docker container when available, a local server as fallback, and a
// skip when none of those exist. Shared databases get a per-run schema.
func startDatabase(t *testing.T, ctx context.Context, overrideDSN string) *pgxpool.Pool {
	t.Helper()

	var (
		pgC        *infra.PGContainer
		dsn        string
		err        error
		usedShared bool
	)

	switch {
	case overrideDSN != "":
		dsn = overrideDSN
		usedShared = true
		pgC = &infra.PGContainer{}
	case os.Getenv("NOTIFIER_TEST_PG_DSN") != "":
		dsn = os.Getenv("NOTIFIER_TEST_PG_DSN")
		usedShared = true
		pgC = &infra.PGContainer{}
	case dockerAvailable(ctx):
		pgC, dsn, err = infra.StartPostgres16(ctx, "")
		if err != nil {
			t.Fatalf("start postgres: %v", err)
		}
	default:
		dsn, err = infra.InitLocalDatabase(ctx)
		if err != nil {
			t.Skipf("no Docker and no local PostgreSQL: %v", err)
		}
		pgC = &infra.PGContainer{}
	}
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	pool, teardown, err := infra.ApplyMigrations(ctx, dsn, usedShared)
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() {
		pool.Close()
		if err := teardown(context.Background()); err != nil {
			t.Logf("teardown warning: %v", err)
		}
	})

	return pool
}

func dockerAvailable(ctx context.Context) bool {
	if _, err := exec.LookPath("docker"); err != nil {
		return false
	}
	c := exec.CommandContext(ctx, "docker", "info")
	c.Stdout = io.Discard
	c.Stderr = io.Discard
	return c.Run() == nil
}

type seedRefs struct {
	clientID         string
	clientEmail      string
	trainerID        string
	trainerEmail     string
	formationID      string
	formationProgram string
}

func mustSeedRefs(t *testing.T, ctx context.Context, pool *pgxpool.Pool) seedRefs {
	t.Helper()
	s := seedRefs{
		clientEmail:      "contact@acme.test",
		trainerEmail:     "jo@trainers.test",
		formationProgram: "https://cdn.trainflow.test/programs/go-fundamentals.pdf",
	}
	if err := pool.QueryRow(ctx, `INSERT INTO clients (company_name, email) VALUES ('Acme', $1) RETURNING id`,
		s.clientEmail).Scan(&s.clientID); err != nil {
		t.Fatalf("seed client: %v", err)
	}
	if err := pool.QueryRow(ctx, `INSERT INTO trainers (full_name, email, zones, expertises)
            VALUES ('Jo Formateur', $1, '{"75","92"}', '{"go"}') RETURNING id`,
		s.trainerEmail).Scan(&s.trainerID); err != nil {
		t.Fatalf("seed trainer: %v", err)
	}
	if err := pool.QueryRow(ctx, `INSERT INTO formations (title, program_url) VALUES ('Go Fundamentals', $1) RETURNING id`,
		s.formationProgram).Scan(&s.formationID); err != nil {
		t.Fatalf("seed formation: %v", err)
	}
	return s
}
