// Package actors simulates the CRM side of the system: concurrent writers
// that book, update, cancel and close out sessions while the notifier cycles
// over them. The notifier itself never writes to these tables.
package actors

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Refs carries the seeded reference rows the actors attach sessions to.
type Refs struct {
	ClientID    string
	TrainerID   string
	FormationID string
}

var participantPayloads = []any{
	nil,
	"",
	"[]",
	"null",
	`[{"name":"Ada Lovelace","email":"ada@acme.test"}]`,
	`[{"name":"Ada Lovelace","email":"ada@acme.test"},{"name":"Alan Turing","email":"alan@acme.test"}]`,
	"Marie, Pierre et 3 autres", // free text pasted by a client
}

var logisticsPayloads = []any{
	nil,
	"{}",
	"not even json",
	`{"wifi":true,"subsidized":false}`,
	`{"wifi":true,"subsidized":false,"material":"projector","access_notes":"badge at reception"}`,
}

// Booker inserts sessions with dates scattered across every rule window,
// including past dates and already-cancelled bookings. Insert failures under
// chaos are ignored; the next tick retries with fresh data.
func Booker(ctx context.Context, pool *pgxpool.Pool, refs Refs, stop <-chan struct{}) error {
	statuses := []string{"PENDING_APPROVAL", "OFFER_SENT", "CONFIRMED", "CONFIRMED", "CANCELLED"}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		// -2 days .. +33 days around now
		date := time.Now().AddDate(0, 0, rand.Intn(36)-2)
		var trainerID any
		if rand.Intn(3) > 0 {
			trainerID = refs.TrainerID
		}
		_, _ = pool.Exec(ctx, `INSERT INTO sessions
                (client_id, trainer_id, formation_id, session_date, status, participants, logistics, created_at)
                VALUES ($1,$2,$3,$4,$5,$6,$7, now() - ($8 || ' hours')::interval)`,
			refs.ClientID, trainerID, refs.FormationID, date,
			statuses[rand.Intn(len(statuses))],
			participantPayloads[rand.Intn(len(participantPayloads))],
			logisticsPayloads[rand.Intn(len(logisticsPayloads))],
			fmt.Sprint(rand.Intn(96)),
		)
		time.Sleep(time.Duration(20+rand.Intn(40)) * time.Millisecond)
	}
}

// ClientUpdater fills in participant lists and logistics on random active
// sessions, flipping them out of the reminder rules' guards mid-flight.
func ClientUpdater(ctx context.Context, pool *pgxpool.Pool, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		if rand.Intn(2) == 0 {
			_, _ = pool.Exec(ctx, `UPDATE sessions
                    SET participants = $1, updated_at = now()
                    WHERE id = (SELECT id FROM sessions
                                WHERE status NOT IN ('CANCELLED','ARCHIVED')
                                ORDER BY random() LIMIT 1)`,
				participantPayloads[1+rand.Intn(len(participantPayloads)-1)])
		} else {
			_, _ = pool.Exec(ctx, `UPDATE sessions
                    SET logistics = $1, updated_at = now()
                    WHERE id = (SELECT id FROM sessions
                                WHERE status NOT IN ('CANCELLED','ARCHIVED')
                                ORDER BY random() LIMIT 1)`,
				logisticsPayloads[1+rand.Intn(len(logisticsPayloads)-1)])
		}
		time.Sleep(time.Duration(30+rand.Intn(60)) * time.Millisecond)
	}
}

// ProofUploader closes out past sessions by attaching an attendance proof,
// which retires the proof reminder for them.
func ProofUploader(ctx context.Context, pool *pgxpool.Pool, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		_, _ = pool.Exec(ctx, `UPDATE sessions
                SET proof_url = 'uploads/proof-' || id || '.pdf',
                    status = 'PROOF_RECEIVED', updated_at = now()
                WHERE id = (SELECT id FROM sessions
                            WHERE session_date < now() AND proof_url IS NULL
                              AND status NOT IN ('CANCELLED','ARCHIVED')
                            ORDER BY random() LIMIT 1)`)
		time.Sleep(time.Duration(100+rand.Intn(100)) * time.Millisecond)
	}
}

// Canceller cancels random not-yet-confirmed sessions; the notifier must
// never send anything for them afterwards.
func Canceller(ctx context.Context, pool *pgxpool.Pool, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		_, _ = pool.Exec(ctx, `UPDATE sessions
                SET status = 'CANCELLED', updated_at = now()
                WHERE id = (SELECT id FROM sessions
                            WHERE status IN ('PENDING_APPROVAL','OFFER_SENT')
                            ORDER BY random() LIMIT 1)`)
		time.Sleep(time.Duration(150+rand.Intn(150)) * time.Millisecond)
	}
}
