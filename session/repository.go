package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository reads session aggregates from Postgres. It is the production
// SessionSource for the notification engine and is strictly read-only: the
// CRM side of the application owns every write to these tables.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FetchActive returns all sessions still in play, with client, trainer and
// formation data populated. Cancelled and archived sessions are excluded at
// the query level; callers are expected to filter cancelled sessions again
// rather than trust the fetch scope.
func (r *PGRepository) FetchActive(ctx context.Context) ([]Session, error) {
	const query = `
        SELECT s.id, s.session_date, s.created_at, s.status,
               s.participants, s.logistics, s.proof_url, s.location,
               c.id, c.company_name, c.email,
               t.id, t.full_name, t.email,
               f.id, f.title, f.program_url
        FROM sessions s
        JOIN clients c ON c.id = s.client_id
        JOIN formations f ON f.id = s.formation_id
        LEFT JOIN trainers t ON t.id = s.trainer_id
        WHERE s.status NOT IN ('CANCELLED', 'ARCHIVED')
        ORDER BY s.session_date ASC
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("session: fetch active: %w", err)
	}
	defer rows.Close()

	sessions := make([]Session, 0, 32)
	for rows.Next() {
		var (
			s            Session
			rawLogistics *string
			trainerID    sql.NullString
			trainerName  sql.NullString
			trainerEmail sql.NullString
		)
		if err := rows.Scan(
			&s.ID, &s.Date, &s.CreatedAt, &s.Status,
			&s.RawParticipants, &rawLogistics, &s.ProofURL, &s.Location,
			&s.Client.ID, &s.Client.CompanyName, &s.Client.Email,
			&trainerID, &trainerName, &trainerEmail,
			&s.Formation.ID, &s.Formation.Title, &s.Formation.ProgramURL,
		); err != nil {
			return nil, fmt.Errorf("session: scan session: %w", err)
		}

		if trainerID.Valid {
			s.Trainer = &Trainer{
				ID:       trainerID.String,
				FullName: trainerName.String,
				Email:    trainerEmail.String,
			}
		}
		s.Logistics = parseLogistics(rawLogistics)

		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session: iterate sessions: %w", err)
	}
	return sessions, nil
}

// parseLogistics decodes the serialized logistics payload. The CRM stores it
// as free-form JSON text; anything unparsable degrades to the zero value,
// which reads as incomplete and therefore keeps the logistics reminder alive.
func parseLogistics(raw *string) Logistics {
	var l Logistics
	if raw == nil || *raw == "" {
		return l
	}
	if err := json.Unmarshal([]byte(*raw), &l); err != nil {
		return Logistics{}
	}
	return l
}
