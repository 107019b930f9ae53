package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Oracle is an SQL invariant over the notifier's tables: any returned row is
// a violation.
type Oracle struct {
	Name string
	SQL  string
}

func All() []Oracle {
	return []Oracle{
		{
			// Sequential cycles must never double-send a rule for a session.
			Name: "O1_at_most_one_sent_per_rule_session",
			SQL: `SELECT type, session_id, COUNT(*) FROM notification_logs
                  WHERE status = 'SENT'
                  GROUP BY type, session_id HAVING COUNT(*) > 1`,
		},
		{
			Name: "O2_known_rule_types_only",
			SQL: `SELECT id, type FROM notification_logs
                  WHERE type NOT IN ('LOGISTICS_REMINDER_48H','PARTICIPANTS_ALERT_J15',
                                     'PARTICIPANTS_CRITICAL_J9','PROGRAM_SEND_J30',
                                     'MISSION_REMINDER_J21','DOC_PACK_J7','PROOF_REMINDER_J1')`,
		},
		{
			// The log is append-only with a single terminal status: a failed
			// send leaves no row at all.
			Name: "O3_sent_is_the_only_status",
			SQL:  `SELECT id, status FROM notification_logs WHERE status <> 'SENT'`,
		},
		{
			Name: "O4_recipient_always_recorded",
			SQL:  `SELECT id FROM notification_logs WHERE recipient IS NULL OR btrim(recipient) = ''`,
		},
		{
			// Trainer-facing rules must address the assigned trainer.
			Name: "O5_trainer_rules_reach_the_trainer",
			SQL: `SELECT l.id, l.type, l.recipient FROM notification_logs l
                  JOIN sessions s ON s.id = l.session_id
                  LEFT JOIN trainers t ON t.id = s.trainer_id
                  WHERE l.type IN ('MISSION_REMINDER_J21','DOC_PACK_J7','PROOF_REMINDER_J1')
                    AND (t.email IS NULL OR l.recipient <> t.email)`,
		},
		{
			// Client-facing rules must address the booking client.
			Name: "O6_client_rules_reach_the_client",
			SQL: `SELECT l.id, l.type, l.recipient FROM notification_logs l
                  JOIN sessions s ON s.id = l.session_id
                  JOIN clients c ON c.id = s.client_id
                  WHERE l.type IN ('LOGISTICS_REMINDER_48H','PARTICIPANTS_ALERT_J15',
                                   'PARTICIPANTS_CRITICAL_J9','PROGRAM_SEND_J30')
                    AND l.recipient <> c.email`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and a sample
// row) or an empty name when every invariant holds.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		if rows.Next() {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
	}
	return "", "", nil
}
