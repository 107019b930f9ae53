package test

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"trainflow/document"
	"trainflow/email"
	"trainflow/notify"
	"trainflow/notifylog"
	"trainflow/session"
	"trainflow/test/oracles"
)

type recordingSender struct {
	mu          sync.Mutex
	sends       int
	attachments int
}

func (r *recordingSender) Send(context.Context, string, string, string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends++
	return nil
}

func (r *recordingSender) SendWithAttachments(_ context.Context, _, _, _ string, atts []email.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sends++
	r.attachments += len(atts)
	return nil
}

// TestDailyCycleEndToEnd seeds one session per rule window against a real
// Postgres, runs the cycle twice, and checks the notification log against
// expectations and the SQL oracles.
func TestDailyCycleEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pool := startDatabase(t, ctx, "")
	refs := mustSeedRefs(t, ctx, pool)

	var plainFormationID string
	if err := pool.QueryRow(ctx, `INSERT INTO formations (title) VALUES ('Negotiation Basics') RETURNING id`,
	).Scan(&plainFormationID); err != nil {
		t.Fatalf("seed plain formation: %v", err)
	}

	const (
		participants  = `[{"name":"Ada Lovelace","email":"ada@acme.test"}]`
		fullLogistics = `{"wifi":true,"subsidized":false,"material":"projector","access_notes":"badge at reception"}`
	)

	now := time.Now()
	seedSession := func(date time.Time, createdAgo time.Duration, status string,
		trainer bool, formationID string, parts, logistics any) string {
		t.Helper()
		var trainerID any
		if trainer {
			trainerID = refs.trainerID
		}
		var id string
		err := pool.QueryRow(ctx, `INSERT INTO sessions
                (client_id, trainer_id, formation_id, session_date, status, participants, logistics, created_at)
                VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
			refs.clientID, trainerID, formationID, date, status, parts, logistics, now.Add(-createdAgo),
		).Scan(&id)
		if err != nil {
			t.Fatalf("seed session: %v", err)
		}
		return id
	}

	sLogistics := seedSession(now.AddDate(0, 0, 60), 72*time.Hour, "CONFIRMED", true, plainFormationID, participants, nil)
	sAlert := seedSession(now.AddDate(0, 0, 12), time.Hour, "CONFIRMED", false, plainFormationID, "[]", fullLogistics)
	sCritical := seedSession(now.AddDate(0, 0, 5), time.Hour, "CONFIRMED", false, plainFormationID, nil, fullLogistics)
	sProgram := seedSession(now.AddDate(0, 0, 25), time.Hour, "CONFIRMED", true, refs.formationID, participants, fullLogistics)
	sTrainer := seedSession(now.AddDate(0, 0, 6), time.Hour, "CONFIRMED", true, plainFormationID, participants, fullLogistics)
	sProof := seedSession(now.AddDate(0, 0, -1), time.Hour, "CONFIRMED", true, plainFormationID, participants, fullLogistics)
	seedSession(now.AddDate(0, 0, 5), 72*time.Hour, "CANCELLED", false, plainFormationID, nil, nil)

	sender := &recordingSender{}
	logStore := notifylog.NewStore(pool)
	dispatcher := notify.NewDispatcher(sender, logStore)
	rules := notify.DefaultRules(document.NewAttendanceSheet(), session.IsLogisticsStrictlyComplete)
	runner := notify.NewRunner(session.NewRepository(pool), logStore, dispatcher, rules, zap.NewNop())

	if err := runner.RunDailyCycle(ctx); err != nil {
		t.Fatalf("first cycle: %v", err)
	}

	expected := map[string][]string{
		sLogistics: {notify.TypeLogisticsReminder48H},
		sAlert:     {notify.TypeParticipantsAlertJ15},
		sCritical:  {notify.TypeParticipantsCriticalJ9},
		sProgram:   {notify.TypeProgramSendJ30},
		sTrainer:   {notify.TypeMissionReminderJ21, notify.TypeDocPackJ7},
		// Past sessions stay inside the open-ended trainer windows.
		sProof: {notify.TypeMissionReminderJ21, notify.TypeDocPackJ7, notify.TypeProofReminderJ1},
	}
	var wantTotal int
	for sessionID, types := range expected {
		wantTotal += len(types)
		for _, ruleType := range types {
			var exists bool
			if err := pool.QueryRow(ctx, `SELECT EXISTS (
                    SELECT 1 FROM notification_logs
                    WHERE type = $1 AND session_id = $2 AND status = 'SENT')`,
				ruleType, sessionID).Scan(&exists); err != nil {
				t.Fatalf("query log: %v", err)
			}
			if !exists {
				t.Errorf("missing log entry %s for session %s", ruleType, sessionID)
			}
		}
	}

	var total int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM notification_logs`).Scan(&total); err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if total != wantTotal {
		t.Fatalf("log entries = %d, want %d", total, wantTotal)
	}
	if sender.sends != wantTotal {
		t.Fatalf("sends = %d, want %d", sender.sends, wantTotal)
	}
	// One attendance sheet per doc pack.
	if sender.attachments != 2 {
		t.Fatalf("attachments = %d, want 2", sender.attachments)
	}

	// Second run: the log makes every rule a no-op.
	if err := runner.RunDailyCycle(ctx); err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM notification_logs`).Scan(&total); err != nil {
		t.Fatalf("count logs: %v", err)
	}
	if total != wantTotal || sender.sends != wantTotal {
		t.Fatalf("second cycle resent: entries=%d sends=%d, want %d", total, sender.sends, wantTotal)
	}

	if name, row, err := oracles.Run(ctx, pool); err != nil {
		t.Fatalf("oracles: %v", err)
	} else if name != "" {
		t.Fatalf("oracle %s failed, first row: %s", name, row)
	}
}
