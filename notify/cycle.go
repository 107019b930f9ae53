package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"trainflow/metrics"
	"trainflow/session"
)

// SessionSource provides the session aggregates for one cycle.
type SessionSource interface {
	FetchActive(ctx context.Context) ([]session.Session, error)
}

// Runner executes one notification cycle: every active session against every
// rule, sequentially, in a single logical thread of control. There is no
// fan-out across sessions; each session finishes all of its I/O before the
// next one starts.
type Runner struct {
	source     SessionSource
	log        Log
	dispatcher *Dispatcher
	rules      []Rule
	now        func() time.Time
	logger     *zap.Logger
}

func NewRunner(source SessionSource, log Log, dispatcher *Dispatcher, rules []Rule, logger *zap.Logger) *Runner {
	return &Runner{
		source:     source,
		log:        log,
		dispatcher: dispatcher,
		rules:      rules,
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock overrides the wall clock, mainly for tests.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// RunDailyCycle walks all sessions once. Safe to invoke repeatedly: every
// rule is idempotent through the notification log. The only error returned
// is a failure to fetch sessions at all; that one propagates to the caller
// (the external scheduler owns alerting and retries). Everything after the
// fetch is isolated per session.
func (r *Runner) RunDailyCycle(ctx context.Context) error {
	started := time.Now()

	sessions, err := r.source.FetchActive(ctx)
	if err != nil {
		return fmt.Errorf("notify: fetch sessions: %w", err)
	}

	now := r.now()
	r.logger.Info("notification cycle started", zap.Int("sessions", len(sessions)))

	var failed int
	for _, s := range sessions {
		// Defensive regardless of fetch scope.
		if s.Status == session.StatusCancelled {
			continue
		}

		if err := r.processSession(ctx, s, now); err != nil {
			failed++
			metrics.SessionFailures.Inc()
			r.logger.Error("session processing failed",
				zap.String("session_id", s.ID),
				zap.Error(err),
			)
		}
	}

	metrics.CycleRuns.Inc()
	metrics.CycleDuration.Observe(time.Since(started).Seconds())
	r.logger.Info("notification cycle finished",
		zap.Int("sessions", len(sessions)),
		zap.Int("failed_sessions", failed),
		zap.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// processSession evaluates the rules in order. The error boundary is the
// session, not the rule: when rule N fails, rules N+1.. are skipped for this
// session in this cycle and will be reattempted next cycle, since no log
// entry was written for them. Failures never leak to other sessions.
func (r *Runner) processSession(ctx context.Context, s session.Session, now time.Time) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("notify: panic on session %s: %v", s.ID, rec)
		}
	}()

	for _, rule := range r.rules {
		if !rule.Guard(s) {
			continue
		}
		if !rule.InWindow(s, now) {
			continue
		}

		seen, err := r.log.HasLog(ctx, rule.Type, s.ID)
		if err != nil {
			return fmt.Errorf("notify: check log %s: %w", rule.Type, err)
		}
		if seen {
			continue
		}

		msg, err := rule.Compose(s)
		if err != nil {
			return err
		}

		if err := r.dispatcher.Dispatch(ctx, rule.Type, s.ID, msg); err != nil {
			metrics.SendFailures.WithLabelValues(rule.Type).Inc()
			return err
		}

		metrics.NotificationsSent.WithLabelValues(rule.Type).Inc()
		r.logger.Info("notification sent",
			zap.String("session_id", s.ID),
			zap.String("rule", rule.Type),
			zap.String("recipient", msg.Recipient),
		)
	}
	return nil
}
