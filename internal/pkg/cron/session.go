package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/auth"
)

// SessionJobs expires console sessions.
type SessionJobs struct {
	authService auth.AuthService
	interval    time.Duration
}

func NewSessionJobs(authService auth.AuthService, interval time.Duration) *SessionJobs {
	return &SessionJobs{authService: authService, interval: interval}
}

func (j *SessionJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("sweep_expired_sessions", j.interval, j.SweepExpiredSessions)
}

// SweepExpiredSessions deletes expired sessions and closes their controllers.
func (j *SessionJobs) SweepExpiredSessions(ctx context.Context) error {
	n, err := j.authService.SweepExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("Cron: expired sessions removed", "count", n)
	}
	return nil
}
