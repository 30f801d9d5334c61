package auth

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
)

type SessionRepository interface {
	Create(ctx context.Context, s Session) error
	GetByID(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions that expired before now and returns their ids
	DeleteExpired(ctx context.Context, now time.Time) ([]string, error)
}

// Authenticator is the backend's auth resource.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (UpstreamToken, error)
	Me(ctx context.Context, upstreamToken string) (employee.RawEmployee, error)
}
