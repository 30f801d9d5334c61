package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/auth"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/database"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/sealer"
	"github.com/jackc/pgx/v5"
)

const sessionSchema = `
	CREATE TABLE IF NOT EXISTS console_sessions (
		id             UUID PRIMARY KEY,
		user_id        TEXT        NOT NULL,
		username       TEXT        NOT NULL,
		name           TEXT        NOT NULL DEFAULT '',
		role           TEXT        NOT NULL,
		upstream_token TEXT        NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL,
		expires_at     TIMESTAMPTZ NOT NULL
	)`

const sessionExpiryIndex = `
	CREATE INDEX IF NOT EXISTS console_sessions_expires_at_idx ON console_sessions (expires_at)`

type sessionRepositoryImpl struct {
	db     *database.DB
	sealer *sealer.Sealer
}

// NewSessionRepository stores sessions in postgres with the upstream token sealed.
func NewSessionRepository(db *database.DB, s *sealer.Sealer) auth.SessionRepository {
	return &sessionRepositoryImpl{db: db, sealer: s}
}

// EnsureSessionSchema creates the session table when missing.
func EnsureSessionSchema(ctx context.Context, db *database.DB) error {
	return WithTransaction(ctx, db, func(ctx context.Context) error {
		q := GetQuerier(ctx, db)
		if _, err := q.Exec(ctx, sessionSchema); err != nil {
			return fmt.Errorf("create console_sessions: %w", err)
		}
		if _, err := q.Exec(ctx, sessionExpiryIndex); err != nil {
			return fmt.Errorf("create console_sessions index: %w", err)
		}
		return nil
	})
}

func (r *sessionRepositoryImpl) Create(ctx context.Context, s auth.Session) error {
	sealed, err := r.sealer.Seal(s.UpstreamToken)
	if err != nil {
		return fmt.Errorf("seal upstream token: %w", err)
	}

	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO console_sessions (id, user_id, username, name, role, upstream_token, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = q.Exec(ctx, query, s.ID, s.UserID, s.Username, s.Name, string(s.Role), sealed, s.CreatedAt.UTC(), s.ExpiresAt.UTC())
	return err
}

func (r *sessionRepositoryImpl) GetByID(ctx context.Context, id string) (auth.Session, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id::text, user_id, username, name, role, upstream_token, created_at, expires_at
		FROM console_sessions
		WHERE id = $1
	`

	var s auth.Session
	var role, sealed string
	err := q.QueryRow(ctx, query, id).Scan(&s.ID, &s.UserID, &s.Username, &s.Name, &role, &sealed, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.Session{}, auth.ErrSessionNotFound
		}
		return auth.Session{}, err
	}

	s.Role = employee.ParseRole(role)
	s.UpstreamToken, err = r.sealer.Open(sealed)
	if err != nil {
		return auth.Session{}, fmt.Errorf("open upstream token: %w", err)
	}
	return s, nil
}

func (r *sessionRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)
	tag, err := q.Exec(ctx, `DELETE FROM console_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	q := GetQuerier(ctx, r.db)
	rows, err := q.Query(ctx, `DELETE FROM console_sessions WHERE expires_at <= $1 RETURNING id::text`, now.UTC())
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	return ids, nil
}
