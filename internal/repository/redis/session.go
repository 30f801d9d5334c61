// Package redis stores console sessions in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/auth"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/sealer"
	goredis "github.com/redis/go-redis/v9"
)

const (
	sessionPrefix = "console:session:"
	expiryIndex   = "console:sessions:expiry"

	// Keys outlive their session so the sweeper still sees them.
	expiryGrace = time.Hour
)

type storedSession struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	UpstreamToken string    `json:"upstream_token"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}

type sessionRepositoryImpl struct {
	rdb    *goredis.Client
	sealer *sealer.Sealer
	now    func() time.Time
}

// NewClient connects and pings the server.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return rdb, nil
}

// NewSessionRepository stores sessions as JSON with the upstream token sealed.
func NewSessionRepository(rdb *goredis.Client, s *sealer.Sealer) auth.SessionRepository {
	return &sessionRepositoryImpl{rdb: rdb, sealer: s, now: time.Now}
}

func sessionKey(id string) string {
	return sessionPrefix + id
}

func (r *sessionRepositoryImpl) Create(ctx context.Context, s auth.Session) error {
	sealed, err := r.sealer.Seal(s.UpstreamToken)
	if err != nil {
		return fmt.Errorf("seal upstream token: %w", err)
	}

	payload, err := json.Marshal(storedSession{
		ID:            s.ID,
		UserID:        s.UserID,
		Username:      s.Username,
		Name:          s.Name,
		Role:          string(s.Role),
		UpstreamToken: sealed,
		CreatedAt:     s.CreatedAt.UTC(),
		ExpiresAt:     s.ExpiresAt.UTC(),
	})
	if err != nil {
		return err
	}

	ttl := s.ExpiresAt.Sub(r.now()) + expiryGrace
	if ttl <= 0 {
		ttl = expiryGrace
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(s.ID), payload, ttl)
		pipe.ZAdd(ctx, expiryIndex, goredis.Z{Score: float64(s.ExpiresAt.UnixMilli()), Member: s.ID})
		return nil
	})
	return err
}

func (r *sessionRepositoryImpl) GetByID(ctx context.Context, id string) (auth.Session, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return auth.Session{}, auth.ErrSessionNotFound
		}
		return auth.Session{}, err
	}

	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return auth.Session{}, fmt.Errorf("decode session %s: %w", id, err)
	}

	token, err := r.sealer.Open(stored.UpstreamToken)
	if err != nil {
		return auth.Session{}, fmt.Errorf("open upstream token: %w", err)
	}

	return auth.Session{
		ID:            stored.ID,
		UserID:        stored.UserID,
		Username:      stored.Username,
		Name:          stored.Name,
		Role:          employee.ParseRole(stored.Role),
		UpstreamToken: token,
		CreatedAt:     stored.CreatedAt,
		ExpiresAt:     stored.ExpiresAt,
	}, nil
}

func (r *sessionRepositoryImpl) Delete(ctx context.Context, id string) error {
	var del *goredis.IntCmd
	_, err := r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		del = pipe.Del(ctx, sessionKey(id))
		pipe.ZRem(ctx, expiryIndex, id)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return auth.ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	ids, err := r.rdb.ZRangeByScore(ctx, expiryIndex, &goredis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(ids))
	members := make([]any, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, sessionKey(id))
		members = append(members, id)
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, expiryIndex, members...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
