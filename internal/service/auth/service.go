package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/auth"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/jwt"
	"github.com/google/uuid"
)

type Options struct {
	SessionTTL time.Duration
	// OnSessionEnd runs after a session is logged out, expires or is swept
	OnSessionEnd func(sessionID string)
	Now          func() time.Time
}

type AuthServiceImpl struct {
	sessions auth.SessionRepository
	authn    auth.Authenticator
	jwt.Service
	opts Options
}

func NewAuthService(sessions auth.SessionRepository, authn auth.Authenticator, jwtService jwt.Service, opts Options) auth.AuthService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OnSessionEnd == nil {
		opts.OnSessionEnd = func(string) {}
	}
	return &AuthServiceImpl{
		sessions: sessions,
		authn:    authn,
		Service:  jwtService,
		opts:     opts,
	}
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	upstreamToken, err := a.authn.Login(ctx, req.Username, req.Password)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	raw, err := a.authn.Me(ctx, upstreamToken.AccessToken)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to load current user: %w", err)
	}
	me := employee.Normalize(raw)

	id, err := uuid.NewV7()
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := a.opts.Now()
	session := auth.Session{
		ID:            id.String(),
		UserID:        me.ID,
		Username:      me.Username,
		Name:          me.Name,
		Role:          me.Role,
		UpstreamToken: upstreamToken.AccessToken,
		CreatedAt:     now,
		ExpiresAt:     now.Add(a.opts.SessionTTL),
	}
	if err := a.sessions.Create(ctx, session); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to store session: %w", err)
	}

	accessToken, expiresAt, err := a.Service.GenerateAccessToken(session.ID, session.UserID, session.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	if sessionEnd := session.ExpiresAt.Unix(); sessionEnd < expiresAt {
		expiresAt = sessionEnd
	}

	slog.Info("User logged in", "user_id", session.UserID, "session_id", session.ID, "role", session.Role)

	return auth.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        auth.UserOf(session),
	}, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, sessionID string, accessToken string) error {
	if accessToken != "" {
		a.Service.RevokeToken(accessToken)
	}

	err := a.sessions.Delete(ctx, sessionID)
	a.opts.OnSessionEnd(sessionID)
	if err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("User logged out", "session_id", sessionID)
	return nil
}

// Session implements auth.AuthService.
func (a *AuthServiceImpl) Session(ctx context.Context, sessionID string) (auth.Session, error) {
	s, err := a.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return auth.Session{}, err
	}

	if s.Expired(a.opts.Now()) {
		if err := a.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, auth.ErrSessionNotFound) {
			slog.Warn("Failed to delete expired session", "session_id", sessionID, "error", err)
		}
		a.opts.OnSessionEnd(sessionID)
		return auth.Session{}, auth.ErrSessionExpired
	}
	return s, nil
}

// IssueSSEToken implements auth.AuthService.
func (a *AuthServiceImpl) IssueSSEToken(ctx context.Context, sessionID string) (auth.SSETokenResponse, error) {
	if _, err := a.Session(ctx, sessionID); err != nil {
		return auth.SSETokenResponse{}, err
	}

	token, expiresIn, err := a.Service.GenerateSSEToken(sessionID)
	if err != nil {
		return auth.SSETokenResponse{}, fmt.Errorf("failed to generate sse token: %w", err)
	}
	return auth.SSETokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}

// SweepExpired implements auth.AuthService.
func (a *AuthServiceImpl) SweepExpired(ctx context.Context) (int, error) {
	now := a.opts.Now()

	ids, err := a.sessions.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	for _, id := range ids {
		a.opts.OnSessionEnd(id)
	}

	if purged := a.Service.PurgeRevoked(now); purged > 0 {
		slog.Debug("Purged revoked tokens", "count", purged)
	}
	return len(ids), nil
}
