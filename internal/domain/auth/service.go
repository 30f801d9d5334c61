package auth

import "context"

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Logout(ctx context.Context, sessionID string, accessToken string) error
	// Session loads a live session; expired sessions are removed and reported as ErrSessionExpired
	Session(ctx context.Context, sessionID string) (Session, error)
	IssueSSEToken(ctx context.Context, sessionID string) (SSETokenResponse, error)
	// SweepExpired drops expired sessions and closes their controllers
	SweepExpired(ctx context.Context) (int, error)
}
