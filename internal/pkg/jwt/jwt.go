package jwt

import (
	"errors"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TypeAccess = "access"
	TypeSSE    = "sse"

	sseTokenTTL = 5 * time.Minute
)

// Claims are the BFF-specific claims carried by an access token.
type Claims struct {
	SessionID string
	UserID    string
	Role      employee.Role
}

type Service interface {
	GenerateAccessToken(sessionID string, userID string, role employee.Role) (token string, expiresAt int64, err error)
	GenerateSSEToken(sessionID string) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (sessionID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(token string)
	IsTokenRevoked(token string) bool
	// PurgeRevoked forgets revocations older than the access token lifetime
	PurgeRevoked(now time.Time) int
}

type JWTService struct {
	accessTTL     time.Duration
	tokenAuth     *jwtauth.JWTAuth
	revokedTokens map[string]int64
	mu            sync.RWMutex
	now           func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService parses accessTokenExpirationTime as a Go duration ("30m", "8h").
func NewJWTService(secretKey string, accessTokenExpirationTime string) (*JWTService, error) {
	ttl, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, errors.New("access token expiration must be positive")
	}
	return &JWTService{
		accessTTL:     ttl,
		tokenAuth:     jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens: make(map[string]int64),
		now:           time.Now,
	}, nil
}

func (j *JWTService) AccessTTL() time.Duration {
	return j.accessTTL
}

func (j *JWTService) GenerateAccessToken(sessionID string, userID string, role employee.Role) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTTL).Unix()

	claims := map[string]interface{}{
		"session_id": sessionID,
		"user_id":    userID,
		"role":       string(role),
		"type":       TypeAccess,
		"exp":        expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) RevokeToken(token string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.revokedTokens[token] = j.now().Unix()
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

func (j *JWTService) PurgeRevoked(now time.Time) int {
	cutoff := now.Add(-j.accessTTL).Unix()

	j.mu.Lock()
	defer j.mu.Unlock()
	purged := 0
	for token, revokedAt := range j.revokedTokens {
		if revokedAt < cutoff {
			delete(j.revokedTokens, token)
			purged++
		}
	}
	return purged
}

// GenerateSSEToken generates a short-lived token for SSE connections, which
// cannot carry an Authorization header from the browser.
func (j *JWTService) GenerateSSEToken(sessionID string) (token string, expiresIn int, err error) {
	expiresIn = int(sseTokenTTL.Seconds())
	expiresAt := j.now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"session_id": sessionID,
		"type":       TypeSSE,
		"exp":        expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates an SSE token and returns the session ID
func (j *JWTService) ValidateSSEToken(tokenString string) (sessionID string, err error) {
	token, err := j.tokenAuth.Decode(tokenString)
	if err != nil {
		return "", err
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != TypeSSE {
		return "", jwt.ErrInvalidJWT()
	}

	val, ok := token.Get("session_id")
	if !ok {
		return "", jwt.ErrInvalidJWT()
	}
	sessionID, ok = val.(string)
	if !ok || sessionID == "" {
		return "", jwt.ErrInvalidJWT()
	}

	return sessionID, nil
}

// ClaimsFrom reads the access claims decoded by the jwtauth verifier.
func ClaimsFrom(claims map[string]interface{}) (Claims, bool) {
	if t, _ := claims["type"].(string); t != TypeAccess {
		return Claims{}, false
	}
	sessionID, _ := claims["session_id"].(string)
	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if sessionID == "" {
		return Claims{}, false
	}
	return Claims{SessionID: sessionID, UserID: userID, Role: employee.ParseRole(role)}, true
}
