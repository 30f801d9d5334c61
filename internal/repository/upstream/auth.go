package upstream

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/auth"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/employee"
	client "github.com/cmlabs-hris/hris-admin-console/internal/pkg/upstream"
)

type authenticator struct {
	c *client.Client
}

func NewAuthenticator(c *client.Client) auth.Authenticator {
	return &authenticator{c: c}
}

func (a *authenticator) Login(ctx context.Context, username, password string) (auth.UpstreamToken, error) {
	body := map[string]string{"username": username, "password": password}

	var out auth.UpstreamToken
	if err := a.c.Post(ctx, "/auth/json-login", body, &out); err != nil {
		if s := client.StatusOf(err); s == http.StatusUnauthorized || s == http.StatusBadRequest {
			return auth.UpstreamToken{}, auth.ErrInvalidCredentials
		}
		return auth.UpstreamToken{}, err
	}
	if out.AccessToken == "" {
		return auth.UpstreamToken{}, auth.ErrInvalidCredentials
	}
	return out, nil
}

// Me resolves the token's user. Older backends only serve /users/me.
func (a *authenticator) Me(ctx context.Context, upstreamToken string) (employee.RawEmployee, error) {
	c := a.c.WithToken(upstreamToken)

	var out employee.RawEmployee
	err := c.Get(ctx, "/auth/me", &out)
	if client.IsNotFound(err) {
		err = c.Get(ctx, "/users/me", &out)
	}
	if err != nil {
		if client.IsUnauthorized(err) {
			return employee.RawEmployee{}, auth.ErrInvalidToken
		}
		return employee.RawEmployee{}, err
	}
	return out, nil
}
