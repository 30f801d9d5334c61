package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/auth"
	"github.com/cmlabs-hris/hris-admin-console/internal/domain/view"
	"github.com/cmlabs-hris/hris-admin-console/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-admin-console/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-admin-console/internal/service/session"
	"github.com/cmlabs-hris/hris-admin-console/internal/service/viewstate"
)

// ControllerSource yields the view controllers of a session.
type ControllerSource interface {
	For(s auth.Session) *session.Controllers
}

func controllersOf(src ControllerSource, w http.ResponseWriter, r *http.Request) (*session.Controllers, bool) {
	s, ok := middleware.SessionFrom(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrInvalidToken)
		return nil, false
	}
	return src.For(s), true
}

// load runs a controller fetch. A failed fetch is reported through the
// view's state, so only unexpected outcomes are logged here.
func load(ctx context.Context, domain string, fn func(context.Context) error) {
	err := fn(ctx)
	if err == nil || errors.Is(err, viewstate.ErrDiscarded) {
		return
	}
	if errors.Is(err, viewstate.ErrClosed) {
		slog.Debug("Load on closed controller", "domain", domain)
		return
	}
	slog.Debug("View load failed", "domain", domain, "error", err)
}

// loadIfIdle fetches on first access, like a view being mounted.
func loadIfIdle(ctx context.Context, domain string, state view.State, fn func(context.Context) error) {
	if state == view.StateIdle {
		load(ctx, domain, fn)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		slog.Debug("Request decode error", "path", r.URL.Path, "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return false
	}
	return true
}

// queryPtr returns nil when key is absent from the query string.
func queryPtr(r *http.Request, key string) *string {
	q := r.URL.Query()
	if !q.Has(key) {
		return nil
	}
	v := q.Get(key)
	return &v
}
