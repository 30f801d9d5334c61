package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-admin-console/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/export"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-admin-console/internal/pkg/upstream"
	"github.com/cmlabs-hris/hris-admin-console/internal/repository/memory"
	upstreamRepo "github.com/cmlabs-hris/hris-admin-console/internal/repository/upstream"
	authService "github.com/cmlabs-hris/hris-admin-console/internal/service/auth"
	"github.com/cmlabs-hris/hris-admin-console/internal/service/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

// fakeBackend serves the subset of the attendance backend the console calls.
type fakeBackend struct {
	mu           sync.Mutex
	statusBodies []string
	users        string
}

func (b *fakeBackend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}

	mux.HandleFunc("POST /auth/json-login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret1" {
			writeJSON(w, http.StatusUnauthorized, `{"detail":"Incorrect username or password"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"access_token":"up-`+body["username"]+`","token_type":"bearer"}`)
	})
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer up-admin" {
			writeJSON(w, http.StatusOK, `{"id":"u1","username":"admin","name":"Admin","role":"admin"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id":"u2","username":"bob","name":"Bob","role":"user"}`)
	})
	mux.HandleFunc("GET /users/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		writeJSON(w, http.StatusOK, b.users)
	})
	mux.HandleFunc("GET /attendance/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[
			{"id":"a1","user_id":"u2","clock_in":"2024-03-01T08:55:00","clock_out":"2024-03-01T17:55:00"},
			{"id":"a2","user_id":"u1","clock_in":"2024-03-02T09:20:00","is_late":true}
		]`)
	})
	mux.HandleFunc("GET /leave/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[{"id":7,"user_id":"u2","leave_type":"annual","start_date":"2024-03-04","end_date":"2024-03-05","status":"待批准","created_at":"2024-03-01T10:00:00"}]`)
	})
	mux.HandleFunc("PUT /leave/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.statusBodies = append(b.statusBodies, r.PathValue("id")+" "+string(raw))
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, `{"message":"ok"}`)
	})
	mux.HandleFunc("POST /attendance/clock-in", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"detail":"今天已打過上班卡"}`)
	})
	return mux
}

type testServer struct {
	*httptest.Server
	backend *fakeBackend
	hub     *sse.Hub
	jwt     *jwt.JWTService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	backend := &fakeBackend{users: `[
		{"id":"u1","username":"admin","name":"Admin","role":"admin"},
		{"id":"u2","username":"bob","name":"Bob","role":"user"}
	]`}
	upstreamServer := httptest.NewServer(backend.handler(t))
	t.Cleanup(upstreamServer.Close)

	jwtService, err := jwt.NewJWTService(handlerTestSecret, "1h")
	require.NoError(t, err)

	base := upstream.New(upstreamServer.URL, 5*time.Second)
	hub := sse.NewHub()
	registry := session.NewRegistry(session.NewFactory(base, hub, export.NewAttendanceExporter(), session.Options{Rule: attendance.RuleClockOnly}))
	t.Cleanup(registry.CloseAll)

	svc := authService.NewAuthService(memory.NewSessionRepository(), upstreamRepo.NewAuthenticator(base), jwtService, authService.Options{
		SessionTTL: time.Hour,
		OnSessionEnd: func(id string) {
			registry.Close(id)
			hub.Disconnect(id)
		},
	})

	router := NewRouter(
		RouterConfig{FrontendURL: "http://localhost:3000", Env: "test", Version: "test"},
		jwtService,
		svc,
		NewAuthHandler(svc),
		NewEmployeeHandler(registry),
		NewAttendanceHandler(registry),
		NewLeaveHandler(registry),
		NewDashboardHandler(registry),
		NewEventsHandler(jwtService, svc, hub),
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, backend: backend, hub: hub, jwt: jwtService}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	} else {
		env.Data = raw
	}
	return resp, env
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	resp, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": username, "password": "secret1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var token struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &token))
	require.NotEmpty(t, token.AccessToken)
	return token.AccessToken
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	t.Run("invalid credentials", func(t *testing.T) {
		resp, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.False(t, env.Success)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.NotNil(t, env.Error)
		assert.Contains(t, env.Error.Details, "username")
	})

	t.Run("me", func(t *testing.T) {
		token := s.login(t, "admin")
		resp, env := s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"id":"u1","username":"admin","name":"Admin","role":"admin"}`, string(env.Data))
	})
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)

	resp, _ := s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/auth/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_RevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")

	resp, _ := s.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminOnly(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "bob")

	resp, env := s.do(t, http.MethodGet, "/api/v1/employees", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, env.Success)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/attendance/my", token, nil)
	assert.NotEqual(t, http.StatusForbidden, resp.StatusCode)
}

func TestEmployees_ViewAndSearch(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")

	resp, env := s.do(t, http.MethodGet, "/api/v1/employees", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var snap struct {
		State   string `json:"state"`
		Total   int    `json:"total"`
		Records []struct {
			Username string `json:"username"`
		} `json:"records"`
		Stats struct {
			AdminUsers int `json:"admin_users"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, "ready", snap.State)
	assert.Equal(t, 2, snap.Total)
	assert.Equal(t, 1, snap.Stats.AdminUsers)

	resp, env = s.do(t, http.MethodPatch, "/api/v1/employees/search", token, map[string]string{"search": "bo"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "bob", snap.Records[0].Username)
	assert.Equal(t, 2, snap.Total)

	resp, _ = s.do(t, http.MethodPatch, "/api/v1/employees/search", token, map[string]string{"sort_by": "salary"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestEmployees_CreateValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")

	resp, env := s.do(t, http.MethodPost, "/api/v1/employees", token, map[string]string{"username": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Details, "password")
}

func TestEmployees_DeleteSelfRefused(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")

	resp, env := s.do(t, http.MethodDelete, "/api/v1/employees/u1", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "無法刪除自己的帳號", env.Message)
}

func TestLeaves_ApproveSendsBackendWording(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")

	resp, env := s.do(t, http.MethodPost, "/api/v1/leaves/7/approve", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "請假狀態更新成功", env.Message)

	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	require.Len(t, s.backend.statusBodies, 1)
	assert.Equal(t, `7 {"status":"已批准"}`, strings.TrimSpace(s.backend.statusBodies[0]))
}

func TestLeaves_UpdateStatusValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")

	resp, _ := s.do(t, http.MethodPut, "/api/v1/leaves/7/status", token, map[string]string{"status": "maybe"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Empty(t, s.backend.statusBodies)
}

func TestAttendance_ClockInEchoesBackendMessage(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "bob")

	resp, env := s.do(t, http.MethodPost, "/api/v1/attendance/clock-in", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "今天已打過上班卡", env.Message)
}

func TestAttendance_ExportCSV(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")

	resp, env := s.do(t, http.MethodGet, "/api/v1/attendance/export?start_date=2024-03-01&end_date=2024-03-31&format=csv", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attendance_report_2024-03-01_2024-03-31.csv")
	assert.Contains(t, string(env.Data), "Bob")

	resp, _ = s.do(t, http.MethodGet, "/api/v1/attendance/export?start_date=2024-03-31&end_date=2024-03-01", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")

	resp, env := s.do(t, http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var dash struct {
		State string `json:"state"`
		Stats struct {
			TotalEmployees int `json:"total_employees"`
			PendingLeaves  int `json:"pending_leaves"`
		} `json:"stats"`
		Activities []struct {
			Title string `json:"title"`
			User  string `json:"user"`
		} `json:"activities"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &dash))
	assert.Equal(t, "ready", dash.State)
	assert.Equal(t, 2, dash.Stats.TotalEmployees)
	assert.Equal(t, 1, dash.Stats.PendingLeaves)
	require.Len(t, dash.Activities, 1)
	assert.Equal(t, "申請annual", dash.Activities[0].Title)
	assert.Equal(t, "Bob", dash.Activities[0].User)
}

func TestEvents_RequiresSSEToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")

	resp, _ := s.do(t, http.MethodGet, "/api/v1/events", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/v1/events?token="+token, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEvents_StreamsRepublishes(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t, "admin")

	_, env := s.do(t, http.MethodPost, "/api/v1/auth/sse-token", token, nil)
	var sseToken struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sseToken))

	resp, err := http.Get(s.URL + "/api/v1/events?token=" + sseToken.Token)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return s.hub.TotalSubscribers() == 1 }, time.Second, 10*time.Millisecond)

	// Loading the roster republishes loading then ready.
	_, _ = s.do(t, http.MethodPost, "/api/v1/employees/refresh", token, nil)

	buf := make([]byte, 4096)
	var got strings.Builder
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && !strings.Contains(got.String(), "event: employees") {
		n, err := resp.Body.Read(buf)
		got.Write(buf[:n])
		if err != nil {
			break
		}
	}
	assert.Contains(t, got.String(), "event: connected")
	assert.Contains(t, got.String(), "event: employees")
}
