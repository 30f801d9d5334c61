package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_WithTokenSendsBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode([]map[string]string{{"id": "1"}})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second).WithToken("tok-123")

	var out []map[string]string
	require.NoError(t, c.Get(context.Background(), "/users/", &out))
	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Len(t, out, 1)
}

func TestClient_PostEncodesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "sick", body["leave_type"])
		_ = json.NewEncoder(w).Encode("65a1f0c2e4b0a1b2c3d4e5f6")
	}))
	defer srv.Close()

	var id string
	err := New(srv.URL, time.Second).Post(context.Background(), "/leave/", map[string]string{"leave_type": "sick"}, &id)
	require.NoError(t, err)
	assert.Equal(t, "65a1f0c2e4b0a1b2c3d4e5f6", id)
}

func TestClient_DetailString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"今日已簽到"}`))
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).Post(context.Background(), "/attendance/clock-in", map[string]string{}, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "今日已簽到", apiErr.UserMessage())
}

func TestClient_DetailValidationList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","start_date"],"msg":"invalid datetime format"}]}`))
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).Post(context.Background(), "/leave/", map[string]string{}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, StatusOf(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "start_date: invalid datetime format", apiErr.Message)
}

func TestClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := New(srv.URL, time.Second).Get(context.Background(), "/leave/x", nil)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "Not Found")
}

func TestClient_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New(srv.URL, time.Second).Get(ctx, "/users/", nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_EmptyBodyOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var out map[string]any
	assert.NoError(t, New(srv.URL, time.Second).Put(context.Background(), "/leave/1/status", map[string]string{"status": "已批准"}, &out))
	assert.NoError(t, New(srv.URL, time.Second).Delete(context.Background(), "/leave/1"))
}
