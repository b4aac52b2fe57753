package supabase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_SendsFiltersAndKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/intake_events", r.URL.Path)
		assert.Equal(t, "eq.user-1", r.URL.Query().Get("user_id"))
		assert.Equal(t, "service", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":"a"}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "service")
	body, err := c.Query(context.Background(), "intake_events", map[string]interface{}{"user_id": "eq.user-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"}]`, string(body))
}

func TestUpsert_SetsConflictAndPreferHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "id", r.URL.Query().Get("on_conflict"))
		assert.Equal(t, "return=representation,resolution=merge-duplicates", r.Header.Get("Prefer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		raw, _ := io.ReadAll(r.Body)
		var payload map[string]any
		require.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, "p1", payload["id"])

		_, _ = w.Write(raw)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "service")
	_, err := c.Upsert(context.Background(), "profiles", map[string]any{"id": "p1"}, "id")
	require.NoError(t, err)
}

func TestInsertIgnoringDuplicates_Prefer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "key,route", r.URL.Query().Get("on_conflict"))
		assert.Equal(t, "return=representation,resolution=ignore-duplicates", r.Header.Get("Prefer"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "service")
	_, err := c.InsertIgnoringDuplicates(context.Background(), "idempotency_keys", map[string]any{"key": "k"}, "key,route")
	require.NoError(t, err)
}

func TestErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"code":"23505"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "service")
	_, err := c.Insert(context.Background(), "intake_events", map[string]any{"id": "dup"})
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.StatusCode)
}

func TestVerifyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"user-1","email":"a@b.c"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "service")

	user, err := c.VerifyToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)

	_, err = c.VerifyToken(context.Background(), "bad")
	assert.Error(t, err)
	assert.False(t, IsConflict(err))
}
