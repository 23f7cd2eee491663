package client

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

func TestClient_LoginStoresToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "alice", body["id"])
			json.NewEncoder(w).Encode(map[string]interface{}{
				"token": "tok",
				"user":  map[string]string{"id": "alice", "name": "Alice"},
			})
		case "/emotions/monthly":
			gotAuth = r.Header.Get("Authorization")
			assert.Equal(t, "2024", r.URL.Query().Get("year"))
			assert.Equal(t, "3", r.URL.Query().Get("month"))
			w.Write([]byte(`[{"date":"2024-03-05","emotion":"sad","reason":null}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", nil)
	res, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Alice", res.User.Name)
	assert.Equal(t, "tok", c.Token())

	entries, err := c.Monthly(context.Background(), 2024, time.March)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, []Entry{{Date: "2024-03-05", Emotion: "sad"}}, entries)
}

func TestClient_RecordCreatedFlag(t *testing.T) {
	status := http.StatusCreated
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "reason")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]interface{}{"date": body["date"], "emotion": body["emotion"], "reason": nil},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	e, created, err := c.Record(context.Background(), "2024-03-05", "happy", nil)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "happy", e.Emotion)

	status = http.StatusOK
	_, created, err = c.Record(context.Background(), "2024-03-05", "sad", nil)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/users" {
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"success":false,"error":{"code":"CONFLICT","message":"A user with this id already exists"}}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"error":{"code":"UNAUTHORIZED","message":"Unauthorized"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	_, err := c.Register(context.Background(), "alice", "pw", "Alice")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "CONFLICT", apiErr.Code)
	assert.False(t, IsUnauthorized(err))

	_, err = c.YearlyStats(context.Background(), 2024)
	assert.True(t, IsUnauthorized(err))
}
