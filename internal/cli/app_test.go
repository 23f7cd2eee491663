package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/emotion-tracker-backend/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer keeps entries for a single user behind the token "tok".
type fakeServer struct {
	mu        sync.Mutex
	entries   map[string]client.Entry
	statsDown bool
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	if r.URL.Path == "/auth/login" {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "tok",
			"user":  map[string]string{"id": "alice", "name": "Alice"},
		})
		return
	}
	if r.Header.Get("Authorization") != "Bearer tok" {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"error":{"code":"UNAUTHORIZED","message":"Unauthorized"}}`))
		return
	}

	switch r.URL.Path {
	case "/emotions":
		var e client.Entry
		json.NewDecoder(r.Body).Decode(&e)
		_, existed := f.entries[e.Date]
		f.entries[e.Date] = e
		if !existed {
			w.WriteHeader(http.StatusCreated)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": e})
	case "/emotions/monthly":
		out := []client.Entry{}
		for _, e := range f.entries {
			out = append(out, e)
		}
		json.NewEncoder(w).Encode(out)
	case "/emotions/yearly-stats":
		if f.statsDown {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"success":false,"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`))
			return
		}
		stats := map[string]int{"very-happy": 0, "happy": 0, "neutral": 0, "sad": 0, "angry": 0}
		for _, e := range f.entries {
			stats[e.Emotion]++
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": stats})
	default:
		http.NotFound(w, r)
	}
}

func newTestApp(t *testing.T, stdin string) (*App, *bytes.Buffer, TokenStore) {
	t.Helper()
	app, out, store, _ := newTestAppWithServer(t, stdin)
	return app, out, store
}

func newTestAppWithServer(t *testing.T, stdin string) (*App, *bytes.Buffer, TokenStore, *fakeServer) {
	t.Helper()
	t.Setenv(TokenEnv, "")

	fake := &fakeServer{entries: map[string]client.Entry{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	old := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("pw"), nil }
	t.Cleanup(func() { readPassword = old })

	store := TokenStore{Path: filepath.Join(t.TempDir(), "token")}
	var out bytes.Buffer
	app := NewApp(client.New(srv.URL, nil), store, strings.NewReader(stdin), &out)
	app.now = func() time.Time { return time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC) }
	return app, &out, store, fake
}

func TestApp_LoginRecordAndShow(t *testing.T) {
	app, out, store := newTestApp(t, "alice\n")
	ctx := context.Background()

	require.NoError(t, app.Run(ctx, []string{"login"}))
	assert.Contains(t, out.String(), "Welcome, Alice.")
	tok, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"record", "-reason", "sunny", "happy"}))
	assert.Contains(t, out.String(), "Recorded Happy for 2024-03-05.")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"calendar"}))
	assert.Contains(t, out.String(), "March 2024")
	assert.Contains(t, out.String(), "[ 5 H]")
	assert.Contains(t, out.String(), "  4 .")

	out.Reset()
	require.NoError(t, app.Run(ctx, []string{"stats", "-year", "2024"}))
	assert.Contains(t, out.String(), "100% (1)")
	assert.Contains(t, out.String(), "Total: 1")
}

func TestApp_RecordReportsSavedEntryWhenStatsFail(t *testing.T) {
	app, out, store, fake := newTestAppWithServer(t, "")
	require.NoError(t, store.Save("tok"))
	fake.statsDown = true

	require.NoError(t, app.Run(context.Background(), []string{"record", "neutral"}))
	assert.Contains(t, out.String(), "Recorded Neutral for 2024-03-05.")
	assert.Contains(t, out.String(), "yearly stats could not be refreshed")
	assert.Contains(t, fake.entries, "2024-03-05")
}

func TestApp_RequiresSession(t *testing.T) {
	app, _, _ := newTestApp(t, "")
	err := app.Run(context.Background(), []string{"stats"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestApp_ExpiredSessionIsCleared(t *testing.T) {
	app, _, store := newTestApp(t, "")
	require.NoError(t, store.Save("stale"))

	err := app.Run(context.Background(), []string{"me"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")

	tok, _ := store.Load()
	assert.Empty(t, tok)
}

func TestApp_RejectsBadInput(t *testing.T) {
	app, _, store := newTestApp(t, "")
	require.NoError(t, store.Save("tok"))
	ctx := context.Background()

	assert.ErrorIs(t, app.Run(ctx, nil), ErrUsage)
	assert.ErrorIs(t, app.Run(ctx, []string{"dance"}), ErrUsage)
	assert.ErrorIs(t, app.Run(ctx, []string{"record"}), ErrUsage)

	err := app.Run(ctx, []string{"record", "ecstatic"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown emotion")

	err = app.Run(ctx, []string{"calendar", "-month", "2022-01"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside 2023-04..2024-03")
}
