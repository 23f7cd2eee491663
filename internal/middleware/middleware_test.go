package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AnshRaj112/emotion-tracker-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type stubAuth struct {
	tokens map[string]*models.User
	err    error
}

func (s stubAuth) CurrentUser(_ context.Context, token string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if u, ok := s.tokens[token]; ok {
		return u, nil
	}
	return nil, models.ErrInvalidToken
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

var whoami = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.Write([]byte(u.LoginID))
})

func TestAuthRequire(t *testing.T) {
	alice := &models.User{ID: 1, LoginID: "alice"}
	a := NewAuth(stubAuth{tokens: map[string]*models.User{"good": alice}}, zap.NewNop().Sugar())
	h := a.Require(whoami)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"invalid token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
		{"case-insensitive scheme", "bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/emotions/monthly", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "alice", rec.Body.String())
				return
			}
			body := decodeError(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, "UNAUTHORIZED", body.Error.Code)
		})
	}
}

func TestAuthRequire_ExpiredAndInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer x")
	NewAuth(stubAuth{err: models.ErrTokenExpired}, zap.NewNop().Sugar()).Require(whoami).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token expired", decodeError(t, rec).Error.Message)

	rec = httptest.NewRecorder()
	NewAuth(stubAuth{err: errors.New("db down")}, zap.NewNop().Sugar()).Require(whoami).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeError(t, rec).Error.Message)
}

func TestAuthRequireWithQueryToken(t *testing.T) {
	a := NewAuth(stubAuth{tokens: map[string]*models.User{"good": {LoginID: "alice"}}}, zap.NewNop().Sugar())

	rec := httptest.NewRecorder()
	a.RequireWithQueryToken(whoami).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/emotions?token=good", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	a.Require(whoami).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/emotions?token=good", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMemoryLimiter(t *testing.T) {
	l := NewMemoryLimiter(rate.Limit(0.001), 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := l.Allow(ctx, "1.2.3.4")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "keys are independent")
}

type errLimiter struct{}

func (errLimiter) Allow(context.Context, string) (bool, error) { return true, errors.New("redis down") }

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := RateLimit(NewMemoryLimiter(rate.Limit(0.001), 1), zap.NewNop().Sugar(), "slow down")(ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", decodeError(t, rec).Error.Code)

	// fail open
	rec = httptest.NewRecorder()
	RateLimit(errLimiter{}, zap.NewNop().Sugar(), "x")(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginRateLimit_OnlyLoginPath(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := LoginRateLimit(NewMemoryLimiter(rate.Limit(0.001), 1), zap.NewNop().Sugar())(ok)

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/emotions/monthly", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, LoginPath, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, LoginPath, nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestSecurityHeadersAndHostCheck(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	SecurityHeaders(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Contains(t, rec.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")

	req := httptest.NewRequest(http.MethodGet, "http://api.example.com:8080/", nil)
	rec = httptest.NewRecorder()
	HostCheck("api.example.com")(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	HostCheck("other.example.com")(ok).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequestLoggerAndRecoverer(t *testing.T) {
	log := zap.NewNop().Sugar()
	var seenID string
	h := RequestLogger(log)(Recoverer(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, seenID)
	assert.Equal(t, seenID, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rec).Error.Code)
}

func TestCORS_Preflight(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodOptions, "/emotions", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
