package middleware

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMemRevoker() *memRevoker { return &memRevoker{revoked: map[string]time.Duration{}} }

func (m *memRevoker) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = ttl
	return nil
}

func (m *memRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}

// sessionCookie establishes a session for username and returns the cookie.
func sessionCookie(t *testing.T, m *SessionManager, username string) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, m.Establish(rec, httptest.NewRequest(http.MethodPost, "/login", nil), username))
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func requestWith(cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func TestSessionManager_EstablishAndRead(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour, nil)
	cookie := sessionCookie(t, m, "alice")

	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, 3600, cookie.MaxAge)
	assert.False(t, cookie.Secure)

	username, ok := m.CurrentUser(requestWith(cookie))
	assert.True(t, ok)
	assert.Equal(t, "alice", username)
}

func TestSessionManager_NoCookie(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour, nil)
	username, ok := m.CurrentUser(requestWith())
	assert.False(t, ok)
	assert.Empty(t, username)
}

func TestSessionManager_RejectsBadTokens(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour, nil)
	good := sessionCookie(t, m, "alice")

	otherKey := NewSessionManager("another-secret-of-enough-length", time.Hour, nil)
	expired := NewSessionManager(testSecret, -time.Minute, nil)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, sessionClaims{
		Username: "mallory",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{Username: "mallory"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	parts := strings.Split(good.Value, ".")
	require.Len(t, parts, 3)
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"username":"mallory","exp":4102444800}`))
	tampered := parts[0] + "." + forged + "." + parts[2]

	tests := map[string]string{
		"tampered":       tampered,
		"garbage":        "not-a-jwt",
		"other key":      sessionCookie(t, otherKey, "alice").Value,
		"expired":        sessionCookie(t, expired, "alice").Value,
		"alg none":       noneToken,
		"missing expiry": noExpiry,
	}

	for name, value := range tests {
		t.Run(name, func(t *testing.T) {
			_, ok := m.CurrentUser(requestWith(&http.Cookie{Name: SessionCookieName, Value: value}))
			assert.False(t, ok)
		})
	}
}

func TestSessionManager_ClearRevokes(t *testing.T) {
	revoker := newMemRevoker()
	m := NewSessionManager(testSecret, time.Hour, revoker)
	cookie := sessionCookie(t, m, "alice")

	rec := httptest.NewRecorder()
	m.Clear(rec, requestWith(cookie))

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, SessionCookieName, cleared[0].Name)
	assert.Equal(t, "", cleared[0].Value)
	assert.Equal(t, -1, cleared[0].MaxAge)

	require.Len(t, revoker.revoked, 1)
	for _, ttl := range revoker.revoked {
		assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)
	}

	// A copy of the old cookie is no longer honoured.
	_, ok := m.CurrentUser(requestWith(cookie))
	assert.False(t, ok)
}

func TestSessionManager_ClearWithoutRevoker(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour, nil)
	rec := httptest.NewRecorder()
	m.Clear(rec, requestWith())

	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Equal(t, -1, cleared[0].MaxAge)
}

func TestSessionManager_RevocationStoreDownFailsClosed(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	m := NewSessionManager(testSecret, time.Hour, NewRedisRevoker(client))
	cookie := sessionCookie(t, m, "alice")

	_, ok := m.CurrentUser(requestWith(cookie))
	assert.False(t, ok)
}

func TestLoadSession(t *testing.T) {
	m := NewSessionManager(testSecret, time.Hour, nil)
	cookie := sessionCookie(t, m, "alice")

	var seen string
	handler := m.LoadSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUsername(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), requestWith(cookie))
	assert.Equal(t, "alice", seen)

	handler.ServeHTTP(httptest.NewRecorder(), requestWith())
	assert.Equal(t, "", seen)
}
