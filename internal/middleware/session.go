package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey string

const UsernameKey contextKey = "username"

const SessionCookieName = "daptic_session"

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionManager carries the logged-in username in an HS256-signed,
// HttpOnly cookie. A token that fails verification, has expired, or has been
// revoked reads as no session.
type SessionManager struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
	logger  *slog.Logger
}

// NewSessionManager builds a manager. revoker may be nil, in which case
// logout only expires the cookie.
func NewSessionManager(secret string, ttl time.Duration, revoker Revoker) *SessionManager {
	return &SessionManager{
		secret:  []byte(secret),
		ttl:     ttl,
		revoker: revoker,
		logger:  slog.Default().With("component", "session"),
	}
}

func (m *SessionManager) Establish(w http.ResponseWriter, r *http.Request, username string) error {
	now := time.Now()
	claims := sessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		Expires:  now.Add(m.ttl),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (m *SessionManager) CurrentUser(r *http.Request) (string, bool) {
	claims, err := m.parse(r)
	if err != nil {
		return "", false
	}

	if m.revoker != nil && claims.ID != "" {
		revoked, err := m.revoker.IsRevoked(r.Context(), claims.ID)
		if err != nil {
			m.logger.Warn("revocation check failed, treating session as absent", "error", err)
			return "", false
		}
		if revoked {
			return "", false
		}
	}

	return claims.Username, true
}

// Clear expires the session cookie and revokes its token for the rest of its
// lifetime when a revoker is configured.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) {
	if claims, err := m.parse(r); err == nil && m.revoker != nil && claims.ID != "" {
		remaining := time.Until(claims.ExpiresAt.Time)
		if remaining > 0 {
			if err := m.revoker.Revoke(r.Context(), claims.ID, remaining); err != nil {
				m.logger.Warn("failed to revoke session", "error", err)
			}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *SessionManager) parse(r *http.Request) (*sessionClaims, error) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return nil, err
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Username == "" {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// LoadSession attaches the session username, or "", to the request context.
func (m *SessionManager) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, _ := m.CurrentUser(r)
		ctx := context.WithValue(r.Context(), UsernameKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUsername extracts the session username from request context.
func GetUsername(ctx context.Context) string {
	username, _ := ctx.Value(UsernameKey).(string)
	return username
}
