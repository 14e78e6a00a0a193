package httphandler

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer  = "fanquiz"
	tokenSubject = "admin"
)

var (
	// ErrAdminDisabled is returned when no admin password is configured.
	ErrAdminDisabled = errors.New("admin access is disabled: set FANQUIZ_ADMIN_PASSWORD")

	// ErrBadPassword is returned for a wrong admin password.
	ErrBadPassword = errors.New("incorrect admin password")
)

// AdminAuth checks the admin password and issues short-lived HS256 bearer
// tokens for the admin API.
type AdminAuth struct {
	passwordHash [sha256.Size]byte
	enabled      bool
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewAdminAuth creates an AdminAuth. An empty password disables admin access.
func NewAdminAuth(password string, secret []byte, ttl time.Duration) *AdminAuth {
	return &AdminAuth{
		passwordHash: sha256.Sum256([]byte(password)),
		enabled:      password != "",
		secret:       secret,
		ttl:          ttl,
		now:          time.Now,
	}
}

// Enabled reports whether an admin password is configured.
func (a *AdminAuth) Enabled() bool {
	return a != nil && a.enabled
}

// Login verifies password in constant time and returns a signed token with
// its expiry.
func (a *AdminAuth) Login(password string) (string, time.Time, error) {
	if !a.Enabled() {
		return "", time.Time{}, ErrAdminDisabled
	}

	// Compare digests so both sides always have equal length.
	got := sha256.Sum256([]byte(password))
	if subtle.ConstantTimeCompare(got[:], a.passwordHash[:]) != 1 {
		return "", time.Time{}, ErrBadPassword
	}

	now := a.now()
	expires := now.Add(a.ttl)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   tokenSubject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing admin token: %w", err)
	}
	return token, expires, nil
}

// Verify parses a bearer token and checks its signature, issuer, subject and expiry.
func (a *AdminAuth) Verify(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithSubject(tokenSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// requireAdmin rejects requests without a valid admin bearer token.
func (a *AdminAuth) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !a.Enabled() {
			writeError(w, http.StatusServiceUnavailable, ErrAdminDisabled.Error())
			return
		}

		h := r.Header.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			w.Header().Set("WWW-Authenticate", `Bearer realm="fanquiz"`)
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		if _, err := a.Verify(strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))); err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="fanquiz", error="invalid_token"`)
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		next(w, r)
	}
}
