// Package token issues and verifies the signed, expiring tokens that
// authorize an out-of-band password reset.
package token

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"movietrack/models"
)

// DefaultTTL matches the 30 minute window the reset email promises.
const DefaultTTL = 30 * time.Minute

// ErrInvalidToken covers every verification failure: malformed token, bad
// signature, expiry, stale password fingerprint. Callers must not learn
// which check failed.
var ErrInvalidToken = errors.New("token: invalid or expired")

type resetClaims struct {
	// PasswordFingerprint binds the token to the hash it was issued
	// against. Resetting the password changes the hash, so a token can
	// only be used once.
	PasswordFingerprint string `json:"pwv"`
	jwt.RegisteredClaims
}

// Manager signs and verifies reset tokens with a process-wide symmetric
// secret.
type Manager struct {
	secret []byte
	now    func() time.Time
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret), now: time.Now}
}

// Issue produces a token for the user, valid for ttl.
func (m *Manager) Issue(user models.User, ttl time.Duration) (string, error) {
	now := m.now()
	claims := resetClaims{
		PasswordFingerprint: Fingerprint(user.PasswordHash),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify checks signature and expiry and returns the user id the token was
// issued for, together with the password fingerprint it carries. The caller
// must still compare the fingerprint against the user's current hash.
func (m *Manager) Verify(tokenString string) (userID int, fingerprint string, err error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &resetClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return 0, "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*resetClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil || id <= 0 {
		return 0, "", ErrInvalidToken
	}
	return id, claims.PasswordFingerprint, nil
}

// Fingerprint reduces a password hash to a short value safe to embed in a
// token payload.
func Fingerprint(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}
