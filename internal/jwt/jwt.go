package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Internal causes of a failed verification. The HTTP boundary collapses
// both into the same 401 response; nothing outside this package should
// leak the distinction to clients.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

type JwtService interface {
	NewToken(subject string) (string, error)
	Verify(tokenStr string) (string, error)
}

type Jwt struct {
	secretKey string
	ttl       time.Duration
}

// New builds a token service around a process-wide signing secret.
// The secret is injected here instead of read from a global so tests can
// run with distinct secrets.
func New(secretKey string, ttl time.Duration) *Jwt {
	return &Jwt{secretKey, ttl}
}

// NewToken issues a signed HS256 token carrying the subject and an
// absolute expiry of now + ttl.
func (j *Jwt) NewToken(subject string) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(j.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// Verify checks the signature first, then the expiry, and returns the
// embedded subject. A token whose signature does not verify is never
// partially trusted, whatever its claims say.
func (j *Jwt) Verify(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenMalformed
	}
	if !token.Valid {
		return "", ErrTokenMalformed
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrTokenMalformed
	}
	return subject, nil
}
