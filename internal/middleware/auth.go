package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/easeops/elibrary/internal/domain"
	internal_errors "github.com/easeops/elibrary/internal/errors"
	"github.com/easeops/elibrary/internal/jwt"
	"github.com/easeops/elibrary/internal/logger"
)

// Key to store the resolved user in the request context
type key int

// UserKey is exported so handler tests can inject a resolved user
// without running the full middleware chain.
const UserKey key = 0

// Auth resolves the bearer credential on each request to an active user
// record. Resolution is a pure synchronous lookup; the only shared state
// is the read-only signing secret inside the token service.
type Auth struct {
	jwt   jwt.JwtService
	users UserStore
}

type UserStore interface {
	UserByUsername(username string) (domain.User, error)
}

func NewAuth(jwtService jwt.JwtService, users UserStore) *Auth {
	return &Auth{jwt: jwtService, users: users}
}

// Sentinel causes for a failed resolution. Outwardly, everything except
// an inactive account collapses into the same 401: distinguishing a bad
// token from an unknown subject would leak which accounts exist.
var (
	errNoToken        = errors.New("no token")
	errInvalidToken   = errors.New("invalid token")
	errUnknownSubject = errors.New("unknown subject")
	errInactiveUser   = errors.New("inactive user")
)

// resolve walks the per-request state machine, terminal on first failure:
// no credential -> token invalid -> subject unknown -> user inactive -> resolved.
func (a *Auth) resolve(r *http.Request) (*domain.User, error) {
	var tokenString string
	if accessCookie, err := r.Cookie("accessToken"); err == nil {
		tokenString = accessCookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}

	if tokenString == "" {
		return nil, errNoToken
	}

	subject, err := a.jwt.Verify(tokenString)
	if err != nil {
		return nil, errInvalidToken
	}

	user, err := a.users.UserByUsername(subject)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return nil, errUnknownSubject
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, errInactiveUser
	}

	return &user, nil
}

// NeedAuth returns middleware that requires a resolved active user.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.resolve(r)
			if err != nil {
				switch {
				case errors.Is(err, errNoToken),
					errors.Is(err, errInvalidToken),
					errors.Is(err, errUnknownSubject):
					http.Error(w, "Invalid credentials", http.StatusUnauthorized)
				case errors.Is(err, errInactiveUser):
					http.Error(w, "Inactive user", http.StatusBadRequest)
				default:
					logger.Log.Error("failed to resolve request identity", "error", err)
					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext retrieves the resolved user, or nil outside NeedAuth.
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
