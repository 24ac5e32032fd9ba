package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easeops/elibrary/internal/domain"
	internal_errors "github.com/easeops/elibrary/internal/errors"
	"github.com/easeops/elibrary/internal/jwt"
)

// --- Mocks ---

type MockJwtService struct {
	NewTokenFunc func(subject string) (string, error)
	VerifyFunc   func(tokenStr string) (string, error)
}

func (m *MockJwtService) NewToken(subject string) (string, error) {
	if m.NewTokenFunc != nil {
		return m.NewTokenFunc(subject)
	}
	return "token-" + subject, nil
}

func (m *MockJwtService) Verify(tokenStr string) (string, error) {
	if m.VerifyFunc != nil {
		return m.VerifyFunc(tokenStr)
	}
	if token, found := strings.CutPrefix(tokenStr, "valid-"); found {
		return token, nil
	}
	return "", jwt.ErrTokenMalformed
}

type MockUserStore struct {
	UserByUsernameFunc func(username string) (domain.User, error)
}

func (m *MockUserStore) UserByUsername(username string) (domain.User, error) {
	if m.UserByUsernameFunc != nil {
		return m.UserByUsernameFunc(username)
	}
	return domain.User{Id: 1, Username: username, IsActive: true}, nil
}

func serveWithAuth(t *testing.T, auth *Auth, prepare func(r *http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var resolved *domain.User
	handler := auth.NeedAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resolved = GetUserFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/protected", nil)
	if prepare != nil {
		prepare(req)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		require.NotNil(t, resolved, "handler must see the resolved user")
	}
	return rec
}

// --- Tests ---

func TestNeedAuthBearerHeader(t *testing.T) {
	auth := NewAuth(&MockJwtService{}, &MockUserStore{})

	rec := serveWithAuth(t, auth, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer valid-reader")
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNeedAuthCookie(t *testing.T) {
	auth := NewAuth(&MockJwtService{}, &MockUserStore{})

	rec := serveWithAuth(t, auth, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "accessToken", Value: "valid-reader"})
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNeedAuthCookieTakesPrecedence(t *testing.T) {
	var verified string
	auth := NewAuth(&MockJwtService{
		VerifyFunc: func(tokenStr string) (string, error) {
			verified = tokenStr
			return "reader", nil
		},
	}, &MockUserStore{})

	rec := serveWithAuth(t, auth, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "accessToken", Value: "cookie-token"})
		r.Header.Set("Authorization", "Bearer header-token")
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cookie-token", verified)
}

// Missing credential, bad token and unknown subject must all yield the
// same response body and status, so a caller cannot probe which accounts
// exist.
func TestNeedAuthFailuresAreIndistinguishable(t *testing.T) {
	cases := []struct {
		name  string
		auth  *Auth
		setup func(r *http.Request)
	}{
		{
			name: "no credential",
			auth: NewAuth(&MockJwtService{}, &MockUserStore{}),
		},
		{
			name: "malformed token",
			auth: NewAuth(&MockJwtService{}, &MockUserStore{}),
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer garbage")
			},
		},
		{
			name: "expired token",
			auth: NewAuth(&MockJwtService{
				VerifyFunc: func(tokenStr string) (string, error) {
					return "", jwt.ErrTokenExpired
				},
			}, &MockUserStore{}),
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer valid-but-expired")
			},
		},
		{
			name: "unknown subject",
			auth: NewAuth(&MockJwtService{}, &MockUserStore{
				UserByUsernameFunc: func(username string) (domain.User, error) {
					return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
				},
			}),
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer valid-ghost")
			},
		},
	}

	var bodies []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serveWithAuth(t, tc.auth, tc.setup)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Invalid credentials\n", rec.Body.String())
			bodies = append(bodies, rec.Body.String())
		})
	}
	for _, body := range bodies {
		assert.Equal(t, bodies[0], body)
	}
}

func TestNeedAuthInactiveUser(t *testing.T) {
	auth := NewAuth(&MockJwtService{}, &MockUserStore{
		UserByUsernameFunc: func(username string) (domain.User, error) {
			return domain.User{Id: 1, Username: username, IsActive: false}, nil
		},
	})

	rec := serveWithAuth(t, auth, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer valid-reader")
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Inactive user\n", rec.Body.String())
}

func TestNeedAuthStorageErrorIs500(t *testing.T) {
	auth := NewAuth(&MockJwtService{}, &MockUserStore{
		UserByUsernameFunc: func(username string) (domain.User, error) {
			return domain.User{}, assert.AnError
		},
	})

	rec := serveWithAuth(t, auth, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer valid-reader")
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetUserFromContextOutsideMiddleware(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Nil(t, GetUserFromContext(req))
}
