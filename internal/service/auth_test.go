package service

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/easeops/elibrary/internal/domain"
	internal_errors "github.com/easeops/elibrary/internal/errors"
)

// --- Mocks ---

type MockAuthStorage struct {
	SaveUserFunc       func(user domain.User) (domain.UserId, error)
	UserByUsernameFunc func(username string) (domain.User, error)
	UserByIdFunc       func(id domain.UserId) (domain.User, error)
}

func (m *MockAuthStorage) SaveUser(user domain.User) (domain.UserId, error) {
	if m.SaveUserFunc != nil {
		return m.SaveUserFunc(user)
	}
	return 1, nil
}

func (m *MockAuthStorage) UserByUsername(username string) (domain.User, error) {
	if m.UserByUsernameFunc != nil {
		return m.UserByUsernameFunc(username)
	}
	// Default success case for login tests
	passHash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	return domain.User{Id: 1, Username: username, PassHash: string(passHash), IsActive: true}, nil
}

func (m *MockAuthStorage) UserById(id domain.UserId) (domain.User, error) {
	if m.UserByIdFunc != nil {
		return m.UserByIdFunc(id)
	}
	return domain.User{Id: id, Username: "reader", IsActive: true}, nil
}

type MockEmailChecker struct {
	IsCorrectFunc func(email string) error
}

func (m *MockEmailChecker) IsCorrect(email string) error {
	if m.IsCorrectFunc != nil {
		return m.IsCorrectFunc(email)
	}
	return nil
}

type MockJwt struct {
	NewTokenFunc func(subject string) (string, error)
}

func (m *MockJwt) NewToken(subject string) (string, error) {
	if m.NewTokenFunc != nil {
		return m.NewTokenFunc(subject)
	}
	return "token-" + subject, nil
}

func newTestAuth(storage *MockAuthStorage) *Auth {
	return NewAuth(storage, &MockEmailChecker{}, &MockJwt{})
}

// --- Tests ---

func TestHashVerifyRoundtrip(t *testing.T) {
	hash, err := hashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	ok, err := verifyPassword("s3cret-password", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyPassword("wrong-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordCorruptHash(t *testing.T) {
	ok, err := verifyPassword("whatever", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.ErrorIs(t, err, internal_errors.ErrCorruptCredential)
}

func TestRegisterSuccess(t *testing.T) {
	var saved domain.User
	storage := &MockAuthStorage{
		SaveUserFunc: func(user domain.User) (domain.UserId, error) {
			saved = user
			return 42, nil
		},
		UserByIdFunc: func(id domain.UserId) (domain.User, error) {
			saved.Id = id
			return saved, nil
		},
	}
	auth := newTestAuth(storage)

	user, err := auth.Register("Reader@Example.COM", "reader", "Reader One", "s3cret-password")
	require.NoError(t, err)

	assert.Equal(t, "reader@example.com", user.Email, "email should be lowercased")
	assert.Equal(t, domain.UserId(42), user.Id)
	assert.True(t, user.IsActive)
	assert.True(t, user.EmailNotifications)
	assert.NotEqual(t, "s3cret-password", saved.PassHash, "plaintext must never be stored")

	ok, err := verifyPassword("s3cret-password", saved.PassHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegisterInvalidEmail(t *testing.T) {
	auth := NewAuth(&MockAuthStorage{}, &MockEmailChecker{
		IsCorrectFunc: func(email string) error {
			return &internal_errors.ErrorWithStatusCode{Message: "mail: missing '@'", StatusCode: http.StatusBadRequest}
		},
	}, &MockJwt{})

	_, err := auth.Register("not-an-email", "reader", "", "s3cret-password")
	var statusErr *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestRegisterDuplicate(t *testing.T) {
	storage := &MockAuthStorage{
		SaveUserFunc: func(user domain.User) (domain.UserId, error) {
			return -1, &internal_errors.ErrorWithStatusCode{Message: "Email or username already registered", StatusCode: http.StatusBadRequest}
		},
	}
	auth := newTestAuth(storage)

	_, err := auth.Register("reader@example.com", "reader", "", "s3cret-password")
	var statusErr *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, "Email or username already registered", statusErr.Message)
}

func TestLoginSuccess(t *testing.T) {
	passHash, err := hashPassword("s3cret-password")
	require.NoError(t, err)

	storage := &MockAuthStorage{
		UserByUsernameFunc: func(username string) (domain.User, error) {
			return domain.User{Id: 1, Username: username, PassHash: passHash, IsActive: true}, nil
		},
	}
	auth := newTestAuth(storage)

	token, err := auth.Login("reader", "s3cret-password")
	require.NoError(t, err)
	assert.Equal(t, "token-reader", token)
}

// Unknown username and wrong password must be indistinguishable to the
// caller, otherwise login doubles as an account-enumeration oracle.
func TestLoginUnknownUserAndWrongPasswordLookIdentical(t *testing.T) {
	passHash, err := hashPassword("s3cret-password")
	require.NoError(t, err)

	unknownStorage := &MockAuthStorage{
		UserByUsernameFunc: func(username string) (domain.User, error) {
			return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		},
	}
	_, errUnknown := newTestAuth(unknownStorage).Login("ghost", "s3cret-password")

	knownStorage := &MockAuthStorage{
		UserByUsernameFunc: func(username string) (domain.User, error) {
			return domain.User{Id: 1, Username: username, PassHash: passHash, IsActive: true}, nil
		},
	}
	_, errWrongPass := newTestAuth(knownStorage).Login("reader", "wrong-password")

	var unknownStatus, wrongPassStatus *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, errUnknown, &unknownStatus)
	require.ErrorAs(t, errWrongPass, &wrongPassStatus)

	assert.Equal(t, http.StatusUnauthorized, unknownStatus.StatusCode)
	assert.Equal(t, unknownStatus.StatusCode, wrongPassStatus.StatusCode)
	assert.Equal(t, unknownStatus.Message, wrongPassStatus.Message)
}

func TestLoginInactiveUser(t *testing.T) {
	passHash, err := hashPassword("s3cret-password")
	require.NoError(t, err)

	storage := &MockAuthStorage{
		UserByUsernameFunc: func(username string) (domain.User, error) {
			return domain.User{Id: 1, Username: username, PassHash: passHash, IsActive: false}, nil
		},
	}
	auth := newTestAuth(storage)

	_, err = auth.Login("reader", "s3cret-password")
	var statusErr *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, "Inactive user", statusErr.Message)
}

// A wrong password on an inactive account must still produce the merged
// 401: credential check runs before the active check.
func TestLoginInactiveUserWrongPassword(t *testing.T) {
	passHash, err := hashPassword("s3cret-password")
	require.NoError(t, err)

	storage := &MockAuthStorage{
		UserByUsernameFunc: func(username string) (domain.User, error) {
			return domain.User{Id: 1, Username: username, PassHash: passHash, IsActive: false}, nil
		},
	}
	auth := newTestAuth(storage)

	_, err = auth.Login("reader", "wrong-password")
	var statusErr *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "Invalid credentials", statusErr.Message)
}

func TestLoginCorruptStoredHash(t *testing.T) {
	storage := &MockAuthStorage{
		UserByUsernameFunc: func(username string) (domain.User, error) {
			return domain.User{Id: 1, Username: username, PassHash: "garbage", IsActive: true}, nil
		},
	}
	auth := newTestAuth(storage)

	_, err := auth.Login("reader", "s3cret-password")
	var statusErr *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "Internal server error", statusErr.Message, "corrupt hash details must not leak")
}

func TestLoginStorageError(t *testing.T) {
	storageErr := errors.New("connection refused")
	storage := &MockAuthStorage{
		UserByUsernameFunc: func(username string) (domain.User, error) {
			return domain.User{}, storageErr
		},
	}
	auth := newTestAuth(storage)

	_, err := auth.Login("reader", "s3cret-password")
	assert.ErrorIs(t, err, storageErr)
}
