package service

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/easeops/elibrary/internal/domain"
	internal_errors "github.com/easeops/elibrary/internal/errors"
	"github.com/easeops/elibrary/internal/logger"
)

type AuthService interface {
	Register(email, username, fullName, password string) (domain.User, error)
	Login(username, password string) (string, error)
}

type Auth struct {
	storage AuthStorage
	email   EmailChecker
	jwt     Jwt
}

type AuthStorage interface {
	SaveUser(user domain.User) (domain.UserId, error)
	UserByUsername(username string) (domain.User, error)
	UserById(id domain.UserId) (domain.User, error)
}

type EmailChecker interface {
	IsCorrect(email string) error
}

type Jwt interface {
	NewToken(subject string) (string, error)
}

func NewAuth(storage AuthStorage, email EmailChecker, jwt Jwt) *Auth {
	return &Auth{storage: storage, email: email, jwt: jwt}
}

// hashPassword derives the stored credential from a plaintext secret.
// The plaintext is never stored or logged; bcrypt salts per call.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword reports whether password matches the stored hash.
// A mismatch is (false, nil). Any other bcrypt error means the stored
// hash itself is unreadable and is reported as ErrCorruptCredential.
func verifyPassword(password, passHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(passHash), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, internal_errors.ErrCorruptCredential
}

// Register creates an account. New accounts start active, unverified and
// subscribed to email notifications, matching the catalog defaults.
func (a *Auth) Register(email, username, fullName, password string) (domain.User, error) {
	email = strings.ToLower(email)

	if err := a.email.IsCorrect(email); err != nil {
		return domain.User{}, err
	}

	passHash, err := hashPassword(password)
	if err != nil {
		logger.Log.Error("failed to hash password", "error", err)
		return domain.User{}, err
	}

	id, err := a.storage.SaveUser(domain.User{
		Email:              email,
		Username:           username,
		PassHash:           passHash,
		FullName:           fullName,
		IsActive:           true,
		EmailNotifications: true,
	})
	if err != nil {
		return domain.User{}, err
	}

	return a.storage.UserById(id)
}

// Login checks the credentials and returns an access token.
// Unknown username and wrong password produce the identical response so
// the endpoint cannot be used to enumerate accounts.
func (a *Auth) Login(username, password string) (string, error) {
	user, err := a.storage.UserByUsername(username)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return "", &internal_errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
		}
		return "", err
	}

	ok, err := verifyPassword(password, user.PassHash)
	if err != nil {
		logger.Log.Error("stored password hash is unreadable", "user_id", user.Id, "error", err)
		return "", &internal_errors.ErrorWithStatusCode{Message: "Internal server error", StatusCode: http.StatusInternalServerError}
	}
	if !ok {
		return "", &internal_errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
	}

	if !user.IsActive {
		return "", &internal_errors.ErrorWithStatusCode{Message: "Inactive user", StatusCode: http.StatusBadRequest}
	}

	token, err := a.jwt.NewToken(user.Username)
	if err != nil {
		logger.Log.Error("failed to create jwt token", "user_id", user.Id, "error", err)
		return "", err
	}

	return token, nil
}
