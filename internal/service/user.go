package service

import (
	"github.com/easeops/elibrary/internal/domain"
)

type UserService interface {
	Profile(id domain.UserId) (domain.User, error)
	UpdateProfile(id domain.UserId, upd domain.ProfileUpdate) (domain.User, error)
	Preferences(id domain.UserId) (domain.Preferences, error)
	UpdatePreferences(id domain.UserId, upd domain.ProfileUpdate) (domain.Preferences, error)
}

type UserStorage interface {
	UserById(id domain.UserId) (domain.User, error)
	UpdateProfile(id domain.UserId, upd domain.ProfileUpdate) (domain.User, error)
}

type User struct {
	storage UserStorage
}

func NewUser(storage UserStorage) *User {
	return &User{storage: storage}
}

func (u *User) Profile(id domain.UserId) (domain.User, error) {
	return u.storage.UserById(id)
}

func (u *User) UpdateProfile(id domain.UserId, upd domain.ProfileUpdate) (domain.User, error) {
	return u.storage.UpdateProfile(id, upd)
}

func (u *User) Preferences(id domain.UserId) (domain.Preferences, error) {
	user, err := u.storage.UserById(id)
	if err != nil {
		return domain.Preferences{}, err
	}
	return preferencesOf(user), nil
}

// UpdatePreferences ignores the FullName field of upd; only the
// preference flags can change through this path.
func (u *User) UpdatePreferences(id domain.UserId, upd domain.ProfileUpdate) (domain.Preferences, error) {
	upd.FullName = nil
	user, err := u.storage.UpdateProfile(id, upd)
	if err != nil {
		return domain.Preferences{}, err
	}
	return preferencesOf(user), nil
}

func preferencesOf(user domain.User) domain.Preferences {
	return domain.Preferences{
		DarkMode:              user.DarkMode,
		EmailNotifications:    user.EmailNotifications,
		WhatsappNotifications: user.WhatsappNotifications,
	}
}
