package domain

import "time"

type UserId = int64

type User struct {
	Id       UserId
	Email    string
	Username string
	PassHash string
	FullName string

	IsActive   bool
	IsVerified bool

	// Notification preferences
	DarkMode              bool
	EmailNotifications    bool
	WhatsappNotifications bool

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// ProfileUpdate carries the optional profile fields a user may change.
// Nil means "leave unchanged".
type ProfileUpdate struct {
	FullName              *string
	DarkMode              *bool
	EmailNotifications    *bool
	WhatsappNotifications *bool
}

type Preferences struct {
	DarkMode              bool `json:"dark_mode"`
	EmailNotifications    bool `json:"email_notifications"`
	WhatsappNotifications bool `json:"whatsapp_notifications"`
}
