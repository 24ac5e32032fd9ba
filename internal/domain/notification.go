package domain

import "time"

type NotificationId = int64

// Channel tags for notification records.
const (
	ChannelEmail    = "email"
	ChannelWhatsapp = "whatsapp"
	ChannelInApp    = "in_app"
)

// Notification is the persisted audit row for one delivery attempt.
// A row is created for every attempted recipient; only a successful
// delivery mutates IsSent and SentAt.
type Notification struct {
	Id        NotificationId
	UserId    UserId
	Title     string
	Message   string
	Channel   string
	IsSent    bool
	SentAt    *time.Time
	CreatedAt time.Time
}

// DispatchReport summarizes one fan-out batch.
type DispatchReport struct {
	Attempted int
	Delivered int
	Failed    int
}
