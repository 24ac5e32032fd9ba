package handler

import (
	"net/http"
	"time"

	"github.com/easeops/elibrary/internal/domain"
	"github.com/easeops/elibrary/internal/logger"
	"github.com/easeops/elibrary/internal/middleware"
	"github.com/easeops/elibrary/internal/utils"
)

type notificationResponse struct {
	Id        domain.NotificationId `json:"id"`
	Title     string                `json:"title"`
	Message   string                `json:"message"`
	Channel   string                `json:"notification_type"`
	IsSent    bool                  `json:"is_sent"`
	SentAt    *time.Time            `json:"sent_at,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
}

func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	items, err := h.notification.Notifications(user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	out := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, notificationResponse{
			Id:        n.Id,
			Title:     n.Title,
			Message:   n.Message,
			Channel:   n.Channel,
			IsSent:    n.IsSent,
			SentAt:    n.SentAt,
			CreatedAt: n.CreatedAt,
		})
	}
	writeJSON(w, out)
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	notificationId, err := idParam(r, "notification_id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.notification.MarkRead(notificationId, user.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeMessage(w, "Notification marked as read")
}

func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	if err := h.notification.Subscribe(user.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeMessage(w, "Subscribed to email notifications")
}

func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	if err := h.notification.Unsubscribe(user.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeMessage(w, "Unsubscribed from email notifications")
}

// TriggerNewRelease queues a new-release announcement to all subscribed
// users. The fan-out runs in the background; the request returns as soon
// as the batch is queued, and per-recipient outcomes are recorded in the
// notifications table.
func (h *Handler) TriggerNewRelease(w http.ResponseWriter, r *http.Request) {
	bookId, err := idParam(r, "book_id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	go func() {
		if _, err := h.notification.NotifyNewRelease(bookId); err != nil {
			logger.Log.Error("new release dispatch failed", "book_id", bookId, "error", err)
		}
	}()

	writeMessage(w, "New release notifications queued")
}

func (h *Handler) SendTestNotification(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	if err := h.notification.SendTestNotification(*user); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeMessage(w, "Test notification sent")
}
