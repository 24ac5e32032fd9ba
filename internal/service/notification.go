package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/easeops/elibrary/internal/domain"
	internal_errors "github.com/easeops/elibrary/internal/errors"
	"github.com/easeops/elibrary/internal/logger"
	"github.com/easeops/elibrary/internal/markdown"
)

type NotificationService interface {
	Notifications(userId domain.UserId) ([]domain.Notification, error)
	MarkRead(id domain.NotificationId, userId domain.UserId) error
	Subscribe(userId domain.UserId) error
	Unsubscribe(userId domain.UserId) error
	NotifyNewRelease(bookId domain.BookId) (domain.DispatchReport, error)
	SendTestNotification(user domain.User) error
}

type NotificationStorage interface {
	InsertNotification(n domain.Notification) (domain.NotificationId, error)
	MarkNotificationSent(id domain.NotificationId, sentAt time.Time) error
	NotificationsByUser(userId domain.UserId) ([]domain.Notification, error)
	MarkNotificationRead(id domain.NotificationId, userId domain.UserId) error
	UsersWithEmailNotifications() ([]domain.User, error)
	SetEmailNotifications(id domain.UserId, enabled bool) error
	Book(id domain.BookId) (domain.Book, error)
}

// Sender is the mail transport. It blocks for at most its own per-attempt
// timeout; retry policy (if any) lives behind this interface, not here.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

type Notifier struct {
	storage  NotificationStorage
	sender   Sender
	renderer *markdown.Renderer
}

func NewNotifier(storage NotificationStorage, sender Sender) *Notifier {
	return &Notifier{storage: storage, sender: sender, renderer: markdown.New()}
}

// DispatchBatch fans one notification out to every recipient in order.
// Per recipient: render the personalized body, persist an unsent record,
// attempt delivery, and mark the record sent only on success. A failed
// delivery leaves a permanent failed record and the batch moves on; it is
// never retried within the batch and never aborts it. The sequential loop
// keeps persisted-record order equal to recipient order.
func (n *Notifier) DispatchBatch(recipients []domain.User, title string, render func(domain.User) string) domain.DispatchReport {
	batchId := uuid.New()
	report := domain.DispatchReport{Attempted: len(recipients)}

	for _, user := range recipients {
		body := render(user)

		id, err := n.storage.InsertNotification(domain.Notification{
			UserId:  user.Id,
			Title:   title,
			Message: body,
			Channel: domain.ChannelEmail,
		})
		if err != nil {
			logger.Log.Error("failed to persist notification record",
				"batch_id", batchId, "user_id", user.Id, "error", err)
			report.Failed++
			continue
		}

		if err := n.deliver(user.Email, title, body); err != nil {
			logger.Log.Warn("notification delivery failed",
				"batch_id", batchId, "user_id", user.Id, "notification_id", id, "error", err)
			report.Failed++
			continue
		}

		if err := n.storage.MarkNotificationSent(id, time.Now().UTC()); err != nil {
			logger.Log.Error("delivered but failed to mark notification sent",
				"batch_id", batchId, "notification_id", id, "error", err)
		}
		report.Delivered++
	}

	logger.Log.Info("dispatch batch finished",
		"batch_id", batchId, "attempted", report.Attempted,
		"delivered", report.Delivered, "failed", report.Failed)
	return report
}

// DispatchOne runs the same record-then-attempt sequence for a single
// recipient, but surfaces the delivery failure to the caller, who is
// synchronously waiting on the outcome.
func (n *Notifier) DispatchOne(user domain.User, title, body string) error {
	id, err := n.storage.InsertNotification(domain.Notification{
		UserId:  user.Id,
		Title:   title,
		Message: body,
		Channel: domain.ChannelEmail,
	})
	if err != nil {
		return err
	}

	if err := n.deliver(user.Email, title, body); err != nil {
		logger.Log.Warn("notification delivery failed",
			"user_id", user.Id, "notification_id", id, "error", err)
		return fmt.Errorf("%w: %v", internal_errors.ErrDeliveryFailed, err)
	}

	return n.storage.MarkNotificationSent(id, time.Now().UTC())
}

// deliver renders the markdown body to sanitized HTML and hands it to the
// mail transport.
func (n *Notifier) deliver(to, subject, body string) error {
	html, err := n.renderer.Render(body)
	if err != nil {
		logger.Log.Error("failed to render notification body", "error", err)
		html = body
	}
	return n.sender.Send(to, subject, html)
}

// NotifyNewRelease dispatches a new-release announcement to every active
// user subscribed to the email channel. Preference filtering happens
// here, before dispatch; the dispatcher itself is preference-agnostic.
func (n *Notifier) NotifyNewRelease(bookId domain.BookId) (domain.DispatchReport, error) {
	book, err := n.storage.Book(bookId)
	if err != nil {
		return domain.DispatchReport{}, err
	}

	recipients, err := n.storage.UsersWithEmailNotifications()
	if err != nil {
		return domain.DispatchReport{}, err
	}

	title := "New Book Release - EaseOps E-Library"
	report := n.DispatchBatch(recipients, title, func(user domain.User) string {
		return newReleaseBody(user, book)
	})
	return report, nil
}

// SendTestNotification sends an ad-hoc message to the user so they can
// verify their email settings.
func (n *Notifier) SendTestNotification(user domain.User) error {
	if !user.EmailNotifications {
		return &internal_errors.ErrorWithStatusCode{
			Message:    "Email notifications are disabled for this user",
			StatusCode: http.StatusBadRequest,
		}
	}

	body := fmt.Sprintf(`## Test Notification

Hello %s,

This is a test notification to verify your email settings.

If you received this email, your notification settings are working correctly!

EaseOps E-Library Team`, displayName(user))

	return n.DispatchOne(user, "Test Notification - EaseOps E-Library", body)
}

func (n *Notifier) Notifications(userId domain.UserId) ([]domain.Notification, error) {
	return n.storage.NotificationsByUser(userId)
}

func (n *Notifier) MarkRead(id domain.NotificationId, userId domain.UserId) error {
	return n.storage.MarkNotificationRead(id, userId)
}

func (n *Notifier) Subscribe(userId domain.UserId) error {
	return n.storage.SetEmailNotifications(userId, true)
}

func (n *Notifier) Unsubscribe(userId domain.UserId) error {
	return n.storage.SetEmailNotifications(userId, false)
}

func newReleaseBody(user domain.User, book domain.Book) string {
	return fmt.Sprintf(`## New Book Release!

Hello %s,

We're excited to announce that **"%s"** by %s is now available in our library!

[Read it now](https://easeops-elibrary.com/books/%d)

Happy reading!

EaseOps E-Library Team`, displayName(user), book.Title, book.Author, book.Id)
}

func displayName(user domain.User) string {
	if user.FullName != "" {
		return user.FullName
	}
	return user.Username
}
