package service

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easeops/elibrary/internal/domain"
	internal_errors "github.com/easeops/elibrary/internal/errors"
)

// --- Mocks ---

type MockNotificationStorage struct {
	InsertNotificationFunc          func(n domain.Notification) (domain.NotificationId, error)
	MarkNotificationSentFunc        func(id domain.NotificationId, sentAt time.Time) error
	NotificationsByUserFunc         func(userId domain.UserId) ([]domain.Notification, error)
	MarkNotificationReadFunc        func(id domain.NotificationId, userId domain.UserId) error
	UsersWithEmailNotificationsFunc func() ([]domain.User, error)
	SetEmailNotificationsFunc       func(id domain.UserId, enabled bool) error
	BookFunc                        func(id domain.BookId) (domain.Book, error)

	inserted []domain.Notification
	sentIds  []domain.NotificationId
	nextId   domain.NotificationId
}

func (m *MockNotificationStorage) InsertNotification(n domain.Notification) (domain.NotificationId, error) {
	if m.InsertNotificationFunc != nil {
		return m.InsertNotificationFunc(n)
	}
	m.nextId++
	n.Id = m.nextId
	m.inserted = append(m.inserted, n)
	return m.nextId, nil
}

func (m *MockNotificationStorage) MarkNotificationSent(id domain.NotificationId, sentAt time.Time) error {
	if m.MarkNotificationSentFunc != nil {
		return m.MarkNotificationSentFunc(id, sentAt)
	}
	m.sentIds = append(m.sentIds, id)
	return nil
}

func (m *MockNotificationStorage) NotificationsByUser(userId domain.UserId) ([]domain.Notification, error) {
	if m.NotificationsByUserFunc != nil {
		return m.NotificationsByUserFunc(userId)
	}
	return nil, nil
}

func (m *MockNotificationStorage) MarkNotificationRead(id domain.NotificationId, userId domain.UserId) error {
	if m.MarkNotificationReadFunc != nil {
		return m.MarkNotificationReadFunc(id, userId)
	}
	return nil
}

func (m *MockNotificationStorage) UsersWithEmailNotifications() ([]domain.User, error) {
	if m.UsersWithEmailNotificationsFunc != nil {
		return m.UsersWithEmailNotificationsFunc()
	}
	return nil, nil
}

func (m *MockNotificationStorage) SetEmailNotifications(id domain.UserId, enabled bool) error {
	if m.SetEmailNotificationsFunc != nil {
		return m.SetEmailNotificationsFunc(id, enabled)
	}
	return nil
}

func (m *MockNotificationStorage) Book(id domain.BookId) (domain.Book, error) {
	if m.BookFunc != nil {
		return m.BookFunc(id)
	}
	return domain.Book{Id: id, Title: "The Go Programming Language", Author: "Donovan & Kernighan"}, nil
}

type MockSender struct {
	SendFunc func(to, subject, htmlBody string) error

	sent []string // recipient emails, in send order
}

func (m *MockSender) Send(to, subject, htmlBody string) error {
	if m.SendFunc != nil {
		if err := m.SendFunc(to, subject, htmlBody); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, to)
	return nil
}

func testRecipients(n int) []domain.User {
	users := make([]domain.User, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, domain.User{
			Id:                 domain.UserId(i),
			Email:              fmt.Sprintf("reader%d@example.com", i),
			Username:           fmt.Sprintf("reader%d", i),
			IsActive:           true,
			EmailNotifications: true,
		})
	}
	return users
}

// --- Tests ---

func TestDispatchBatchAllDelivered(t *testing.T) {
	storage := &MockNotificationStorage{}
	sender := &MockSender{}
	notifier := NewNotifier(storage, sender)

	recipients := testRecipients(3)
	report := notifier.DispatchBatch(recipients, "Hello", func(u domain.User) string {
		return "Hi " + u.Username
	})

	assert.Equal(t, domain.DispatchReport{Attempted: 3, Delivered: 3, Failed: 0}, report)
	require.Len(t, storage.inserted, 3)
	assert.Len(t, storage.sentIds, 3)

	// Records are persisted in recipient order with personalized bodies.
	for i, n := range storage.inserted {
		assert.Equal(t, recipients[i].Id, n.UserId)
		assert.Equal(t, "Hi "+recipients[i].Username, n.Message)
		assert.Equal(t, domain.ChannelEmail, n.Channel)
	}
}

// One failing recipient must not abort the batch: every recipient still
// gets a persisted record, and only the failing one stays unsent.
func TestDispatchBatchOneFailureDoesNotAbort(t *testing.T) {
	storage := &MockNotificationStorage{}
	sender := &MockSender{
		SendFunc: func(to, subject, htmlBody string) error {
			if to == "reader3@example.com" {
				return errors.New("smtp: 550 mailbox unavailable")
			}
			return nil
		},
	}
	notifier := NewNotifier(storage, sender)

	recipients := testRecipients(5)
	report := notifier.DispatchBatch(recipients, "Hello", func(u domain.User) string { return "body" })

	assert.Equal(t, domain.DispatchReport{Attempted: 5, Delivered: 4, Failed: 1}, report)
	assert.Len(t, storage.inserted, 5, "failed recipient still gets a record")
	assert.Len(t, storage.sentIds, 4)
	assert.NotContains(t, storage.sentIds, domain.NotificationId(3), "failed record must stay unsent")
	assert.Len(t, sender.sent, 4)
}

func TestDispatchBatchInsertFailureSkipsSend(t *testing.T) {
	sendAttempts := 0
	storage := &MockNotificationStorage{
		InsertNotificationFunc: func(n domain.Notification) (domain.NotificationId, error) {
			if n.UserId == 2 {
				return -1, errors.New("insert failed")
			}
			return n.UserId, nil
		},
	}
	sender := &MockSender{
		SendFunc: func(to, subject, htmlBody string) error {
			sendAttempts++
			return nil
		},
	}
	notifier := NewNotifier(storage, sender)

	report := notifier.DispatchBatch(testRecipients(3), "Hello", func(u domain.User) string { return "body" })

	assert.Equal(t, domain.DispatchReport{Attempted: 3, Delivered: 2, Failed: 1}, report)
	assert.Equal(t, 2, sendAttempts, "no delivery attempt without a persisted record")
}

func TestDispatchBatchEmpty(t *testing.T) {
	storage := &MockNotificationStorage{}
	sender := &MockSender{}
	notifier := NewNotifier(storage, sender)

	report := notifier.DispatchBatch(nil, "Hello", func(u domain.User) string { return "body" })

	assert.Equal(t, domain.DispatchReport{}, report)
	assert.Empty(t, storage.inserted)
	assert.Empty(t, sender.sent)
}

func TestDispatchOneSuccess(t *testing.T) {
	storage := &MockNotificationStorage{}
	sender := &MockSender{}
	notifier := NewNotifier(storage, sender)

	user := testRecipients(1)[0]
	err := notifier.DispatchOne(user, "Test", "body")
	require.NoError(t, err)

	require.Len(t, storage.inserted, 1)
	assert.Len(t, storage.sentIds, 1)
}

// A failed single dispatch surfaces the delivery error but keeps the
// persisted record as the audit trail of the attempt.
func TestDispatchOneDeliveryFailure(t *testing.T) {
	storage := &MockNotificationStorage{}
	sender := &MockSender{
		SendFunc: func(to, subject, htmlBody string) error {
			return errors.New("smtp: connection reset")
		},
	}
	notifier := NewNotifier(storage, sender)

	user := testRecipients(1)[0]
	err := notifier.DispatchOne(user, "Test", "body")
	assert.ErrorIs(t, err, internal_errors.ErrDeliveryFailed)

	assert.Len(t, storage.inserted, 1, "record persists for the failed attempt")
	assert.Empty(t, storage.sentIds)
}

func TestDispatchRendersMarkdownToHTML(t *testing.T) {
	var delivered string
	storage := &MockNotificationStorage{}
	sender := &MockSender{
		SendFunc: func(to, subject, htmlBody string) error {
			delivered = htmlBody
			return nil
		},
	}
	notifier := NewNotifier(storage, sender)

	user := testRecipients(1)[0]
	err := notifier.DispatchOne(user, "Test", "## Heading\n\n**bold** text")
	require.NoError(t, err)

	assert.Contains(t, delivered, "<h2")
	assert.Contains(t, delivered, "<strong>bold</strong>")
	// The stored record keeps the markdown source, not the rendered HTML.
	require.Len(t, storage.inserted, 1)
	assert.Equal(t, "## Heading\n\n**bold** text", storage.inserted[0].Message)
}

func TestNotifyNewRelease(t *testing.T) {
	storage := &MockNotificationStorage{
		UsersWithEmailNotificationsFunc: func() ([]domain.User, error) {
			return testRecipients(2), nil
		},
	}
	sender := &MockSender{}
	notifier := NewNotifier(storage, sender)

	report, err := notifier.NotifyNewRelease(7)
	require.NoError(t, err)
	assert.Equal(t, domain.DispatchReport{Attempted: 2, Delivered: 2}, report)

	require.Len(t, storage.inserted, 2)
	assert.Contains(t, storage.inserted[0].Message, "The Go Programming Language")
	assert.Contains(t, storage.inserted[0].Message, "reader1", "body is personalized per recipient")
	assert.Contains(t, storage.inserted[1].Message, "reader2")
}

func TestNotifyNewReleaseUnknownBook(t *testing.T) {
	storage := &MockNotificationStorage{
		BookFunc: func(id domain.BookId) (domain.Book, error) {
			return domain.Book{}, &internal_errors.ErrorWithStatusCode{Message: "Book not found", StatusCode: http.StatusNotFound}
		},
	}
	notifier := NewNotifier(storage, &MockSender{})

	_, err := notifier.NotifyNewRelease(999)
	var statusErr *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Empty(t, storage.inserted, "no records without a book")
}

func TestSendTestNotificationDisabledPreference(t *testing.T) {
	storage := &MockNotificationStorage{}
	notifier := NewNotifier(storage, &MockSender{})

	user := testRecipients(1)[0]
	user.EmailNotifications = false

	err := notifier.SendTestNotification(user)
	var statusErr *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Empty(t, storage.inserted, "no record when the preference blocks dispatch")
}

func TestSendTestNotificationUsesFullName(t *testing.T) {
	var delivered string
	storage := &MockNotificationStorage{}
	sender := &MockSender{
		SendFunc: func(to, subject, htmlBody string) error {
			delivered = htmlBody
			return nil
		},
	}
	notifier := NewNotifier(storage, sender)

	user := testRecipients(1)[0]
	user.FullName = "Reader One"

	require.NoError(t, notifier.SendTestNotification(user))
	assert.Contains(t, delivered, "Reader One")
}

func TestSubscribeUnsubscribe(t *testing.T) {
	var gotId domain.UserId
	var gotEnabled bool
	storage := &MockNotificationStorage{
		SetEmailNotificationsFunc: func(id domain.UserId, enabled bool) error {
			gotId, gotEnabled = id, enabled
			return nil
		},
	}
	notifier := NewNotifier(storage, &MockSender{})

	require.NoError(t, notifier.Subscribe(5))
	assert.Equal(t, domain.UserId(5), gotId)
	assert.True(t, gotEnabled)

	require.NoError(t, notifier.Unsubscribe(5))
	assert.False(t, gotEnabled)
}
