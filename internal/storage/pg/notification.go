package pg

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/easeops/elibrary/internal/domain"
	internal_errors "github.com/easeops/elibrary/internal/errors"
)

// InsertNotification persists the audit row for one delivery attempt.
// The row starts unsent; only MarkNotificationSent mutates it afterwards.
func (s *Storage) InsertNotification(n domain.Notification) (domain.NotificationId, error) {
	ctx, cancel := s.writeCtx()
	defer cancel()

	var id domain.NotificationId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRow(
			`INSERT INTO notifications(user_id, title, message, notification_type, is_sent)
			VALUES($1, $2, $3, $4, FALSE) RETURNING id`,
			n.UserId, n.Title, n.Message, n.Channel,
		).Scan(&id)
	})
	if err != nil {
		return -1, fmt.Errorf("failed to insert notification: %w", err)
	}
	return id, nil
}

func (s *Storage) MarkNotificationSent(id domain.NotificationId, sentAt time.Time) error {
	ctx, cancel := s.writeCtx()
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(
			"UPDATE notifications SET is_sent = TRUE, sent_at = $2 WHERE id = $1", id, sentAt)
		if err != nil {
			return fmt.Errorf("failed to mark notification sent: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return &internal_errors.ErrorWithStatusCode{Message: "Notification not found", StatusCode: http.StatusNotFound}
		}
		return nil
	})
}

func (s *Storage) NotificationsByUser(userId domain.UserId) ([]domain.Notification, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, title, message, notification_type, is_sent, sent_at, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var sentAt sql.NullTime
		if err := rows.Scan(&n.Id, &n.UserId, &n.Title, &n.Message, &n.Channel, &n.IsSent, &sentAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		if sentAt.Valid {
			n.SentAt = &sentAt.Time
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flags a user's own notification as seen. The
// original data model reuses the is_sent/sent_at columns for this.
func (s *Storage) MarkNotificationRead(id domain.NotificationId, userId domain.UserId) error {
	ctx, cancel := s.writeCtx()
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(
			"UPDATE notifications SET is_sent = TRUE, sent_at = NOW() WHERE id = $1 AND user_id = $2", id, userId)
		if err != nil {
			return fmt.Errorf("failed to mark notification read: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return &internal_errors.ErrorWithStatusCode{Message: "Notification not found", StatusCode: http.StatusNotFound}
		}
		return nil
	})
}
