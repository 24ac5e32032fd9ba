package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"

	"github.com/easeops/elibrary/internal/domain"
	internal_errors "github.com/easeops/elibrary/internal/errors"
)

const userColumns = `id, email, username, password_hash, full_name, is_active, is_verified,
	dark_mode, email_notifications, whatsapp_notifications, created_at, updated_at`

// SaveUser inserts a new account row. A duplicate email or username is
// reported as one merged 400 so the endpoint does not reveal which
// column collided.
func (s *Storage) SaveUser(user domain.User) (domain.UserId, error) {
	ctx, cancel := s.writeCtx()
	defer cancel()

	var id domain.UserId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRow(
			`INSERT INTO users(email, username, password_hash, full_name, is_active, is_verified,
				dark_mode, email_notifications, whatsapp_notifications)
			VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
			user.Email, user.Username, user.PassHash, user.FullName, user.IsActive, user.IsVerified,
			user.DarkMode, user.EmailNotifications, user.WhatsappNotifications,
		).Scan(&id)
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return -1, &internal_errors.ErrorWithStatusCode{Message: "Email or username already registered", StatusCode: http.StatusBadRequest}
		}
		return -1, fmt.Errorf("failed to insert user: %w", err)
	}
	return id, nil
}

func (s *Storage) UserByUsername(username string) (domain.User, error) {
	return s.user(s.db, "username", username)
}

func (s *Storage) UserById(id domain.UserId) (domain.User, error) {
	return s.user(s.db, "id", id)
}

func (s *Storage) user(q Querier, column string, value any) (domain.User, error) {
	var user domain.User
	var updatedAt sql.NullTime
	err := q.QueryRow(
		fmt.Sprintf("SELECT %s FROM users WHERE %s = $1", userColumns, column), value,
	).Scan(&user.Id, &user.Email, &user.Username, &user.PassHash, &user.FullName,
		&user.IsActive, &user.IsVerified, &user.DarkMode, &user.EmailNotifications,
		&user.WhatsappNotifications, &user.CreatedAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return domain.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	if updatedAt.Valid {
		user.UpdatedAt = &updatedAt.Time
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of upd and returns the fresh row.
func (s *Storage) UpdateProfile(id domain.UserId, upd domain.ProfileUpdate) (domain.User, error) {
	ctx, cancel := s.writeCtx()
	defer cancel()

	var user domain.User
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec(
			`UPDATE users SET
				full_name = COALESCE($2, full_name),
				dark_mode = COALESCE($3, dark_mode),
				email_notifications = COALESCE($4, email_notifications),
				whatsapp_notifications = COALESCE($5, whatsapp_notifications),
				updated_at = NOW()
			WHERE id = $1`,
			id, upd.FullName, upd.DarkMode, upd.EmailNotifications, upd.WhatsappNotifications,
		)
		if err != nil {
			return fmt.Errorf("failed to update profile: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check affected rows for profile update: %w", err)
		}
		if rowsAffected == 0 {
			return &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		user, err = s.user(tx, "id", id)
		return err
	})
	return user, err
}

// SetEmailNotifications flips the email preference flag used by the
// new-release subscription endpoints.
func (s *Storage) SetEmailNotifications(id domain.UserId, enabled bool) error {
	ctx, cancel := s.writeCtx()
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("UPDATE users SET email_notifications = $2, updated_at = NOW() WHERE id = $1", id, enabled)
		if err != nil {
			return fmt.Errorf("failed to update email notifications flag: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
		}
		return nil
	})
}

// UsersWithEmailNotifications returns the audience for an email fan-out:
// active accounts that opted in to the email channel.
func (s *Storage) UsersWithEmailNotifications() ([]domain.User, error) {
	rows, err := s.db.Query(
		fmt.Sprintf("SELECT %s FROM users WHERE is_active = TRUE AND email_notifications = TRUE ORDER BY id", userColumns))
	if err != nil {
		return nil, fmt.Errorf("failed to query notification audience: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		var updatedAt sql.NullTime
		if err := rows.Scan(&user.Id, &user.Email, &user.Username, &user.PassHash, &user.FullName,
			&user.IsActive, &user.IsVerified, &user.DarkMode, &user.EmailNotifications,
			&user.WhatsappNotifications, &user.CreatedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		if updatedAt.Valid {
			user.UpdatedAt = &updatedAt.Time
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
