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

func (s *Storage) Bookmarks(userId domain.UserId) ([]domain.Book, error) {
	rows, err := s.db.Query(
		fmt.Sprintf(`SELECT %s FROM books b
			JOIN user_bookmarks ub ON ub.book_id = b.id
			WHERE ub.user_id = $1
			ORDER BY b.id`, prefixedBookColumns("b")), userId)
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

func (s *Storage) AddBookmark(userId domain.UserId, bookId domain.BookId) error {
	ctx, cancel := s.writeCtx()
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO user_bookmarks(user_id, book_id) VALUES($1, $2)", userId, bookId)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return &internal_errors.ErrorWithStatusCode{Message: "Book already bookmarked", StatusCode: http.StatusBadRequest}
			}
			return fmt.Errorf("failed to insert bookmark: %w", err)
		}
		return nil
	})
}

func (s *Storage) RemoveBookmark(userId domain.UserId, bookId domain.BookId) error {
	ctx, cancel := s.writeCtx()
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM user_bookmarks WHERE user_id = $1 AND book_id = $2", userId, bookId)
		if err != nil {
			return fmt.Errorf("failed to delete bookmark: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return &internal_errors.ErrorWithStatusCode{Message: "Bookmark not found", StatusCode: http.StatusNotFound}
		}
		return nil
	})
}
