package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/easeops/elibrary/internal/domain"
	internal_errors "github.com/easeops/elibrary/internal/errors"
)

const noteColumns = "id, user_id, book_id, page_number, note_text, created_at, updated_at"

// Notes returns the user's notes, newest first, optionally restricted to
// one book.
func (s *Storage) Notes(userId domain.UserId, bookId *domain.BookId) ([]domain.Note, error) {
	query := fmt.Sprintf("SELECT %s FROM user_notes WHERE user_id = $1", noteColumns)
	args := []any{userId}
	if bookId != nil {
		args = append(args, *bookId)
		query += " AND book_id = $2"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (s *Storage) SaveNote(note domain.Note) (domain.Note, error) {
	ctx, cancel := s.writeCtx()
	defer cancel()

	var saved domain.Note
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRow(
			fmt.Sprintf(`INSERT INTO user_notes(user_id, book_id, page_number, note_text)
				VALUES($1, $2, $3, $4) RETURNING %s`, noteColumns),
			note.UserId, note.BookId, note.PageNumber, note.NoteText)
		var err error
		saved, err = scanNote(row)
		return err
	})
	if err != nil {
		return domain.Note{}, fmt.Errorf("failed to insert note: %w", err)
	}
	return saved, nil
}

// UpdateNote rewrites the note text. Ownership is enforced in the WHERE
// clause so a user can never touch another user's note.
func (s *Storage) UpdateNote(noteId domain.NoteId, userId domain.UserId, text string) (domain.Note, error) {
	ctx, cancel := s.writeCtx()
	defer cancel()

	var updated domain.Note
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRow(
			fmt.Sprintf(`UPDATE user_notes SET note_text = $3, updated_at = NOW()
				WHERE id = $1 AND user_id = $2 RETURNING %s`, noteColumns),
			noteId, userId, text)
		var err error
		updated, err = scanNote(row)
		if errors.Is(err, sql.ErrNoRows) {
			return &internal_errors.ErrorWithStatusCode{Message: "Note not found", StatusCode: http.StatusNotFound}
		}
		return err
	})
	if err != nil {
		return domain.Note{}, err
	}
	return updated, nil
}

func (s *Storage) DeleteNote(noteId domain.NoteId, userId domain.UserId) error {
	ctx, cancel := s.writeCtx()
	defer cancel()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.Exec("DELETE FROM user_notes WHERE id = $1 AND user_id = $2", noteId, userId)
		if err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return &internal_errors.ErrorWithStatusCode{Message: "Note not found", StatusCode: http.StatusNotFound}
		}
		return nil
	})
}

func scanNote(row rowScanner) (domain.Note, error) {
	var note domain.Note
	var pageNumber sql.NullInt64
	var updatedAt sql.NullTime
	err := row.Scan(&note.Id, &note.UserId, &note.BookId, &pageNumber, &note.NoteText, &note.CreatedAt, &updatedAt)
	if err != nil {
		return domain.Note{}, err
	}
	if pageNumber.Valid {
		pn := int(pageNumber.Int64)
		note.PageNumber = &pn
	}
	if updatedAt.Valid {
		note.UpdatedAt = &updatedAt.Time
	}
	return note, nil
}
