package service

import (
	"net/http"
	"strings"

	"github.com/easeops/elibrary/internal/domain"
	internal_errors "github.com/easeops/elibrary/internal/errors"
	"github.com/easeops/elibrary/internal/utils"
)

type BookmarkService interface {
	Bookmarks(userId domain.UserId) ([]domain.Book, error)
	Add(userId domain.UserId, bookId domain.BookId) error
	Remove(userId domain.UserId, bookId domain.BookId) error
	Notes(userId domain.UserId, bookId *domain.BookId) ([]domain.Note, error)
	CreateNote(note domain.Note) (domain.Note, error)
	UpdateNote(noteId domain.NoteId, userId domain.UserId, text string) (domain.Note, error)
	DeleteNote(noteId domain.NoteId, userId domain.UserId) error
}

type BookmarkStorage interface {
	Bookmarks(userId domain.UserId) ([]domain.Book, error)
	AddBookmark(userId domain.UserId, bookId domain.BookId) error
	RemoveBookmark(userId domain.UserId, bookId domain.BookId) error
	Book(id domain.BookId) (domain.Book, error)
	Notes(userId domain.UserId, bookId *domain.BookId) ([]domain.Note, error)
	SaveNote(note domain.Note) (domain.Note, error)
	UpdateNote(noteId domain.NoteId, userId domain.UserId, text string) (domain.Note, error)
	DeleteNote(noteId domain.NoteId, userId domain.UserId) error
}

type Bookmark struct {
	storage BookmarkStorage
}

func NewBookmark(storage BookmarkStorage) *Bookmark {
	return &Bookmark{storage: storage}
}

func (b *Bookmark) Bookmarks(userId domain.UserId) ([]domain.Book, error) {
	return b.storage.Bookmarks(userId)
}

func (b *Bookmark) Add(userId domain.UserId, bookId domain.BookId) error {
	// 404 for a missing book, 400 for a duplicate bookmark
	if _, err := b.storage.Book(bookId); err != nil {
		return err
	}
	return b.storage.AddBookmark(userId, bookId)
}

func (b *Bookmark) Remove(userId domain.UserId, bookId domain.BookId) error {
	return b.storage.RemoveBookmark(userId, bookId)
}

func (b *Bookmark) Notes(userId domain.UserId, bookId *domain.BookId) ([]domain.Note, error) {
	return b.storage.Notes(userId, bookId)
}

func (b *Bookmark) CreateNote(note domain.Note) (domain.Note, error) {
	if _, err := b.storage.Book(note.BookId); err != nil {
		return domain.Note{}, err
	}
	note.NoteText = sanitizeNoteText(note.NoteText)
	if note.NoteText == "" {
		return domain.Note{}, &internal_errors.ErrorWithStatusCode{Message: "Note text is empty", StatusCode: http.StatusBadRequest}
	}
	return b.storage.SaveNote(note)
}

func (b *Bookmark) UpdateNote(noteId domain.NoteId, userId domain.UserId, text string) (domain.Note, error) {
	text = sanitizeNoteText(text)
	if text == "" {
		return domain.Note{}, &internal_errors.ErrorWithStatusCode{Message: "Note text is empty", StatusCode: http.StatusBadRequest}
	}
	return b.storage.UpdateNote(noteId, userId, text)
}

func (b *Bookmark) DeleteNote(noteId domain.NoteId, userId domain.UserId) error {
	return b.storage.DeleteNote(noteId, userId)
}

func sanitizeNoteText(text string) string {
	return strings.TrimSpace(utils.SanitizeText(text))
}
