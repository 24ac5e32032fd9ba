package handler

import (
	"net/http"
	"time"

	"github.com/easeops/elibrary/internal/domain"
	"github.com/easeops/elibrary/internal/middleware"
	"github.com/easeops/elibrary/internal/utils"
)

type noteResponse struct {
	Id         domain.NoteId `json:"id"`
	UserId     domain.UserId `json:"user_id"`
	BookId     domain.BookId `json:"book_id"`
	PageNumber *int          `json:"page_number,omitempty"`
	NoteText   string        `json:"note_text"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  *time.Time    `json:"updated_at,omitempty"`
}

func toNoteResponse(note domain.Note) noteResponse {
	return noteResponse{
		Id:         note.Id,
		UserId:     note.UserId,
		BookId:     note.BookId,
		PageNumber: note.PageNumber,
		NoteText:   note.NoteText,
		CreatedAt:  note.CreatedAt,
		UpdatedAt:  note.UpdatedAt,
	}
}

func (h *Handler) GetBookmarks(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	books, err := h.bookmark.Bookmarks(user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toBookResponses(books))
}

func (h *Handler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	bookId, err := idParam(r, "book_id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.bookmark.Add(user.Id, bookId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, map[string]string{"message": "Book bookmarked"})
}

func (h *Handler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	bookId, err := idParam(r, "book_id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.bookmark.Remove(user.Id, bookId); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeMessage(w, "Bookmark removed")
}

type createNoteRequest struct {
	BookId     domain.BookId `json:"book_id" validate:"required"`
	PageNumber *int          `json:"page_number"`
	NoteText   string        `json:"note_text" validate:"required"`
}

type updateNoteRequest struct {
	NoteText string `json:"note_text" validate:"required"`
}

func (h *Handler) GetNotes(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var bookId *domain.BookId
	if raw := r.URL.Query().Get("book_id"); raw != "" {
		id := int64(queryInt(r, "book_id", 0))
		bookId = &id
	}

	notes, err := h.bookmark.Notes(user.Id, bookId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	out := make([]noteResponse, 0, len(notes))
	for _, note := range notes {
		out = append(out, toNoteResponse(note))
	}
	writeJSON(w, out)
}

func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	var req createNoteRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	note, err := h.bookmark.CreateNote(domain.Note{
		UserId:     user.Id,
		BookId:     req.BookId,
		PageNumber: req.PageNumber,
		NoteText:   req.NoteText,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, toNoteResponse(note))
}

func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	noteId, err := idParam(r, "note_id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var req updateNoteRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	note, err := h.bookmark.UpdateNote(noteId, user.Id, req.NoteText)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toNoteResponse(note))
}

func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r)

	noteId, err := idParam(r, "note_id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.bookmark.DeleteNote(noteId, user.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeMessage(w, "Note deleted")
}
