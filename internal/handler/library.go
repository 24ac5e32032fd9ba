package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/easeops/elibrary/internal/domain"
	"github.com/easeops/elibrary/internal/utils"
)

type bookResponse struct {
	Id            domain.BookId `json:"id"`
	Title         string        `json:"title"`
	Author        string        `json:"author"`
	Description   string        `json:"description,omitempty"`
	Isbn          string        `json:"isbn,omitempty"`
	Category      string        `json:"category,omitempty"`
	Tags          []string      `json:"tags"`
	CoverImageUrl string        `json:"cover_image_url,omitempty"`
	BookFileUrl   string        `json:"book_file_url,omitempty"`
	FileSize      *int64        `json:"file_size,omitempty"`
	PageCount     *int          `json:"page_count,omitempty"`
	Language      string        `json:"language,omitempty"`
	PublishedDate *time.Time    `json:"published_date,omitempty"`
	IsAvailable   bool          `json:"is_available"`
	CreatedAt     time.Time     `json:"created_at"`
}

func toBookResponse(book domain.Book) bookResponse {
	tags := book.Tags
	if tags == nil {
		tags = []string{}
	}
	return bookResponse{
		Id:            book.Id,
		Title:         book.Title,
		Author:        book.Author,
		Description:   book.Description,
		Isbn:          book.Isbn,
		Category:      book.Category,
		Tags:          tags,
		CoverImageUrl: book.CoverImageUrl,
		BookFileUrl:   book.BookFileUrl,
		FileSize:      book.FileSize,
		PageCount:     book.PageCount,
		Language:      book.Language,
		PublishedDate: book.PublishedDate,
		IsAvailable:   book.IsAvailable,
		CreatedAt:     book.CreatedAt,
	}
}

func toBookResponses(books []domain.Book) []bookResponse {
	out := make([]bookResponse, 0, len(books))
	for _, book := range books {
		out = append(out, toBookResponse(book))
	}
	return out
}

func (h *Handler) GetBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.BookFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
		Skip:     queryInt(r, "skip", 0),
		Limit:    queryInt(r, "limit", 0),
	}
	if rawTags := q.Get("tags"); rawTags != "" {
		for _, tag := range strings.Split(rawTags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}

	books, err := h.library.Books(filter)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toBookResponses(books))
}

func (h *Handler) GetBook(w http.ResponseWriter, r *http.Request) {
	bookId, err := idParam(r, "book_id")
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	book, err := h.library.Book(bookId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toBookResponse(book))
}

func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.library.Categories()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, map[string][]string{"categories": categories})
}

func (h *Handler) GetTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.library.Tags()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, map[string][]string{"tags": tags})
}

func (h *Handler) GetFeaturedBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.library.Featured(queryInt(r, "limit", 0))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toBookResponses(books))
}

func (h *Handler) GetPopularBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.library.Popular(queryInt(r, "limit", 0))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, toBookResponses(books))
}
