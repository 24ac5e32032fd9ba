package pg

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/easeops/elibrary/internal/domain"
	internal_errors "github.com/easeops/elibrary/internal/errors"
	"github.com/easeops/elibrary/internal/logger"
)

const bookColumns = `id, title, author, description, isbn, category, tags, cover_image_url,
	book_file_url, file_size, page_count, language, published_date, is_available, created_at, updated_at`

// Books lists available catalog entries matching the filter.
// Search is a case-insensitive substring match over title, author and
// description; tag filtering is a substring match against the stored tag
// list, one condition per requested tag.
func (s *Storage) Books(filter domain.BookFilter) ([]domain.Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books WHERE is_available = TRUE", bookColumns)
	var args []any

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (title ILIKE $%d OR author ILIKE $%d OR description ILIKE $%d)", n, n, n)
	}
	for _, tag := range filter.Tags {
		args = append(args, "%"+tag+"%")
		query += fmt.Sprintf(" AND tags ILIKE $%d", len(args))
	}

	args = append(args, filter.Skip, filter.Limit)
	query += fmt.Sprintf(" ORDER BY id OFFSET $%d LIMIT $%d", len(args)-1, len(args))

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

func (s *Storage) Book(id domain.BookId) (domain.Book, error) {
	row := s.db.QueryRow(fmt.Sprintf("SELECT %s FROM books WHERE id = $1", bookColumns), id)
	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Book{}, &internal_errors.ErrorWithStatusCode{Message: "Book not found", StatusCode: http.StatusNotFound}
		}
		return domain.Book{}, fmt.Errorf("failed to query book: %w", err)
	}
	return book, nil
}

func (s *Storage) Categories() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT category FROM books ORDER BY category")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Tags collects the union of all tag lists in the catalog.
func (s *Storage) Tags() ([]string, error) {
	rows, err := s.db.Query("SELECT tags FROM books WHERE tags IS NOT NULL AND tags <> ''")
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var tags []string
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		for _, tag := range parseTags(raw) {
			if _, ok := seen[tag]; !ok {
				seen[tag] = struct{}{}
				tags = append(tags, tag)
			}
		}
	}
	return tags, rows.Err()
}

// FeaturedBooks returns the newest available titles.
func (s *Storage) FeaturedBooks(limit int) ([]domain.Book, error) {
	rows, err := s.db.Query(
		fmt.Sprintf("SELECT %s FROM books WHERE is_available = TRUE ORDER BY created_at DESC LIMIT $1", bookColumns), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query featured books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

// PopularBooks returns the most bookmarked available titles.
func (s *Storage) PopularBooks(limit int) ([]domain.Book, error) {
	rows, err := s.db.Query(
		fmt.Sprintf(`SELECT %s FROM books b
			WHERE b.is_available = TRUE
			ORDER BY (SELECT COUNT(*) FROM user_bookmarks ub WHERE ub.book_id = b.id) DESC, b.id
			LIMIT $1`, prefixedBookColumns("b")), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query popular books: %w", err)
	}
	defer rows.Close()

	return scanBooks(rows)
}

func prefixedBookColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.title, %[1]s.author, %[1]s.description, %[1]s.isbn, %[1]s.category,
		%[1]s.tags, %[1]s.cover_image_url, %[1]s.book_file_url, %[1]s.file_size, %[1]s.page_count,
		%[1]s.language, %[1]s.published_date, %[1]s.is_available, %[1]s.created_at, %[1]s.updated_at`, alias)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (domain.Book, error) {
	var book domain.Book
	var description, isbn, tags, coverUrl, fileUrl, language sql.NullString
	var fileSize sql.NullInt64
	var pageCount sql.NullInt64
	var publishedDate, updatedAt sql.NullTime

	err := row.Scan(&book.Id, &book.Title, &book.Author, &description, &isbn, &book.Category,
		&tags, &coverUrl, &fileUrl, &fileSize, &pageCount, &language, &publishedDate,
		&book.IsAvailable, &book.CreatedAt, &updatedAt)
	if err != nil {
		return domain.Book{}, err
	}

	book.Description = description.String
	book.Isbn = isbn.String
	book.Tags = parseTags(tags.String)
	book.CoverImageUrl = coverUrl.String
	book.BookFileUrl = fileUrl.String
	book.Language = language.String
	if fileSize.Valid {
		book.FileSize = &fileSize.Int64
	}
	if pageCount.Valid {
		pc := int(pageCount.Int64)
		book.PageCount = &pc
	}
	if publishedDate.Valid {
		book.PublishedDate = &publishedDate.Time
	}
	if updatedAt.Valid {
		book.UpdatedAt = &updatedAt.Time
	}
	return book, nil
}

func scanBooks(rows *sql.Rows) ([]domain.Book, error) {
	var books []domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	return books, rows.Err()
}

// parseTags decodes the stored JSON tag list. Rows written before tags
// were normalized may hold garbage; those degrade to no tags.
func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		logger.Log.Warn("unparseable tags value", "raw", raw, "error", err)
		return nil
	}
	return tags
}

// EncodeTags is the inverse of the tag parsing used on reads.
func EncodeTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return ""
	}
	return string(raw)
}
