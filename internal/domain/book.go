package domain

import "time"

type BookId = int64

type Book struct {
	Id            BookId
	Title         string
	Author        string
	Description   string
	Isbn          string
	Category      string
	Tags          []string
	CoverImageUrl string
	BookFileUrl   string
	FileSize      *int64
	PageCount     *int
	Language      string
	PublishedDate *time.Time
	IsAvailable   bool
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

// BookFilter describes the catalog listing query.
// Search matches title, author and description case-insensitively.
type BookFilter struct {
	Category string
	Search   string
	Tags     []string
	Skip     int
	Limit    int
}
