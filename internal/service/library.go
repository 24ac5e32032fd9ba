package service

import (
	"github.com/easeops/elibrary/internal/config"
	"github.com/easeops/elibrary/internal/domain"
)

type LibraryService interface {
	Books(filter domain.BookFilter) ([]domain.Book, error)
	Book(id domain.BookId) (domain.Book, error)
	Categories() ([]string, error)
	Tags() ([]string, error)
	Featured(limit int) ([]domain.Book, error)
	Popular(limit int) ([]domain.Book, error)
}

type LibraryStorage interface {
	Books(filter domain.BookFilter) ([]domain.Book, error)
	Book(id domain.BookId) (domain.Book, error)
	Categories() ([]string, error)
	Tags() ([]string, error)
	FeaturedBooks(limit int) ([]domain.Book, error)
	PopularBooks(limit int) ([]domain.Book, error)
}

const highlightLimitCap = 20

type Library struct {
	storage LibraryStorage
	cfg     *config.Public
}

func NewLibrary(storage LibraryStorage, cfg *config.Public) *Library {
	return &Library{storage: storage, cfg: cfg}
}

// Books clamps pagination to configured bounds before hitting storage.
func (l *Library) Books(filter domain.BookFilter) ([]domain.Book, error) {
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	if filter.Limit <= 0 {
		filter.Limit = l.cfg.DefaultPageSize
	}
	if filter.Limit > l.cfg.MaxPageSize {
		filter.Limit = l.cfg.MaxPageSize
	}
	return l.storage.Books(filter)
}

func (l *Library) Book(id domain.BookId) (domain.Book, error) {
	return l.storage.Book(id)
}

func (l *Library) Categories() ([]string, error) {
	return l.storage.Categories()
}

func (l *Library) Tags() ([]string, error) {
	return l.storage.Tags()
}

func (l *Library) Featured(limit int) ([]domain.Book, error) {
	return l.storage.FeaturedBooks(clampHighlightLimit(limit))
}

func (l *Library) Popular(limit int) ([]domain.Book, error) {
	return l.storage.PopularBooks(clampHighlightLimit(limit))
}

func clampHighlightLimit(limit int) int {
	if limit <= 0 {
		return 5
	}
	if limit > highlightLimitCap {
		return highlightLimitCap
	}
	return limit
}
