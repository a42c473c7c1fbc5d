package repositories

import "bookshelf/internal/models"

// BookFilter holds the optional list filters and pagination window.
// Author and Genre match as case-insensitive substrings and combine with AND.
type BookFilter struct {
	Author string
	Genre  string
	Page   int
	Limit  int
}

// BookRepository defines the interface for book data access.
type BookRepository interface {
	Create(book *models.Book) error
	GetByID(id string) (*models.Book, error)
	List(filter BookFilter) ([]models.Book, int64, error)
	Search(query string, page, limit int) ([]models.Book, int64, error)
}
