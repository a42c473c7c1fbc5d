package repositories

import (
	"errors"
	"fmt"
	"strings"

	"bookshelf/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMBookRepository is a GORM implementation of BookRepository.
type GORMBookRepository struct {
	db *gorm.DB
}

// NewGORMBookRepository creates a new instance of GORMBookRepository.
func NewGORMBookRepository(db *gorm.DB) *GORMBookRepository {
	return &GORMBookRepository{
		db: db,
	}
}

// Create creates a new book in the database. A colliding ISBN is reported
// as ErrDuplicate.
func (r *GORMBookRepository) Create(book *models.Book) error {
	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	if err := r.db.Create(book).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create book: %w", err)
	}
	return nil
}

// GetByID retrieves a single book with its owner preloaded. A malformed id
// is reported the same way as a missing record.
func (r *GORMBookRepository) GetByID(id string) (*models.Book, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var book models.Book
	if err := r.db.Preload("AddedBy").First(&book, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get book by ID %s: %w", id, err)
	}
	return &book, nil
}

// List returns one page of books sorted newest first, plus the total count
// of books matching the filters.
func (r *GORMBookRepository) List(filter BookFilter) ([]models.Book, int64, error) {
	tx := r.db.Model(&models.Book{})
	if filter.Author != "" {
		tx = tx.Where("LOWER(author) LIKE ?", "%"+strings.ToLower(filter.Author)+"%")
	}
	if filter.Genre != "" {
		tx = tx.Where("LOWER(genre) LIKE ?", "%"+strings.ToLower(filter.Genre)+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	var books []models.Book
	err := tx.Preload("AddedBy").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&books).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	return books, total, nil
}

// Search returns one page of books whose title or author contains query
// (case-insensitive), sorted alphabetically by title.
func (r *GORMBookRepository) Search(query string, page, limit int) ([]models.Book, int64, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	tx := r.db.Model(&models.Book{}).
		Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", pattern, pattern)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count search results: %w", err)
	}

	var books []models.Book
	err := tx.Preload("AddedBy").
		Order("title ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&books).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search books: %w", err)
	}
	return books, total, nil
}
