package repositories

import "bookshelf/internal/models"

// ReviewRepository defines the interface for review data access.
type ReviewRepository interface {
	Create(review *models.Review) error
	GetByID(id string) (*models.Review, error)
	GetByBookAndUser(bookID, userID string) (*models.Review, error)
	ListByBook(bookID string, page, limit int) ([]models.Review, int64, error)
	AverageRating(bookID string) (float64, error)
	Update(review *models.Review) error
	Delete(id string) error
}
