package repositories

import (
	"errors"
	"fmt"

	"bookshelf/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	db *gorm.DB
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{
		db: db,
	}
}

// Create creates a new review. A second review by the same user for the
// same book violates the (book, user) unique index and is reported as
// ErrDuplicate.
func (r *GORMReviewRepository) Create(review *models.Review) error {
	if review.ID == "" {
		review.ID = uuid.New().String()
	}
	if err := r.db.Create(review).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

// GetByID retrieves a review with its reviewer and book preloaded.
func (r *GORMReviewRepository) GetByID(id string) (*models.Review, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var review models.Review
	if err := r.db.Preload("User").Preload("Book").First(&review, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review by ID %s: %w", id, err)
	}
	return &review, nil
}

// GetByBookAndUser retrieves the review a user left on a book, if any.
func (r *GORMReviewRepository) GetByBookAndUser(bookID, userID string) (*models.Review, error) {
	var review models.Review
	if err := r.db.First(&review, "book_id = ? AND user_id = ?", bookID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review for book %s by user %s: %w", bookID, userID, err)
	}
	return &review, nil
}

// ListByBook returns one page of a book's reviews sorted newest first, with
// reviewers preloaded, plus the total review count for the book.
func (r *GORMReviewRepository) ListByBook(bookID string, page, limit int) ([]models.Review, int64, error) {
	tx := r.db.Model(&models.Review{}).Where("book_id = ?", bookID)

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []models.Review
	err := tx.Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews for book %s: %w", bookID, err)
	}
	return reviews, total, nil
}

// AverageRating computes the mean rating over all of a book's reviews,
// 0 when the book has none.
func (r *GORMReviewRepository) AverageRating(bookID string) (float64, error) {
	var avg float64
	err := r.db.Model(&models.Review{}).
		Where("book_id = ?", bookID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute average rating for book %s: %w", bookID, err)
	}
	return avg, nil
}

// Update persists the review's current field values.
func (r *GORMReviewRepository) Update(review *models.Review) error {
	res := r.db.Model(&models.Review{}).
		Where("id = ?", review.ID).
		Updates(map[string]interface{}{
			"rating":     review.Rating,
			"comment":    review.Comment,
			"updated_at": review.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a review by its ID.
func (r *GORMReviewRepository) Delete(id string) error {
	res := r.db.Delete(&models.Review{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete review: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
