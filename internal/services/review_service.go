package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"bookshelf/internal/models"
	"bookshelf/internal/repositories"
	"bookshelf/pkg/rabbitmq"
)

// Domain errors surfaced by ReviewService.
var (
	ErrReviewNotFound  = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("user already reviewed this book")
	ErrNotReviewOwner  = errors.New("caller is not the review owner")
)

// ReviewService handles business logic related to reviews.
type ReviewService struct {
	reviewRepo repositories.ReviewRepository
	bookRepo   repositories.BookRepository
	mqClient   *rabbitmq.Client
}

// NewReviewService creates a new ReviewService.
func NewReviewService(reviewRepo repositories.ReviewRepository, bookRepo repositories.BookRepository, mqClient *rabbitmq.Client) *ReviewService {
	return &ReviewService{
		reviewRepo: reviewRepo,
		bookRepo:   bookRepo,
		mqClient:   mqClient,
	}
}

// AddReview submits a rating for a book on behalf of userID. The explicit
// duplicate check runs before the insert; the (book, user) unique index is
// the authoritative backstop if two submissions race.
func (s *ReviewService) AddReview(bookID, userID string, rating int, comment string) (*models.Review, error) {
	if _, err := s.bookRepo.GetByID(bookID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to check book %s: %w", bookID, err)
	}

	if _, err := s.reviewRepo.GetByBookAndUser(bookID, userID); err == nil {
		return nil, ErrAlreadyReviewed
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}

	now := time.Now()
	review := &models.Review{
		BookID:    bookID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadyReviewed
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	created, err := s.reviewRepo.GetByID(review.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload created review: %w", err)
	}

	s.publishEvent("review.created", map[string]interface{}{
		"reviewId": created.ID,
		"bookId":   created.BookID,
		"userId":   created.UserID,
		"rating":   created.Rating,
	})

	return created, nil
}

// UpdateReview applies a partial update to the caller's own review. Rating
// and comment change independently only when provided; updatedAt is
// refreshed explicitly on every successful update.
func (s *ReviewService) UpdateReview(reviewID, userID string, rating *int, comment *string) (*models.Review, error) {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review %s: %w", reviewID, err)
	}

	if review.UserID != userID {
		return nil, ErrNotReviewOwner
	}

	if rating != nil {
		review.Rating = *rating
	}
	if comment != nil {
		review.Comment = *comment
	}
	review.UpdatedAt = time.Now()

	if err := s.reviewRepo.Update(review); err != nil {
		return nil, fmt.Errorf("failed to update review %s: %w", reviewID, err)
	}
	return review, nil
}

// DeleteReview removes the caller's own review.
func (s *ReviewService) DeleteReview(reviewID, userID string) error {
	review, err := s.reviewRepo.GetByID(reviewID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get review %s: %w", reviewID, err)
	}

	if review.UserID != userID {
		return ErrNotReviewOwner
	}

	if err := s.reviewRepo.Delete(review.ID); err != nil {
		return fmt.Errorf("failed to delete review %s: %w", reviewID, err)
	}

	s.publishEvent("review.deleted", map[string]interface{}{
		"reviewId": review.ID,
		"bookId":   review.BookID,
		"userId":   review.UserID,
	})

	return nil
}

func (s *ReviewService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.mqClient.Publish(routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
