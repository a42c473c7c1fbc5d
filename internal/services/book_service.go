package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"

	"bookshelf/internal/models"
	"bookshelf/internal/repositories"
	"bookshelf/pkg/rabbitmq"
)

// Domain errors surfaced by BookService.
var (
	ErrBookNotFound  = errors.New("book not found")
	ErrDuplicateISBN = errors.New("book with this isbn already exists")
)

// BookDetail bundles a book with its aggregate rating and one page of its
// reviews.
type BookDetail struct {
	Book          *models.Book
	AverageRating float64
	Reviews       []models.Review
	TotalReviews  int64
}

// BookService handles business logic related to books.
type BookService struct {
	bookRepo   repositories.BookRepository
	reviewRepo repositories.ReviewRepository
	mqClient   *rabbitmq.Client
}

// NewBookService creates a new BookService.
func NewBookService(bookRepo repositories.BookRepository, reviewRepo repositories.ReviewRepository, mqClient *rabbitmq.Client) *BookService {
	return &BookService{
		bookRepo:   bookRepo,
		reviewRepo: reviewRepo,
		mqClient:   mqClient,
	}
}

// AddBook persists a new catalog entry and returns it with the owner
// preloaded. A colliding ISBN is reported as ErrDuplicateISBN.
func (s *BookService) AddBook(book *models.Book) (*models.Book, error) {
	if err := s.bookRepo.Create(book); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrDuplicateISBN
		}
		return nil, fmt.Errorf("failed to add book: %w", err)
	}

	created, err := s.bookRepo.GetByID(book.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload created book: %w", err)
	}

	s.publishEvent("book.created", map[string]interface{}{
		"bookId":  created.ID,
		"title":   created.Title,
		"isbn":    created.ISBN,
		"addedBy": created.AddedByID,
	})

	return created, nil
}

// ListBooks returns one page of books matching the filter plus the total
// matching count.
func (s *BookService) ListBooks(filter repositories.BookFilter) ([]models.Book, int64, error) {
	return s.bookRepo.List(filter)
}

// SearchBooks returns one page of books whose title or author contains the
// query, plus the total matching count.
func (s *BookService) SearchBooks(query string, page, limit int) ([]models.Book, int64, error) {
	return s.bookRepo.Search(query, page, limit)
}

// GetBookDetail fetches a book together with its average rating (mean of
// all ratings, rounded to one decimal, 0 with no reviews) and one page of
// its reviews, newest first.
func (s *BookService) GetBookDetail(id string, reviewPage, reviewLimit int) (*BookDetail, error) {
	book, err := s.bookRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to get book %s: %w", id, err)
	}

	reviews, totalReviews, err := s.reviewRepo.ListByBook(book.ID, reviewPage, reviewLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews for book %s: %w", id, err)
	}

	avg, err := s.reviewRepo.AverageRating(book.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute rating for book %s: %w", id, err)
	}

	return &BookDetail{
		Book:          book,
		AverageRating: math.Round(avg*10) / 10,
		Reviews:       reviews,
		TotalReviews:  totalReviews,
	}, nil
}

// publishEvent sends a catalog event to the message queue. Publishing is
// best-effort: a nil or failing client only logs a warning.
func (s *BookService) publishEvent(routingKey string, payload map[string]interface{}) {
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
