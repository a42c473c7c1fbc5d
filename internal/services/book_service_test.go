package services_test

import (
	"testing"

	"bookshelf/internal/models"
	"bookshelf/internal/repositories"
	"bookshelf/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookRepository is a mock implementation of repositories.BookRepository
type MockBookRepository struct {
	mock.Mock
}

func (m *MockBookRepository) Create(book *models.Book) error {
	args := m.Called(book)
	return args.Error(0)
}

func (m *MockBookRepository) GetByID(id string) (*models.Book, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Book), args.Error(1)
}

func (m *MockBookRepository) List(filter repositories.BookFilter) ([]models.Book, int64, error) {
	args := m.Called(filter)
	return args.Get(0).([]models.Book), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookRepository) Search(query string, page, limit int) ([]models.Book, int64, error) {
	args := m.Called(query, page, limit)
	return args.Get(0).([]models.Book), args.Get(1).(int64), args.Error(2)
}

// MockReviewRepository is a mock implementation of repositories.ReviewRepository
type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(review *models.Review) error {
	args := m.Called(review)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(id string) (*models.Review, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) GetByBookAndUser(bookID, userID string) (*models.Review, error) {
	args := m.Called(bookID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) ListByBook(bookID string, page, limit int) ([]models.Review, int64, error) {
	args := m.Called(bookID, page, limit)
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) AverageRating(bookID string) (float64, error) {
	args := m.Called(bookID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockReviewRepository) Update(review *models.Review) error {
	args := m.Called(review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func TestBookService_AddBook(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockReviews := new(MockReviewRepository)
	service := services.NewBookService(mockBooks, mockReviews, nil)

	book := &models.Book{
		ID:              "book-1",
		Title:           "The Go Programming Language",
		Author:          "Donovan",
		Genre:           "Programming",
		ISBN:            "978-0134190440",
		PublicationYear: 2015,
		AddedByID:       "user-1",
	}

	// Successful add reloads the book with its owner expanded.
	created := *book
	created.AddedBy = &models.User{ID: "user-1", Username: "alice", Email: "alice@example.com"}
	mockBooks.On("Create", book).Return(nil).Once()
	mockBooks.On("GetByID", "book-1").Return(&created, nil).Once()

	result, err := service.AddBook(book)
	assert.NoError(t, err)
	assert.Equal(t, "alice", result.AddedBy.Username)
	mockBooks.AssertExpectations(t)

	// A colliding ISBN surfaces as a conflict, not a server failure.
	mockBooks.On("Create", book).Return(repositories.ErrDuplicate).Once()
	_, err = service.AddBook(book)
	assert.ErrorIs(t, err, services.ErrDuplicateISBN)
	mockBooks.AssertExpectations(t)
}

func TestBookService_GetBookDetail(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockReviews := new(MockReviewRepository)
	service := services.NewBookService(mockBooks, mockReviews, nil)

	book := &models.Book{ID: "book-1", Title: "Dune"}

	// Ratings [5,4,3] average to exactly 4.0.
	reviews := []models.Review{
		{ID: "r1", BookID: "book-1", Rating: 5},
		{ID: "r2", BookID: "book-1", Rating: 4},
		{ID: "r3", BookID: "book-1", Rating: 3},
	}
	mockBooks.On("GetByID", "book-1").Return(book, nil).Once()
	mockReviews.On("ListByBook", "book-1", 1, 5).Return(reviews, int64(3), nil).Once()
	mockReviews.On("AverageRating", "book-1").Return(4.0, nil).Once()

	detail, err := service.GetBookDetail("book-1", 1, 5)
	assert.NoError(t, err)
	assert.Equal(t, 4.0, detail.AverageRating)
	assert.Equal(t, int64(3), detail.TotalReviews)
	assert.Len(t, detail.Reviews, 3)
	mockBooks.AssertExpectations(t)
	mockReviews.AssertExpectations(t)

	// The mean is rounded to one decimal place.
	mockBooks.On("GetByID", "book-1").Return(book, nil).Once()
	mockReviews.On("ListByBook", "book-1", 1, 5).Return([]models.Review{}, int64(3), nil).Once()
	mockReviews.On("AverageRating", "book-1").Return(3.6666666, nil).Once()

	detail, err = service.GetBookDetail("book-1", 1, 5)
	assert.NoError(t, err)
	assert.Equal(t, 3.7, detail.AverageRating)

	// Zero reviews yield an average of 0.
	mockBooks.On("GetByID", "book-1").Return(book, nil).Once()
	mockReviews.On("ListByBook", "book-1", 1, 5).Return([]models.Review{}, int64(0), nil).Once()
	mockReviews.On("AverageRating", "book-1").Return(0.0, nil).Once()

	detail, err = service.GetBookDetail("book-1", 1, 5)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, detail.AverageRating)

	// Unknown id.
	mockBooks.On("GetByID", "missing").Return(nil, repositories.ErrNotFound).Once()
	_, err = service.GetBookDetail("missing", 1, 5)
	assert.ErrorIs(t, err, services.ErrBookNotFound)
	mockBooks.AssertExpectations(t)
}

func TestBookService_ListBooks(t *testing.T) {
	mockBooks := new(MockBookRepository)
	mockReviews := new(MockReviewRepository)
	service := services.NewBookService(mockBooks, mockReviews, nil)

	filter := repositories.BookFilter{Author: "tolkien", Page: 2, Limit: 10}
	expected := []models.Book{{ID: "b1"}, {ID: "b2"}}
	mockBooks.On("List", filter).Return(expected, int64(15), nil).Once()

	books, total, err := service.ListBooks(filter)
	assert.NoError(t, err)
	assert.Equal(t, expected, books)
	assert.Equal(t, int64(15), total)
	mockBooks.AssertExpectations(t)
}
