package handlers

import (
	"errors"
	"log"
	"time"

	"bookshelf/internal/models"
	"bookshelf/internal/repositories"
	"bookshelf/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// BookHandler handles HTTP requests for books.
type BookHandler struct {
	service  *services.BookService
	validate *validator.Validate
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(service *services.BookService) *BookHandler {
	return &BookHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the book routes with the Fiber app. Reads are
// public; creation requires a bearer token.
func (h *BookHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	books := router.Group("/books")
	books.Post("/", authRequired, h.HandleAddBook)
	books.Get("/", h.HandleListBooks)
	// "/search" must be registered before "/:id" so it is not captured
	// as a book id.
	books.Get("/search", h.HandleSearchBooks)
	books.Get("/:id", h.HandleGetBookByID)
}

// AddBookRequest represents the request body for adding a book.
type AddBookRequest struct {
	Title           string `json:"title" validate:"required"`
	Author          string `json:"author" validate:"required"`
	Genre           string `json:"genre" validate:"required"`
	ISBN            string `json:"isbn" validate:"required"`
	PublicationYear int    `json:"publicationYear" validate:"required"`
}

// ownerRef is the subset of user fields expanded into book responses.
// Which fields are populated varies per endpoint.
type ownerRef struct {
	ID        string     `json:"id,omitempty"`
	Username  string     `json:"username"`
	Email     string     `json:"email,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// bookResponse is the JSON shape of a book in API responses.
type bookResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Genre           string    `json:"genre"`
	ISBN            string    `json:"isbn"`
	PublicationYear int       `json:"publicationYear"`
	AddedBy         *ownerRef `json:"addedBy,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

func ownerFull(u *models.User) *ownerRef {
	if u == nil {
		return nil
	}
	createdAt := u.CreatedAt
	return &ownerRef{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: &createdAt}
}

func ownerContact(u *models.User) *ownerRef {
	if u == nil {
		return nil
	}
	return &ownerRef{Username: u.Username, Email: u.Email}
}

func ownerName(u *models.User) *ownerRef {
	if u == nil {
		return nil
	}
	return &ownerRef{Username: u.Username}
}

func newBookResponse(b models.Book, owner *ownerRef) bookResponse {
	return bookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Genre:           b.Genre,
		ISBN:            b.ISBN,
		PublicationYear: b.PublicationYear,
		AddedBy:         owner,
		CreatedAt:       b.CreatedAt,
	}
}

// HandleAddBook adds a new catalog entry owned by the caller.
func (h *BookHandler) HandleAddBook(c *fiber.Ctx) error {
	var req AddBookRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-book request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrorMap(err),
		})
	}

	book := &models.Book{
		Title:           req.Title,
		Author:          req.Author,
		Genre:           req.Genre,
		ISBN:            req.ISBN,
		PublicationYear: req.PublicationYear,
		AddedByID:       currentUserID(c),
	}
	created, err := h.service.AddBook(book)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateISBN) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Book with this ISBN already exists.",
			})
		}
		log.Printf("Error adding book: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(newBookResponse(*created, ownerFull(created.AddedBy)))
}

// HandleListBooks returns one page of books, optionally filtered by author
// and genre (case-insensitive substring match, combined with AND), sorted
// newest first.
func (h *BookHandler) HandleListBooks(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 10)
	if limit < 1 {
		limit = 10
	}

	filter := repositories.BookFilter{
		Author: c.Query("author"),
		Genre:  c.Query("genre"),
		Page:   page,
		Limit:  limit,
	}
	books, total, err := h.service.ListBooks(filter)
	if err != nil {
		log.Printf("Error listing books: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	items := make([]bookResponse, 0, len(books))
	for _, b := range books {
		items = append(items, newBookResponse(b, ownerContact(b.AddedBy)))
	}

	return c.JSON(fiber.Map{
		"currentPage": page,
		"totalPages":  totalPages(total, limit),
		"totalBooks":  total,
		"books":       items,
	})
}

// HandleSearchBooks matches the query against title or author. A page with
// zero matches is reported as 404, not an empty list.
func (h *BookHandler) HandleSearchBooks(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Search query is required",
		})
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 10)
	if limit < 1 {
		limit = 10
	}

	books, total, err := h.service.SearchBooks(query, page, limit)
	if err != nil {
		log.Printf("Error searching books with query %q: %v", query, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	if len(books) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "No books found matching your query.",
		})
	}

	items := make([]bookResponse, 0, len(books))
	for _, b := range books {
		items = append(items, newBookResponse(b, ownerName(b.AddedBy)))
	}

	return c.JSON(fiber.Map{
		"currentPage": page,
		"totalPages":  totalPages(total, limit),
		"totalBooks":  total,
		"books":       items,
	})
}

// HandleGetBookByID returns a book together with its average rating and one
// page of its reviews.
func (h *BookHandler) HandleGetBookByID(c *fiber.Ctx) error {
	reviewPage := c.QueryInt("reviewPage", 1)
	if reviewPage < 1 {
		reviewPage = 1
	}
	reviewLimit := c.QueryInt("reviewLimit", 5)
	if reviewLimit < 1 {
		reviewLimit = 5
	}

	detail, err := h.service.GetBookDetail(c.Params("id"), reviewPage, reviewLimit)
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Book not found",
			})
		}
		log.Printf("Error getting book %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	reviewItems := make([]reviewResponse, 0, len(detail.Reviews))
	for _, r := range detail.Reviews {
		reviewItems = append(reviewItems, newReviewResponse(r))
	}

	return c.JSON(fiber.Map{
		"book":          newBookResponse(*detail.Book, ownerContact(detail.Book.AddedBy)),
		"averageRating": detail.AverageRating,
		"reviews": fiber.Map{
			"currentPage":  reviewPage,
			"totalPages":   totalPages(detail.TotalReviews, reviewLimit),
			"totalReviews": detail.TotalReviews,
			"data":         reviewItems,
		},
	})
}
