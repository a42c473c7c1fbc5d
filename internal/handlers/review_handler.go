package handlers

import (
	"errors"
	"log"
	"time"

	"bookshelf/internal/models"
	"bookshelf/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ReviewHandler handles HTTP requests for reviews.
type ReviewHandler struct {
	service  *services.ReviewService
	validate *validator.Validate
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(service *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the review routes with the Fiber app. All review
// mutations require a bearer token.
func (h *ReviewHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Post("/books/:bookId/reviews", authRequired, h.HandleAddReview)

	reviews := router.Group("/reviews", authRequired)
	reviews.Put("/:id", h.HandleUpdateReview)
	reviews.Delete("/:id", h.HandleDeleteReview)
}

// AddReviewRequest represents the request body for submitting a review.
type AddReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment"`
}

// UpdateReviewRequest represents the request body for updating a review.
// Both fields are optional; omitted fields retain their prior value.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
	Comment *string `json:"comment"`
}

type reviewerRef struct {
	Username string `json:"username"`
}

type bookRef struct {
	Title string `json:"title"`
}

// reviewResponse is the JSON shape of a review in API responses. BookID is
// used when the book is referenced by id; Book when it is expanded.
type reviewResponse struct {
	ID        string       `json:"id"`
	BookID    string       `json:"bookId,omitempty"`
	Book      *bookRef     `json:"book,omitempty"`
	Rating    int          `json:"rating"`
	Comment   string       `json:"comment,omitempty"`
	User      *reviewerRef `json:"user,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

func newReviewResponse(r models.Review) reviewResponse {
	resp := reviewResponse{
		ID:        r.ID,
		BookID:    r.BookID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.User != nil {
		resp.User = &reviewerRef{Username: r.User.Username}
	}
	return resp
}

// HandleAddReview submits the caller's review for a book.
func (h *ReviewHandler) HandleAddReview(c *fiber.Ctx) error {
	var req AddReviewRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing add-review request body: %v", err)
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

	review, err := h.service.AddReview(c.Params("bookId"), currentUserID(c), req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, services.ErrBookNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Book not found",
			})
		}
		if errors.Is(err, services.ErrAlreadyReviewed) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "You have already reviewed this book",
			})
		}
		log.Printf("Error adding review for book %s: %v", c.Params("bookId"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(newReviewResponse(*review))
}

// HandleUpdateReview applies a partial update to the caller's own review.
func (h *ReviewHandler) HandleUpdateReview(c *fiber.Ctx) error {
	var req UpdateReviewRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update-review request body: %v", err)
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

	review, err := h.service.UpdateReview(c.Params("id"), currentUserID(c), req.Rating, req.Comment)
	if err != nil {
		if errors.Is(err, services.ErrReviewNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Review not found",
			})
		}
		if errors.Is(err, services.ErrNotReviewOwner) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "User not authorized to update this review",
			})
		}
		log.Printf("Error updating review %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	resp := newReviewResponse(*review)
	resp.BookID = ""
	if review.Book != nil {
		resp.Book = &bookRef{Title: review.Book.Title}
	}
	return c.JSON(resp)
}

// HandleDeleteReview removes the caller's own review.
func (h *ReviewHandler) HandleDeleteReview(c *fiber.Ctx) error {
	err := h.service.DeleteReview(c.Params("id"), currentUserID(c))
	if err != nil {
		if errors.Is(err, services.ErrReviewNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Review not found",
			})
		}
		if errors.Is(err, services.ErrNotReviewOwner) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "User not authorized to delete this review",
			})
		}
		log.Printf("Error deleting review %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Review removed successfully",
	})
}
