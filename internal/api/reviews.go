// internal/api/reviews.go
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rcanovic/restaurant-reviews/internal/datastore"
	"github.com/rcanovic/restaurant-reviews/internal/errors"
)

// initReviewRoutes registers all review-related API endpoints
func (c *Controller) initReviewRoutes() {
	c.Group.GET("/reviews/user/:user", c.GetReviewsByUser)
	c.Group.GET("/reviews/:id", c.GetReview)
	c.Group.POST("/reviews", c.AddReview)
	c.Group.DELETE("/reviews/:id", c.DeleteReview)
}

// AddReviewRequest is the payload for posting a review
type AddReviewRequest struct {
	ReviewerID   uint   `json:"reviewerId"`
	RestaurantID uint   `json:"restaurantId"`
	AddressID    uint   `json:"addressId"`
	ReviewText   string `json:"reviewText"`
	Rating       string `json:"rating"` // free text, malformed values default to 0
}

// AddReviewResponse reports the rows the two-phase review write produced
type AddReviewResponse struct {
	Status     string `json:"status"`
	ReviewID   uint   `json:"reviewId"`
	LocationID uint   `json:"locationId,omitempty"`
}

// GetReviewsByUser handles GET /reviews/user/:user. The match is trimmed and
// case-insensitive; no matches yields an empty list.
func (c *Controller) GetReviewsByUser(ctx echo.Context) error {
	user := ctx.Param("user")
	if strings.TrimSpace(user) == "" {
		return c.HandleError(ctx, nil, "A value is required for user", http.StatusBadRequest)
	}

	rows, err := c.DS.GetAllRestaurantReviewsByUser(user)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get reviews by user", http.StatusInternalServerError)
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Listed reviews by user",
		"user", user, "count", len(rows))
	return ctx.JSON(http.StatusOK, rows)
}

// GetReview handles GET /reviews/:id, a direct lookup that returns the row
// regardless of its soft-delete flag.
func (c *Controller) GetReview(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid review ID", http.StatusBadRequest)
	}

	review, err := c.DS.GetReview(uint(id))
	if err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "Review not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to get review", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, review)
}

// AddReview handles POST /reviews. Referential existence is validated here,
// not in the datastore: the reviewer and restaurant must exist and the
// address must belong to that restaurant.
func (c *Controller) AddReview(ctx echo.Context) error {
	var req AddReviewRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	if req.ReviewerID == 0 {
		return c.HandleError(ctx, nil, "A value is required for reviewerId", http.StatusBadRequest)
	}
	if req.RestaurantID == 0 {
		return c.HandleError(ctx, nil, "A value is required for restaurantId", http.StatusBadRequest)
	}
	if req.AddressID == 0 {
		return c.HandleError(ctx, nil, "A value is required for addressId", http.StatusBadRequest)
	}

	reviewerExists, err := c.DS.ReviewerExists(req.ReviewerID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to check reviewer", http.StatusInternalServerError)
	}
	if !reviewerExists {
		return c.HandleError(ctx, nil, "Selected reviewer was not found", http.StatusBadRequest)
	}

	restaurantExists, err := c.DS.RestaurantExists(req.RestaurantID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to check restaurant", http.StatusInternalServerError)
	}
	if !restaurantExists {
		return c.HandleError(ctx, nil, "Restaurant was not found", http.StatusNotFound)
	}

	belongs, err := c.DS.AddressBelongsToRestaurant(req.AddressID, req.RestaurantID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to check address", http.StatusInternalServerError)
	}
	if !belongs {
		return c.HandleError(ctx, nil, "Address was not found for this restaurant", http.StatusBadRequest)
	}

	result, err := c.DS.AddReview(req.ReviewerID, req.RestaurantID, req.AddressID, req.ReviewText, req.Rating)
	if err != nil {
		// A partial result means the review row exists without its location
		// link; surface the state so callers can observe it.
		if result.Status == datastore.AddReviewPartial {
			c.invalidateProjections()
			c.logAPIRequest(ctx, slog.LevelError, "Review created without location link",
				"review_id", result.ReviewID, "address_id", req.AddressID)
		}
		return c.HandleError(ctx, err, "Failed to add review", http.StatusInternalServerError)
	}

	c.invalidateProjections()
	c.logAPIRequest(ctx, slog.LevelInfo, "Review added",
		"review_id", result.ReviewID, "restaurant_id", req.RestaurantID)
	return ctx.JSON(http.StatusCreated, AddReviewResponse{
		Status:     string(result.Status),
		ReviewID:   result.ReviewID,
		LocationID: result.LocationID,
	})
}

// DeleteReview handles DELETE /reviews/:id, soft deleting the review.
func (c *Controller) DeleteReview(ctx echo.Context) error {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid review ID", http.StatusBadRequest)
	}

	if err := c.DS.DeleteReview(uint(id)); err != nil {
		if errors.IsNotFound(err) {
			return c.HandleError(ctx, err, "Selected review was not found", http.StatusNotFound)
		}
		return c.HandleError(ctx, err, "Failed to delete review", http.StatusInternalServerError)
	}

	c.invalidateProjections()
	c.logAPIRequest(ctx, slog.LevelInfo, "Review deleted", "review_id", id)
	return ctx.NoContent(http.StatusAccepted)
}
