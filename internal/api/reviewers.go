// internal/api/reviewers.go
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rcanovic/restaurant-reviews/internal/errors"
)

// initReviewerRoutes registers all reviewer-related API endpoints
func (c *Controller) initReviewerRoutes() {
	c.Group.POST("/reviewers", c.AddReviewer)
}

// AddReviewerRequest is the payload for registering a reviewer
type AddReviewerRequest struct {
	UserName  string `json:"userName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// AddReviewerResponse reports the assigned reviewer id
type AddReviewerResponse struct {
	ReviewerID uint `json:"reviewerId"`
}

// AddReviewer handles POST /reviewers. The username must not already be in
// use by a non-deleted reviewer; the check is trimmed and case-insensitive.
func (c *Controller) AddReviewer(ctx echo.Context) error {
	var req AddReviewerRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	if strings.TrimSpace(req.UserName) == "" {
		return c.HandleError(ctx, nil, "A value is required for userName", http.StatusBadRequest)
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return c.HandleError(ctx, nil, "A value is required for firstName", http.StatusBadRequest)
	}
	if strings.TrimSpace(req.LastName) == "" {
		return c.HandleError(ctx, nil, "A value is required for lastName", http.StatusBadRequest)
	}

	taken, err := c.DS.ReviewerUserNameExists(req.UserName)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to check username", http.StatusInternalServerError)
	}
	if taken {
		conflict := errors.Newf("username %q already in use", req.UserName).
			Component("api").
			Category(errors.CategoryConflict).
			Build()
		return c.HandleError(ctx, conflict, "Username already exists", http.StatusBadRequest)
	}

	reviewerID, err := c.DS.AddReviewer(req.UserName, req.FirstName, req.LastName)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to add reviewer", http.StatusInternalServerError)
	}

	c.invalidateProjections()
	c.logAPIRequest(ctx, slog.LevelInfo, "Reviewer added",
		"reviewer_id", reviewerID, "user_name", req.UserName)
	return ctx.JSON(http.StatusAccepted, AddReviewerResponse{ReviewerID: reviewerID})
}
