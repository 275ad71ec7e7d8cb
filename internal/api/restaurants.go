// internal/api/restaurants.go
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rcanovic/restaurant-reviews/internal/datastore"
	"github.com/rcanovic/restaurant-reviews/internal/errors"
)

// initRestaurantRoutes registers all restaurant-related API endpoints
func (c *Controller) initRestaurantRoutes() {
	c.Group.GET("/restaurants", c.GetAllRestaurantsAndReviews)
	c.Group.GET("/restaurants/city/:city", c.GetRestaurantsByCity)
	c.Group.POST("/restaurants", c.AddRestaurant)
}

// AddRestaurantRequest is the payload for creating a restaurant location
type AddRestaurantRequest struct {
	Name       string `json:"name"`
	City       string `json:"city"`
	State      string `json:"state"`
	Address    string `json:"address"`
	PostalCode string `json:"postalCode"`
}

// AddRestaurantResponse reports the restaurant a new location was attached to
type AddRestaurantResponse struct {
	RestaurantID uint `json:"restaurantId"`
}

// GetAllRestaurantsAndReviews handles GET /restaurants, returning every
// restaurant with its locations and reviews. Results are cached briefly and
// invalidated on every write.
func (c *Controller) GetAllRestaurantsAndReviews(ctx echo.Context) error {
	if cached, found := c.projectionCache.Get(cacheKeyAllRestaurants); found {
		if rows, ok := cached.([]datastore.RestaurantReviews); ok {
			return ctx.JSON(http.StatusOK, rows)
		}
	}

	rows, err := c.DS.GetAllRestaurantsAndReviews()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get restaurants", http.StatusInternalServerError)
	}

	c.projectionCache.SetDefault(cacheKeyAllRestaurants, rows)
	c.logAPIRequest(ctx, slog.LevelInfo, "Listed restaurants", "count", len(rows))
	return ctx.JSON(http.StatusOK, rows)
}

// GetRestaurantsByCity handles GET /restaurants/city/:city. The match is
// trimmed and case-insensitive; no matches yields an empty list.
func (c *Controller) GetRestaurantsByCity(ctx echo.Context) error {
	city := ctx.Param("city")
	if strings.TrimSpace(city) == "" {
		return c.HandleError(ctx, nil, "A value is required for city", http.StatusBadRequest)
	}

	rows, err := c.DS.GetAllRestaurantsByCity(city)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get restaurants by city", http.StatusInternalServerError)
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Listed restaurants by city",
		"city", city, "count", len(rows))
	return ctx.JSON(http.StatusOK, rows)
}

// AddRestaurant handles POST /restaurants. The same restaurant name with a
// new location adds an address under the existing restaurant; an exact
// duplicate per the existence check is rejected.
func (c *Controller) AddRestaurant(ctx echo.Context) error {
	var req AddRestaurantRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	for field, value := range map[string]string{
		"name":       req.Name,
		"city":       req.City,
		"state":      req.State,
		"address":    req.Address,
		"postalCode": req.PostalCode,
	} {
		if strings.TrimSpace(value) == "" {
			return c.HandleError(ctx, nil, "A value is required for "+field, http.StatusBadRequest)
		}
	}

	exists, err := c.DS.DoesRestaurantExist(req.Name, req.City, req.State, req.Address, req.PostalCode)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to check restaurant existence", http.StatusInternalServerError)
	}
	if exists {
		conflict := errors.Newf("restaurant %q already listed in %s, %s", req.Name, req.City, req.State).
			Component("api").
			Category(errors.CategoryConflict).
			Build()
		return c.HandleError(ctx, conflict, "Restaurant already exists for this address", http.StatusBadRequest)
	}

	restaurantID, err := c.DS.AddRestaurant(req.Name, req.City, req.State, req.Address, req.PostalCode)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to add restaurant", http.StatusInternalServerError)
	}

	c.invalidateProjections()
	c.logAPIRequest(ctx, slog.LevelInfo, "Restaurant location added",
		"restaurant_id", restaurantID, "city", req.City)
	return ctx.JSON(http.StatusAccepted, AddRestaurantResponse{RestaurantID: restaurantID})
}
