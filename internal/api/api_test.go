// internal/api/api_test.go
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/rcanovic/restaurant-reviews/internal/conf"
	"github.com/rcanovic/restaurant-reviews/internal/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// go-cache runs a background janitor that is only stopped by its finalizer
		goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	)
}

// setupTestAPI creates a controller backed by a temporary SQLite database
func setupTestAPI(t *testing.T) *Controller {
	t.Helper()

	// The controller opens a relative log file path, keep it in a temp dir.
	// Equivalent of t.Chdir (Go 1.24+), usable on older toolchains.
	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		assert.NoError(t, os.Chdir(origDir))
	})

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = t.TempDir() + "/test.db"

	ds := datastore.New(settings)
	require.NotNil(t, ds)
	require.NoError(t, ds.Open(), "Failed to open database")
	t.Cleanup(func() {
		assert.NoError(t, ds.Close(), "Failed to close datastore")
	})

	controller, err := New(settings, ds)
	require.NoError(t, err)
	return controller
}

// perform runs a request against the controller's echo instance
func perform(t *testing.T, c *Controller, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(payload))
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals a recorded JSON response body
func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// seedViaAPI creates a restaurant, reviewer, and discovers the address id
// through the list-all projection.
func seedViaAPI(t *testing.T, c *Controller) (restaurantID, addressID, reviewerID uint) {
	t.Helper()

	rec := perform(t, c, http.MethodPost, "/api/v1/restaurants", AddRestaurantRequest{
		Name: "Cafe X", City: "NYC", State: "NY", Address: "1 Main St", PostalCode: "10001",
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	restaurantID = decode[AddRestaurantResponse](t, rec).RestaurantID

	rec = perform(t, c, http.MethodPost, "/api/v1/reviewers", AddReviewerRequest{
		UserName: "tester", FirstName: "Test", LastName: "User",
	})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	reviewerID = decode[AddReviewerResponse](t, rec).ReviewerID

	rec = perform(t, c, http.MethodGet, "/api/v1/restaurants", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	restaurants := decode[[]datastore.RestaurantReviews](t, rec)
	require.Len(t, restaurants, 1)
	require.Len(t, restaurants[0].Cities, 1)
	addressID = restaurants[0].Cities[0].AddressID

	return restaurantID, addressID, reviewerID
}

func TestHealth(t *testing.T) {
	c := setupTestAPI(t)

	rec := perform(t, c, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAddReviewerValidationAndDuplicates(t *testing.T) {
	c := setupTestAPI(t)

	rec := perform(t, c, http.MethodPost, "/api/v1/reviewers", AddReviewerRequest{
		UserName: "", FirstName: "Test", LastName: "User",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = perform(t, c, http.MethodPost, "/api/v1/reviewers", AddReviewerRequest{
		UserName: "dup", FirstName: "Test", LastName: "User",
	})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	// Same username with different casing and padding is still a duplicate.
	rec = perform(t, c, http.MethodPost, "/api/v1/reviewers", AddReviewerRequest{
		UserName: "  DUP ", FirstName: "Other", LastName: "User",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[ErrorResponse](t, rec)
	assert.Equal(t, "Username already exists", resp.Message)
	assert.NotEmpty(t, resp.CorrelationID)
}

func TestAddRestaurantFlow(t *testing.T) {
	c := setupTestAPI(t)

	rec := perform(t, c, http.MethodPost, "/api/v1/restaurants", AddRestaurantRequest{
		Name: "Cafe X", City: "NYC", State: "NY", Address: "1 Main St", PostalCode: "10001",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	firstID := decode[AddRestaurantResponse](t, rec).RestaurantID

	// Exact duplicate per the existence check is rejected; the street
	// address value does not participate in the match.
	rec = perform(t, c, http.MethodPost, "/api/v1/restaurants", AddRestaurantRequest{
		Name: "Cafe X", City: "NYC", State: "NY", Address: "different street", PostalCode: "10001",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Same name in a new city accrues a second address under the restaurant.
	rec = perform(t, c, http.MethodPost, "/api/v1/restaurants", AddRestaurantRequest{
		Name: "Cafe X", City: "Boston", State: "MA", Address: "2 Side St", PostalCode: "02101",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, firstID, decode[AddRestaurantResponse](t, rec).RestaurantID)

	rec = perform(t, c, http.MethodGet, "/api/v1/restaurants", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	restaurants := decode[[]datastore.RestaurantReviews](t, rec)
	require.Len(t, restaurants, 1)
	assert.Len(t, restaurants[0].Cities, 2)

	rec = perform(t, c, http.MethodPost, "/api/v1/restaurants", AddRestaurantRequest{
		Name: "", City: "NYC", State: "NY", Address: "x", PostalCode: "10001",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddReviewPreconditions(t *testing.T) {
	c := setupTestAPI(t)
	restaurantID, addressID, reviewerID := seedViaAPI(t, c)

	rec := perform(t, c, http.MethodPost, "/api/v1/reviews", AddReviewRequest{
		ReviewerID: 9999, RestaurantID: restaurantID, AddressID: addressID, ReviewText: "x", Rating: "5",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown reviewer")

	rec = perform(t, c, http.MethodPost, "/api/v1/reviews", AddReviewRequest{
		ReviewerID: reviewerID, RestaurantID: 9999, AddressID: addressID, ReviewText: "x", Rating: "5",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code, "unknown restaurant")

	rec = perform(t, c, http.MethodPost, "/api/v1/reviews", AddReviewRequest{
		ReviewerID: reviewerID, RestaurantID: restaurantID, AddressID: 9999, ReviewText: "x", Rating: "5",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "address not owned by restaurant")
}

func TestAddReviewAndRoundTrip(t *testing.T) {
	c := setupTestAPI(t)
	restaurantID, addressID, reviewerID := seedViaAPI(t, c)

	rec := perform(t, c, http.MethodPost, "/api/v1/reviews", AddReviewRequest{
		ReviewerID:   reviewerID,
		RestaurantID: restaurantID,
		AddressID:    addressID,
		ReviewText:   "Exactly as ordered.",
		Rating:       "abc", // malformed ratings default to 0
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[AddReviewResponse](t, rec)
	assert.Equal(t, string(datastore.AddReviewCreated), created.Status)

	rec = perform(t, c, http.MethodGet, "/api/v1/reviews/user/tester", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]datastore.UserReview](t, rec)
	require.Len(t, rows, 1)
	assert.Equal(t, created.ReviewID, rows[0].ReviewID)
	assert.Equal(t, "Exactly as ordered.", rows[0].Review)
	assert.Equal(t, 0, rows[0].Rating)
	assert.Equal(t, []uint{addressID}, rows[0].RestaurantAddressID)
}

func TestDeleteReview(t *testing.T) {
	c := setupTestAPI(t)
	restaurantID, addressID, reviewerID := seedViaAPI(t, c)

	rec := perform(t, c, http.MethodDelete, "/api/v1/reviews/9999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = perform(t, c, http.MethodPost, "/api/v1/reviews", AddReviewRequest{
		ReviewerID: reviewerID, RestaurantID: restaurantID, AddressID: addressID,
		ReviewText: "Short lived.", Rating: "5",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	reviewID := decode[AddReviewResponse](t, rec).ReviewID

	rec = perform(t, c, http.MethodDelete, fmt.Sprintf("/api/v1/reviews/%d", reviewID), nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	// Gone from the projection, still fetchable directly by id.
	rec = perform(t, c, http.MethodGet, "/api/v1/reviews/user/tester", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]datastore.UserReview](t, rec))

	rec = perform(t, c, http.MethodGet, fmt.Sprintf("/api/v1/reviews/%d", reviewID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	direct := decode[map[string]any](t, rec)
	assert.Equal(t, true, direct["IsDeleted"])
}

func TestGetRestaurantsByCityBlankParam(t *testing.T) {
	c := setupTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ctx := c.Echo.NewContext(req, rec)
	ctx.SetParamNames("city")
	ctx.SetParamValues("   ")

	require.NoError(t, c.GetRestaurantsByCity(ctx))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetReviewsByUserBlankParam(t *testing.T) {
	c := setupTestAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ctx := c.Echo.NewContext(req, rec)
	ctx.SetParamNames("user")
	ctx.SetParamValues(" ")

	require.NoError(t, c.GetReviewsByUser(ctx))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAllUsesCacheUntilInvalidated(t *testing.T) {
	c := setupTestAPI(t)
	seedViaAPI(t, c)

	rec := perform(t, c, http.MethodGet, "/api/v1/restaurants", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode[[]datastore.RestaurantReviews](t, rec)

	_, cached := c.projectionCache.Get(cacheKeyAllRestaurants)
	assert.True(t, cached)

	// A mutation drops the cached projection.
	rec = perform(t, c, http.MethodPost, "/api/v1/restaurants", AddRestaurantRequest{
		Name: "Cafe Y", City: "NYC", State: "NY", Address: "9 Broad St", PostalCode: "10002",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	_, cached = c.projectionCache.Get(cacheKeyAllRestaurants)
	assert.False(t, cached)

	rec = perform(t, c, http.MethodGet, "/api/v1/restaurants", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decode[[]datastore.RestaurantReviews](t, rec)
	assert.Len(t, second, len(first)+1)
}
