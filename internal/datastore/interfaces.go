// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"github.com/rcanovic/restaurant-reviews/internal/conf"
	"gorm.io/gorm"
)

// Interface abstracts the underlying database implementation and defines the
// operations the catalog needs: the three read projections, the write
// operations, and direct-by-id lookups that ignore the soft-delete filter.
type Interface interface {
	Open() error
	Close() error

	// Projections
	GetAllRestaurantsAndReviews() ([]RestaurantReviews, error)
	GetAllRestaurantsByCity(city string) ([]RestaurantCityRow, error)
	GetAllRestaurantReviewsByUser(user string) ([]UserReview, error)

	// Mutations
	AddReview(reviewerID, restaurantID, addressID uint, reviewText, rating string) (AddReviewResult, error)
	DeleteReview(reviewID uint) error
	AddReviewer(userName, firstName, lastName string) (uint, error)
	AddRestaurant(name, city, state, address, postalCode string) (uint, error)
	DoesRestaurantExist(name, city, state, address, postalCode string) (bool, error)

	// Direct lookups, visible regardless of the soft-delete flag
	GetReview(id uint) (Review, error)
	GetReviewer(id uint) (Reviewer, error)
	GetRestaurant(id uint) (Restaurant, error)
	GetAddress(id uint) (Address, error)
	ReviewerExists(id uint) (bool, error)
	ReviewerUserNameExists(userName string) (bool, error)
	RestaurantExists(id uint) (bool, error)
	AddressBelongsToRestaurant(addressID, restaurantID uint) (bool, error)

	Seed() error
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB // GORM database instance
}

// New creates a new datastore instance based on the provided configuration.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{
			Settings: settings,
		}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{
			Settings: settings,
		}
	default:
		return nil
	}
}

// notDeleted scopes a query to rows that have not been soft deleted. Every
// read projection goes through this scope so a new query cannot forget the
// filter.
func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

// GetReview retrieves a review by its ID, including soft-deleted rows.
func (ds *DataStore) GetReview(id uint) (Review, error) {
	var review Review
	if err := ds.DB.First(&review, id).Error; err != nil {
		if errorsIsRecordNotFound(err) {
			return Review{}, notFoundError("review", id)
		}
		return Review{}, dbError(err, "get_review", "", "review_id", id)
	}
	return review, nil
}

// GetReviewer retrieves a reviewer by its ID, including soft-deleted rows.
func (ds *DataStore) GetReviewer(id uint) (Reviewer, error) {
	var reviewer Reviewer
	if err := ds.DB.First(&reviewer, id).Error; err != nil {
		if errorsIsRecordNotFound(err) {
			return Reviewer{}, notFoundError("reviewer", id)
		}
		return Reviewer{}, dbError(err, "get_reviewer", "", "reviewer_id", id)
	}
	return reviewer, nil
}

// GetRestaurant retrieves a restaurant by its ID, including soft-deleted rows.
func (ds *DataStore) GetRestaurant(id uint) (Restaurant, error) {
	var restaurant Restaurant
	if err := ds.DB.First(&restaurant, id).Error; err != nil {
		if errorsIsRecordNotFound(err) {
			return Restaurant{}, notFoundError("restaurant", id)
		}
		return Restaurant{}, dbError(err, "get_restaurant", "", "restaurant_id", id)
	}
	return restaurant, nil
}

// GetAddress retrieves an address by its ID, including soft-deleted rows.
func (ds *DataStore) GetAddress(id uint) (Address, error) {
	var address Address
	if err := ds.DB.First(&address, id).Error; err != nil {
		if errorsIsRecordNotFound(err) {
			return Address{}, notFoundError("address", id)
		}
		return Address{}, dbError(err, "get_address", "", "address_id", id)
	}
	return address, nil
}

// ReviewerExists reports whether a non-deleted reviewer with the given ID exists.
func (ds *DataStore) ReviewerExists(id uint) (bool, error) {
	var count int64
	err := ds.DB.Model(&Reviewer{}).Scopes(notDeleted).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, dbError(err, "reviewer_exists", "", "reviewer_id", id)
	}
	return count > 0, nil
}

// ReviewerUserNameExists reports whether a non-deleted reviewer already uses
// the given username. The match is trimmed and case-insensitive.
func (ds *DataStore) ReviewerUserNameExists(userName string) (bool, error) {
	var count int64
	err := ds.DB.Model(&Reviewer{}).Scopes(notDeleted).
		Where("LOWER(user_name) = ?", normalize(userName)).
		Count(&count).Error
	if err != nil {
		return false, dbError(err, "reviewer_username_exists", "", "user_name", userName)
	}
	return count > 0, nil
}

// RestaurantExists reports whether a non-deleted restaurant with the given ID exists.
func (ds *DataStore) RestaurantExists(id uint) (bool, error) {
	var count int64
	err := ds.DB.Model(&Restaurant{}).Scopes(notDeleted).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, dbError(err, "restaurant_exists", "", "restaurant_id", id)
	}
	return count > 0, nil
}

// AddressBelongsToRestaurant reports whether the address exists, is not
// deleted, and is owned by the given restaurant.
func (ds *DataStore) AddressBelongsToRestaurant(addressID, restaurantID uint) (bool, error) {
	var count int64
	err := ds.DB.Model(&Address{}).Scopes(notDeleted).
		Where("id = ? AND entity_id = ?", addressID, restaurantID).
		Count(&count).Error
	if err != nil {
		return false, dbError(err, "address_belongs_to_restaurant", "",
			"address_id", addressID, "restaurant_id", restaurantID)
	}
	return count > 0, nil
}
