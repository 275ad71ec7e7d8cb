// mutations.go: write operations for the review catalog
package datastore

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// AddReviewStatus describes the outcome of the two-phase review write.
type AddReviewStatus string

const (
	// AddReviewCreated means both the review and its location link exist.
	AddReviewCreated AddReviewStatus = "created"
	// AddReviewPartial means the review row was inserted but the location
	// link failed, leaving an orphaned review. The review id is still
	// reported so callers can observe or repair the partial state.
	AddReviewPartial AddReviewStatus = "partial"
	// AddReviewFailed means no row was written.
	AddReviewFailed AddReviewStatus = "failed"
)

// AddReviewResult reports which rows the two-phase review write produced.
type AddReviewResult struct {
	Status     AddReviewStatus
	ReviewID   uint
	LocationID uint
}

// parseRating parses the free-text rating, defaulting to 0 on malformed
// input. Malformed ratings are tolerated, not rejected.
func parseRating(rating string) int {
	value, err := strconv.Atoi(strings.TrimSpace(rating))
	if err != nil {
		return 0
	}
	return value
}

// AddReview inserts a review and then the location link referencing its
// assigned id. The two inserts are a genuine two-phase write: a failure
// between them leaves an orphaned review, reported as a partial result
// rather than rolled back. No referential checks are performed here; callers
// pre-validate reviewer, restaurant, and address existence.
func (ds *DataStore) AddReview(reviewerID, restaurantID, addressID uint, reviewText, rating string) (AddReviewResult, error) {
	review := Review{
		EntityID:   restaurantID,
		ReviewerID: reviewerID,
		ReviewText: reviewText,
		Rating:     parseRating(rating),
	}

	if err := ds.DB.Create(&review).Error; err != nil {
		return AddReviewResult{Status: AddReviewFailed},
			dbError(err, "add_review", "", "restaurant_id", restaurantID, "reviewer_id", reviewerID)
	}

	location := ReviewLocation{
		ReviewID:  review.ID,
		AddressID: addressID,
	}

	if err := ds.DB.Create(&location).Error; err != nil {
		return AddReviewResult{Status: AddReviewPartial, ReviewID: review.ID},
			dbError(err, "add_review_location", "",
				"review_id", review.ID, "address_id", addressID)
	}

	return AddReviewResult{
		Status:     AddReviewCreated,
		ReviewID:   review.ID,
		LocationID: location.ID,
	}, nil
}

// DeleteReview soft deletes the review with the given id. The row remains
// addressable by id but disappears from every projection.
func (ds *DataStore) DeleteReview(reviewID uint) error {
	var review Review
	if err := ds.DB.First(&review, reviewID).Error; err != nil {
		if errorsIsRecordNotFound(err) {
			return notFoundError("review", reviewID)
		}
		return dbError(err, "delete_review", "", "review_id", reviewID)
	}

	now := time.Now()
	review.IsDeleted = true
	review.ModifiedByUserID = defaultCreatedByUserID
	review.ModifiedDateTime = &now

	if err := ds.DB.Save(&review).Error; err != nil {
		return dbError(err, "delete_review", "", "review_id", reviewID)
	}
	return nil
}

// AddReviewer unconditionally inserts a reviewer and returns the assigned
// id. Username uniqueness is the caller's responsibility.
func (ds *DataStore) AddReviewer(userName, firstName, lastName string) (uint, error) {
	reviewer := Reviewer{
		UserName:  userName,
		FirstName: firstName,
		LastName:  lastName,
	}

	if err := ds.DB.Create(&reviewer).Error; err != nil {
		return 0, dbError(err, "add_reviewer", "", "user_name", userName)
	}
	return reviewer.ID, nil
}

// AddRestaurant looks up a restaurant by name (trimmed, case-insensitive)
// and inserts one when none exists, then always inserts a new address linked
// to the restaurant. This is how multiple locations accrue under one name.
// The find-or-create sequence runs inside one transaction to keep identical
// concurrent requests from producing duplicate restaurant rows. The street
// address parameter is accepted but not persisted into the new address row.
func (ds *DataStore) AddRestaurant(name, city, state, address, postalCode string) (uint, error) {
	_ = address // street address is deliberately not written, see DoesRestaurantExist

	var restaurantID uint
	err := ds.DB.Transaction(func(tx *gorm.DB) error {
		var restaurants []Restaurant
		if err := tx.Where("LOWER(name) = ?", normalize(name)).
			Limit(1).
			Find(&restaurants).Error; err != nil {
			return dbError(err, "add_restaurant", "", "name", name)
		}

		var restaurant Restaurant
		if len(restaurants) > 0 {
			restaurant = restaurants[0]
		} else {
			restaurant = Restaurant{Name: name}
			if err := tx.Create(&restaurant).Error; err != nil {
				return dbError(err, "add_restaurant", "", "name", name)
			}
		}

		addr := Address{
			EntityID:   restaurant.ID,
			City:       strings.TrimSpace(city),
			State:      strings.TrimSpace(state),
			PostalCode: strings.TrimSpace(postalCode),
		}
		if err := tx.Create(&addr).Error; err != nil {
			return dbError(err, "add_restaurant_address", "",
				"restaurant_id", restaurant.ID, "city", city)
		}

		restaurantID = restaurant.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return restaurantID, nil
}

// DoesRestaurantExist reports whether a non-deleted restaurant matches the
// name and owns a non-deleted address matching city, state, and postal code.
// All matches are trimmed and case-insensitive. The street address parameter
// is accepted but not part of the match, by parity with AddRestaurant. A
// miss returns false, never an error.
func (ds *DataStore) DoesRestaurantExist(name, city, state, address, postalCode string) (bool, error) {
	_ = address // street address is deliberately not matched

	var restaurants []Restaurant
	err := ds.DB.Scopes(notDeleted).
		Where("LOWER(name) = ?", normalize(name)).
		Limit(1).
		Find(&restaurants).Error
	if err != nil {
		return false, dbError(err, "does_restaurant_exist", "", "name", name)
	}
	if len(restaurants) == 0 {
		return false, nil
	}

	var count int64
	err = ds.DB.Model(&Address{}).Scopes(notDeleted).
		Where("entity_id = ?", restaurants[0].ID).
		Where("LOWER(city) = ?", normalize(city)).
		Where("LOWER(state) = ?", normalize(state)).
		Where("LOWER(postal_code) = ?", normalize(postalCode)).
		Count(&count).Error
	if err != nil {
		return false, dbError(err, "does_restaurant_exist", "",
			"restaurant_id", restaurants[0].ID, "city", city)
	}
	return count > 0, nil
}
