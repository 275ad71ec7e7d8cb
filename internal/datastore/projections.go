// projections.go: read models composing the normalized entities into the
// nested shapes consumed by the API
package datastore

import (
	"fmt"
	"strings"
)

// normalize prepares free-text match input the same way every projection and
// check does: trimmed and lowercased.
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// cityState renders an address location as "City, State".
func cityState(a *Address) string {
	return a.City + ", " + a.State
}

// ReviewerRef identifies the reviewer attached to a review inside a
// projection.
type ReviewerRef struct {
	ReviewerID uint   `json:"reviewerId"`
	UserName   string `json:"userName"`
}

// CityEntry is one address of a restaurant rendered for the read models.
type CityEntry struct {
	AddressID uint   `json:"addressId"`
	City      string `json:"city"` // "City, State"
}

// ReviewEntry is one review nested under a restaurant. Reviewer is a
// possibly-empty sequence: a review whose reviewer is deleted or missing
// still appears, with no reviewer attached.
type ReviewEntry struct {
	ReviewID   uint          `json:"reviewId"`
	Review     string        `json:"review"`
	Rating     int           `json:"rating"`
	ReviewDate *string       `json:"reviewDate"`
	Reviewer   []ReviewerRef `json:"reviewer"`
}

// RestaurantReviews is one row of the list-all projection: a restaurant with
// every location and every review it owns.
type RestaurantReviews struct {
	ID      uint          `json:"id"`
	Name    string        `json:"name"`
	Cities  []CityEntry   `json:"cities"`
	Reviews []ReviewEntry `json:"reviews"`
}

// RestaurantCityRow is one row of the by-city projection. There is one row
// per (restaurant, address) pair in the matched city, and Reviews carries
// only the reviews located at that exact address.
type RestaurantCityRow struct {
	ID        uint          `json:"id"`
	Name      string        `json:"name"`
	AddressID uint          `json:"addressId"`
	City      string        `json:"city"` // "City, State"
	Reviews   []ReviewEntry `json:"reviews"`
}

// UserReview is one row of the by-user projection. The restaurant fields are
// resolved through the ReviewLocation chain and carried as possibly-empty
// sequences: a review without a location link still appears.
type UserReview struct {
	ReviewID            uint     `json:"reviewId"`
	ReviewerID          uint     `json:"reviewerId"`
	Reviewer            string   `json:"reviewer"`
	ReviewDate          string   `json:"reviewDate"`
	RestaurantID        uint     `json:"restaurantId"`
	RestaurantAddressID []uint   `json:"restaurantAddressId"`
	Restaurant          []string `json:"restaurant"`
	RestaurantCity      []string `json:"restaurantCity"`
	Review              string   `json:"review"`
	Rating              int      `json:"rating"`
}

// formatReviewDate renders a review timestamp for the read models. A nil
// timestamp yields nil so callers can distinguish an absent date.
func formatReviewDate(r *Review) *string {
	if r.CreatedDateTime == nil {
		return nil
	}
	s := r.CreatedDateTime.Format("2006-01-02T15:04:05Z07:00")
	return &s
}

// reviewerRefs resolves the non-deleted reviewer for a review. A miss yields
// an empty sequence, never an error.
func (ds *DataStore) reviewerRefs(reviewerID uint) ([]ReviewerRef, error) {
	var reviewers []Reviewer
	err := ds.DB.Scopes(notDeleted).
		Where("id = ?", reviewerID).
		Find(&reviewers).Error
	if err != nil {
		return nil, dbError(err, "resolve_reviewer", "", "reviewer_id", reviewerID)
	}

	refs := make([]ReviewerRef, 0, len(reviewers))
	for i := range reviewers {
		refs = append(refs, ReviewerRef{
			ReviewerID: reviewers[i].ID,
			UserName:   reviewers[i].UserName,
		})
	}
	return refs, nil
}

// reviewEntries renders a batch of reviews with their reviewers resolved.
func (ds *DataStore) reviewEntries(reviews []Review) ([]ReviewEntry, error) {
	entries := make([]ReviewEntry, 0, len(reviews))
	for i := range reviews {
		refs, err := ds.reviewerRefs(reviews[i].ReviewerID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ReviewEntry{
			ReviewID:   reviews[i].ID,
			Review:     reviews[i].ReviewText,
			Rating:     reviews[i].Rating,
			ReviewDate: formatReviewDate(&reviews[i]),
			Reviewer:   refs,
		})
	}
	return entries, nil
}

// GetAllRestaurantsAndReviews returns every non-deleted restaurant with all
// of its locations and all of its reviews. A restaurant with no addresses or
// reviews still appears, with empty nested sequences. Ordering follows store
// iteration order and is not guaranteed stable across calls.
func (ds *DataStore) GetAllRestaurantsAndReviews() ([]RestaurantReviews, error) {
	var restaurants []Restaurant
	if err := ds.DB.Scopes(notDeleted).Find(&restaurants).Error; err != nil {
		return nil, dbError(err, "get_all_restaurants_and_reviews", "")
	}

	results := make([]RestaurantReviews, 0, len(restaurants))
	for i := range restaurants {
		rest := &restaurants[i]

		var addresses []Address
		err := ds.DB.Scopes(notDeleted).
			Where("entity_id = ?", rest.ID).
			Find(&addresses).Error
		if err != nil {
			return nil, dbError(err, "get_all_restaurants_and_reviews", "", "restaurant_id", rest.ID)
		}

		cities := make([]CityEntry, 0, len(addresses))
		for j := range addresses {
			cities = append(cities, CityEntry{
				AddressID: addresses[j].ID,
				City:      cityState(&addresses[j]),
			})
		}

		var reviews []Review
		err = ds.DB.Scopes(notDeleted).
			Where("entity_id = ?", rest.ID).
			Find(&reviews).Error
		if err != nil {
			return nil, dbError(err, "get_all_restaurants_and_reviews", "", "restaurant_id", rest.ID)
		}

		entries, err := ds.reviewEntries(reviews)
		if err != nil {
			return nil, err
		}

		results = append(results, RestaurantReviews{
			ID:      rest.ID,
			Name:    rest.Name,
			Cities:  cities,
			Reviews: entries,
		})
	}
	return results, nil
}

// GetAllRestaurantsByCity returns one row per (restaurant, address) pair
// whose address matches the given city. The match is trimmed and
// case-insensitive. Each row's reviews are restricted to reviews whose
// location link resolves to that exact address. No matches yields an empty
// result set.
func (ds *DataStore) GetAllRestaurantsByCity(city string) ([]RestaurantCityRow, error) {
	var addresses []Address
	err := ds.DB.Scopes(notDeleted).
		Where("LOWER(city) = ?", normalize(city)).
		Find(&addresses).Error
	if err != nil {
		return nil, dbError(err, "get_all_restaurants_by_city", "", "city", city)
	}

	rows := make([]RestaurantCityRow, 0, len(addresses))
	for i := range addresses {
		addr := &addresses[i]

		var restaurants []Restaurant
		err := ds.DB.Scopes(notDeleted).
			Where("id = ?", addr.EntityID).
			Find(&restaurants).Error
		if err != nil {
			return nil, dbError(err, "get_all_restaurants_by_city", "", "restaurant_id", addr.EntityID)
		}
		if len(restaurants) == 0 {
			// Address owned by a deleted restaurant drops out of the join.
			continue
		}
		rest := &restaurants[0]

		var reviews []Review
		err = ds.DB.Model(&Review{}).
			Select("reviews.*").
			Joins("JOIN review_locations ON review_locations.review_id = reviews.id").
			Where("reviews.entity_id = ?", rest.ID).
			Where("review_locations.address_id = ?", addr.ID).
			Where("reviews.is_deleted = ?", false).
			Where("review_locations.is_deleted = ?", false).
			Find(&reviews).Error
		if err != nil {
			return nil, dbError(err, "get_all_restaurants_by_city", "",
				"restaurant_id", rest.ID, "address_id", addr.ID)
		}

		entries, err := ds.reviewEntries(reviews)
		if err != nil {
			return nil, err
		}

		rows = append(rows, RestaurantCityRow{
			ID:        rest.ID,
			Name:      rest.Name,
			AddressID: addr.ID,
			City:      cityState(addr),
			Reviews:   entries,
		})
	}
	return rows, nil
}

// GetAllRestaurantReviewsByUser returns one flat row per non-deleted review
// posted by the reviewer with the given username. The match is trimmed and
// case-insensitive. The restaurant fields are resolved through the
// ReviewLocation chain and stay empty when the chain is broken. Every review
// in this projection must carry a creation date; a missing date is a
// contract violation.
func (ds *DataStore) GetAllRestaurantReviewsByUser(user string) ([]UserReview, error) {
	var reviewers []Reviewer
	err := ds.DB.Scopes(notDeleted).
		Where("LOWER(user_name) = ?", normalize(user)).
		Find(&reviewers).Error
	if err != nil {
		return nil, dbError(err, "get_all_restaurant_reviews_by_user", "", "user", user)
	}

	rows := make([]UserReview, 0)
	for i := range reviewers {
		reviewer := &reviewers[i]

		var reviews []Review
		err := ds.DB.Scopes(notDeleted).
			Where("reviewer_id = ?", reviewer.ID).
			Find(&reviews).Error
		if err != nil {
			return nil, dbError(err, "get_all_restaurant_reviews_by_user", "", "reviewer_id", reviewer.ID)
		}

		for j := range reviews {
			review := &reviews[j]
			date := formatReviewDate(review)
			if date == nil {
				return nil, stateError(
					fmt.Errorf("review %d has no creation date", review.ID),
					"get_all_restaurant_reviews_by_user", "missing_review_date",
					"review_id", review.ID)
			}

			var linked []Address
			err := ds.DB.Model(&Address{}).
				Select("addresses.*").
				Joins("JOIN review_locations ON review_locations.address_id = addresses.id").
				Where("review_locations.review_id = ?", review.ID).
				Where("addresses.is_deleted = ?", false).
				Find(&linked).Error
			if err != nil {
				return nil, dbError(err, "get_all_restaurant_reviews_by_user", "", "review_id", review.ID)
			}

			addressIDs := make([]uint, 0, len(linked))
			cities := make([]string, 0, len(linked))
			for k := range linked {
				addressIDs = append(addressIDs, linked[k].ID)
				cities = append(cities, cityState(&linked[k]))
			}

			var names []string
			err = ds.DB.Model(&Restaurant{}).Scopes(notDeleted).
				Where("id = ?", review.EntityID).
				Pluck("name", &names).Error
			if err != nil {
				return nil, dbError(err, "get_all_restaurant_reviews_by_user", "", "restaurant_id", review.EntityID)
			}
			if names == nil {
				names = make([]string, 0)
			}

			rows = append(rows, UserReview{
				ReviewID:            review.ID,
				ReviewerID:          reviewer.ID,
				Reviewer:            reviewer.UserName,
				ReviewDate:          *date,
				RestaurantID:        review.EntityID,
				RestaurantAddressID: addressIDs,
				Restaurant:          names,
				RestaurantCity:      cities,
				Review:              review.ReviewText,
				Rating:              review.Rating,
			})
		}
	}
	return rows, nil
}
