// seed.go: development seed data for the review catalog
package datastore

import (
	"time"

	"gorm.io/gorm"
)

// Seed loads a small development dataset: one restaurant with two locations,
// two reviewers, and one review per location. It is a no-op when the
// restaurant table already has rows.
func (ds *DataStore) Seed() error {
	var count int64
	if err := ds.DB.Model(&Restaurant{}).Count(&count).Error; err != nil {
		return dbError(err, "seed", "")
	}
	if count > 0 {
		GetLogger().Info("Seed skipped, database already has restaurants")
		return nil
	}

	return ds.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		restaurant := Restaurant{
			BaseModel: BaseModel{
				CreatedByUserID: "RRC",
				CreatedDateTime: &now,
			},
			Name: "The Pie Hole",
		}
		if err := tx.Create(&restaurant).Error; err != nil {
			return dbError(err, "seed_restaurant", "")
		}

		address1 := Address{
			EntityID:   restaurant.ID,
			Address1:   "444 Universal Drive",
			City:       "New York",
			State:      "NY",
			PostalCode: "11230",
		}
		address2 := Address{
			EntityID:   restaurant.ID,
			Address1:   "42 Answer Road",
			City:       "Raymore",
			State:      "MO",
			PostalCode: "64083",
		}
		if err := tx.Create(&address1).Error; err != nil {
			return dbError(err, "seed_address", "")
		}
		if err := tx.Create(&address2).Error; err != nil {
			return dbError(err, "seed_address", "")
		}

		reviewer1 := Reviewer{FirstName: "Rafet", LastName: "Canovic", UserName: "RCNYC"}
		reviewer2 := Reviewer{FirstName: "Rafet", LastName: "Canovic", UserName: "Fritz"}
		if err := tx.Create(&reviewer1).Error; err != nil {
			return dbError(err, "seed_reviewer", "")
		}
		if err := tx.Create(&reviewer2).Error; err != nil {
			return dbError(err, "seed_reviewer", "")
		}

		review1 := Review{
			EntityID:   restaurant.ID,
			ReviewerID: reviewer1.ID,
			Rating:     5,
			ReviewText: "Great place to eat.",
		}
		review2 := Review{
			EntityID:   restaurant.ID,
			ReviewerID: reviewer2.ID,
			Rating:     5,
			ReviewText: "Amazing Pizza. Definitely a place to stuff your face.",
		}
		if err := tx.Create(&review1).Error; err != nil {
			return dbError(err, "seed_review", "")
		}
		if err := tx.Create(&review2).Error; err != nil {
			return dbError(err, "seed_review", "")
		}

		locations := []ReviewLocation{
			{ReviewID: review1.ID, AddressID: address1.ID},
			{ReviewID: review2.ID, AddressID: address2.ID},
		}
		for i := range locations {
			if err := tx.Create(&locations[i]).Error; err != nil {
				return dbError(err, "seed_review_location", "")
			}
		}

		GetLogger().Info("Seed data loaded",
			"restaurant_id", restaurant.ID,
			"addresses", 2, "reviewers", 2, "reviews", 2)
		return nil
	})
}
