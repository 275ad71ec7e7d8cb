// datastore_test.go: shared test fixtures for the datastore package
package datastore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DataStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&Restaurant{}, &Address{}, &Reviewer{}, &Review{}, &ReviewLocation{})
	require.NoError(t, err)

	return &DataStore{DB: db}
}

// catalogFixture holds the ids of the baseline dataset used across tests:
// one restaurant with two addresses in different cities, two reviewers, and
// one review per address.
type catalogFixture struct {
	RestaurantID uint
	AddressNYC   uint
	AddressMO    uint
	ReviewerRC   uint
	ReviewerFr   uint
	ReviewNYC    uint
	ReviewMO     uint
}

// seedCatalog adds the baseline dataset to the database
func seedCatalog(t *testing.T, ds *DataStore) catalogFixture {
	t.Helper()

	restaurant := Restaurant{Name: "The Pie Hole"}
	require.NoError(t, ds.DB.Create(&restaurant).Error)

	addressNYC := Address{
		EntityID:   restaurant.ID,
		Address1:   "444 Universal Drive",
		City:       "New York",
		State:      "NY",
		PostalCode: "11230",
	}
	addressMO := Address{
		EntityID:   restaurant.ID,
		Address1:   "42 Answer Road",
		City:       "Raymore",
		State:      "MO",
		PostalCode: "64083",
	}
	require.NoError(t, ds.DB.Create(&addressNYC).Error)
	require.NoError(t, ds.DB.Create(&addressMO).Error)

	reviewerRC := Reviewer{FirstName: "Rafet", LastName: "Canovic", UserName: "RCNYC"}
	reviewerFr := Reviewer{FirstName: "Rafet", LastName: "Canovic", UserName: "Fritz"}
	require.NoError(t, ds.DB.Create(&reviewerRC).Error)
	require.NoError(t, ds.DB.Create(&reviewerFr).Error)

	reviewNYC := Review{
		EntityID:   restaurant.ID,
		ReviewerID: reviewerRC.ID,
		Rating:     5,
		ReviewText: "Great place to eat.",
	}
	reviewMO := Review{
		EntityID:   restaurant.ID,
		ReviewerID: reviewerFr.ID,
		Rating:     4,
		ReviewText: "Amazing Pizza.",
	}
	require.NoError(t, ds.DB.Create(&reviewNYC).Error)
	require.NoError(t, ds.DB.Create(&reviewMO).Error)

	require.NoError(t, ds.DB.Create(&ReviewLocation{ReviewID: reviewNYC.ID, AddressID: addressNYC.ID}).Error)
	require.NoError(t, ds.DB.Create(&ReviewLocation{ReviewID: reviewMO.ID, AddressID: addressMO.ID}).Error)

	return catalogFixture{
		RestaurantID: restaurant.ID,
		AddressNYC:   addressNYC.ID,
		AddressMO:    addressMO.ID,
		ReviewerRC:   reviewerRC.ID,
		ReviewerFr:   reviewerFr.ID,
		ReviewNYC:    reviewNYC.ID,
		ReviewMO:     reviewMO.ID,
	}
}

// softDelete flips the IsDeleted flag directly for test arrangement
func softDelete(t *testing.T, ds *DataStore, model any, id uint) {
	t.Helper()
	now := time.Now()
	err := ds.DB.Model(model).Where("id = ?", id).
		Updates(map[string]any{"is_deleted": true, "modified_date_time": &now}).Error
	require.NoError(t, err)
}
