// model.go this code defines the data model for the application
package datastore

import (
	"time"

	"gorm.io/gorm"
)

// defaultCreatedByUserID is recorded on rows created without an explicit user.
const defaultCreatedByUserID = "API"

// BaseModel carries the audit and soft-delete fields shared by every entity.
// Rows are never physically erased; IsDeleted marks them invisible to reads.
type BaseModel struct {
	ID               uint   `gorm:"primaryKey"`
	CreatedByUserID  string `gorm:"type:varchar(64)"`
	CreatedDateTime  *time.Time
	ModifiedByUserID string `gorm:"type:varchar(64)"`
	ModifiedDateTime *time.Time
	IsDeleted        bool `gorm:"index"`
}

// BeforeCreate defaults the audit fields at creation time.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.CreatedByUserID == "" {
		b.CreatedByUserID = defaultCreatedByUserID
	}
	if b.CreatedDateTime == nil {
		now := time.Now()
		b.CreatedDateTime = &now
	}
	return nil
}

// Restaurant represents a restaurant which owns addresses and reviews by
// foreign key, not embedding.
type Restaurant struct {
	BaseModel
	Name string `gorm:"index"`
}

// Address represents one physical location of a restaurant. A restaurant may
// have multiple addresses.
type Address struct {
	BaseModel
	EntityID   uint `gorm:"index"` // owning Restaurant.ID
	Address1   string
	Address2   string
	City       string `gorm:"index"`
	State      string
	Country    string
	PostalCode string
}

// Reviewer represents a user who posts reviews. UserName is intended unique
// among non-deleted reviewers, enforced at the write boundary only.
type Reviewer struct {
	BaseModel
	FirstName string
	LastName  string
	UserName  string `gorm:"index"`
}

// Review represents a single review of a restaurant.
type Review struct {
	BaseModel
	EntityID   uint   `gorm:"index"` // reviewed Restaurant.ID
	ReviewerID uint   `gorm:"index"`
	ReviewText string `gorm:"type:text"`
	Rating     int
}

// ReviewLocation resolves which of a restaurant's addresses a review
// pertains to.
type ReviewLocation struct {
	BaseModel
	ReviewID  uint `gorm:"index"`
	AddressID uint `gorm:"index"`
}
