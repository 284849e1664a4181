package models

import (
	"time"

	"gorm.io/gorm"
)

// Invitation is a landlord's offer to link a tenant to a property.
// The tenant accepts with a signed token delivered by email.
type Invitation struct {
	gorm.Model
	PropertyID uint      `json:"propertyID" gorm:"not null;index"`
	LandlordID uint      `json:"landlordID" gorm:"not null;index"`
	Email      string    `json:"email" gorm:"size:256;index"`
	Status     string    `json:"status" gorm:"size:16;default:pending;index"` // pending, accepted, revoked, expired
	ExpiresAt  time.Time `json:"expiresAt"`
	Property   Property  `json:"property" gorm:"foreignKey:PropertyID;references:ID"`
}
