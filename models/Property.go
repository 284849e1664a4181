package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

type Property struct {
	gorm.Model
	LandlordID   uint            `json:"landlordID" gorm:"index"`
	TenantID     *uint           `json:"tenantID" gorm:"index"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	PropertyType string          `json:"propertyType"` // apartment, house, condo, townhouse
	AddressLine1 string          `json:"addressLine1"`
	AddressLine2 string          `json:"addressLine2"`
	City         string          `json:"city"`
	State        string          `json:"state"`
	Zip          string          `json:"zip"`
	Country      string          `json:"country"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    float32         `json:"bathrooms"`
	MonthlyRent  float32         `json:"monthlyRent"`
	Currency     string          `json:"currency"`
	Amenities    string          `json:"amenities"` // JSON array of strings
	Images       string          `json:"images"`    // JSON array of URLs
	IsActive     *bool           `json:"isActive"`
	Landlord     User            `json:"landlord" gorm:"foreignKey:LandlordID;references:ID"`
	Tenant       *User           `json:"tenant" gorm:"foreignKey:TenantID;references:ID"`
	Inventory    []InventoryItem `json:"inventory" gorm:"foreignKey:PropertyID;references:ID"`
}

// Custom JSON marshaling to convert the Images and Amenities string
// columns to arrays
func (p *Property) MarshalJSON() ([]byte, error) {
	type Alias Property
	aux := &struct {
		Images    []string `json:"images"`
		Amenities []string `json:"amenities"`
		Landlord  *User    `json:"landlord,omitempty"`
		Tenant    *User    `json:"tenant,omitempty"`
		*Alias
	}{
		Images:    []string{},
		Amenities: []string{},
		Alias:     (*Alias)(p),
	}

	if p.Images != "" {
		var images []string
		if err := json.Unmarshal([]byte(p.Images), &images); err == nil {
			aux.Images = images
		}
	}

	if p.Amenities != "" {
		var amenities []string
		if err := json.Unmarshal([]byte(p.Amenities), &amenities); err == nil {
			aux.Amenities = amenities
		}
	}

	// Only include users when loaded, without their Properties slice,
	// to avoid a circular reference
	if p.Landlord.ID > 0 {
		landlordCopy := p.Landlord
		landlordCopy.Properties = nil
		aux.Landlord = &landlordCopy
	}
	if p.Tenant != nil && p.Tenant.ID > 0 {
		tenantCopy := *p.Tenant
		tenantCopy.Properties = nil
		aux.Tenant = &tenantCopy
	}

	return json.Marshal(aux)
}
