package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// InventoryItem records one asset of a property's inventory (appliance,
// fixture, piece of furniture) grouped under an area of the home
type InventoryItem struct {
	gorm.Model
	PropertyID uint   `json:"propertyID" gorm:"not null;index"`
	Area       string `json:"area" gorm:"size:64;index"` // kitchen, bathroom, bedroom, ...
	Name       string `json:"name" gorm:"size:128"`
	Brand      string `json:"brand" gorm:"size:128"`
	Condition  string `json:"condition" gorm:"size:16"` // new, good, fair, poor
	Notes      string `json:"notes" gorm:"type:text"`
	Photos     string `json:"photos"` // JSON array of URLs
}

func (i *InventoryItem) MarshalJSON() ([]byte, error) {
	type Alias InventoryItem
	aux := &struct {
		Photos []string `json:"photos"`
		*Alias
	}{
		Photos: []string{},
		Alias:  (*Alias)(i),
	}

	if i.Photos != "" {
		var photos []string
		if err := json.Unmarshal([]byte(i.Photos), &photos); err == nil {
			aux.Photos = photos
		}
	}

	return json.Marshal(aux)
}
