package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Email               string         `json:"email" gorm:"uniqueIndex"`
	Password            string         `json:"password"`
	AvatarURL           string         `json:"avatarURL"`
	Bio                 string         `json:"bio"`
	Properties          []Property     `json:"properties" gorm:"foreignKey:LandlordID;references:ID"`
	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`
	Role                string         `json:"role" gorm:"type:varchar(20);default:tenant;index"` // landlord, tenant
}

// Custom JSON marshaling to expand the PushTokens JSON column and keep
// the password hash out of responses
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		Password   string   `json:"password,omitempty"`
		PushTokens []string `json:"pushTokens,omitempty"`
		*Alias
	}{
		PushTokens: []string{},
		Alias:      (*Alias)(u),
	}

	aux.Password = ""

	if u.PushTokens != nil {
		var pushTokens []string
		if err := json.Unmarshal(u.PushTokens, &pushTokens); err == nil {
			aux.PushTokens = pushTokens
		}
	}

	return json.Marshal(aux)
}
