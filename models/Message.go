package models

import (
	"gorm.io/gorm"
)

type Message struct {
	gorm.Model
	SenderID    uint   `json:"senderID" gorm:"index"`
	RecipientID uint   `json:"recipientID" gorm:"index"`
	Content     string `json:"content" gorm:"type:text"`
	MessageType string `json:"messageType" gorm:"size:32"` // text | maintenance | invitation
	IsRead      bool   `json:"isRead" gorm:"index"`
	Sender      User   `json:"sender" gorm:"foreignKey:SenderID;references:ID"`
	Recipient   User   `json:"recipient" gorm:"foreignKey:RecipientID;references:ID"`
}
