package services

import (
	"encoding/json"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/dougsimpsoncodes/MyAILandlord-sub005/models"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/storage"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/utils"
)

// NotificationService handles all push notification logic
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotificationData is the payload delivered with a push so the app can
// deep-link into the right screen
type NotificationData struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	PropertyID string `json:"propertyId,omitempty"`
	UserID     string `json:"userId,omitempty"`
	Screen     string `json:"screen"`
}

// getUserPushTokens retrieves all push tokens for a user, respecting
// their notification settings
func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %v", err)
	}

	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}

	return tokens, nil
}

// SendNotificationToUser sends a notification to every device of a user
func (ns *NotificationService) SendNotificationToUser(userID uint, title, body string, data NotificationData) error {
	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		log.Printf("skipping push for user %d: %v", userID, err)
		return err
	}

	dataMap := map[string]string{
		"type":       data.Type,
		"id":         data.ID,
		"propertyId": data.PropertyID,
		"userId":     data.UserID,
		"screen":     data.Screen,
	}

	var lastError error
	for _, token := range tokens {
		if err := utils.SendNotification(token, title, body, dataMap); err != nil {
			log.Printf("push to token failed for user %d: %v", userID, err)
			lastError = err
		}
	}
	return lastError
}

// SendMessageNotification notifies a recipient about a new direct
// message. Called off the request goroutine; failures are logged only.
func (ns *NotificationService) SendMessageNotification(recipientID uint, senderID uint, senderName string, preview string) {
	data := NotificationData{
		Type:   "message",
		ID:     fmt.Sprintf("%d", senderID),
		UserID: fmt.Sprintf("%d", senderID),
		Screen: "Conversation",
	}

	if err := ns.SendNotificationToUser(recipientID, senderName, truncatePreview(preview, 120), data); err != nil {
		log.Printf("message notification to user %d failed: %v", recipientID, err)
	}
}

// truncatePreview shortens a push body to max characters, cutting on a
// rune boundary so multi-byte text stays valid UTF-8
func truncatePreview(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "…"
}

// SendInvitationAcceptedNotification tells a landlord their invitation
// was accepted
func (ns *NotificationService) SendInvitationAcceptedNotification(landlordID uint, tenantName string, property *models.Property) {
	data := NotificationData{
		Type:       "invitation_accepted",
		ID:         fmt.Sprintf("%d", property.ID),
		PropertyID: fmt.Sprintf("%d", property.ID),
		Screen:     "PropertyDetails",
	}

	body := fmt.Sprintf("%s accepted your invitation to %s", tenantName, property.Title)
	if err := ns.SendNotificationToUser(landlordID, "Invitation accepted", body, data); err != nil {
		log.Printf("invitation notification to user %d failed: %v", landlordID, err)
	}
}
