package routes

import (
	"fmt"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"github.com/dougsimpsoncodes/MyAILandlord-sub005/chat"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/models"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/services"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/storage"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/utils"
)

// GetMessages returns every direct message the current user is part
// of, oldest first
func GetMessages(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var messages []models.Message
	err := storage.DB.
		Where("sender_id = ? OR recipient_id = ?", claims.ID, claims.ID).
		Preload("Sender").
		Preload("Recipient").
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"messages": messages})
}

// GetConversations groups the user's messages into per-counterpart
// summaries, newest and unread first
func GetConversations(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var messages []models.Message
	err := storage.DB.
		Where("sender_id = ? OR recipient_id = ?", claims.ID, claims.ID).
		Preload("Sender").
		Preload("Recipient").
		Find(&messages).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"conversations": chat.Aggregate(messages, claims.ID)})
}

type SendMessageInput struct {
	RecipientID uint   `json:"recipientId" validate:"required"`
	Content     string `json:"content" validate:"required,max=5000"`
	MessageType string `json:"messageType" validate:"omitempty,oneof=text maintenance invitation"`
}

func SendMessage(ctx iris.Context) {
	var req SendMessageInput
	if err := ctx.ReadJSON(&req); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	if req.RecipientID == claims.ID {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "Cannot message yourself.", ctx)
		return
	}

	messageType := req.MessageType
	if messageType == "" {
		messageType = "text"
	}

	message := models.Message{
		SenderID:    claims.ID,
		RecipientID: req.RecipientID,
		Content:     req.Content,
		MessageType: messageType,
	}

	if err := storage.DB.Create(&message).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	storage.DB.Preload("Sender").Preload("Recipient").First(&message, message.ID)

	// Push to the recipient off the request goroutine
	var sender models.User
	if err := storage.DB.First(&sender, claims.ID).Error; err == nil {
		senderName := fmt.Sprintf("%s %s", sender.FirstName, sender.LastName)
		notificationService := services.NewNotificationService()
		go notificationService.SendMessageNotification(req.RecipientID, claims.ID, senderName, req.Content)
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&message)
}

type MarkMessagesAsReadInput struct {
	CounterpartID uint `json:"counterpartId" validate:"required"`
}

// MarkMessagesAsRead marks everything the counterpart sent to the
// current user as read
func MarkMessagesAsRead(ctx iris.Context) {
	var req MarkMessagesAsReadInput
	if err := ctx.ReadJSON(&req); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	result := storage.DB.Model(&models.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND is_read = ?", req.CounterpartID, claims.ID, false).
		Update("is_read", true)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"updated": result.RowsAffected})
}

// Typing sets a short-lived Redis key so the counterpart's client can
// show a typing indicator
func Typing(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	counterpartID, err := ctx.Params().GetUint("counterpartID")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}

	key := typingKey(claims.ID, counterpartID)
	storage.Redis.Set(ctx.Request().Context(), key, "1", 5*time.Second)
	ctx.JSON(iris.Map{"success": true})
}

// IsTyping reports whether the counterpart is typing to the current
// user right now
func IsTyping(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	counterpartID, err := ctx.Params().GetUint("counterpartID")
	if err != nil {
		ctx.StatusCode(iris.StatusBadRequest)
		return
	}

	key := typingKey(counterpartID, claims.ID)
	typing := false
	if val, err := storage.Redis.Get(ctx.Request().Context(), key).Result(); err == nil && val == "1" {
		typing = true
	}
	ctx.JSON(iris.Map{"typing": typing})
}

func typingKey(fromID uint, toID uint) string {
	return fmt.Sprintf("typing:user:%d:to:%d", fromID, toID)
}
