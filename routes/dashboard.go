package routes

import (
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"github.com/dougsimpsoncodes/MyAILandlord-sub005/models"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/storage"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/utils"
)

// GET /api/dashboard
func GetLandlordDashboard(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var totalProperties int64
	storage.DB.Model(&models.Property{}).Where("landlord_id = ?", claims.ID).Count(&totalProperties)
	var occupiedProperties int64
	storage.DB.Model(&models.Property{}).Where("landlord_id = ? AND tenant_id IS NOT NULL", claims.ID).Count(&occupiedProperties)
	var pendingInvitations int64
	storage.DB.Model(&models.Invitation{}).
		Where("landlord_id = ? AND status = ? AND expires_at > ?", claims.ID, "pending", time.Now()).
		Count(&pendingInvitations)
	var unreadMessages int64
	storage.DB.Model(&models.Message{}).Where("recipient_id = ? AND is_read = ?", claims.ID, false).Count(&unreadMessages)
	var inventoryItems int64
	storage.DB.Model(&models.InventoryItem{}).
		Joins("JOIN properties ON properties.id = inventory_items.property_id").
		Where("properties.landlord_id = ?", claims.ID).
		Count(&inventoryItems)

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"total_properties":    totalProperties,
			"occupied_properties": occupiedProperties,
			"vacant_properties":   totalProperties - occupiedProperties,
			"pending_invitations": pendingInvitations,
			"unread_messages":     unreadMessages,
			"inventory_items":     inventoryItems,
		},
		"meta":  iris.Map{},
		"links": iris.Map{},
	})
}
