package routes

import (
	"encoding/json"
	"fmt"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"github.com/dougsimpsoncodes/MyAILandlord-sub005/models"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/storage"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/utils"
)

type CreateInventoryItemInput struct {
	PropertyID uint     `json:"propertyID" validate:"required"`
	Area       string   `json:"area" validate:"required,max=64"`
	Name       string   `json:"name" validate:"required,max=128"`
	Brand      string   `json:"brand" validate:"max=128"`
	Condition  string   `json:"condition" validate:"required,oneof=new good fair poor"`
	Notes      string   `json:"notes" validate:"max=2048"`
	Photos     []string `json:"photos"`
}

func CreateInventoryItem(ctx iris.Context) {
	var input CreateInventoryItemInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	property := getOwnedProperty(fmt.Sprintf("%d", input.PropertyID), claims.ID, ctx)
	if property == nil {
		return
	}

	photosArr := insertImages(input.Photos)
	if photosArr == nil {
		photosArr = []string{}
	}
	photosJSON, _ := json.Marshal(photosArr)

	item := models.InventoryItem{
		PropertyID: input.PropertyID,
		Area:       input.Area,
		Name:       input.Name,
		Brand:      input.Brand,
		Condition:  input.Condition,
		Notes:      input.Notes,
		Photos:     string(photosJSON),
	}

	if err := storage.DB.Create(&item).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&item)
}

// ListPropertyInventory returns a property's inventory grouped by area
func ListPropertyInventory(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	propertyID := ctx.Params().Get("propertyID")

	var property models.Property
	found := storage.DB.Limit(1).Find(&property, propertyID)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	// landlord or current tenant only
	if property.LandlordID != claims.ID && (property.TenantID == nil || *property.TenantID != claims.ID) {
		ctx.StatusCode(iris.StatusForbidden)
		return
	}

	var items []models.InventoryItem
	if err := storage.DB.Where("property_id = ?", property.ID).Order("area ASC, name ASC").Find(&items).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	grouped := map[string][]models.InventoryItem{}
	for _, item := range items {
		grouped[item.Area] = append(grouped[item.Area], item)
	}

	ctx.JSON(iris.Map{"inventory": grouped, "total": len(items)})
}

type UpdateInventoryItemInput struct {
	Area      string   `json:"area" validate:"omitempty,max=64"`
	Name      string   `json:"name" validate:"omitempty,max=128"`
	Brand     string   `json:"brand" validate:"omitempty,max=128"`
	Condition string   `json:"condition" validate:"omitempty,oneof=new good fair poor"`
	Notes     string   `json:"notes" validate:"omitempty,max=2048"`
	Photos    []string `json:"photos"`
}

func UpdateInventoryItem(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	item := getOwnedInventoryItem(ctx.Params().Get("id"), claims.ID, ctx)
	if item == nil {
		return
	}

	var input UpdateInventoryItemInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]any{}
	if input.Area != "" {
		updates["area"] = input.Area
	}
	if input.Name != "" {
		updates["name"] = input.Name
	}
	if input.Brand != "" {
		updates["brand"] = input.Brand
	}
	if input.Condition != "" {
		updates["condition"] = input.Condition
	}
	if input.Notes != "" {
		updates["notes"] = input.Notes
	}
	if input.Photos != nil {
		photosJSON, _ := json.Marshal(insertImages(input.Photos))
		updates["photos"] = string(photosJSON)
	}

	if len(updates) > 0 {
		if err := storage.DB.Model(item).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(item)
}

func DeleteInventoryItem(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	item := getOwnedInventoryItem(ctx.Params().Get("id"), claims.ID, ctx)
	if item == nil {
		return
	}

	if err := storage.DB.Delete(item).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// getOwnedInventoryItem loads an item and checks the caller owns the
// property it belongs to
func getOwnedInventoryItem(id string, landlordID uint, ctx iris.Context) *models.InventoryItem {
	var item models.InventoryItem
	found := storage.DB.Limit(1).Find(&item, id)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil
	}

	if getOwnedProperty(fmt.Sprintf("%d", item.PropertyID), landlordID, ctx) == nil {
		return nil
	}

	return &item
}
