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

func CreateProperty(ctx iris.Context) {
	var input CreatePropertyInput

	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	property := propertyFromInput(&input, claims.ID)

	result := storage.DB.Create(property)
	if result.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(property)
}

func GetProperty(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	var property models.Property
	propertyExists := storage.DB.Preload("Landlord").Preload("Tenant").Preload("Inventory").Find(&property, id)

	if propertyExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	if propertyExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	ctx.JSON(&property)
}

// GetUserProperties lists the calling user's properties: owned ones
// for a landlord, the leased one(s) for a tenant
func GetUserProperties(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	var properties []models.Property
	var query error
	if claims.Role == "landlord" {
		query = storage.DB.Where("landlord_id = ?", claims.ID).Order("created_at DESC").Find(&properties).Error
	} else {
		query = storage.DB.Where("tenant_id = ?", claims.ID).Order("created_at DESC").Find(&properties).Error
	}

	if query != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(properties)
}

func UpdateProperty(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	claims := jwt.Get(ctx).(*utils.AccessToken)

	property := getOwnedProperty(id, claims.ID, ctx)
	if property == nil {
		return
	}

	var input UpdatePropertyInput
	err := ctx.ReadJSON(&input)
	if err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]any{}
	if input.Title != "" {
		updates["title"] = input.Title
	}
	if input.Description != "" {
		updates["description"] = input.Description
	}
	if input.MonthlyRent > 0 {
		updates["monthly_rent"] = input.MonthlyRent
	}
	if input.Amenities != nil {
		amenitiesJSON, _ := json.Marshal(input.Amenities)
		updates["amenities"] = string(amenitiesJSON)
	}
	if input.IsActive != nil {
		updates["is_active"] = input.IsActive
	}
	if input.Images != nil {
		imagesArr := insertImages(input.Images)
		imagesJSON, _ := json.Marshal(imagesArr)
		updates["images"] = string(imagesJSON)
	}

	if len(updates) > 0 {
		if err := storage.DB.Model(property).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	ctx.JSON(property)
}

func DeleteProperty(ctx iris.Context) {
	params := ctx.Params()
	id := params.Get("id")

	claims := jwt.Get(ctx).(*utils.AccessToken)

	property := getOwnedProperty(id, claims.ID, ctx)
	if property == nil {
		return
	}

	if err := storage.DB.Delete(property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

type DeletePropertyImageInput struct {
	PropertyID uint   `json:"propertyID" validate:"required"`
	ImageURL   string `json:"imageURL" validate:"required,url"`
}

func DeletePropertyImage(ctx iris.Context) {
	var input DeletePropertyImageInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	property := getOwnedProperty(fmt.Sprintf("%d", input.PropertyID), claims.ID, ctx)
	if property == nil {
		return
	}

	var images []string
	if property.Images != "" {
		if err := json.Unmarshal([]byte(property.Images), &images); err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	remaining := make([]string, 0, len(images))
	for _, img := range images {
		if img != input.ImageURL {
			remaining = append(remaining, img)
		}
	}

	if len(remaining) == len(images) {
		utils.CreateNotFound(ctx)
		return
	}

	storage.DeleteImage(input.ImageURL)

	imagesJSON, _ := json.Marshal(remaining)
	if err := storage.DB.Model(property).Update("images", string(imagesJSON)).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{"deleted": true})
}

// getOwnedProperty loads a property and enforces landlord ownership,
// writing the error response itself when it returns nil
func getOwnedProperty(id string, landlordID uint, ctx iris.Context) *models.Property {
	var property models.Property
	propertyExists := storage.DB.Find(&property, id)

	if propertyExists.Error != nil {
		utils.CreateInternalServerError(ctx)
		return nil
	}
	if propertyExists.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return nil
	}
	if property.LandlordID != landlordID {
		ctx.StatusCode(iris.StatusForbidden)
		return nil
	}

	return &property
}

// insertImages uploads any base64 payloads in the list and passes
// through already-hosted URLs
func insertImages(images []string) []string {
	urls := make([]string, 0, len(images))
	for _, img := range images {
		if img == "" {
			continue
		}
		if len(img) > 4 && img[:4] == "http" {
			urls = append(urls, img)
			continue
		}
		if url := storage.UploadBase64Image(img, utils.GenerateShortToken(8)); url != "" {
			urls = append(urls, url)
		}
	}
	return urls
}

func propertyFromInput(input *CreatePropertyInput, landlordID uint) *models.Property {
	amenities := input.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	amenitiesJSON, _ := json.Marshal(amenities)

	imagesArr := insertImages(input.Images)
	if imagesArr == nil {
		imagesArr = []string{}
	}
	imagesJSON, _ := json.Marshal(imagesArr)

	return &models.Property{
		LandlordID:   landlordID,
		Title:        input.Title,
		Description:  input.Description,
		PropertyType: input.PropertyType,
		AddressLine1: input.AddressLine1,
		AddressLine2: input.AddressLine2,
		City:         input.City,
		State:        input.State,
		Zip:          input.Zip,
		Country:      input.Country,
		Bedrooms:     input.Bedrooms,
		Bathrooms:    input.Bathrooms,
		MonthlyRent:  input.MonthlyRent,
		Currency:     input.Currency,
		Amenities:    string(amenitiesJSON),
		Images:       string(imagesJSON),
		IsActive:     input.IsActive,
	}
}

type CreatePropertyInput struct {
	Title        string   `json:"title" validate:"required,max=256"`
	Description  string   `json:"description" validate:"max=4096"`
	PropertyType string   `json:"propertyType" validate:"required,oneof=apartment house condo townhouse"`
	AddressLine1 string   `json:"addressLine1" validate:"required,max=512"`
	AddressLine2 string   `json:"addressLine2" validate:"max=512"`
	City         string   `json:"city" validate:"required,max=256"`
	State        string   `json:"state" validate:"max=256"`
	Zip          string   `json:"zip" validate:"max=32"`
	Country      string   `json:"country" validate:"required,max=256"`
	Bedrooms     int      `json:"bedrooms" validate:"min=0,max=100"`
	Bathrooms    float32  `json:"bathrooms" validate:"min=0,max=100"`
	MonthlyRent  float32  `json:"monthlyRent" validate:"min=0"`
	Currency     string   `json:"currency" validate:"max=8"`
	Amenities    []string `json:"amenities"`
	Images       []string `json:"images"`
	IsActive     *bool    `json:"isActive"`
}

type UpdatePropertyInput struct {
	Title       string   `json:"title" validate:"omitempty,max=256"`
	Description string   `json:"description" validate:"omitempty,max=4096"`
	MonthlyRent float32  `json:"monthlyRent" validate:"omitempty,min=0"`
	Amenities   []string `json:"amenities"`
	Images      []string `json:"images"`
	IsActive    *bool    `json:"isActive"`
}
