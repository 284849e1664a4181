package routes

import (
	"errors"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"

	"github.com/dougsimpsoncodes/MyAILandlord-sub005/drafts"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/models"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/storage"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/utils"
)

var draftManager *drafts.Manager

// InitDrafts wires the draft endpoints to a store. Called from main
// after Redis is up; tests inject a fake store instead.
func InitDrafts(store drafts.Store) {
	draftManager = drafts.NewManager(store)
}

type CreateDraftInput struct {
	PropertyData map[string]any `json:"propertyData"`
}

func CreateDraft(ctx iris.Context) {
	var input CreateDraftInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	draft, err := draftManager.Create(ctx.Request().Context(), claims.ID, input.PropertyData)
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(draft)
}

func GetDraft(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	draftID := ctx.Params().Get("id")

	controller, err := loadDraftController(ctx, claims.ID, draftID)
	if controller == nil || err != nil {
		return
	}

	ctx.JSON(controller.Draft())
}

type UpdateDraftDataInput struct {
	PropertyData map[string]any `json:"propertyData" validate:"required"`
}

// UpdateDraftData merges a step's partial fields into the draft. The
// write to the store is debounced; bursts from one onboarding screen
// collapse into a single save.
func UpdateDraftData(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	draftID := ctx.Params().Get("id")

	var input UpdateDraftDataInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	controller, err := loadDraftController(ctx, claims.ID, draftID)
	if controller == nil || err != nil {
		return
	}

	controller.UpdatePropertyData(input.PropertyData)
	ctx.JSON(controller.Draft())
}

type UpdateDraftStepInput struct {
	CurrentStep *int `json:"currentStep" validate:"required"`
}

func UpdateDraftStep(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	draftID := ctx.Params().Get("id")

	var input UpdateDraftStepInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	if *input.CurrentStep < 0 {
		utils.CreateError(iris.StatusBadRequest, "Bad Request", "currentStep must not be negative.", ctx)
		return
	}

	controller, err := loadDraftController(ctx, claims.ID, draftID)
	if controller == nil || err != nil {
		return
	}

	controller.UpdateCurrentStep(*input.CurrentStep)
	ctx.JSON(controller.Draft())
}

// SaveDraftNow forces the draft through to the store, skipping the
// debounce window
func SaveDraftNow(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	draftID := ctx.Params().Get("id")

	controller, err := loadDraftController(ctx, claims.ID, draftID)
	if controller == nil || err != nil {
		return
	}

	if err := controller.SaveDraft(ctx.Request().Context()); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(controller.Draft())
}

func DeleteDraft(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	draftID := ctx.Params().Get("id")

	draftManager.Release(claims.ID, draftID)
	if err := draftManager.Store().DeleteDraft(ctx.Request().Context(), claims.ID, draftID); err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusNoContent)
}

// SubmitDraft is the terminal step of onboarding: the accumulated
// draft becomes a real Property and the draft is discarded
func SubmitDraft(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	draftID := ctx.Params().Get("id")

	controller, err := loadDraftController(ctx, claims.ID, draftID)
	if controller == nil || err != nil {
		return
	}

	draft := controller.Draft()
	input, decodeErr := draftToPropertyInput(draft)
	if decodeErr != nil {
		utils.CreateError(iris.StatusUnprocessableEntity, "Incomplete Draft", decodeErr.Error(), ctx)
		return
	}

	property := propertyFromInput(input, claims.ID)

	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		return tx.Create(property).Error
	})
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	draftManager.Release(claims.ID, draftID)
	if err := draftManager.Store().DeleteDraft(ctx.Request().Context(), claims.ID, draftID); err != nil {
		// the property exists; a stale draft is only noise by now
		ctx.Application().Logger().Warnf("deleting submitted draft %s: %v", draftID, err)
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(property)
}

// loadDraftController resolves the live controller for a draft,
// answering 404/500 itself when it returns nil or an error
func loadDraftController(ctx iris.Context, userID uint, draftID string) (*drafts.Controller, error) {
	controller, err := draftManager.Controller(ctx.Request().Context(), userID, draftID)
	if err != nil {
		var decodeErr *drafts.DecodeError
		if errors.As(err, &decodeErr) {
			utils.CreateError(iris.StatusInternalServerError, "Corrupt Draft", "The stored draft could not be decoded.", ctx)
			return nil, err
		}
		utils.CreateInternalServerError(ctx)
		return nil, err
	}
	if controller == nil {
		utils.CreateNotFound(ctx)
		return nil, nil
	}
	return controller, nil
}

// draftToPropertyInput maps the loosely-typed accumulated form fields
// onto the validated property input, failing on missing requireds
func draftToPropertyInput(draft *models.PropertyDraft) (*CreatePropertyInput, error) {
	input := &CreatePropertyInput{
		Title:        stringField(draft.PropertyData, "title"),
		Description:  stringField(draft.PropertyData, "description"),
		PropertyType: stringField(draft.PropertyData, "propertyType"),
		AddressLine1: stringField(draft.PropertyData, "addressLine1"),
		AddressLine2: stringField(draft.PropertyData, "addressLine2"),
		City:         stringField(draft.PropertyData, "city"),
		State:        stringField(draft.PropertyData, "state"),
		Zip:          stringField(draft.PropertyData, "zip"),
		Country:      stringField(draft.PropertyData, "country"),
		Bedrooms:     intField(draft.PropertyData, "bedrooms"),
		Bathrooms:    float32Field(draft.PropertyData, "bathrooms"),
		MonthlyRent:  float32Field(draft.PropertyData, "monthlyRent"),
		Currency:     stringField(draft.PropertyData, "currency"),
		Amenities:    stringSliceField(draft.PropertyData, "amenities"),
		Images:       stringSliceField(draft.PropertyData, "images"),
	}

	if input.Title == "" || input.PropertyType == "" || input.AddressLine1 == "" || input.City == "" || input.Country == "" {
		return nil, errors.New("draft is missing required property fields")
	}

	return input, nil
}

func stringField(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func intField(data map[string]any, key string) int {
	// JSON numbers decode as float64
	if v, ok := data[key].(float64); ok {
		return int(v)
	}
	return 0
}

func float32Field(data map[string]any, key string) float32 {
	if v, ok := data[key].(float64); ok {
		return float32(v)
	}
	return 0
}

func stringSliceField(data map[string]any, key string) []string {
	raw, ok := data[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
