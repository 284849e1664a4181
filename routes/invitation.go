package routes

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"

	"github.com/dougsimpsoncodes/MyAILandlord-sub005/models"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/services"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/storage"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/utils"
)

const invitationTTL = 7 * 24 * time.Hour

var errPropertyOccupied = errors.New("property already has a tenant")

type CreateInvitationInput struct {
	PropertyID uint   `json:"propertyID" validate:"required"`
	Email      string `json:"email" validate:"required,email,max=256"`
}

// CreateInvitation lets a landlord invite a tenant to one of their
// properties. The invitee gets an accept token by email.
func CreateInvitation(ctx iris.Context) {
	var input CreateInvitationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	property := getOwnedProperty(fmt.Sprintf("%d", input.PropertyID), claims.ID, ctx)
	if property == nil {
		return
	}

	if property.TenantID != nil {
		utils.CreateError(iris.StatusConflict, "Conflict", "Property already has a tenant.", ctx)
		return
	}

	email := strings.ToLower(input.Email)

	// one pending invitation per (property, email)
	var existing models.Invitation
	pending := storage.DB.
		Where("property_id = ? AND email = ? AND status = ?", input.PropertyID, email, "pending").
		Limit(1).Find(&existing)
	if pending.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if pending.RowsAffected > 0 {
		utils.CreateError(iris.StatusConflict, "Conflict", "An invitation for this email is already pending.", ctx)
		return
	}

	invitation := models.Invitation{
		PropertyID: input.PropertyID,
		LandlordID: claims.ID,
		Email:      email,
		Status:     "pending",
		ExpiresAt:  time.Now().Add(invitationTTL),
	}

	if err := storage.DB.Create(&invitation).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	token, tokenErr := utils.CreateInvitationToken(invitation.ID, email, invitation.ExpiresAt)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	link := "myailandlord://invitation/" + token
	subject := "You're invited to " + property.Title
	html := `
	<p>You have been invited to join <b>` + property.Title + `</b> as a
	tenant. Open the link below in the app to accept. The invitation
	expires in 7 days.<br /><a href=` + link + `>Accept Invitation</a>
	</p><br />`

	if mailErr := utils.SendMail(email, subject, html); mailErr != nil {
		log.Println("invitation mail failed:", mailErr)
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(&invitation)
}

// ListInvitations returns the landlord's invitations, newest first,
// with expired ones flagged
func ListInvitations(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	// expire stale pending invitations in one write before listing
	expire := storage.DB.Model(&models.Invitation{}).
		Where("landlord_id = ? AND status = ? AND expires_at < ?", claims.ID, "pending", time.Now()).
		Update("status", "expired")
	if expire.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	var invitations []models.Invitation
	err := storage.DB.
		Where("landlord_id = ?", claims.ID).
		Preload("Property").
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.JSONPage(ctx, invitations, 1, len(invitations), int64(len(invitations)))
}

func RevokeInvitation(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)
	id := ctx.Params().Get("id")

	var invitation models.Invitation
	found := storage.DB.Where("id = ? AND landlord_id = ?", id, claims.ID).Limit(1).Find(&invitation)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	if invitation.Status != "pending" {
		utils.CreateError(iris.StatusConflict, "Conflict", "Only pending invitations can be revoked.", ctx)
		return
	}

	if err := storage.DB.Model(&invitation).Update("status", "revoked").Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(&invitation)
}

type AcceptInvitationInput struct {
	Token string `json:"token" validate:"required"`
}

// AcceptInvitation links the calling tenant to the invited property.
// The invitation must be pending, unexpired, and addressed to the
// caller's email.
func AcceptInvitation(ctx iris.Context) {
	var input AcceptInvitationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims := jwt.Get(ctx).(*utils.AccessToken)

	inviteClaims, parseErr := utils.ParseInvitationToken(input.Token)
	if parseErr != nil {
		utils.CreateError(iris.StatusUnauthorized, "Invalid Token", "The invitation token is invalid or expired.", ctx)
		return
	}

	var tenant models.User
	if err := storage.DB.First(&tenant, claims.ID).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if !strings.EqualFold(tenant.Email, inviteClaims.Email) {
		utils.CreateError(iris.StatusForbidden, "Forbidden", "This invitation was issued to a different email.", ctx)
		return
	}

	var invitation models.Invitation
	found := storage.DB.Preload("Property").Limit(1).Find(&invitation, inviteClaims.InvitationID)
	if found.Error != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	if found.RowsAffected == 0 {
		utils.CreateNotFound(ctx)
		return
	}

	if invitation.Status != "pending" {
		utils.CreateError(iris.StatusConflict, "Conflict", "The invitation is no longer pending.", ctx)
		return
	}
	if invitation.ExpiresAt.Before(time.Now()) {
		storage.DB.Model(&invitation).Update("status", "expired")
		utils.CreateError(iris.StatusConflict, "Conflict", "The invitation has expired.", ctx)
		return
	}

	// Two candidates can hold pending invitations to the same unit;
	// the vacancy check rides the update itself, and the tenant link
	// and status flip commit together.
	txErr := storage.DB.Transaction(func(tx *gorm.DB) error {
		link := tx.Model(&models.Property{}).
			Where("id = ? AND tenant_id IS NULL", invitation.PropertyID).
			Update("tenant_id", claims.ID)
		if link.Error != nil {
			return link.Error
		}
		if link.RowsAffected == 0 {
			return errPropertyOccupied
		}
		return tx.Model(&invitation).Update("status", "accepted").Error
	})
	if errors.Is(txErr, errPropertyOccupied) {
		utils.CreateError(iris.StatusConflict, "Conflict", "Property already has a tenant.", ctx)
		return
	}
	if txErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	tenantName := fmt.Sprintf("%s %s", tenant.FirstName, tenant.LastName)
	notificationService := services.NewNotificationService()
	go notificationService.SendInvitationAcceptedNotification(invitation.LandlordID, tenantName, &invitation.Property)

	ctx.JSON(iris.Map{"accepted": true, "propertyID": invitation.PropertyID})
}
