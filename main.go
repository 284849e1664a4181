package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"github.com/dougsimpsoncodes/MyAILandlord-sub005/drafts"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/routes"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/storage"
	"github.com/dougsimpsoncodes/MyAILandlord-sub005/utils"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	storage.InitializeDB()
	storage.InitializeRedis()
	routes.InitDrafts(drafts.NewRedisStore(storage.Redis))

	app := iris.New()
	app.Validator = validator.New()

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	// JWT verifiers
	resetTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("EMAIL_TOKEN_SECRET")))
	resetTokenVerifier.WithDefaultBlocklist()
	resetTokenVerifierMiddleware := resetTokenVerifier.Verify(func() interface{} {
		return new(utils.ForgotPasswordToken)
	})

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		err := ctx.ReadJSON(&tokenInput)
		if err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	// Health check endpoint
	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	user := app.Party("/api/user")
	{
		user.Post("/register", routes.Register)
		user.Post("/login", routes.Login)
		user.Post("/forgotpassword", routes.ForgotPassword)
		user.Post("/resetpassword", resetTokenVerifierMiddleware, routes.ResetPassword)
		user.Post("/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
		user.Get("/{id}", accessTokenVerifierMiddleware, routes.GetUser)
		user.Patch("/{id}/profile", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.UpdateUserProfile)
		user.Patch("/{id}/pushtoken", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AlterPushToken)
		user.Patch("/{id}/settings/notifications", accessTokenVerifierMiddleware, utils.UserIDMiddleware, routes.AllowsNotifications)
	}

	property := app.Party("/api/property", accessTokenVerifierMiddleware)
	{
		property.Post("/", utils.LandlordOnlyMiddleware, routes.CreateProperty)
		property.Get("/", routes.GetUserProperties)
		property.Get("/{id}", routes.GetProperty)
		property.Patch("/{id}", utils.LandlordOnlyMiddleware, routes.UpdateProperty)
		property.Delete("/{id}", utils.LandlordOnlyMiddleware, routes.DeleteProperty)
		property.Delete("/image", utils.LandlordOnlyMiddleware, routes.DeletePropertyImage)
	}

	draft := app.Party("/api/draft", accessTokenVerifierMiddleware, utils.LandlordOnlyMiddleware)
	{
		draft.Post("/", routes.CreateDraft)
		draft.Get("/{id}", routes.GetDraft)
		draft.Patch("/{id}/data", routes.UpdateDraftData)
		draft.Patch("/{id}/step", routes.UpdateDraftStep)
		draft.Post("/{id}/save", routes.SaveDraftNow)
		draft.Post("/{id}/submit", routes.SubmitDraft)
		draft.Delete("/{id}", routes.DeleteDraft)
	}

	inventory := app.Party("/api/inventory", accessTokenVerifierMiddleware)
	{
		inventory.Post("/", utils.LandlordOnlyMiddleware, routes.CreateInventoryItem)
		inventory.Get("/property/{propertyID}", routes.ListPropertyInventory)
		inventory.Patch("/{id}", utils.LandlordOnlyMiddleware, routes.UpdateInventoryItem)
		inventory.Delete("/{id}", utils.LandlordOnlyMiddleware, routes.DeleteInventoryItem)
	}

	invitation := app.Party("/api/invitation", accessTokenVerifierMiddleware)
	{
		invitation.Post("/", utils.LandlordOnlyMiddleware, routes.CreateInvitation)
		invitation.Get("/", utils.LandlordOnlyMiddleware, routes.ListInvitations)
		invitation.Post("/{id}/revoke", utils.LandlordOnlyMiddleware, routes.RevokeInvitation)
		invitation.Post("/accept", routes.AcceptInvitation)
	}

	messages := app.Party("/api/messages", accessTokenVerifierMiddleware)
	{
		messages.Get("/", routes.GetMessages)
		messages.Get("/conversations", routes.GetConversations)
		messages.Post("/", routes.SendMessage)
		messages.Post("/read", routes.MarkMessagesAsRead)
		messages.Post("/typing/{counterpartID}", routes.Typing)
		messages.Get("/typing/{counterpartID}", routes.IsTyping)
	}

	dashboard := app.Party("/api/dashboard", accessTokenVerifierMiddleware, utils.LandlordOnlyMiddleware)
	{
		dashboard.Get("/", routes.GetLandlordDashboard)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "4000"
	}

	log.Println("starting server on port", port)
	app.Listen(":" + port)
}
