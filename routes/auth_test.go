package routes

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"github.com/dougsimpsoncodes/MyAILandlord-sub005/utils"
)

// buildTestApp creates a minimal iris app with the role-guarded routes
// and a JWT verifier. Only paths that fail before touching the
// database are exercised here.
func buildTestApp() *iris.Application {
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")
	app := iris.New()
	app.Validator = validator.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} { return new(utils.AccessToken) })

	invitation := app.Party("/api/invitation", accessTokenVerifierMiddleware)
	{
		invitation.Post("/", utils.LandlordOnlyMiddleware, CreateInvitation)
	}
	messages := app.Party("/api/messages", accessTokenVerifierMiddleware)
	{
		messages.Post("/", SendMessage)
	}
	if err := app.Build(); err != nil {
		panic(err)
	}
	return app
}

func signTestToken(role string) string {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), 15*time.Minute)
	token, _ := signer.Sign(utils.AccessToken{ID: 1, Role: role})
	return string(token)
}

func TestInvitationLandlordRBAC(t *testing.T) {
	app := buildTestApp()

	// No token
	req := httptest.NewRequest(http.MethodPost, "/api/invitation", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	if resp.Code == http.StatusOK || resp.Code == http.StatusCreated {
		t.Fatalf("expected failure without token, got %d", resp.Code)
	}

	// Tenant role -> 403 from the landlord-only middleware
	req2 := httptest.NewRequest(http.MethodPost, "/api/invitation", strings.NewReader(`{}`))
	req2.Header.Set("Authorization", "Bearer "+signTestToken("tenant"))
	req2.Header.Set("Content-Type", "application/json")
	resp2 := httptest.NewRecorder()
	app.ServeHTTP(resp2, req2)
	if resp2.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for tenant role, got %d", resp2.Code)
	}
}

func TestInvitationEmailValidatedBeforeMutation(t *testing.T) {
	app := buildTestApp()

	body := `{"propertyID": 1, "email": "not-an-email"}`
	req := httptest.NewRequest(http.MethodPost, "/api/invitation", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signTestToken("landlord"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid email, got %d", resp.Code)
	}
}

func TestSendMessageValidation(t *testing.T) {
	app := buildTestApp()

	// missing content
	body := `{"recipientId": 2}`
	req := httptest.NewRequest(http.MethodPost, "/api/messages", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+signTestToken("tenant"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing content, got %d", resp.Code)
	}
}
