package web

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/access"
	"github.com/parley-chat/parley/internal/db/controller/apitoken"
	"github.com/parley-chat/parley/internal/db/models"
)

func newAuthTestApp(t *testing.T) (*fiber.App, *gorm.DB, string, uint64) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.Member{}, &models.APIToken{}); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	member := models.Member{Username: "ada"}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to seed member: %v", err)
	}

	_, credential, err := apitoken.Create(db, "test", member.ID)
	if err != nil {
		t.Fatalf("failed to create token: %v", err)
	}

	app := fiber.New()
	app.Use(TokenAuthMiddleware(db))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, ok := access.ActingMember(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}

		return c.SendString(strconv.FormatUint(id, 10))
	})

	return app, db, credential, member.ID
}

func performAuth(t *testing.T, app *fiber.App, authorization string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	return resp
}

func TestTokenAuthMiddleware(t *testing.T) {
	app, db, credential, memberID := newAuthTestApp(t)

	// No header.
	resp := performAuth(t, app, "")
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without header, got %d", resp.StatusCode)
	}

	// Wrong scheme.
	resp = performAuth(t, app, "Basic dXNlcjpwYXNz")
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong scheme, got %d", resp.StatusCode)
	}

	// Malformed credential.
	resp = performAuth(t, app, "Bearer garbage")
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed credential, got %d", resp.StatusCode)
	}

	// Wrong secret.
	resp = performAuth(t, app, "Bearer 1.wrongsecretwrongsecretwrongsecretwrong")
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong secret, got %d", resp.StatusCode)
	}

	// Valid token resolves to the bound member.
	resp = performAuth(t, app, "Bearer "+credential)
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for valid token, got %d", resp.StatusCode)
	}

	buf := make([]byte, 32)
	n, _ := resp.Body.Read(buf)

	if got := string(buf[:n]); got != strconv.FormatUint(memberID, 10) {
		t.Fatalf("expected member id %d, got %q", memberID, got)
	}

	// Authentication updates the last-used timestamp.
	var token models.APIToken
	if err := db.First(&token).Error; err != nil {
		t.Fatalf("failed to load token: %v", err)
	}

	if token.LastUsedAt == nil {
		t.Fatal("expected last-used timestamp after authentication")
	}
}
