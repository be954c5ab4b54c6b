package role

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/access"
	"github.com/parley-chat/parley/internal/config"
	"github.com/parley-chat/parley/internal/db/models"
	"github.com/parley-chat/parley/internal/permissions"
)

// testMemberHeader carries the acting member ID in tests, replacing the
// token middleware.
const testMemberHeader = "X-Test-Member"

func newTestApp() *fiber.App {
	app := fiber.New()

	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get(testMemberHeader); v != "" {
			id, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return c.SendStatus(fiber.StatusBadRequest)
			}

			c.Locals(access.LocalsMemberID, id)
		}

		return c.Next()
	})

	return app
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite in-memory db: %v", err)
	}

	if err := db.AutoMigrate(&models.Role{}, &models.Member{}, &models.MemberRole{}); err != nil {
		t.Fatalf("failed to migrate models: %v", err)
	}

	return db
}

// setupTest wires a role handler with an admin member and a plain member.
func setupTest(t *testing.T) (*fiber.App, *gorm.DB, uint64, uint64) {
	t.Helper()

	app := newTestApp()
	db := newTestDB(t)

	everyone := models.Role{Name: "@everyone", Permissions: uint64(permissions.DefaultEveryone), IsEveryone: true}
	if err := db.Create(&everyone).Error; err != nil {
		t.Fatalf("failed to seed everyone role: %v", err)
	}

	manager := models.Role{Name: "managers", Permissions: uint64(permissions.FlagManageRoles), Position: 1}
	if err := db.Create(&manager).Error; err != nil {
		t.Fatalf("failed to seed manager role: %v", err)
	}

	admin := models.Member{Username: "admin"}
	plain := models.Member{Username: "plain"}

	for _, m := range []*models.Member{&admin, &plain} {
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("failed to seed member: %v", err)
		}
	}

	if err := db.Create(&models.MemberRole{MemberID: admin.ID, RoleID: manager.ID}).Error; err != nil {
		t.Fatalf("failed to assign manager role: %v", err)
	}

	var s Service
	if err := s.Init(app, &config.Config{}, db, access.NewService(db)); err != nil {
		t.Fatalf("handler init failed: %v", err)
	}

	return app, db, admin.ID, plain.ID
}

func perform(t *testing.T, app *fiber.App, method, target string, memberID uint64, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	if memberID != 0 {
		req.Header.Set(testMemberHeader, strconv.FormatUint(memberID, 10))
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}

	return resp
}

func TestList(t *testing.T) {
	app, _, _, plainID := setupTest(t)

	resp := perform(t, app, http.MethodGet, Path, plainID, "")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var roles []response
	if err := json.NewDecoder(resp.Body).Decode(&roles); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if len(roles) != 2 {
		t.Fatalf("expected 2 roles, got %d", len(roles))
	}

	// Highest position first.
	if roles[0].Name != "managers" || !roles[1].IsEveryone {
		t.Fatalf("unexpected ordering: %+v", roles)
	}
}

func TestCreate(t *testing.T) {
	app, _, adminID, plainID := setupTest(t)

	// Plain member lacks MANAGE_ROLES.
	resp := perform(t, app, http.MethodPost, Path, plainID, `{"name":"mods","permissions":"1024"}`)
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for plain member, got %d", resp.StatusCode)
	}

	// Unauthenticated request.
	resp = perform(t, app, http.MethodPost, Path, 0, `{"name":"mods","permissions":"1024"}`)
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without member, got %d", resp.StatusCode)
	}

	// Manager may create.
	resp = perform(t, app, http.MethodPost, Path, adminID, `{"name":"mods","permissions":"1024","position":2}`)
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	var created response
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if created.Permissions != "1024" || len(created.PermissionNames) != 1 {
		t.Fatalf("unexpected created role: %+v", created)
	}

	// Duplicate name conflicts.
	resp = perform(t, app, http.MethodPost, Path, adminID, `{"name":"mods","permissions":"1024"}`)
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate role, got %d", resp.StatusCode)
	}
}

func TestCreateRejectsUnknownBits(t *testing.T) {
	app, _, adminID, _ := setupTest(t)

	// Bit 60 is outside the registered flag space.
	raw := strconv.FormatUint(uint64(1)<<60, 10)

	resp := perform(t, app, http.MethodPost, Path, adminID, `{"name":"broken","permissions":"`+raw+`"}`)
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown bits, got %d", resp.StatusCode)
	}
}

func TestDeleteEveryoneForbidden(t *testing.T) {
	app, db, adminID, _ := setupTest(t)

	var everyone models.Role
	if err := db.Where("is_everyone = ?", true).First(&everyone).Error; err != nil {
		t.Fatalf("failed to load everyone role: %v", err)
	}

	resp := perform(t, app, http.MethodDelete, Path+"/"+strconv.FormatUint(everyone.ID, 10), adminID, "")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 deleting everyone role, got %d", resp.StatusCode)
	}
}
