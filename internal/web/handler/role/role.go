// Package role implements the guild role API.
package role

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/access"
	"github.com/parley-chat/parley/internal/config"
	controller "github.com/parley-chat/parley/internal/db/controller/role"
	"github.com/parley-chat/parley/internal/db/models"
	"github.com/parley-chat/parley/internal/permissions"
	"github.com/parley-chat/parley/internal/web/handler"
)

const (
	// Path is the route group for roles.
	Path = handler.APIPrefix + "/roles"
)

// Service is the role handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the role handler.
var Handler = Service{}

// payload is the request body for creating and updating roles. Permission
// bit fields travel as decimal strings.
type payload struct {
	Name        string `json:"name" validate:"required,max=100"`
	Permissions uint64 `json:"permissions,string"`
	Position    int    `json:"position"`
}

// response is the wire representation of a role.
type response struct {
	ID              uint64   `json:"id"`
	Name            string   `json:"name"`
	Permissions     string   `json:"permissions"`
	PermissionNames []string `json:"permission_names"`
	Position        int      `json:"position"`
	IsEveryone      bool     `json:"is_everyone"`
}

func newResponse(r *models.Role) response {
	set := permissions.Sanitize(r.Permissions)

	return response{
		ID:              r.ID,
		Name:            r.Name,
		Permissions:     strconv.FormatUint(uint64(set), 10),
		PermissionNames: set.Names(),
		Position:        r.Position,
		IsEveryone:      r.IsEveryone,
	}
}

// Init initializes the role handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, acc *access.Service) error {
	if app == nil || cfg == nil || db == nil || acc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	manageRoles := access.RequireFlag(acc, permissions.FlagManageRoles)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Get("/:id", s.Get)
		router.Post(handler.RootPath, manageRoles, s.Create)
		router.Patch("/:id", manageRoles, s.Update)
		router.Delete("/:id", manageRoles, s.Delete)
	})

	return nil
}

// List returns all roles ordered by position.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := controller.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list roles")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list roles"})
	}

	out := make([]response, len(roles))
	for i := range roles {
		out[i] = newResponse(&roles[i])
	}

	return c.JSON(out)
}

// Get returns a single role.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid role id"})
	}

	role, err := controller.GetByID(s.db, id)
	if err != nil {
		if errors.Is(err, controller.ErrRoleNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "role not found"})
		}

		log.Error().Err(err).Uint64("role_id", id).Msg("failed to load role")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load role"})
	}

	return c.JSON(newResponse(role))
}

// Create creates a new role.
func (s *Service) Create(c *fiber.Ctx) error {
	var body payload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ValidationMessages(err)})
	}

	role, err := controller.Create(s.db, body.Name, body.Permissions, body.Position)
	if err != nil {
		switch {
		case errors.Is(err, controller.ErrRoleAlreadyExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "role already exists"})
		case errors.Is(err, permissions.ErrInvalidFlag):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "permission bit field contains unknown bits"})
		}

		log.Error().Err(err).Str("name", body.Name).Msg("failed to create role")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create role"})
	}

	log.Info().Uint64("role_id", role.ID).Str("name", role.Name).Msg("role created")

	return c.Status(fiber.StatusCreated).JSON(newResponse(role))
}

// Update updates a role.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid role id"})
	}

	var body payload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ValidationMessages(err)})
	}

	role, err := controller.Update(s.db, id, body.Name, body.Permissions, body.Position)
	if err != nil {
		switch {
		case errors.Is(err, controller.ErrRoleNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "role not found"})
		case errors.Is(err, permissions.ErrInvalidFlag):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "permission bit field contains unknown bits"})
		}

		log.Error().Err(err).Uint64("role_id", id).Msg("failed to update role")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update role"})
	}

	return c.JSON(newResponse(role))
}

// Delete removes a role. The @everyone role is immutable.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid role id"})
	}

	if err := controller.Delete(s.db, id); err != nil {
		switch {
		case errors.Is(err, controller.ErrRoleNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "role not found"})
		case errors.Is(err, controller.ErrEveryoneRoleImmutable):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "the everyone role cannot be deleted"})
		}

		log.Error().Err(err).Uint64("role_id", id).Msg("failed to delete role")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete role"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
