// Package member implements the guild member API.
package member

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/access"
	"github.com/parley-chat/parley/internal/config"
	controller "github.com/parley-chat/parley/internal/db/controller/member"
	rolectl "github.com/parley-chat/parley/internal/db/controller/role"
	"github.com/parley-chat/parley/internal/db/models"
	"github.com/parley-chat/parley/internal/permissions"
	"github.com/parley-chat/parley/internal/web/handler"
)

const (
	// Path is the route group for members.
	Path = handler.APIPrefix + "/members"
)

// Service is the member handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the member handler.
var Handler = Service{}

type createPayload struct {
	Username string `json:"username" validate:"required,max=32"`
	Nickname string `json:"nickname" validate:"max=32"`
	Bot      bool   `json:"bot"`
}

// response is the wire representation of a member.
type response struct {
	ID       uint64   `json:"id"`
	Username string   `json:"username"`
	Nickname string   `json:"nickname,omitempty"`
	Bot      bool     `json:"bot"`
	RoleIDs  []uint64 `json:"role_ids"`
}

func newResponse(m *models.Member) response {
	roleIDs := make([]uint64, len(m.Roles))
	for i, r := range m.Roles {
		roleIDs[i] = r.ID
	}

	return response{
		ID:       m.ID,
		Username: m.Username,
		Nickname: m.Nickname,
		Bot:      m.Bot,
		RoleIDs:  roleIDs,
	}
}

// Init initializes the member handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, acc *access.Service) error {
	if app == nil || cfg == nil || db == nil || acc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	manageGuild := access.RequireFlag(acc, permissions.FlagManageGuild)
	manageRoles := access.RequireFlag(acc, permissions.FlagManageRoles)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Get("/:id", s.Get)
		router.Post(handler.RootPath, manageGuild, s.Create)
		router.Delete("/:id", access.RequireFlag(acc, permissions.FlagKickMembers), s.Delete)
		router.Put("/:id/roles/:roleID", manageRoles, s.AssignRole)
		router.Delete("/:id/roles/:roleID", manageRoles, s.RemoveRole)
	})

	return nil
}

// List returns all members.
func (s *Service) List(c *fiber.Ctx) error {
	members, err := controller.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list members")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list members"})
	}

	out := make([]response, len(members))
	for i := range members {
		out[i] = newResponse(&members[i])
	}

	return c.JSON(out)
}

// Get returns a single member with their role IDs.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid member id"})
	}

	member, err := controller.GetByID(s.db, id)
	if err != nil {
		if errors.Is(err, controller.ErrMemberNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
		}

		log.Error().Err(err).Uint64("member_id", id).Msg("failed to load member")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load member"})
	}

	return c.JSON(newResponse(member))
}

// Create creates a new member.
func (s *Service) Create(c *fiber.Ctx) error {
	var body createPayload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ValidationMessages(err)})
	}

	member, err := controller.Create(s.db, body.Username, body.Nickname, body.Bot)
	if err != nil {
		if errors.Is(err, controller.ErrMemberAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "member already exists"})
		}

		log.Error().Err(err).Str("username", body.Username).Msg("failed to create member")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create member"})
	}

	log.Info().Uint64("member_id", member.ID).Str("username", member.Username).Msg("member created")

	return c.Status(fiber.StatusCreated).JSON(newResponse(member))
}

// Delete removes a member from the guild.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid member id"})
	}

	if err := controller.Delete(s.db, id); err != nil {
		if errors.Is(err, controller.ErrMemberNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
		}

		log.Error().Err(err).Uint64("member_id", id).Msg("failed to delete member")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete member"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// AssignRole adds a role to a member. Assigning an already held role is a
// no-op.
func (s *Service) AssignRole(c *fiber.Ctx) error {
	memberID, err := handler.ParseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid member id"})
	}

	roleID, err := handler.ParseID(c, "roleID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid role id"})
	}

	if err := controller.AssignRole(s.db, memberID, roleID); err != nil {
		switch {
		case errors.Is(err, controller.ErrMemberNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
		case errors.Is(err, rolectl.ErrRoleNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "role not found"})
		}

		log.Error().Err(err).Uint64("member_id", memberID).Uint64("role_id", roleID).Msg("failed to assign role")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to assign role"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RemoveRole removes a role from a member.
func (s *Service) RemoveRole(c *fiber.Ctx) error {
	memberID, err := handler.ParseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid member id"})
	}

	roleID, err := handler.ParseID(c, "roleID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid role id"})
	}

	if err := controller.RemoveRole(s.db, memberID, roleID); err != nil {
		switch {
		case errors.Is(err, controller.ErrMemberNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
		case errors.Is(err, controller.ErrRoleNotAssigned):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "role is not assigned to member"})
		}

		log.Error().Err(err).Uint64("member_id", memberID).Uint64("role_id", roleID).Msg("failed to remove role")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to remove role"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
