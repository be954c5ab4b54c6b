// Package token implements the API token management endpoints.
package token

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/access"
	"github.com/parley-chat/parley/internal/config"
	controller "github.com/parley-chat/parley/internal/db/controller/apitoken"
	"github.com/parley-chat/parley/internal/db/models"
	"github.com/parley-chat/parley/internal/permissions"
	"github.com/parley-chat/parley/internal/web/handler"
)

const (
	// Path is the route group for API tokens.
	Path = handler.APIPrefix + "/tokens"
)

// Service is the token handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the token handler.
var Handler = Service{}

type createPayload struct {
	Name     string `json:"name" validate:"required,max=100"`
	MemberID uint64 `json:"member_id" validate:"required"`
}

// response is the wire representation of a token. Token is only populated
// on creation: the plaintext credential cannot be recovered later.
type response struct {
	ID         uint64     `json:"id"`
	Name       string     `json:"name"`
	MemberID   uint64     `json:"member_id"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	Token      string     `json:"token,omitempty"`
}

func newResponse(t *models.APIToken, credential string) response {
	return response{
		ID:         t.ID,
		Name:       t.Name,
		MemberID:   t.MemberID,
		LastUsedAt: t.LastUsedAt,
		Token:      credential,
	}
}

// Init initializes the token handler. Token management requires
// MANAGE_GUILD.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, acc *access.Service) error {
	if app == nil || cfg == nil || db == nil || acc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	manageGuild := access.RequireFlag(acc, permissions.FlagManageGuild)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, manageGuild, s.List)
		router.Post(handler.RootPath, manageGuild, s.Create)
		router.Delete("/:id", manageGuild, s.Delete)
	})

	return nil
}

// List returns all tokens, without secrets.
func (s *Service) List(c *fiber.Ctx) error {
	tokens, err := controller.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list tokens")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list tokens"})
	}

	out := make([]response, len(tokens))
	for i := range tokens {
		out[i] = newResponse(&tokens[i], "")
	}

	return c.JSON(out)
}

// Create issues a new token bound to a member. The full credential is
// returned exactly once.
func (s *Service) Create(c *fiber.Ctx) error {
	var body createPayload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ValidationMessages(err)})
	}

	token, credential, err := controller.Create(s.db, body.Name, body.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
		}

		log.Error().Err(err).Str("name", body.Name).Uint64("member_id", body.MemberID).Msg("failed to create token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create token"})
	}

	log.Info().Uint64("token_id", token.ID).Uint64("member_id", token.MemberID).Msg("api token created")

	return c.Status(fiber.StatusCreated).JSON(newResponse(token, credential))
}

// Delete revokes a token.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid token id"})
	}

	if err := controller.Delete(s.db, id); err != nil {
		if errors.Is(err, controller.ErrTokenNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "token not found"})
		}

		log.Error().Err(err).Uint64("token_id", id).Msg("failed to delete token")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete token"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
