// Package channel implements the guild channel API.
package channel

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/access"
	"github.com/parley-chat/parley/internal/config"
	controller "github.com/parley-chat/parley/internal/db/controller/channel"
	"github.com/parley-chat/parley/internal/db/models"
	"github.com/parley-chat/parley/internal/permissions"
	"github.com/parley-chat/parley/internal/web/handler"
)

const (
	// Path is the route group for channels.
	Path = handler.APIPrefix + "/channels"
)

// Service is the channel handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the channel handler.
var Handler = Service{}

type createPayload struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Topic    string  `json:"topic" validate:"max=1024"`
	Type     string  `json:"type" validate:"required,oneof=text voice category"`
	ParentID *uint64 `json:"parent_id"`
}

type updatePayload struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Topic    string  `json:"topic" validate:"max=1024"`
	ParentID *uint64 `json:"parent_id"`
}

type syncPayload struct {
	Synced bool `json:"synced"`
}

// response is the wire representation of a channel.
type response struct {
	ID                uint64  `json:"id"`
	Name              string  `json:"name"`
	Topic             string  `json:"topic,omitempty"`
	Type              string  `json:"type"`
	ParentID          *uint64 `json:"parent_id,omitempty"`
	PermissionsSynced bool    `json:"permissions_synced"`
}

func newResponse(ch *models.Channel) response {
	return response{
		ID:                ch.ID,
		Name:              ch.Name,
		Topic:             ch.Topic,
		Type:              string(ch.Type),
		ParentID:          ch.ParentID,
		PermissionsSynced: ch.PermissionsSynced,
	}
}

// Init initializes the channel handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, acc *access.Service) error {
	if app == nil || cfg == nil || db == nil || acc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	manageChannels := access.RequireFlag(acc, permissions.FlagManageChannels)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Get("/:id", s.Get)
		router.Post(handler.RootPath, manageChannels, s.Create)
		router.Patch("/:id", manageChannels, s.Update)
		router.Put("/:id/sync", manageChannels, s.Sync)
		router.Delete("/:id", manageChannels, s.Delete)
	})

	return nil
}

// List returns all channels.
func (s *Service) List(c *fiber.Ctx) error {
	channels, err := controller.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list channels")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list channels"})
	}

	out := make([]response, len(channels))
	for i := range channels {
		out[i] = newResponse(&channels[i])
	}

	return c.JSON(out)
}

// Get returns a single channel.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid channel id"})
	}

	ch, err := controller.GetByID(s.db, id)
	if err != nil {
		if errors.Is(err, controller.ErrChannelNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "channel not found"})
		}

		log.Error().Err(err).Uint64("channel_id", id).Msg("failed to load channel")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load channel"})
	}

	return c.JSON(newResponse(ch))
}

// Create creates a new channel, optionally under a parent category.
func (s *Service) Create(c *fiber.Ctx) error {
	var body createPayload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ValidationMessages(err)})
	}

	ch, err := controller.Create(s.db, body.Name, body.Topic, models.ChannelType(body.Type), body.ParentID)
	if err != nil {
		switch {
		case errors.Is(err, controller.ErrChannelNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "parent channel not found"})
		case errors.Is(err, controller.ErrParentNotCategory):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "parent channel is not a category"})
		}

		log.Error().Err(err).Str("name", body.Name).Msg("failed to create channel")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to create channel"})
	}

	log.Info().Uint64("channel_id", ch.ID).Str("name", ch.Name).Str("type", string(ch.Type)).Msg("channel created")

	return c.Status(fiber.StatusCreated).JSON(newResponse(ch))
}

// Update updates a channel. Moving the channel to a different parent clears
// permission synchronization.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid channel id"})
	}

	var body updatePayload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": handler.ValidationMessages(err)})
	}

	ch, err := controller.Update(s.db, id, body.Name, body.Topic, body.ParentID)
	if err != nil {
		switch {
		case errors.Is(err, controller.ErrChannelNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "channel not found"})
		case errors.Is(err, controller.ErrParentNotCategory):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "parent channel is not a category"})
		}

		log.Error().Err(err).Uint64("channel_id", id).Msg("failed to update channel")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update channel"})
	}

	return c.JSON(newResponse(ch))
}

// Sync toggles permission synchronization with the parent category. Enabling
// it drops the channel's own overwrites.
func (s *Service) Sync(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid channel id"})
	}

	var body syncPayload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ch, err := controller.SetSynced(s.db, id, body.Synced)
	if err != nil {
		switch {
		case errors.Is(err, controller.ErrChannelNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "channel not found"})
		case errors.Is(err, controller.ErrNoParentChannel):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "channel has no parent category"})
		}

		log.Error().Err(err).Uint64("channel_id", id).Msg("failed to update channel synchronization")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update channel synchronization"})
	}

	return c.JSON(newResponse(ch))
}

// Delete removes a channel. Children of a deleted category are detached, not
// deleted.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := handler.ParseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid channel id"})
	}

	if err := controller.Delete(s.db, id); err != nil {
		if errors.Is(err, controller.ErrChannelNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "channel not found"})
		}

		log.Error().Err(err).Uint64("channel_id", id).Msg("failed to delete channel")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete channel"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
