// Package overwrite implements the channel permission overwrite API.
package overwrite

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/access"
	"github.com/parley-chat/parley/internal/config"
	memberctl "github.com/parley-chat/parley/internal/db/controller/member"
	controller "github.com/parley-chat/parley/internal/db/controller/overwrite"
	rolectl "github.com/parley-chat/parley/internal/db/controller/role"
	"github.com/parley-chat/parley/internal/db/models"
	"github.com/parley-chat/parley/internal/permissions"
	"github.com/parley-chat/parley/internal/web/handler"
)

const (
	// Path is the route group for channel overwrites.
	Path = handler.APIPrefix + "/channels/:channelID/overwrites"
)

// Service is the overwrite handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the overwrite handler.
var Handler = Service{}

type payload struct {
	Allow uint64 `json:"allow,string"`
	Deny  uint64 `json:"deny,string"`
}

// response is the wire representation of an overwrite.
type response struct {
	ChannelID  uint64 `json:"channel_id"`
	TargetKind string `json:"target_kind"`
	TargetID   uint64 `json:"target_id"`
	Allow      string `json:"allow"`
	Deny       string `json:"deny"`
}

func newResponse(o *models.Overwrite) response {
	return response{
		ChannelID:  o.ChannelID,
		TargetKind: string(o.TargetKind),
		TargetID:   o.TargetID,
		Allow:      strconv.FormatUint(o.Allow, 10),
		Deny:       strconv.FormatUint(o.Deny, 10),
	}
}

// Init initializes the overwrite handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, acc *access.Service) error {
	if app == nil || cfg == nil || db == nil || acc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	manageRoles := access.RequireChannelFlag(acc, "channelID", permissions.FlagManageRoles)

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RootPath, s.List)
		router.Put("/:kind/:targetID", manageRoles, s.Set)
		router.Delete("/:kind/:targetID", manageRoles, s.Delete)
	})

	return nil
}

// List returns all overwrites stored on the channel.
func (s *Service) List(c *fiber.Ctx) error {
	channelID, err := handler.ParseID(c, "channelID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid channel id"})
	}

	rows, err := controller.GetForChannel(s.db, channelID)
	if err != nil {
		log.Error().Err(err).Uint64("channel_id", channelID).Msg("failed to list overwrites")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list overwrites"})
	}

	out := make([]response, len(rows))
	for i := range rows {
		out[i] = newResponse(&rows[i])
	}

	return c.JSON(out)
}

// Set creates or replaces the overwrite for a role or member target.
func (s *Service) Set(c *fiber.Ctx) error {
	channelID, kind, targetID, ok := s.params(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid overwrite target"})
	}

	var body payload
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	row, err := controller.Set(s.db, channelID, kind, targetID, body.Allow, body.Deny)
	if err != nil {
		switch {
		case errors.Is(err, permissions.ErrOverlappingOverwrite):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "allow and deny sets overlap"})
		case errors.Is(err, permissions.ErrInvalidFlag):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "permission bit field contains unknown bits"})
		case errors.Is(err, controller.ErrChannelSynced):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "channel permissions are synchronized with the parent category"})
		case errors.Is(err, rolectl.ErrRoleNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "target role not found"})
		case errors.Is(err, memberctl.ErrMemberNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "target member not found"})
		}

		log.Error().Err(err).Uint64("channel_id", channelID).Uint64("target_id", targetID).
			Str("target_kind", string(kind)).Msg("failed to set overwrite")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to set overwrite"})
	}

	return c.JSON(newResponse(row))
}

// Delete removes the overwrite for a role or member target.
func (s *Service) Delete(c *fiber.Ctx) error {
	channelID, kind, targetID, ok := s.params(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid overwrite target"})
	}

	if err := controller.Delete(s.db, channelID, kind, targetID); err != nil {
		if errors.Is(err, controller.ErrOverwriteNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "overwrite not found"})
		}

		log.Error().Err(err).Uint64("channel_id", channelID).Uint64("target_id", targetID).
			Str("target_kind", string(kind)).Msg("failed to delete overwrite")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to delete overwrite"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// params reads and validates the overwrite target route parameters.
func (s *Service) params(c *fiber.Ctx) (channelID uint64, kind models.OverwriteTargetKind, targetID uint64, ok bool) {
	channelID, err := handler.ParseID(c, "channelID")
	if err != nil {
		return 0, "", 0, false
	}

	targetID, err = handler.ParseID(c, "targetID")
	if err != nil {
		return 0, "", 0, false
	}

	kind = models.OverwriteTargetKind(c.Params("kind"))
	if kind != models.OverwriteTargetRole && kind != models.OverwriteTargetMember {
		return 0, "", 0, false
	}

	return channelID, kind, targetID, true
}
