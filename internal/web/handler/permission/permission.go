// Package permission implements the permission inspection API.
package permission

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/access"
	"github.com/parley-chat/parley/internal/config"
	channelctl "github.com/parley-chat/parley/internal/db/controller/channel"
	memberctl "github.com/parley-chat/parley/internal/db/controller/member"
	"github.com/parley-chat/parley/internal/permissions"
	"github.com/parley-chat/parley/internal/web/handler"
)

// Service is the permission handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
	acc *access.Service
}

// Handler is the permission handler.
var Handler = Service{}

// response is the wire representation of a resolved permission set: the raw
// bit field as a decimal string, the granted flag names, and the full
// name-to-granted map.
type response struct {
	Permissions     string          `json:"permissions"`
	PermissionNames []string        `json:"permission_names"`
	Flags           map[string]bool `json:"flags"`
}

func newResponse(set permissions.Set) response {
	return response{
		Permissions:     strconv.FormatUint(set.Raw(), 10),
		PermissionNames: set.Names(),
		Flags:           set.Serialize(),
	}
}

// Init initializes the permission handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, acc *access.Service) error {
	if app == nil || cfg == nil || db == nil || acc == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.acc = acc

	app.Get(handler.APIPrefix+"/members/:id/permissions", s.Base)
	app.Get(handler.APIPrefix+"/channels/:channelID/members/:id/permissions", s.Effective)

	return nil
}

// requireSelfOrRoleManager lets members inspect their own permissions;
// inspecting anyone else needs MANAGE_ROLES. Writes the error response
// itself when the check fails.
func (s *Service) requireSelfOrRoleManager(c *fiber.Ctx, targetID uint64) (bool, error) {
	actingID, ok := access.ActingMember(c)
	if !ok {
		return false, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	if actingID == targetID {
		return true, nil
	}

	has, err := s.acc.Has(actingID, permissions.FlagManageRoles)
	if err != nil {
		log.Error().Err(err).Uint64("member_id", actingID).Msg("failed to check guild permissions")
		return false, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	if !has {
		return false, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "missing permissions"})
	}

	return true, nil
}

// Base returns a member's guild-level permissions.
func (s *Service) Base(c *fiber.Ctx) error {
	memberID, err := handler.ParseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid member id"})
	}

	if ok, errResp := s.requireSelfOrRoleManager(c, memberID); !ok {
		return errResp
	}

	set, err := s.acc.BasePermissions(memberID)
	if err != nil {
		if errors.Is(err, memberctl.ErrMemberNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
		}

		log.Error().Err(err).Uint64("member_id", memberID).Msg("failed to resolve base permissions")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to resolve permissions"})
	}

	return c.JSON(newResponse(set))
}

// Effective returns a member's resolved permissions in a channel, with
// overwrites applied.
func (s *Service) Effective(c *fiber.Ctx) error {
	memberID, err := handler.ParseID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid member id"})
	}

	channelID, err := handler.ParseID(c, "channelID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid channel id"})
	}

	if ok, errResp := s.requireSelfOrRoleManager(c, memberID); !ok {
		return errResp
	}

	set, err := s.acc.EffectivePermissions(memberID, channelID)
	if err != nil {
		switch {
		case errors.Is(err, memberctl.ErrMemberNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "member not found"})
		case errors.Is(err, channelctl.ErrChannelNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "channel not found"})
		case errors.Is(err, channelctl.ErrNoParentChannel):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "channel is synchronized but has no parent category"})
		}

		log.Error().Err(err).Uint64("member_id", memberID).Uint64("channel_id", channelID).
			Msg("failed to resolve effective permissions")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to resolve permissions"})
	}

	return c.JSON(newResponse(set))
}
