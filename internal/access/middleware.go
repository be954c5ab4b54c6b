package access

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/parley-chat/parley/internal/permissions"
)

// LocalsMemberID is the fiber.Locals key under which the authentication
// middleware stores the acting member's ID.
const LocalsMemberID = "actingMemberID"

// ActingMember extracts the authenticated member ID from the request
// context. The second return value is false when the request is
// unauthenticated.
func ActingMember(c *fiber.Ctx) (uint64, bool) {
	id, ok := c.Locals(LocalsMemberID).(uint64)
	return id, ok
}

// RequireFlag creates Fiber middleware that requires guild-level flags on
// the acting member.
func RequireFlag(service *Service, flags ...permissions.Flag) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, ok := ActingMember(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		has, err := service.Has(memberID, flags...)
		if err != nil {
			log.Error().Err(err).Uint64("member_id", memberID).
				Str("flags", permissionNames(flags)).
				Msg("Failed to check guild permissions")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}

		if !has {
			log.Warn().Uint64("member_id", memberID).
				Str("flags", permissionNames(flags)).
				Msg("Member lacks required guild permissions")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "missing permissions"})
		}

		return c.Next()
	}
}

// RequireChannelFlag creates Fiber middleware that requires effective
// channel flags on the acting member. The channel ID is read from the route
// parameter named by channelParam.
func RequireChannelFlag(service *Service, channelParam string, flags ...permissions.Flag) fiber.Handler {
	return func(c *fiber.Ctx) error {
		memberID, ok := ActingMember(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}

		channelID, err := strconv.ParseUint(c.Params(channelParam), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid channel id"})
		}

		has, err := service.HasInChannel(memberID, channelID, flags...)
		if err != nil {
			log.Error().Err(err).Uint64("member_id", memberID).Uint64("channel_id", channelID).
				Str("flags", permissionNames(flags)).
				Msg("Failed to check channel permissions")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}

		if !has {
			log.Warn().Uint64("member_id", memberID).Uint64("channel_id", channelID).
				Str("flags", permissionNames(flags)).
				Msg("Member lacks required channel permissions")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "missing permissions"})
		}

		return c.Next()
	}
}

func permissionNames(flags []permissions.Flag) string {
	var s permissions.Set
	for _, f := range flags {
		s |= permissions.Set(f)
	}

	return s.String()
}
