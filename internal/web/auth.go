package web

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/parley-chat/parley/internal/access"
	"github.com/parley-chat/parley/internal/db/controller/apitoken"
)

const bearerPrefix = "Bearer "

// TokenAuthMiddleware authenticates requests with an API token credential
// of the form "Bearer <id>.<secret>". The token's member becomes the acting
// member for permission checks downstream.
func TokenAuthMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(auth, bearerPrefix) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
		}

		token, err := apitoken.Authenticate(db, strings.TrimPrefix(auth, bearerPrefix))
		if err != nil {
			if errors.Is(err, apitoken.ErrMalformedToken) || errors.Is(err, apitoken.ErrTokenNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
			}

			log.Error().Err(err).Msg("token authentication failed")

			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}

		c.Locals(access.LocalsMemberID, token.MemberID)

		// best effort, an outdated timestamp must not fail the request
		if err := apitoken.Touch(db, token.ID); err != nil {
			log.Warn().Err(err).Uint64("token_id", token.ID).Msg("failed to update token last-used timestamp")
		}

		return c.Next()
	}
}
