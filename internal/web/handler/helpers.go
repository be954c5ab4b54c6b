package handler

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ParseID reads a numeric route parameter.
func ParseID(c *fiber.Ctx, param string) (uint64, error) {
	return strconv.ParseUint(c.Params(param), 10, 64)
}

// ValidationMessages turns validator errors into per-field messages.
func ValidationMessages(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, len(validationErrors))
	for i, ve := range validationErrors {
		messages[i] = "Field '" + ve.Field() + "' failed validation tag '" + ve.Tag() + "'"
	}

	return messages
}
