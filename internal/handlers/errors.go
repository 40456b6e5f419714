package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/example/tiryaq/internal/store"
)

// ErrorHandler renders every error as a JSON body. Unknown errors become a
// 500 without leaking their text.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	case errors.Is(err, store.ErrNotFound):
		code = fiber.StatusNotFound
		message = "not found"
	case errors.Is(err, store.ErrDuplicate):
		code = fiber.StatusConflict
		message = "already exists"
	}

	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
