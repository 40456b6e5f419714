package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/tiryaq/internal/middleware"
	"github.com/example/tiryaq/internal/store"
	"github.com/example/tiryaq/internal/utils"
)

func currentClaims(c *fiber.Ctx) (*utils.Claims, error) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}
	return claims, nil
}

func parseUUID(value, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+field)
	}
	return id, nil
}

func pageFromQuery(c *fiber.Ctx) store.Page {
	p := utils.ParsePagination(c)
	return store.Page{Limit: p.Limit, Offset: p.Offset}
}
