// Package handler holds shared pieces of the JSON API handlers: route
// constants, the handler interface and response helpers.
package handler

import "github.com/gofiber/fiber/v2"

// Error sends a JSON error body with the given status.
func Error(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// NotFound sends a 404 JSON error.
func NotFound(c *fiber.Ctx, msg string) error {
	return Error(c, fiber.StatusNotFound, msg)
}

// BadRequest sends a 400 JSON error.
func BadRequest(c *fiber.Ctx, msg string) error {
	return Error(c, fiber.StatusBadRequest, msg)
}

// Internal sends a 500 JSON error.
func Internal(c *fiber.Ctx) error {
	return Error(c, fiber.StatusInternalServerError, "internal server error")
}

// ParamID reads a positive integer path parameter.
func ParamID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, false
	}

	return uint(id), true
}
