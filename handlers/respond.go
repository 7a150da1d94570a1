package handlers

import (
	"errors"

	"mission-dispatch-system/services"

	"github.com/gofiber/fiber/v2"
)

// Every response from this service is {data, error}-shaped: callers check
// the error member instead of catching anything.

func ok(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data, "error": nil})
}

func fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrAuth):
		status = fiber.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, services.ErrNoConnection):
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"data": nil, "error": err.Error()})
}

// partial answers a write whose primary insert landed but whose follow-up
// counter write did not: the record is returned together with the error so
// the caller can decide on compensation.
func partial(c *fiber.Ctx, data any, err error) error {
	return c.JSON(fiber.Map{"data": data, "error": err.Error()})
}
