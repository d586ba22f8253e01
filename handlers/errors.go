// handlers/errors.go
package handlers

import (
	"log"

	"mission-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service error kinds onto HTTP statuses. Anything that is
// not a structured service error is a 500 with a generic body; the detail
// goes to the log, not the client.
func respondError(c *fiber.Ctx, err error) error {
	se, ok := services.AsServiceError(err)
	if !ok {
		log.Printf("❌ [HTTP] %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal error",
			"kind":  "INTERNAL",
		})
	}

	status := fiber.StatusInternalServerError
	switch se.Kind {
	case services.KindValidation:
		status = fiber.StatusBadRequest
	case services.KindNotFound:
		status = fiber.StatusNotFound
	case services.KindStateConflict:
		status = fiber.StatusConflict
	case services.KindInsufficientFunds:
		status = fiber.StatusUnprocessableEntity
	case services.KindConfiguration:
		status = fiber.StatusInternalServerError
	}

	body := fiber.Map{
		"error": se.Message,
		"kind":  se.Kind,
	}
	if se.Code != "" {
		body["code"] = se.Code
	}
	return c.Status(status).JSON(body)
}
