// handlers/mission_routes.go
package handlers

import (
	"mission-rewards-system/middleware"
	"mission-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMissionRoutes(app *fiber.App, missionService *services.MissionService) {
	// 🔓 Public — gateway auth only
	app.Get("/mission-types", func(c *fiber.Ctx) error {
		types, err := missionService.ListMissionTypes()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(types)
	})

	// 🔐 Secured — require user context from gateway
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/missions", func(c *fiber.Ctx) error {
		feed, err := missionService.FindActiveForUser(middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(feed)
	})

	secured.Post("/missions/:id/attempts", func(c *fiber.Ctx) error {
		result, err := missionService.SubmitAttempt(middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		status := fiber.StatusCreated
		if result.Duplicate {
			status = fiber.StatusOK
		}
		return c.Status(status).JSON(result)
	})

	secured.Get("/attempts", func(c *fiber.Ctx) error {
		attempts, err := missionService.GetMyAttempts(middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(attempts)
	})
}
