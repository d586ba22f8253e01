// handlers/admin_routes.go
package handlers

import (
	"mission-rewards-system/middleware"
	"mission-rewards-system/models"
	"mission-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App, reviewService *services.ReviewService, budgetService *services.BudgetService, brandService *services.BrandService) {
	admin := app.Group("/s/admin", middleware.UserContextMiddleware())

	// --- Attempt review queue ---
	review := admin.Group("/", middleware.RequirePermission("attempt.review"))

	review.Get("/attempts", func(c *fiber.Ctx) error {
		status := models.AttemptStatus(c.Query("status", string(models.AttemptPending)))
		attempts, err := reviewService.ListAttempts(status)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(attempts)
	})

	review.Post("/attempts/:id/approve", func(c *fiber.Ctx) error {
		result, err := reviewService.ApproveAttempt(middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})

	review.Post("/attempts/:id/reject", func(c *fiber.Ctx) error {
		attempt, err := reviewService.RejectAttempt(middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(attempt)
	})

	// --- Budgets and the central pool ---
	budgets := admin.Group("/", middleware.RequirePermission("budget.manage"))

	budgets.Post("/brands/:id/topup", func(c *fiber.Ctx) error {
		var body struct {
			AmountCents int64 `json:"amount_cents"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
		}
		budget, err := budgetService.TopUp(c.Params("id"), body.AmountCents)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(budget)
	})

	budgets.Get("/brands/:id/budget", func(c *fiber.Ctx) error {
		budget, err := budgetService.GetBudget(c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(budget)
	})

	budgets.Get("/pool/reconcile", func(c *fiber.Ctx) error {
		drift, err := budgetService.ReconcilePool()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(drift)
	})

	// --- Brand application review ---
	apps := admin.Group("/", middleware.RequirePermission("application.review"))

	apps.Get("/applications", func(c *fiber.Ctx) error {
		status := models.ApplicationStatus(c.Query("status"))
		list, err := brandService.ListApplications(status)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(list)
	})

	apps.Post("/applications/:id/approve", func(c *fiber.Ctx) error {
		brand, err := brandService.ApproveApplication(middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(brand)
	})

	apps.Post("/applications/:id/reject", func(c *fiber.Ctx) error {
		application, err := brandService.RejectApplication(middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(application)
	})

	// --- Mission publishing ---
	missions := admin.Group("/", middleware.RequirePermission("mission.manage"))

	missions.Patch("/missions/:id/status", func(c *fiber.Ctx) error {
		var body struct {
			Status models.MissionStatus `json:"status"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
		}
		mission, err := brandService.SetMissionStatus(c.Params("id"), body.Status)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(mission)
	})
}
