// handlers/giftcard_routes.go
package handlers

import (
	"mission-rewards-system/middleware"
	"mission-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupGiftCardRoutes(app *fiber.App, giftCardService *services.GiftCardService) {
	// 🔓 Catalog is public — gateway auth only
	app.Get("/gift-cards", func(c *fiber.Ctx) error {
		cards, err := giftCardService.List()
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(cards)
	})

	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Post("/gift-cards/:id/purchase", func(c *fiber.Ctx) error {
		var body struct {
			ClientRequestID *string `json:"client_request_id"`
		}
		// Body is optional; a replayable client sends the idempotency key.
		_ = c.BodyParser(&body)

		result, err := giftCardService.PurchaseByUserID(middleware.UserID(c), c.Params("id"), body.ClientRequestID)
		if err != nil {
			return respondError(c, err)
		}
		status := fiber.StatusCreated
		if result.Replayed {
			status = fiber.StatusOK
		}
		return c.Status(status).JSON(result)
	})

	secured.Get("/purchases", func(c *fiber.Ctx) error {
		purchases, err := giftCardService.GetMyPurchases(middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(purchases)
	})

	secured.Post("/purchases/:id/use", func(c *fiber.Ctx) error {
		purchase, err := giftCardService.UsePurchase(middleware.UserID(c), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(purchase)
	})

	// Point-of-sale redemption by code, for brand staff
	redeem := app.Group("/s/redeem",
		middleware.UserContextMiddleware(),
		middleware.RequirePermission("giftcard.redeem"),
	)
	redeem.Post("/", func(c *fiber.Ctx) error {
		var body struct {
			Code string `json:"code"`
		}
		if err := c.BodyParser(&body); err != nil || body.Code == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "code is required"})
		}
		purchase, err := giftCardService.RedeemByCode(middleware.UserID(c), body.Code)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(purchase)
	})
}
