// handlers/wallet_routes.go
package handlers

import (
	"strconv"

	"mission-rewards-system/middleware"
	"mission-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupWalletRoutes(app *fiber.App, walletService *services.WalletService) {
	secured := app.Group("/s", middleware.UserContextMiddleware())

	secured.Get("/wallet", func(c *fiber.Ctx) error {
		user, err := walletService.GetUserByID(middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{
			"available_cents": user.AvailableCents,
			"pending_cents":   user.PendingCents,
			"badge_level":     user.BadgeLevel,
			"streak_days":     user.StreakDays,
			"daily_cap_cents": user.DailyCapCents,
			"xp":              user.XP,
		})
	})

	secured.Get("/wallet/cap", func(c *fiber.Ctx) error {
		state, err := walletService.GetDailyCapState(middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(state)
	})

	secured.Get("/wallet/transactions", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "50"))
		txs, err := walletService.GetTransactions(middleware.UserID(c), limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(txs)
	})
}
