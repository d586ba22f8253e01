// handlers/brand_routes.go
package handlers

import (
	"mission-rewards-system/middleware"
	"mission-rewards-system/services"
	"mission-rewards-system/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupBrandRoutes(app *fiber.App, brandService *services.BrandService) {
	// 🔓 Public intake — gateway auth only, no user context
	app.Post("/brand-applications", func(c *fiber.Ctx) error {
		var input services.ApplicationInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
		}
		application, err := brandService.Apply(input)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(application)
	})

	// 🔐 Brand console — requires BRAND (or ADMIN) role and a brand context
	brand := app.Group("/s/brand",
		middleware.UserContextMiddleware(),
		middleware.RequirePermission("brand.manage"),
	)

	requireBrandID := func(c *fiber.Ctx) (string, bool) {
		brandID := middleware.BrandID(c)
		return brandID, brandID != ""
	}

	brand.Get("/profile", func(c *fiber.Ctx) error {
		brandID, ok := requireBrandID(c)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "no brand context"})
		}
		b, err := brandService.GetBrand(brandID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(b)
	})

	brand.Patch("/profile", func(c *fiber.Ctx) error {
		brandID, ok := requireBrandID(c)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "no brand context"})
		}
		var body struct {
			Description *string `json:"description"`
			Website     *string `json:"website"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
		}
		b, err := brandService.UpdateBrandProfile(brandID, body.Description, body.Website, nil, nil)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(b)
	})

	// Asset uploads go straight to R2; the stored URL lands on the profile.
	brand.Post("/assets/:kind", func(c *fiber.Ctx) error {
		brandID, ok := requireBrandID(c)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "no brand context"})
		}
		kind := c.Params("kind")
		if kind != "logo" && kind != "cover" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "kind must be logo or cover"})
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file field missing"})
		}
		url, err := utils.UploadBrandAsset(fileHeader, utils.BrandAssetKey(brandID, kind, fileHeader.Filename))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		var b interface{}
		if kind == "logo" {
			b, err = brandService.UpdateBrandProfile(brandID, nil, nil, &url, nil)
		} else {
			b, err = brandService.UpdateBrandProfile(brandID, nil, nil, nil, &url)
		}
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"url": url, "brand": b})
	})

	brand.Get("/stats", func(c *fiber.Ctx) error {
		brandID, ok := requireBrandID(c)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "no brand context"})
		}
		stats, err := brandService.GetStats(brandID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(stats)
	})

	brand.Get("/missions", func(c *fiber.Ctx) error {
		brandID, ok := requireBrandID(c)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "no brand context"})
		}
		missions, err := brandService.ListMissions(brandID)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(missions)
	})

	brand.Post("/missions", func(c *fiber.Ctx) error {
		brandID, ok := requireBrandID(c)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "no brand context"})
		}
		var input services.MissionInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
		}
		mission, err := brandService.CreateMission(brandID, input)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(mission)
	})

	brand.Patch("/missions/:id", func(c *fiber.Ctx) error {
		brandID, ok := requireBrandID(c)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "no brand context"})
		}
		var body struct {
			Title       *string `json:"title"`
			Description *string `json:"description"`
			ActionURL   *string `json:"action_url"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON body"})
		}
		mission, err := brandService.UpdateMission(brandID, c.Params("id"), body.Title, body.Description, body.ActionURL)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(mission)
	})
}
