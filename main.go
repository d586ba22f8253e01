package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mission-rewards-system/handlers"
	"mission-rewards-system/middleware"
	"mission-rewards-system/models"
	"mission-rewards-system/services"
	"mission-rewards-system/utils"
	"mission-rewards-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // asset uploads are images only
	})

	// 🔐 GLOBAL: only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-User-ID, X-User-Roles, X-Brand-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.WalletTransaction{},
		&models.UserDailyEarning{},
		&models.Brand{},
		&models.BrandApplication{},
		&models.BrandBudget{},
		&models.CentralPool{},
		&models.MissionType{},
		&models.Mission{},
		&models.MissionAttempt{},
		&models.GiftCard{},
		&models.GiftCardPurchase{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if len(os.Args) > 1 && os.Args[1] == "seed" {
		if err := runSeed(db); err != nil {
			log.Fatal("seed failed:", err)
		}
		log.Println("✅ Seed complete")
		return
	}

	walletService := services.NewWalletService(db)
	budgetService := services.NewBudgetService(db)
	missionService := services.NewMissionService(db, walletService, budgetService)
	reviewService := services.NewReviewService(db, walletService, budgetService)
	brandService := services.NewBrandService(db, budgetService)
	giftCardService := services.NewGiftCardService(db, walletService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reconciler := workers.NewPoolReconciler(db, budgetService)
	go workers.Run(ctx, reconciler, 1*time.Minute)

	missionService.StartMissionScheduler()

	handlers.SetupMissionRoutes(app, missionService)
	handlers.SetupWalletRoutes(app, walletService)
	handlers.SetupAdminRoutes(app, reviewService, budgetService, brandService)
	handlers.SetupBrandRoutes(app, brandService)
	handlers.SetupGiftCardRoutes(app, giftCardService)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Pool reconciler running (every 1m)")
	log.Println("✅ Mission scheduler running")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}
