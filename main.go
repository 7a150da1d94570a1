package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"mission-dispatch-system/handlers"
	"mission-dispatch-system/middleware"
	"mission-dispatch-system/models"
	"mission-dispatch-system/services"
	"mission-dispatch-system/utils"
	"mission-dispatch-system/workers"

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

	app := fiber.New(fiber.Config{})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())
	app.Use(middleware.SessionContextMiddleware())

	// Load allowed origins from environment variable
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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Agent-ID, X-Agent-Email, X-Agent-Username, X-Agent-Anonymous",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Local fallback store is always available — it is what keeps the
	// service answering when the database or provider is down.
	localDir := os.Getenv("LOCAL_DATA_DIR")
	if localDir == "" {
		localDir = "./localdata"
	}
	files, err := utils.NewCollectionFile(localDir)
	if err != nil {
		log.Fatal("failed to initialize local collection store:", err)
	}
	localStore := services.NewLocalStore(files)

	// The remote backend is optional: a missing DATABASE_URL or a failed
	// connection drops the service into pure local-fallback mode instead of
	// refusing to start.
	var remoteStore *services.RemoteStore

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Println("⚠️  DATABASE_URL not set — running in LOCAL FALLBACK mode only")
	} else {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Printf("⚠️  failed to connect to database (%v) — running in LOCAL FALLBACK mode only", err)
		} else {
			if err := db.AutoMigrate(
				&models.Agent{},
				&models.Assignment{},
				&models.AssignmentProgress{},
				&models.Mission{},
				&models.MissionProgress{},
				&models.Team{},
				&models.TeamMember{},
			); err != nil {
				log.Fatal("failed to migrate database:", err)
			}

			identityURL := os.Getenv("IDENTITY_SERVICE_URL")
			if identityURL == "" {
				log.Fatal("IDENTITY_SERVICE_URL environment variable not set")
			}
			serviceToken := os.Getenv("MISSION_SERVICE_TOKEN")

			provider := services.NewHTTPIdentityProvider(identityURL, serviceToken)
			remoteStore = services.NewRemoteStore(db, provider)
		}
	}

	var facade *services.Facade
	if remoteStore != nil {
		facade = services.NewFacade(remoteStore, localStore)
	} else {
		facade = services.NewFacade(nil, localStore)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if remoteStore != nil {
		flusher := workers.NewPendingFlusher(localStore, remoteStore)
		go workers.PollPending(ctx, flusher, 30*time.Second)

		remoteStore.StartFeatureScheduler(24 * time.Hour)
	}

	handlers.SetupSessionRoutes(app, facade)
	handlers.SetupAssignmentRoutes(app, facade)
	handlers.SetupCommunityRoutes(app, facade)

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	if remoteStore != nil {
		log.Println("✅ Remote store connected — pending-write flusher and feature scheduler running")
	} else {
		log.Println("⚠️  LOCAL FALLBACK mode — all writes buffered on device")
	}
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
