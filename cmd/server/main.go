package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Sean-323/LinkCare-sub001/internal/cache"
	"github.com/Sean-323/LinkCare-sub001/internal/events"
	"github.com/Sean-323/LinkCare-sub001/internal/handlers"
	"github.com/Sean-323/LinkCare-sub001/internal/middleware"
	"github.com/Sean-323/LinkCare-sub001/internal/prediction"
	"github.com/Sean-323/LinkCare-sub001/internal/queue"
	"github.com/Sean-323/LinkCare-sub001/internal/repository"
	"github.com/Sean-323/LinkCare-sub001/internal/scheduler"
	"github.com/Sean-323/LinkCare-sub001/internal/service"
)

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "LinkCare Goal Engine",
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisCache := cache.NewRedisCache(redisAddr, os.Getenv("REDIS_PASSWORD"), envInt("REDIS_DB", 0))
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}
	goalCache := cache.NewGoalCache(redisCache)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	goalRepo := repository.NewWeeklyGoalRepository(db)
	statRepo := repository.NewHealthStatRepository(db)

	// Prediction sidecar client
	predictionURL := os.Getenv("PREDICTION_URL")
	if predictionURL == "" {
		predictionURL = "http://localhost:8090"
	}
	predictor := prediction.NewClient(predictionURL, time.Duration(envInt("PREDICTION_TIMEOUT_SECONDS", 3))*time.Second)

	// Initialize services and the regeneration pipeline
	bus := events.NewBus(envInt("EVENT_BUS_BUFFER", 256))
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)
	statService := service.NewStatService(statRepo)
	groupService := service.NewGroupService(groupRepo, bus)
	goalService := service.NewGoalService(groupRepo, goalRepo, statRepo, predictor, goalCache)

	goalQueue := queue.New(goalService, envInt("GOAL_WORKERS", 4), envInt("GOAL_QUEUE_SIZE", 256))
	goalQueue.Start()
	defer goalQueue.Stop()

	listener := events.NewRegenerationListener(groupRepo, goalQueue)
	bus.Subscribe(listener.Handle)
	bus.Start(envInt("EVENT_BUS_WORKERS", 2))
	defer bus.Stop()

	weeklyBatch := scheduler.New(groupRepo, goalQueue)
	if err := weeklyBatch.Start(); err != nil {
		log.Fatal("Failed to start weekly batch scheduler:", err)
	}
	defer weeklyBatch.Stop()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	groupHandler := handlers.NewGroupHandler(groupService)
	goalHandler := handlers.NewGoalHandler(goalService, groupService)
	statHandler := handlers.NewStatHandler(statService)

	// Public routes
	api := app.Group("/api")
	auth := api.Group("/auth", limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	// Protected routes
	protected := api.Group("/", middleware.AuthRequired())
	protected.Get("/users/me", userHandler.GetCurrentUser)
	protected.Put("/users/me", userHandler.UpdateProfile)
	protected.Post("/stats", statHandler.RecordStat)

	// Group routes
	protected.Post("/groups", groupHandler.CreateGroup)
	protected.Get("/groups", groupHandler.GetMyGroups)
	protected.Get("/groups/:id", groupHandler.GetGroup)
	protected.Post("/groups/:id/join", groupHandler.JoinGroup)
	protected.Post("/groups/:id/leave", groupHandler.LeaveGroup)
	protected.Get("/groups/:id/members", groupHandler.GetGroupMembers)

	// Goal routes
	protected.Get("/groups/:id/goal", goalHandler.GetWeeklyGoal)
	protected.Put("/groups/:id/goal/metric", goalHandler.ChangeSelectedMetric)
	protected.Get("/groups/:id/header", goalHandler.GetHeader)
	protected.Get("/groups/:id/records", goalHandler.ListRecords)

	// Health check and metrics
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
