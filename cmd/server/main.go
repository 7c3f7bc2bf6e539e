package main

import (
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sheriff-gaye/pycon-gmb-sub002/docs"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/config"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/database"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/handlers"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/middleware"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/models"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/repositories"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/services"
	"github.com/sheriff-gaye/pycon-gmb-sub002/internal/tasks"
)

// @title           PyCon Gambia Ticketing API
// @version         1.0
// @description     Ticket sales, payment reconciliation, and door check-in for PyCon Gambia.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewConnection(database.Config{Path: cfg.Database.Path})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	ticketRepo := repositories.NewTicketRepository(db.DB)
	staffRepo := repositories.NewStaffRepository(db.DB)
	webhookRepo := repositories.NewWebhookEventRepository(db.DB)

	// Services
	gatewayService := services.NewGatewayService(cfg.Gateway)
	reconciler := services.NewReconciliationService(ticketRepo)
	checkinService := services.NewCheckInService(ticketRepo, staffRepo)
	authService := services.NewAuthService(staffRepo, cfg.Auth)
	ticketService := services.NewTicketService(ticketRepo, gatewayService, reconciler)
	reportingService := services.NewReportingService(ticketRepo, webhookRepo)

	// Completed payments queue a confirmation email. The enqueue is
	// best-effort: the transition has committed either way.
	enqueuer := tasks.NewEnqueuer(cfg.Redis)
	defer enqueuer.Close()
	reconciler.OnCompleted(func(t *models.Ticket) {
		if err := enqueuer.EnqueueTicketEmail(t.TransactionReference); err != nil {
			log.Printf("Failed to queue confirmation email for %s: %v", t.TransactionReference, err)
		}
	})

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
	})
	defer redisClient.Close()

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(gatewayService, reconciler, webhookRepo)
	checkinHandler := handlers.NewCheckInHandler(checkinService)
	authHandler := handlers.NewAuthHandler(authService)
	ticketHandler := handlers.NewTicketHandler(ticketService)
	adminHandler := handlers.NewAdminHandler(ticketService, reportingService, staffRepo)
	healthHandler := handlers.NewHealthHandler(db.DB, redisClient)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/payments/webhook", webhookHandler.HandleWebhook)
		v1.POST("/tickets", ticketHandler.Purchase)
		v1.GET("/tickets/:reference", ticketHandler.Lookup)

		loginLimiter := middleware.NewRateLimiter(10, time.Minute)
		v1.POST("/auth/login", middleware.LoginRateLimit(loginLimiter), authHandler.Login)

		authed := v1.Group("")
		authed.Use(middleware.RequireAuth(authService))
		{
			authed.GET("/auth/verify", authHandler.Verify)
			authed.POST("/checkin", checkinHandler.CheckIn)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.RequireAuth(authService), middleware.RequireRole(models.StaffRoleAdmin))
		{
			admin.POST("/tickets", adminHandler.IssueTicket)
			admin.GET("/stats", adminHandler.Stats)
			admin.GET("/checkin-leaderboard", adminHandler.Leaderboard)
			admin.GET("/staff", adminHandler.ListStaff)
			admin.POST("/staff", adminHandler.CreateStaff)
			admin.PATCH("/staff/:id/active", adminHandler.SetStaffActive)
		}
	}

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Printf("Server listening on %s (%s)", addr, cfg.Server.Env)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
