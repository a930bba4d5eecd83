// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/sourcehub/hub-backend/internal/alert"
	"github.com/sourcehub/hub-backend/internal/api/handlers"
	"github.com/sourcehub/hub-backend/internal/api/middleware"
	"github.com/sourcehub/hub-backend/internal/config"
	"github.com/sourcehub/hub-backend/internal/cron"
	"github.com/sourcehub/hub-backend/internal/db"
	"github.com/sourcehub/hub-backend/internal/events"
	"github.com/sourcehub/hub-backend/internal/gateway"
	"github.com/sourcehub/hub-backend/internal/monitor"
	"github.com/sourcehub/hub-backend/internal/repository"
	"github.com/sourcehub/hub-backend/internal/seed"
	"github.com/sourcehub/hub-backend/internal/service"
	"github.com/sourcehub/hub-backend/internal/socket"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// ============================================
	// Load configuration
	// ============================================
	cfg := config.Load()

	// ============================================
	// Set Gin mode
	// ============================================
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Initialize PostgreSQL (falls back to in-memory stores)
	// ============================================
	var repos *repository.Repositories
	var pg *db.PostgresDB
	var metricsDB *sqlx.DB

	log.Println("🔄 Running database migrations...")
	if err := db.RunMigrations(cfg.DatabaseURL, "./internal/db/migrations"); err != nil {
		log.Printf("⚠️ Migration failed: %v (continuing without database)", err)
	} else {
		var err error
		pg, err = db.NewPostgresDB(cfg.DatabaseURL, db.PoolOptions{
			MaxConns: cfg.DBMaxConns,
			MinConns: cfg.DBMinConns,
		})
		if err != nil {
			log.Printf("⚠️ Failed to connect to PostgreSQL: %v (continuing without database)", err)
		} else {
			defer pg.Close()
			metricsDB, err = sqlx.Connect("postgres", cfg.DatabaseURL)
			if err != nil {
				log.Printf("⚠️ Failed to open metrics DB handle: %v (continuing without database)", err)
				pg = nil
			} else {
				defer metricsDB.Close()
			}
		}
	}

	if pg != nil {
		repos = repository.NewPgRepositories(pg.Pool, metricsDB)
		log.Println("[DB] ✅ Connected to PostgreSQL")
	} else {
		repos = repository.NewRepositories()
		log.Println("[DB] ⚠️ Using in-memory stores, data will not persist")
	}

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var redisDB *db.RedisDB
	if cfg.RedisURL != "" {
		var err error
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (continuing without cache)", err)
			redisDB = nil
		} else {
			defer redisDB.Close()
			log.Println("⚡ Redis cache enabled")
		}
	}

	// ============================================
	// Initialize event publisher (optional)
	// ============================================
	var publisher *events.Publisher
	if cfg.AMQPURL != "" {
		var err error
		publisher, err = events.NewPublisher(cfg.AMQPURL, "hub.events")
		if err != nil {
			log.Printf("⚠️ Failed to connect to AMQP broker: %v (continuing without events)", err)
			publisher = nil
		} else {
			defer publisher.Close()
			log.Println("📨 Event publisher connected")
		}
	}

	// ============================================
	// Initialize payment gateway
	// ============================================
	var gw gateway.Gateway
	if cfg.OmiseSecretKey != "" {
		var err error
		gw, err = gateway.NewOmiseGateway(cfg.OmisePublicKey, cfg.OmiseSecretKey)
		if err != nil {
			log.Fatalf("❌ Failed to initialize payment gateway: %v", err)
		}
		log.Println("💳 Omise payment gateway initialized")
	} else {
		gw = gateway.NewSimulatedGateway(time.Now().UnixNano())
		log.Println("💳 Simulated payment gateway (no gateway keys configured)")
	}

	// ============================================
	// Initialize WebSocket Hub + Alert Engine
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)
	log.Println("🔌 WebSocket hub initialized")

	alerts := alert.NewEngine()
	alerts.Subscribe(func(a alert.Alert) {
		if a.Resolved() {
			hub.Broadcast(socket.MessageAlertResolved, a)
		} else {
			hub.Broadcast(socket.MessageAlertRaised, a)
		}
	})

	// ============================================
	// Seed Data (for development)
	// ============================================
	if cfg.Environment != "production" {
		log.Println("🌱 Seeding development data...")
		seed.SeedData(repos)
	}

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config:    cfg,
		Repos:     repos,
		Gateway:   gw,
		Alerts:    alerts,
		Redis:     redisDB,
		Publisher: publisher,
	})
	log.Println("✨ All services initialized")

	// ============================================
	// Initialize Handlers
	// ============================================
	h := handlers.NewHandlers(services)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(services)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// ============================================
	// Start metric simulator (for development)
	// ============================================
	simCtx, stopSim := context.WithCancel(context.Background())
	defer stopSim()
	if cfg.SimulateMetrics {
		sim := monitor.NewSimulator(services.Infrastructure, time.Duration(cfg.MetricIntervalSec)*time.Second)
		go sim.Run(simCtx)
	}

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.Default()

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173", "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"database":   getDatabaseStatus(pg),
			"cache":      getCacheStatus(redisDB),
			"websocket":  "active",
			"ws_clients": hub.ClientCount(),
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Member.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
		}

		// Gateway webhook (authenticated by the gateway, not by members)
		api.POST("/payments/webhook", h.Payment.Webhook)

		// Public tier catalog
		api.GET("/membership/tiers", h.Member.Tiers)

		// WebSocket route
		api.GET("/ws", wsHandler.HandleWebSocket)

		// ============================================
		// Protected routes (require auth middleware)
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(services.Auth))
		{
			// Member routes
			members := protected.Group("/members")
			{
				members.GET("", h.Member.List)
				members.GET("/:id", h.Member.Get)
				members.PUT("/:id", h.Member.UpdateProfile)
				members.POST("/:id/suspend", h.Member.Suspend)
				members.POST("/:id/reactivate", h.Member.Reactivate)
				members.POST("/:id/access-card", h.Member.ReissueCard)
				members.POST("/:id/scholarship", h.Member.ApplyScholarship)
				members.DELETE("/:id/scholarship", h.Member.RemoveScholarship)
				members.GET("/:id/access-history", h.Access.MemberHistory)
				members.DELETE("/:id", h.Member.Delete)
			}

			// Workspace routes
			workspaces := protected.Group("/workspaces")
			{
				workspaces.GET("", h.Workspace.List)
				workspaces.POST("", h.Workspace.Create)
				workspaces.GET("/:id", h.Workspace.Get)
				workspaces.PUT("/:id", h.Workspace.Update)
				workspaces.PATCH("/:id/maintenance", h.Workspace.SetMaintenanceStatus)
				workspaces.GET("/:id/schedule", h.Workspace.Schedule)
				workspaces.DELETE("/:id", h.Workspace.Delete)
			}

			// Booking routes
			bookings := protected.Group("/bookings")
			{
				bookings.POST("", h.Booking.Create)
				bookings.POST("/trial", h.Booking.CreateTrial)
				bookings.GET("/availability", h.Booking.CheckAvailability)
				bookings.GET("/active", h.Booking.Active)
				bookings.POST("/quote", h.Booking.Quote)
				bookings.GET("/my", h.Booking.ListMine)
				bookings.GET("/:id", h.Booking.Get)
				bookings.POST("/:id/check-in", h.Booking.CheckIn)
				bookings.POST("/:id/check-out", h.Booking.CheckOut)
				bookings.POST("/:id/cancel", h.Booking.Cancel)
				bookings.PATCH("/:id/payment", h.Booking.UpdatePayment)
				bookings.POST("/:id/pay", h.Payment.PayBooking)
			}

			// Payment routes
			payments := protected.Group("/payments")
			{
				payments.POST("/membership", h.Payment.PayMembership)
				payments.GET("/my", h.Payment.ListMine)
				payments.GET("/revenue", h.Payment.Revenue)
				payments.GET("/:id", h.Payment.Get)
				payments.POST("/:id/retry", h.Payment.Retry)
				payments.POST("/:id/refund", h.Payment.Refund)
				payments.GET("/:id/invoice", h.Payment.Invoice)
			}

			// Access control routes
			access := protected.Group("/access")
			{
				access.POST("/verify", h.Access.Verify)
				access.POST("/logs/:id/exit", h.Access.Exit)
				access.GET("/occupants", h.Access.Occupants)
				access.GET("/stats", h.Access.Stats)
			}

			// Infrastructure routes
			infrastructure := protected.Group("/infrastructure")
			{
				infrastructure.POST("/metrics", h.Infrastructure.RecordMetric)
				infrastructure.GET("/metrics/:type", h.Infrastructure.Range)
				infrastructure.GET("/metrics/:type/latest", h.Infrastructure.Latest)
				infrastructure.GET("/metrics/:type/uptime", h.Infrastructure.Uptime)
				infrastructure.GET("/failovers", h.Infrastructure.Failovers)
				infrastructure.GET("/status", h.Infrastructure.Status)
				infrastructure.GET("/alerts", h.Infrastructure.ActiveAlerts)
				infrastructure.GET("/alerts/history", h.Infrastructure.AlertHistory)
			}
		}
	}

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stopSim()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func getDatabaseStatus(pg *db.PostgresDB) string {
	if pg != nil {
		return "connected"
	}
	return "in-memory"
}

func getCacheStatus(redisDB *db.RedisDB) string {
	if redisDB != nil {
		return "connected"
	}
	return "disabled"
}
