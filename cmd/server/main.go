package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"github.com/tourdesk/backoffice-api/internal/config"
	"github.com/tourdesk/backoffice-api/internal/database"
	"github.com/tourdesk/backoffice-api/internal/handlers"
	"github.com/tourdesk/backoffice-api/internal/middleware"
	"github.com/tourdesk/backoffice-api/internal/services"
	"github.com/tourdesk/backoffice-api/pkg/jwt"
	"github.com/tourdesk/backoffice-api/pkg/validator"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting tour back-office API")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	if err := validator.RegisterBindings(); err != nil {
		logger.Fatalf("Failed to register validators: %v", err)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database, logger)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Repositories
	tourRepo := database.NewTourRepository(db)
	priceGroupRepo := database.NewPriceGroupRepository(db)
	tourDateRepo := database.NewTourDateRepository(db)
	clientRepo := database.NewClientRepository(db)
	bookingRepo := database.NewBookingRepository(db)
	financeRepo := database.NewFinanceRepository(db)
	operationRepo := database.NewOperationRepository(db)
	profileRepo := database.NewProfileRepository(db)

	// Services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	auditService := services.NewAuditService(profileRepo, cfg.Security.EnableAuditLog, logger)
	bookingService := services.NewBookingService(
		tourRepo,
		tourDateRepo,
		priceGroupRepo,
		clientRepo,
		bookingRepo,
		cfg.Booking,
		logger,
	)
	reportService := services.NewReportService(
		tourDateRepo,
		financeRepo,
		bookingRepo,
		operationRepo,
		cfg.Booking.CurrencyLocale,
		logger,
	)

	cronService := services.NewCronService(tourDateRepo, cfg.Cron.LifecycleSchedule, logger)
	if cfg.Cron.Enabled {
		if err := cronService.Start(); err != nil {
			logger.Fatalf("Failed to start cron service: %v", err)
		}
	} else {
		logger.Info("Cron service disabled")
	}
	logger.Info("Services initialized")

	// Handlers
	tourHandler := handlers.NewTourHandler(tourRepo, priceGroupRepo, auditService, logger)
	tourDateHandler := handlers.NewTourDateHandler(
		tourRepo,
		priceGroupRepo,
		tourDateRepo,
		operationRepo,
		bookingRepo,
		reportService,
		auditService,
		logger,
	)
	clientHandler := handlers.NewClientHandler(clientRepo, bookingRepo, auditService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, auditService, logger)
	financeHandler := handlers.NewFinanceHandler(financeRepo, tourDateRepo, reportService, auditService, logger)
	jobHandler := handlers.NewJobHandler(cronService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthCheckHandler(db))

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(jwtService, logger))
	adminOnly := middleware.RequireRole(profileRepo, logger, cfg.Auth.AdminRole)
	{
		tours := v1.Group("/tours")
		{
			tours.GET("", tourHandler.ListTours)
			tours.POST("", tourHandler.CreateTour)
			tours.GET("/:id", tourHandler.GetTour)
			tours.PUT("/:id", tourHandler.UpdateTour)
			tours.PATCH("/:id/status", tourHandler.UpdateTourStatus)
			tours.DELETE("/:id", adminOnly, tourHandler.DeleteTour)

			tours.GET("/:id/price-groups", tourHandler.ListPriceGroups)
			tours.POST("/:id/price-groups", tourHandler.CreatePriceGroup)

			tours.GET("/:id/dates", tourDateHandler.ListTourDates)
			tours.POST("/:id/dates", tourDateHandler.CreateTourDate)
		}

		priceGroups := v1.Group("/price-groups")
		{
			priceGroups.PUT("/:id", tourHandler.UpdatePriceGroup)
			priceGroups.DELETE("/:id", adminOnly, tourHandler.DeletePriceGroup)
		}

		tourDates := v1.Group("/tour-dates")
		{
			tourDates.GET("/:id", tourDateHandler.GetTourDate)
			tourDates.PATCH("/:id/status", tourDateHandler.UpdateTourDateStatus)
			tourDates.DELETE("/:id", adminOnly, tourDateHandler.DeleteTourDate)

			tourDates.GET("/:id/operation", tourDateHandler.GetOperation)
			tourDates.PUT("/:id/operation", tourDateHandler.UpsertOperation)

			tourDates.GET("/:id/manifest", tourDateHandler.GetManifest)
			tourDates.GET("/:id/manifest.pdf", tourDateHandler.GetManifestPDF)

			tourDates.GET("/:id/finance", financeHandler.ListLedger)
			tourDates.POST("/:id/finance", financeHandler.CreateRecord)
			tourDates.GET("/:id/finance/summary", financeHandler.GetSummary)
			tourDates.GET("/:id/finance/export", financeHandler.ExportLedger)
		}

		clients := v1.Group("/clients")
		{
			clients.GET("", clientHandler.ListClients)
			clients.POST("", clientHandler.CreateClient)
			clients.GET("/:id", clientHandler.GetClient)
			clients.PUT("/:id", clientHandler.UpdateClient)
			clients.DELETE("/:id", adminOnly, clientHandler.DeleteClient)
		}

		bookings := v1.Group("/bookings")
		{
			bookings.GET("", bookingHandler.ListBookings)
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.POST("/quote", bookingHandler.QuoteRooms)
			bookings.POST("/wizard/passengers", bookingHandler.PlanPassengers)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.PATCH("/:id", bookingHandler.UpdateBooking)
			bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
		}

		finance := v1.Group("/finance")
		{
			finance.GET("/monthly", financeHandler.GetMonthlySummary)
			finance.DELETE("/:id", adminOnly, financeHandler.DeleteRecord)
		}

		admin := v1.Group("/admin", adminOnly)
		{
			admin.GET("/jobs", jobHandler.GetStatus)
			admin.POST("/jobs/complete-tour-dates", jobHandler.CompleteTourDates)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if cfg.Cron.Enabled {
		cronService.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}
		if userCtx, ok := middleware.GetUserContext(c); ok {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)
		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
