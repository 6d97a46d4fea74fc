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
	"github.com/redis/go-redis/v9"
	"github.com/roadrunner/booking-backend/internal/config"
	"github.com/roadrunner/booking-backend/internal/database"
	"github.com/roadrunner/booking-backend/internal/handlers"
	"github.com/roadrunner/booking-backend/internal/middleware"
	"github.com/roadrunner/booking-backend/internal/seatlayout"
	"github.com/roadrunner/booking-backend/internal/services"
	"github.com/roadrunner/booking-backend/internal/utils"
	"github.com/roadrunner/booking-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
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

	logger.Info("Starting RoadRunner booking backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	// Seat locks
	locker, redisClient := newSeatLocker(cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	loc := cfg.Location()

	// Initialize repositories
	userRepository := database.NewUserRepository(db)
	routeRepository := database.NewRouteRepository(db)
	busRepository := database.NewBusRepository(db)
	scheduleRepository := database.NewScheduleRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	parcelRepository := database.NewParcelRepository(db)
	reviewRepository := database.NewReviewRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	payments := services.NewFormatCheckGateway()

	authService := services.NewAuthService(userRepository, jwtService, cfg.Security.BcryptCost, logger)
	fleetService := services.NewFleetService(
		routeRepository,
		busRepository,
		scheduleRepository,
		seatlayout.Scheme(cfg.Booking.SeatNumbering),
		loc,
		logger,
	)
	bookingService := services.NewBookingService(
		bookingRepository,
		scheduleRepository,
		locker,
		payments,
		cfg.Booking,
		loc,
		logger,
	)
	parcelService := services.NewParcelService(
		parcelRepository,
		routeRepository,
		payments,
		cfg.Booking,
		loc,
		logger,
	)
	reviewService := services.NewReviewService(reviewRepository, bookingService)
	logger.Info("All services initialized")

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	searchHandler := handlers.NewSearchHandler(fleetService, bookingService, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	parcelHandler := handlers.NewParcelHandler(parcelService, logger)
	reviewHandler := handlers.NewReviewHandler(reviewService, logger)
	fleetHandler := handlers.NewFleetHandler(fleetService, logger)
	adminHandler := handlers.NewAdminHandler(bookingService, parcelService, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	if cfg.Security.EnableRequestLog {
		router.Use(requestLogger(logger))
	}

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", healthCheckHandler(db, redisClient))

	authRequired := middleware.AuthMiddleware(jwtService, logger)

	v1 := router.Group("/api/v1")
	{
		// Public routes
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
		}

		v1.GET("/search", searchHandler.SearchTrips)
		v1.GET("/routes", fleetHandler.ListRoutes)
		v1.GET("/schedules", fleetHandler.ListSchedules)
		v1.GET("/schedules/:id/seats", searchHandler.GetSeatMap)
		v1.POST("/schedules/:id/selection", searchHandler.PreviewSelection)
		v1.GET("/buses/:id/reviews", reviewHandler.ListBusReviews)
		v1.GET("/parcels/quote", parcelHandler.QuoteParcel)
		v1.GET("/parcels/track/:tracking_number", parcelHandler.TrackParcel)

		// Passenger routes
		user := v1.Group("/user", authRequired)
		{
			user.GET("/profile", authHandler.GetProfile)
		}

		bookings := v1.Group("/bookings", authRequired)
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("", bookingHandler.ListMyBookings)
			bookings.POST("/cancel-trip", bookingHandler.CancelTrip)
			bookings.GET("/:reference", bookingHandler.GetBooking)
			bookings.POST("/:reference/cancel", bookingHandler.CancelBooking)
		}

		parcels := v1.Group("/parcels", authRequired)
		{
			parcels.POST("", parcelHandler.CreateParcel)
			parcels.GET("", parcelHandler.ListMyParcels)
			parcels.POST("/:id/cancel", parcelHandler.CancelParcel)
		}

		v1.POST("/reviews", authRequired, reviewHandler.SubmitReview)

		// Operator and admin routes
		operator := v1.Group("/operator", authRequired, middleware.RequireRole("operator", "admin"))
		{
			operator.POST("/buses", fleetHandler.CreateBus)
			operator.GET("/buses", fleetHandler.ListBuses)
			operator.PUT("/buses/:id/status", fleetHandler.UpdateBusStatus)
			operator.POST("/schedules", fleetHandler.CreateSchedule)
			operator.PUT("/bookings/:reference/status", adminHandler.UpdateBookingStatus)
			operator.POST("/bookings/:reference/mark-paid", adminHandler.MarkBookingPaid)
		}

		admin := v1.Group("/admin", authRequired, middleware.RequireRole("admin"))
		{
			admin.POST("/routes", fleetHandler.CreateRoute)
			admin.PUT("/parcels/:id/status", adminHandler.UpdateParcelStatus)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
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

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// newSeatLocker connects to Redis when configured. Without Redis, seat
// uniqueness rests on the database alone.
func newSeatLocker(cfg config.RedisConfig, logger *logrus.Logger) (services.SeatLocker, *redis.Client) {
	if cfg.URL == "" {
		logger.Info("REDIS_URL not set, seat locks disabled")
		return services.NoopSeatLocker{}, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		logger.Fatalf("Invalid REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("Redis unreachable at startup, seat locks will fail open")
	} else {
		logger.Info("Redis connection established")
	}

	return services.NewRedisSeatLocker(client, cfg.SeatLockTTL, logger), client
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		device := utils.ParseUserAgent(utils.GetUserAgent(c))

		fields := logrus.Fields{
			"status":      c.Writer.Status(),
			"method":      c.Request.Method,
			"path":        path,
			"query":       query,
			"ip":          utils.GetRealIP(c),
			"latency_ms":  latency.Milliseconds(),
			"device_type": device.DeviceType,
			"browser":     device.Browser,
			"has_auth":    c.GetHeader("Authorization") != "",
		}

		// Add user context if available
		if userCtx, ok := middleware.GetUserContext(c); ok {
			fields["user_id"] = userCtx.UserID
			fields["roles"] = userCtx.Roles
		}

		entry := logger.WithFields(fields)

		// Log errors with more details
		if len(c.Errors) > 0 {
			for i, err := range c.Errors {
				entry = entry.WithField(fmt.Sprintf("error_%d", i), err.Error())
			}
			entry.Error("Request failed with errors")
			return
		}

		// Log based on status code
		status := c.Writer.Status()
		if status >= 500 {
			entry.Error("Request completed with server error")
		} else if status >= 400 {
			entry.Warn("Request completed with client error")
		} else {
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		// Check database connection
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
			})
			return
		}

		// Redis is optional; a failure degrades but does not fail the check
		redisStatus := "disabled"
		if redisClient != nil {
			redisStatus = "healthy"
			if err := redisClient.Ping(ctx).Err(); err != nil {
				redisStatus = "unhealthy"
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"redis":     redisStatus,
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
