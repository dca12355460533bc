package main

import (
	"context"                           // Shutdown deadline and Redis ping
	"errors"                            // Server close detection
	"krishna_store/internal/api"        // HTTP handlers and routes
	"krishna_store/internal/birthday"   // Birthday wishes and scheduler
	"krishna_store/internal/config"     // Configuration
	"krishna_store/internal/db"         // Database connection
	"krishna_store/internal/middleware" // Request logging
	"krishna_store/internal/notify"     // SMS delivery
	"krishna_store/internal/otp"        // OTP issuance
	"krishna_store/internal/service"    // Business services
	"net/http"                          // HTTP server
	"os"                                // Signals
	"os/signal"                         // Signal notification
	"syscall"                           // SIGTERM
	"time"                              // Timeouts

	"github.com/gin-contrib/cors"  // CORS for the storefront and admin apps
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// Main function to set up and run the server
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	environment := "development"
	if cfg.IsProd {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		gin.SetMode(gin.ReleaseMode) // Hides internal error detail and OTPs from responses
		environment = "production"
	}

	// Connect to the database
	gdb, err := db.Open(cfg.DSN(), cfg.IsProd)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Services
	sms := notify.NewTwilioSender(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom)
	otps := otp.NewService(gdb, redisClient, sms, otp.Config{
		Length:       cfg.OTPLength,
		TTL:          cfg.OTPTTL,
		ResendWindow: cfg.OTPResendWindow,
		MaxAttempts:  cfg.OTPMaxAttempts,
	})
	shopInfo := service.NewShopInfoService(gdb, redisClient, cfg.ShopCacheTTL)
	birthdays := birthday.NewService(gdb, sms, shopInfo)

	// Setup Gin
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", middleware.RequestIDHeader)
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	corsConfig.AllowCredentials = true
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowOriginFunc = func(string) bool { return !cfg.IsProd } // Any origin in development only
	}
	r.Use(cors.New(corsConfig))

	api.RegisterRoutes(r, api.Deps{
		DB:          gdb,
		JWTSecret:   cfg.JWTSecret,
		Environment: environment,
		Accounts:    service.NewAccountService(gdb, otps, cfg.JWTSecret, cfg.JWTTTL),
		Subadmins:   service.NewSubadminService(gdb, otps),
		ShopInfo:    shopInfo,
		Orders:      service.NewOrderService(gdb, cfg.StrictOrderTransitions),
		Products:    service.NewProductService(gdb, redisClient, cfg.ProductCacheTTL),
		Birthdays:   birthdays,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Daily birthday wishes
	go birthday.NewScheduler(birthdays, cfg.BirthdayHour).Run(ctx)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logrus.WithField("port", cfg.AppPort).Info("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("graceful shutdown failed: %v", err)
	}
	if err := redisClient.Close(); err != nil {
		logrus.Warnf("redis close failed: %v", err)
	}
}
