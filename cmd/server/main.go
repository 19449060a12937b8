package main

import (
	"os"
	"time"

	"dashboard-backend/internal/api/routes"
	"dashboard-backend/internal/config"
	"dashboard-backend/internal/database"
	applogger "dashboard-backend/internal/logger"

	_ "dashboard-backend/docs"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	gormlogger "gorm.io/gorm/logger"
)

// @title Dashboard Backend API
// @version 1.0
// @description Multi-tenant dashboard backend: organizations, teams, invitations and access resolution.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load .env if present; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	setupLogging(cfg)
	log := applogger.New()

	dbLogLevel := gormlogger.Error
	if cfg.IsDevelopment() {
		dbLogLevel = gormlogger.Warn
	}

	db, err := database.Initialize(cfg.DatabaseURL, &database.Options{
		LogLevel:    dbLogLevel,
		AutoMigrate: true,
	})
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	router, services := routes.SetupRoutes(cfg, db, log)

	// Background sweep keeps expiry timely even when nobody touches stale
	// tokens; the lazy check on lookup remains the correctness backstop.
	go func() {
		ticker := time.NewTicker(cfg.InvitationSweepInterval())
		defer ticker.Stop()
		for range ticker.C {
			if _, err := services.Invitation.ExpireOld(); err != nil {
				log.Errorf("invitation sweep failed: %v", err)
			}
		}
	}()

	log.WithField("port", cfg.Port).Info("starting server")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func setupLogging(cfg *config.Config) {
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}
