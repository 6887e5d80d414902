package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"ms-bookings/internal/admin"
	adminapi "ms-bookings/internal/admin/api"
	"ms-bookings/internal/auth"
	"ms-bookings/internal/booking"
	bookingapi "ms-bookings/internal/booking/api"
	"ms-bookings/internal/booking/db"
	"ms-bookings/internal/config"
	"ms-bookings/internal/database/migrations"
	"ms-bookings/internal/kafka"
	"ms-bookings/internal/logger"
	"ms-bookings/internal/notifier"
	"ms-bookings/internal/payment"
	"ms-bookings/internal/storage"
)

func main() {
	// Load .env if present; real deployments use the environment directly.
	_ = godotenv.Load()

	customLogger := logger.NewLogger()
	defer customLogger.Close()

	cfg := config.Load()

	// --- PostgreSQL Setup ---
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.Database.Username, cfg.Database.Password,
		cfg.Database.Host, cfg.Database.Port, cfg.Database.Database)

	connector := pgdriver.NewConnector(pgdriver.WithDSN(dsn))
	sqldb := sql.OpenDB(connector)
	defer sqldb.Close()

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := sqldb.Ping(); err != nil {
		customLogger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to Postgres: %v", err))
	}
	customLogger.Info("DATABASE", "Connected to Postgres")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	// Run migrations
	migrateOpts := migrations.DefaultOptions()
	if migrateOpts.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrateOpts)
		if err := runner.MigrateUp(); err != nil {
			customLogger.Warn("DATABASE", fmt.Sprintf("SQL migrations unavailable, falling back to schema create: %v", err))
			db.Migrate(bunDB)
		}
	}

	// --- Redis Session Cache ---
	sessions, err := auth.NewSessionCache(cfg.Redis.Addr, cfg.Auth.SessionTTL, customLogger)
	if err != nil {
		customLogger.Fatal("AUTH", fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	// --- Kafka Setup ---
	if cfg.Kafka.Enabled && !cfg.Kafka.MockMode {
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.Topic}); err != nil {
			customLogger.Warn("KAFKA", fmt.Sprintf("Failed to ensure topics: %v", err))
		}
	}
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.MockMode || !cfg.Kafka.Enabled, customLogger)
	defer producer.Close()

	// --- Initialize Dependencies ---
	dbLayer := &db.DB{Bun: bunDB}
	storageClient := storage.NewClient(cfg.Storage.ProjectURL, cfg.Storage.ServiceRoleKey, cfg.Storage.Bucket, customLogger)
	notify := notifier.NewLogNotifier(customLogger)

	customLogger.Info("STARTUP", "Initializing Booking Service...")
	bookingService := booking.NewBookingService(dbLayer, producer, storageClient, notify)
	paymentService := payment.NewPaymentService(dbLayer, storageClient, producer, notify, cfg.Payment.UPIID, cfg.Payment.PayeeName)
	adminService := admin.NewAdminService(dbLayer, producer, storageClient)

	publicHandler := bookingapi.NewHandler(bookingService, paymentService, customLogger)
	adminHandler := adminapi.NewHandler(adminService, sessions, customLogger)

	// --- Setup Router ---
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		publicHandler.Routes(r)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Auth.OIDCIssuer, sessions))
			adminHandler.Routes(r)
		})
	})

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		customLogger.Info("STARTUP", fmt.Sprintf("Booking Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			customLogger.Fatal("STARTUP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	customLogger.Info("SHUTDOWN", "Shutdown signal received. Cleaning up...")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		customLogger.Fatal("SHUTDOWN", fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	customLogger.Info("SHUTDOWN", "Server exited gracefully")
}
