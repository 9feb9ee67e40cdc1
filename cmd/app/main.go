package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"orderflow/cmd"
	httpadapter "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/postgres/deliverydir"
	"orderflow/internal/adapters/out/postgres/orderrepo"
	"orderflow/internal/adapters/out/postgres/webhookrepo"
	"orderflow/internal/jobs"
	"orderflow/internal/metrics"
)

func main() {
	configs := getConfigs()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	gormDB := mustConnectDB(configs)
	migrateDB(gormDB)

	metrics.Register()

	app, err := cmd.NewCompositionRoot(configs, gormDB, logger)
	if err != nil {
		log.Fatalf("Failed to build composition root: %v", err)
	}

	staleLocationsHandler, err := app.CreateFlagStaleLocationsCommandHandler()
	if err != nil {
		log.Fatalf("Failed to build stale location handler: %v", err)
	}

	jobManager := jobs.NewJobManager(staleLocationsHandler, logger)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(app, configs.HTTPPort, logger)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:   goDotEnvVariable("HTTP_PORT"),
		DBHost:     goDotEnvVariable("DB_HOST"),
		DBPort:     goDotEnvVariable("DB_PORT"),
		DBUser:     goDotEnvVariable("DB_USER"),
		DBPassword: goDotEnvVariable("DB_PASSWORD"),
		DBName:     goDotEnvVariable("DB_NAME"),
		DBSslMode:  goDotEnvVariable("DB_SSLMODE"),

		CacheTTL:               durationEnvVariable("CACHE_TTL", cmd.DefaultCacheTTL),
		StaleLocationMaxAge:    durationEnvVariable("STALE_LOCATION_MAX_AGE", cmd.DefaultStaleLocationMaxAge),
		NotificationBufferSize: cmd.DefaultNotificationBufferSize,
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func durationEnvVariable(key string, fallback time.Duration) time.Duration {
	raw := goDotEnvVariable(key)
	if raw == "" {
		return fallback
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("Invalid duration for %s: %v", key, err)
	}
	return value
}

func mustConnectDB(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser, configs.DBPassword, configs.DBName, configs.DBSslMode)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return gormDB
}

func migrateDB(gormDB *gorm.DB) {
	err := gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.StatusHistoryDTO{},
		&webhookrepo.SubscriptionDTO{},
		&deliverydir.DeliveryPersonDTO{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
}

func startWebServer(app cmd.CompositionRoot, port string, logger *slog.Logger) {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)

	server := httpadapter.NewServer(
		app.CreateCreateOrderCommandHandler(),
		app.CreateRequestOrderTransitionCommandHandler(),
		app.CreateAssignDeliveryPersonCommandHandler(),
		app.CreateArchiveOrderCommandHandler(),
		app.CreateVerifyReceiptCommandHandler(),
		app.CreateUpdateDeliveryLocationCommandHandler(),
		app.CreateRegisterWebhookSubscriptionCommandHandler(),
		app.CreateGetOrderQueryHandler(),
		app.CreateListOrdersQueryHandler(),
		app.Hub(),
		logger,
	)
	server.RegisterRoutes(e)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil {
			e.Logger.Info("Shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
