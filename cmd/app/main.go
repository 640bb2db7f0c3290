package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"parcelhub/cmd"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cmd.NewCompositionRoot(configs, logger)
	if err != nil {
		log.Fatalf("Error building application: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Failed to close resources", "error", err)
		}
	}()

	go func() {
		if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Change feed stopped", "error", err)
		}
	}()

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Error starting jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(ctx, app, configs.HTTPPort)
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Warnf("No .env file loaded, using the process environment: %v", err)
	}

	config := cmd.Config{
		HTTPPort:               goDotEnvVariable("HTTP_PORT", "8080"),
		StoreDriver:            goDotEnvVariable("STORE_DRIVER", cmd.StoreDriverPostgres),
		DBHost:                 goDotEnvVariable("DB_HOST", "localhost"),
		DBPort:                 goDotEnvVariable("DB_PORT", "5432"),
		DBUser:                 goDotEnvVariable("DB_USER", ""),
		DBPassword:             goDotEnvVariable("DB_PASSWORD", ""),
		DBName:                 goDotEnvVariable("DB_NAME", ""),
		DBSslMode:              goDotEnvVariable("DB_SSLMODE", "disable"),
		JWTSecret:              goDotEnvVariable("JWT_SECRET", ""),
		KafkaHost:              goDotEnvVariable("KAFKA_HOST", ""),
		KafkaParcelEventsTopic: goDotEnvVariable("KAFKA_PARCEL_EVENTS_TOPIC", "parcel.events"),
		RelaySchedule:          goDotEnvVariable("RELAY_SCHEDULE", ""),
		RelayBatchSize:         goDotEnvVariable("RELAY_BATCH_SIZE", ""),
	}
	return config
}

func goDotEnvVariable(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, port string) {
	e, err := app.CreateEcho()
	if err != nil {
		log.Fatalf("Error building HTTP server: %v", err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			e.Logger.Error(err)
		}
	}()

	if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		e.Logger.Fatal(err)
	}
}
