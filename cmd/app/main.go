package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"dispatch/cmd"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

const shutdownTimeout = 15 * time.Second

func main() {
	configs := getConfigs()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, err := cmd.NewCompositionRoot(ctx, configs, logger)
	if err != nil {
		log.Fatalf("Failed to build composition root: %v", err)
	}

	if err = root.Start(); err != nil {
		log.Fatalf("Failed to start background workers: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	root.CreateHTTPServer().RegisterRoutes(e)

	go func() {
		startErr := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort))
		if startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
			logger.Error("HTTP server stopped", "error", startErr)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Stop taking requests first, then wind down the pipeline behind them.
	if err = e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	root.Shutdown(shutdownCtx)

	logger.Info("Shutdown complete")
}

func getConfigs() cmd.Config {
	return cmd.Config{
		HTTPPort:               goDotEnvVariable("HTTP_PORT"),
		MongoURI:               goDotEnvVariable("MONGO_URI"),
		MongoDB:                goDotEnvVariable("MONGO_DB"),
		Broadcaster:            goDotEnvVariable("BROADCASTER"),
		RedisAddr:              goDotEnvVariable("REDIS_ADDR"),
		KafkaHost:              goDotEnvVariable("KAFKA_HOST"),
		KafkaOrderChangedTopic: goDotEnvVariable("KAFKA_ORDER_CHANGED_TOPIC"),
		DefaultRadiusMeters:    defaultRadiusFromEnv(),
	}
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func defaultRadiusFromEnv() float64 {
	raw := goDotEnvVariable("DEFAULT_RADIUS_M")
	if raw == "" {
		return 5000
	}

	radius, err := strconv.ParseFloat(raw, 64)
	if err != nil || radius <= 0 {
		log.Fatalf("Invalid DEFAULT_RADIUS_M value: %s", raw)
	}
	return radius
}
