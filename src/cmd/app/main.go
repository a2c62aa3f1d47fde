package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"payment-service/src/internal/config"
	"payment-service/src/pkg/log"

	"github.com/hibiken/asynq"
)

func main() {
	viperConfig := config.NewViper()
	viperConfig.SetDefault("log.level", "DEBUG")
	viperConfig.SetDefault("app.name", "PAYMENT_SERVICE")
	viperConfig.SetDefault("web.port", 8080)
	log.InitLogger(viperConfig)
	config.NewKafkaConfig(viperConfig)
	logger := log.GetLogger()
	config.LoadRedisConfig(viperConfig)
	db := config.NewDatabase(viperConfig, logger)
	redisClient := config.NewRedis()
	producer := config.NewKafkaProducer(viperConfig, logger)
	validate := config.NewValidator(viperConfig)
	app := config.NewFiber(viperConfig)
	asynqClient := config.NewAsynqClient(viperConfig)
	asynqMux := asynq.NewServeMux()

	config.Bootstrap(&config.BootstrapConfig{
		DB:          db,
		App:         app,
		Log:         logger,
		Validate:    validate,
		Config:      viperConfig,
		Producer:    producer,
		Redis:       redisClient,
		AsynqClient: asynqClient,
		Async:       asynqMux,
	})

	asynqServer := config.NewAsynqServer(viperConfig)
	go func() {
		if err := asynqServer.Run(asynqMux); err != nil {
			logger.Error("main", fmt.Sprintf("Failed to start asynq server: %v", err), "main", "")
		}
	}()

	scheduler, err := config.NewAsynqScheduler(viperConfig)
	if err != nil {
		logger.Error("main", fmt.Sprintf("Failed to build scheduler: %v", err), "main", "")
		os.Exit(1)
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error("main", fmt.Sprintf("Failed to start scheduler: %v", err), "main", "")
		}
	}()

	go func() {
		webPort := viperConfig.GetInt("web.port")
		if err := app.Listen(fmt.Sprintf(":%d", webPort)); err != nil {
			logger.Error("main", fmt.Sprintf("Failed to start server: %v", err), "main", "")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("main", "Server payment-service is shutting down...", "gracefull", "")

	_, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	scheduler.Shutdown()
	asynqServer.Shutdown()
	if err := asynqClient.Close(); err != nil {
		logger.Error("main", fmt.Sprintf("Error closing asynq client: %v", err), "graceful", "")
	}
	if err := app.Shutdown(); err != nil {
		logger.Error("main", fmt.Sprintf("Error during shutdown: %v", err), "graceful", "")
	}

	logger.Info("main", fmt.Sprintf("Server %s stopped", viperConfig.GetString("app.name")), "gracefull", "")
}
