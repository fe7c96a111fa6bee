package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/openpan/drive-service/config"
	"github.com/openpan/drive-service/consumer/worker"
	infraPkg "github.com/openpan/drive-service/infra"
	"github.com/openpan/drive-service/repository"
)

func main() {
	err := godotenv.Load("../.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	repo := repository.InitRepository(infra)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	purgeConsumer := worker.NewPurgeConsumer(infra.RabbitMQ.Channel, infra, repo)
	if err := purgeConsumer.Start(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to start purge consumer: %v", err)
		log.Fatalf("Failed to start purge consumer: %v", err)
	}

	verifyConsumer := worker.NewVerifyConsumer(infra.RabbitMQ.Channel, infra, repo)
	if err := verifyConsumer.Start(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to start verify consumer: %v", err)
		log.Fatalf("Failed to start verify consumer: %v", err)
	}

	sweepWorker := worker.NewSweepWorker(infra, repo)
	sweepWorker.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.InfoWithContextf(ctx, "Shutting down consumer...")
	cancel()

	infra.Logger.InfoWithContextf(ctx, "Consumer exited properly")
}
