package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"autotube/config"
	"autotube/footage"
	"autotube/jobs"
	"autotube/logging"
	"autotube/research"
	"autotube/script"
	"autotube/server"
	"autotube/upload"
	"autotube/video"
	"autotube/voice"

	"github.com/joho/godotenv"
)

func main() {
	// .env for local dev; deployments inject real env vars
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.Paths.Output, 0755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	logger := logging.NewLogger(cfg.Server.LogLevel)

	store := jobs.NewStore()
	assembler := video.NewAssembler(cfg.Video, footage.New(cfg.Footage))
	runner := jobs.NewRunner(
		store,
		cfg.Paths.Output,
		research.New(cfg.Research),
		script.New(cfg.Script),
		voice.New(cfg.Voice),
		assembler,
		logger,
	)

	srv := server.NewServer(server.Config{
		Port:      cfg.Server.Port,
		OutputDir: cfg.Paths.Output,
		Store:     store,
		Runner:    runner,
		Uploader:  upload.New(cfg.Upload),
		Logger:    logger,
		StartTime: time.Now(),
	})

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
