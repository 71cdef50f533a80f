package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/aisistems/coursebot/core/logger"
	coretelegram "github.com/aisistems/coursebot/core/telegram"
	"github.com/aisistems/coursebot/internal/app"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("coursebot: %v", err)
	}
}

func run() error {
	// Local overrides first, then the shared file; both are optional.
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	log.Printf("loading config: %s", cfgPath)

	cfg, err := app.Load(cfgPath)
	if err != nil {
		return err
	}

	application, err := app.Bootstrap(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	runOpts, err := application.TelegramRunOptions()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return coretelegram.RunTelegram(ctx, runOpts)
}
