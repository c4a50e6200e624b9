package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/agenthands/persona/internal/app"
	"github.com/agenthands/persona/internal/config"
	"github.com/agenthands/persona/internal/platform/logger"
	"github.com/agenthands/persona/internal/server"
)

func main() {
	envErr := godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		panic(err)
	}
	cfg.ApplyEnv()

	log, err := logger.New(cfg.Log.Mode, cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	if envErr != nil {
		log.Info("no .env file found, using environment and config")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, log, app.Needs{Query: true})
	if err != nil {
		log.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer a.Close(ctx)

	srv := server.NewServer(a.Engine, cfg.Pipeline.OutputDir, log)
	r := srv.SetupRouter()

	log.Info("starting server", "port", port, "store", cfg.Store.Driver, "llm", cfg.LLM.Provider)
	if err := r.Run(":" + port); err != nil {
		log.Error("server stopped", "error", err)
	}
}
