package main

import (
	"context"
	"flag"
	"log"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/noah-isme/grade-analytics-api/migrations"
	"github.com/noah-isme/grade-analytics-api/pkg/config"
	"github.com/noah-isme/grade-analytics-api/pkg/database"
	"github.com/noah-isme/grade-analytics-api/pkg/logger"
)

// Usage: migrate [up|down|status|version|reset]
func main() {
	flag.Parse()
	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		logr.Fatal("unsupported dialect", zap.Error(err))
	}

	if err := goose.RunContext(ctx, command, db.DB, "."); err != nil {
		logr.Fatal("migration failed", zap.String("command", command), zap.Error(err))
	}
	logr.Info("migration finished", zap.String("command", command))
}
