package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"

	"github.com/adeyemiadedayo/kasuwa-backend/pkg/config"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/db"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/logger"
	"github.com/adeyemiadedayo/kasuwa-backend/pkg/migrate"
)

func main() {
	dir := flag.String("dir", migrate.DefaultDir, "migrations directory")
	flag.Parse()

	command := "up"
	args := flag.Args()
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "kasuwa-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})
	ctx := context.Background()

	dbClient, err := db.New(cfg.DB)
	if err != nil {
		logg.Error(ctx, "opening database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.Gorm().DB()
	if err != nil {
		logg.Error(ctx, "unwrapping sql connection", err)
		os.Exit(1)
	}

	if err := migrate.Run(ctx, sqlDB, *dir, command, args...); err != nil {
		logg.Error(logg.WithField(ctx, "command", command), "migration failed", err)
		os.Exit(1)
	}
	logg.Info(logg.WithField(ctx, "command", command), "migration complete")
}
