package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"habitd/internal/config"
	"habitd/internal/util"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Path to the YAML config file." type:"path" default:"config.yaml" env:"HABITD_CONFIG"`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API and dashboard." default:"1"`
	Migrate MigrateCmd `cmd:"" help:"Create or upgrade the storage schema and exit."`
}

// appContext is handed to every command.
type appContext struct {
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("habitd"),
		kong.Description("Habit and weekly task tracker backend"),
		kong.UsageOnError(),
		kong.Vars{"version": "v1.0.0"},
	)

	envErr := godotenv.Load(util.EnvOrDefault("HABITD_ENV_FILE", ".env"))

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	if envErr != nil {
		logger.Debug("no .env file loaded", slog.String("error", envErr.Error()))
	}

	if err := ctx.Run(&appContext{cfg: cfg, logger: logger}); err != nil {
		logger.Error("command failed", slog.String("command", ctx.Command()), slog.String("error", err.Error()))
		os.Exit(1)
	}
}
