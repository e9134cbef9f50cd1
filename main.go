package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"

	"talkie/server/backend"
	"talkie/server/backend/config"
	"talkie/server/backend/logging"
	"talkie/server/database"
)

type serveCmd struct{}

type migrateCmd struct{}

// CLI is the command line of the server binary.
type CLI struct {
	Config string `help:"Path to a config file." type:"path" short:"c"`

	Serve   serveCmd   `cmd:"" default:"1" help:"Run the HTTP and websocket server."`
	Migrate migrateCmd `cmd:"" help:"Create or update the database schema and exit."`
}

// main 解析命令行并启动服务。
func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("talkie"),
		kong.Description("Voice and text chat backend for LLM providers."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&cli); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if config.IsValidationError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func (serveCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	log, closer := logging.New(cfg.Logging)
	defer closer.Close()

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv, err := backend.NewServer(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func (migrateCmd) Run(cli *CLI) error {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	log, closer := logging.New(cfg.Logging)
	defer closer.Close()

	db, err := backend.OpenDatabase(cfg.Database)
	if err != nil {
		return err
	}
	log.Info("database migrated", "driver", cfg.Database.Driver)
	return database.Close(db)
}
