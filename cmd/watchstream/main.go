package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"watchstream/config"
	"watchstream/internal/auth"
	"watchstream/internal/server"
	"watchstream/logger"
)

// serveAction loads the config, builds the logger and runs the server until
// SIGINT or SIGTERM.
func serveAction(ctx context.Context, cmd *cli.Command) error {
	// viper config
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// zap logger
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting watchstream",
		zap.String("env", cfg.Env),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("quotes", cfg.Quotes.Provider))

	if err := server.Run(ctx, cfg, cmd.Bool("create-db"), log); err != nil {
		log.Error("server failed", zap.Error(err))
		return err
	}
	log.Info("stopped")
	return nil
}

// tokenAction prints a signed access token, for local testing against the
// stream endpoints.
func tokenAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ttl := cmd.Duration("ttl")
	if ttl == 0 {
		ttl = cfg.Auth.TokenTTL
	}

	token, err := auth.Issue(cfg.Auth.JWTSecret, auth.Principal{
		ID:    cmd.String("user"),
		Email: cmd.String("email"),
	}, ttl)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Directory holding config.yaml (defaults to ../config next to the binary, then ./config)",
	}

	cmd := &cli.Command{
		Name:  "watchstream",
		Usage: "Real-time watchlist price streaming server",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP, SSE and websocket server with quote ingestion",
				Flags: []cli.Flag{
					configFlag,
					&cli.BoolFlag{
						Name:  "create-db",
						Usage: "Create the Postgres database if it does not exist",
					},
				},
				Action: serveAction,
			},
			{
				Name:  "token",
				Usage: "Mint an access token signed with auth.jwt_secret",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "User id placed in the id claim",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "email",
						Usage: "Optional email claim",
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Token lifetime (defaults to auth.token_ttl)",
					},
				},
				Action: tokenAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
