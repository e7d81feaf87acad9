package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edvin/mailings/internal/api"
	"github.com/edvin/mailings/internal/config"
	"github.com/edvin/mailings/internal/core"
	"github.com/edvin/mailings/internal/db"
	"github.com/edvin/mailings/internal/logging"
	"github.com/edvin/mailings/internal/mailer"
	"github.com/edvin/mailings/internal/metrics"
	"github.com/edvin/mailings/internal/model"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "create-user":
			createUser(os.Args[2:])
			return
		case "create-token":
			createToken(os.Args[2:])
			return
		case "grant-manager":
			grantManager(os.Args[2:])
			return
		case "send-mailing":
			sendMailing(os.Args[2:])
			return
		}
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("mailings-api"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	metrics.RegisterPgxPoolMetrics(pool)

	transport := mailer.NewRelay(cfg.MailRelayURL, cfg.MailRelayToken)
	services := core.NewServices(pool, transport, cfg.MailFrom)

	srv := api.NewServer(logger, pool, services, cfg)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting mailings API server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
}

// connect loads the config and opens a short-lived pool for CLI subcommands.
func connect(ctx context.Context) (*config.Config, *core.Services, func()) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "error: DATABASE_URL is required")
		os.Exit(1)
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}

	transport := mailer.NewRelay(cfg.MailRelayURL, cfg.MailRelayToken)
	return cfg, core.NewServices(pool, transport, cfg.MailFrom), pool.Close
}

func createUser(args []string) {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	email := fs.String("email", "", "Email address (required)")
	password := fs.String("password", "", "Password (required)")
	fullName := fs.String("full-name", "", "Full name")
	staff := fs.Bool("staff", false, "Grant staff access")
	fs.Parse(args)

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "error: --email and --password are required")
		fmt.Fprintln(os.Stderr, "usage: mailings-api create-user --email <email> --password <password> [--full-name <name>] [--staff]")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, services, closePool := connect(ctx)
	defer closePool()

	user, err := services.User.Create(ctx, *email, *password, *fullName, *staff)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User created successfully.\n\n")
	fmt.Printf("  ID:     %s\n", user.ID)
	fmt.Printf("  Email:  %s\n", user.Email)
	fmt.Printf("  Staff:  %t\n", user.IsStaff)
}

func createToken(args []string) {
	fs := flag.NewFlagSet("create-token", flag.ExitOnError)
	email := fs.String("email", "", "Email of the owning user (required)")
	name := fs.String("name", "", "Name for the token (required)")
	fs.Parse(args)

	if *email == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "error: --email and --name are required")
		fmt.Fprintln(os.Stderr, "usage: mailings-api create-token --email <email> --name <name>")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, services, closePool := connect(ctx)
	defer closePool()

	user, err := services.User.GetByEmail(ctx, *email)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to find user: %v\n", err)
		os.Exit(1)
	}

	token, rawToken, err := services.Token.Create(ctx, user.ID, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create token: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("API token created successfully.\n\n")
	fmt.Printf("  Name:   %s\n", token.Name)
	fmt.Printf("  ID:     %s\n", token.ID)
	fmt.Printf("  Token:  %s\n\n", rawToken)
	fmt.Printf("Save this token - it will not be shown again.\n")
}

func grantManager(args []string) {
	fs := flag.NewFlagSet("grant-manager", flag.ExitOnError)
	email := fs.String("email", "", "Email of the user to promote (required)")
	fs.Parse(args)

	if *email == "" {
		fmt.Fprintln(os.Stderr, "error: --email is required")
		fmt.Fprintln(os.Stderr, "usage: mailings-api grant-manager --email <email>")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, services, closePool := connect(ctx)
	defer closePool()

	if err := services.User.GrantManager(ctx, *email); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to grant manager: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User %s is now a manager.\n", *email)
}

func sendMailing(args []string) {
	fs := flag.NewFlagSet("send-mailing", flag.ExitOnError)
	id := fs.String("id", "", "Mailing ID (required)")
	fs.Parse(args)

	if *id == "" {
		fmt.Fprintln(os.Stderr, "error: --id is required")
		fmt.Fprintln(os.Stderr, "usage: mailings-api send-mailing --id <mailing-id>")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, services, closePool := connect(ctx)
	defer closePool()

	if cfg.MailRelayURL == "" {
		fmt.Fprintln(os.Stderr, "error: MAIL_RELAY_URL is required")
		os.Exit(1)
	}

	// Attempts are attributed to the mailing's owner, as if the owner had
	// triggered the dispatch through the API.
	mailing, err := services.Mailing.GetByID(ctx, core.Scope{All: true}, *id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load mailing: %v\n", err)
		os.Exit(1)
	}

	result, err := services.Dispatch.Send(ctx, core.Scope{ActorID: mailing.OwnerID}, *id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: dispatch failed: %v\n", err)
		os.Exit(1)
	}

	succeeded := 0
	for _, a := range result.Attempts {
		if a.Status == model.AttemptSuccess {
			succeeded++
		}
	}

	fmt.Printf("Mailing %s dispatched.\n\n", result.MailingID)
	fmt.Printf("  Status:    %s\n", result.Status)
	fmt.Printf("  Attempts:  %d (%d succeeded, %d failed)\n",
		len(result.Attempts), succeeded, len(result.Attempts)-succeeded)
}
