package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erazemk/izposoja/internal/api"
	"github.com/erazemk/izposoja/internal/config"
	"github.com/erazemk/izposoja/internal/db"
	"github.com/erazemk/izposoja/internal/mail"
	"github.com/erazemk/izposoja/internal/notify"
	"github.com/erazemk/izposoja/internal/store"
)

const usage = `Usage: izposoja [flags] [command]

Commands:
  serve    run the HTTP API and the daily reminder scheduler (default)
  init     create a new database with an admin account
  sweep    send today's reminders once and exit
  seed     add demo users and items

Flags:
  -c, -config <path>      YAML config file (default: none)
  -d, -db <path>          SQLite database path (default: izposoja.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        admin username on first run (default: Admin)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -notify-at <HH:MM>      daily reminder time, local (default: 08:00)
  -dry-run                log reminders instead of sending them
  -h, -help               show this help and exit
`

func main() {
	cfg, command, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	closeLog, err := setupLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	switch command {
	case "serve":
		err = serve(cfg)
	case "init":
		err = runInit(cfg)
	case "sweep":
		err = runSweep(cfg)
	case "seed":
		err = runSeed(cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		fmt.Fprint(os.Stdout, usage)
		closeLog()
		os.Exit(1)
	}
	if err != nil {
		slog.Error(command+" failed", "error", err)
		closeLog()
		os.Exit(1)
	}
}

// parseArgs reads the flags and the optional config file. Flags given on the
// command line override the file.
func parseArgs(args []string) (config.Config, string, error) {
	fs := flag.NewFlagSet("izposoja", flag.ContinueOnError)
	def := config.Default()

	var configPath string
	fs.StringVar(&configPath, "config", "", "")
	fs.StringVar(&configPath, "c", "", "")

	var flags config.Config
	fs.StringVar(&flags.Database, "db", def.Database, "")
	fs.StringVar(&flags.Database, "d", def.Database, "")
	fs.StringVar(&flags.Addr, "addr", def.Addr, "")
	fs.StringVar(&flags.Addr, "a", def.Addr, "")
	fs.StringVar(&flags.AdminUser, "user", def.AdminUser, "")
	fs.StringVar(&flags.AdminUser, "u", def.AdminUser, "")
	fs.StringVar(&flags.Log, "log", def.Log, "")
	fs.StringVar(&flags.Log, "l", def.Log, "")
	fs.StringVar(&flags.NotifyAt, "notify-at", def.NotifyAt, "")
	fs.BoolVar(&flags.DryRun, "dry-run", def.DryRun, "")

	fs.Usage = func() { fmt.Fprint(os.Stdout, usage) }

	if err := fs.Parse(args); err != nil {
		return def, "", err
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return def, "", fmt.Errorf("unexpected argument: %s", fs.Arg(1))
	}

	cfg := def
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return def, "", err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db", "d":
			cfg.Database = flags.Database
		case "addr", "a":
			cfg.Addr = flags.Addr
		case "user", "u":
			cfg.AdminUser = flags.AdminUser
		case "log", "l":
			cfg.Log = flags.Log
		case "notify-at":
			cfg.NotifyAt = flags.NotifyAt
		case "dry-run":
			cfg.DryRun = flags.DryRun
		}
	})

	if _, _, err := notify.ParseTimeOfDay(cfg.NotifyAt); err != nil {
		return def, "", err
	}

	command := "serve"
	if fs.NArg() == 1 {
		command = fs.Arg(0)
	}
	return cfg, command, nil
}

func serve(cfg config.Config) error {
	// Create the database on first run.
	if _, err := os.Stat(cfg.Database); os.IsNotExist(err) {
		if err := runInit(cfg); err != nil {
			return err
		}
		fmt.Println()
	}

	database, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()

	jwtSecret, err := store.GetJWTSecret(context.Background(), database)
	if err != nil {
		return fmt.Errorf("getting JWT secret: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := notify.NewSweeper(&store.Notifications{DB: database}, newSender(cfg))
	hour, minute, _ := notify.ParseTimeOfDay(cfg.NotifyAt)
	scheduler := notify.NewScheduler(sweeper, hour, minute)

	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(ctx)
	}()

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.LoggingMiddleware(api.NewRouter(database, jwtSecret, sweeper)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr, "notify_at", cfg.NotifyAt, "dry_run", cfg.DryRun)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		stop()
		<-schedulerDone
		return fmt.Errorf("server error: %w", err)
	}

	<-schedulerDone
	slog.Info("server stopped, closing database")
	return nil
}

func runSweep(cfg config.Config) error {
	database, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sweeper := notify.NewSweeper(&store.Notifications{DB: database}, newSender(cfg))
	result, err := sweeper.Sweep(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Checked %d, sent %d, previewed %d, skipped %d, failed %d.\n",
		result.Checked, result.Sent, result.Previewed, result.Skipped, result.Failed)
	return nil
}

// openDatabase opens an existing database and brings its schema up to date.
func openDatabase(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("database %s does not exist, run 'izposoja init' first", path)
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, err
	}

	slog.Info("database ready", "path", path)
	return database, nil
}

func newSender(cfg config.Config) mail.Sender {
	if cfg.DryRun {
		return mail.LogSender{}
	}
	return &mail.SMTPSender{Timeout: 30 * time.Second}
}
