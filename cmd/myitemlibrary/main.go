package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cakedek/myitemlibrary/internal/api"
	"github.com/cakedek/myitemlibrary/internal/config"
	"github.com/cakedek/myitemlibrary/internal/db"
	"github.com/cakedek/myitemlibrary/internal/ratelimit"
	"github.com/cakedek/myitemlibrary/internal/roster"
	"github.com/cakedek/myitemlibrary/internal/store"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelInfo
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If logPath is non-empty, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(logPath string) (func(), error) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}

	var cleanup func()

	stdoutW := io.Writer(os.Stdout)
	stderrW := io.Writer(os.Stderr)

	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdoutW = io.MultiWriter(os.Stdout, f)
		stderrW = io.MultiWriter(os.Stderr, f)
	}

	handler := &levelRouter{
		stdout: slog.NewTextHandler(stdoutW, opts),
		stderr: slog.NewTextHandler(stderrW, opts),
	}
	slog.SetDefault(slog.New(handler))
	return cleanup, nil
}

func main() {
	fs := flag.NewFlagSet("myitemlibrary", flag.ContinueOnError)

	var configPath string
	fs.StringVar(&configPath, "config", "myitemlibrary.yaml", "")
	fs.StringVar(&configPath, "c", "myitemlibrary.yaml", "")

	var logPath string
	fs.StringVar(&logPath, "log", "", "")
	fs.StringVar(&logPath, "l", "", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: myitemlibrary [flags]

Flags:
  -c, -config <path>      YAML config file, created on first run (default: myitemlibrary.yaml)
  -l, -log <path>         log file path, overrides log.file (default: stdout/stderr only)
  -h, -help               show this help and exit

Every setting can be overridden with MYITEMLIB_<SECTION>_<KEY>, e.g. MYITEMLIB_API_PORT.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	// Generate a config with a fresh API key on first run.
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		key, err := config.WriteDefault(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		printInitResult(configPath, key)
		fmt.Println()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if logPath == "" {
		logPath = cfg.Log.File
	}
	closeLog, err := setupLogger(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if closeLog != nil {
		defer closeLog()
	}

	if !cfg.API.Enabled {
		slog.Warn("api disabled in config, nothing to serve", "config", configPath)
		return
	}

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		if closeLog != nil {
			closeLog()
		}
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	limiter := ratelimit.New(cfg.DoS.MaxRequestsPerMinute, cfg.DoS.Window())
	limiter.StartJanitor(ctx, cfg.DoS.Window())

	recorder, memStats, closeStats, err := openRecorder(cfg)
	if err != nil {
		return err
	}
	defer closeStats()

	players := roster.NewMemory()
	router := api.NewRouter(cfg, s, players, limiter, recorder)

	server := &http.Server{
		Addr:              cfg.API.Addr(),
		Handler:           api.RequestLogger(router),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started",
		"addr", server.Addr,
		"database", cfg.Database.Mode,
		"dos_protection", cfg.DoS.Enabled,
		"max_requests", cfg.DoS.MaxRequestsPerMinute,
		"window", cfg.DoS.Window(),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if memStats != nil {
		slog.Info("gateway totals", "totals", memStats.Totals())
	}
	slog.Info("server stopped, closing database")
	return nil
}

// openStore selects the backend named by database.mode.
func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Database.Mode {
	case config.ModePostgres:
		s, err := store.OpenPostgres(cfg.Database.DSN, cfg.Database.QueryTimeout)
		if err != nil {
			return nil, err
		}
		slog.Info("database ready", "mode", cfg.Database.Mode)
		return s, nil
	default:
		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.Migrate(database); err != nil {
			database.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		slog.Info("database ready", "mode", cfg.Database.Mode, "path", cfg.Database.Path)
		return store.NewSQLStore(database, cfg.Database.QueryTimeout), nil
	}
}

// openRecorder returns a Redis recorder when stats.redis_addr is set and an
// in-memory one otherwise. The in-memory recorder is also returned on its
// own so its totals can be logged at shutdown.
func openRecorder(cfg *config.Config) (ratelimit.Recorder, *ratelimit.MemoryRecorder, func(), error) {
	if cfg.Stats.RedisAddr == "" {
		mem := ratelimit.NewMemoryRecorder()
		return mem, mem, func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Stats.RedisAddr,
		Password: cfg.Stats.RedisPassword,
		DB:       cfg.Stats.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	_, err := rdb.Ping(pingCtx).Result()
	cancel()
	if err != nil {
		rdb.Close()
		return nil, nil, nil, fmt.Errorf("redis stats ping: %w", err)
	}

	slog.Info("gateway stats in redis", "addr", cfg.Stats.RedisAddr, "prefix", cfg.Stats.Prefix)
	rec := ratelimit.NewRedisRecorder(rdb, ratelimit.WithPrefix(cfg.Stats.Prefix))
	return rec, nil, func() { _ = rdb.Close() }, nil
}

// printInitResult prints the generated config location and API key to stdout.
func printInitResult(path, key string) {
	fmt.Printf("Config created: %s\n", path)
	fmt.Println()
	fmt.Println("API key generated:")
	fmt.Printf("  %s\n", key)
	fmt.Println()
	fmt.Println("Send it in the X-API-Key header. It is stored in the config file.")
}
