package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/fanquiz/internal/adapter/driven/crypt"
	"github.com/ericfisherdev/fanquiz/internal/adapter/driven/opentdb"
	sqliteadapter "github.com/ericfisherdev/fanquiz/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/fanquiz/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/fanquiz/internal/adapter/driving/web"
	"github.com/ericfisherdev/fanquiz/internal/application"
	"github.com/ericfisherdev/fanquiz/internal/config"
)

// adminTokenPurpose labels the HKDF subkey that signs admin tokens.
const adminTokenPurpose = "fanquiz admin token v1"

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration. A .env file in the working directory is optional.
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"key_file", cfg.KeyFile,
		"question_limit", cfg.QuestionLimit,
		"admin_enabled", cfg.AdminEnabled(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Load or derive the master key.
	masterKey, err := crypt.LoadOrCreateKey(cfg.KeyFile, cfg.SaltFile, cfg.Passphrase)
	if err != nil {
		return fmt.Errorf("master key: %w", err)
	}
	codec, err := crypt.NewCodec(masterKey)
	if err != nil {
		return err
	}
	tokenSecret, err := crypt.SubKey(masterKey, adminTokenPurpose)
	if err != nil {
		return err
	}

	// 4. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 5. Run migrations on writer connection, then seed categories.
	version, err := sqliteadapter.RunMigrations(db.Writer)
	if err != nil {
		return err
	}
	slog.Info("migrations complete", "version", version)

	if err := sqliteadapter.SeedDefaultCategories(ctx, db, slog.Default()); err != nil {
		return err
	}

	// 6. Wire services.
	quizSvc := application.NewQuizService(
		sqliteadapter.NewCategoryRepo(db),
		sqliteadapter.NewQuestionRepo(db),
		sqliteadapter.NewScoreRepo(db),
		codec,
		slog.Default(),
		application.WithQuestionLimit(cfg.QuestionLimit),
	)
	sessionSvc := application.NewSessionService(
		quizSvc,
		application.NewSessionStore(cfg.SessionIdleTimeout, nil),
		slog.Default(),
	)
	triviaSvc := application.NewTriviaImporter(quizSvc, opentdb.NewClient())

	auth := httphandler.NewAdminAuth(cfg.AdminPassword, tokenSecret, cfg.AdminTokenTTL)
	if !auth.Enabled() {
		slog.Warn("FANQUIZ_ADMIN_PASSWORD not set, admin endpoints disabled")
	}

	// 7. Register API and web routes on one mux.
	mux := http.NewServeMux()
	httphandler.RegisterRoutes(mux, httphandler.NewHandler(quizSvc, sessionSvc, triviaSvc, auth, slog.Default()))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(quizSvc, slog.Default()))

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.Wrap(mux, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	slog.Info("fanquiz started", "listen_addr", cfg.ListenAddr)

	// 8. Wait for shutdown signal or a listener failure.
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	// 9. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
