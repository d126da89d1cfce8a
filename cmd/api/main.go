package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/ZINSTEM/SoloGym/internal/router"
	taskrepo "github.com/ZINSTEM/SoloGym/internal/task/repo"
	userrepo "github.com/ZINSTEM/SoloGym/internal/user/repo"
	"github.com/ZINSTEM/SoloGym/pkg/database"
	"github.com/ZINSTEM/SoloGym/pkg/utilities"
)

func main() {
	// load .env file if present so os.Getenv picks values from it
	// this is best-effort: if no .env exists, continue (use defaults or real env)
	_ = godotenv.Load()

	// init logger
	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Info("starting sologym api")

	// init db
	cfg := database.ConfigFromEnv()
	sqlDB, err := database.Connect(cfg)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	// wrap with sqlx for convenience in repos/services
	sqlxDB := sqlx.NewDb(sqlDB, "postgres")
	defer sqlxDB.Close()

	// bring the schema up; tables are created in dependency order
	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelSchema()
	if err := ensureSchema(schemaCtx, sqlxDB); err != nil {
		sugar.Fatalf("ensure schema: %v", err)
	}

	// graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = "0.0.0.0:8420"
	}

	// mount http server
	handler := router.RegisterRoutes(sugar, sqlxDB)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// run server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	sugar.Infow("sologym api is running; press Ctrl+C to stop", "addr", addr)

	<-ctx.Done()

	sugar.Info("shutting down")

	// give a short grace period for cleanup
	doneCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// ping db once more
	if err := sqlDB.PingContext(doneCtx); err != nil {
		sugar.Warnf("db ping on shutdown failed: %v", err)
	}

	// shutdown http server
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}

func ensureSchema(ctx context.Context, db *sqlx.DB) error {
	if err := userrepo.NewUserRepo(db).EnsureTable(ctx); err != nil {
		return fmt.Errorf("users table: %w", err)
	}
	if err := taskrepo.NewTaskRepo(db).EnsureTable(ctx); err != nil {
		return fmt.Errorf("tasks table: %w", err)
	}
	if err := userrepo.NewHistoryRepo(db).EnsureTable(ctx); err != nil {
		return fmt.Errorf("attribute_history table: %w", err)
	}
	return nil
}
