package cli

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

	httpadp "miniloan-backend/internal/adapter/http"
	"miniloan-backend/internal/adapter/notify"
	"miniloan-backend/internal/adapter/repository/mysql"
	"miniloan-backend/internal/config"
	"miniloan-backend/internal/infrastructure/cache"
	"miniloan-backend/internal/infrastructure/db"
	"miniloan-backend/internal/observability"
	loanuc "miniloan-backend/internal/usecase/loan"
	useruc "miniloan-backend/internal/usecase/user"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().Bool("migrate", false, "Run schema migration before serving")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := observability.NewLogger(cfg.AppEnv)
	slog.SetDefault(log)

	gdb, err := db.OpenGorm(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if doMigrate, _ := cmd.Flags().GetBool("migrate"); doMigrate {
		if err := mysql.Migrate(gdb); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		log.Info("schema migrated")
	}
	rdb, err := cache.OpenRedis(cmd.Context(), cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return fmt.Errorf("open redis: %w", err)
	}
	defer rdb.Close()

	var notifier loanuc.Notifier = notify.NewLogNotifier(log)
	if cfg.EventsChannel != "" {
		notifier = notify.NewRedisPublisher(rdb, cfg.EventsChannel)
	}

	users := useruc.NewUsecase(mysql.NewUserRepository(gdb))
	loans := loanuc.NewUsecase(
		mysql.NewLoanRepository(gdb),
		mysql.NewPaymentRepository(gdb),
		users,
		mysql.NewGormUoW(gdb),
		loanuc.WithNotifier(notifier),
		loanuc.WithLogger(log),
	)

	e := httpadp.NewRouter(httpadp.Deps{
		Loans:          loans,
		Users:          users,
		Redis:          rdb,
		IdempotencyTTL: cfg.IdempotencyTTL(),
		Log:            log,
		Checks: map[string]httpadp.Check{
			"db":    pingDB(gdb),
			"redis": cache.Check(rdb),
		},
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + cfg.AppPort
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.AppEnv, "db", cfg.DBDriver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func pingDB(gdb *gorm.DB) httpadp.Check {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
