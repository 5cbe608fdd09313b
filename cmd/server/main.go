package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/emberhaus/internal/cache"
	"github.com/emberhaus/internal/config"
	"github.com/emberhaus/internal/db"
	"github.com/emberhaus/internal/handler"
	"github.com/emberhaus/internal/logging"
	"github.com/emberhaus/internal/router"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:           "server",
		Short:         "Serve the Emberhaus site, API and admin dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", config.DefaultConfigPath, "path to the YAML config file")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化数据库
	gormLog := logger.Default.LogMode(logger.Silent)
	if !cfg.IsProduction() && cfg.LogLevel == "debug" {
		gormLog = logger.Default.LogMode(logger.Info)
	}
	dsn := cfg.DatabasePath
	if cfg.DBDriver == "mysql" {
		dsn = cfg.DatabaseDSN
	}
	if err := db.Init(cfg.DBDriver, dsn, gormLog); err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}

	store, err := cache.New(cfg.RedisURL, cfg.CacheDuration())
	if err != nil {
		return fmt.Errorf("connecting cache: %w", err)
	}
	defer store.Close()

	adminHash, err := adminPasswordHash(cfg)
	if err != nil {
		return err
	}
	if len(adminHash) == 0 {
		log.Warn("no admin password configured; the dashboard cannot be signed into")
	}

	api := handler.NewAPI(db.DB, handler.Options{
		SiteName:          cfg.SiteName,
		SiteURL:           cfg.SiteBaseURL,
		UploadDir:         cfg.UploadDir,
		UploadURL:         cfg.UploadURLPath,
		AdminPasswordHash: adminHash,
		Cache:             store,
		Logger:            log,
		NoIndex:           !cfg.IsProduction(),
	})

	// 设置并运行 Gin 服务器
	r, err := router.SetupRouter(cfg, router.Deps{API: api, Cache: store, Logger: log})
	if err != nil {
		return fmt.Errorf("setting up router: %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", cfg.ListenAddr),
			zap.String("env", cfg.Env),
			zap.String("db_driver", cfg.DBDriver),
			zap.Bool("redis_cache", cfg.RedisURL != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

// adminPasswordHash prefers the configured bcrypt hash and otherwise hashes the plain
// password once at start-up.
func adminPasswordHash(cfg config.AppConfig) ([]byte, error) {
	if hash := strings.TrimSpace(cfg.AdminPasswordHash); hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
		return []byte(hash), nil
	}
	if cfg.AdminPassword == "" {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}
	return hash, nil
}
