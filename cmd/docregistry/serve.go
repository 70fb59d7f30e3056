package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/docregistry/docregistry/internal/database"
	"github.com/docregistry/docregistry/internal/document/service"
	"github.com/docregistry/docregistry/internal/server"
	"github.com/docregistry/docregistry/internal/storage"
	"github.com/docregistry/docregistry/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Server.Environment == "production" {
			gin.SetMode(gin.ReleaseMode)
		}

		var opts []service.Option
		if cfg.MinIO.Endpoint != "" {
			archive, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
			if err != nil {
				logger.Warnf("publication archive disabled: %v", err)
			} else {
				logger.Infof("archiving publications to bucket %s at %s", cfg.MinIO.Bucket, cfg.MinIO.Endpoint)
				opts = append(opts, service.WithArchiver(archive))
			}
		}

		var rdb *redis.Client
		if cfg.Redis.Host != "" {
			rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
			defer rdb.Close()
			if err := rdb.Ping(ctx).Err(); err != nil {
				logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			} else {
				logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
			}
		}

		svc, db := newService(ctx, seedRequested(cmd), opts...)
		deps := server.Deps{Config: cfg, Service: svc, Redis: rdb}
		if db != nil {
			defer db.Close()
			deps.Store = db
		}
		r := server.New(deps)

		srv := &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      r,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Infof("docregistry listening on %s (env=%s, db=%s)", srv.Addr, cfg.Server.Environment, cfg.Database.Path)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Infof("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

// newService runs the registry on the SQLite store. When the database cannot
// be opened it falls back to in-memory documents and returns a nil DB, so
// /ready reports the database as down.
func newService(ctx context.Context, seed bool, opts ...service.Option) (service.Service, *database.DB) {
	db, err := openStore(ctx, seed)
	if db == nil {
		logger.Warnf("cannot open database %s (%v), using in-memory documents", cfg.Database.Path, err)
		return service.NewMemoryService(opts...), nil
	}
	if err != nil {
		// keep serving; requests fail with 500 and /ready reports not ready
		logger.Errorf("store initialization failed: %v", err)
	}
	return service.NewSQLService(db, opts...), db
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (SERVER_PORT)")
	serveCmd.Flags().String("host", "", "listen address (SERVER_HOST)")
	serveCmd.Flags().Bool("seed", false, "insert sample documents into an empty table (DATABASE_SEED)")
	_ = viper.BindPFlag("SERVER_PORT", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("SERVER_HOST", serveCmd.Flags().Lookup("host"))
	rootCmd.AddCommand(serveCmd)
}
