package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/fungo/internal/db"
	"github.com/fungo/internal/handler"
	"github.com/fungo/internal/metrics"
	"github.com/fungo/internal/router"
	"github.com/fungo/internal/scheduler"
	"github.com/fungo/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, rt)
		},
	}
}

func serve(ctx context.Context, rt *app) error {
	cfg, log := rt.cfg, rt.log

	if created, err := service.NewUserService(db.DB).Ensure(cfg.BootstrapUserName, cfg.BootstrapPassword); err != nil {
		return err
	} else if created {
		log.Info("bootstrap user created", zap.String("username", cfg.BootstrapUserName))
	}

	switch cfg.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.GinMode)
	default:
		log.Warn("unknown GIN_MODE, using release", zap.String("gin_mode", cfg.GinMode))
		gin.SetMode(gin.ReleaseMode)
	}

	api := handler.NewAPI(db.DB, log, cfg.UploadDir, cfg.UploadURLPath)
	engine, err := router.SetupRouter(api, router.Options{
		SessionSecret:      cfg.SessionSecret,
		UploadDir:          cfg.UploadDir,
		UploadURLPath:      cfg.UploadURLPath,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
		Logger:             log,
	})
	if err != nil {
		return err
	}

	// 定时刷新站点统计指标
	stats := service.NewStatsService(db.DB)
	jobs := scheduler.New(time.Local, log.Named("scheduler"))
	if _, err := jobs.Schedule(cfg.StatsRefresh, "site-stats", func() error {
		return metrics.Refresh(stats)
	}); err != nil {
		return err
	}
	if err := metrics.Refresh(stats); err != nil {
		log.Warn("initial stats refresh failed", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		jobs.Start()
		<-gctx.Done()
		jobs.Stop()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
