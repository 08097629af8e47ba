package main

import (
	"fmt"
	"os"

	"github.com/fungo/internal/config"
	"github.com/fungo/internal/db"
	"github.com/fungo/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fungo",
		Short:         "Fungo: categories, pages and likes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd(), newPopulateCmd(), newCreateUserCmd())
	return root
}

// app 是各子命令共享的启动结果
type app struct {
	cfg config.AppConfig
	log *zap.Logger
}

// bootstrap 读取配置、初始化日志并打开数据库
func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if err := db.Init(cfg.DatabasePath, log); err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	return &app{cfg: cfg, log: log}, nil
}

func (a *app) close() {
	if sqlDB, err := db.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}
