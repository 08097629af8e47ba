package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Init 初始化数据库连接并执行自动迁移。
// databasePath 为空时将回退到默认值 fungo.db。
func Init(databasePath string, log *zap.Logger) error {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = "fungo.db"
	}

	if err := ensureParentDir(path); err != nil {
		return err
	}

	if log == nil {
		log = zap.NewNop()
	}

	gormLogger := logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	// sqlite 只允许单个写连接，串行化避免 database is locked
	sqlDB, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := Migrate(gdb); err != nil {
		return err
	}

	DB = gdb
	return nil
}

// Migrate 为核心模型创建表
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&User{},
		&UserProfile{},
		&Category{},
		&CategoryVoter{},
		&Page{},
	); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return backfillSearchNames(gdb)
}

// backfillSearchNames 为加列之前创建的分类补齐 search_name
func backfillSearchNames(gdb *gorm.DB) error {
	var stale []Category
	if err := gdb.Select("id", "name").Where("search_name = ''").Find(&stale).Error; err != nil {
		return fmt.Errorf("find categories without search name: %w", err)
	}
	for _, category := range stale {
		if err := gdb.Model(&Category{}).
			Where("id = ?", category.ID).
			UpdateColumn("search_name", SearchKey(category.Name)).Error; err != nil {
			return fmt.Errorf("backfill search name: %w", err)
		}
	}
	return nil
}

func ensureParentDir(path string) error {
	if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
		return nil
	}

	clean := strings.TrimPrefix(path, "file:")
	clean = strings.Split(clean, "?")[0]

	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
