package service

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/fungo/internal/db"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func init() {
	passwordHashCost = bcrypt.MinCost
}

// openTestDB 每个测试使用独立的内存库
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:fungo-service-%d?mode=memory&cache=shared", testDBSeq.Add(1))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func createTestUser(t *testing.T, gdb *gorm.DB, username string) *db.User {
	t.Helper()
	user := db.User{Username: username, Password: "x"}
	require.NoError(t, gdb.Create(&user).Error)
	return &user
}

func createTestCategory(t *testing.T, gdb *gorm.DB, name string, likes, views int) *db.Category {
	t.Helper()
	category := db.Category{Name: name, Slug: Slugify(name), Likes: likes, Views: views}
	require.NoError(t, gdb.Create(&category).Error)
	return &category
}
