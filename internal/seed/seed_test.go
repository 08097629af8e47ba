package seed

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/fungo/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:fungo-seed-%d?mode=memory&cache=shared", testDBSeq.Add(1))
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

func TestDefaultFixture(t *testing.T) {
	fixture, err := Default()
	require.NoError(t, err)
	require.NotEmpty(t, fixture.Categories)

	for _, category := range fixture.Categories {
		assert.NotEmpty(t, category.Name)
		assert.NotEmpty(t, category.Pages, "category %s", category.Name)
	}
}

func TestDecode(t *testing.T) {
	fixture, err := Decode(strings.NewReader(`
categories:
  - name: Rust
    likes: 3
    pages:
      - title: The Book
        url: https://doc.rust-lang.org/book/
        views: 4
`))
	require.NoError(t, err)
	require.Len(t, fixture.Categories, 1)
	assert.Equal(t, "Rust", fixture.Categories[0].Name)
	assert.Equal(t, 4, fixture.Categories[0].Pages[0].Views)

	empty, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, empty.Categories)

	_, err = Decode(strings.NewReader("categories:\n  - name: Go\n    stars: 5\n"))
	assert.Error(t, err, "unknown fields are rejected")
}

func TestApplyIsIdempotent(t *testing.T) {
	gdb := openTestDB(t)
	fixture, err := Default()
	require.NoError(t, err)

	pageCount := 0
	for _, category := range fixture.Categories {
		pageCount += len(category.Pages)
	}

	first, err := Apply(gdb, fixture)
	require.NoError(t, err)
	assert.Equal(t, Result{CategoriesCreated: len(fixture.Categories), PagesCreated: pageCount}, first)

	second, err := Apply(gdb, fixture)
	require.NoError(t, err)
	assert.Equal(t, Result{}, second)

	var categories int64
	require.NoError(t, gdb.Model(&db.Category{}).Count(&categories).Error)
	assert.EqualValues(t, len(fixture.Categories), categories)

	var goCategory db.Category
	require.NoError(t, gdb.Where("slug = ?", "go").First(&goCategory).Error)
	assert.Equal(t, fixture.Categories[0].Likes, goCategory.Likes)
	assert.Equal(t, fixture.Categories[0].Views, goCategory.Views)
}

func TestApplyRejectsInvalidPage(t *testing.T) {
	gdb := openTestDB(t)

	_, err := Apply(gdb, Fixture{Categories: []CategoryFixture{{
		Name:  "Broken",
		Pages: []PageFixture{{Title: "bad", URL: "ftp://example.com"}},
	}}})
	require.Error(t, err)

	// 整个导入在一个事务里，失败时不留下分类
	var categories int64
	require.NoError(t, gdb.Model(&db.Category{}).Count(&categories).Error)
	assert.Zero(t, categories)
}

func TestApplyMatchesCleanedNames(t *testing.T) {
	gdb := openTestDB(t)
	fixture := Fixture{Categories: []CategoryFixture{{
		Name:  "Tom &amp; Jerry",
		Likes: 2,
		Pages: []PageFixture{{Title: "Official   Tutorial", URL: "https://example.com/tutorial", Views: 5}},
	}}}

	first, err := Apply(gdb, fixture)
	require.NoError(t, err)
	assert.Equal(t, Result{CategoriesCreated: 1, PagesCreated: 1}, first)

	second, err := Apply(gdb, fixture)
	require.NoError(t, err)
	assert.Equal(t, Result{}, second)

	var categories, pages int64
	require.NoError(t, gdb.Model(&db.Category{}).Count(&categories).Error)
	require.NoError(t, gdb.Model(&db.Page{}).Count(&pages).Error)
	assert.EqualValues(t, 1, categories)
	assert.EqualValues(t, 1, pages)

	var page db.Page
	require.NoError(t, gdb.First(&page).Error)
	assert.Equal(t, "Official Tutorial", page.Title)
	assert.Equal(t, 5, page.Views)
}
