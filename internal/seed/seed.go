package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"io"

	"github.com/fungo/internal/db"
	"github.com/fungo/internal/service"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed default.yaml
var defaultFixture []byte

// Fixture 是 populate 命令读取的 YAML 数据
type Fixture struct {
	Categories []CategoryFixture `yaml:"categories"`
}

// CategoryFixture 描述一个分类及其页面
type CategoryFixture struct {
	Name  string        `yaml:"name"`
	Likes int           `yaml:"likes"`
	Views int           `yaml:"views"`
	Pages []PageFixture `yaml:"pages"`
}

// PageFixture 描述分类下的一个链接
type PageFixture struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
	Views int    `yaml:"views"`
}

// Result 统计本次导入新建的数据量
type Result struct {
	CategoriesCreated int
	PagesCreated      int
}

// Default 返回内置的示例数据
func Default() (Fixture, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(defaultFixture, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("parse default fixture: %w", err)
	}
	return fixture, nil
}

// Decode 从 reader 解析 fixture
func Decode(r io.Reader) (Fixture, error) {
	var fixture Fixture
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&fixture); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixture{}, nil
		}
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}
	return fixture, nil
}

// Apply 写入 fixture，已存在的分类与页面只更新计数，不会重复创建
func Apply(gdb *gorm.DB, fixture Fixture) (Result, error) {
	var result Result

	err := gdb.Transaction(func(tx *gorm.DB) error {
		categories := service.NewCategoryService(tx)
		pages := service.NewPageService(tx)

		for _, item := range fixture.Categories {
			// 与 Create 一样先清洗，重复导入时才能找到已有记录
			name := service.CleanText(item.Name)
			category, err := categories.GetBySlug(service.Slugify(name))
			switch {
			case errors.Is(err, service.ErrCategoryNotFound):
				category, err = categories.Create(name)
				if err != nil {
					return fmt.Errorf("category %q: %w", item.Name, err)
				}
				result.CategoriesCreated++
			case err != nil:
				return err
			}

			if err := tx.Model(&db.Category{}).
				Where("id = ?", category.ID).
				UpdateColumns(map[string]interface{}{
					"likes": nonNegative(item.Likes),
					"views": nonNegative(item.Views),
				}).Error; err != nil {
				return fmt.Errorf("category %q counters: %w", item.Name, err)
			}

			for _, p := range item.Pages {
				title := service.CleanText(p.Title)
				var existing db.Page
				findErr := tx.Where("category_id = ? AND title = ?", category.ID, title).First(&existing).Error
				switch {
				case errors.Is(findErr, gorm.ErrRecordNotFound):
					created, err := pages.Create(category.ID, service.PageInput{Title: title, URL: p.URL})
					if err != nil {
						return fmt.Errorf("page %q: %w", p.Title, err)
					}
					existing = *created
					result.PagesCreated++
				case findErr != nil:
					return findErr
				}

				if err := tx.Model(&db.Page{}).
					Where("id = ?", existing.ID).
					UpdateColumn("views", nonNegative(p.Views)).Error; err != nil {
					return fmt.Errorf("page %q views: %w", p.Title, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	return result, nil
}

func nonNegative(value int) int {
	if value < 0 {
		return 0
	}
	return value
}
