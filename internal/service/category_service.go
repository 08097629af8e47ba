package service

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/fungo/internal/db"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"
)

const maxNameLength = 128

var (
	ErrCategoryNotFound    = errors.New("category not found")
	ErrCategoryExists      = errors.New("category already exists")
	ErrCategoryNameMissing = errors.New("category name is required")
	ErrCategoryNameInvalid = errors.New("category name must contain letters or digits")
	ErrCategoryNameTooLong = errors.New("category name is too long")
)

// plainText strips any markup from user submitted names and titles.
var plainText = bluemonday.StrictPolicy()

// CategoryService wraps category creation and lookup.
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a CategoryService instance.
func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// Create inserts a new category with a slug derived from its name.
// Counters always start at zero.
func (s *CategoryService) Create(name string) (*db.Category, error) {
	name = CleanText(name)
	if name == "" {
		return nil, ErrCategoryNameMissing
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, ErrCategoryNameTooLong
	}

	slug := Slugify(name)
	if slug == "" {
		return nil, ErrCategoryNameInvalid
	}

	var count int64
	if err := s.db.Model(&db.Category{}).
		Where("name = ? OR slug = ?", name, slug).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check category: %w", err)
	}
	if count > 0 {
		return nil, ErrCategoryExists
	}

	category := db.Category{Name: name, Slug: slug}
	if err := s.db.Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("create category: %w", err)
	}

	return &category, nil
}

// Get fetches a category by id without touching its counters.
func (s *CategoryService) Get(id uint) (*db.Category, error) {
	var category db.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	return &category, nil
}

// GetBySlug fetches a category for a given slug without touching its counters.
func (s *CategoryService) GetBySlug(slug string) (*db.Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrCategoryNotFound
	}

	var category db.Category
	if err := s.db.Where("slug = ?", slug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return &category, nil
}

// ViewBySlug resolves a category for its detail page and counts the view.
func (s *CategoryService) ViewBySlug(slug string) (*db.Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrCategoryNotFound
	}

	var category db.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&db.Category{}).
			Where("slug = ?", slug).
			UpdateColumn("views", gorm.Expr("views + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrCategoryNotFound
		}
		return tx.Where("slug = ?", slug).First(&category).Error
	})
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("view category: %w", err)
	}

	return &category, nil
}

// ListAll returns every category ordered by name, used by the sidebar.
func (s *CategoryService) ListAll() ([]db.Category, error) {
	var categories []db.Category
	if err := s.db.Order("name asc").Order("id asc").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// CleanText strips markup from a submitted name or title and collapses whitespace.
// Stored names and titles always pass through it, so lookups must too.
func CleanText(raw string) string {
	sanitized := html.UnescapeString(plainText.Sanitize(raw))
	return strings.Join(strings.Fields(sanitized), " ")
}
