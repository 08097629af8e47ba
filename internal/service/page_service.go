package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/fungo/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPageNotFound     = errors.New("page not found")
	ErrPageTitleMissing = errors.New("page title is required")
	ErrPageTitleTooLong = errors.New("page title is too long")
	ErrPageURLInvalid   = errors.New("page url must be an absolute http(s) url")
)

const maxURLLength = 200

// PageInput 描述新增页面时提交的字段
type PageInput struct {
	Title string
	URL   string
}

// PageService provides access to the links filed under categories.
type PageService struct {
	db *gorm.DB
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB) *PageService {
	return &PageService{db: gdb}
}

// Create files a new page under the category. Views start at zero.
func (s *PageService) Create(categoryID uint, input PageInput) (*db.Page, error) {
	title := CleanText(input.Title)
	if title == "" {
		return nil, ErrPageTitleMissing
	}
	if utf8.RuneCountInString(title) > maxNameLength {
		return nil, ErrPageTitleTooLong
	}

	link, err := NormalizePageURL(input.URL)
	if err != nil {
		return nil, err
	}

	var page db.Page
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var category db.Category
		if err := tx.Select("id").First(&category, categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}

		page = db.Page{CategoryID: category.ID, Title: title, URL: link}
		return tx.Omit(clause.Associations).Create(&page).Error
	})
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("create page: %w", err)
	}

	return &page, nil
}

// Get fetches a page by id.
func (s *PageService) Get(id uint) (*db.Page, error) {
	var page db.Page
	if err := s.db.First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("get page: %w", err)
	}
	return &page, nil
}

// Track counts a click on the page and returns it with the updated views.
func (s *PageService) Track(id uint) (*db.Page, error) {
	if id == 0 {
		return nil, ErrPageNotFound
	}

	var page db.Page
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&db.Page{}).
			Where("id = ?", id).
			UpdateColumn("views", gorm.Expr("views + ?", 1))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrPageNotFound
		}
		return tx.First(&page, id).Error
	})
	if err != nil {
		if errors.Is(err, ErrPageNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("track page: %w", err)
	}

	return &page, nil
}

// NormalizePageURL 校验并规范化页面链接，缺少协议时补全 http://
func NormalizePageURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrPageURLInvalid
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	if len(trimmed) > maxURLLength {
		return "", ErrPageURLInvalid
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", ErrPageURLInvalid
	}
	scheme := strings.ToLower(parsed.Scheme)
	if (scheme != "http" && scheme != "https") || parsed.Host == "" {
		return "", ErrPageURLInvalid
	}
	parsed.Scheme = scheme

	return parsed.String(), nil
}
