package service

import (
	"fmt"
	"strings"

	"github.com/fungo/internal/db"
	"gorm.io/gorm"
)

// DefaultRankingSize is the number of entries shown on the index page.
const DefaultRankingSize = 5

// RankingService answers the listing queries. None of them touch counters.
type RankingService struct {
	db *gorm.DB
}

// NewRankingService returns a new RankingService instance.
func NewRankingService(gdb *gorm.DB) *RankingService {
	return &RankingService{db: gdb}
}

// TopCategories returns up to n categories with the most likes, ties by id.
func (s *RankingService) TopCategories(n int) ([]db.Category, error) {
	var categories []db.Category
	if err := s.db.
		Order("likes desc").
		Order("id asc").
		Limit(rankingSize(n)).
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("top categories: %w", err)
	}
	return categories, nil
}

// TopPages returns up to n pages with the most views, ties by id.
func (s *RankingService) TopPages(n int) ([]db.Page, error) {
	var pages []db.Page
	if err := s.db.
		Preload("Category").
		Order("views desc").
		Order("id asc").
		Limit(rankingSize(n)).
		Find(&pages).Error; err != nil {
		return nil, fmt.Errorf("top pages: %w", err)
	}
	return pages, nil
}

// PagesForCategory returns every page filed under the category, most viewed first.
func (s *RankingService) PagesForCategory(categoryID uint) ([]db.Page, error) {
	var pages []db.Page
	if err := s.db.
		Where("category_id = ?", categoryID).
		Order("views desc").
		Order("id asc").
		Find(&pages).Error; err != nil {
		return nil, fmt.Errorf("pages for category: %w", err)
	}
	return pages, nil
}

// Suggest returns up to n categories whose name starts with prefix,
// ignoring case. An empty prefix yields nothing.
func (s *RankingService) Suggest(prefix string, n int) ([]db.Category, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return []db.Category{}, nil
	}

	pattern := escapeLike(db.SearchKey(prefix)) + "%"

	var categories []db.Category
	if err := s.db.
		Where("search_name LIKE ? ESCAPE '\\'", pattern).
		Order("views desc").
		Order("id asc").
		Limit(rankingSize(n)).
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("suggest categories: %w", err)
	}
	return categories, nil
}

func rankingSize(n int) int {
	if n <= 0 {
		return DefaultRankingSize
	}
	return n
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
