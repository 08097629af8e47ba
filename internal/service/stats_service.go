package service

import (
	"fmt"

	"github.com/fungo/internal/db"
	"gorm.io/gorm"
)

// SiteStats 汇总站点层面的计数
type SiteStats struct {
	Categories    int64
	Pages         int64
	Users         int64
	Likes         int64
	CategoryViews int64
	PageViews     int64
}

// StatsService 负责汇总站点统计，供定时任务刷新指标使用
type StatsService struct {
	db *gorm.DB
}

// NewStatsService 创建 StatsService
func NewStatsService(gdb *gorm.DB) *StatsService {
	return &StatsService{db: gdb}
}

// Snapshot 返回当前的站点统计
func (s *StatsService) Snapshot() (SiteStats, error) {
	var stats SiteStats

	var categoryTotals struct {
		Count int64
		Likes int64
		Views int64
	}
	if err := s.db.Model(&db.Category{}).
		Select("COUNT(*) AS count, COALESCE(SUM(likes), 0) AS likes, COALESCE(SUM(views), 0) AS views").
		Scan(&categoryTotals).Error; err != nil {
		return stats, fmt.Errorf("category totals: %w", err)
	}
	stats.Categories = categoryTotals.Count
	stats.Likes = categoryTotals.Likes
	stats.CategoryViews = categoryTotals.Views

	var pageTotals struct {
		Count int64
		Views int64
	}
	if err := s.db.Model(&db.Page{}).
		Select("COUNT(*) AS count, COALESCE(SUM(views), 0) AS views").
		Scan(&pageTotals).Error; err != nil {
		return stats, fmt.Errorf("page totals: %w", err)
	}
	stats.Pages = pageTotals.Count
	stats.PageViews = pageTotals.Views

	if err := s.db.Model(&db.User{}).Count(&stats.Users).Error; err != nil {
		return stats, fmt.Errorf("user totals: %w", err)
	}

	return stats, nil
}
