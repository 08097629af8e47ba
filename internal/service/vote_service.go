package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/fungo/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeResult 描述一次点赞后的分类状态。
type LikeResult struct {
	Likes int
	// Counted 为 false 表示用户之前已经点过赞，本次不计数
	Counted bool
}

// VoteService 负责分类点赞，保证每个用户对同一分类最多一票。
type VoteService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewVoteService 创建 VoteService。
func NewVoteService(gdb *gorm.DB) *VoteService {
	return &VoteService{db: gdb, now: time.Now}
}

// Like 为分类记录用户的一票并返回最新点赞数；重复点赞不会改变计数。
func (s *VoteService) Like(categoryID, userID uint) (LikeResult, error) {
	if categoryID == 0 {
		return LikeResult{}, ErrCategoryNotFound
	}
	if userID == 0 {
		return LikeResult{}, errors.New("invalid user id")
	}

	var result LikeResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var category db.Category
		if err := tx.Select("id").First(&category, categoryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}

		voter := db.CategoryVoter{
			CategoryID: categoryID,
			UserID:     userID,
			CreatedAt:  s.now(),
		}
		insert := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "category_id"}, {Name: "user_id"}},
				DoNothing: true,
			}).
			Create(&voter)
		if insert.Error != nil {
			return insert.Error
		}

		result.Counted = insert.RowsAffected == 1
		if result.Counted {
			if err := tx.Model(&db.Category{}).
				Where("id = ?", categoryID).
				UpdateColumn("likes", gorm.Expr("likes + ?", 1)).Error; err != nil {
				return err
			}
		}

		return tx.Model(&db.Category{}).
			Select("likes").
			Where("id = ?", categoryID).
			Scan(&result.Likes).Error
	})
	if err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return LikeResult{}, ErrCategoryNotFound
		}
		return LikeResult{}, fmt.Errorf("like category: %w", err)
	}

	return result, nil
}

// HasVoted 判断用户是否已经为分类点过赞。
func (s *VoteService) HasVoted(categoryID, userID uint) (bool, error) {
	if categoryID == 0 || userID == 0 {
		return false, nil
	}

	var count int64
	if err := s.db.Model(&db.CategoryVoter{}).
		Where("category_id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check voter: %w", err)
	}
	return count > 0, nil
}

// CanLike 仅当用户已登录且尚未投票时返回 true。
func (s *VoteService) CanLike(categoryID, userID uint, authenticated bool) (bool, error) {
	if !authenticated || userID == 0 {
		return false, nil
	}
	voted, err := s.HasVoted(categoryID, userID)
	if err != nil {
		return false, err
	}
	return !voted, nil
}

// LikedCategories 返回用户点过赞的分类，最近的在前。
func (s *VoteService) LikedCategories(userID uint) ([]db.Category, error) {
	var categories []db.Category
	if err := s.db.Model(&db.Category{}).
		Joins("JOIN category_voters cv ON cv.category_id = categories.id").
		Where("cv.user_id = ?", userID).
		Order("cv.created_at desc").
		Order("categories.id asc").
		Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list liked categories: %w", err)
	}
	return categories, nil
}
