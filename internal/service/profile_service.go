package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fungo/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrProfileWebsiteInvalid 在个人网站不是合法链接时返回
var ErrProfileWebsiteInvalid = errors.New("invalid profile website")

// ProfileService 负责维护用户主页的附加信息
// 图片文件的落盘由调用方完成
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService 构造 ProfileService
func NewProfileService(gdb *gorm.DB) *ProfileService {
	return &ProfileService{db: gdb}
}

// ProfileInput 描述更新个人资料时可设置的字段
// PictureURL 为 nil 时保持原图片不变
type ProfileInput struct {
	Website    string
	PictureURL *string
}

// Get 返回用户资料，不存在时返回空资料而非错误
func (s *ProfileService) Get(userID uint) (*db.UserProfile, error) {
	var profile db.UserProfile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &db.UserProfile{UserID: userID}, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// Update 创建或更新用户资料
func (s *ProfileService) Update(userID uint, input ProfileInput) (*db.UserProfile, error) {
	website, err := NormalizeWebsite(input.Website)
	if err != nil {
		return nil, err
	}

	var profile db.UserProfile
	err = s.db.Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("user_id = ?", userID).First(&profile).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			profile = db.UserProfile{UserID: userID}
		case findErr != nil:
			return findErr
		}

		profile.Website = website
		if input.PictureURL != nil {
			profile.PictureURL = strings.TrimSpace(*input.PictureURL)
		}

		return tx.Omit(clause.Associations).Save(&profile).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return &profile, nil
}

// NormalizeWebsite 校验并规范化个人网站地址，空字符串表示清除
func NormalizeWebsite(raw string) (string, error) {
	website := strings.TrimSpace(raw)
	if website == "" {
		return "", nil
	}
	normalized, err := NormalizePageURL(website)
	if err != nil {
		return "", ErrProfileWebsiteInvalid
	}
	return normalized, nil
}
