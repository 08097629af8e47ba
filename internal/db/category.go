package db

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Category 是页面的分组，按点赞数排名
// Slug 只在创建时生成，之后不再修改
// SearchName 是 Go 侧转小写的名称，sqlite 的 LOWER 只处理 ASCII
type Category struct {
	ID         uint      `gorm:"primaryKey"`
	Name       string    `gorm:"size:128;uniqueIndex;not null"`
	Slug       string    `gorm:"size:160;uniqueIndex;not null"`
	SearchName string    `gorm:"size:128;index;not null;default:''"`
	Likes      int       `gorm:"not null;default:0"`
	Views      int       `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BeforeSave 保持 SearchName 与 Name 同步
func (c *Category) BeforeSave(*gorm.DB) error {
	c.SearchName = SearchKey(c.Name)
	return nil
}

// SearchKey 返回名称用于前缀匹配的小写形式
func SearchKey(name string) string {
	return strings.ToLower(name)
}

// CategoryVoter 记录点过赞的用户，(category_id, user_id) 保证每人只能点一次
type CategoryVoter struct {
	CategoryID uint     `gorm:"primaryKey;autoIncrement:false"`
	UserID     uint     `gorm:"primaryKey;autoIncrement:false;index"`
	Category   Category `gorm:"constraint:OnDelete:CASCADE"`
	User       User     `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
}

// TableName 指定自定义表名。
func (CategoryVoter) TableName() string {
	return "category_voters"
}
