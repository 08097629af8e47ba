package handler

import (
	"github.com/fungo/internal/db"
	"github.com/fungo/internal/service"
)

type rankingProvider interface {
	TopCategories(n int) ([]db.Category, error)
	TopPages(n int) ([]db.Page, error)
	PagesForCategory(categoryID uint) ([]db.Page, error)
	Suggest(prefix string, n int) ([]db.Category, error)
}

type voteLedger interface {
	Like(categoryID, userID uint) (service.LikeResult, error)
	CanLike(categoryID, userID uint, authenticated bool) (bool, error)
	LikedCategories(userID uint) ([]db.Category, error)
}
