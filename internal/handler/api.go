package handler

import (
	"strings"
	"time"

	"github.com/fungo/internal/db"
	"github.com/fungo/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db         *gorm.DB
	categories *service.CategoryService
	pages      *service.PageService
	ranking    rankingProvider
	votes      voteLedger
	users      *service.UserService
	profiles   *service.ProfileService
	log        *zap.Logger
	uploadDir  string
	uploadURL  string
	now        func() time.Time
}

const (
	sessionKeyUserID    = "user_id"
	sessionKeyUsername  = "username"
	sessionKeyVisits    = "visits"
	sessionKeyLastVisit = "last_visit"

	sidebarContextKey = "__sidebar_categories"
	visitsContextKey  = "__visits"
)

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, log *zap.Logger, uploadDir, uploadURL string) *API {
	if log == nil {
		log = zap.NewNop()
	}

	return &API{
		db:         gdb,
		categories: service.NewCategoryService(gdb),
		pages:      service.NewPageService(gdb),
		ranking:    service.NewRankingService(gdb),
		votes:      service.NewVoteService(gdb),
		users:      service.NewUserService(gdb),
		profiles:   service.NewProfileService(gdb),
		log:        log,
		uploadDir:  uploadDir,
		uploadURL:  strings.TrimRight(uploadURL, "/"),
		now:        time.Now,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

type currentUser struct {
	ID       uint
	Username string
}

func (a *API) currentUser(c *gin.Context) (currentUser, bool) {
	session := sessions.Default(c)
	id := sessionUint(session.Get(sessionKeyUserID))
	if id == 0 {
		return currentUser{}, false
	}
	username, _ := session.Get(sessionKeyUsername).(string)
	return currentUser{ID: id, Username: username}, true
}

func sessionUint(value interface{}) uint {
	switch v := value.(type) {
	case uint:
		return v
	case uint64:
		return uint(v)
	case int:
		if v > 0 {
			return uint(v)
		}
	case int64:
		if v > 0 {
			return uint(v)
		}
	case float64:
		if v > 0 {
			return uint(v)
		}
	}
	return 0
}

func (a *API) sidebar(c *gin.Context) []db.Category {
	if cached, exists := c.Get(sidebarContextKey); exists {
		if categories, ok := cached.([]db.Category); ok {
			return categories
		}
	}

	categories, err := a.categories.ListAll()
	if err != nil {
		c.Error(err)
		a.log.Warn("load sidebar categories", zap.Error(err))
		categories = nil
	}

	c.Set(sidebarContextKey, categories)
	return categories
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["cats"]; !exists {
		payload["cats"] = a.sidebar(c)
	}
	if _, exists := payload["activeCategory"]; !exists {
		payload["activeCategory"] = ""
	}
	if _, exists := payload["title"]; !exists {
		payload["title"] = "Fungo"
	}
	if _, exists := payload["user"]; !exists {
		user, _ := a.currentUser(c)
		payload["user"] = user.Username
	}
	if _, exists := payload["visits"]; !exists {
		payload["visits"] = c.GetInt(visitsContextKey)
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = a.now().Year()
	}

	c.HTML(status, template, payload)
}
