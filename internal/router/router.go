package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/fungo/internal/handler"
	"github.com/fungo/internal/metrics"
	"github.com/fungo/web"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionName = "fungo_session"

// Options 路由层需要的配置
type Options struct {
	SessionSecret      string
	UploadDir          string
	UploadURLPath      string
	LoginRatePerMinute int
	Logger             *zap.Logger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) (*gin.Engine, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), handler.RequestLogger(log.Named("http")))
	r.MaxMultipartMemory = 4 << 20

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   14 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	handler.RegisterValidators()

	// 加载模板
	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	// 静态文件服务
	r.StaticFS("/static", http.FS(web.Static()))
	if uploadURL := strings.TrimRight(opts.UploadURLPath, "/"); uploadURL != "" && opts.UploadDir != "" {
		r.Static(uploadURL, opts.UploadDir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.GET("/", api.TrackVisits(), api.ShowIndex)

	site := r.Group("/fungo")
	site.Use(api.TrackVisits())
	{
		site.GET("/", api.ShowIndex)
		site.GET("/about/", api.ShowAbout)
		site.GET("/category/:slug/", api.ShowCategory)
		site.GET("/like_category", api.LikeCategory)
		site.GET("/suggest_category", api.SuggestCategory)
		site.GET("/goto", api.GotoPage)
		site.GET("/users/:username/", api.ShowUserPage)

		// 需要登录的路由
		auth := site.Group("")
		auth.Use(api.AuthRequired())
		{
			auth.GET("/add_category/", api.ShowAddCategory)
			auth.POST("/add_category/", api.CreateCategory)
			auth.GET("/category/:slug/add_page/", api.ShowAddPage)
			auth.POST("/category/:slug/add_page/", api.CreatePage)
			auth.GET("/restricted/", api.ShowRestricted)
			auth.GET("/profile/", api.ShowProfileEdit)
			auth.POST("/profile/", api.UpdateProfile)
		}
	}

	accounts := r.Group("/accounts")
	accounts.Use(api.TrackVisits())
	{
		accounts.GET("/register/", api.ShowRegister)
		accounts.POST("/register/", api.Register)
		accounts.GET("/login/", api.ShowLogin)
		accounts.POST("/login/", handler.LoginRateLimit(opts.LoginRatePerMinute), api.Login)
		accounts.GET("/logout/", api.AuthRequired(), api.Logout)
	}

	return r, nil
}
