package handler

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/fungo/internal/metrics"
	"github.com/fungo/internal/service"
	"github.com/fungo/web"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"go.uber.org/zap"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

func renderMarkdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes())), nil
}

// ShowIndex 首页：点赞最多的分类和浏览最多的页面
func (a *API) ShowIndex(c *gin.Context) {
	categories, err := a.ranking.TopCategories(service.DefaultRankingSize)
	if err != nil {
		a.serverError(c, "load top categories", err)
		return
	}
	pages, err := a.ranking.TopPages(service.DefaultRankingSize)
	if err != nil {
		a.serverError(c, "load top pages", err)
		return
	}

	a.renderHTML(c, http.StatusOK, "index.html", gin.H{
		"title":      "Home",
		"categories": categories,
		"pages":      pages,
	})
}

// ShowAbout renders the markdown about page together with the visit count.
func (a *API) ShowAbout(c *gin.Context) {
	content, err := renderMarkdown(web.AboutMarkdown)
	if err != nil {
		a.serverError(c, "render about page", err)
		return
	}

	a.renderHTML(c, http.StatusOK, "about.html", gin.H{
		"title":   "About",
		"content": content,
	})
}

// ShowCategory 分类详情，每次访问浏览量加一
func (a *API) ShowCategory(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))

	category, err := a.categories.ViewBySlug(slug)
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			a.renderHTML(c, http.StatusOK, "category.html", gin.H{
				"title": "Category",
				"slug":  slug,
			})
			return
		}
		a.serverError(c, "view category", err)
		return
	}
	metrics.ObserveCategoryView()

	pages, err := a.ranking.PagesForCategory(category.ID)
	if err != nil {
		a.serverError(c, "load category pages", err)
		return
	}

	user, authenticated := a.currentUser(c)
	canLike, err := a.votes.CanLike(category.ID, user.ID, authenticated)
	if err != nil {
		a.serverError(c, "check like permission", err)
		return
	}

	a.renderHTML(c, http.StatusOK, "category.html", gin.H{
		"title":          category.Name,
		"slug":           category.Slug,
		"category":       category,
		"pages":          pages,
		"canLike":        canLike,
		"activeCategory": category.Slug,
	})
}

// SuggestCategory 返回侧边栏分类列表片段
func (a *API) SuggestCategory(c *gin.Context) {
	suggestions, err := a.ranking.Suggest(c.Query("suggestion"), service.DefaultRankingSize)
	if err != nil {
		c.Error(err)
		a.log.Warn("suggest categories", zap.Error(err))
		suggestions = nil
	}

	c.HTML(http.StatusOK, "cats.html", gin.H{
		"cats":           suggestions,
		"activeCategory": "",
	})
}

// GotoPage 记录点击后跳转到页面的外部地址
func (a *API) GotoPage(c *gin.Context) {
	id, err := parseUintQuery(c, "page_id")
	if err != nil {
		c.Redirect(http.StatusFound, "/fungo/")
		return
	}

	page, err := a.pages.Track(id)
	if err != nil {
		if !errors.Is(err, service.ErrPageNotFound) {
			c.Error(err)
			a.log.Error("track page", zap.Uint("page_id", id), zap.Error(err))
		}
		c.Redirect(http.StatusFound, "/fungo/")
		return
	}
	metrics.ObservePageClick()

	c.Redirect(http.StatusFound, page.URL)
}

// ShowRestricted 仅登录用户可见
func (a *API) ShowRestricted(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "restricted.html", gin.H{
		"title": "Restricted",
	})
}

func (a *API) serverError(c *gin.Context, action string, err error) {
	c.Error(err)
	a.log.Error(action, zap.Error(err))
	c.String(http.StatusInternalServerError, "Internal Server Error")
}
