package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/fungo/internal/metrics"
	"github.com/fungo/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type categoryForm struct {
	Name string `form:"name" binding:"required,max=128,slugable"`
}

type pageForm struct {
	Title string `form:"title" binding:"required,max=128"`
	URL   string `form:"url" binding:"required,max=200"`
}

// LikeCategory 点赞接口，返回纯文本的最新点赞数
// 未登录、参数错误或分类不存在时返回 0
func (a *API) LikeCategory(c *gin.Context) {
	user, ok := a.currentUser(c)
	if !ok {
		c.String(http.StatusOK, "0")
		return
	}

	categoryID, err := parseUintQuery(c, "category_id")
	if err != nil {
		c.String(http.StatusOK, "0")
		return
	}

	result, err := a.votes.Like(categoryID, user.ID)
	if err != nil {
		if !errors.Is(err, service.ErrCategoryNotFound) {
			c.Error(err)
			a.log.Error("like category",
				zap.Uint("category_id", categoryID),
				zap.Uint("user_id", user.ID),
				zap.Error(err))
		}
		c.String(http.StatusOK, "0")
		return
	}
	metrics.ObserveLike(result.Counted)

	c.String(http.StatusOK, strconv.Itoa(result.Likes))
}

// ShowAddCategory 渲染新建分类表单
func (a *API) ShowAddCategory(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "add_category.html", gin.H{
		"title": "Add Category",
	})
}

// CreateCategory 处理新建分类，成功后跳转到分类详情
func (a *API) CreateCategory(c *gin.Context) {
	var form categoryForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderCategoryForm(c, http.StatusBadRequest, c.PostForm("name"), formErrors(err))
		return
	}

	category, err := a.categories.Create(form.Name)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryExists):
			a.renderCategoryForm(c, http.StatusBadRequest, form.Name, []string{"Category with this name already exists."})
		case errors.Is(err, service.ErrCategoryNameMissing),
			errors.Is(err, service.ErrCategoryNameInvalid),
			errors.Is(err, service.ErrCategoryNameTooLong):
			a.renderCategoryForm(c, http.StatusBadRequest, form.Name, []string{capitalize(err.Error()) + "."})
		default:
			a.serverError(c, "create category", err)
		}
		return
	}

	a.log.Info("category created", zap.Uint("category_id", category.ID), zap.String("slug", category.Slug))
	redirectSeeOther(c, "/fungo/category/"+category.Slug+"/")
}

func (a *API) renderCategoryForm(c *gin.Context, status int, name string, errs []string) {
	a.renderHTML(c, status, "add_category.html", gin.H{
		"title":  "Add Category",
		"name":   name,
		"errors": errs,
	})
}

// ShowAddPage 渲染新增页面表单，分类不存在时展示提示
func (a *API) ShowAddPage(c *gin.Context) {
	category, err := a.categories.GetBySlug(c.Param("slug"))
	if err != nil && !errors.Is(err, service.ErrCategoryNotFound) {
		a.serverError(c, "load category", err)
		return
	}

	data := gin.H{
		"title": "Add Page",
		"form":  pageForm{},
	}
	if category != nil {
		data["category"] = category
		data["activeCategory"] = category.Slug
	}
	a.renderHTML(c, http.StatusOK, "add_page.html", data)
}

// CreatePage 在分类下新增页面，浏览量从 0 开始
func (a *API) CreatePage(c *gin.Context) {
	category, err := a.categories.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrCategoryNotFound) {
			a.renderHTML(c, http.StatusOK, "add_page.html", gin.H{
				"title": "Add Page",
				"form":  pageForm{},
			})
			return
		}
		a.serverError(c, "load category", err)
		return
	}

	render := func(form pageForm, errs []string) {
		a.renderHTML(c, http.StatusBadRequest, "add_page.html", gin.H{
			"title":          "Add Page",
			"category":       category,
			"activeCategory": category.Slug,
			"form":           form,
			"errors":         errs,
		})
	}

	var form pageForm
	if err := c.ShouldBind(&form); err != nil {
		render(pageForm{Title: c.PostForm("title"), URL: c.PostForm("url")}, formErrors(err))
		return
	}

	page, err := a.pages.Create(category.ID, service.PageInput{Title: form.Title, URL: form.URL})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPageTitleMissing),
			errors.Is(err, service.ErrPageTitleTooLong),
			errors.Is(err, service.ErrPageURLInvalid):
			render(form, []string{capitalize(err.Error()) + "."})
		case errors.Is(err, service.ErrCategoryNotFound):
			c.Redirect(http.StatusFound, "/fungo/")
		default:
			a.serverError(c, "create page", err)
		}
		return
	}

	a.log.Info("page created", zap.Uint("page_id", page.ID), zap.Uint("category_id", category.ID))
	redirectSeeOther(c, "/fungo/category/"+category.Slug+"/")
}

func capitalize(message string) string {
	if message == "" {
		return message
	}
	return strings.ToUpper(message[:1]) + message[1:]
}
