package handler

import (
	"errors"
	"net/http"

	"github.com/fungo/internal/db"
	"github.com/fungo/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerForm struct {
	Username string `form:"username" binding:"required,min=3,max=32"`
	Email    string `form:"email" binding:"omitempty,email"`
	Password string `form:"password" binding:"required,min=8"`
}

// ShowRegister 渲染注册页面
func (a *API) ShowRegister(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "register.html", gin.H{
		"title": "Register",
		"form":  registerForm{},
	})
}

// Register 创建账号并直接登录
func (a *API) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBind(&form); err != nil {
		a.renderRegister(c, http.StatusBadRequest, registerForm{
			Username: c.PostForm("username"),
			Email:    c.PostForm("email"),
		}, formErrors(err))
		return
	}

	user, err := a.users.Register(service.RegisterInput{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		form.Password = ""
		switch {
		case errors.Is(err, service.ErrUserExists),
			errors.Is(err, service.ErrUsernameInvalid),
			errors.Is(err, service.ErrPasswordTooShort):
			a.renderRegister(c, http.StatusBadRequest, form, []string{capitalize(err.Error()) + "."})
		default:
			a.serverError(c, "register user", err)
		}
		return
	}

	if err := a.startSession(c, user); err != nil {
		a.serverError(c, "save session", err)
		return
	}

	a.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	redirectSeeOther(c, "/fungo/")
}

func (a *API) renderRegister(c *gin.Context, status int, form registerForm, errs []string) {
	a.renderHTML(c, status, "register.html", gin.H{
		"title":  "Register",
		"form":   form,
		"errors": errs,
	})
}

// ShowLogin 渲染登录页面
func (a *API) ShowLogin(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title": "Login",
		"next":  safeRedirectTarget(c.Query("next"), ""),
	})
}

// Login 校验账号密码，成功后跳转到 next 或首页
func (a *API) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	next := safeRedirectTarget(c.PostForm("next"), "")

	user, err := a.users.Authenticate(username, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			a.serverError(c, "authenticate user", err)
			return
		}
		a.renderHTML(c, http.StatusUnauthorized, "login.html", gin.H{
			"title":    "Login",
			"next":     next,
			"username": username,
			"errors":   []string{"Invalid login details supplied."},
		})
		return
	}

	if err := a.startSession(c, user); err != nil {
		a.serverError(c, "save session", err)
		return
	}

	redirectSeeOther(c, safeRedirectTarget(next, "/fungo/"))
}

// Logout 清空会话后回到首页
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		c.Error(err)
		a.log.Warn("clear session", zap.Error(err))
	}
	c.Redirect(http.StatusFound, "/fungo/")
}

func (a *API) startSession(c *gin.Context, user *db.User) error {
	session := sessions.Default(c)
	session.Set(sessionKeyUserID, user.ID)
	session.Set(sessionKeyUsername, user.Username)
	return session.Save()
}
