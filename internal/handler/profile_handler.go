package handler

import (
	"errors"
	"net/http"

	"github.com/fungo/internal/db"
	"github.com/fungo/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShowUserPage 公开的用户主页：资料与点赞过的分类
func (a *API) ShowUserPage(c *gin.Context) {
	username := c.Param("username")

	user, err := a.users.GetByUsername(username)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			a.renderHTML(c, http.StatusOK, "user_page.html", gin.H{
				"title":    "User",
				"username": username,
				"profile":  db.UserProfile{},
			})
			return
		}
		a.serverError(c, "load user", err)
		return
	}

	profile, err := a.profiles.Get(user.ID)
	if err != nil {
		a.serverError(c, "load profile", err)
		return
	}
	liked, err := a.votes.LikedCategories(user.ID)
	if err != nil {
		a.serverError(c, "load liked categories", err)
		return
	}

	viewer, _ := a.currentUser(c)
	a.renderHTML(c, http.StatusOK, "user_page.html", gin.H{
		"title":       user.Username,
		"username":    user.Username,
		"profileUser": user,
		"profile":     profile,
		"liked":       liked,
		"isOwner":     viewer.ID == user.ID,
	})
}

// ShowProfileEdit 渲染当前用户的资料编辑页
func (a *API) ShowProfileEdit(c *gin.Context) {
	user, _ := a.currentUser(c)

	profile, err := a.profiles.Get(user.ID)
	if err != nil {
		a.serverError(c, "load profile", err)
		return
	}

	a.renderHTML(c, http.StatusOK, "profile_edit.html", gin.H{
		"title":   "Edit Profile",
		"profile": profile,
	})
}

// UpdateProfile 保存网站地址，可选上传头像
func (a *API) UpdateProfile(c *gin.Context) {
	user, _ := a.currentUser(c)
	input := service.ProfileInput{Website: c.PostForm("website")}

	renderInvalid := func(message string) {
		current, err := a.profiles.Get(user.ID)
		if err != nil {
			a.serverError(c, "load profile", err)
			return
		}
		current.Website = input.Website
		a.renderHTML(c, http.StatusBadRequest, "profile_edit.html", gin.H{
			"title":   "Edit Profile",
			"profile": current,
			"errors":  []string{message},
		})
	}

	// 先校验网站地址，避免无效提交留下已落盘的图片
	if _, err := service.NormalizeWebsite(input.Website); err != nil {
		renderInvalid("Website must be an http(s) address.")
		return
	}

	file, err := c.FormFile("picture")
	switch {
	case err == nil:
		pictureURL, saveErr := a.savePicture(file)
		if saveErr != nil {
			if errors.Is(saveErr, errPictureTooLarge) || errors.Is(saveErr, errPictureType) {
				renderInvalid(capitalize(saveErr.Error()) + ".")
				return
			}
			a.serverError(c, "save picture", saveErr)
			return
		}
		input.PictureURL = &pictureURL
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		renderInvalid("The uploaded picture could not be read.")
		return
	}

	if _, err := a.profiles.Update(user.ID, input); err != nil {
		if input.PictureURL != nil {
			a.removePicture(*input.PictureURL)
		}
		if errors.Is(err, service.ErrProfileWebsiteInvalid) {
			renderInvalid("Website must be an http(s) address.")
			return
		}
		a.serverError(c, "update profile", err)
		return
	}

	a.log.Info("profile updated", zap.Uint("user_id", user.ID))
	redirectSeeOther(c, "/fungo/users/"+user.Username+"/")
}
