package handler_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fungo/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartBody(t *testing.T, fields map[string]string, fileName string, file []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if fileName != "" {
		part, err := writer.CreateFormFile("picture", fileName)
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func (s *testSite) postMultipart(path string, body *bytes.Buffer, contentType string) (*http.Response, string) {
	s.t.Helper()
	resp, err := s.client.Post(s.server.URL+path, contentType, body)
	require.NoError(s.t, err)
	return resp, readBody(s.t, resp)
}

func TestUserPage(t *testing.T) {
	site := newTestSite(t)
	user := site.createUser("alice")
	category := site.createCategory("Go", 0, 0)
	require.NoError(t, site.db.Omit("Category", "User").Create(&db.CategoryVoter{CategoryID: category.ID, UserID: user.ID}).Error)

	resp, body := site.get("/fungo/users/alice/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<h1>alice</h1>")
	assert.Contains(t, body, `href="/fungo/category/go/">Go</a>`)
	assert.NotContains(t, body, "Edit profile")

	resp, body = site.get("/fungo/users/ghost/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "The user ghost does not exist!")
}

func TestUpdateProfileWithPicture(t *testing.T) {
	site := newTestSite(t)
	user := site.login("alice")

	resp, body := site.get("/fungo/profile/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `id="profile_form"`)

	payload, contentType := multipartBody(t, map[string]string{"website": "alice.dev"}, "me.png", tinyPNG(t))
	resp, _ = site.postMultipart("/fungo/profile/", payload, contentType)
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/fungo/users/alice/", location(resp))

	var profile db.UserProfile
	require.NoError(t, site.db.Where("user_id = ?", user.ID).First(&profile).Error)
	assert.Equal(t, "http://alice.dev", profile.Website)
	require.True(t, strings.HasPrefix(profile.PictureURL, "/media/profile_images/"), profile.PictureURL)
	assert.True(t, strings.HasSuffix(profile.PictureURL, ".png"))

	stored := filepath.Join(site.uploadDir, "profile_images", filepath.Base(profile.PictureURL))
	_, err := os.Stat(stored)
	require.NoError(t, err)

	// 上传目录通过 UPLOAD_URL_PATH 对外提供
	resp, _ = site.get(profile.PictureURL)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = site.get("/fungo/users/alice/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Edit profile")
	assert.Contains(t, body, profile.PictureURL)
}

func TestUpdateProfileRejectsBadInput(t *testing.T) {
	site := newTestSite(t)
	site.login("alice")

	payload, contentType := multipartBody(t, map[string]string{"website": ""}, "notes.png", []byte("definitely not an image"))
	resp, body := site.postMultipart("/fungo/profile/", payload, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Picture must be a png, jpeg, gif or webp image.")

	payload, contentType = multipartBody(t, map[string]string{"website": "ftp://alice.dev"}, "", nil)
	resp, body = site.postMultipart("/fungo/profile/", payload, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Website must be an http(s) address.")

	entries, err := os.ReadDir(site.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateProfileBadWebsiteKeepsNoPicture(t *testing.T) {
	site := newTestSite(t)
	user := site.login("alice")

	payload, contentType := multipartBody(t, map[string]string{"website": "ftp://alice.dev"}, "me.png", tinyPNG(t))
	resp, body := site.postMultipart("/fungo/profile/", payload, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Website must be an http(s) address.")

	// 提交被拒绝时图片不应写入上传目录
	entries, err := os.ReadDir(filepath.Join(site.uploadDir, "profile_images"))
	if !errors.Is(err, os.ErrNotExist) {
		require.NoError(t, err)
		assert.Empty(t, entries)
	}

	var count int64
	require.NoError(t, site.db.Model(&db.UserProfile{}).Where("user_id = ?", user.ID).Where("picture_url <> ''").Count(&count).Error)
	assert.Zero(t, count)
}

func TestProfileRequiresLogin(t *testing.T) {
	site := newTestSite(t)

	resp, _ := site.get("/fungo/profile/")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/accounts/login/?next=%2Ffungo%2Fprofile%2F", location(resp))
}
