package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeRedirectTarget(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "/fungo/restricted/", want: "/fungo/restricted/"},
		{raw: "  /fungo/  ", want: "/fungo/"},
		{raw: "", want: "/fallback"},
		{raw: "https://evil.example.com", want: "/fallback"},
		{raw: "//evil.example.com", want: "/fallback"},
		{raw: `/\evil.example.com`, want: "/fallback"},
		{raw: "relative/path", want: "/fallback"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, safeRedirectTarget(tt.raw, "/fallback"), "raw %q", tt.raw)
	}
}

func TestParseUintQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	parse := func(query string) (uint, error) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/x"+query, nil)
		return parseUintQuery(c, "id")
	}

	id, err := parse("?id=42")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	for _, query := range []string{"", "?id=", "?id=0", "?id=-3", "?id=abc", "?id=99999999999"} {
		_, err := parse(query)
		assert.Error(t, err, query)
	}
}

func TestFormErrorsUseLabels(t *testing.T) {
	RegisterValidators()

	err := binding.Validator.ValidateStruct(categoryForm{Name: "***"})
	require.Error(t, err)
	assert.Equal(t, []string{"Category name must contain letters or digits."}, formErrors(err))

	err = binding.Validator.ValidateStruct(pageForm{Title: "", URL: "https://go.dev"})
	require.Error(t, err)
	assert.Equal(t, []string{"Page title is required."}, formErrors(err))

	assert.Equal(t, []string{"The submitted form could not be read."}, formErrors(assert.AnError))
}
