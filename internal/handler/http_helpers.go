package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func parseUintQuery(c *gin.Context, key string) (uint, error) {
	raw := strings.TrimSpace(c.Query(key))
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

var fieldLabels = map[string]string{
	"Name":  "Category name",
	"Title": "Page title",
	"URL":   "Page URL",
}

// formErrors 把 binding 的校验错误转换为可以直接展示的提示
func formErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"The submitted form could not be read."}
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		label := fieldLabels[fe.Field()]
		if label == "" {
			label = fe.Field()
		}
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required.", label))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s characters.", label, fe.Param()))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s characters.", label, fe.Param()))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email address.", label))
		case slugableTag:
			messages = append(messages, fmt.Sprintf("%s must contain letters or digits.", label))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid.", label))
		}
	}
	return messages
}

// safeRedirectTarget 只允许站内相对路径，避免开放重定向
func safeRedirectTarget(raw, fallback string) string {
	target := strings.TrimSpace(raw)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return fallback
	}
	return target
}

func redirectSeeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}
