package handler

import (
	"sync"

	"github.com/fungo/internal/service"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const slugableTag = "slugable"

var registerValidatorsOnce sync.Once

// RegisterValidators 在 gin 的 validator 上注册自定义规则，可重复调用
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation(slugableTag, func(fl validator.FieldLevel) bool {
			return service.Slugify(fl.Field().String()) != ""
		})
	})
}
