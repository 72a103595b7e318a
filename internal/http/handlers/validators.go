package handlers

import (
	"sync"

	"locacar/internal/utils"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the taxid and plate tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("taxid", func(fl validator.FieldLevel) bool {
			n := len(utils.DigitsOnly(fl.Field().String()))
			return n == 11 || n == 14
		})
		_ = v.RegisterValidation("plate", func(fl validator.FieldLevel) bool {
			n := len(utils.NormalizePlate(fl.Field().String()))
			return n >= 7 && n <= 10
		})
	})
}
