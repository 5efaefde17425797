// internal/serialport/validate.go
package serialport

import (
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Registration only fails for an empty tag or nil func
	_ = v.RegisterValidation("baudrate", func(fl validator.FieldLevel) bool {
		return IsSupportedBaudRate(int(fl.Field().Int()))
	})
	return v
}
