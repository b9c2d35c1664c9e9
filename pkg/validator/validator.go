package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/jeevanrakshak/donor-api/internal/model"
)

// RegisterCustomValidations installs domain validation rules on gin's binding
// validator. Call once at startup.
func RegisterCustomValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("bloodgroup", validBloodGroup)
}

func validBloodGroup(fl validator.FieldLevel) bool {
	return model.BloodGroup(fl.Field().String()).IsValid()
}
