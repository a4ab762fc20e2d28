package validator

import (
	"facegate.io/application/utils"
	"github.com/go-playground/validator/v10"
)

func validateBase64Image(fl validator.FieldLevel) bool {
	_, err := utils.DecodeBase64Image(fl.Field().String())
	return err == nil
}
