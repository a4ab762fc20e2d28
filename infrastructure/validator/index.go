package validator

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	validate.RegisterValidation("base64image", validateBase64Image)
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

type Validator struct{}

func (v *Validator) ValidateStruct(payload interface{}) *[]error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs := []error{err}
		return &errs
	}
	errs := []error{}
	for _, fieldErr := range validationErrs {
		errs = append(errs, fmt.Errorf("%s failed validation on the %s rule", fieldErr.Field(), fieldErr.Tag()))
	}
	return &errs
}

func (v *Validator) ValidateValue(value any, rules string) error {
	return validate.Var(value, rules)
}

var ValidatorInstance = Validator{}
