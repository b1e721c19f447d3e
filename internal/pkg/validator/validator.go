package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Paper analysis type validation
	validate.RegisterValidation("analysis_type", func(fl validator.FieldLevel) bool {
		t := fl.Field().String()
		validTypes := []string{"summary", "images", "full"}
		for _, v := range validTypes {
			if t == v {
				return true
			}
		}
		return false
	})

	// arXiv URL validation (abs or pdf link)
	validate.RegisterValidation("arxiv_url", func(fl validator.FieldLevel) bool {
		u := fl.Field().String()
		return strings.Contains(u, "arxiv.org/abs/") || strings.Contains(u, "arxiv.org/pdf/")
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "email":
			errors[field] = "Invalid email address"
		case "url":
			errors[field] = "Invalid URL"
		case "uuid":
			errors[field] = "Invalid identifier"
		case "analysis_type":
			errors[field] = "Must be one of: summary, images, full"
		case "arxiv_url":
			errors[field] = "Must be an arxiv.org abs or pdf link"
		case "min":
			errors[field] = "Value is too small"
		case "max":
			errors[field] = "Value is too large"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}
