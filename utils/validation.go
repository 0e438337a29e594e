package utils

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"civiclens-be/models"
)

const ValidationFailedMessage = "Validation failed. Please check your inputs."

var registerOnce sync.Once

// RegisterValidators adds the enum validators to gin's validator and makes field
// errors use the json/form names.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
		_ = v.RegisterValidation("issuecategory", func(fl validator.FieldLevel) bool {
			return models.IssueCategory(fl.Field().String()).IsValid()
		})
		_ = v.RegisterValidation("issuestatus", func(fl validator.FieldLevel) bool {
			return models.IssueStatus(fl.Field().String()).IsValid()
		})
	})
}

var fieldMessages = map[string]string{
	"description": "Please provide a more detailed description.",
	"category":    "Please select a category.",
	"address":     "Address is required.",
	"photoUrl":    "Invalid URL format.",
	"lat":         "Invalid latitude.",
	"lng":         "Invalid longitude.",
	"status":      "Invalid status.",
	"id":          "Issue id is required.",
	"username":    "Username is required.",
	"password":    "Password is required.",
	"idToken":     "ID token is required.",
}

func fieldMessage(field string) string {
	if msg, ok := fieldMessages[field]; ok {
		return msg
	}
	return "Invalid value."
}

// FieldErrors flattens a binding error into {field: [messages]}. JSON values of the
// wrong type are reported against their field. It returns nil for any other error.
func FieldErrors(err error) map[string][]string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return map[string][]string{typeErr.Field: {fieldMessage(typeErr.Field)}}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		out[field] = append(out[field], fieldMessage(field))
	}
	return out
}
