package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/khoahotran/screenvault/pkg/apperror"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json or form name.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}

var fieldLabels = map[string]string{
	"title":          "Title",
	"description":    "Description",
	"videoUrl":       "Video URL",
	"thumbnailUrl":   "Thumbnail URL",
	"visibility":     "Visibility",
	"duration":       "Duration",
	"email":          "Email",
	"password":       "Password",
	"sessionId":      "Session id",
	"watchedSeconds": "Watched seconds",
	"limit":          "Limit",
	"offset":         "Offset",
}

var ruleMessages = map[string]string{
	"visibility.oneof":   "Visibility must be either 'public' or 'private'",
	"duration.gt":        "Duration must be a positive number",
	"duration.gte":       "Duration must be a positive number",
	"videoUrl.url":       "Invalid video URL",
	"thumbnailUrl.url":   "Invalid thumbnail URL",
	"email.email":        "Invalid email address",
	"watchedSeconds.gte": "Watched seconds must not be negative",
}

func label(field string) string {
	if l, ok := fieldLabels[field]; ok {
		return l
	}
	return field
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := ruleMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	switch fe.Tag() {
	case "required":
		return label(fe.Field()) + " is required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", label(fe.Field()), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", label(fe.Field()), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label(fe.Field()), strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return label(fe.Field()) + " is invalid"
}

// bindingError turns a gin binding failure into a field-level validation error.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := apperror.NewValidation()
		for _, fe := range verrs {
			out.Add(fe.Field(), fieldMessage(fe))
		}
		return out
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperror.NewValidation(apperror.FieldError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("%s has an invalid type", label(typeErr.Field)),
		})
	}

	return apperror.NewValidation(apperror.FieldError{Field: "body", Message: "Invalid request body"})
}
