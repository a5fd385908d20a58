package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// tagMessages renders one failed rule.
var tagMessages = map[string]func(fe validator.FieldError) string{
	"required": func(validator.FieldError) string { return "is required" },
	"min":      func(fe validator.FieldError) string { return "must be at least " + bound(fe) },
	"max":      func(fe validator.FieldError) string { return "must be at most " + bound(fe) },
	"email":    func(validator.FieldError) string { return "must be a valid email" },
	"mailbox":  func(validator.FieldError) string { return "must be a valid email" },
	"oneof": func(fe validator.FieldError) string {
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	},
}

// bound words a min/max limit for the field's kind.
func bound(fe validator.FieldError) string {
	switch fe.Kind() {
	case reflect.String:
		return fe.Param() + " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		return fe.Param() + " items"
	}
	return fe.Param()
}

func init() {
	// Messages name the JSON keys clients send, not the Go field names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// mailbox is stricter than the built-in email tag about the domain part.
	_ = validate.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return checkmail.ValidateFormat(fl.Field().String()) == nil
	})
}

// ValidateStruct runs the struct's validate tags and joins the failures
// into one readable message wrapped in ErrValidation.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return NewError(ErrValidation, "%v", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		text := "is invalid"
		if render, ok := tagMessages[fe.Tag()]; ok {
			text = render(fe)
		}
		msgs = append(msgs, lowerFirst(fe.Field())+" "+text)
	}
	return &Error{Kind: ErrValidation, Message: strings.Join(msgs, ", "), Verbatim: true}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
