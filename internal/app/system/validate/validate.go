// Package validate wraps go-playground/validator with the request-schema
// conventions shared by every route: json field paths, YYYY-MM-DD dates,
// HH:MM times and bilingual text objects.
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// BilingualText is an English/Tamil text pair. English is the canonical
// value; Tamil is optional.
type BilingualText struct {
	EN string `json:"en" validate:"required,max=500"`
	TA string `json:"ta,omitempty" validate:"max=500"`
}

// Pick returns the text for the requested language tag, falling back to
// English.
func (t BilingualText) Pick(lang string) string {
	if lang == "ta" && t.TA != "" {
		return t.TA
	}
	return t.EN
}

// FieldError is one validation failure: a json field path and a message.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Validator validates request payload structs.
type Validator struct {
	v *validator.Validate
}

// New builds the Validator with the custom rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report json tag names instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("dateymd", func(fl validator.FieldLevel) bool {
		return dateRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return timeRe.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// Struct validates payload and returns the ordered list of field errors,
// or nil when the payload is valid.
func (va *Validator) Struct(payload any) []FieldError {
	err := va.v.Struct(payload)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Path: "", Message: err.Error()}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Path: fieldPath(fe), Message: message(fe)})
	}
	return out
}

// Join flattens field errors into the single human-readable string carried
// by the validation/invalid-input envelope.
func Join(errs []FieldError) string {
	parts := make([]string, len(errs))
	for i, fe := range errs {
		parts[i] = fe.Path + ": " + fe.Message
	}
	return strings.Join(parts, ", ")
}

// fieldPath strips the top-level struct name from the namespace, leaving
// the json path ("title.en", "rejectionReason").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required"
	case "dateymd":
		return "must be YYYY-MM-DD format"
	case "hhmm":
		return "must be HH:MM format"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return "must be at least " + fe.Param() + " characters"
		case reflect.Slice:
			return "must have at least " + fe.Param() + " item(s)"
		default:
			return "must be at least " + fe.Param()
		}
	case "max":
		switch fe.Kind() {
		case reflect.String:
			return "must be at most " + fe.Param() + " characters"
		case reflect.Slice:
			return "must have at most " + fe.Param() + " item(s)"
		default:
			return "must be at most " + fe.Param()
		}
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
