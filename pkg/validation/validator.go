package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON (or form) tag names in errors.
// - Registers alias tags used by the request DTOs.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		Configure(v)
	}
}

// Configure applies the tag name func and aliases to v.
func Configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	v.RegisterAlias("pwd", "min=8,max=72")
	v.RegisterAlias("personname", "min=1,max=50")
	v.RegisterAlias("sortorder", "oneof=asc desc")
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		return map[string]string{ute.Field: "must be of type " + ute.Type.String()}
	}
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = Message(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

// messages maps a tag to its text; %s is replaced by the tag parameter.
var messages = map[string]string{
	"required":    "is required",
	"email":       "must be a valid email",
	"url":         "must be a valid URL",
	"uri":         "must be a valid URI",
	"uuid":        "must be a valid UUID",
	"len":         "must be exactly %s characters long",
	"eq":          "must be equal to %s",
	"ne":          "must not be equal to %s",
	"lt":          "must be less than %s",
	"lte":         "must be less than or equal to %s",
	"gt":          "must be greater than %s",
	"gte":         "must be greater than or equal to %s",
	"alpha":       "must contain alphabetic characters only",
	"alphanum":    "must contain alphanumeric characters only",
	"containsany": "must contain at least one of '%s'",
	"excludesall": "must not contain any of '%s'",
	"numeric":     "must be numeric",
	"boolean":     "must be a boolean value",
	"unique":      "must contain unique items",
	"datetime":    "must match datetime format: %s",
	"iso4217":     "must be a valid ISO 4217 currency code",
	"lowercase":   "must be in lowercase",
	"pwd":         "must be between 8 and 72 characters long",
	"personname":  "must be between 1 and 50 characters long",
	"sortorder":   "must be one of: asc, desc",
}

// Message renders a single field error.
func Message(fe validator.FieldError) string {
	tag, param := fe.Tag(), fe.Param()
	switch tag {
	case "min", "max":
		bound := "at least"
		if tag == "max" {
			bound = "at most"
		}
		switch {
		case isNumberKind(fe.Kind()):
			return fmt.Sprintf("must be %s %s", bound, param)
		case fe.Kind() == reflect.Slice || fe.Kind() == reflect.Map:
			return fmt.Sprintf("must contain %s %s items", bound, param)
		default:
			return fmt.Sprintf("must be %s %s characters long", bound, param)
		}
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(param), ", ")
	}
	if m, ok := messages[tag]; ok {
		if strings.Contains(m, "%s") {
			return fmt.Sprintf(m, param)
		}
		return m
	}
	if param != "" {
		return fmt.Sprintf("validation failed for '%s' with parameter '%s'", tag, param)
	}
	return fmt.Sprintf("validation failed for '%s'", tag)
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
