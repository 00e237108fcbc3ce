package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// Messages per validator tag. `%s` is replaced with the tag parameter.
var messages = map[string]string{
	"required":         "is required",
	"email":            "must be a valid email address",
	"e164":             "must be an international phone number",
	"iso3166_1_alpha2": "must be a two-letter country code",
	"max":              "must be at most %s characters",
	"min":              "must be at least %s",
	"url":              "must be a valid url",
	"oneof":            "must be one of [%s]",
	"gte":              "must be greater than or equal to %s",
	"lte":              "must be less than or equal to %s",
}

func init() {
	validate = validator.New()
	// report fields by their json name so errors line up with the payload
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

func ValidateStruct(s any) error {
	return validate.Struct(s)
}

// IsEmail reports whether s is a well-formed email address.
func IsEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// IsDate reports whether s is a real calendar date in YYYY-MM-DD form.
func IsDate(s string) bool {
	return validate.Var(s, "required,datetime=2006-01-02") == nil
}

// FieldErrors flattens validator errors into field name -> message.
// Any other error is reported under the `_` key.
func FieldErrors(err error) map[string]string {
	out := make(map[string]string)
	if err == nil {
		return out
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}

	for _, fe := range verrs {
		out[fe.Field()] = fe.Field() + " " + message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	msg, ok := messages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(msg, "%s") {
		msg = strings.Replace(msg, "%s", fe.Param(), 1)
	}
	return msg
}
