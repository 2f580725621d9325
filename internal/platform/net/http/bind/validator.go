// Package bind decodes request bodies and validates them with english messages
package bind

import (
	"reflect"
	"strings"
	"sync"

	perr "stealthbridge/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// ValidatorSvc holds the shared validator and its translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *ValidatorSvc
)

// shorter messages than the stock english set
var messages = map[string]string{
	"min":         "{0} must be at least {1}",
	"max":         "{0} must be at most {1}",
	"number":      "{0} must be a decimal integer",
	"hexadecimal": "{0} must be hexadecimal",
	"datetime":    "{0} must match {1}",
}

// Get returns the validator, building it on first use
func Get() *ValidatorSvc {
	vOnce.Do(func() {
		loc := en.New()
		trans, _ := ut.New(loc, loc).GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		_ = en_translations.RegisterDefaultTranslations(v, trans)
		for tag, text := range messages {
			registerMessage(v, trans, tag, text)
		}
		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// jsonName makes messages use the wire name of a field
func jsonName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if i := strings.Index(tag, ","); i >= 0 {
		tag = tag[:i]
	}
	if tag == "" || tag == "-" {
		return f.Name
	}
	return tag
}

func registerMessage(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}

// Struct validates s and returns the first failure as a Validation error with its field
func Struct(s any) error {
	err := Get().Validator.Struct(s)
	if err == nil {
		return nil
	}
	field, msg := ValidationFieldAndMessage(err)
	if _, ok := err.(*validator.InvalidValidationError); ok {
		return perr.JSONErrf("validation error: %s", msg)
	}
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
}

// Var validates one loose value against tag and names field in the message
func Var(field string, value any, tag string) error {
	svc := Get()
	err := svc.Validator.Var(value, tag)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		if msg, terr := svc.Translator.T(fe.Tag(), field, fe.Param()); terr == nil && msg != "" {
			return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
		}
	}
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s is invalid", field), field)
}

// ValidationFieldAndMessage returns the first failing field and its translated message
func ValidationFieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return verrs[0].Field(), verrs[0].Translate(Get().Translator)
	}
	return "", err.Error()
}
