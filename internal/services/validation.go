package services

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"voyage/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator with the json tag names and the
// "password" rule registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			return PasswordValid(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// PasswordValid enforces the account password policy: 8 characters up to
// MaxPasswordBytes bytes, with a digit, a lowercase letter, an uppercase
// letter and a special character.
func PasswordValid(p string) bool {
	if len([]rune(p)) < 8 || len(p) > MaxPasswordBytes {
		return false
	}
	var digit, lower, upper, special bool
	for _, r := range p {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case !unicode.IsLetter(r):
			special = true
		}
	}
	return digit && lower && upper && special
}

// validateStruct runs the validator and returns the first failure as a ValidationError.
func validateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return domain.ValidationError{Msg: "invalid payload", Err: err}
	}
	fe := fieldErrs[0]
	return domain.ValidationError{Field: fe.Field(), Msg: ruleMessage(fe.Tag()), Err: err}
}

func ruleMessage(tag string) string {
	switch tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "password":
		return "must be 8 to 72 characters long and contain a digit, a lowercase letter, an uppercase letter and a special character"
	}
	return "is invalid (" + tag + ")"
}
