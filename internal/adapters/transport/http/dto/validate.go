package dto

import (
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)

// NewValidator регистрирует правила strongpwd и username.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("strongpwd", strongPassword)
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	return v
}

// strongPassword: 8..72 символа (72 байта – предел bcrypt), верхний и нижний регистр, цифра.
func strongPassword(fl validator.FieldLevel) bool {
	pwd := fl.Field().String()
	if utf8.RuneCountInString(pwd) < 8 || len(pwd) > 72 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range pwd {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}
