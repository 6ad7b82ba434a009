// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package form holds the password-change form: its values, the validation
// schema, and the reducer that drives field and error state.
package form

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/go-playground/validator/v10"
)

// Display messages. These are literal strings shown beneath each input.
const (
	MsgEmptyField       = "入力してください"
	MsgWeakPassword     = "アルファベット（大文字小文字混在）と数字と特殊記号を組み合わせて8文字以上で入力してください"
	MsgPasswordMismatch = "確認用パスワードが一致していません"
)

// complexityPattern requires an uppercase letter, a lowercase letter, a digit
// and one of @$!%*#?&, at least 8 characters, drawn only from those classes.
// RE2 has no lookahead, hence regexp2. \z rather than $ so a trailing newline
// cannot slip through.
const complexityPattern = `^(?=.*[A-Z])(?=.*[a-z])(?=.*[0-9])(?=.*[@$!%*#?&])[A-Za-z0-9@$!%*#?&]{8,}\z`

var complexityRe = func() *regexp2.Regexp {
	re := regexp2.MustCompile(complexityPattern, regexp2.None)
	re.MatchTimeout = 100 * time.Millisecond
	return re
}()

const tagComplexity = "password_complexity"

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their json names so errors key on "password" and
	// "confirmPassword".
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.RegisterValidation(tagComplexity, validateComplexity); err != nil {
		panic(err)
	}
}

// validateComplexity is the password_complexity validator.
func validateComplexity(fl validator.FieldLevel) bool {
	return IsComplex(fl.Field().String())
}

// IsComplex reports whether s satisfies the password complexity rule.
// A regexp timeout counts as a failure.
func IsComplex(s string) bool {
	ok, err := complexityRe.MatchString(s)
	return err == nil && ok
}

// Validate runs the schema over v.
//
// Each field reports only its first failing rule: emptiness takes precedence
// over complexity. The equality check runs only when both fields pass on
// their own, and its error is attached to the confirmation field.
// An empty result means v is valid.
func Validate(v Values) FieldErrors {
	errs := FieldErrors{}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			// Only reachable with a broken validator setup; refuse the form
			// rather than let it through.
			errs[FieldPassword] = newFieldError(FieldPassword, WeakPassword)
			return errs
		}
		for _, fe := range verrs {
			field := Field(fe.Field())
			if _, seen := errs[field]; seen {
				continue
			}
			errs[field] = newFieldError(field, codeForTag(fe.Tag()))
		}
		return errs
	}

	if v.Password != v.ConfirmPassword {
		errs[FieldConfirmPassword] = newFieldError(FieldConfirmPassword, PasswordMismatch)
	}
	return errs
}

func codeForTag(tag string) ErrorCode {
	switch tag {
	case "required":
		return EmptyField
	default:
		return WeakPassword
	}
}
