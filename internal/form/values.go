// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package form

// Field names one input of the form.
type Field string

const (
	FieldPassword        Field = "password"
	FieldConfirmPassword Field = "confirmPassword"
)

// Fields lists the inputs in display order.
var Fields = []Field{FieldPassword, FieldConfirmPassword}

// Values is the raw content of both inputs.
type Values struct {
	Password        string `json:"password" validate:"required,password_complexity"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,password_complexity"`
}

// Get returns the value of f.
func (v Values) Get(f Field) string {
	if f == FieldConfirmPassword {
		return v.ConfirmPassword
	}
	return v.Password
}

// With returns a copy of v with f set to value.
func (v Values) With(f Field, value string) Values {
	switch f {
	case FieldPassword:
		v.Password = value
	case FieldConfirmPassword:
		v.ConfirmPassword = value
	}
	return v
}

// NewPassword returns the only value that leaves the client. The
// confirmation exists purely for the local equality check.
func (v Values) NewPassword() string {
	return v.Password
}

// SampleValues is the pre-filled pair used by demo mode.
var SampleValues = Values{Password: "Password1?", ConfirmPassword: "Password1?"}

// ErrorCode classifies a field-level validation failure.
type ErrorCode int

const (
	EmptyField ErrorCode = iota + 1
	WeakPassword
	PasswordMismatch
)

// String returns the code name.
func (c ErrorCode) String() string {
	switch c {
	case EmptyField:
		return "EmptyField"
	case WeakPassword:
		return "WeakPassword"
	case PasswordMismatch:
		return "PasswordMismatch"
	default:
		return "Unknown"
	}
}

// Message returns the display text for the code.
func (c ErrorCode) Message() string {
	switch c {
	case EmptyField:
		return MsgEmptyField
	case WeakPassword:
		return MsgWeakPassword
	case PasswordMismatch:
		return MsgPasswordMismatch
	default:
		return ""
	}
}

// FieldError is a validation failure attached to one input.
type FieldError struct {
	Field   Field
	Code    ErrorCode
	Message string
}

func newFieldError(f Field, code ErrorCode) *FieldError {
	return &FieldError{Field: f, Code: code, Message: code.Message()}
}

// FieldErrors maps a field to its error. A missing key means the field is
// valid.
type FieldErrors map[Field]*FieldError

// Get returns the error for f, or nil.
func (e FieldErrors) Get(f Field) *FieldError {
	if e == nil {
		return nil
	}
	return e[f]
}

// Message returns the display text for f, or "".
func (e FieldErrors) Message(f Field) string {
	if fe := e.Get(f); fe != nil {
		return fe.Message
	}
	return ""
}

// Empty reports whether there are no errors.
func (e FieldErrors) Empty() bool {
	return len(e) == 0
}
