package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a service failure for callers and HTTP mapping.
type ErrorKind string

const (
	KindValidation        ErrorKind = "VALIDATION"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindStateConflict     ErrorKind = "STATE_CONFLICT"
	KindInsufficientFunds ErrorKind = "INSUFFICIENT_FUNDS"
	KindConfiguration     ErrorKind = "CONFIGURATION"
)

// Sub-codes distinguishing which bucket ran short.
const (
	CodeUserBalance = "USER_BALANCE"
	CodeBrandBudget = "BRAND_BUDGET"
	CodeDailyCap    = "DAILY_CAP"
)

// Error is the structured failure every service operation returns on the
// unhappy path. Storage-engine errors are translated into one of these before
// they leave a service; raw driver errors never reach handlers.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Code    string    `json:"code,omitempty"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s/%s: %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func StateConflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindStateConflict, Message: fmt.Sprintf(format, args...)}
}

func InsufficientFunds(code, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInsufficientFunds, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Configuration(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

// AsServiceError unwraps err into a *Error when possible.
func AsServiceError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsKind reports whether err is a service error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	se, ok := AsServiceError(err)
	return ok && se.Kind == kind
}
