package domain

import (
	"errors"
	"fmt"
)

// Code is a stable machine-readable error code callers can branch on.
type Code string

const (
	CodeNotFound               Code = "NOT_FOUND"
	CodeInvalidTransition      Code = "INVALID_STATUS_TRANSITION"
	CodeInvalidStatus          Code = "INVALID_STATUS"
	CodeDuplicateContainer     Code = "DUPLICATE_CONTAINER"
	CodeInvalidContainerNumber Code = "INVALID_CONTAINER_NUMBER"
	CodeContainerNotFound      Code = "CONTAINER_NOT_FOUND"
	CodeHoldNotFound           Code = "HOLD_NOT_FOUND"
	CodeNotReefer              Code = "NOT_REEFER"
	CodeWorkOrderConflict      Code = "WORK_ORDER_CONFLICT"
	CodeSlotUnavailable        Code = "SLOT_UNAVAILABLE"
	CodeLOAExceeded            Code = "LOA_EXCEEDED"
)

// Error carries a stable code alongside a human-readable message. Business
// rule violations are returned as *Error values, never panics.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds an *Error with a formatted message.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the code from err, or empty when err is not a domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
