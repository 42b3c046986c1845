package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Stable machine-readable error codes. The API layer maps them
// straight to HTTP responses, tests match on them.
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeDuplicateName     = "DUPLICATE_NAME"
	CodeNotFound          = "NOT_FOUND"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeImport            = "IMPORT_ERROR"
	CodePersistence       = "PERSISTENCE_ERROR"
)

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on code so errors.Is works against the package sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

func New(code, message string, status int) *Error {
	return &Error{Code: code, Message: message, Status: status}
}

func Validation(format string, args ...any) *Error {
	return New(CodeValidation, fmt.Sprintf(format, args...), http.StatusBadRequest)
}

func DuplicateName(name string) *Error {
	return New(CodeDuplicateName, fmt.Sprintf("item named %q already exists", name), http.StatusConflict)
}

func NotFound(resource, id string) *Error {
	return New(CodeNotFound, fmt.Sprintf("%s %s not found", resource, id), http.StatusNotFound)
}

func InsufficientStock(name string, have, want int) *Error {
	return New(CodeInsufficientStock,
		fmt.Sprintf("cannot move %d of %q, only %d in warehouse", want, name, have),
		http.StatusConflict)
}

func Import(message string, err error) *Error {
	e := New(CodeImport, message, http.StatusBadRequest)
	e.Err = err
	return e
}

func Persistence(err error) *Error {
	e := New(CodePersistence, "storage write failed", http.StatusInternalServerError)
	e.Err = err
	return e
}

// From extracts an *Error from err, or nil when err is not one.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
