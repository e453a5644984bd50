package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// ErrorKind classifies failures so callers can branch without string matching.
type ErrorKind string

const (
	// KindNotFound means a referenced identity or key does not exist.
	KindNotFound ErrorKind = "not_found"
	// KindNotUnique means a uniqueness constraint would be violated.
	KindNotUnique ErrorKind = "not_unique"
	// KindInvalidInput means the request failed validation.
	KindInvalidInput ErrorKind = "invalid_input"
	// KindHasDependents means dependent records block the change.
	KindHasDependents ErrorKind = "has_dependents"
)

// Error is a kinded failure with a human readable detail.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return strings.ReplaceAll(string(e.Kind), "_", " ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) holds
// for every not-found failure regardless of its detail.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	return ok && other.Kind == e.Kind
}

var (
	// ErrNotFound matches every KindNotFound error.
	ErrNotFound = &Error{Kind: KindNotFound}
	// ErrNotUnique matches every KindNotUnique error.
	ErrNotUnique = &Error{Kind: KindNotUnique}
	// ErrInvalidInput matches every KindInvalidInput error.
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
	// ErrHasDependents matches every KindHasDependents error.
	ErrHasDependents = &Error{Kind: KindHasDependents}
)

// KindOf returns the kind of err, or "" for unclassified failures.
func KindOf(err error) ErrorKind {
	var kinded *Error
	if errors.As(err, &kinded) {
		return kinded.Kind
	}
	return ""
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func notFound(format string, args ...interface{}) *Error {
	return newError(KindNotFound, format, args...)
}

func invalidInput(format string, args ...interface{}) *Error {
	return newError(KindInvalidInput, format, args...)
}

func hasDependents(format string, args ...interface{}) *Error {
	return newError(KindHasDependents, format, args...)
}

// translateStoreError maps persistence errors onto kinds. Unknown errors are
// wrapped with the operation for context and stay unclassified.
func translateStoreError(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	var kinded *Error
	if errors.As(err, &kinded) {
		return err
	}

	detail := fmt.Sprintf(format, args...)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: KindNotFound, Detail: detail + " not found", Err: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: KindNotUnique, Detail: detail + " already exists", Err: err}
	default:
		return fmt.Errorf("%s: %w", detail, err)
	}
}

// prefixDetail qualifies an error with where it happened, keeping its kind.
func prefixDetail(err error, format string, args ...interface{}) error {
	prefix := fmt.Sprintf(format, args...)
	var kinded *Error
	if errors.As(err, &kinded) {
		return &Error{Kind: kinded.Kind, Detail: prefix + ": " + kinded.Detail, Err: kinded.Err}
	}
	return fmt.Errorf("%s: %w", prefix, err)
}

// validationError converts validator failures into a single InvalidInput error.
func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return &Error{Kind: KindInvalidInput, Detail: err.Error(), Err: err}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		messages = append(messages, describeFieldError(fieldErr))
	}

	return &Error{Kind: KindInvalidInput, Detail: strings.Join(messages, "; "), Err: err}
}

func describeFieldError(fieldErr validator.FieldError) string {
	field := fieldErr.Field()
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fieldErr.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fieldErr.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fieldErr.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", field, fieldErr.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fieldErr.Tag())
	}
}
