package domain

import "errors"

// The error kinds below are what services return and what the HTTP layer
// maps to status codes. Each wraps an optional cause.

type NotFoundError struct {
	Resource string
	Err      error
}

func (e NotFoundError) Error() string {
	return orDefault(e.Resource, "resource") + " not found"
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ValidationError reports bad input, optionally tied to one field.
type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	switch {
	case e.Field == "":
		return orDefault(e.Msg, "invalid input")
	case e.Msg == "":
		return "invalid " + e.Field
	}
	return e.Field + ": " + e.Msg
}

func (e ValidationError) Unwrap() error { return e.Err }

// ConflictError means the request is valid but clashes with current state
// (duplicate key, vehicle already booked, rental already finished).
type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return orDefault(e.Resource, "resource") + " is in a conflicting state"
}

func (e ConflictError) Unwrap() error { return e.Err }

// IntegrityError means a row another row depends on is gone. It is never the
// caller's fault.
type IntegrityError struct {
	Msg string
	Err error
}

func (e IntegrityError) Error() string {
	return "integrity failure: " + orDefault(e.Msg, "dangling reference")
}

func (e IntegrityError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string { return orDefault(e.Msg, "internal error") }

func (e InternalError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool   { return isKind[NotFoundError](err) }
func IsValidation(err error) bool { return isKind[ValidationError](err) }
func IsConflict(err error) bool   { return isKind[ConflictError](err) }
func IsIntegrity(err error) bool  { return isKind[IntegrityError](err) }
func IsInternal(err error) bool   { return isKind[InternalError](err) }

func isKind[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
