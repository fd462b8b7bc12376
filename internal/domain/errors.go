// Package domain holds the error vocabulary and request context shared by
// every layer. Handlers map these types to HTTP status codes.
package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	Key      string
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource == "":
		return "not found"
	case e.Key != "":
		return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
	default:
		return fmt.Sprintf("%s not found", e.Resource)
	}
}

func (e NotFoundError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field string
	Msg   string
	Err   error
}

func (e ValidationError) Error() string {
	if e.Msg != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

func (e ValidationError) Unwrap() error { return e.Err }

type ConflictError struct {
	Resource string
	Msg      string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Msg != "" && e.Resource != "":
		return fmt.Sprintf("%s conflict: %s", e.Resource, e.Msg)
	case e.Msg != "":
		return e.Msg
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// DuplicateError reports a unique-constraint violation (username, email,
// booking reference).
type DuplicateError struct {
	Resource string
	Key      string
	Err      error
}

func (e DuplicateError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s already exists", e.Resource, e.Key)
	}
	if e.Resource != "" {
		return fmt.Sprintf("%s already exists", e.Resource)
	}
	return "duplicate"
}

func (e DuplicateError) Unwrap() error { return e.Err }

// InsufficientInventoryError means the oversell guard tripped.
type InsufficientInventoryError struct {
	ScheduleID int64
	Requested  int
	Available  int
}

func (e InsufficientInventoryError) Error() string {
	return fmt.Sprintf("not enough seats on schedule %d: requested %d, available %d",
		e.ScheduleID, e.Requested, e.Available)
}

// UnavailableError means the authority could not be reached at all.
type UnavailableError struct {
	Op  string
	Err error
}

func (e UnavailableError) Error() string {
	if e.Op == "" {
		return "authority unavailable"
	}
	if e.Err == nil {
		return fmt.Sprintf("authority unavailable during %s", e.Op)
	}
	return fmt.Sprintf("authority unavailable during %s: %v", e.Op, e.Err)
}

func (e UnavailableError) Unwrap() error { return e.Err }

// CorruptError marks a persisted offline record that cannot be decoded.
type CorruptError struct {
	Kind string
	ID   string
	Err  error
}

func (e CorruptError) Error() string {
	return fmt.Sprintf("corrupt %s record %s: %v", e.Kind, e.ID, e.Err)
}

func (e CorruptError) Unwrap() error { return e.Err }

type InternalError struct {
	Msg string
	Err error
}

func (e InternalError) Error() string {
	if e.Msg != "" && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "internal error"
}

func (e InternalError) Unwrap() error { return e.Err }

// as reports whether err wraps a T anywhere in its chain.
func as[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

func IsNotFound(err error) bool              { return as[NotFoundError](err) }
func IsValidation(err error) bool            { return as[ValidationError](err) }
func IsConflict(err error) bool              { return as[ConflictError](err) }
func IsDuplicate(err error) bool             { return as[DuplicateError](err) }
func IsInsufficientInventory(err error) bool { return as[InsufficientInventoryError](err) }
func IsUnavailable(err error) bool           { return as[UnavailableError](err) }
func IsCorrupt(err error) bool               { return as[CorruptError](err) }
func IsInternal(err error) bool              { return as[InternalError](err) }
