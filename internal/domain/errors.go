package domain

import "errors"

// Error classes. Callers match with errors.Is.
var (
	ErrValidation  = errors.New("validation error")
	ErrConflict    = errors.New("conflict")
	ErrNotFound    = errors.New("not found")
	ErrForbidden   = errors.New("forbidden")
	ErrUnavailable = errors.New("service unavailable")
)

var (
	ErrRoomNotFound       = &classError{msg: "room not found", class: ErrNotFound}
	ErrBookingNotFound    = &classError{msg: "booking not found", class: ErrNotFound}
	ErrUserNotFound       = &classError{msg: "user not found", class: ErrNotFound}
	ErrBookingConflict    = &classError{msg: "room already booked for the requested dates", class: ErrConflict}
	ErrUserExists         = &classError{msg: "user with this username or email already exists", class: ErrConflict}
	ErrRoomNameTaken      = &classError{msg: "room with this name already exists", class: ErrValidation}
	ErrInvalidInterval    = &classError{msg: "start must precede end", class: ErrValidation}
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type classError struct {
	msg   string
	class error
}

func (e *classError) Error() string { return e.msg }

func (e *classError) Is(target error) bool { return target == e.class }

// ValidationError carries a message that is safe to show to the client.
type ValidationError struct {
	Msg string
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Msg: msg}
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UnavailableError hides a store failure behind ErrUnavailable while keeping the cause for logs.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }
