package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInternal           = errors.New("internal error")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrInactiveUser       = errors.New("inactive user")
	ErrForbidden          = errors.New("not enough permissions")
	ErrDuplicateUsername  = errors.New("username already registered")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)

func NewInvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}

// NewForbidden уточняет причину отказа, оставаясь ErrForbidden для errors.Is.
func NewForbidden(msg string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, msg)
}

func NewNotFound(what string) error {
	return fmt.Errorf("%s %w", what, ErrNotFound)
}

func NewAlreadyExists(what string) error {
	return fmt.Errorf("%s %w", what, ErrAlreadyExists)
}

func WrapInternal(err error, context string) error {
	return fmt.Errorf("%w: %s: %v", ErrInternal, context, err)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrPasswordTooLong)
}

func IsInternal(err error) bool {
	return errors.Is(err, ErrInternal)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsInvalidToken(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}

func IsInactiveUser(err error) bool {
	return errors.Is(err, ErrInactiveUser)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsDuplicate покрывает все конфликты уникальности: username, email, коды проектов, номера RFI.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateUsername) ||
		errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrAlreadyExists)
}
