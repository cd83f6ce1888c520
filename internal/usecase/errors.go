package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is the root of every authentication failure.
	ErrUnauthenticated = errors.New("could not validate credentials")
	// ErrInvalidEmail indicates login with an unknown email.
	ErrInvalidEmail = fmt.Errorf("%w: invalid email", ErrUnauthenticated)
	// ErrEmailNotVerified indicates login before email confirmation.
	ErrEmailNotVerified = fmt.Errorf("%w: email not verified", ErrUnauthenticated)
	// ErrInvalidPassword indicates a password mismatch at login.
	ErrInvalidPassword = fmt.Errorf("%w: invalid password", ErrUnauthenticated)
	// ErrInvalidRefreshToken indicates a refresh token that is not the stored one.
	ErrInvalidRefreshToken = fmt.Errorf("%w: invalid refresh token", ErrUnauthenticated)

	// ErrAccountExists indicates signup with an email that is already registered.
	ErrAccountExists = errors.New("account already exists")
	// ErrVerification indicates an email confirmation that cannot be applied.
	ErrVerification = errors.New("verification error")

	// ErrNotFound is the root of every missing-resource failure.
	ErrNotFound = errors.New("not found")
	// ErrUserNotFound indicates no principal with the given email.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
	// ErrContactNotFound indicates the contact does not exist or belongs to someone else.
	ErrContactNotFound = fmt.Errorf("%w: contact", ErrNotFound)
	// ErrNoUpcomingBirthdays indicates an empty birthday window.
	ErrNoUpcomingBirthdays = fmt.Errorf("%w: no upcoming birthdays found", ErrNotFound)

	// ErrContactExists indicates a contact email already in use.
	ErrContactExists = errors.New("contact already exists")
	// ErrAvatarStorageDisabled indicates avatar uploads are not configured.
	ErrAvatarStorageDisabled = errors.New("avatar storage not configured")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
