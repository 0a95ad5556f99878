package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Handlers map these to response codes with errors.Is.
var (
	ErrAuthRequired  = errors.New("authentication required")
	ErrNotFound      = errors.New("not found")
	ErrQuotaExceeded = errors.New("free tier limit reached")
	ErrValidation    = errors.New("invalid input")
	ErrConflict      = errors.New("conflict")
	ErrStorage       = errors.New("storage failure")
)

var (
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrPaymentNotFound    = fmt.Errorf("payment %w", ErrNotFound)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrAuthRequired)
	ErrInvalidPlan        = fmt.Errorf("%w: subscription type must be monthly or yearly", ErrValidation)
	ErrEmptyInput         = fmt.Errorf("%w: required field is empty", ErrValidation)
	ErrEmailExists        = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrAlreadyActivated   = fmt.Errorf("%w: payment already activated", ErrConflict)
	ErrPaymentNotPending  = fmt.Errorf("%w: payment is no longer pending", ErrConflict)
	ErrDuplicateReference = fmt.Errorf("%w: could not allocate a unique payment reference", ErrConflict)
)

// storageErr wraps err as ErrStorage, translating missing rows to notFound.
func storageErr(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if notFound != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
