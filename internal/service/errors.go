package service

import (
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/validate"
	"gorm.io/gorm"
)

var (
	ErrValidation          = validate.ErrInvalid
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrConflict            = errors.New("conflict")
	ErrPersistence         = errors.New("persistence failure")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrUpstream            = errors.New("upstream provider failure")
)

// storeErr turns a repository error into the service taxonomy, keeping the cause.
func storeErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, errors.Join(ErrPersistence, err))
}

func fieldError(field, msg string, value any) validate.Errors {
	return validate.Errors{{Field: field, Message: msg, Value: value}}
}

// collect runs struct validation and appends extra, returning nil when both are clean.
func collect(v any, extra ...validate.FieldError) error {
	var out validate.Errors
	if err := validate.Struct(v); err != nil {
		if !errors.As(err, &out) {
			return err
		}
	}
	out = append(out, extra...)
	if len(out) == 0 {
		return nil
	}
	return out
}
