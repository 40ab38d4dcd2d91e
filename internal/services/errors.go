package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/tripmate/backend/internal/models"
	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account locked")
	ErrDuplicate          = errors.New("already exists")
	ErrGroupFull          = models.ErrGroupFull
	ErrInvalidInput       = errors.New("invalid input")
)

// LockedError carries how long a locked account stays locked.
type LockedError struct {
	Remaining time.Duration
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("account locked for %s", e.Remaining.Round(time.Second))
}

func (e *LockedError) Is(target error) bool { return target == ErrAccountLocked }

// translate maps storage errors onto the service sentinels.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, models.ErrAlreadyMember):
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	case errors.Is(err, models.ErrGroupFull):
		return err
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
