package user

import (
	"errors"
	"fmt"

	"github.com/loopmeet/api/pkg/domain/shared"
)

// Domain errors for users.
var (
	ErrUserNotFound = fmt.Errorf("%w: user not found", shared.ErrNotFound)
	ErrEmailExists  = fmt.Errorf("%w: email already in use", shared.ErrAlreadyExists)
)

// IsUserNotFound checks if the error is a user not found error.
func IsUserNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}
