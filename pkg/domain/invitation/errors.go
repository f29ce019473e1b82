package invitation

import (
	"errors"
	"fmt"

	"github.com/loopmeet/api/pkg/domain/shared"
)

// Domain errors for invitations.
var (
	ErrNotFound      = fmt.Errorf("%w: invitation not found", shared.ErrNotFound)
	ErrNotPending    = fmt.Errorf("%w: invitation is no longer pending", shared.ErrNotFound)
	ErrInvalidEmail  = fmt.Errorf("%w: invited email is required", shared.ErrValidation)
	ErrDuplicate     = fmt.Errorf("%w: an invitation is already pending for that email", shared.ErrConflict)
	ErrAlreadyMember = fmt.Errorf("%w: user is already a member of this group", shared.ErrConflict)
)

// IsNotFound checks if the error is a not found (or not pending) error.
func IsNotFound(err error) bool {
	return errors.Is(err, shared.ErrNotFound)
}

// IsDuplicate checks if the error is a duplicate pending invitation error.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// IsAlreadyMember checks if the error is an already-member error.
func IsAlreadyMember(err error) bool {
	return errors.Is(err, ErrAlreadyMember)
}
