package group

import (
	"errors"
	"fmt"

	"github.com/loopmeet/api/pkg/domain/shared"
)

// Domain errors for groups and memberships.
var (
	ErrGroupNotFound = fmt.Errorf("%w: group not found", shared.ErrNotFound)
	ErrInvalidName   = fmt.Errorf("%w: group name is required", shared.ErrValidation)
	ErrDuplicateName = fmt.Errorf("%w: a group with that name already exists for this owner", shared.ErrConflict)
	ErrNotOwner      = fmt.Errorf("%w: only the group owner can do this", shared.ErrForbidden)
	ErrAlreadyMember = fmt.Errorf("%w: user is already a member of this group", shared.ErrConflict)
)

// IsGroupNotFound checks if the error is a group not found error.
func IsGroupNotFound(err error) bool {
	return errors.Is(err, ErrGroupNotFound)
}

// IsDuplicateName checks if the error is a duplicate name error.
func IsDuplicateName(err error) bool {
	return errors.Is(err, ErrDuplicateName)
}

// IsAlreadyMember checks if the error is an already-member error.
func IsAlreadyMember(err error) bool {
	return errors.Is(err, ErrAlreadyMember)
}
