// Package handler provides the HTTP handlers for the API surface.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/loopmeet/api/pkg/apierror"
	"github.com/loopmeet/api/pkg/domain/group"
	"github.com/loopmeet/api/pkg/domain/invitation"
	"github.com/loopmeet/api/pkg/domain/shared"
	"github.com/loopmeet/api/pkg/logger"
)

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

// decodeJSON decodes the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// respondError maps domain errors to the API error envelope. Specific
// sentinels map to their dedicated codes; remaining sentinel classes fall
// back to their generic status; anything else is a 500.
func respondError(w http.ResponseWriter, log *logger.Logger, err error) {
	apiErr := mapError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		log.Error("request failed", "error", err)
	}
	apiErr.WriteJSON(w)
}

func mapError(err error) *apierror.Error {
	var apiErr *apierror.Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, group.ErrInvalidName):
		return apierror.BadRequest(apierror.CodeInvalidGroupName, "Group name is required.")
	case errors.Is(err, group.ErrDuplicateName):
		return apierror.Conflict(apierror.CodeDuplicateGroupName, "You already have a group with that name.")
	case errors.Is(err, group.ErrNotOwner):
		return apierror.Forbidden(apierror.CodeNotGroupOwner, "Only the group owner can do this.")
	case errors.Is(err, invitation.ErrInvalidEmail):
		return apierror.BadRequest(apierror.CodeInvalidEmail, "A valid email address is required.")
	case errors.Is(err, invitation.ErrDuplicate):
		return apierror.Conflict(apierror.CodeInvitationExists, "An invitation is already pending for that email.")
	case errors.Is(err, invitation.ErrAlreadyMember), errors.Is(err, group.ErrAlreadyMember):
		return apierror.Conflict(apierror.CodeAlreadyMember, "That user is already a member of the group.")
	case shared.IsNotFound(err):
		return apierror.NotFound("")
	case shared.IsValidation(err):
		return apierror.BadRequest(apierror.CodeBadRequest, err.Error())
	case shared.IsForbidden(err):
		return apierror.Forbidden(apierror.CodeForbidden, "")
	case shared.IsConflict(err):
		return apierror.Conflict(apierror.CodeConflict, err.Error())
	default:
		return apierror.InternalError(err)
	}
}
