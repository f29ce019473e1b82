package handler

import (
	"errors"
	"net/http"

	"github.com/loopmeet/api/internal/app"
	"github.com/loopmeet/api/internal/infra/http/middleware"
	"github.com/loopmeet/api/pkg/apierror"
	"github.com/loopmeet/api/pkg/logger"
	"github.com/loopmeet/api/pkg/validator"
)

// UserHandler serves the profile and password endpoints.
type UserHandler struct {
	users     *app.UserService
	passwords *app.PasswordChangeService
	validator *validator.Validator
	logger    *logger.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(
	users *app.UserService,
	passwords *app.PasswordChangeService,
	v *validator.Validator,
	log *logger.Logger,
) *UserHandler {
	return &UserHandler{
		users:     users,
		passwords: passwords,
		validator: v,
		logger:    log.With("handler", "user"),
	}
}

// GetProfile handles GET /users/profile.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		apiErr.WriteJSON(w)
		return
	}

	view, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// UpsertProfile handles POST /users/profile. The request body is merged with
// token claims: a missing email falls back to the email claim, and the social
// avatar and linked providers always come from the token.
func (h *UserHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		apiErr.WriteJSON(w)
		return
	}

	var input app.UpsertProfileInput
	if err := decodeJSON(r, &input); err != nil {
		apierror.BadRequest(apierror.CodeBadRequest, "Invalid request body.").WriteJSON(w)
		return
	}

	if claims := middleware.GetClaims(r.Context()); claims != nil {
		if input.Email == "" {
			input.Email = claims.Email
		}
		input.SocialAvatarURL = claims.SocialAvatarURL()
		input.Providers = claims.Providers()
	}

	if err := h.validator.Validate(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			apierror.ValidationFailed("Validation failed.", verrs).WriteJSON(w)
			return
		}
		respondError(w, h.logger, err)
		return
	}

	if _, err := h.users.UpsertProfile(r.Context(), userID, input); err != nil {
		respondError(w, h.logger, err)
		return
	}

	view, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// UpdateProfile handles PATCH /users/profile. Absent fields are left as they
// are.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		apiErr.WriteJSON(w)
		return
	}

	var input app.UpdateProfileInput
	if err := decodeJSON(r, &input); err != nil {
		apierror.BadRequest(apierror.CodeBadRequest, "Invalid request body.").WriteJSON(w)
		return
	}

	if err := h.validator.Validate(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			apierror.ValidationFailed("Validation failed.", verrs).WriteJSON(w)
			return
		}
		respondError(w, h.logger, err)
		return
	}

	if _, err := h.users.UpdateProfile(r.Context(), userID, input); err != nil {
		respondError(w, h.logger, err)
		return
	}

	view, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// changePasswordResponse is the success body for the password endpoint.
type changePasswordResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	EmailSource      string `json:"email_source"`
	HasEmailIdentity bool   `json:"has_email_identity"`
}

// ChangePassword handles POST /users/password.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, apiErr := currentUserID(r)
	if apiErr != nil {
		apiErr.WriteJSON(w)
		return
	}

	var input app.ChangePasswordInput
	if err := decodeJSON(r, &input); err != nil {
		apierror.BadRequest(apierror.CodeBadRequest, "Invalid request body.").WriteJSON(w)
		return
	}

	result, err := h.passwords.ChangePassword(
		r.Context(),
		userID,
		middleware.GetEmail(r.Context()),
		middleware.GetAccessToken(r),
		input,
	)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	if !result.Success {
		passwordError(result).WriteJSON(w)
		return
	}

	respondJSON(w, http.StatusOK, changePasswordResponse{
		Success:          true,
		Message:          result.Message,
		EmailSource:      string(result.EmailSource),
		HasEmailIdentity: result.HasEmailIdentity,
	})
}

// passwordError maps a failed password change to the API error envelope.
// Caller mistakes are 400s, provider failures are 502s, and a missing
// provider configuration is a 500.
func passwordError(result *app.ChangePasswordResult) *apierror.Error {
	switch result.Reason {
	case app.ReasonMissingFields:
		return apierror.BadRequest(apierror.CodeMissingFields, result.Message)
	case app.ReasonPasswordMismatch:
		return apierror.BadRequest(apierror.CodePasswordMismatch, result.Message)
	case app.ReasonPasswordPolicyFailed:
		return apierror.BadRequest(apierror.CodePasswordPolicyFailed, result.Message)
	case app.ReasonMissingEmail:
		return apierror.BadRequest(apierror.CodeMissingEmail, result.Message)
	case app.ReasonCurrentPasswordInvalid:
		return apierror.BadRequest(apierror.CodeCurrentPasswordWrong, result.Message)
	case app.ReasonIdentityLookupFailed:
		return apierror.BadGateway(apierror.CodeIdentityLookupFailed, result.Message)
	case app.ReasonProviderUpdateFailed:
		return apierror.BadGateway(apierror.CodePasswordUpdateFailed, result.Message)
	case app.ReasonProviderUnexpected:
		return apierror.BadGateway(apierror.CodePasswordServiceError, result.Message)
	case app.ReasonServiceNotConfigured:
		return apierror.New(http.StatusInternalServerError, apierror.CodeServiceNotConfigured, result.Message)
	default:
		return apierror.InternalError(nil)
	}
}
