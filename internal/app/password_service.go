package app

import (
	"context"
	"errors"
	"strings"

	"github.com/loopmeet/api/pkg/domain/shared"
	"github.com/loopmeet/api/pkg/domain/user"
	"github.com/loopmeet/api/pkg/logger"
	"github.com/loopmeet/api/pkg/password"
	"github.com/loopmeet/api/pkg/supabase"
)

// Reason classifies why a password change failed. ReasonNone means success.
type Reason string

// Password change failure reasons.
const (
	ReasonNone                   Reason = ""
	ReasonMissingFields          Reason = "missing_fields"
	ReasonPasswordMismatch       Reason = "password_mismatch"
	ReasonPasswordPolicyFailed   Reason = "password_policy_failed"
	ReasonServiceNotConfigured   Reason = "service_not_configured"
	ReasonIdentityLookupFailed   Reason = "identity_lookup_failed"
	ReasonMissingEmail           Reason = "missing_email"
	ReasonCurrentPasswordInvalid Reason = "current_password_invalid"
	ReasonProviderUpdateFailed   Reason = "provider_update_failed"
	ReasonProviderUnexpected     Reason = "provider_unexpected"
)

// EmailSource records which source supplied the email used for the change.
type EmailSource string

// Email provenance values, in precedence order.
const (
	EmailSourceNone     EmailSource = "none"
	EmailSourceRequest  EmailSource = "request"
	EmailSourceProfile  EmailSource = "profile"
	EmailSourceClaim    EmailSource = "claim"
	EmailSourceProvider EmailSource = "provider"
)

// IdentityClient is the slice of the provider client the password workflow
// needs. Satisfied by *supabase.Client.
type IdentityClient interface {
	GetUser(ctx context.Context, accessToken string) (*supabase.AuthUser, error)
	VerifyPassword(ctx context.Context, email, currentPassword string) (bool, error)
	UpdateUser(ctx context.Context, accessToken string, input supabase.UpdateUserInput) error
}

// ChangePasswordInput carries the password change request fields.
type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
	// Email optionally names the account email; used ahead of the profile,
	// claim, and provider emails.
	Email string `json:"email"`
}

// ChangePasswordResult reports the outcome. EmailSource and HasEmailIdentity
// are diagnostic provenance carried on every path that reached the provider.
type ChangePasswordResult struct {
	Success          bool
	Reason           Reason
	Message          string
	EmailSource      EmailSource
	HasEmailIdentity bool
}

func failure(reason Reason, message string) *ChangePasswordResult {
	return &ChangePasswordResult{Reason: reason, Message: message, EmailSource: EmailSourceNone}
}

// PasswordChangeService reconciles password changes against the identity
// provider. Local validation runs first so mismatches and policy failures
// never cost a network call.
type PasswordChangeService struct {
	client IdentityClient
	users  user.Repository
	policy password.Policy
	// configured is false when the provider URL or key is absent; the
	// workflow then refuses up front instead of failing mid-flight.
	configured bool
	logger     *logger.Logger
}

// NewPasswordChangeService creates a new PasswordChangeService. client may
// be nil when the provider is not configured.
func NewPasswordChangeService(
	client IdentityClient,
	users user.Repository,
	policy password.Policy,
	configured bool,
	log *logger.Logger,
) *PasswordChangeService {
	return &PasswordChangeService{
		client:     client,
		users:      users,
		policy:     policy,
		configured: configured,
		logger:     log.With("service", "password_change"),
	}
}

// ChangePassword runs the full workflow: local validation, identity fetch,
// email resolution, current-password verification for email-identity
// accounts, then the provider update. fallbackEmail is the email claim from
// the caller's token.
func (s *PasswordChangeService) ChangePassword(
	ctx context.Context,
	userID shared.ID,
	fallbackEmail string,
	accessToken string,
	input ChangePasswordInput,
) (*ChangePasswordResult, error) {
	// Step 1: local validation, before any network traffic.
	if input.NewPassword == "" || input.ConfirmPassword == "" {
		return failure(ReasonMissingFields, "New password and confirmation are required."), nil
	}
	if input.NewPassword != input.ConfirmPassword {
		return failure(ReasonPasswordMismatch, "New password and confirmation do not match."), nil
	}
	if err := s.policy.Validate(input.NewPassword); err != nil {
		return failure(ReasonPasswordPolicyFailed, err.Error()), nil
	}

	// Step 2: refuse early when the provider is not wired.
	if !s.configured || s.client == nil || accessToken == "" {
		return failure(ReasonServiceNotConfigured, "Password changes are not available right now."), nil
	}

	// Step 3: fetch the auth account to learn its linked identities.
	authUser, err := s.client.GetUser(ctx, accessToken)
	if err != nil {
		s.logger.Warn("identity lookup failed", "user_id", userID.String(), "error", err)
		return failure(ReasonIdentityLookupFailed, "Could not verify your account. Please sign in again."), nil
	}
	hasEmailIdentity := authUser.HasEmailIdentity()

	// Step 4: resolve the account email, request > profile > claim > provider.
	email, source := s.resolveEmail(ctx, userID, input.Email, fallbackEmail, authUser.Email)
	if email == "" {
		msg := "An email address is required to set your password."
		if hasEmailIdentity {
			msg = "An email address is required to verify your current password."
		}
		return &ChangePasswordResult{
			Reason:           ReasonMissingEmail,
			Message:          msg,
			EmailSource:      EmailSourceNone,
			HasEmailIdentity: hasEmailIdentity,
		}, nil
	}

	result := &ChangePasswordResult{
		EmailSource:      source,
		HasEmailIdentity: hasEmailIdentity,
	}

	// Step 5: accounts with an email identity must prove the current password.
	if hasEmailIdentity {
		if input.CurrentPassword == "" {
			result.Reason = ReasonMissingFields
			result.Message = "Current password is required."
			return result, nil
		}

		valid, err := s.client.VerifyPassword(ctx, email, input.CurrentPassword)
		if err != nil {
			s.logger.Warn("current password verification errored", "user_id", userID.String(), "error", err)
			result.Reason = ReasonProviderUnexpected
			result.Message = "Could not verify your current password. Please try again later."
			return result, nil
		}
		if !valid {
			result.Reason = ReasonCurrentPasswordInvalid
			result.Message = "Current password is incorrect."
			return result, nil
		}
	}

	// Step 6: push the update. Accounts without an email identity also get
	// the email set when the provider has a different one on record, so the
	// new password becomes usable for email login.
	update := supabase.UpdateUserInput{Password: input.NewPassword}
	if !hasEmailIdentity && !strings.EqualFold(email, authUser.Email) {
		update.Email = email
	}

	if err := s.client.UpdateUser(ctx, accessToken, update); err != nil {
		s.logger.Warn("password update failed", "user_id", userID.String(), "error", err)
		if errors.Is(err, supabase.ErrUnexpected) {
			result.Reason = ReasonProviderUnexpected
			result.Message = "The password service is unavailable. Please try again later."
		} else {
			result.Reason = ReasonProviderUpdateFailed
			result.Message = "Could not update your password."
		}
		return result, nil
	}

	s.logger.Info("password changed",
		"user_id", userID.String(),
		"email_source", string(source),
		"has_email_identity", hasEmailIdentity,
	)

	result.Success = true
	result.Message = "Password updated."
	return result, nil
}

// resolveEmail picks the account email by precedence and records where it
// came from. Profile lookup failures degrade to the next source.
func (s *PasswordChangeService) resolveEmail(
	ctx context.Context,
	userID shared.ID,
	requestEmail, claimEmail, providerEmail string,
) (string, EmailSource) {
	if e := strings.TrimSpace(requestEmail); e != "" {
		return e, EmailSourceRequest
	}

	if u, err := s.users.GetByID(ctx, userID); err == nil {
		if e := strings.TrimSpace(u.Email()); e != "" {
			return e, EmailSourceProfile
		}
	} else if !errors.Is(err, user.ErrUserNotFound) {
		s.logger.Warn("profile lookup failed during email resolution", "user_id", userID.String(), "error", err)
	}

	if e := strings.TrimSpace(claimEmail); e != "" {
		return e, EmailSourceClaim
	}
	if e := strings.TrimSpace(providerEmail); e != "" {
		return e, EmailSourceProvider
	}
	return "", EmailSourceNone
}
