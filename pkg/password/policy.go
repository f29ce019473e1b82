// Package password provides password policy validation.
package password

import (
	"fmt"
	"unicode"
)

// Policy holds configurable password strength requirements. Each character
// class requirement is independently togglable.
type Policy struct {
	MinLength        int
	RequireLowercase bool
	RequireUppercase bool
	RequireNumber    bool
	RequireSymbol    bool
}

// DefaultPolicy returns the default password policy.
func DefaultPolicy() Policy {
	return Policy{
		MinLength:        8,
		RequireLowercase: true,
		RequireUppercase: true,
		RequireNumber:    true,
		RequireSymbol:    true,
	}
}

// Validate checks a password against the policy. The returned error message
// names the first unmet requirement and is safe to show to users.
func (p Policy) Validate(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters", p.MinLength)
	}

	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSymbol = true
		}
	}

	if p.RequireLowercase && !hasLower {
		return fmt.Errorf("password must include a lowercase letter")
	}
	if p.RequireUppercase && !hasUpper {
		return fmt.Errorf("password must include an uppercase letter")
	}
	if p.RequireNumber && !hasDigit {
		return fmt.Errorf("password must include a number")
	}
	if p.RequireSymbol && !hasSymbol {
		return fmt.Errorf("password must include a symbol")
	}

	return nil
}
