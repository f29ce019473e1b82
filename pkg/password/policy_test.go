package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyValidate(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Str0ng!pass", ""},
		{"empty", "", "password is required"},
		{"too short", "Ab1!", "at least 8 characters"},
		{"no lowercase", "ALLCAPS1!", "lowercase letter"},
		{"no uppercase", "nocaps12!", "uppercase letter"},
		{"no number", "NoNumbers!", "include a number"},
		{"no symbol", "NoSymbols12", "include a symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Validate(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPolicyTogglableClasses(t *testing.T) {
	policy := Policy{MinLength: 4}

	assert.NoError(t, policy.Validate("abcd"), "all class checks disabled")

	policy.RequireUppercase = true
	assert.Error(t, policy.Validate("abcd"))
	assert.NoError(t, policy.Validate("Abcd"))

	policy.RequireSymbol = true
	assert.Error(t, policy.Validate("Abcd"))
	assert.NoError(t, policy.Validate("Abc!"))
}

func TestPolicyUnicodeClasses(t *testing.T) {
	policy := Policy{MinLength: 6, RequireLowercase: true, RequireUppercase: true}

	// Non-ASCII letters still count for their class.
	assert.NoError(t, policy.Validate("Straße"))
}
