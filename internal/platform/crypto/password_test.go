package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     error
	}{
		{"valid with bang", "Test123!@#", nil},
		{"valid with dollar", "Password1$", nil},
		{"valid with quote", `Quote1"abc`, nil},
		{"valid with braces", "Br4ce{s}xx", nil},
		{"too short", "Te1!", ErrPasswordTooShort},
		{"seven runes", "Abcde1!", ErrPasswordTooShort},
		{"no upper", "test123!@#", ErrPasswordNoUpper},
		{"no lower", "TEST123!@#", ErrPasswordNoLower},
		{"no number", "TestPass!@#", ErrPasswordNoNumber},
		{"no special", "TestPass123", ErrPasswordNoSpecialChar},
		{"underscore is not special", "TestPass_123", ErrPasswordNoSpecialChar},
		{"dash is not special", "TestPass-123", ErrPasswordNoSpecialChar},
		{"exactly 72 bytes", "Aa1!" + strings.Repeat("x", 68), nil},
		{"over 72 bytes", "Aa1!" + strings.Repeat("x", 84), ErrPasswordTooLong},
		{"multibyte over 72 bytes", "Aa1!" + strings.Repeat("é", 35), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePasswordStrength(tt.password))
		})
	}
}

func TestHashPassword_AcceptsEveryValidPassword(t *testing.T) {
	longest := "Aa1!" + strings.Repeat("x", MaxPasswordBytes-4)
	require.NoError(t, ValidatePasswordStrength(longest))

	hash, err := HashPassword(longest)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, longest))
}

func TestHashAndVerifyPassword(t *testing.T) {
	password := "Secret123!"

	hash, err := HashPassword(password)
	require.NoError(t, err)
	assert.NotEqual(t, password, hash)

	t.Run("correct password", func(t *testing.T) {
		assert.True(t, VerifyPassword(hash, password))
	})

	t.Run("wrong password", func(t *testing.T) {
		assert.False(t, VerifyPassword(hash, "Secret123?"))
	})

	t.Run("different hash each time", func(t *testing.T) {
		hash2, err := HashPassword(password)
		require.NoError(t, err)
		assert.NotEqual(t, hash, hash2)
		assert.True(t, VerifyPassword(hash2, password))
	})
}
