package crypto

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// SpecialChars is the set a password must draw at least one character from.
const SpecialChars = `!@#$%^&*(),.?":{}|<>`

const MinPasswordLength = 8

// MaxPasswordBytes is the most bcrypt will hash.
const MaxPasswordBytes = 72

var (
	ErrPasswordTooShort      = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong       = errors.New("password must be at most 72 bytes")
	ErrPasswordNoUpper       = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLower       = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoNumber      = errors.New("password must contain at least one number")
	ErrPasswordNoSpecialChar = errors.New("password must contain at least one special character")
)

var (
	upperRe  = regexp.MustCompile(`[A-Z]`)
	lowerRe  = regexp.MustCompile(`[a-z]`)
	numberRe = regexp.MustCompile(`[0-9]`)
)

func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// ValidatePasswordStrength reports the first rule the password breaks.
func ValidatePasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	if !upperRe.MatchString(password) {
		return ErrPasswordNoUpper
	}
	if !lowerRe.MatchString(password) {
		return ErrPasswordNoLower
	}
	if !numberRe.MatchString(password) {
		return ErrPasswordNoNumber
	}
	if !strings.ContainsAny(password, SpecialChars) {
		return ErrPasswordNoSpecialChar
	}
	return nil
}
