// Package validation checks account fields submitted at signup.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	// MaxUsernameLength matches the users.username column.
	MaxUsernameLength = 150
	MinPasswordLength = 8
	MaxPasswordLength = 128
	maxEmailLength    = 254
)

// Letters and digits in any script, plus @ . + - _
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+\-]+$`)

// commonPasswords is a short deny list of the passwords seen most often in
// credential dumps.
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "passw0rd": {},
	"12345678": {}, "123456789": {}, "1234567890": {}, "87654321": {},
	"qwertyuiop": {}, "qwerty123": {}, "iloveyou": {}, "sunshine": {},
	"football": {}, "baseball": {}, "princess": {}, "superman": {},
	"trustno1": {}, "letmein1": {}, "welcome1": {}, "admin123": {},
	"abc12345": {}, "11111111": {}, "00000000": {}, "monkey123": {},
}

var emailValidator = validator.New()

// ValidateUsername accepts 1 to 150 characters made of letters, digits and
// the symbols @ . + - _.
func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n == 0 {
		return fmt.Errorf("username is required")
	}
	if n > MaxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username may contain only letters, numbers, and @/./+/-/_ characters")
	}
	return nil
}

// ValidatePassword enforces the password policy: a length window, not
// entirely numeric, not a common password, and not a copy of any of the
// given account attributes (username, email).
func ValidatePassword(password string, attrs ...string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if n > MaxPasswordLength {
		return fmt.Errorf("password must not exceed %d characters", MaxPasswordLength)
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		return fmt.Errorf("password can't be entirely numeric")
	}
	lower := strings.ToLower(password)
	if _, ok := commonPasswords[lower]; ok {
		return fmt.Errorf("password is too common")
	}
	for _, attr := range attrs {
		if tooSimilar(lower, strings.ToLower(attr)) {
			return fmt.Errorf("password is too similar to your account details")
		}
	}
	return nil
}

// tooSimilar reports whether the password contains the attribute, or the
// local part of it for an email, or is itself contained in it.
func tooSimilar(password, attr string) bool {
	if at := strings.IndexByte(attr, '@'); at > 0 {
		attr = attr[:at]
	}
	if len(attr) < 3 {
		return false
	}
	return strings.Contains(password, attr) || strings.Contains(attr, password)
}

// ValidateEmail checks the address format and length.
func ValidateEmail(email string) error {
	if len(email) > maxEmailLength {
		return fmt.Errorf("email must not exceed %d characters", maxEmailLength)
	}
	if err := emailValidator.Var(email, "required,email"); err != nil {
		return fmt.Errorf("invalid email format")
	}
	return nil
}
