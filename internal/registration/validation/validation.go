// Package validation holds the presence and email-shape checks applied to a
// registration before it is persisted. The server calls Validate
// authoritatively; the browser form runs the same checks from
// BrowserEmailPattern, which the page template renders out of this package.
package validation

import (
	"errors"
	"regexp"
	"strings"

	"regform/internal/registration/models"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidEmailFormat = errors.New("invalid email format")
)

// BrowserEmailPattern is the JavaScript source of the email check. \s there is
// the ECMAScript whitespace class, which emailClass spells out for RE2.
const BrowserEmailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`

// emailClass matches one character that is neither '@' nor ECMAScript whitespace.
const emailClass = `[^\t\n\v\f\r \x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}@]`

var emailPattern = regexp.MustCompile(`^` + emailClass + `+@` + emailClass + `+\.` + emailClass + `+$`)

// FieldKind selects the blur check applied to a single input.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldEmail
)

// Validate returns nil, ErrMissingFields or ErrInvalidEmailFormat.
// Presence is checked first; values are never modified.
func Validate(sub models.Submission) error {
	if isBlank(sub.Name) || isBlank(sub.Gender) || isBlank(sub.Email) || isBlank(sub.Country) {
		return ErrMissingFields
	}
	if !IsValidEmail(sub.Email) {
		return ErrInvalidEmailFormat
	}
	return nil
}

// IsValidEmail applies the lenient local@domain.tld shape check.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// CheckField is the per-field check run when an input loses focus.
func CheckField(kind FieldKind, value string) bool {
	value = trim(value)
	if value == "" {
		return false
	}
	if kind == FieldEmail {
		return IsValidEmail(value)
	}
	return true
}

func isBlank(s string) bool {
	return trim(s) == ""
}

func trim(s string) string {
	return strings.TrimFunc(s, isSpace)
}

// isSpace matches String.prototype.trim, which also strips U+FEFF.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0x00A0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}
