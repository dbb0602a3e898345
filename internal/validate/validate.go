// Package validate normalizes and checks user supplied input before it
// reaches the services.  Every function returns a message suitable for a 400
// response; callers wrap it in their own error type.
package validate

import (
	"errors"
	"html"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Password bounds.  bcrypt only accepts the first 72 bytes of a password
// and rejects longer input, so the upper bound is in bytes.
const (
	MinPasswordLen   = 8
	MaxPasswordBytes = 72
)

// strict removes every HTML element; report text is stored and rendered as
// plain text only.
var strict = bluemonday.StrictPolicy()

// clean strips markup and undoes the entity escaping bluemonday applies, so
// "Tom's road" is stored as typed.
func clean(raw string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(raw)))
}

// Email trims and lower-cases an address and checks that it parses as a
// single bare address.
func Email(raw string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(raw))
	if e == "" {
		return "", errors.New("email is required")
	}
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e || len(e) > 255 {
		return "", errors.New("email is not valid")
	}
	return e, nil
}

// Password enforces the password policy: at least 8 characters, at most 72
// bytes, with at least one letter and one digit.
func Password(p string) error {
	if utf8.RuneCountInString(p) < MinPasswordLen {
		return errors.New("password must be at least 8 characters")
	}
	if len(p) > MaxPasswordBytes {
		return errors.New("password must be at most 72 bytes")
	}
	var letter, digit bool
	for _, r := range p {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !digit {
		return errors.New("password must contain at least one digit")
	}
	if !letter {
		return errors.New("password must contain at least one letter")
	}
	return nil
}

// Text strips markup, trims whitespace and truncates to max runes.  A zero
// max disables truncation.
func Text(raw string, max int) string {
	s := clean(raw)
	if max > 0 && utf8.RuneCountInString(s) > max {
		s = strings.TrimSpace(string([]rune(s)[:max]))
	}
	return s
}

// Required is Text for mandatory fields: it reports field as missing when the
// cleaned value is empty, or too long when it exceeds max.
func Required(field, raw string, max int) (string, error) {
	s := clean(raw)
	if s == "" {
		return "", errors.New(field + " is required")
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		return "", errors.New(field + " is too long")
	}
	return s, nil
}

// Verbatim checks a free-text field that is stored exactly as typed: only
// surrounding whitespace is trimmed and no markup is removed.
func Verbatim(field, raw string, max int) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", errors.New(field + " is required")
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		return "", errors.New(field + " is too long")
	}
	return s, nil
}

// Optional returns nil for blank input and a pointer to the cleaned text
// otherwise.
func Optional(raw *string, max int) *string {
	if raw == nil {
		return nil
	}
	s := Text(*raw, max)
	if s == "" {
		return nil
	}
	return &s
}
