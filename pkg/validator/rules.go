package validator

import (
	"fmt"
	"net/mail"
	"strings"
)

// RequiredString fails when value is empty or whitespace only.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{Field: field, Message: "field is required"},
	}
}

// MaxLenString fails when value is longer than max bytes.
func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) <= max
		},
		Error: ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d bytes long", max)},
	}
}

// SingleLine fails when value contains a line break.
func SingleLine(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return !strings.ContainsAny(value, "\r\n")
		},
		Error: ValidationError{Field: field, Message: "must not contain line breaks"},
	}
}

// AddrSpec fails unless value is a bare email address: no display name,
// no angle brackets, a non-empty local part and a dotted domain.
func AddrSpec(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return IsAddrSpec(value)
		},
		Error: ValidationError{Field: field, Message: "must be a valid email address"},
	}
}

// IsAddrSpec reports whether value is a bare email address.
func IsAddrSpec(value string) bool {
	if value == "" || value != strings.TrimSpace(value) {
		return false
	}

	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	// A display name or angle brackets change the parsed form.
	if addr.Name != "" || addr.Address != value {
		return false
	}

	at := strings.LastIndex(addr.Address, "@")
	if at <= 0 {
		return false
	}
	domain := addr.Address[at+1:]
	return strings.Contains(domain, ".") &&
		!strings.HasPrefix(domain, ".") &&
		!strings.HasSuffix(domain, ".")
}
