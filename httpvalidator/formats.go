package httpvalidator

import (
	"encoding/base64"
	"fmt"
	"net/mail"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// builtinFormats maps string format names to their validators. Callers
// override or extend these with WithFormat. Numeric formats (int32,
// int64, float, double) are range checks on numbers, not string formats,
// and are handled directly by the schema walk.
var builtinFormats = map[string]FormatFunc{
	"date-time": validateDateTime,
	"date":      validateDate,
	"uuid":      validateUUID,
	"email":     validateEmail,
	"uri":       validateURI,
	"byte":      validateByte,
}

func validateDateTime(value string) error {
	if _, err := time.Parse(time.RFC3339, value); err != nil {
		return fmt.Errorf("not a valid RFC 3339 date-time: %w", err)
	}
	return nil
}

func validateDate(value string) error {
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return fmt.Errorf("not a valid full-date: %w", err)
	}
	return nil
}

func validateUUID(value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return fmt.Errorf("not a valid UUID: %w", err)
	}
	return nil
}

func validateEmail(value string) error {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return fmt.Errorf("not a valid email address: %w", err)
	}
	// Reject display-name forms like "Bob <bob@example.com>"; only the
	// bare address is an email-format string.
	if addr.Address != value {
		return fmt.Errorf("not a bare email address")
	}
	return nil
}

func validateURI(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("not a valid URI: %w", err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("URI missing scheme")
	}
	return nil
}

func validateByte(value string) error {
	if _, err := base64.StdEncoding.DecodeString(value); err != nil {
		return fmt.Errorf("not valid base64: %w", err)
	}
	return nil
}

// formatValidator returns the validator for a format name, preferring a
// custom registration over the built-in table. The second return is
// false when the format is unknown, which callers treat as pass.
func (v *Validator) formatValidator(name string) (FormatFunc, bool) {
	if fn, ok := v.cfg.formats[name]; ok {
		return fn, true
	}
	fn, ok := builtinFormats[name]
	return fn, ok
}
