package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ValidationError reports a single rejected input field. The presentation
// layer re-prompts for the same field; validation never advances a
// conversation on failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Limits on user-entered values. The upper bounds are sanity caps, not
// business rules.
const (
	MaxMeetupTarget = 1000
	MaxSalesTarget  = 1_000_000
	MaxMeetupValue  = 100
	MaxSaleValue    = 100_000
	MaxPhotoLinkLen = 500

	MinYear = 2020
	MaxYear = 2030
)

var phonePattern = regexp.MustCompile(`^[0-9 +\-()]+$`)

// ValidateName checks a trimmed free-text identity field (name, nationality,
// upline) against a 2..max length window and returns the trimmed value.
func ValidateName(field, value string, max int) (string, error) {
	v := strings.TrimSpace(value)
	if len(v) < 2 {
		return "", &ValidationError{Field: field, Message: "must be at least 2 characters long"}
	}
	if len(v) > max {
		return "", &ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters long", max)}
	}
	return v, nil
}

// ValidatePhone accepts digits, spaces, +, -, ( and ), 7 to 20 characters,
// with at least one digit.
func ValidatePhone(phone string) error {
	p := strings.TrimSpace(phone)
	if len(p) < 7 {
		return &ValidationError{Field: "phone", Message: "must be at least 7 characters long"}
	}
	if len(p) > 20 {
		return &ValidationError{Field: "phone", Message: "must be at most 20 characters long"}
	}
	if !phonePattern.MatchString(p) {
		return &ValidationError{Field: "phone", Message: "contains invalid characters"}
	}
	if !strings.ContainsAny(p, "0123456789") {
		return &ValidationError{Field: "phone", Message: "must contain at least one digit"}
	}
	return nil
}

// ValidateMonthYear bounds the target period.
func ValidateMonthYear(month, year int) error {
	if month < 1 || month > 12 {
		return &ValidationError{Field: "month", Message: "must be between 1 and 12"}
	}
	if year < MinYear || year > MaxYear {
		return &ValidationError{Field: "year", Message: fmt.Sprintf("must be between %d and %d", MinYear, MaxYear)}
	}
	return nil
}

// ValidateMeetupTarget allows zero: a month with no meetup quota is legal.
func ValidateMeetupTarget(v int) error {
	if v < 0 {
		return &ValidationError{Field: "meetup_target", Message: "must be a non-negative integer"}
	}
	if v > MaxMeetupTarget {
		return &ValidationError{Field: "meetup_target", Message: fmt.Sprintf("must be at most %d", MaxMeetupTarget)}
	}
	return nil
}

func ValidateSalesTarget(v float64) error {
	if v < 0 {
		return &ValidationError{Field: "sales_target", Message: "must be a non-negative number"}
	}
	if v > MaxSalesTarget {
		return &ValidationError{Field: "sales_target", Message: "must be at most 1,000,000"}
	}
	return nil
}

// ValidateMeetupValue rejects zero: a meetup with no clients is not recorded.
func ValidateMeetupValue(v int) error {
	if v < 1 {
		return &ValidationError{Field: "value", Message: "client count must be a positive integer"}
	}
	if v > MaxMeetupValue {
		return &ValidationError{Field: "value", Message: fmt.Sprintf("client count must be at most %d", MaxMeetupValue)}
	}
	return nil
}

func ValidateSaleValue(v float64) error {
	if v <= 0 {
		return &ValidationError{Field: "value", Message: "sales amount must be a positive number"}
	}
	if v > MaxSaleValue {
		return &ValidationError{Field: "value", Message: "sales amount must be at most 100,000"}
	}
	return nil
}

// ValidatePhotoLink requires a well-formed http(s) URL so every record's
// provenance stays visually verifiable.
func ValidatePhotoLink(link string) error {
	l := strings.TrimSpace(link)
	if l == "" {
		return &ValidationError{Field: "photo_link", Message: "must not be empty"}
	}
	if !strings.HasPrefix(l, "http://") && !strings.HasPrefix(l, "https://") {
		return &ValidationError{Field: "photo_link", Message: "must start with http:// or https://"}
	}
	if len(l) > MaxPhotoLinkLen {
		return &ValidationError{Field: "photo_link", Message: fmt.Sprintf("must be at most %d characters long", MaxPhotoLinkLen)}
	}
	return nil
}

// ValidateNotFuture rejects timestamps past evaluation time. Backdating is
// fine; future-dating is not.
func ValidateNotFuture(field string, t time.Time) error {
	if t.IsZero() {
		return &ValidationError{Field: field, Message: "must be set"}
	}
	if t.After(time.Now()) {
		return &ValidationError{Field: field, Message: "cannot be in the future"}
	}
	return nil
}
