package validator

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
)

const (
	// MaxSafeID is the largest id a JSON number can carry without precision loss.
	MaxSafeID int64 = 1<<53 - 1

	MaxNameLength    = 100
	MaxTagLength     = 10
	MaxCommentLength = 1000

	// MinSearchLength is the shortest sanitized search string that filters a listing.
	MinSearchLength = 2
)

// MaxAmount is the largest transaction amount accepted.
var MaxAmount = decimal.RequireFromString("9999999999.99")

var unsafeChars = strings.NewReplacer("<", "", ">", "", "'", "", `"`, "", "&", "")

// SanitizeText strips markup-significant characters, collapses runs of
// whitespace, trims and caps the result at max runes.
func SanitizeText(s string, max int) string {
	s = unsafeChars.Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	if max > 0 && utf8.RuneCountInString(s) > max {
		s = strings.TrimSpace(string([]rune(s)[:max]))
	}
	return s
}

// SanitizeOptional sanitizes an optional text field. An empty result becomes nil.
func SanitizeOptional(s *string, max int) *string {
	if s == nil {
		return nil
	}
	clean := SanitizeText(*s, max)
	if clean == "" {
		return nil
	}
	return &clean
}

// ValidateName trims a required name and checks its length.
func ValidateName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.WithMessagef(apperrors.ErrInvalidInput, "%s is required", field)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", apperrors.WithMessagef(apperrors.ErrInvalidInput, "%s must be at most %d characters", field, MaxNameLength)
	}
	return name, nil
}

// ValidateTag trims an optional tag and checks its length. A blank tag becomes nil.
func ValidateTag(tag *string) (*string, error) {
	if tag == nil {
		return nil, nil
	}
	t := strings.TrimSpace(*tag)
	if t == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(t) > MaxTagLength {
		return nil, apperrors.WithMessagef(apperrors.ErrInvalidInput, "tag must be at most %d characters", MaxTagLength)
	}
	return &t, nil
}

// ValidateID checks that id is positive and within the safe integer range.
func ValidateID(field string, id int64) error {
	if id <= 0 || id > MaxSafeID {
		return apperrors.WithMessagef(apperrors.ErrInvalidInput, "%s must be a positive integer", field)
	}
	return nil
}

// ValidateAmount checks that amount is positive, at most MaxAmount and has no
// more than two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if amount.GreaterThan(MaxAmount) {
		return apperrors.WithMessagef(apperrors.ErrInvalidInput, "amount must not exceed %s", MaxAmount.StringFixed(2))
	}
	if !amount.Equal(amount.Round(2)) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must have at most two decimal places")
	}
	return nil
}

// ToCents converts a validated amount to minor units.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).IntPart()
}

// FromCents converts minor units back to a two-decimal amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ParseTransactionDate parses a YYYY-MM-DD or RFC3339 date and checks that it
// lies within one year of now in either direction.
func ParseTransactionDate(raw string, now time.Time) (time.Time, error) {
	t, err := parseFlexibleTime(raw)
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction_date must be YYYY-MM-DD or RFC3339")
	}
	if t.Before(now.AddDate(-1, 0, 0)) || t.After(now.AddDate(1, 0, 0)) {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction_date must be within one year of today")
	}
	return t, nil
}

// ParseDateBoundary parses a listing filter date. The lower boundary starts at
// 00:00:00.000 UTC; the upper boundary ends at 23:59:59.999 UTC of the same day.
func ParseDateBoundary(field, raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := parseFlexibleTime(raw)
	if err != nil {
		return nil, apperrors.WithMessagef(apperrors.ErrInvalidInput, "%s must be YYYY-MM-DD or RFC3339", field)
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if endOfDay {
		day = day.Add(24*time.Hour - time.Millisecond)
	}
	return &day, nil
}

func parseFlexibleTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
