// Package validate holds the structural plausibility checks applied to
// storefront form fields. None of them consult an external authority.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinNameLength    = 2
	MinMessageLength = 8

	minPhoneDigits = 6
	maxPhoneDigits = 15
	minCardDigits  = 12

	// DateTimeGrace keeps "now" bookable for a few minutes.
	DateTimeGrace = 5 * time.Minute
)

var (
	expiryPattern      = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	cvcPattern         = regexp.MustCompile(`^\d{3,4}$`)
	emailPattern       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	countryCodePattern = regexp.MustCompile(`^\+?\d{1,4}$`)
)

// Digits strips every non-digit character.
func Digits(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsPlausiblePhone reports whether value carries 6 to 15 digits.
func IsPlausiblePhone(value string) bool {
	n := len(Digits(value))
	return n >= minPhoneDigits && n <= maxPhoneDigits
}

// LuhnChecksum runs the Luhn mod-10 check over the digits of value and
// requires at least 12 of them.
func LuhnChecksum(value string) bool {
	digits := Digits(value)
	if len(digits) < minCardDigits {
		return false
	}
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// IsValidExpiry accepts MM/YY expiries in the current month or later.
func IsValidExpiry(value string, now time.Time) bool {
	m := expiryPattern.FindStringSubmatch(value)
	if m == nil {
		return false
	}
	month, _ := strconv.Atoi(m[1])
	yy, _ := strconv.Atoi(m[2])
	year := 2000 + yy
	if year != now.Year() {
		return year > now.Year()
	}
	return month >= int(now.Month())
}

// IsValidCVC accepts 3 or 4 digits.
func IsValidCVC(value string) bool {
	return cvcPattern.MatchString(strings.TrimSpace(value))
}

// IsNonEmptyName reports whether the trimmed value has at least minLen characters.
func IsNonEmptyName(value string, minLen int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(value)) >= minLen
}

// IsValidEmail matches a local@domain.tld shape without whitespace.
func IsValidEmail(value string) bool {
	return emailPattern.MatchString(strings.TrimSpace(value))
}

// IsValidCountryCode accepts an optional "+" followed by 1 to 4 digits.
func IsValidCountryCode(value string) bool {
	return countryCodePattern.MatchString(strings.TrimSpace(value))
}

// IsLongEnoughMessage reports whether the trimmed message has at least minLen characters.
func IsLongEnoughMessage(value string, minLen int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(value)) >= minLen
}

// ParseDateTime combines an HTML date (YYYY-MM-DD) and time (HH:MM or
// HH:MM:SS) into one instant in loc.
func ParseDateTime(date, clock string, loc *time.Location) (time.Time, bool) {
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, date+"T"+clock, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsFutureDateTime reports whether date+time is no earlier than now minus
// DateTimeGrace.
func IsFutureDateTime(date, clock string, now time.Time, loc *time.Location) bool {
	at, ok := ParseDateTime(date, clock, loc)
	if !ok {
		return false
	}
	return !at.Before(now.Add(-DateTimeGrace))
}
