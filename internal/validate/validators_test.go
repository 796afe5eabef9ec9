package validate

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDigits(t *testing.T) {
	assert.Equal(t, "221771234567", Digits("+221 77-123 45 67"))
	assert.Equal(t, "", Digits("abc"))
}

func TestIsPlausiblePhone(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"123", false},
		{"+221 77 123 45 67", true},
		{"12345", false},
		{"123456", true},
		{"123456789012345", true},
		{"1234567890123456", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPlausiblePhone(tt.value))
		})
	}
}

func TestLuhnChecksumExamples(t *testing.T) {
	assert.True(t, LuhnChecksum("4539 1488 0343 6467"))
	assert.False(t, LuhnChecksum("4539 1488 0343 6468"))
	assert.True(t, LuhnChecksum("4111-1111-1111-1111"))
	// valid checksum but too short
	assert.False(t, LuhnChecksum("18"))
	assert.False(t, LuhnChecksum("00000000000"))
	assert.True(t, LuhnChecksum("000000000000"))
	assert.False(t, LuhnChecksum(""))
}

// luhnCheckDigit computes the digit that completes payload into a valid number.
func luhnCheckDigit(payload string) int {
	sum := 0
	double := true
	for i := len(payload) - 1; i >= 0; i-- {
		d := int(payload[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return (10 - sum%10) % 10
}

func TestLuhnChecksumProperty(t *testing.T) {
	seed := uint64(7)
	next := func() int {
		seed = seed*6364136223846793005 + 1442695040888963407
		return int((seed >> 33) % 10)
	}
	for length := 12; length <= 19; length++ {
		for round := 0; round < 50; round++ {
			payload := make([]byte, length-1)
			for i := range payload {
				payload[i] = byte('0' + next())
			}
			check := luhnCheckDigit(string(payload))
			valid := string(payload) + strconv.Itoa(check)
			assert.True(t, LuhnChecksum(valid), "expected %s valid", valid)

			wrong := string(payload) + strconv.Itoa((check+1+next()%9)%10)
			assert.False(t, LuhnChecksum(wrong), "expected %s invalid", wrong)
		}
	}
	for length := 1; length < 12; length++ {
		payload := make([]byte, length-1)
		for i := range payload {
			payload[i] = '4'
		}
		short := string(payload) + strconv.Itoa(luhnCheckDigit(string(payload)))
		assert.False(t, LuhnChecksum(short), "expected %s rejected as too short", short)
	}
}

func TestIsValidExpiry(t *testing.T) {
	now := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		value string
		want  bool
	}{
		{"01/20", false},
		{"13/30", false},
		{"00/30", false},
		{"10/26", true},
		{"09/26", false},
		{"01/27", true},
		{"1/27", false},
		{"01/2027", false},
		{" 10/26", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidExpiry(tt.value, now))
		})
	}
}

func TestIsValidCVC(t *testing.T) {
	assert.True(t, IsValidCVC("123"))
	assert.True(t, IsValidCVC(" 1234 "))
	assert.False(t, IsValidCVC("12"))
	assert.False(t, IsValidCVC("12345"))
	assert.False(t, IsValidCVC("12a"))
}

func TestIsNonEmptyName(t *testing.T) {
	assert.False(t, IsNonEmptyName(" A ", MinNameLength))
	assert.True(t, IsNonEmptyName("Al", MinNameLength))
	assert.True(t, IsNonEmptyName("Éa", MinNameLength))
	assert.False(t, IsNonEmptyName("   ", MinNameLength))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("awa@example.sn"))
	assert.True(t, IsValidEmail("  awa@example.sn "))
	assert.False(t, IsValidEmail("awa@example"))
	assert.False(t, IsValidEmail("awa example@x.sn"))
	assert.False(t, IsValidEmail("@example.sn"))
	assert.False(t, IsValidEmail("awa.example.sn"))
}

func TestIsValidCountryCode(t *testing.T) {
	assert.True(t, IsValidCountryCode("+221"))
	assert.True(t, IsValidCountryCode("33"))
	assert.False(t, IsValidCountryCode("+12345"))
	assert.False(t, IsValidCountryCode("+"))
	assert.False(t, IsValidCountryCode("++1"))
}

func TestIsLongEnoughMessage(t *testing.T) {
	assert.False(t, IsLongEnoughMessage("  short  ", MinMessageLength))
	assert.True(t, IsLongEnoughMessage("Bonjour !", MinMessageLength))
}

func TestIsFutureDateTime(t *testing.T) {
	now := time.Date(2026, time.October, 17, 14, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		date string
		time string
		want bool
	}{
		{"exactly now", "2026-10-17", "14:30", true},
		{"within grace", "2026-10-17", "14:26", true},
		{"grace boundary", "2026-10-17", "14:25", true},
		{"ten minutes ago", "2026-10-17", "14:20", false},
		{"tomorrow", "2026-10-18", "09:00", true},
		{"with seconds", "2026-10-17", "14:30:00", true},
		{"missing time", "2026-10-17", "", false},
		{"missing date", "", "14:30", false},
		{"garbage", "17/10/2026", "14:30", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFutureDateTime(tt.date, tt.time, now, time.UTC))
		})
	}
}

func TestIsFutureDateTimeUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC) // 14:00 at UTC+2
	assert.True(t, IsFutureDateTime("2026-10-17", "14:00", now, loc))
	assert.False(t, IsFutureDateTime("2026-10-17", "13:00", now, loc))
}
