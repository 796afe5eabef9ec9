package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testNow = time.Date(2026, time.October, 17, 14, 30, 0, 0, time.UTC)

func validRequest() Request {
	return Request{
		FirstName:   "Awa",
		LastName:    "Ndiaye",
		Email:       "awa@example.sn",
		CountryCode: "+221",
		Phone:       "77 123 45 67",
		Message:     "Je voudrais un logo.",
		Date:        "2026-10-17",
		Time:        "14:30",
	}
}

func TestSendGate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(r *Request)
		hasCountry bool
		want       bool
	}{
		{"exactly now", func(r *Request) {}, true, true},
		{"five minutes ago is within grace", func(r *Request) { r.Time = "14:25" }, true, true},
		{"ten minutes ago", func(r *Request) { r.Time = "14:20" }, true, false},
		{"tomorrow", func(r *Request) { r.Date = "2026-10-18"; r.Time = "09:00" }, true, true},
		{"missing date", func(r *Request) { r.Date = "" }, true, false},
		{"missing time", func(r *Request) { r.Time = "" }, true, false},
		{"short first name", func(r *Request) { r.FirstName = " A " }, true, false},
		{"short last name", func(r *Request) { r.LastName = "N" }, true, false},
		{"bad email", func(r *Request) { r.Email = "awa@example" }, true, false},
		{"bad country code", func(r *Request) { r.CountryCode = "+22155" }, true, false},
		{"bad country code ignored when absent", func(r *Request) { r.CountryCode = "xx" }, false, true},
		{"short phone", func(r *Request) { r.Phone = "12345" }, true, false},
		{"short message", func(r *Request) { r.Message = " bonjour " }, true, false},
		{"pseudonym never gated", func(r *Request) { r.Pseudonym = "" }, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			assert.Equal(t, tt.want, SendGate(r, tt.hasCountry, testNow, time.UTC))
		})
	}
}

func TestEvaluateReportsEachField(t *testing.T) {
	r := validRequest()
	r.Email = "nope"
	r.Time = "14:00"
	v := Evaluate(r, true, testNow, time.UTC)
	assert.False(t, v.Email)
	assert.False(t, v.DateTime)
	assert.True(t, v.FirstName)
	assert.True(t, v.Phone)
	assert.False(t, v.OK())
}

func TestFields(t *testing.T) {
	assert.Len(t, Fields(true), 9)
	assert.NotContains(t, Fields(false), FieldCountryCode)
}
