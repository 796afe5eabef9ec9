// Package appointment implements the request-an-appointment modal: contact
// details, a requested date and time, live validation and a gated,
// simulated submission.
package appointment

import (
	"errors"
	"time"

	"github.com/wolfman30/vitrine/internal/validate"
)

var (
	ErrModalClosed    = errors.New("appointment: modal is closed")
	ErrBusy           = errors.New("appointment: request is being sent")
	ErrInvalidRequest = errors.New("appointment: request is invalid")
)

// Field names of the appointment form.
const (
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldPseudonym   = "pseudonym"
	FieldEmail       = "email"
	FieldCountryCode = "country_code"
	FieldPhone       = "phone"
	FieldMessage     = "message"
	FieldDate        = "date"
	FieldTime        = "time"
)

// Fields lists the form fields in display order. The country code is left
// out when the page's form has none.
func Fields(hasCountry bool) []string {
	names := []string{FieldFirstName, FieldLastName, FieldPseudonym, FieldEmail}
	if hasCountry {
		names = append(names, FieldCountryCode)
	}
	return append(names, FieldPhone, FieldMessage, FieldDate, FieldTime)
}

// Request is the content of the appointment form.
type Request struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Pseudonym   string `json:"pseudonym,omitempty"`
	Email       string `json:"email"`
	CountryCode string `json:"country_code,omitempty"`
	Phone       string `json:"phone"`
	Message     string `json:"message"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

// Validity is the per-field outcome of the send gate.
type Validity struct {
	FirstName   bool
	LastName    bool
	Email       bool
	CountryCode bool
	Phone       bool
	DateTime    bool
	Message     bool
}

// OK reports whether every gated field is valid.
func (v Validity) OK() bool {
	return v.FirstName && v.LastName && v.Email && v.CountryCode && v.Phone && v.DateTime && v.Message
}

// Evaluate validates every gated field. A missing country-code field counts
// as valid. The pseudonym is never gated.
func Evaluate(r Request, hasCountry bool, now time.Time, loc *time.Location) Validity {
	return Validity{
		FirstName:   validate.IsNonEmptyName(r.FirstName, validate.MinNameLength),
		LastName:    validate.IsNonEmptyName(r.LastName, validate.MinNameLength),
		Email:       validate.IsValidEmail(r.Email),
		CountryCode: !hasCountry || validate.IsValidCountryCode(r.CountryCode),
		Phone:       validate.IsPlausiblePhone(r.Phone),
		DateTime:    validate.IsFutureDateTime(r.Date, r.Time, now, loc),
		Message:     validate.IsLongEnoughMessage(r.Message, validate.MinMessageLength),
	}
}

// SendGate is the enabling condition of the send action.
func SendGate(r Request, hasCountry bool, now time.Time, loc *time.Location) bool {
	return Evaluate(r, hasCountry, now, loc).OK()
}
