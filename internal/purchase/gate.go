package purchase

import (
	"time"

	"github.com/wolfman30/vitrine/internal/validate"
)

// Detail field names.
const (
	FieldCountryCode = "country_code"
	FieldPhoneNumber = "phone_number"
	FieldCardName    = "card_name"
	FieldCardNumber  = "card_number"
	FieldCardExpiry  = "card_expiry"
	FieldCardCVC     = "card_cvc"
)

// DetailFields lists every payment detail field in display order.
func DetailFields() []string {
	return []string{FieldCountryCode, FieldPhoneNumber, FieldCardName, FieldCardNumber, FieldCardExpiry, FieldCardCVC}
}

// Selection is the visitor's license and payment method choice.
type Selection struct {
	License License
	Method  Method
}

// Details holds the payment detail values.
type Details map[string]string

type check struct {
	field string
	valid func(value string) bool
}

// requiredChecks returns the validators for the method's detail fields.
func requiredChecks(m Method, now time.Time) []check {
	switch {
	case m.PhoneBased():
		return []check{{FieldPhoneNumber, validate.IsPlausiblePhone}}
	case m == MethodCard:
		return []check{
			{FieldCardName, func(v string) bool { return validate.IsNonEmptyName(v, validate.MinNameLength) }},
			{FieldCardNumber, validate.LuhnChecksum},
			{FieldCardExpiry, func(v string) bool { return validate.IsValidExpiry(v, now) }},
			{FieldCardCVC, validate.IsValidCVC},
		}
	default:
		return nil
	}
}

// DetailsValid reports whether every required field of the method validates.
func DetailsValid(m Method, d Details, now time.Time) bool {
	checks := requiredChecks(m, now)
	if len(checks) == 0 {
		return false
	}
	for _, c := range checks {
		if !c.valid(d[c.field]) {
			return false
		}
	}
	return true
}

// ConfirmGate is the enabling condition of the confirm action.
func ConfirmGate(sel Selection, d Details, now time.Time) bool {
	return sel.License != LicenseUnset && sel.Method != MethodNone && DetailsValid(sel.Method, d, now)
}
