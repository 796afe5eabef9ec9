// Package purchase implements the purchase modal: product context capture,
// license and payment-method selection, live validation of payment details,
// and the gated, simulated confirmation.
package purchase

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrModalClosed     = errors.New("purchase: modal is closed")
	ErrBusy            = errors.New("purchase: payment is being processed")
	ErrNoLicense       = errors.New("purchase: no license type chosen")
	ErrNoPaymentMethod = errors.New("purchase: no payment method chosen")
	ErrInvalidDetails  = errors.New("purchase: payment details are invalid")
	ErrUnknownLicense  = errors.New("purchase: unknown license type")
	ErrUnknownMethod   = errors.New("purchase: unknown payment method")
)

// Alert returns the blocking message shown for selection errors that have
// no owning field, or "" for any other error.
func Alert(err error) string {
	switch {
	case errors.Is(err, ErrNoPaymentMethod):
		return "Veuillez choisir un moyen de paiement."
	case errors.Is(err, ErrNoLicense):
		return "Veuillez choisir un type de licence."
	default:
		return ""
	}
}

// License is the purchase tier.
type License string

const (
	LicenseUnset   License = ""
	LicenseCopy    License = "copy"
	LicenseProject License = "project"
)

// ParseLicense maps a request value to a License.
func ParseLicense(value string) (License, error) {
	switch License(strings.ToLower(strings.TrimSpace(value))) {
	case LicenseCopy:
		return LicenseCopy, nil
	case LicenseProject:
		return LicenseProject, nil
	default:
		return LicenseUnset, fmt.Errorf("%w: %q", ErrUnknownLicense, value)
	}
}

// Method is a payment method.
type Method string

const (
	MethodNone   Method = ""
	MethodOrange Method = "orange"
	MethodWave   Method = "wave"
	MethodCard   Method = "card"
)

// Methods lists the selectable payment methods in display order.
func Methods() []Method {
	return []Method{MethodOrange, MethodWave, MethodCard}
}

// ParseMethod maps a request value to a Method.
func ParseMethod(value string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range Methods() {
		if m == known {
			return m, nil
		}
	}
	return MethodNone, fmt.Errorf("%w: %q", ErrUnknownMethod, value)
}

// PhoneBased reports whether the method collects a phone number.
func (m Method) PhoneBased() bool {
	return m == MethodOrange || m == MethodWave
}

// Label is the button text for the method.
func (m Method) Label() string {
	switch m {
	case MethodOrange:
		return "Orange Money"
	case MethodWave:
		return "Wave"
	case MethodCard:
		return "Carte bancaire"
	default:
		return ""
	}
}

// ProjectMultiplier derives a project price from the unit price when a card
// does not carry one.
const ProjectMultiplier = 6

// ProductContext is captured from the product card when the modal opens.
type ProductContext struct {
	Title        string
	Category     string
	UnitPrice    float64
	ProjectPrice float64
}

// NewProductContext reads card attributes the way the page does: an
// unparsable price is 0 and a missing, unparsable or non-positive project
// price becomes UnitPrice × ProjectMultiplier.
func NewProductContext(title, category, price, projectPrice string) ProductContext {
	unit, ok := parseLeadingFloat(price)
	if !ok || unit < 0 {
		unit = 0
	}
	project, ok := parseLeadingFloat(projectPrice)
	if !ok || project <= 0 {
		project = unit * ProjectMultiplier
	}
	return ProductContext{
		Title:        strings.TrimSpace(title),
		Category:     strings.TrimSpace(category),
		UnitPrice:    unit,
		ProjectPrice: project,
	}
}

// Price returns the amount charged for the license.
func (p ProductContext) Price(l License) float64 {
	if l == LicenseProject {
		return p.ProjectPrice
	}
	return p.UnitPrice
}

var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

func parseLeadingFloat(value string) (float64, bool) {
	match := leadingFloat.FindString(strings.TrimSpace(value))
	if match == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatPrice renders an amount with two decimals and the currency suffix.
func FormatPrice(amount float64, suffix string) string {
	return strconv.FormatFloat(amount, 'f', 2, 64) + suffix
}
