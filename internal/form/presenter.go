package form

// InvalidHighlight is the border color applied to invalid fields.
const InvalidHighlight = "#ff4d6d"

// Presenter applies validator results to field indicators.
type Presenter struct {
	Highlight string
}

// DefaultPresenter marks invalid fields with InvalidHighlight.
func DefaultPresenter() Presenter {
	return Presenter{Highlight: InvalidHighlight}
}

// Apply sets the invalid indicator and highlight from valid and returns valid.
// A nil field is treated as invalid and left untouched.
func (p Presenter) Apply(field *Field, valid bool) bool {
	if field == nil {
		return false
	}
	if valid {
		field.Invalid = IndicatorValid
		field.Highlight = ""
		return true
	}
	field.Invalid = IndicatorInvalid
	field.Highlight = p.Highlight
	return false
}

// Check runs check over the named field's value and presents the result.
func (p Presenter) Check(f *Form, name string, check func(string) bool) bool {
	field, ok := f.Field(name)
	if !ok {
		return false
	}
	return p.Apply(field, check(field.Value))
}

// Button is a modal's primary action or a payment-method button.
type Button struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}
