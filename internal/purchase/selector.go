package purchase

import "github.com/wolfman30/vitrine/internal/form"

// FeedbackLabel replaces a payment button's text while it gives feedback.
const FeedbackLabel = "Chargement..."

// Selector tracks the single active payment method and its buttons.
type Selector struct {
	active  Method
	buttons map[Method]*form.Button
}

// NewSelector returns a selector with nothing chosen.
func NewSelector() *Selector {
	s := &Selector{buttons: make(map[Method]*form.Button, len(Methods()))}
	for _, m := range Methods() {
		s.buttons[m] = &form.Button{Label: m.Label()}
	}
	return s
}

// Active returns the chosen method.
func (s *Selector) Active() Method {
	return s.active
}

// Select makes m the only active method.
func (s *Selector) Select(m Method) {
	s.active = m
}

// Clear deselects and restores every button.
func (s *Selector) Clear() {
	s.active = MethodNone
	for m, b := range s.buttons {
		b.Label = m.Label()
		b.Disabled = false
	}
}

// PhonePanelVisible reports whether the phone sub-form is shown.
func (s *Selector) PhonePanelVisible() bool {
	return s.active.PhoneBased()
}

// CardPanelVisible reports whether the card sub-form is shown.
func (s *Selector) CardPanelVisible() bool {
	return s.active == MethodCard
}

// BeginFeedback disables the clicked button and swaps its label. It returns
// false when the button is already giving feedback.
func (s *Selector) BeginFeedback(m Method) bool {
	b, ok := s.buttons[m]
	if !ok || b.Disabled {
		return false
	}
	b.Disabled = true
	b.Label = FeedbackLabel
	return true
}

// EndFeedback restores the button.
func (s *Selector) EndFeedback(m Method) {
	if b, ok := s.buttons[m]; ok {
		b.Disabled = false
		b.Label = m.Label()
	}
}

// MethodButton is the rendered state of a payment button.
type MethodButton struct {
	Method   Method `json:"method"`
	Label    string `json:"label"`
	Active   bool   `json:"active"`
	Disabled bool   `json:"disabled"`
}

// Buttons renders the payment buttons in display order.
func (s *Selector) Buttons() []MethodButton {
	out := make([]MethodButton, 0, len(s.buttons))
	for _, m := range Methods() {
		b := s.buttons[m]
		out = append(out, MethodButton{Method: m, Label: b.Label, Active: m == s.active, Disabled: b.Disabled})
	}
	return out
}
