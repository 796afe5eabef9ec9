// Package form models modal form fields, their validity indicators and the
// primary action buttons gated by them.
package form

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when an event targets a field the form lacks.
var ErrUnknownField = errors.New("form: unknown field")

// Indicator is the aria-invalid state of a field. The zero value means the
// attribute is absent.
type Indicator string

const (
	IndicatorUnset   Indicator = ""
	IndicatorInvalid Indicator = "true"
	IndicatorValid   Indicator = "false"
)

// Field is one input inside a modal.
type Field struct {
	Name      string
	Value     string
	Invalid   Indicator
	Highlight string

	// initial is restored on Reset (first option of a select, empty for inputs).
	initial string
}

// Form is an ordered set of fields.
type Form struct {
	fields []*Field
	index  map[string]*Field
}

// Spec declares a field and its reset value.
type Spec struct {
	Name    string
	Initial string
}

// New builds a form from field names, all resetting to empty.
func New(names ...string) *Form {
	specs := make([]Spec, 0, len(names))
	for _, name := range names {
		specs = append(specs, Spec{Name: name})
	}
	return NewWithSpecs(specs...)
}

// NewWithSpecs builds a form whose fields may reset to a non-empty value.
func NewWithSpecs(specs ...Spec) *Form {
	f := &Form{index: make(map[string]*Field, len(specs))}
	for _, s := range specs {
		field := &Field{Name: s.Name, Value: s.Initial, initial: s.Initial}
		f.fields = append(f.fields, field)
		f.index[s.Name] = field
	}
	return f
}

// Has reports whether the form carries the named field.
func (f *Form) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

// Field returns the named field.
func (f *Form) Field(name string) (*Field, bool) {
	field, ok := f.index[name]
	return field, ok
}

// Value returns the named field's value, or "" when absent.
func (f *Form) Value(name string) string {
	if field, ok := f.index[name]; ok {
		return field.Value
	}
	return ""
}

// Set stores a new value without touching indicators.
func (f *Form) Set(name, value string) error {
	field, ok := f.index[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	field.Value = value
	return nil
}

// Reset restores every field to its initial value and clears indicators.
func (f *Form) Reset() {
	for _, field := range f.fields {
		field.Value = field.initial
		field.Invalid = IndicatorUnset
		field.Highlight = ""
	}
}

// FieldView is the rendered state of one field.
type FieldView struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Invalid   string `json:"aria_invalid,omitempty"`
	Highlight string `json:"border_color,omitempty"`
}

// Views renders fields in declaration order. With names, only those fields
// are rendered.
func (f *Form) Views(names ...string) []FieldView {
	fields := f.fields
	if len(names) > 0 {
		fields = make([]*Field, 0, len(names))
		for _, name := range names {
			if field, ok := f.index[name]; ok {
				fields = append(fields, field)
			}
		}
	}
	out := make([]FieldView, 0, len(fields))
	for _, field := range fields {
		out = append(out, FieldView{
			Name:      field.Name,
			Value:     field.Value,
			Invalid:   string(field.Invalid),
			Highlight: field.Highlight,
		})
	}
	return out
}
