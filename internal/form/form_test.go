package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormSetAndValue(t *testing.T) {
	f := New("card_name", "card_number")
	require.NoError(t, f.Set("card_name", "Awa Ndiaye"))
	assert.Equal(t, "Awa Ndiaye", f.Value("card_name"))
	assert.Equal(t, "", f.Value("missing"))

	err := f.Set("missing", "x")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.False(t, f.Has("missing"))
	assert.True(t, f.Has("card_number"))
}

func TestFormResetRestoresInitialValues(t *testing.T) {
	f := NewWithSpecs(Spec{Name: "country_code", Initial: "+221"}, Spec{Name: "phone_number"})
	require.NoError(t, f.Set("country_code", "+33"))
	require.NoError(t, f.Set("phone_number", "771234567"))
	p := DefaultPresenter()
	p.Check(f, "phone_number", func(string) bool { return false })

	f.Reset()

	assert.Equal(t, "+221", f.Value("country_code"))
	assert.Equal(t, "", f.Value("phone_number"))
	field, _ := f.Field("phone_number")
	assert.Equal(t, IndicatorUnset, field.Invalid)
	assert.Empty(t, field.Highlight)
}

func TestPresenterIsIdempotent(t *testing.T) {
	p := DefaultPresenter()
	field := &Field{Name: "card_cvc"}

	assert.False(t, p.Apply(field, false))
	first := *field
	p.Apply(field, false)
	assert.Equal(t, first, *field)
	assert.Equal(t, IndicatorInvalid, field.Invalid)
	assert.Equal(t, InvalidHighlight, field.Highlight)

	assert.True(t, p.Apply(field, true))
	assert.Equal(t, IndicatorValid, field.Invalid)
	assert.Empty(t, field.Highlight)
	p.Apply(field, true)
	assert.Equal(t, IndicatorValid, field.Invalid)
}

func TestPresenterNilField(t *testing.T) {
	assert.False(t, DefaultPresenter().Apply(nil, true))
	assert.False(t, DefaultPresenter().Check(New(), "absent", func(string) bool { return true }))
}

func TestViewsSubsetKeepsOrder(t *testing.T) {
	f := New("a", "b", "c")
	views := f.Views("c", "a", "zzz")
	require.Len(t, views, 2)
	assert.Equal(t, "c", views[0].Name)
	assert.Equal(t, "a", views[1].Name)
	assert.Len(t, f.Views(), 3)
}
