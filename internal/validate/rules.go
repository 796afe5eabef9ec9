package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Enum names a closed set of accepted string values under a struct tag.
type Enum struct {
	Tag    string
	Values []string
}

// NewRequestValidator builds the validator used for inbound request bodies.
// Each enum becomes a custom tag.
func NewRequestValidator(enums ...Enum) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)

	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("validate: register rule %q: %v", tag, err))
		}
	}

	for _, enum := range enums {
		mustRegister(enum.Tag, oneOf(enum.Values))
	}
	return v
}

func oneOf(values []string) validator.Func {
	allowed := make(map[string]struct{}, len(values))
	for _, value := range values {
		allowed[value] = struct{}{}
	}
	return func(fl validator.FieldLevel) bool {
		value := strings.ToLower(strings.TrimSpace(fl.Field().String()))
		if value == "" {
			return true // 'required' handles empties
		}
		_, ok := allowed[value]
		return ok
	}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return field.Name
	}
	return name
}

// Describe flattens validator errors into "field: rule" messages.
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
