// Package validate runs struct-tag validation and shapes the failures into
// the human readable list carried by a failure envelope.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}

		return name
	})

	return val
}

// Messages maps "<json field>.<tag>" to the message reported when that rule
// fails, e.g. "email.required".
type Messages map[string]string

// Struct validates s and returns one message per failing field, in field
// order. A field stops at its first failing rule; other fields are still
// checked. It returns nil when s is valid.
func Struct(s interface{}, msgs Messages) []string {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if m, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
			out = append(out, m)

			continue
		}
		out = append(out, fmt.Sprintf("%s is invalid", fe.Field()))
	}

	return out
}

// Var reports whether value passes the validator tag, e.g. "email".
func Var(value, tag string) bool {
	return v.Var(value, tag) == nil
}

// TrimAll trims surrounding whitespace of every string pointer in place.
func TrimAll(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

// Optional trims an optional field and drops it when nothing is left.
func Optional(s *string) *string {
	if s == nil {
		return nil
	}

	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}

	return &t
}

// Strings trims every element and drops the empty ones.
func Strings(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}

	return out
}
