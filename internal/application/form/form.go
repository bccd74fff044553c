// Package form binds a record to schema validation and tracks per-field interaction state
// so errors show only after the operator has left a field.
package form

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"penalty-console/internal/domain"
)

type FieldState string

const (
	Pristine FieldState = "pristine"
	Focused  FieldState = "focused"
	Blurred  FieldState = "blurred"
)

// ValidationError lists field messages keyed by the field's JSON name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	return fmt.Sprintf("invalid input: %s", strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error { return domain.ErrInvalidInput }

// NewValidator reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

type Snapshot[T any] struct {
	Values     T                     `json:"values"`
	Fields     map[string]FieldState `json:"fields"`
	Errors     map[string]string     `json:"errors"`
	Submitting bool                  `json:"submitting"`
}

type Form[T any] struct {
	mu         sync.Mutex
	validate   *validator.Validate
	values     T
	fields     map[string]FieldState
	errors     map[string]string
	submitting bool
}

func New[T any](v *validator.Validate) *Form[T] {
	if v == nil {
		v = NewValidator()
	}
	return &Form[T]{validate: v, fields: map[string]FieldState{}, errors: map[string]string{}}
}

// Reset binds the form to values with every field pristine.
func (f *Form[T]) Reset(values T) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = values
	f.fields = map[string]FieldState{}
	f.errors = map[string]string{}
}

func (f *Form[T]) Focus(field string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fields[field] != Blurred {
		f.fields[field] = Focused
	}
}

// Blur marks field touched and revalidates values. It returns the errors visible after
// the blur.
func (f *Form[T]) Blur(field string, values T) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = values
	f.fields[field] = Blurred
	f.errors = f.check(values)
	return f.visible()
}

func (f *Form[T]) Validate(values T) map[string]string {
	return f.check(values)
}

// Submit validates values and, when valid, runs handler. While handler runs the form
// reports Submitting and rejects further submits.
func (f *Form[T]) Submit(ctx context.Context, values T, handler func(context.Context, T) error) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return domain.ErrSubmitInFlight
	}
	f.values = values
	f.errors = f.check(values)
	if len(f.errors) > 0 {
		for name := range f.errors {
			f.fields[name] = Blurred
		}
		errs := copyMap(f.errors)
		f.mu.Unlock()
		return &ValidationError{Fields: errs}
	}
	f.submitting = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()
	return handler(ctx, values)
}

func (f *Form[T]) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

func (f *Form[T]) VisibleErrors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible()
}

func (f *Form[T]) Snapshot() Snapshot[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	fields := make(map[string]FieldState, len(f.fields))
	for k, v := range f.fields {
		fields[k] = v
	}
	return Snapshot[T]{Values: f.values, Fields: fields, Errors: f.visible(), Submitting: f.submitting}
}

func (f *Form[T]) visible() map[string]string {
	out := map[string]string{}
	for name, msg := range f.errors {
		if f.fields[name] == Blurred {
			out[name] = msg
		}
	}
	return out
}

func (f *Form[T]) check(values T) map[string]string {
	out := map[string]string{}
	err := f.validate.Struct(values)
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["_"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		if _, seen := out[fe.Field()]; !seen {
			out[fe.Field()] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "email":
		return "must be a valid email"
	case "numeric":
		return "must contain only digits"
	case "alphanum":
		return "must contain only letters and digits"
	case "oneof":
		return "must be one of " + fe.Param()
	case "gt", "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "datetime":
		return "must match " + fe.Param()
	case "hexcolor":
		return "must be a hex color"
	default:
		return "is invalid"
	}
}

func copyMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
