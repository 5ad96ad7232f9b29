package schema

import (
	"fmt"

	"github.com/goliatone/go-feedbackform/pkg/model"
	"github.com/goliatone/go-feedbackform/pkg/validation"
)

// Decorator adjusts a Form after it has been converted from the document.
type Decorator interface {
	Decorate(*Form) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*Form) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(form *Form) error {
	return fn(form)
}

// WithLimits writes limits onto the name and message fields so the rendered
// page and the validation rules agree.
func WithLimits(limits validation.Limits) Decorator {
	return DecoratorFunc(func(form *Form) error {
		if limits.MessageMaxLength > 0 && limits.MessageMaxLength < limits.MessageMinLength {
			return fmt.Errorf("message max length %d below min length %d", limits.MessageMaxLength, limits.MessageMinLength)
		}
		for i := range form.Fields {
			field := &form.Fields[i]
			switch field.Name {
			case model.FieldName:
				if limits.NameMinLength > 0 {
					field.MinLength = limits.NameMinLength
				}
			case model.FieldMessage:
				if limits.MessageMinLength > 0 {
					field.MinLength = limits.MessageMinLength
				}
				if limits.MessageMaxLength > 0 {
					field.MaxLength = limits.MessageMaxLength
				}
			}
		}
		return nil
	})
}
