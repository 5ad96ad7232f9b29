package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-feedbackform/pkg/model"
)

const (
	DefaultNameMinLength    = 2
	DefaultMessageMinLength = 10
	DefaultMessageMaxLength = 500
)

// emailPattern requires one "@" with non-whitespace on both sides and a "."
// in the domain part. Whitespace covers Unicode separators and the BOM, not
// only ASCII.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// Limits holds the length bounds applied by the rules. Lengths are counted in
// characters after trimming surrounding whitespace.
type Limits struct {
	NameMinLength    int `yaml:"name_min_length" validate:"gte=1"`
	MessageMinLength int `yaml:"message_min_length" validate:"gte=1"`
	MessageMaxLength int `yaml:"message_max_length" validate:"gtefield=MessageMinLength"`
}

// DefaultLimits returns the stock feedback form bounds.
func DefaultLimits() Limits {
	return Limits{
		NameMinLength:    DefaultNameMinLength,
		MessageMinLength: DefaultMessageMinLength,
		MessageMaxLength: DefaultMessageMaxLength,
	}
}

// Rule is a pure function from a field's current value to pass/fail plus a
// message.
type Rule func(value string) model.ValidationResult

// Rules maps each validated field to its rule.
type Rules struct {
	limits Limits
	rules  map[model.Field]Rule
}

// New builds the rule set for limits. Zero limits fall back to the defaults.
func New(limits Limits) *Rules {
	defaults := DefaultLimits()
	if limits.NameMinLength <= 0 {
		limits.NameMinLength = defaults.NameMinLength
	}
	if limits.MessageMinLength <= 0 {
		limits.MessageMinLength = defaults.MessageMinLength
	}
	if limits.MessageMaxLength <= 0 {
		limits.MessageMaxLength = defaults.MessageMaxLength
	}

	r := &Rules{limits: limits}
	r.rules = map[model.Field]Rule{
		model.FieldName:    r.name,
		model.FieldEmail:   r.email,
		model.FieldMessage: r.message,
	}
	return r
}

// Limits reports the bounds in effect.
func (r *Rules) Limits() Limits {
	return r.limits
}

// For returns the rule attached to field.
func (r *Rules) For(field model.Field) (Rule, bool) {
	rule, ok := r.rules[field]
	return rule, ok
}

// Validate runs the rule for field against value. Fields without a rule
// always pass.
func (r *Rules) Validate(field model.Field, value string) model.ValidationResult {
	rule, ok := r.For(field)
	if !ok {
		return model.Pass(field)
	}
	return rule(value)
}

func (r *Rules) name(value string) model.ValidationResult {
	name := strings.TrimSpace(value)
	if name == "" {
		return model.Fail(model.FieldName, "Please enter your name")
	}
	if utf8.RuneCountInString(name) < r.limits.NameMinLength {
		return model.Fail(model.FieldName, fmt.Sprintf("Name must be at least %d characters long", r.limits.NameMinLength))
	}
	return model.Pass(model.FieldName)
}

func (r *Rules) email(value string) model.ValidationResult {
	email := strings.TrimSpace(value)
	if email == "" {
		return model.Fail(model.FieldEmail, "Please enter your email address")
	}
	if !emailPattern.MatchString(email) {
		return model.Fail(model.FieldEmail, "Please enter a valid email address")
	}
	return model.Pass(model.FieldEmail)
}

func (r *Rules) message(value string) model.ValidationResult {
	message := strings.TrimSpace(value)
	if message == "" {
		return model.Fail(model.FieldMessage, "Please enter your feedback message")
	}
	length := utf8.RuneCountInString(message)
	if length < r.limits.MessageMinLength {
		return model.Fail(model.FieldMessage, fmt.Sprintf("Message must be at least %d characters long", r.limits.MessageMinLength))
	}
	if length > r.limits.MessageMaxLength {
		return model.Fail(model.FieldMessage, fmt.Sprintf("Message must be less than %d characters", r.limits.MessageMaxLength))
	}
	return model.Pass(model.FieldMessage)
}

var defaultRules = New(DefaultLimits())

// Validate runs the default rule for field.
func Validate(field model.Field, value string) model.ValidationResult {
	return defaultRules.Validate(field, value)
}
