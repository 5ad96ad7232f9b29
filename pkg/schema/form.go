package schema

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/samber/lo"

	"github.com/goliatone/go-feedbackform/pkg/model"
	"github.com/goliatone/go-feedbackform/pkg/validation"
)

// DefaultOperationID is the operation describing the feedback payload.
const DefaultOperationID = "submitFeedback"

const (
	extensionOrder       = "x-formgen-order"
	extensionLabel       = "x-formgen-label"
	extensionPlaceholder = "x-formgen-placeholder"
	extensionWidget      = "x-formgen-widget"
	extensionOptions     = "x-formgen-options"
)

// Input kinds a field can render as.
const (
	InputText     = "text"
	InputEmail    = "email"
	InputTextArea = "textarea"
	InputSelect   = "select"
	InputRadio    = "radio"
)

//go:embed feedback.openapi.yaml
var defaultDocument []byte

// DefaultDocument returns the embedded OpenAPI description of the form.
func DefaultDocument() []byte {
	return append([]byte(nil), defaultDocument...)
}

// Option is one choice of a select or radio field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field describes one input of the feedback form.
type Field struct {
	Name        model.Field `json:"name"`
	Label       string      `json:"label"`
	Placeholder string      `json:"placeholder,omitempty"`
	Help        string      `json:"help,omitempty"`
	Input       string      `json:"input"`
	Required    bool        `json:"required"`
	MinLength   int         `json:"minLength,omitempty"`
	MaxLength   int         `json:"maxLength,omitempty"`
	Default     string      `json:"default,omitempty"`
	Options     []Option    `json:"options,omitempty"`
	Order       int         `json:"order"`
}

// Form is the ordered field list plus the copy shown above it.
type Form struct {
	OperationID string  `json:"operationId"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
}

// Field returns the field named name.
func (f Form) Field(name model.Field) (Field, bool) {
	return lo.Find(f.Fields, func(field Field) bool { return field.Name == name })
}

// Limits derives validation bounds from the length constraints of the name
// and message properties. Missing constraints keep the defaults.
func (f Form) Limits() validation.Limits {
	limits := validation.DefaultLimits()
	if name, ok := f.Field(model.FieldName); ok && name.MinLength > 0 {
		limits.NameMinLength = name.MinLength
	}
	if message, ok := f.Field(model.FieldMessage); ok {
		if message.MinLength > 0 {
			limits.MessageMinLength = message.MinLength
		}
		if message.MaxLength > 0 {
			limits.MessageMaxLength = message.MaxLength
		}
	}
	return limits
}

// Load parses the embedded document.
func Load(ctx context.Context, decorators ...Decorator) (Form, error) {
	return LoadSource(ctx, EmbeddedSource(), DefaultOperationID, decorators...)
}

// LoadFromData parses an OpenAPI document (JSON or YAML) and converts the
// request body of operationID into a Form.
func LoadFromData(ctx context.Context, raw []byte, operationID string) (Form, error) {
	if err := ctx.Err(); err != nil {
		return Form{}, err
	}
	if len(raw) == 0 {
		return Form{}, fmt.Errorf("schema: document payload is empty")
	}
	if operationID == "" {
		operationID = DefaultOperationID
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return Form{}, fmt.Errorf("schema: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return Form{}, fmt.Errorf("schema: validate: %w", err)
	}

	operation := findOperation(doc, operationID)
	if operation == nil {
		return Form{}, fmt.Errorf("%w: %s", ErrOperationNotFound, operationID)
	}

	body := requestSchema(operation)
	if body == nil {
		return Form{}, fmt.Errorf("%w: %s", ErrRequestBodyMissing, operationID)
	}

	fields, err := convertFields(body)
	if err != nil {
		return Form{}, err
	}

	return Form{
		OperationID: operationID,
		Title:       operation.Summary,
		Description: operation.Description,
		Fields:      fields,
	}, nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc.Paths == nil {
		return nil
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(op *openapi3.Operation) *openapi3.Schema {
	if op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil
	}
	mt := op.RequestBody.Value.Content.Get("application/json")
	if mt == nil || mt.Schema == nil {
		return nil
	}
	return mt.Schema.Value
}

func convertFields(body *openapi3.Schema) ([]Field, error) {
	required := lo.SliceToMap(body.Required, func(name string) (string, struct{}) {
		return name, struct{}{}
	})

	var unknown []string
	fields := lo.MapToSlice(body.Properties, func(name string, ref *openapi3.SchemaRef) Field {
		if !lo.Contains(model.AllFields, model.Field(name)) {
			unknown = append(unknown, name)
		}
		_, isRequired := required[name]
		return convertField(model.Field(name), ref, isRequired)
	})
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, strings.Join(unknown, ", "))
	}

	for _, name := range model.AllFields {
		if _, ok := body.Properties[string(name)]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrFieldMissing, name)
		}
	}

	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].Order != fields[j].Order {
			return fields[i].Order < fields[j].Order
		}
		return fields[i].Name < fields[j].Name
	})
	return fields, nil
}

func convertField(name model.Field, ref *openapi3.SchemaRef, required bool) Field {
	field := Field{Name: name, Required: required, Input: InputText}
	if ref == nil || ref.Value == nil {
		return field
	}
	src := ref.Value

	field.Label = stringExtension(src.Extensions, extensionLabel)
	if field.Label == "" {
		field.Label = defaultLabel(string(name))
	}
	field.Placeholder = stringExtension(src.Extensions, extensionPlaceholder)
	field.Help = strings.TrimSpace(src.Description)
	field.Order = intExtension(src.Extensions, extensionOrder)
	field.MinLength = int(src.MinLength)
	if src.MaxLength != nil {
		field.MaxLength = int(*src.MaxLength)
	}
	if def, ok := src.Default.(string); ok {
		field.Default = def
	}

	field.Options = optionsExtension(src.Extensions)
	if len(field.Options) == 0 && len(src.Enum) > 0 {
		field.Options = lo.Map(src.Enum, func(value any, _ int) Option {
			text := fmt.Sprint(value)
			return Option{Value: text, Label: text}
		})
	}

	widget := stringExtension(src.Extensions, extensionWidget)
	switch {
	case widget != "":
		field.Input = widget
	case src.Format == "email":
		field.Input = InputEmail
	case len(field.Options) > 0:
		field.Input = InputSelect
	}
	return field
}

func stringExtension(ext map[string]any, key string) string {
	if value, ok := ext[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func intExtension(ext map[string]any, key string) int {
	switch value := ext[key].(type) {
	case float64:
		return int(value)
	case int:
		return value
	case int64:
		return int(value)
	default:
		return 0
	}
}

func optionsExtension(ext map[string]any) []Option {
	raw, ok := ext[extensionOptions].([]any)
	if !ok {
		return nil
	}
	out := make([]Option, 0, len(raw))
	for _, entry := range raw {
		item, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		value := fmt.Sprint(lo.ValueOr(item, "value", ""))
		label := fmt.Sprint(lo.ValueOr(item, "label", any(value)))
		out = append(out, Option{Value: value, Label: label})
	}
	return out
}

func defaultLabel(name string) string {
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
