package schema

import "errors"

var (
	// ErrOperationNotFound is returned when the document lacks the form's
	// operation.
	ErrOperationNotFound = errors.New("schema: operation not found")
	// ErrRequestBodyMissing is returned when the operation has no JSON request
	// body schema.
	ErrRequestBodyMissing = errors.New("schema: request body schema missing")
	// ErrUnknownField is returned for properties the form cannot bind.
	ErrUnknownField = errors.New("schema: unknown field")
	// ErrFieldMissing is returned when a form field has no property.
	ErrFieldMissing = errors.New("schema: field missing")
	// ErrSourceMissing is returned by LoadSource without a source.
	ErrSourceMissing = errors.New("schema: source is required")
)
