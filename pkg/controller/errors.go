package controller

import (
	"errors"
	"strings"

	"github.com/goliatone/go-feedbackform/pkg/model"
)

var (
	// ErrElementNotFound is returned by Bind when a required element id is
	// missing from the document.
	ErrElementNotFound = errors.New("controller: element not found")
	// ErrSchedulerMissing is returned by Bind without WithScheduler or
	// WithLoop.
	ErrSchedulerMissing = errors.New("controller: scheduler is required")
	// ErrNotIdle is returned when submitting while a submission is pending or
	// its confirmation is still shown.
	ErrNotIdle = errors.New("controller: submission already in progress")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("controller: closed")
)

// ValidationError reports the failed fields of a submit attempt.
type ValidationError struct {
	Results []model.ValidationResult
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Results))
	for _, result := range e.Results {
		parts = append(parts, string(result.Field)+": "+result.Message)
	}
	return "controller: validation failed: " + strings.Join(parts, "; ")
}

// Fields lists the failed fields in check order.
func (e *ValidationError) Fields() []model.Field {
	out := make([]model.Field, 0, len(e.Results))
	for _, result := range e.Results {
		out = append(out, result.Field)
	}
	return out
}
