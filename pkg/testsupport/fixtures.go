// Package testsupport holds fixtures shared by package tests.
package testsupport

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/goliatone/go-feedbackform/pkg/dom"
	"github.com/goliatone/go-feedbackform/pkg/page"
	"github.com/goliatone/go-feedbackform/pkg/schema"
)

// LoadForm returns the embedded feedback form. Testing helpers fail the test
// on error to keep callers concise.
func LoadForm(t testing.TB, decorators ...schema.Decorator) schema.Form {
	t.Helper()

	form, err := schema.Load(context.Background(), decorators...)
	if err != nil {
		t.Fatalf("load form: %v", err)
	}
	return form
}

// LoadPage renders the stock page for form with the default theme and parses
// it into a fresh document.
func LoadPage(t testing.TB, form schema.Form, options ...page.Option) *dom.Document {
	t.Helper()

	renderer, err := page.New(options...)
	if err != nil {
		t.Fatalf("new page renderer: %v", err)
	}
	doc, err := renderer.Load(context.Background(), form, nil)
	if err != nil {
		t.Fatalf("load page: %v", err)
	}
	return doc
}

// Logger returns a logger that drops everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
