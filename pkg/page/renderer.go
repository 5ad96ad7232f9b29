package page

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotheme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-feedbackform/pkg/dom"
	"github.com/goliatone/go-feedbackform/pkg/schema"
	"github.com/goliatone/go-feedbackform/pkg/theme"
)

// DefaultTemplate is the page template name inside the template FS.
const DefaultTemplate = "feedback.tpl"

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the built-in templates.
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// Copy holds the static strings of the page.
type Copy struct {
	SubmitLabel      string
	ThankYouTitle    string
	ThankYouMessage  string
	NewFeedbackLabel string
}

// DefaultCopy returns the stock page strings.
func DefaultCopy() Copy {
	return Copy{
		SubmitLabel:      "Submit Feedback",
		ThankYouTitle:    "Thank You!",
		ThankYouMessage:  "Your feedback has been received. We appreciate you taking the time to help us improve.",
		NewFeedbackLabel: "Submit New Feedback",
	}
}

// Option configures a Renderer.
type Option func(*config)

type config struct {
	templates fs.FS
	baseDir   string
	name      string
	copy      Copy
	policy    *bluemonday.Policy
}

// WithTemplatesFS loads templates from files instead of the embedded set.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = files
		}
	}
}

// WithBaseDir loads templates from a directory on disk.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithTemplateName selects the page template.
func WithTemplateName(name string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			cfg.name = trimmed
		}
	}
}

// WithCopy overrides the page strings. Empty entries keep the defaults.
func WithCopy(c Copy) Option {
	return func(cfg *config) {
		if c.SubmitLabel != "" {
			cfg.copy.SubmitLabel = c.SubmitLabel
		}
		if c.ThankYouTitle != "" {
			cfg.copy.ThankYouTitle = c.ThankYouTitle
		}
		if c.ThankYouMessage != "" {
			cfg.copy.ThankYouMessage = c.ThankYouMessage
		}
		if c.NewFeedbackLabel != "" {
			cfg.copy.NewFeedbackLabel = c.NewFeedbackLabel
		}
	}
}

// WithPolicy replaces the sanitiser applied to field help text.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.policy = policy
		}
	}
}

// Renderer produces the feedback page markup from a pongo2 template.
type Renderer struct {
	mu       sync.RWMutex
	set      *pongo2.TemplateSet
	template *pongo2.Template

	name   string
	copy   Copy
	policy *bluemonday.Policy
}

// New constructs a Renderer. The template is parsed once and reused.
func New(options ...Option) (*Renderer, error) {
	cfg := &config{
		templates: TemplatesFS(),
		name:      DefaultTemplate,
		copy:      DefaultCopy(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.policy == nil {
		cfg.policy = helpPolicy()
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("page: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	return &Renderer{
		set:    pongo2.NewSet("feedbackform", loaders...),
		name:   cfg.name,
		copy:   cfg.copy,
		policy: cfg.policy,
	}, nil
}

// Render executes the page template for form using the resolved theme. A nil
// theme renders with the default theme.
func (r *Renderer) Render(ctx context.Context, form schema.Form, cfg *gotheme.RendererConfig) ([]byte, error) {
	if r == nil || r.set == nil {
		return nil, errors.New("page: renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(form.Fields) == 0 {
		return nil, ErrNoFields
	}
	if cfg == nil {
		resolved, err := theme.Resolve(theme.DefaultManifest(), theme.DefaultVariant)
		if err != nil {
			return nil, fmt.Errorf("page: resolve default theme: %w", err)
		}
		cfg = resolved
	}

	tmpl, err := r.getTemplate()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(r.context(form, cfg), &buf); err != nil {
		return nil, fmt.Errorf("page: execute template %q: %w", r.name, err)
	}
	return buf.Bytes(), nil
}

// Load renders the page and parses it into a document ready for a form
// controller.
func (r *Renderer) Load(ctx context.Context, form schema.Form, cfg *gotheme.RendererConfig) (*dom.Document, error) {
	markup, err := r.Render(ctx, form, cfg)
	if err != nil {
		return nil, err
	}
	doc, err := dom.Parse(bytes.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("page: %w", err)
	}
	return doc, nil
}

func (r *Renderer) getTemplate() (*pongo2.Template, error) {
	r.mu.RLock()
	if r.template != nil {
		defer r.mu.RUnlock()
		return r.template, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.template != nil {
		return r.template, nil
	}
	tmpl, err := r.set.FromFile(r.name)
	if err != nil {
		return nil, fmt.Errorf("page: load template %q: %w", r.name, err)
	}
	r.template = tmpl
	return tmpl, nil
}

func (r *Renderer) context(form schema.Form, cfg *gotheme.RendererConfig) pongo2.Context {
	fields := make([]map[string]any, 0, len(form.Fields))
	for _, field := range form.Fields {
		options := make([]map[string]any, 0, len(field.Options))
		for _, opt := range field.Options {
			options = append(options, map[string]any{
				"value": opt.Value,
				"label": opt.Label,
			})
		}
		fields = append(fields, map[string]any{
			"name":        string(field.Name),
			"label":       field.Label,
			"placeholder": field.Placeholder,
			"help":        r.sanitize(field.Help),
			"input":       field.Input,
			"required":    field.Required,
			"max_length":  field.MaxLength,
			"default":     field.Default,
			"options":     options,
			"validated":   field.Name.Validated(),
		})
	}

	title := form.Title
	if title == "" {
		title = "Feedback"
	}

	return pongo2.Context{
		"title":              title,
		"description":        form.Description,
		"fields":             fields,
		"css_vars":           theme.CSSVarsStyle(cfg),
		"theme":              cfg.Theme,
		"variant":            cfg.Variant,
		"submit_label":       r.copy.SubmitLabel,
		"thank_you_title":    r.copy.ThankYouTitle,
		"thank_you_message":  r.copy.ThankYouMessage,
		"new_feedback_label": r.copy.NewFeedbackLabel,
	}
}

func (r *Renderer) sanitize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(r.policy.Sanitize(trimmed))
}

var (
	helpPolicyOnce sync.Once
	sharedPolicy   *bluemonday.Policy
)

// helpPolicy allows inline emphasis and links in help text and strips
// everything else.
func helpPolicy() *bluemonday.Policy {
	helpPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("em", "strong", "b", "i", "code", "br")
		policy.AllowAttrs("href").OnElements("a")
		policy.RequireNoFollowOnLinks(true)
		policy.AllowURLSchemes("http", "https", "mailto")
		sharedPolicy = policy
	})
	return sharedPolicy
}
