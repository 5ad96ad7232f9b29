package tui

import (
	"io"
	"log/slog"

	"github.com/goliatone/go-feedbackform/pkg/controller"
)

// OutputFormat controls how completed submissions are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// Theme captures the message prefixes the session prints.
type Theme struct {
	InfoPrefix  string
	ErrorPrefix string
}

// DefaultTheme returns the stock prefixes.
func DefaultTheme() Theme {
	return Theme{InfoPrefix: "", ErrorPrefix: "! "}
}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithOutputFormat selects the serialization of completed submissions.
func WithOutputFormat(format OutputFormat) Option {
	return func(s *Session) {
		if format != "" {
			s.format = format
		}
	}
}

// WithOutput sets where serialized submissions are written.
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		if w != nil {
			s.out = w
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithLogger sets the logger shared with the event loop and controller.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithControllerOptions forwards options to the form controller.
func WithControllerOptions(options ...controller.Option) Option {
	return func(s *Session) {
		s.controllerOpts = append(s.controllerOpts, options...)
	}
}
