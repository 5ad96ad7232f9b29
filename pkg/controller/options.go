package controller

import (
	"context"
	"log/slog"
	"time"

	"github.com/goliatone/go-feedbackform/pkg/eventloop"
	"github.com/goliatone/go-feedbackform/pkg/model"
	"github.com/goliatone/go-feedbackform/pkg/theme"
	"github.com/goliatone/go-feedbackform/pkg/validation"
)

// DefaultSubmitDelay is the simulated request latency.
const DefaultSubmitDelay = 2 * time.Second

// Scheduler defers a callback onto the goroutine that owns the document.
// AfterFunc may be called from any goroutine. *eventloop.Loop satisfies it.
type Scheduler interface {
	AfterFunc(ctx context.Context, d time.Duration, fn func()) eventloop.Timer
}

// SubmitHook receives the payload once the simulated submission completes.
type SubmitHook func(model.Submission)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithScheduler sets the scheduler used for the simulated submission delay.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.scheduler = s
		}
	}
}

// WithLoop schedules on an event loop.
func WithLoop(loop *eventloop.Loop) Option {
	return func(c *Controller) {
		if loop != nil {
			c.scheduler = loop
		}
	}
}

// WithSubmitDelay overrides the simulated latency. Negative values are
// ignored.
func WithSubmitDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithPalette sets the counter colours.
func WithPalette(p theme.Palette) Option {
	return func(c *Controller) {
		c.palette = p
	}
}

// WithThresholds sets the counter tier boundaries.
func WithThresholds(t theme.Thresholds) Option {
	return func(c *Controller) {
		c.thresholds = t
	}
}

// WithRules replaces the validation rules.
func WithRules(rules *validation.Rules) Option {
	return func(c *Controller) {
		if rules != nil {
			c.rules = rules
		}
	}
}

// WithSubmitHook registers a hook called with every completed submission.
func WithSubmitHook(hook SubmitHook) Option {
	return func(c *Controller) {
		if hook != nil {
			c.hooks = append(c.hooks, hook)
		}
	}
}

// WithClock overrides the time source used to stamp submissions.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithIDGenerator overrides the submission id generator.
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		if fn != nil {
			c.newID = fn
		}
	}
}
