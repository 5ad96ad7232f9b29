package tui

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"

	"github.com/goliatone/go-feedbackform/pkg/controller"
	"github.com/goliatone/go-feedbackform/pkg/dom"
	"github.com/goliatone/go-feedbackform/pkg/eventloop"
	"github.com/goliatone/go-feedbackform/pkg/model"
	"github.com/goliatone/go-feedbackform/pkg/schema"
	"github.com/goliatone/go-feedbackform/pkg/theme"
)

const skipLabel = "Skip"

// Session fills the feedback page from a terminal. Every answer is replayed
// into the document as the matching browser events, so the form controller
// decides validity, counter state and submission exactly as it would in a
// browser.
type Session struct {
	form           schema.Form
	doc            *dom.Document
	driver         PromptDriver
	format         OutputFormat
	out            io.Writer
	theme          Theme
	log            *slog.Logger
	controllerOpts []controller.Option
	plain          *bluemonday.Policy

	loop      *eventloop.Loop
	ctrl      *controller.Controller
	completed chan model.Submission
}

// NewSession prepares a session for doc, which must contain the page rendered
// for form.
func NewSession(form schema.Form, doc *dom.Document, options ...Option) (*Session, error) {
	if doc == nil {
		return nil, errors.New("tui: document is nil")
	}
	if len(form.Fields) == 0 {
		return nil, errors.New("tui: form has no fields")
	}

	s := &Session{
		form:   form,
		doc:    doc,
		format: OutputFormatJSON,
		out:    os.Stdout,
		theme:  DefaultTheme(),
		log:    slog.Default(),
		plain:  bluemonday.StrictPolicy(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if s.driver == nil {
		s.driver = NewSurveyDriver(os.Stderr)
	}
	switch s.format {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", s.format)
	}
	return s, nil
}

// ContentType reports the media type of the serialized submissions.
func (s *Session) ContentType() string {
	switch s.format {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Run prompts for the form until the user stops sending feedback. Each
// completed submission is written to the output as it completes and returned
// in order. Aborting cancels a pending submission.
func (s *Session) Run(ctx context.Context) ([]model.Submission, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	loopCtx, stop := context.WithCancel(ctx)
	defer stop()

	s.loop = eventloop.New(eventloop.WithLogger(s.log))
	go func() { _ = s.loop.Run(loopCtx) }()
	defer s.loop.Close()

	if err := s.bind(ctx); err != nil {
		return nil, err
	}

	var submissions []model.Submission
	for {
		sub, err := s.round(ctx)
		if err != nil {
			s.abort()
			return submissions, err
		}
		submissions = append(submissions, sub)
		if err := s.write(sub); err != nil {
			return submissions, err
		}

		again, err := s.driver.Confirm(ctx, ConfirmConfig{Message: s.newFeedbackPrompt()})
		if err != nil {
			return submissions, err
		}
		if again {
			if err := s.do(ctx, func() { dom.Click(s.doc.GetElementByID(controller.IDNewFeedbackBtn)) }); err != nil {
				return submissions, err
			}
			continue
		}
		if err := s.do(ctx, func() { dom.PressKey(s.doc, dom.KeyEscape) }); err != nil {
			return submissions, err
		}
		return submissions, nil
	}
}

func (s *Session) bind(ctx context.Context) error {
	s.completed = make(chan model.Submission, 1)
	opts := append([]controller.Option{controller.WithLogger(s.log)}, s.controllerOpts...)
	opts = append(opts,
		controller.WithLoop(s.loop),
		controller.WithSubmitHook(func(sub model.Submission) { s.completed <- sub }),
	)

	var bindErr error
	if err := s.do(ctx, func() {
		s.ctrl, bindErr = controller.Bind(s.doc, opts...)
	}); err != nil {
		return err
	}
	if bindErr != nil {
		return fmt.Errorf("tui: %w", bindErr)
	}
	return nil
}

func (s *Session) round(ctx context.Context) (model.Submission, error) {
	for _, field := range s.form.Fields {
		if err := s.promptField(ctx, field); err != nil {
			return model.Submission{}, err
		}
	}

	var (
		state    model.SubmissionState
		problems []string
	)
	if err := s.do(ctx, func() {
		dom.Click(s.doc.GetElementByID(controller.IDSubmitBtn))
		state = s.ctrl.State()
		for _, field := range model.ValidatedFields {
			if text := s.ctrl.ErrorText(field); text != "" {
				problems = append(problems, text)
			}
		}
	}); err != nil {
		return model.Submission{}, err
	}
	if state != model.StatePending {
		return model.Submission{}, fmt.Errorf("%w: %s", ErrSubmitRejected, strings.Join(problems, "; "))
	}

	if err := s.info(ctx, s.theme.InfoPrefix+"Submitting feedback..."); err != nil {
		return model.Submission{}, err
	}

	var sub model.Submission
	select {
	case sub = <-s.completed:
	case <-ctx.Done():
		return model.Submission{}, ctx.Err()
	}

	var title, message string
	if err := s.do(ctx, func() {
		overlay := s.doc.GetElementByID(controller.IDOverlay)
		title = collapse(findText(overlay, "h2"))
		message = collapse(findText(overlay, "p"))
	}); err != nil {
		return model.Submission{}, err
	}
	for _, line := range []string{title, message} {
		if line == "" {
			continue
		}
		if err := s.info(ctx, s.theme.InfoPrefix+line); err != nil {
			return model.Submission{}, err
		}
	}
	return sub, nil
}

func (s *Session) promptField(ctx context.Context, field schema.Field) error {
	switch field.Input {
	case schema.InputSelect:
		return s.promptSelect(ctx, field)
	case schema.InputRadio:
		return s.promptRadio(ctx, field)
	default:
		return s.promptText(ctx, field)
	}
}

func (s *Session) promptText(ctx context.Context, field schema.Field) error {
	label := displayLabel(field)
	help := s.plainText(field.Help)
	id := string(field.Name)

	for {
		var current string
		if err := s.do(ctx, func() { current = s.doc.GetElementByID(id).Value() }); err != nil {
			return err
		}

		var (
			response string
			err      error
		)
		if field.Input == schema.InputTextArea {
			response, err = s.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: current, Help: help})
		} else {
			response, err = s.driver.Input(ctx, InputConfig{Message: label, Default: current, Help: help})
		}
		if err != nil {
			return err
		}

		var (
			problem string
			counter string
			tier    theme.Tier
		)
		if err := s.do(ctx, func() {
			el := s.doc.GetElementByID(id)
			dom.Type(el, response)
			dom.Blur(el)
			problem = s.ctrl.ErrorText(field.Name)
			if count := s.doc.GetElementByID(controller.IDCharCount); count != nil && field.Name == model.FieldMessage {
				counter = count.Text()
				tier = s.ctrl.CharacterTier(el.Value())
			}
		}); err != nil {
			return err
		}

		if counter != "" && field.MaxLength > 0 {
			line := fmt.Sprintf("%s%s/%d characters", s.theme.InfoPrefix, counter, field.MaxLength)
			if tier != theme.TierNormal {
				line += " (" + tier.String() + ")"
			}
			if err := s.info(ctx, line); err != nil {
				return err
			}
		}
		if problem == "" {
			return nil
		}
		if err := s.info(ctx, s.theme.ErrorPrefix+problem); err != nil {
			return err
		}
	}
}

func (s *Session) promptSelect(ctx context.Context, field schema.Field) error {
	id := string(field.Name)
	var current string
	if err := s.do(ctx, func() { current = s.doc.GetElementByID(id).Value() }); err != nil {
		return err
	}

	values := lo.Map(field.Options, func(opt schema.Option, _ int) string { return opt.Value })
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message:      displayLabel(field),
		Options:      optionLabels(field.Options),
		DefaultIndex: lo.IndexOf(values, current),
		Help:         s.plainText(field.Help),
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(values) {
		return nil
	}
	return s.do(ctx, func() { dom.Select(s.doc.GetElementByID(id), values[idx]) })
}

func (s *Session) promptRadio(ctx context.Context, field schema.Field) error {
	name := string(field.Name)
	idx, err := s.driver.Select(ctx, SelectConfig{
		Message: displayLabel(field),
		Options: append([]string{skipLabel}, optionLabels(field.Options)...),
		Help:    s.plainText(field.Help),
	})
	if err != nil {
		return err
	}

	return s.do(ctx, func() {
		if idx <= 0 || idx > len(field.Options) {
			for _, el := range s.doc.ElementsByName(name) {
				el.SetChecked(false)
			}
			return
		}
		if el := s.doc.GetElementByID(name + field.Options[idx-1].Value); el != nil {
			dom.Check(el)
		}
	})
}

func (s *Session) newFeedbackPrompt() string {
	label := "Submit new feedback"
	_ = s.do(context.Background(), func() {
		if btn := s.doc.GetElementByID(controller.IDNewFeedbackBtn); btn != nil {
			if text := collapse(btn.Text()); text != "" {
				label = text
			}
		}
	})
	return label + "?"
}

// abort drops a pending submission; the loop may already be gone.
func (s *Session) abort() {
	if s.ctrl == nil {
		return
	}
	if err := s.do(context.Background(), func() { s.ctrl.Close() }); err != nil {
		s.log.Debug("tui: controller close skipped", slog.String("error", err.Error()))
	}
}

func (s *Session) write(sub model.Submission) error {
	payload, err := serialize(s.format, sub.Values())
	if err != nil {
		return err
	}
	if _, err := s.out.Write(payload); err != nil {
		return fmt.Errorf("tui: write submission: %w", err)
	}
	if len(payload) > 0 && payload[len(payload)-1] != '\n' {
		_, err = io.WriteString(s.out, "\n")
	}
	return err
}

func (s *Session) do(ctx context.Context, fn func()) error {
	return s.loop.Do(ctx, fn)
}

func (s *Session) info(ctx context.Context, msg string) error {
	return s.driver.Info(ctx, msg)
}

func (s *Session) plainText(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return collapse(html.UnescapeString(s.plain.Sanitize(raw)))
}

func displayLabel(field schema.Field) string {
	label := field.Label
	if label == "" {
		label = string(field.Name)
	}
	if field.Required {
		label += " *"
	}
	return label
}

func optionLabels(options []schema.Option) []string {
	return lo.Map(options, func(opt schema.Option, _ int) string {
		if opt.Label != "" {
			return opt.Label
		}
		return opt.Value
	})
}

func findText(root *dom.Element, tag string) string {
	if root == nil {
		return ""
	}
	if root.Tag() == tag {
		return root.Text()
	}
	for _, child := range root.Children() {
		if text := findText(child, tag); text != "" {
			return text
		}
	}
	return ""
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
