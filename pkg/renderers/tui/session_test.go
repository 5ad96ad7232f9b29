package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-feedbackform/pkg/controller"
	"github.com/goliatone/go-feedbackform/pkg/dom"
	"github.com/goliatone/go-feedbackform/pkg/model"
	"github.com/goliatone/go-feedbackform/pkg/schema"
	"github.com/goliatone/go-feedbackform/pkg/testsupport"
)

// stubDriver replays scripted answers. Running out of answers behaves like
// Ctrl+C.
type stubDriver struct {
	inputs    []string
	selectIdx []int
	confirm   []bool
	textAreas []string

	inputPos   int
	selectPos  int
	confirmPos int
	textPos    int

	inputDefaults []string
	textAreaHelp  []string
	infoMessages  []string
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.inputDefaults = append(s.inputDefaults, cfg.Default)
	if s.inputPos >= len(s.inputs) {
		return "", ErrAborted
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, ErrAborted
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, ErrAborted
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.textAreaHelp = append(s.textAreaHelp, cfg.Help)
	if s.textPos >= len(s.textAreas) {
		return "", ErrAborted
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) saw(msg string) bool {
	for _, m := range s.infoMessages {
		if m == msg {
			return true
		}
	}
	return false
}

var submittedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T, driver PromptDriver, out io.Writer, options ...Option) *Session {
	t.Helper()
	form := testsupport.LoadForm(t)
	doc := testsupport.LoadPage(t, form)

	base := []Option{
		WithPromptDriver(driver),
		WithOutput(out),
		WithLogger(testsupport.Logger()),
		WithControllerOptions(
			controller.WithSubmitDelay(time.Millisecond),
			controller.WithIDGenerator(func() string { return "fb-1" }),
			controller.WithClock(func() time.Time { return submittedAt }),
		),
	}
	session, err := NewSession(form, doc, append(base, options...)...)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

func runWithTimeout(t *testing.T, session *Session) ([]model.Submission, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return session.Run(ctx)
}

func TestSession_ValidatesAndSubmits(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"A", "Al", "al@example.com"},
		selectIdx: []int{2, 1},
		textAreas: []string{"short", "Twenty chars exactly"},
		confirm:   []bool{false},
	}
	var out bytes.Buffer
	session := newTestSession(t, driver, &out)

	got, err := runWithTimeout(t, session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	want := []model.Submission{{
		ID:          "fb-1",
		Name:        "Al",
		Email:       "al@example.com",
		Subject:     "bug",
		Message:     "Twenty chars exactly",
		Rating:      "5",
		SubmittedAt: submittedAt,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("submissions mismatch (-want +got):\n%s", diff)
	}

	for _, msg := range []string{
		"! Name must be at least 2 characters long",
		"! Message must be at least 10 characters long",
		"5/500 characters",
		"20/500 characters",
		"Thank You!",
	} {
		if !driver.saw(msg) {
			t.Fatalf("expected message %q, got %q", msg, driver.infoMessages)
		}
	}

	var payload map[string]any
	if err := json.Unmarshal(out.Bytes(), &payload); err != nil {
		t.Fatalf("decode output %q: %v", out.String(), err)
	}
	if payload["name"] != "Al" || payload["rating"] != "5" || payload["subject"] != "bug" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestSession_HelpIsPlainText(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Al", "al@example.com"},
		selectIdx: []int{0, 0},
		textAreas: []string{"Twenty chars exactly"},
		confirm:   []bool{false},
	}
	session := newTestSession(t, driver, io.Discard)

	if _, err := runWithTimeout(t, session); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(driver.textAreaHelp) == 0 {
		t.Fatalf("textarea was not prompted")
	}
	help := driver.textAreaHelp[0]
	if strings.Contains(help, "<em>") || !strings.Contains(help, "Be specific") {
		t.Fatalf("help should be stripped to plain text, got %q", help)
	}
}

func TestSession_SkippedRatingIsNotRated(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Al", "al@example.com"},
		selectIdx: []int{0, 0},
		textAreas: []string{"Twenty chars exactly"},
		confirm:   []bool{false},
	}
	session := newTestSession(t, driver, io.Discard)

	got, err := runWithTimeout(t, session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one submission, got %d", len(got))
	}
	if got[0].Rating != model.RatingNotRated || got[0].Subject != "" {
		t.Fatalf("unexpected optional fields: %+v", got[0])
	}
}

func TestSession_NewFeedbackStartsFromResetForm(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Al", "al@example.com", "Bo", "bo@example.com"},
		selectIdx: []int{1, 3, 4, 0},
		textAreas: []string{"Twenty chars exactly", "Another long message"},
		confirm:   []bool{true, false},
	}
	var out bytes.Buffer
	session := newTestSession(t, driver, &out, WithOutputFormat(OutputFormatFormURLEncoded))

	got, err := runWithTimeout(t, session)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected two submissions, got %d", len(got))
	}
	if got[1].Name != "Bo" || got[1].Subject != "other" || got[1].Rating != model.RatingNotRated {
		t.Fatalf("unexpected second submission: %+v", got[1])
	}
	if diff := cmp.Diff([]string{"", "", "", ""}, driver.inputDefaults); diff != "" {
		t.Fatalf("prompts should start from the reset form (-want +got):\n%s", diff)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected two output lines, got %q", out.String())
	}
	values, err := url.ParseQuery(lines[0])
	if err != nil {
		t.Fatalf("parse form output: %v", err)
	}
	if values.Get("name") != "Al" || values.Get("subject") != "general" || values.Get("rating") != "3" {
		t.Fatalf("unexpected form payload: %v", values)
	}
}

func TestSession_AbortKeepsNothing(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Al", "al@example.com"},
		selectIdx: []int{0},
	}
	var out bytes.Buffer
	session := newTestSession(t, driver, &out)

	got, err := runWithTimeout(t, session)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if len(got) != 0 || out.Len() != 0 {
		t.Fatalf("aborted session should not emit submissions")
	}
}

func TestSession_ContextCancelDuringSubmit(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Al", "al@example.com"},
		selectIdx: []int{0, 0},
		textAreas: []string{"Twenty chars exactly"},
	}
	session := newTestSession(t, driver, io.Discard,
		WithControllerOptions(controller.WithSubmitDelay(time.Hour)))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	got, err := session.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no submissions, got %d", len(got))
	}
}

func TestNewSession_Validation(t *testing.T) {
	form := testsupport.LoadForm(t)
	doc := dom.NewDocument()

	if _, err := NewSession(form, nil); err == nil {
		t.Fatalf("expected error for nil document")
	}
	if _, err := NewSession(schema.Form{}, doc); err == nil {
		t.Fatalf("expected error for empty form")
	}
	if _, err := NewSession(form, doc, WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected error for unknown format")
	}

	session, err := NewSession(form, doc, WithOutputFormat(OutputFormatPrettyText))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if got := session.ContentType(); got != "text/plain" {
		t.Fatalf("content type: got %q", got)
	}
}

func TestSession_BindFailsOnForeignPage(t *testing.T) {
	form := testsupport.LoadForm(t)
	session, err := NewSession(form, dom.NewDocument(), WithPromptDriver(&stubDriver{}))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if _, err := runWithTimeout(t, session); !errors.Is(err, controller.ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
}

func TestPrettyPrint_AlignsSortedKeys(t *testing.T) {
	got := prettyPrint(map[string]any{"name": "Al", "id": "fb-1", "rating": "5"})
	want := "id      fb-1\nname    Al\nrating  5\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("pretty output mismatch (-want +got):\n%s", diff)
	}
}
