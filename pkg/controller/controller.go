package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/goliatone/go-feedbackform/pkg/dom"
	"github.com/goliatone/go-feedbackform/pkg/eventloop"
	"github.com/goliatone/go-feedbackform/pkg/model"
	"github.com/goliatone/go-feedbackform/pkg/theme"
	"github.com/goliatone/go-feedbackform/pkg/validation"
)

// Element ids the controller binds to.
const (
	IDForm           = "feedbackForm"
	IDOverlay        = "thankYouContainer"
	IDNewFeedbackBtn = "newFeedbackBtn"
	IDSubmitBtn      = "submitBtn"
	IDCharCount      = "charCount"
)

// ClassLoading marks the submit control while a submission is pending.
const ClassLoading = "loading"

const (
	displayBlock = "block"
	displayNone  = "none"
	displayFlex  = "flex"

	overflowHidden = "hidden"
	overflowAuto   = "auto"
)

// Controller wires one feedback form: validation on blur, error clearing on
// input, the character counter, simulated submission and the confirmation
// overlay. All methods must be called from the goroutine that owns the
// document, normally the event loop the scheduler posts to.
type Controller struct {
	log        *slog.Logger
	rules      *validation.Rules
	palette    theme.Palette
	thresholds theme.Thresholds
	delay      time.Duration
	scheduler  Scheduler
	hooks      []SubmitHook
	now        func() time.Time
	newID      func() string

	doc        *dom.Document
	body       *dom.Element
	form       *dom.Element
	overlay    *dom.Element
	newBtn     *dom.Element
	submitBtn  *dom.Element
	charCount  *dom.Element
	fields     map[model.Field]*dom.Element
	errorSlots map[model.Field]*dom.Element

	state   model.SubmissionState
	pending eventloop.Timer
	cancel  context.CancelFunc
	unwatch func() bool
	seq     uint64
	last    *model.Submission
	closed  bool
}

// Bind resolves the form elements in doc and registers the listeners.
func Bind(doc *dom.Document, options ...Option) (*Controller, error) {
	if doc == nil {
		return nil, fmt.Errorf("controller: document is nil")
	}

	c := &Controller{
		log:        slog.Default(),
		rules:      validation.New(validation.DefaultLimits()),
		palette:    theme.DefaultPalette(),
		thresholds: theme.DefaultThresholds(),
		delay:      DefaultSubmitDelay,
		now:        time.Now,
		newID:      uuid.NewString,
		doc:        doc,
		fields:     make(map[model.Field]*dom.Element),
		errorSlots: make(map[model.Field]*dom.Element),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	if c.scheduler == nil {
		return nil, ErrSchedulerMissing
	}

	if err := c.resolve(); err != nil {
		return nil, err
	}
	c.wire()

	c.log.Debug("feedback form bound", slog.Duration("submit_delay", c.delay))
	return c, nil
}

func (c *Controller) resolve() error {
	var missing []string
	require := func(id string) *dom.Element {
		el := c.doc.GetElementByID(id)
		if el == nil {
			missing = append(missing, id)
		}
		return el
	}

	c.body = c.doc.Body()
	c.form = require(IDForm)
	c.overlay = require(IDOverlay)
	c.newBtn = require(IDNewFeedbackBtn)
	c.submitBtn = require(IDSubmitBtn)
	for _, field := range []model.Field{model.FieldName, model.FieldEmail, model.FieldSubject, model.FieldMessage} {
		c.fields[field] = require(string(field))
	}
	for _, field := range model.ValidatedFields {
		c.errorSlots[field] = require(field.ErrorSlotID())
	}
	c.charCount = c.doc.GetElementByID(IDCharCount)

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrElementNotFound, strings.Join(missing, ", "))
	}
	return nil
}

func (c *Controller) wire() {
	if c.charCount != nil {
		message := c.fields[model.FieldMessage]
		message.AddEventListener(dom.EventInput, func(*dom.Event) {
			c.UpdateCharacterCount(message.Value())
		})
	}

	for _, field := range model.ValidatedFields {
		field := field
		el := c.fields[field]
		el.AddEventListener(dom.EventBlur, func(*dom.Event) {
			c.ValidateField(field)
		})
		el.AddEventListener(dom.EventInput, func(*dom.Event) {
			c.clearError(field)
		})
	}

	c.form.AddEventListener(dom.EventSubmit, func(ev *dom.Event) {
		ev.PreventDefault()
		if err := c.Submit(context.Background()); err != nil {
			c.log.Debug("feedback submit rejected", slog.String("error", err.Error()))
		}
	})

	c.newBtn.AddEventListener(dom.EventClick, func(*dom.Event) {
		c.DismissConfirmation()
	})

	c.overlay.AddEventListener(dom.EventClick, func(ev *dom.Event) {
		if ev.Target == c.overlay {
			c.DismissConfirmation()
		}
	})

	c.doc.AddEventListener(dom.EventKeyDown, func(ev *dom.Event) {
		if ev.Key == dom.KeyEscape && c.OverlayVisible() {
			c.DismissConfirmation()
		}
	})

	c.doc.AddEventListener(dom.EventBeforeUnload, func(*dom.Event) {
		c.CancelPending()
	})
}

// ValidateField runs the rule for field against the element's current value
// and updates the field's error slot. Fields without a rule pass untouched.
func (c *Controller) ValidateField(field model.Field) model.ValidationResult {
	el, ok := c.fields[field]
	if !ok || !field.Validated() {
		return model.Pass(field)
	}

	result := c.rules.Validate(field, el.Value())
	if result.Valid {
		c.clearError(field)
	} else {
		c.showError(field, result.Message)
	}
	return result
}

// UpdateCharacterCount mirrors the length of text into the counter and sets
// its colour tier. It has no effect on validation.
func (c *Controller) UpdateCharacterCount(text string) theme.Tier {
	tier := c.CharacterTier(text)
	if c.charCount != nil {
		c.charCount.SetText(strconv.Itoa(utf8.RuneCountInString(text)))
		c.charCount.SetStyle("color", c.palette.Color(tier))
	}
	return tier
}

// CharacterTier reports the counter tier for text without touching the
// counter.
func (c *Controller) CharacterTier(text string) theme.Tier {
	return c.thresholds.TierFor(utf8.RuneCountInString(text))
}

// Submit validates every rule-bearing field and, when all pass, starts the
// simulated submission. Every failing field shows its error, not only the
// first one. Cancelling ctx while the submission is pending returns the
// controller to Idle on the scheduler's goroutine.
func (c *Controller) Submit(ctx context.Context) error {
	if c.closed {
		return ErrClosed
	}
	if c.state != model.StateIdle {
		return ErrNotIdle
	}

	var failed []model.ValidationResult
	for _, field := range model.ValidatedFields {
		if result := c.ValidateField(field); !result.Valid {
			failed = append(failed, result)
		}
	}
	if len(failed) > 0 {
		return &ValidationError{Results: failed}
	}

	submission := c.collect()
	c.submitBtn.ClassList().Add(ClassLoading)
	c.submitBtn.SetDisabled(true)
	c.state = model.StatePending

	c.log.Info("form data to be submitted",
		slog.String("id", submission.ID),
		slog.String("name", submission.Name),
		slog.String("email", submission.Email),
		slog.String("subject", submission.Subject),
		slog.Int("message_length", utf8.RuneCountInString(submission.Message)),
		slog.String("rating", submission.Rating),
	)

	c.seq++
	seq := c.seq
	pendingCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.pending = c.scheduler.AfterFunc(pendingCtx, c.delay, func() {
		c.complete(submission)
	})
	c.unwatch = context.AfterFunc(ctx, func() {
		c.scheduler.AfterFunc(context.Background(), 0, func() {
			if c.seq == seq && c.CancelPending() {
				c.log.Debug("feedback submission context done", slog.String("id", submission.ID))
			}
		})
	})
	return nil
}

// DismissConfirmation hides the overlay and restores page scrolling. It
// reports false when no confirmation is shown.
func (c *Controller) DismissConfirmation() bool {
	if c.state != model.StateCompleted {
		return false
	}
	c.overlay.SetStyle("display", displayNone)
	c.setBodyOverflow(overflowAuto)
	c.state = model.StateIdle
	c.log.Debug("feedback confirmation dismissed")
	return true
}

// CancelPending abandons a pending submission: the timer is stopped, the
// submit control is restored and the field values are kept. It reports false
// when nothing was pending.
func (c *Controller) CancelPending() bool {
	if c.state != model.StatePending {
		return false
	}
	if c.pending != nil {
		c.pending.Stop()
	}
	c.releasePending()
	c.restoreSubmitButton()
	c.state = model.StateIdle
	c.log.Info("feedback submission cancelled")
	return true
}

// Close cancels any pending submission and rejects further submits.
func (c *Controller) Close() {
	c.CancelPending()
	c.closed = true
}

// State reports the current submission state.
func (c *Controller) State() model.SubmissionState {
	return c.state
}

// LastSubmission returns the most recent completed payload.
func (c *Controller) LastSubmission() (model.Submission, bool) {
	if c.last == nil {
		return model.Submission{}, false
	}
	return *c.last, true
}

// OverlayVisible reports whether the confirmation overlay is shown.
func (c *Controller) OverlayVisible() bool {
	return c.overlay.Style("display") == displayFlex
}

// ErrorText returns the message currently shown for field, empty when the
// slot is hidden.
func (c *Controller) ErrorText(field model.Field) string {
	slot, ok := c.errorSlots[field]
	if !ok || slot.Style("display") != displayBlock {
		return ""
	}
	return slot.Text()
}

// Document returns the bound document.
func (c *Controller) Document() *dom.Document {
	return c.doc
}

func (c *Controller) complete(submission model.Submission) {
	if c.state != model.StatePending {
		return
	}
	c.releasePending()

	c.overlay.SetStyle("display", displayFlex)
	c.setBodyOverflow(overflowHidden)

	c.form.Reset()
	c.restoreSubmitButton()
	if c.charCount != nil {
		c.charCount.SetText("0")
		c.charCount.SetStyle("color", c.palette.Color(theme.TierNormal))
	}

	c.state = model.StateCompleted
	c.last = &submission
	c.log.Info("feedback submitted", slog.String("id", submission.ID))

	for _, hook := range c.hooks {
		hook(submission)
	}
}

func (c *Controller) collect() model.Submission {
	rating := model.RatingNotRated
	if checked := c.doc.QueryChecked(string(model.FieldRating)); checked != nil {
		rating = checked.Value()
	}
	return model.Submission{
		ID:          c.newID(),
		Name:        strings.TrimSpace(c.fields[model.FieldName].Value()),
		Email:       strings.TrimSpace(c.fields[model.FieldEmail].Value()),
		Subject:     c.fields[model.FieldSubject].Value(),
		Message:     strings.TrimSpace(c.fields[model.FieldMessage].Value()),
		Rating:      rating,
		SubmittedAt: c.now(),
	}
}

func (c *Controller) releasePending() {
	if c.unwatch != nil {
		c.unwatch()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.unwatch = nil
	c.cancel = nil
	c.pending = nil
}

func (c *Controller) restoreSubmitButton() {
	c.submitBtn.ClassList().Remove(ClassLoading)
	c.submitBtn.SetDisabled(false)
}

func (c *Controller) showError(field model.Field, message string) {
	slot := c.errorSlots[field]
	slot.SetText(message)
	slot.SetStyle("display", displayBlock)
}

func (c *Controller) clearError(field model.Field) {
	slot, ok := c.errorSlots[field]
	if !ok {
		return
	}
	slot.SetText("")
	slot.SetStyle("display", displayNone)
}

func (c *Controller) setBodyOverflow(value string) {
	if c.body != nil {
		c.body.SetStyle("overflow", value)
	}
}
