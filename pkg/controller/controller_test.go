package controller

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-feedbackform/pkg/dom"
	"github.com/goliatone/go-feedbackform/pkg/eventloop"
	"github.com/goliatone/go-feedbackform/pkg/model"
	"github.com/goliatone/go-feedbackform/pkg/testsupport"
	"github.com/goliatone/go-feedbackform/pkg/theme"
)

const fixture = `<!DOCTYPE html>
<html><head><title>Feedback</title></head>
<body>
<form id="feedbackForm">
  <input type="text" id="name" name="name">
  <span id="nameError" style="display: none"></span>
  <input type="email" id="email" name="email">
  <span id="emailError" style="display: none"></span>
  <select id="subject" name="subject">
    <option value="" selected>Select a topic</option>
    <option value="general">General</option>
    <option value="bug">Bug</option>
  </select>
  <textarea id="message" name="message"></textarea>
  <span id="charCount">0</span>
  <span id="messageError" style="display: none"></span>
  <input type="radio" id="rating5" name="rating" value="5">
  <input type="radio" id="rating4" name="rating" value="4">
  <input type="radio" id="rating1" name="rating" value="1">
  <button type="submit" id="submitBtn" class="submit-btn">Submit Feedback</button>
</form>
<div id="thankYouContainer" style="display: none">
  <div id="thankYouContent"><h2>Thank You!</h2>
    <button type="button" id="newFeedbackBtn">Submit New Feedback</button>
  </div>
</div>
</body></html>`

type manualTimer struct {
	ctx     context.Context
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// manualScheduler records scheduled callbacks so tests decide when the
// simulated delay elapses.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

func (s *manualScheduler) AfterFunc(ctx context.Context, d time.Duration, fn func()) eventloop.Timer {
	timer := &manualTimer{ctx: ctx, delay: d, fn: fn}
	s.mu.Lock()
	s.timers = append(s.timers, timer)
	s.mu.Unlock()
	return timer
}

func (s *manualScheduler) scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *manualScheduler) fire(t *testing.T) {
	t.Helper()
	s.mu.Lock()
	timers := append([]*manualTimer(nil), s.timers...)
	s.mu.Unlock()
	require.NotEmpty(t, timers, "no timer scheduled")
	timer := timers[len(timers)-1]
	if timer.stopped || timer.fired || timer.ctx.Err() != nil {
		return
	}
	timer.fired = true
	timer.fn()
}

type harness struct {
	doc   *dom.Document
	ctrl  *Controller
	sched *manualScheduler
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	doc, err := dom.ParseString(fixture)
	require.NoError(t, err)

	sched := &manualScheduler{}
	base := []Option{
		WithScheduler(sched),
		WithLogger(testsupport.Logger()),
		WithIDGenerator(func() string { return "fb-1" }),
		WithClock(func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }),
	}
	ctrl, err := Bind(doc, append(base, opts...)...)
	require.NoError(t, err)
	return &harness{doc: doc, ctrl: ctrl, sched: sched}
}

func (h *harness) el(t *testing.T, id string) *dom.Element {
	t.Helper()
	el := h.doc.GetElementByID(id)
	require.NotNil(t, el, "missing #%s", id)
	return el
}

func (h *harness) fill(t *testing.T, name, email, message string) {
	t.Helper()
	dom.Type(h.el(t, "name"), name)
	dom.Type(h.el(t, "email"), email)
	dom.Type(h.el(t, "message"), message)
}

func TestBind_RequiresScheduler(t *testing.T) {
	doc, err := dom.ParseString(fixture)
	require.NoError(t, err)

	_, err = Bind(doc)
	assert.ErrorIs(t, err, ErrSchedulerMissing)
}

func TestBind_ReportsMissingElements(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><form id="feedbackForm"></form></body></html>`)
	require.NoError(t, err)

	_, err = Bind(doc, WithScheduler(&manualScheduler{}))
	require.ErrorIs(t, err, ErrElementNotFound)
	assert.Contains(t, err.Error(), "thankYouContainer")
	assert.Contains(t, err.Error(), "nameError")
}

func TestBlur_ShowsAndClearsErrors(t *testing.T) {
	cases := []struct {
		field model.Field
		value string
		want  string
	}{
		{model.FieldName, "", "Please enter your name"},
		{model.FieldName, "A", "Name must be at least 2 characters long"},
		{model.FieldName, "Al", ""},
		{model.FieldEmail, "", "Please enter your email address"},
		{model.FieldEmail, "bad@", "Please enter a valid email address"},
		{model.FieldEmail, "al@example.com", ""},
		{model.FieldMessage, "", "Please enter your feedback message"},
		{model.FieldMessage, "too short", "Message must be at least 10 characters long"},
		{model.FieldMessage, strings.Repeat("x", 501), "Message must be less than 500 characters"},
		{model.FieldMessage, strings.Repeat("x", 500), ""},
	}

	for _, tc := range cases {
		t.Run(string(tc.field)+"/"+tc.want, func(t *testing.T) {
			h := newHarness(t)
			input := h.el(t, string(tc.field))
			slot := h.el(t, tc.field.ErrorSlotID())

			dom.Type(input, tc.value)
			dom.Blur(input)

			assert.Equal(t, tc.want, h.ctrl.ErrorText(tc.field))
			if tc.want == "" {
				assert.Equal(t, "none", slot.Style("display"))
			} else {
				assert.Equal(t, "block", slot.Style("display"))
			}
		})
	}
}

func TestInput_ClearsVisibleError(t *testing.T) {
	h := newHarness(t)
	name := h.el(t, "name")

	dom.Blur(name)
	require.Equal(t, "Please enter your name", h.ctrl.ErrorText(model.FieldName))

	dom.Type(name, "A")
	assert.Empty(t, h.ctrl.ErrorText(model.FieldName))
	assert.Empty(t, h.el(t, "nameError").Text())
	assert.Equal(t, "none", h.el(t, "nameError").Style("display"))
}

func TestCharacterCounter_Tiers(t *testing.T) {
	palette := theme.DefaultPalette()
	cases := []struct {
		length int
		tier   theme.Tier
		color  string
	}{
		{0, theme.TierNormal, palette.Normal},
		{50, theme.TierNormal, palette.Normal},
		{300, theme.TierNormal, palette.Normal},
		{301, theme.TierWarning, palette.Warning},
		{450, theme.TierWarning, palette.Warning},
		{451, theme.TierCritical, palette.Critical},
	}

	for _, tc := range cases {
		h := newHarness(t)
		dom.Type(h.el(t, "message"), strings.Repeat("a", tc.length))

		counter := h.el(t, "charCount")
		assert.Equal(t, tc.color, counter.Style("color"), "length %d", tc.length)
		assert.Equal(t, strconv.Itoa(tc.length), counter.Text())
		assert.Equal(t, tc.tier, h.ctrl.UpdateCharacterCount(strings.Repeat("a", tc.length)))
	}
}

func TestCharacterCounter_CountsRunes(t *testing.T) {
	h := newHarness(t)
	h.ctrl.UpdateCharacterCount("héllo wörld")
	assert.Equal(t, "11", h.el(t, "charCount").Text())
}

func TestCharacterTier_LeavesCounterAlone(t *testing.T) {
	h := newHarness(t)
	h.ctrl.UpdateCharacterCount("short")

	assert.Equal(t, theme.TierCritical, h.ctrl.CharacterTier(strings.Repeat("x", 451)))
	assert.Equal(t, "5", h.el(t, "charCount").Text())
	assert.Equal(t, theme.DefaultPalette().Normal, h.el(t, "charCount").Style("color"))
}

func TestSubmit_InvalidShowsEveryError(t *testing.T) {
	h := newHarness(t)

	err := h.ctrl.Submit(context.Background())

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []model.Field{model.FieldName, model.FieldEmail, model.FieldMessage}, verr.Fields())
	assert.Equal(t, model.StateIdle, h.ctrl.State())
	assert.Empty(t, h.sched.timers)
	for _, field := range model.ValidatedFields {
		assert.NotEmpty(t, h.ctrl.ErrorText(field), field)
	}
}

func TestSubmit_FullCycle(t *testing.T) {
	var hooked []model.Submission
	h := newHarness(t, WithSubmitHook(func(s model.Submission) { hooked = append(hooked, s) }))

	h.fill(t, "Al", "al@example.com", "Twenty chars exactly")
	dom.Select(h.el(t, "subject"), "bug")
	dom.Check(h.el(t, "rating4"))

	btn := h.el(t, "submitBtn")
	dom.Click(btn)

	require.Equal(t, model.StatePending, h.ctrl.State())
	assert.True(t, btn.Disabled())
	assert.True(t, btn.ClassList().Contains(ClassLoading))
	assert.Equal(t, "none", h.el(t, "thankYouContainer").Style("display"))
	require.Len(t, h.sched.timers, 1)
	assert.Equal(t, DefaultSubmitDelay, h.sched.timers[0].delay)

	// a second submit while pending is ignored
	assert.ErrorIs(t, h.ctrl.Submit(context.Background()), ErrNotIdle)
	dom.Click(btn)
	assert.Len(t, h.sched.timers, 1)

	h.sched.fire(t)

	assert.Equal(t, model.StateCompleted, h.ctrl.State())
	assert.True(t, h.ctrl.OverlayVisible())
	assert.Equal(t, "hidden", h.doc.Body().Style("overflow"))
	assert.False(t, btn.Disabled())
	assert.False(t, btn.ClassList().Contains(ClassLoading))

	assert.Empty(t, h.el(t, "name").Value())
	assert.Empty(t, h.el(t, "email").Value())
	assert.Empty(t, h.el(t, "message").Value())
	assert.Empty(t, h.el(t, "subject").Value())
	assert.Nil(t, h.doc.QueryChecked("rating"))
	assert.Equal(t, "0", h.el(t, "charCount").Text())
	assert.Equal(t, theme.DefaultPalette().Normal, h.el(t, "charCount").Style("color"))

	want := model.Submission{
		ID:          "fb-1",
		Name:        "Al",
		Email:       "al@example.com",
		Subject:     "bug",
		Message:     "Twenty chars exactly",
		Rating:      "4",
		SubmittedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	last, ok := h.ctrl.LastSubmission()
	require.True(t, ok)
	assert.Equal(t, want, last)
	assert.Equal(t, []model.Submission{want}, hooked)

	assert.ErrorIs(t, h.ctrl.Submit(context.Background()), ErrNotIdle)
}

func TestSubmit_TrimsAndDefaultsRating(t *testing.T) {
	h := newHarness(t)
	h.fill(t, "  Alice  ", " alice@example.com ", "   a message of some length   ")

	require.NoError(t, h.ctrl.Submit(context.Background()))
	h.sched.fire(t)

	last, ok := h.ctrl.LastSubmission()
	require.True(t, ok)
	assert.Equal(t, "Alice", last.Name)
	assert.Equal(t, "alice@example.com", last.Email)
	assert.Equal(t, "a message of some length", last.Message)
	assert.Equal(t, model.RatingNotRated, last.Rating)
	assert.Empty(t, last.Subject)
}

func TestDismiss(t *testing.T) {
	cases := map[string]struct {
		act       func(h *harness, t *testing.T)
		dismissed bool
	}{
		"new feedback button": {
			act:       func(h *harness, t *testing.T) { dom.Click(h.el(t, "newFeedbackBtn")) },
			dismissed: true,
		},
		"escape key": {
			act:       func(h *harness, t *testing.T) { dom.PressKey(h.doc, dom.KeyEscape) },
			dismissed: true,
		},
		"backdrop click": {
			act:       func(h *harness, t *testing.T) { dom.Click(h.el(t, "thankYouContainer")) },
			dismissed: true,
		},
		"inner content click": {
			act:       func(h *harness, t *testing.T) { dom.Click(h.el(t, "thankYouContent")) },
			dismissed: false,
		},
		"other key": {
			act:       func(h *harness, t *testing.T) { dom.PressKey(h.doc, "Enter") },
			dismissed: false,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			h.fill(t, "Al", "al@example.com", "Twenty chars exactly")
			require.NoError(t, h.ctrl.Submit(context.Background()))
			h.sched.fire(t)
			require.True(t, h.ctrl.OverlayVisible())

			tc.act(h, t)

			if tc.dismissed {
				assert.False(t, h.ctrl.OverlayVisible())
				assert.Equal(t, "none", h.el(t, "thankYouContainer").Style("display"))
				assert.Equal(t, "auto", h.doc.Body().Style("overflow"))
				assert.Equal(t, model.StateIdle, h.ctrl.State())
			} else {
				assert.True(t, h.ctrl.OverlayVisible())
				assert.Equal(t, model.StateCompleted, h.ctrl.State())
			}
		})
	}
}

func TestEscape_WithoutOverlayIsNoop(t *testing.T) {
	h := newHarness(t)
	dom.PressKey(h.doc, dom.KeyEscape)

	assert.Equal(t, model.StateIdle, h.ctrl.State())
	assert.Empty(t, h.doc.Body().Style("overflow"))
	assert.False(t, h.ctrl.DismissConfirmation())
}

func TestCancelPending_KeepsValues(t *testing.T) {
	h := newHarness(t)
	h.fill(t, "Al", "al@example.com", "Twenty chars exactly")
	require.NoError(t, h.ctrl.Submit(context.Background()))

	dom.Unload(h.doc)

	assert.Equal(t, model.StateIdle, h.ctrl.State())
	assert.True(t, h.sched.timers[0].stopped)
	assert.Error(t, h.sched.timers[0].ctx.Err())
	assert.False(t, h.el(t, "submitBtn").Disabled())
	assert.Equal(t, "Al", h.el(t, "name").Value())

	h.sched.fire(t)
	assert.False(t, h.ctrl.OverlayVisible())
	_, ok := h.ctrl.LastSubmission()
	assert.False(t, ok)
	assert.False(t, h.ctrl.CancelPending())
}

func TestSubmit_ParentContextCancels(t *testing.T) {
	h := newHarness(t)
	h.fill(t, "Al", "al@example.com", "Twenty chars exactly")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, h.ctrl.Submit(ctx))
	require.Equal(t, 1, h.sched.scheduled())
	cancel()

	require.Eventually(t, func() bool { return h.sched.scheduled() == 2 },
		time.Second, time.Millisecond, "reset was not scheduled")
	assert.Equal(t, model.StatePending, h.ctrl.State())

	h.sched.fire(t)
	assert.Equal(t, model.StateIdle, h.ctrl.State())
	assert.False(t, h.el(t, "submitBtn").Disabled())
	assert.False(t, h.el(t, "submitBtn").ClassList().Contains(ClassLoading))
	assert.Equal(t, "Al", h.el(t, "name").Value())
	assert.False(t, h.ctrl.OverlayVisible())
	_, ok := h.ctrl.LastSubmission()
	assert.False(t, ok)

	require.NoError(t, h.ctrl.Submit(context.Background()))
	h.sched.fire(t)
	assert.Equal(t, model.StateCompleted, h.ctrl.State())
}

func TestSubmit_StaleContextResetIsIgnored(t *testing.T) {
	h := newHarness(t)
	h.fill(t, "Al", "al@example.com", "Twenty chars exactly")

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, h.ctrl.Submit(ctx))
	h.sched.fire(t)
	require.Equal(t, model.StateCompleted, h.ctrl.State())

	cancel()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, h.sched.scheduled())
	assert.Equal(t, model.StateCompleted, h.ctrl.State())
}

func TestClose_RejectsSubmits(t *testing.T) {
	h := newHarness(t)
	h.fill(t, "Al", "al@example.com", "Twenty chars exactly")
	require.NoError(t, h.ctrl.Submit(context.Background()))

	h.ctrl.Close()

	assert.Equal(t, model.StateIdle, h.ctrl.State())
	assert.ErrorIs(t, h.ctrl.Submit(context.Background()), ErrClosed)
}

func TestSubmit_OnEventLoop(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	loop := eventloop.New()
	go func() { _ = loop.Run(ctx) }()
	defer loop.Close()

	doc, err := dom.ParseString(fixture)
	require.NoError(t, err)

	done := make(chan model.Submission, 1)
	var ctrl *Controller
	require.NoError(t, loop.Do(ctx, func() {
		ctrl, err = Bind(doc,
			WithLoop(loop),
			WithSubmitDelay(10*time.Millisecond),
			WithLogger(testsupport.Logger()),
			WithSubmitHook(func(s model.Submission) { done <- s }),
		)
		if err != nil {
			return
		}
		dom.Type(doc.GetElementByID("name"), "Al")
		dom.Type(doc.GetElementByID("email"), "al@example.com")
		dom.Type(doc.GetElementByID("message"), "Twenty chars exactly")
		dom.Click(doc.GetElementByID("submitBtn"))
	}))
	require.NoError(t, err)

	select {
	case s := <-done:
		assert.Equal(t, "Al", s.Name)
	case <-ctx.Done():
		t.Fatal("submission did not complete")
	}

	var visible bool
	require.NoError(t, loop.Do(ctx, func() { visible = ctrl.OverlayVisible() }))
	assert.True(t, visible)
}

func TestBind_RenderedPage(t *testing.T) {
	form := testsupport.LoadForm(t)
	doc := testsupport.LoadPage(t, form)

	ctrl, err := Bind(doc, WithScheduler(&manualScheduler{}), WithLogger(testsupport.Logger()))
	require.NoError(t, err)

	dom.Type(doc.GetElementByID("message"), strings.Repeat("m", 451))
	assert.Equal(t, "451", doc.GetElementByID(IDCharCount).Text())
	assert.Equal(t, theme.DefaultPalette().Critical, doc.GetElementByID(IDCharCount).Style("color"))

	dom.Blur(doc.GetElementByID("message"))
	assert.Empty(t, ctrl.ErrorText(model.FieldMessage))
	dom.Type(doc.GetElementByID("message"), strings.Repeat("m", 501))
	dom.Blur(doc.GetElementByID("message"))
	assert.Equal(t, "Message must be less than 500 characters", ctrl.ErrorText(model.FieldMessage))
}
