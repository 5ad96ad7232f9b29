package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrSubmitRejected is returned when the form refuses a submit that the
	// prompts already validated, which means the page and the rules disagree.
	ErrSubmitRejected = errors.New("tui: submit rejected")
)
