// Package tui fills the feedback form from a terminal.
//
// A Session prompts for each field through a PromptDriver (survey by default),
// replays the answers into the page document and lets the form controller
// validate and submit them. Completed submissions are written as JSON, form
// encoded pairs or an aligned text summary.
package tui
