package dom

import "errors"

var (
	// ErrParse wraps failures to turn markup into a Document.
	ErrParse = errors.New("dom: parse failed")
)
