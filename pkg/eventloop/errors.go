package eventloop

import "errors"

// ErrClosed is returned when posting to a loop that has stopped.
var ErrClosed = errors.New("eventloop: closed")
