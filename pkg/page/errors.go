package page

import "errors"

// ErrNoFields is returned when rendering a form without fields.
var ErrNoFields = errors.New("page: form has no fields")
