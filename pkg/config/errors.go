package config

import "errors"

// ErrInvalid wraps validation failures of a loaded configuration.
var ErrInvalid = errors.New("config: invalid")
