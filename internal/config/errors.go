package config

import "errors"

// ErrUnknownRun is returned when a run name is not configured.
var ErrUnknownRun = errors.New("unknown run")
