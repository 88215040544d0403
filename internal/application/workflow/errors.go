package workflow

import "errors"

// ErrValidationFailed is returned when a decision payload or the application
// content fails per-action validation. The transition is aborted before any
// mutation, no log entry and no notifications are produced.
var ErrValidationFailed = errors.New("validation failed")
