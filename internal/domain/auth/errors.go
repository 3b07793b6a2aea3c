package auth

import "errors"

// ErrAuthDisabled indicates that no signing secret is configured.
var ErrAuthDisabled = errors.New("api authentication is disabled")
