package cli

import "errors"

// errNotConfigured is returned when a command runs before the
// composition root installed a bootstrap function.
var errNotConfigured = errors.New("pipeline not configured")
