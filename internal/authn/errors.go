package authn

import (
	"errors"
	"fmt"
)

// ErrAuthenticationFailed is the single rejection signal surfaced to callers.
// Unknown realm, bad password, unknown user and validator failures all
// collapse into it so the response never reveals which credentials exist.
// The internal distinction is logged, not returned.
var ErrAuthenticationFailed = errors.New("authentication failed")

// ErrInfrastructure marks failures of the authentication machinery itself
// (catalog I/O, transaction errors), so operators can tell "bad password"
// from "database degraded". Never returned for a credentials rejection.
var ErrInfrastructure = errors.New("authentication infrastructure failure")

// ConfigError reports a malformed authentication configuration: duplicate
// realm, unresolvable validator or mapper identifier, missing required
// property. Raised at load or init time, never per request; a failed
// reconfiguration leaves the previous configuration active.
type ConfigError struct {
	msg   string
	cause error
}

func (e *ConfigError) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *ConfigError) Unwrap() error {
	return e.cause
}

// NewConfigError builds a ConfigError with an optional cause.
func NewConfigError(msg string, cause error) *ConfigError {
	return &ConfigError{msg: msg, cause: cause}
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{msg: fmt.Sprintf(format, args...)}
}

func infraErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInfrastructure, fmt.Sprintf(format, args...))
}
