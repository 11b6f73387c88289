package schema

import (
	"errors"
	"fmt"
)

var (
	ErrLanguageRequired = errors.New("language has to be specified")
	ErrCyclicShorthand  = errors.New("shorthands contain cyclic dependency")
)

// ConfigError reports a descriptor that can't be compiled at all, such as a
// function without a language or a shorthand table with a cycle.
type ConfigError struct {
	// Object is the rendered identity, or the shorthand chain, that failed.
	Object string
	// Err is ErrLanguageRequired or ErrCyclicShorthand.
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Err, e.Object)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
