package sticky

import (
	"errors"
	"fmt"
)

var (
	ErrNoScrollContainer = errors.New("no enclosing scroll container")
	ErrInvalidElement    = errors.New("sticky content must be an element")
	ErrAlreadyRegistered = errors.New("element is already registered")
	ErrNotRegistered     = errors.New("element is not registered")
)

// ConfigurationError reports a registration that cannot work where the
// element sits in the document. It is never retried.
type ConfigurationError struct {
	Element string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("sticky %s: %v", e.Element, ErrNoScrollContainer)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrNoScrollContainer
}
