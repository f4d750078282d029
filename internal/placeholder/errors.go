package placeholder

import (
	"errors"
	"fmt"
)

// Render errors.
var (
	ErrMissingField      = errors.New("missing field")
	ErrMalformedTemplate = errors.New("malformed template")
)

// MissingFieldError reports a placeholder with no value to substitute.
type MissingFieldError struct {
	Name string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing field %q used as {%s} in the template; add it to the template's field list", e.Name, e.Name)
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// MalformedError reports template syntax the renderer cannot resolve.
type MalformedError struct {
	// Offset is the byte offset of the offending brace.
	Offset int
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed template at offset %d: %s; placeholders must look like {name}", e.Offset, e.Reason)
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformedTemplate
}
