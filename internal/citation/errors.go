package citation

import (
	"errors"
	"fmt"
)

var (
	// ErrUnusualName means an author name split into more than two comma parts.
	ErrUnusualName = errors.New("unusual name")
	// ErrEmptyName means an author entry produced neither a first nor a last name.
	ErrEmptyName = errors.New("empty author name")
)

// FatalError is a data-shape violation that must stop the whole batch. Text
// is the offending input, verbatim.
type FatalError struct {
	Kind error
	Text string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%v: %q", e.Kind, e.Text)
}

func (e *FatalError) Unwrap() error {
	return e.Kind
}

// IsFatal reports whether err carries a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
