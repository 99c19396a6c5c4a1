package ai

import (
	"errors"
	"fmt"
)

// ErrInvalidReply marks a reply that parsed but lacks required fields.
// It is a soft failure: the caller shows a neutral message and carries on.
var ErrInvalidReply = errors.New("reply missing required fields")

// TransportError is a hard failure: the collaborator could not be reached or its reply was not JSON.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsSoft reports whether err is a recoverable validation failure.
func IsSoft(err error) bool {
	return errors.Is(err, ErrInvalidReply)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidReply, fmt.Sprintf(format, args...))
}
