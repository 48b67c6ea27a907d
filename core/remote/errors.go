package remote

import (
	"errors"
	"fmt"
)

// ErrAuth is wrapped by a TransportError when no user could authenticate.
var ErrAuth = errors.New("authentication failed")

// TransportError reports a failure to reach or log into a host. A command that
// ran and exited non-zero is not a TransportError.
type TransportError struct {
	Host string
	User string
	Err  error
}

func (e *TransportError) Error() string {
	if e.User != "" {
		return fmt.Sprintf("[SSH]: <%s> %s@%s: %v", e.Host, e.User, e.Host, e.Err)
	}
	return fmt.Sprintf("[SSH]: <%s> %v", e.Host, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
