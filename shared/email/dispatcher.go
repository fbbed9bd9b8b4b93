package email

import "fmt"

// Dispatcher sends a single message to one recipient. Implementations must
// not block account workflows: callers treat a failed dispatch as an
// observability event, not a request failure.
type Dispatcher interface {
	Send(to, subject, body string, isHTML bool) error
}

// DispatchError wraps a transport failure with the recipient it affected.
type DispatchError struct {
	To  string
	Err error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("email dispatch to %s failed: %v", e.To, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}
