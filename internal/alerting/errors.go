package alerting

import (
	"errors"
	"fmt"
)

// TransportError is a network failure or a non-2xx status from the server.
type TransportError struct {
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AnnotationSaveError is returned when an annotation could not be persisted.
type AnnotationSaveError struct {
	Key        string
	StatusCode int
	Body       string
	Err        error
}

func (e *AnnotationSaveError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("save annotation %s: status %d", e.Key, e.StatusCode)
	}
	return fmt.Sprintf("save annotation %s: %v", e.Key, e.Err)
}

func (e *AnnotationSaveError) Unwrap() error { return e.Err }

// IsTransportError reports whether err wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
