package domain

import (
	"errors"
	"fmt"
)

// RemoteErrorKind classifies why a call to the grading API failed.
type RemoteErrorKind string

const (
	RemoteNetwork  RemoteErrorKind = "network"  // request never produced a response
	RemoteStatus   RemoteErrorKind = "status"   // non-2xx response
	RemoteDecode   RemoteErrorKind = "decode"   // body was not the expected JSON
	RemoteRejected RemoteErrorKind = "remote"   // 2xx response carrying an error field
	RemoteCanceled RemoteErrorKind = "canceled" // caller gave up before the response arrived
)

// RemoteError is the single error shape returned by every gateway operation.
type RemoteError struct {
	Op         string
	Kind       RemoteErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *RemoteError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d): %s", e.Op, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Message)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// AsRemoteError unwraps err into a *RemoteError when it is one.
func AsRemoteError(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
