package assistant

import (
	"errors"
	"fmt"
)

// Kind classifies a failed backend call.
type Kind int

const (
	// KindNetwork means the backend could not be reached, or the call timed out
	// or was cancelled.
	KindNetwork Kind = iota + 1
	// KindBackend means the backend answered with a non-success status or an
	// error envelope.
	KindBackend
	// KindShape means the response did not have the expected fields.
	KindShape
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network failure"
	case KindBackend:
		return "backend error"
	case KindShape:
		return "unexpected response"
	default:
		return "unknown error"
	}
}

// Error is returned by every Client operation that fails.
type Error struct {
	Op      string // "sync", "list", "draft", "send", "health"
	Kind    Kind
	Status  int // HTTP status, 0 when no response was received
	Message string
	Err     error
}

func (e *Error) Error() string {
	detail := e.Message
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (%d): %s", e.Op, e.Kind, e.Status, detail)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, detail)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind of an error produced by this package.
func KindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return 0, false
}

func networkErr(op string, err error) error {
	return &Error{Op: op, Kind: KindNetwork, Err: err}
}

func shapeErr(op, format string, args ...any) error {
	return &Error{Op: op, Kind: KindShape, Message: fmt.Sprintf(format, args...)}
}
