package payments

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthenticity
	KindUpstream
	KindConfiguration
	KindConflict
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthenticity:
		return "authenticity"
	case KindUpstream:
		return "upstream"
	case KindConfiguration:
		return "configuration"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	}
	return "unknown"
}

// Error carries a client-safe Message. Err may hold detail for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(k Kind, msg string, err error) *Error {
	return &Error{Kind: k, Message: msg, Err: err}
}

// KindOf reports the kind of err, or 0 when err is not a *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

var (
	ErrNotFound        = errors.New("payment attempt not found")
	ErrAlreadyExists   = errors.New("payment attempt already exists")
	ErrPaymentIDTaken  = errors.New("payment id already linked to another order")
	ErrMissingSecret   = errors.New("key secret not configured")
	ErrSignatureFailed = errors.New("signature mismatch")
)
