package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies failures by how the bot recovers from them.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
	KindDelivery      Kind = "delivery"
	KindStorage       Kind = "storage"
)

// ErrNotFound is returned by storage lookups that match no row.
var ErrNotFound = errors.New("not found")

// Error standardizes domain failures.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString(string(e.Kind))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Code is picked up by the router when it logs err_code.
func (e *Error) Code() string { return strings.ToUpper(string(e.Kind)) }

func Validation(op, message string) error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

func Unauthorized(op, message string) error {
	return &Error{Kind: KindAuthorization, Op: op, Message: message}
}

func NotFound(op, resource string) error {
	return &Error{Kind: KindNotFound, Op: op, Message: resource + " not found", Err: ErrNotFound}
}

func Conflict(op, message string) error {
	return &Error{Kind: KindConflict, Op: op, Message: message}
}

func Delivery(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindDelivery, Op: op, Message: "delivery failed", Err: err}
}

// Storage wraps a persistence failure. Lookups that missed are not storage
// failures and callers should translate ErrNotFound before calling this.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) && de.Kind == KindStorage {
		return err
	}
	return &Error{Kind: KindStorage, Op: op, Message: "storage failure", Err: err}
}

// KindOf returns the kind of the first domain error in the chain. Errors
// outside the taxonomy are treated as storage failures so the update
// boundary resets the dialog.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStorage
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// MessageOf extracts the user-facing message of a domain error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}
