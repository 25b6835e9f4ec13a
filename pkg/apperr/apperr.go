// Package apperr carries the core's error taxonomy (spec §7) so a router
// can translate a failure into a status code without parsing error text.
package apperr

import (
	"errors"
	"sync"

	"github.com/zeebo/errs"
)

// Kind is one of the seven error kinds the core surfaces.
type Kind int

const (
	// KindInternal marks an invariant violation; fatal for the request.
	KindInternal Kind = iota
	// KindBadRequest marks malformed input (e.g. an empty PUT body).
	KindBadRequest
	// KindForbidden marks a failed capability check.
	KindForbidden
	// KindNotFound marks an absent object or required version.
	KindNotFound
	// KindBlockUnavailable marks a get_block failure.
	KindBlockUnavailable
	// KindQuorumUnavailable marks a table or block insert that could not
	// reach quorum.
	KindQuorumUnavailable
	// KindTransport marks a body read/write failure.
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "BadRequest"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "NotFound"
	case KindBlockUnavailable:
		return "BlockUnavailable"
	case KindQuorumUnavailable:
		return "QuorumUnavailable"
	case KindTransport:
		return "Transport"
	default:
		return "Internal"
	}
}

// classes mirrors the teacher's per-subsystem errs.Class convention
// (e.g. pkg/kademlia's `var Error = errs.Class(...)`), one class per kind
// so callers can also use errs.Is-style class checks if they don't care
// about the Kind wrapper. classesMu guards lazy initialization since
// New/Wrap are called from concurrent request tasks.
var (
	classesMu sync.Mutex
	classes   = map[Kind]*errs.Class{}
)

func classFor(k Kind) *errs.Class {
	classesMu.Lock()
	defer classesMu.Unlock()
	if c, ok := classes[k]; ok {
		return c
	}
	c := errs.Class(k.String())
	classes[k] = &c
	return &c
}

// kindError is an error tagged with its apperr.Kind.
type kindError struct {
	kind  Kind
	cause error
}

func (e *kindError) Error() string { return e.cause.Error() }
func (e *kindError) Unwrap() error { return e.cause }

// New builds an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) error {
	return &kindError{kind: kind, cause: classFor(kind).New(format, args...)}
}

// Wrap tags an existing error with kind, preserving it as the cause.
func Wrap(kind Kind, cause error) error {
	if cause == nil {
		return nil
	}
	return &kindError{kind: kind, cause: classFor(kind).Wrap(cause)}
}

// KindOf extracts the Kind an error was tagged with, defaulting to
// KindInternal for errors the core didn't classify itself.
func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindInternal
}

// Is reports whether err (or any error it wraps) was tagged with kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

var (
	// ErrBadRequest is returned for an empty PUT body (§4.5 step 2).
	ErrBadRequest = New(KindBadRequest, "empty body")
	// ErrNotFound is returned when an Object or required Version is absent.
	ErrNotFound = New(KindNotFound, "not found")
)
