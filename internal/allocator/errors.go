package allocator

import "errors"

// Kind classifies a failed allocation command
type Kind string

const (
	// KindValidation is malformed or missing operator input
	KindValidation Kind = "validation"
	// KindCapacity is an event too large for the selected venue
	KindCapacity Kind = "capacity"
	// KindSafety is a commit that would overload a corridor
	KindSafety Kind = "safety"
	// KindConflict is an event or venue that is already allocated
	KindConflict Kind = "conflict"
	// KindNotFound is a removal for an event with no allocation
	KindNotFound Kind = "not_found"
)

// Operator-facing messages.
const (
	MsgInvalidName      = "Invalid event name"
	MsgInvalidCapacity  = "Invalid event capacity"
	MsgSelectVenue      = "Select venue to allocate event to"
	MsgUnknownVenue     = "Unknown venue"
	MsgUnsafeTraffic    = "Traffic generated is not safe"
	MsgCannotHost       = "Selected venue cannot host event"
	MsgEventAllocated   = "Event is already allocated"
	MsgVenueAllocated   = "Venue is already allocated"
	MsgSelectEventToRem = "Select an event to remove"
)

// Error is a recoverable failure of an engine command
type Error struct {
	Kind    Kind
	Message string
	// Corridors names the overloaded corridors of a safety failure
	Corridors []string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is checks against a kind.
var (
	ErrValidation = &Error{Kind: KindValidation, Message: "validation error"}
	ErrCapacity   = &Error{Kind: KindCapacity, Message: "capacity error"}
	ErrSafety     = &Error{Kind: KindSafety, Message: "safety error"}
	ErrConflict   = &Error{Kind: KindConflict, Message: "conflict error"}
	ErrNotFound   = &Error{Kind: KindNotFound, Message: "not found"}
)

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the kind of err, or "" when err is not an engine error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
