package venue

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidName is returned when an event has no name
	ErrInvalidName = errors.New("invalid event name")
	// ErrInvalidCapacity is returned when an event capacity is missing, malformed or negative
	ErrInvalidCapacity = errors.New("invalid event capacity")
)

// Event is something to be hosted at a venue.
//
// Events are compared by value: two events are the same event iff they have
// the same name and the same capacity. The allocator relies on this when it
// uses events as map keys.
type Event struct {
	name     string
	capacity int
}

// NewEvent creates an event, rejecting an empty name or a negative capacity
func NewEvent(name string, capacity int) (Event, error) {
	if name == "" {
		return Event{}, ErrInvalidName
	}
	if capacity < 0 {
		return Event{}, ErrInvalidCapacity
	}
	return Event{name: name, capacity: capacity}, nil
}

// ParseEvent creates an event from operator input. The capacity text must be
// a plain base-10 integer.
func ParseEvent(name, capacityText string) (Event, error) {
	if name == "" {
		return Event{}, ErrInvalidName
	}
	capacity, err := ParseCapacity(capacityText)
	if err != nil {
		return Event{}, err
	}
	return NewEvent(name, capacity)
}

// ParseCapacity parses a capacity typed by the operator
func ParseCapacity(text string) (int, error) {
	if text == "" {
		return 0, ErrInvalidCapacity
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCapacity, text)
	}
	return n, nil
}

// Name returns the event name
func (e Event) Name() string {
	return e.name
}

// Capacity returns the capacity the event requires
func (e Event) Capacity() int {
	return e.capacity
}

// IsZero reports whether e is the zero Event (no event selected)
func (e Event) IsZero() bool {
	return e == Event{}
}

func (e Event) String() string {
	return fmt.Sprintf("%s (%d)", e.name, e.capacity)
}
