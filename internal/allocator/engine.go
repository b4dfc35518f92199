// Package allocator assigns events to catalog venues while keeping the
// aggregate corridor traffic of all allocations within corridor capacity.
//
// An Engine is a single-writer value: callers must serialise AddAllocation and
// RemoveAllocation. Queries may run concurrently with each other but not with
// a mutation.
package allocator

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/thatjpcsguy/eventalloc/internal/traffic"
	"github.com/thatjpcsguy/eventalloc/internal/venue"
)

// Allocation binds one event to one venue together with the traffic it
// contributed when it was committed
type Allocation struct {
	Event   venue.Event
	Venue   *venue.Venue
	Traffic traffic.Traffic
}

// String renders the allocation as "<event> : <venue-name> (<venue-capacity>)"
func (a Allocation) String() string {
	return fmt.Sprintf("%s : %s (%d)", a.Event, a.Venue.Name(), a.Venue.HostingCapacity())
}

// Engine owns the current allocations and the aggregate traffic they generate
type Engine struct {
	venues []*venue.Venue
	byName map[string]*venue.Venue

	allocations map[venue.Event]Allocation
	venueEvents map[*venue.Venue]venue.Event
	events      []venue.Event
	aggregate   traffic.Traffic

	logger *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for transaction diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an engine over a venue catalog
func New(venues []*venue.Venue, opts ...Option) (*Engine, error) {
	e := &Engine{
		byName:      make(map[string]*venue.Venue),
		allocations: make(map[venue.Event]Allocation),
		venueEvents: make(map[*venue.Venue]venue.Event),
		aggregate:   traffic.New(),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.AddVenues(venues...); err != nil {
		return nil, err
	}
	return e, nil
}

// AddVenues extends the catalog. The catalog is fixed once the first
// allocation has been committed.
func (e *Engine) AddVenues(venues ...*venue.Venue) error {
	if len(e.allocations) > 0 {
		return fmt.Errorf("cannot add venues after allocations have been made")
	}
	for _, v := range venues {
		if v == nil {
			return fmt.Errorf("catalog contains a nil venue")
		}
		if _, exists := e.byName[v.Name()]; exists {
			return fmt.Errorf("duplicate venue in catalog: %s", v.Name())
		}
	}
	// Validate the whole batch before touching the catalog
	seen := make(map[string]bool, len(venues))
	for _, v := range venues {
		if seen[v.Name()] {
			return fmt.Errorf("duplicate venue in catalog: %s", v.Name())
		}
		seen[v.Name()] = true
	}
	for _, v := range venues {
		e.venues = append(e.venues, v)
		e.byName[v.Name()] = v
	}
	return nil
}

// AddAllocation validates and commits the allocation of a new event to v.
//
// Checks run in a fixed order against a candidate state: event name, event
// capacity, venue selection, corridor safety, hosting capacity, event
// conflict, venue conflict. Nothing is mutated unless every check passes.
func (e *Engine) AddAllocation(name, capacityText string, v *venue.Venue) (Allocation, error) {
	if name == "" {
		return Allocation{}, e.reject(newError(KindValidation, MsgInvalidName))
	}
	capacity, err := venue.ParseCapacity(capacityText)
	if err != nil {
		return Allocation{}, e.reject(newError(KindValidation, MsgInvalidCapacity))
	}
	if v == nil {
		return Allocation{}, e.reject(newError(KindValidation, MsgSelectVenue))
	}
	if e.byName[v.Name()] != v {
		return Allocation{}, e.reject(newError(KindValidation, MsgUnknownVenue))
	}

	event, err := venue.NewEvent(name, capacity)
	if err != nil {
		return Allocation{}, e.reject(newError(KindValidation, MsgInvalidCapacity))
	}

	delta := v.TrafficFor(event)
	candidate := e.aggregate.Clone()
	candidate.Merge(delta)
	if !candidate.IsSafe() {
		safetyErr := newError(KindSafety, MsgUnsafeTraffic)
		for _, c := range candidate.Overloaded() {
			safetyErr.Corridors = append(safetyErr.Corridors, c.Name())
		}
		return Allocation{}, e.reject(safetyErr)
	}
	if !v.CanHost(event) {
		return Allocation{}, e.reject(newError(KindCapacity, MsgCannotHost))
	}
	if _, exists := e.allocations[event]; exists {
		return Allocation{}, e.reject(newError(KindConflict, MsgEventAllocated))
	}
	if _, exists := e.venueEvents[v]; exists {
		return Allocation{}, e.reject(newError(KindConflict, MsgVenueAllocated))
	}

	e.allocations[event] = Allocation{Event: event, Venue: v, Traffic: delta}
	e.venueEvents[v] = event
	e.aggregate.Merge(delta)
	e.events = append(e.events, event)

	e.logger.Debug("allocation committed",
		zap.String("event", event.String()),
		zap.String("venue", v.Name()),
		zap.Stringer("traffic", delta),
		zap.Int("allocations", len(e.allocations)))

	return Allocation{Event: event, Venue: v, Traffic: delta.Clone()}, nil
}

// RemoveAllocation undoes the allocation of event, subtracting the traffic it
// contributed at commit time
func (e *Engine) RemoveAllocation(event venue.Event) error {
	alloc, ok := e.allocations[event]
	if event.IsZero() || !ok {
		return e.reject(newError(KindNotFound, MsgSelectEventToRem))
	}

	e.aggregate.Subtract(alloc.Traffic)
	delete(e.allocations, event)
	delete(e.venueEvents, alloc.Venue)
	if i := slices.Index(e.events, event); i >= 0 {
		e.events = slices.Delete(e.events, i, i+1)
	}

	e.logger.Debug("allocation removed",
		zap.String("event", event.String()),
		zap.String("venue", alloc.Venue.Name()),
		zap.Int("allocations", len(e.allocations)))

	return nil
}

func (e *Engine) reject(err *Error) error {
	fields := []zap.Field{zap.String("kind", string(err.Kind))}
	if len(err.Corridors) > 0 {
		fields = append(fields, zap.Strings("corridors", err.Corridors))
	}
	e.logger.Debug(err.Message, fields...)
	return err
}
