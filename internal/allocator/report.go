package allocator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/thatjpcsguy/eventalloc/internal/traffic"
	"github.com/thatjpcsguy/eventalloc/internal/venue"
)

// Venues returns the catalog in load order
func (e *Engine) Venues() []*venue.Venue {
	return slices.Clone(e.venues)
}

// Venue looks up a catalog venue by name
func (e *Engine) Venue(name string) (*venue.Venue, bool) {
	v, ok := e.byName[name]
	return v, ok
}

// AllocatedEvents returns the allocated events in commit order
func (e *Engine) AllocatedEvents() []venue.Event {
	return slices.Clone(e.events)
}

// AllocatedVenue returns the venue event is allocated to
func (e *Engine) AllocatedVenue(event venue.Event) (*venue.Venue, bool) {
	alloc, ok := e.allocations[event]
	if !ok {
		return nil, false
	}
	return alloc.Venue, true
}

// IsVenueAllocated reports whether v currently hosts an event
func (e *Engine) IsVenueAllocated(v *venue.Venue) bool {
	_, ok := e.venueEvents[v]
	return ok
}

// Allocations returns the current allocations sorted by their display string
func (e *Engine) Allocations() []Allocation {
	out := make([]Allocation, 0, len(e.allocations))
	for _, a := range e.allocations {
		a.Traffic = a.Traffic.Clone()
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b Allocation) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}

// Traffic returns a copy of the aggregate traffic
func (e *Engine) Traffic() traffic.Traffic {
	return e.aggregate.Clone()
}

// CorridorReport lists "<corridor> : <load>" for every corridor carrying
// traffic, sorted lexicographically
func (e *Engine) CorridorReport() []string {
	result := make([]string, 0, e.aggregate.Len())
	for c := range e.aggregate.CorridorsWithLoad() {
		result = append(result, fmt.Sprintf("%s : %d", c, e.aggregate.LoadOn(c)))
	}
	slices.Sort(result)
	return result
}

// AllocationReport lists "<event> : <venue-name> (<venue-capacity>)" for every
// allocation, sorted lexicographically
func (e *Engine) AllocationReport() []string {
	result := make([]string, 0, len(e.allocations))
	for _, a := range e.allocations {
		result = append(result, a.String())
	}
	slices.Sort(result)
	return result
}
