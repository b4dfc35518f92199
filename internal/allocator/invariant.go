package allocator

import (
	"fmt"

	"github.com/thatjpcsguy/eventalloc/internal/traffic"
	"github.com/thatjpcsguy/eventalloc/internal/venue"
)

// CheckInvariant re-derives the engine invariants from current state and
// returns an error describing the first violation found:
//
//  1. allocations are a partial bijection between events and venues
//  2. no allocation has a missing event or venue
//  3. the allocated-events list has no duplicates and matches the allocations
//  4. the aggregate traffic is the sum of the committed contributions
//  5. the aggregate traffic is safe
func (e *Engine) CheckInvariant() error {
	for event, alloc := range e.allocations {
		if event.IsZero() || alloc.Venue == nil {
			return fmt.Errorf("invariant violated: allocation with missing event or venue")
		}
		if alloc.Event != event {
			return fmt.Errorf("invariant violated: allocation for %s is keyed under %s", alloc.Event, event)
		}
		if owner, ok := e.venueEvents[alloc.Venue]; !ok || owner != event {
			return fmt.Errorf("invariant violated: venue %s is not mapped back to %s", alloc.Venue.Name(), event)
		}
		if e.byName[alloc.Venue.Name()] != alloc.Venue {
			return fmt.Errorf("invariant violated: venue %s is not in the catalog", alloc.Venue.Name())
		}
	}
	if len(e.venueEvents) != len(e.allocations) {
		return fmt.Errorf("invariant violated: %d venues allocated for %d events", len(e.venueEvents), len(e.allocations))
	}

	seen := make(map[venue.Event]bool, len(e.events))
	for _, event := range e.events {
		if seen[event] {
			return fmt.Errorf("invariant violated: event %s listed twice", event)
		}
		seen[event] = true
		if _, ok := e.allocations[event]; !ok {
			return fmt.Errorf("invariant violated: listed event %s has no allocation", event)
		}
	}
	if len(e.events) != len(e.allocations) {
		return fmt.Errorf("invariant violated: %d events listed for %d allocations", len(e.events), len(e.allocations))
	}

	sum := traffic.New()
	for event, alloc := range e.allocations {
		if !alloc.Traffic.Equal(alloc.Venue.TrafficFor(event)) {
			return fmt.Errorf("invariant violated: stored traffic for %s differs from %s", event, alloc.Venue.Name())
		}
		sum.Merge(alloc.Traffic)
	}
	if !sum.Equal(e.aggregate) {
		return fmt.Errorf("invariant violated: aggregate traffic %s, allocations sum to %s", e.aggregate, sum)
	}

	if !e.aggregate.IsSafe() {
		return fmt.Errorf("invariant violated: aggregate traffic is unsafe on %v", e.aggregate.Overloaded())
	}
	return nil
}
