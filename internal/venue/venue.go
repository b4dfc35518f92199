package venue

import (
	"fmt"
	"math"
	"math/bits"
	"strings"

	"github.com/thatjpcsguy/eventalloc/internal/traffic"
)

// Model selects how a venue derives the traffic an event generates
type Model string

const (
	// ModelFixed contributes the venue's base traffic whatever the event size
	ModelFixed Model = "fixed"
	// ModelProportional scales base traffic by event capacity over hosting capacity, rounding up
	ModelProportional Model = "proportional"
)

// ParseModel parses a traffic model name. An empty name selects ModelFixed.
func ParseModel(s string) (Model, error) {
	switch Model(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModelFixed:
		return ModelFixed, nil
	case ModelProportional:
		return ModelProportional, nil
	default:
		return "", fmt.Errorf("invalid traffic model: %s. Valid options: fixed, proportional", s)
	}
}

// Venue is a catalog entry that can host one event at a time
type Venue struct {
	name     string
	capacity int
	base     traffic.Traffic
	model    Model
}

// New creates an immutable venue. base is the traffic the venue generates
// when hosting an event of its full capacity.
func New(name string, capacity int, base traffic.Traffic, model Model) (*Venue, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("venue name is required")
	}
	if capacity < 0 {
		return nil, fmt.Errorf("venue %s: capacity must be >= 0, got %d", name, capacity)
	}
	if model == "" {
		model = ModelFixed
	}
	if model != ModelFixed && model != ModelProportional {
		return nil, fmt.Errorf("venue %s: invalid traffic model %q", name, model)
	}
	return &Venue{
		name:     name,
		capacity: capacity,
		base:     base.Clone(),
		model:    model,
	}, nil
}

// Name returns the venue name
func (v *Venue) Name() string {
	return v.name
}

// HostingCapacity returns the largest event capacity the venue accepts
func (v *Venue) HostingCapacity() int {
	return v.capacity
}

// Model returns the traffic model of the venue
func (v *Venue) Model() Model {
	return v.model
}

// BaseTraffic returns a copy of the traffic generated at full capacity
func (v *Venue) BaseTraffic() traffic.Traffic {
	return v.base.Clone()
}

// CanHost reports whether the event fits within the hosting capacity
func (v *Venue) CanHost(e Event) bool {
	return e.Capacity() <= v.capacity
}

// TrafficFor returns the traffic hosting e here would add to the network.
// It depends only on the venue and the event.
func (v *Venue) TrafficFor(e Event) traffic.Traffic {
	if v.model == ModelFixed || v.capacity == 0 {
		return v.base.Clone()
	}

	out := traffic.New()
	for c := range v.base.CorridorsWithLoad() {
		// Add only fails on negative load; scale is never negative
		_ = out.Add(c, scale(v.base.LoadOn(c), e.Capacity(), v.capacity))
	}
	return out
}

func (v *Venue) String() string {
	return fmt.Sprintf("%s (%d)", v.name, v.capacity)
}

// scale returns ceil(load*num/den), saturating at math.MaxInt
func scale(load, num, den int) int {
	if load <= 0 || num <= 0 {
		return 0
	}
	hi, lo := bits.Mul64(uint64(load), uint64(num))
	if hi >= uint64(den) {
		return math.MaxInt
	}
	q, r := bits.Div64(hi, lo, uint64(den))
	if r > 0 {
		q++
	}
	if q == 0 || q > math.MaxInt {
		return math.MaxInt
	}
	return int(q)
}
