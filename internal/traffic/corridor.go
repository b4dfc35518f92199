package traffic

import (
	"fmt"
	"strings"
)

// Corridor is a shared traffic-bearing link in the venue network
type Corridor struct {
	name     string
	capacity int
}

// NewCorridor creates a corridor with the given identity and capacity
func NewCorridor(name string, capacity int) (Corridor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Corridor{}, fmt.Errorf("corridor name is required")
	}
	if capacity < 0 {
		return Corridor{}, fmt.Errorf("corridor %s: capacity must be >= 0, got %d", name, capacity)
	}
	return Corridor{name: name, capacity: capacity}, nil
}

// Name returns the corridor identity
func (c Corridor) Name() string {
	return c.name
}

// Capacity returns the maximum load the corridor can carry
func (c Corridor) Capacity() int {
	return c.capacity
}

// String returns the display form used in reports
func (c Corridor) String() string {
	return c.name
}

// Compare orders corridors by identity.
func (c Corridor) Compare(other Corridor) int {
	return strings.Compare(c.name, other.name)
}
