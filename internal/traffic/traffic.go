package traffic

import (
	"fmt"
	"iter"
	"math"
	"slices"
)

// load pairs a corridor with the amount of traffic it carries
type load struct {
	corridor Corridor
	amount   int
}

// Traffic maps corridors to a non-negative load. Corridors are keyed by name,
// so two corridors with the same name are the same resource.
type Traffic struct {
	loads map[string]load
}

// New returns an empty Traffic
func New() Traffic {
	return Traffic{loads: make(map[string]load)}
}

// Of builds a Traffic from a corridor->load map, ignoring non-positive loads
func Of(loads map[Corridor]int) Traffic {
	t := New()
	for c, amount := range loads {
		if amount > 0 {
			t.loads[c.name] = load{corridor: c, amount: amount}
		}
	}
	return t
}

// Add adds load to a single corridor
func (t *Traffic) Add(c Corridor, amount int) error {
	if amount < 0 {
		return fmt.Errorf("corridor %s: load must be >= 0, got %d", c.name, amount)
	}
	t.update(c, amount)
	return nil
}

// Merge adds other's per-corridor loads into t
func (t *Traffic) Merge(other Traffic) {
	for _, l := range other.loads {
		t.update(l.corridor, l.amount)
	}
}

// Subtract removes other's per-corridor loads from t. Corridors that drop to
// zero or below are no longer enumerated.
func (t *Traffic) Subtract(other Traffic) {
	for _, l := range other.loads {
		t.update(l.corridor, -l.amount)
	}
}

func (t *Traffic) update(c Corridor, delta int) {
	if t.loads == nil {
		t.loads = make(map[string]load)
	}
	cur, ok := t.loads[c.name]
	if !ok {
		cur = load{corridor: c}
	}
	// loads saturate at math.MaxInt so an overflow still reads as unsafe
	if delta > 0 && cur.amount > math.MaxInt-delta {
		cur.amount = math.MaxInt
	} else {
		cur.amount += delta
	}
	if cur.amount <= 0 {
		delete(t.loads, c.name)
		return
	}
	t.loads[c.name] = cur
}

// IsSafe reports whether every corridor carries no more than its capacity
func (t Traffic) IsSafe() bool {
	for _, l := range t.loads {
		if l.amount > l.corridor.capacity {
			return false
		}
	}
	return true
}

// Overloaded returns the corridors whose load exceeds capacity, sorted by identity
func (t Traffic) Overloaded() []Corridor {
	var out []Corridor
	for _, l := range t.loads {
		if l.amount > l.corridor.capacity {
			out = append(out, l.corridor)
		}
	}
	slices.SortFunc(out, Corridor.Compare)
	return out
}

// CorridorsWithLoad yields the corridors currently carrying non-zero load in
// identity order. The sequence may be ranged over more than once.
func (t Traffic) CorridorsWithLoad() iter.Seq[Corridor] {
	corridors := make([]Corridor, 0, len(t.loads))
	for _, l := range t.loads {
		corridors = append(corridors, l.corridor)
	}
	slices.SortFunc(corridors, Corridor.Compare)
	return slices.Values(corridors)
}

// LoadOn returns the load on c, or zero if c carries no traffic
func (t Traffic) LoadOn(c Corridor) int {
	return t.loads[c.name].amount
}

// Len returns the number of corridors with non-zero load
func (t Traffic) Len() int {
	return len(t.loads)
}

// Total returns the sum of all corridor loads
func (t Traffic) Total() int {
	total := 0
	for _, l := range t.loads {
		total += l.amount
	}
	return total
}

// Clone returns an independent copy of t
func (t Traffic) Clone() Traffic {
	out := Traffic{loads: make(map[string]load, len(t.loads))}
	for name, l := range t.loads {
		out.loads[name] = l
	}
	return out
}

// Equal reports whether t and other carry the same load on every corridor
func (t Traffic) Equal(other Traffic) bool {
	if len(t.loads) != len(other.loads) {
		return false
	}
	for name, l := range t.loads {
		o, ok := other.loads[name]
		if !ok || o.amount != l.amount {
			return false
		}
	}
	return true
}

// String renders the traffic as "corridor: load" pairs in identity order
func (t Traffic) String() string {
	out := "{"
	first := true
	for c := range t.CorridorsWithLoad() {
		if !first {
			out += ", "
		}
		first = false
		out += fmt.Sprintf("%s: %d", c.name, t.LoadOn(c))
	}
	return out + "}"
}
