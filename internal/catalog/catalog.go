// Package catalog loads the venue catalog the allocation engine works from.
//
// Two file formats are supported. The text format is a sequence of blocks
// separated by blank lines:
//
//	# comment
//	Hall A
//	100
//	Main St, 50: 20
//	River Rd, 30: 5
//
// The first line of a block is the venue name, the second its hosting
// capacity, and every following line is "<corridor>, <corridor capacity>:
// <load>". The YAML format declares corridors once and references them by
// name from each venue.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/thatjpcsguy/eventalloc/internal/traffic"
	"github.com/thatjpcsguy/eventalloc/internal/venue"
)

// Format selects the catalog syntax
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name; empty means auto-detect
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatText, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("invalid catalog format: %s. Valid options: auto, text, yaml", s)
	}
}

// DetectFormat picks a format from the file extension
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

var (
	ErrNoVenues         = errors.New("catalog contains no venues")
	ErrDuplicateVenue   = errors.New("duplicate venue")
	ErrCorridorMismatch = errors.New("corridor declared with different capacities")
	ErrUnknownCorridor  = errors.New("unknown corridor")
	ErrSyntax           = errors.New("syntax error")
)

// LoadError reports why a catalog could not be loaded. It is fatal for a
// session: no engine is started without a catalog.
type LoadError struct {
	Source string
	Line   int
	Err    error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Options tune how venues are built
type Options struct {
	// DefaultModel applies to venues that do not name a traffic model
	DefaultModel venue.Model
}

func (o Options) model() venue.Model {
	if o.DefaultModel == "" {
		return venue.ModelFixed
	}
	return o.DefaultModel
}

// Catalog is a validated, ordered list of venues
type Catalog struct {
	Venues []*venue.Venue
}

// New validates venues and wraps them in a Catalog
func New(venues []*venue.Venue) (*Catalog, error) {
	if len(venues) == 0 {
		return nil, ErrNoVenues
	}
	seen := make(map[string]bool, len(venues))
	capacities := make(map[string]int)
	for _, v := range venues {
		if v == nil {
			return nil, errors.New("nil venue")
		}
		if seen[v.Name()] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateVenue, v.Name())
		}
		seen[v.Name()] = true

		base := v.BaseTraffic()
		for c := range base.CorridorsWithLoad() {
			if prev, ok := capacities[c.Name()]; ok && prev != c.Capacity() {
				return nil, fmt.Errorf("%w: %s (%d and %d)", ErrCorridorMismatch, c.Name(), prev, c.Capacity())
			}
			capacities[c.Name()] = c.Capacity()
		}
	}
	return &Catalog{Venues: venues}, nil
}

// Venue finds a venue by name
func (c *Catalog) Venue(name string) (*venue.Venue, bool) {
	for _, v := range c.Venues {
		if v.Name() == name {
			return v, true
		}
	}
	return nil, false
}

// Corridors lists every corridor referenced by a venue, sorted by name
func (c *Catalog) Corridors() []traffic.Corridor {
	seen := make(map[string]traffic.Corridor)
	for _, v := range c.Venues {
		base := v.BaseTraffic()
		for corridor := range base.CorridorsWithLoad() {
			seen[corridor.Name()] = corridor
		}
	}
	out := make([]traffic.Corridor, 0, len(seen))
	for _, corridor := range seen {
		out = append(out, corridor)
	}
	slices.SortFunc(out, traffic.Corridor.Compare)
	return out
}

// Load reads a catalog file. FormatAuto picks the syntax from the extension.
func Load(path string, format Format, opts Options) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	if format == FormatAuto || format == "" {
		format = DetectFormat(path)
	}
	return parse(path, f, format, opts)
}

// Parse reads a catalog from r. FormatAuto is treated as text.
func Parse(r io.Reader, format Format, opts Options) (*Catalog, error) {
	return parse("catalog", r, format, opts)
}

func parse(source string, r io.Reader, format Format, opts Options) (*Catalog, error) {
	var (
		venues []*venue.Venue
		err    error
	)
	switch format {
	case FormatYAML:
		venues, err = parseYAML(r, opts)
	case FormatText, FormatAuto, "":
		venues, err = parseText(r, opts)
	default:
		err = fmt.Errorf("invalid catalog format: %s", format)
	}
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Source = source
			return nil, loadErr
		}
		return nil, &LoadError{Source: source, Err: err}
	}

	cat, err := New(venues)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	return cat, nil
}
