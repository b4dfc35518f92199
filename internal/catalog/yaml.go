package catalog

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/thatjpcsguy/eventalloc/internal/traffic"
	"github.com/thatjpcsguy/eventalloc/internal/venue"
)

type yamlCatalog struct {
	Corridors []yamlCorridor `yaml:"corridors"`
	Venues    []yaml.Node    `yaml:"venues"`
}

type yamlCorridor struct {
	Name     string `yaml:"name"`
	Capacity int    `yaml:"capacity"`
}

type yamlVenue struct {
	Name     string         `yaml:"name"`
	Capacity int            `yaml:"capacity"`
	Model    string         `yaml:"model,omitempty"`
	Traffic  map[string]int `yaml:"traffic,omitempty"`
}

func parseYAML(r io.Reader, opts Options) ([]*venue.Venue, error) {
	var doc yamlCatalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoVenues
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	corridors := make(map[string]traffic.Corridor, len(doc.Corridors))
	for _, c := range doc.Corridors {
		corridor, err := traffic.NewCorridor(c.Name, c.Capacity)
		if err != nil {
			return nil, err
		}
		if prev, ok := corridors[corridor.Name()]; ok && prev.Capacity() != corridor.Capacity() {
			return nil, fmt.Errorf("%w: %s (%d and %d)", ErrCorridorMismatch, corridor.Name(), prev.Capacity(), corridor.Capacity())
		}
		corridors[corridor.Name()] = corridor
	}

	venues := make([]*venue.Venue, 0, len(doc.Venues))
	for i := range doc.Venues {
		node := &doc.Venues[i]
		var yv yamlVenue
		if err := node.Decode(&yv); err != nil {
			return nil, &LoadError{Line: node.Line, Err: fmt.Errorf("failed to parse venue: %w", err)}
		}

		model := opts.model()
		if yv.Model != "" {
			m, err := venue.ParseModel(yv.Model)
			if err != nil {
				return nil, &LoadError{Line: node.Line, Err: err}
			}
			model = m
		}

		names := make([]string, 0, len(yv.Traffic))
		for name := range yv.Traffic {
			names = append(names, name)
		}
		slices.Sort(names)

		base := traffic.New()
		for _, name := range names {
			corridor, ok := corridors[name]
			if !ok {
				return nil, &LoadError{Line: node.Line, Err: fmt.Errorf("%w: venue %q references %q", ErrUnknownCorridor, yv.Name, name)}
			}
			if err := base.Add(corridor, yv.Traffic[name]); err != nil {
				return nil, &LoadError{Line: node.Line, Err: err}
			}
		}

		v, err := venue.New(yv.Name, yv.Capacity, base, model)
		if err != nil {
			return nil, &LoadError{Line: node.Line, Err: err}
		}
		venues = append(venues, v)
	}
	return venues, nil
}

// WriteYAML encodes cat in the YAML catalog format
func WriteYAML(w io.Writer, cat *Catalog) error {
	var doc struct {
		Corridors []yamlCorridor `yaml:"corridors"`
		Venues    []yamlVenue    `yaml:"venues"`
	}
	for _, c := range cat.Corridors() {
		doc.Corridors = append(doc.Corridors, yamlCorridor{Name: c.Name(), Capacity: c.Capacity()})
	}
	for _, v := range cat.Venues {
		yv := yamlVenue{Name: v.Name(), Capacity: v.HostingCapacity(), Model: string(v.Model())}
		base := v.BaseTraffic()
		if base.Len() > 0 {
			yv.Traffic = make(map[string]int, base.Len())
			for c := range base.CorridorsWithLoad() {
				yv.Traffic[c.Name()] = base.LoadOn(c)
			}
		}
		doc.Venues = append(doc.Venues, yv)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return enc.Close()
}
