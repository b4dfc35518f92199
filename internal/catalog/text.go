package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/thatjpcsguy/eventalloc/internal/traffic"
	"github.com/thatjpcsguy/eventalloc/internal/venue"
)

// block is one venue as it appears in a text catalog
type block struct {
	line     int
	name     string
	capacity int
	traffic  traffic.Traffic
	seen     map[string]bool
	fields   int
}

func parseText(r io.Reader, opts Options) ([]*venue.Venue, error) {
	var (
		venues     []*venue.Venue
		current    *block
		lineNo     int
		capacities = make(map[string]int)
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		if current.fields < 2 {
			return &LoadError{Line: current.line, Err: fmt.Errorf("%w: venue %q has no hosting capacity", ErrSyntax, current.name)}
		}
		v, err := venue.New(current.name, current.capacity, current.traffic, opts.model())
		if err != nil {
			return &LoadError{Line: current.line, Err: err}
		}
		venues = append(venues, v)
		current = nil
		return nil
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "#") {
			continue
		}
		if line == "" {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}

		if current == nil {
			current = &block{line: lineNo, name: line, traffic: traffic.New(), seen: make(map[string]bool), fields: 1}
			continue
		}

		if current.fields == 1 {
			capacity, err := strconv.Atoi(line)
			if err != nil || capacity < 0 {
				return nil, &LoadError{Line: lineNo, Err: fmt.Errorf("%w: invalid hosting capacity %q for venue %q", ErrSyntax, line, current.name)}
			}
			current.capacity = capacity
			current.fields++
			continue
		}

		corridor, load, err := parseTrafficLine(line)
		if err != nil {
			return nil, &LoadError{Line: lineNo, Err: err}
		}
		if prev, ok := capacities[corridor.Name()]; ok && prev != corridor.Capacity() {
			return nil, &LoadError{Line: lineNo, Err: fmt.Errorf("%w: %s (%d and %d)", ErrCorridorMismatch, corridor.Name(), prev, corridor.Capacity())}
		}
		capacities[corridor.Name()] = corridor.Capacity()

		if current.seen[corridor.Name()] {
			return nil, &LoadError{Line: lineNo, Err: fmt.Errorf("%w: corridor %s listed twice for venue %q", ErrSyntax, corridor.Name(), current.name)}
		}
		current.seen[corridor.Name()] = true
		if err := current.traffic.Add(corridor, load); err != nil {
			return nil, &LoadError{Line: lineNo, Err: err}
		}
		current.fields++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return venues, nil
}

// parseTrafficLine parses "<corridor>, <capacity>: <load>". Corridor names may
// contain commas; the last comma and the last colon delimit the numbers.
func parseTrafficLine(line string) (traffic.Corridor, int, error) {
	colon := strings.LastIndex(line, ":")
	if colon < 0 {
		return traffic.Corridor{}, 0, fmt.Errorf("%w: expected \"<corridor>, <capacity>: <load>\", got %q", ErrSyntax, line)
	}
	head, loadText := line[:colon], strings.TrimSpace(line[colon+1:])

	comma := strings.LastIndex(head, ",")
	if comma < 0 {
		return traffic.Corridor{}, 0, fmt.Errorf("%w: expected \"<corridor>, <capacity>: <load>\", got %q", ErrSyntax, line)
	}
	name, capacityText := strings.TrimSpace(head[:comma]), strings.TrimSpace(head[comma+1:])

	capacity, err := strconv.Atoi(capacityText)
	if err != nil {
		return traffic.Corridor{}, 0, fmt.Errorf("%w: invalid corridor capacity %q", ErrSyntax, capacityText)
	}
	load, err := strconv.Atoi(loadText)
	if err != nil || load < 0 {
		return traffic.Corridor{}, 0, fmt.Errorf("%w: invalid load %q", ErrSyntax, loadText)
	}

	corridor, err := traffic.NewCorridor(name, capacity)
	if err != nil {
		return traffic.Corridor{}, 0, err
	}
	return corridor, load, nil
}
