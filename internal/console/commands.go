package console

import (
	"context"
	"fmt"
	"strings"
)

type command struct {
	run func(ctx context.Context, c *Console, args []string) error
}

var commands = map[string]command{
	"add":         {run: (*Console).add},
	"remove":      {run: (*Console).remove},
	"rm":          {run: (*Console).remove},
	"venues":      {run: noArgs((*Console).printVenues)},
	"events":      {run: noArgs((*Console).printEvents)},
	"allocations": {run: noArgs((*Console).printAllocations)},
	"corridors":   {run: noArgs((*Console).printCorridors)},
	"status":      {run: noArgs((*Console).printStatus)},
	"check":       {run: func(_ context.Context, c *Console, _ []string) error { return c.check() }},
	"help":        {run: noArgs((*Console).printHelp)},
	"quit":        {run: quit},
	"exit":        {run: quit},
}

const usage = `Commands:
  add <event> <capacity> <venue>   allocate an event (venue by name or number)
  remove <event>                   remove an allocation (event by number, "name (capacity)" or name)
  venues                           list the catalog
  events                           list allocated events
  allocations                      show the allocation report
  corridors                        show traffic per corridor
  status                           allocations and corridors
  check                            verify engine consistency
  help                             show this help
  quit                             end the session

Quote names that contain spaces: add "Jazz Night" 80 "Hall A"`

func noArgs(print func(*Console)) func(context.Context, *Console, []string) error {
	return func(_ context.Context, c *Console, _ []string) error {
		print(c)
		return nil
	}
}

func quit(context.Context, *Console, []string) error {
	return errQuit
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, usage)
}

func (c *Console) printVenues() {
	fmt.Fprintln(c.out, bold("Venues:"))
	for i, v := range c.engine.Venues() {
		base := v.BaseTraffic()
		line := fmt.Sprintf("  %2d. %s  %s traffic %s", i+1, v, v.Model(), base.String())
		if c.engine.IsVenueAllocated(v) {
			line += " " + yellow("[allocated]")
		}
		fmt.Fprintln(c.out, line)
	}
}

func (c *Console) printEvents() {
	events := c.engine.AllocatedEvents()
	if len(events) == 0 {
		fmt.Fprintln(c.out, "No events allocated")
		return
	}
	fmt.Fprintln(c.out, bold("Events:"))
	for i, e := range events {
		v, _ := c.engine.AllocatedVenue(e)
		fmt.Fprintf(c.out, "  %2d. %s : %s\n", i+1, e, v)
	}
}

func (c *Console) printAllocations() {
	report := c.engine.AllocationReport()
	fmt.Fprintln(c.out, bold("Allocations:"))
	printReport(c, report, "no allocations")
}

func (c *Console) printCorridors() {
	report := c.engine.CorridorReport()
	fmt.Fprintln(c.out, bold("Corridor traffic:"))
	printReport(c, report, "no traffic")
}

func (c *Console) printStatus() {
	c.printAllocations()
	c.printCorridors()
}

func printReport(c *Console, lines []string, empty string) {
	if len(lines) == 0 {
		fmt.Fprintf(c.out, "  (%s)\n", empty)
		return
	}
	fmt.Fprintln(c.out, "  "+strings.Join(lines, "\n  "))
}

func (c *Console) check() error {
	if err := c.engine.CheckInvariant(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s State is consistent (%d allocations)\n", green("✅"), len(c.engine.AllocatedEvents()))
	return nil
}
