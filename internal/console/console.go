// Package console is the operator's view of an allocation engine: it parses
// commands, applies them one at a time and re-reads the engine's reports
// after every change.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thatjpcsguy/eventalloc/internal/allocator"
	"github.com/thatjpcsguy/eventalloc/internal/hooks"
	"github.com/thatjpcsguy/eventalloc/internal/venue"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// HookRunner runs operator hooks after a committed change
type HookRunner interface {
	Execute(ctx context.Context, hookType hooks.HookType, env map[string]string) error
}

// Options configure a Console
type Options struct {
	Out    io.Writer
	Hooks  HookRunner
	Logger *zap.Logger
}

// Console executes operator commands against a single engine. It is not safe
// for concurrent use.
type Console struct {
	engine   *allocator.Engine
	hooks    HookRunner
	out      io.Writer
	logger   *zap.Logger
	session  string
	failures int
}

// New creates a console over engine
func New(engine *allocator.Engine, opts Options) *Console {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	session := uuid.NewString()
	return &Console{
		engine:  engine,
		hooks:   opts.Hooks,
		out:     out,
		logger:  logger.With(zap.String("session", session)),
		session: session,
	}
}

// Session identifies this console in logs
func (c *Console) Session() string {
	return c.session
}

// Failures returns how many commands have failed so far
func (c *Console) Failures() int {
	return c.failures
}

// RunOptions control how Run consumes its input
type RunOptions struct {
	// Echo prints each command before running it
	Echo bool
	// StopOnError ends the run at the first failed command
	StopOnError bool
}

// Run executes commands from in, one per line, until EOF, quit or ctx is
// done. Blank lines and lines starting with # are skipped.
func (c *Console) Run(ctx context.Context, in io.Reader, opts RunOptions) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if opts.Echo {
			fmt.Fprintf(c.out, "%s %s\n", bold(">"), line)
		}

		quit, err := c.Exec(ctx, line)
		if quit {
			return nil
		}
		if err != nil && opts.StopOnError {
			return nil
		}
	}
	return scanner.Err()
}

// errQuit is returned by commands that end the session
var errQuit = errors.New("quit")

// Exec runs a single command line. It prints the outcome and reports whether
// the session should end. A failed command is counted and returned.
func (c *Console) Exec(ctx context.Context, line string) (bool, error) {
	args, err := tokenize(line)
	if err != nil {
		return false, c.fail("", err)
	}
	if len(args) == 0 {
		return false, nil
	}

	name, args := strings.ToLower(args[0]), args[1:]
	c.logger.Debug("command", zap.String("command", name), zap.Strings("args", args))

	cmd, ok := commands[name]
	if !ok {
		return false, c.fail(name, fmt.Errorf("unknown command %q, type help for a list", name))
	}

	err = cmd.run(ctx, c, args)
	if errors.Is(err, errQuit) {
		return true, nil
	}
	if err != nil {
		return false, c.fail(name, err)
	}
	return false, nil
}

func (c *Console) fail(command string, err error) error {
	c.failures++
	c.logger.Debug("command failed", zap.String("command", command), zap.Error(err))

	msg := err.Error()
	var engineErr *allocator.Error
	if errors.As(err, &engineErr) && len(engineErr.Corridors) > 0 {
		msg = fmt.Sprintf("%s (overloaded: %s)", msg, strings.Join(engineErr.Corridors, ", "))
	}
	fmt.Fprintf(c.out, "%s %s\n", red("❌"), red(msg))
	return err
}

// add allocates an event. The venue is a 1-based index into the venue list
// or a venue name; extra words are joined so unquoted names work.
func (c *Console) add(ctx context.Context, args []string) error {
	var name, capacity, venueRef string
	if len(args) > 0 {
		name = args[0]
	}
	if len(args) > 1 {
		capacity = args[1]
	}
	if len(args) > 2 {
		venueRef = strings.Join(args[2:], " ")
	}

	v := c.lookupVenue(venueRef)
	alloc, err := c.engine.AddAllocation(name, capacity, v)
	if err != nil {
		if v == nil && venueRef != "" && errors.Is(err, allocator.ErrValidation) && err.Error() == allocator.MsgSelectVenue {
			return &allocator.Error{Kind: allocator.KindValidation, Message: allocator.MsgUnknownVenue}
		}
		return err
	}

	fmt.Fprintf(c.out, "%s Allocated %s\n", green("✅"), alloc)
	c.runHook(ctx, hooks.PostAllocate, alloc.Event, alloc.Venue)
	c.printStatus()
	return nil
}

// remove deallocates an event named by 1-based index, display form
// "name (capacity)" or a unique event name
func (c *Console) remove(ctx context.Context, args []string) error {
	event, err := c.lookupEvent(strings.Join(args, " "))
	if err != nil {
		return err
	}

	v, _ := c.engine.AllocatedVenue(event)
	if err := c.engine.RemoveAllocation(event); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%s Removed %s\n", green("✅"), event)
	c.runHook(ctx, hooks.PostRemove, event, v)
	c.printStatus()
	return nil
}

func (c *Console) lookupVenue(ref string) *venue.Venue {
	if ref == "" {
		return nil
	}
	if v, ok := c.engine.Venue(ref); ok {
		return v
	}
	if i, err := strconv.Atoi(ref); err == nil {
		venues := c.engine.Venues()
		if i >= 1 && i <= len(venues) {
			return venues[i-1]
		}
	}
	return nil
}

// lookupEvent resolves ref to an allocated event. Unresolvable references
// return the zero Event so the engine reports them.
func (c *Console) lookupEvent(ref string) (venue.Event, error) {
	if ref == "" {
		return venue.Event{}, nil
	}
	events := c.engine.AllocatedEvents()

	if i, err := strconv.Atoi(ref); err == nil && i >= 1 && i <= len(events) {
		return events[i-1], nil
	}

	var byName []venue.Event
	for _, e := range events {
		if e.String() == ref {
			return e, nil
		}
		if e.Name() == ref {
			byName = append(byName, e)
		}
	}
	switch len(byName) {
	case 0:
		return venue.Event{}, nil
	case 1:
		return byName[0], nil
	default:
		return venue.Event{}, fmt.Errorf("%d events are named %q, use the index or \"name (capacity)\"", len(byName), ref)
	}
}

func (c *Console) runHook(ctx context.Context, hookType hooks.HookType, e venue.Event, v *venue.Venue) {
	if c.hooks == nil {
		return
	}
	if err := c.hooks.Execute(ctx, hookType, hooks.Env(e, v)); err != nil {
		c.logger.Warn("hook failed", zap.String("hook", string(hookType)), zap.Error(err))
		fmt.Fprintf(c.out, "%s  %s hook failed: %v\n", yellow("⚠️"), hookType, err)
	}
}
