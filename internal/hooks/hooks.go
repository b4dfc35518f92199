package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/thatjpcsguy/eventalloc/internal/venue"
)

// HookType represents the type of hook
type HookType string

const (
	PostAllocate HookType = "post-allocate"
	PostRemove   HookType = "post-remove"
)

// Runner runs operator hooks after committed transactions
type Runner struct {
	// Dir holds file-based hooks named <type>.sh
	Dir string
	// Scripts are the fallback shell snippets from config
	Scripts map[HookType]string
	// Out receives hook output and progress lines
	Out io.Writer
}

// Env returns the variables passed to a hook about an allocation
func Env(e venue.Event, v *venue.Venue) map[string]string {
	env := map[string]string{
		"EVENT_NAME":     e.Name(),
		"EVENT_CAPACITY": strconv.Itoa(e.Capacity()),
	}
	if v != nil {
		env["VENUE_NAME"] = v.Name()
		env["VENUE_CAPACITY"] = strconv.Itoa(v.HostingCapacity())
	}
	return env
}

// Execute runs a hook if one is defined.
// Priority: file-based hook > script from config
func (r *Runner) Execute(ctx context.Context, hookType HookType, env map[string]string) error {
	if r == nil {
		return nil
	}

	if r.Dir != "" {
		hookPath := filepath.Join(r.Dir, string(hookType)+".sh")
		if _, err := os.Stat(hookPath); err == nil {
			fmt.Fprintf(r.out(), "🪝 Running %s hook (file-based)...\n", hookType)
			if err := r.run(ctx, env, hookPath); err != nil {
				return fmt.Errorf("hook failed: %w", err)
			}
			return nil
		}
	}

	if script := r.Scripts[hookType]; script != "" {
		fmt.Fprintf(r.out(), "🪝 Running %s script (from config)...\n", hookType)
		if err := r.run(ctx, env, "-c", script); err != nil {
			return fmt.Errorf("hook script failed: %w", err)
		}
	}

	// No hook defined
	return nil
}

func (r *Runner) run(ctx context.Context, env map[string]string, args ...string) error {
	cmd := exec.CommandContext(ctx, "bash", args...)
	cmd.Stdout = r.out()
	cmd.Stderr = r.out()

	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cmd.Env = os.Environ()
	for _, k := range keys {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, env[k]))
	}

	return cmd.Run()
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}
