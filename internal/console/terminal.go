package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const prompt = "eventalloc> "

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Interactive runs a line-editing session on the terminal behind in and out.
// It returns when the operator quits, sends EOF (Ctrl-D) or ctx is done.
func (c *Console) Interactive(ctx context.Context, in *os.File, out io.Writer) error {
	fd := int(in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, state) }()

	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{in, out}, prompt)
	if width, height, err := term.GetSize(fd); err == nil {
		_ = t.SetSize(width, height)
	}

	prev := c.out
	c.out = t
	defer func() { c.out = prev }()

	fmt.Fprintf(t, "%s session %s, type help for commands\n", bold("eventalloc"), c.session)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := t.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read command: %w", err)
		}
		if quit, _ := c.Exec(ctx, line); quit {
			return nil
		}
	}
}
