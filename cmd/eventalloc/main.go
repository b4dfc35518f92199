package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/thatjpcsguy/eventalloc/internal/catalog"
	"github.com/thatjpcsguy/eventalloc/internal/cmd"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := cmd.NewRootCmd(version)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var loadErr *catalog.LoadError
		if errors.As(err, &loadErr) {
			fmt.Fprintf(os.Stderr, "Could not open file: %v\n", loadErr)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}
